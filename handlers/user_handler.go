package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/upb/accounts-api/app"
	"github.com/upb/accounts-api/middleware"
	"github.com/upb/accounts-api/utils"
)

// GetUserHandler returns a user's public profile by internal id
func GetUserHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idParam := chi.URLParam(r, "id")

		id, err := uuid.Parse(idParam)
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid user id", map[string]interface{}{"id": idParam})
			return
		}

		user, err := deps.UserService.GetByID(r.Context(), id)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Data: user})
	}
}

// GetCurrentUserHandler returns the local user record for the authenticated
// caller. When middleware reconciliation failed earlier in the request, one
// retry is attempted with the token-embedded profile.
func GetCurrentUserHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if user := middleware.GetUserFromContext(ctx); user != nil {
			respondJSON(w, http.StatusOK, SuccessResponse{Data: user})
			return
		}

		claims := middleware.GetClaimsFromContext(ctx)
		if claims == nil {
			_ = utils.WriteUnauthorized(w, "Authentication required")
			return
		}

		user, err := deps.UserService.Reconcile(ctx, claims.Subject, claims.Profile())
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Data: user})
	}
}

// SyncCurrentUserHandler forces a fresh sync of the caller's identity with
// the provider profile
func SyncCurrentUserHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims := middleware.GetClaimsFromContext(ctx)
		if claims == nil {
			_ = utils.WriteUnauthorized(w, "Authentication required")
			return
		}

		profile, err := deps.ClerkClient.GetUser(ctx, claims.Subject)
		if err != nil {
			deps.Logger.Warn("profile fetch failed during sync, using token claims")
			profile = claims.Profile()
		}

		user, err := deps.UserService.Reconcile(ctx, claims.Subject, profile)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Data: user})
	}
}
