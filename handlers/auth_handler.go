package handlers

import (
	"net/http"
	"time"

	"github.com/upb/accounts-api/app"
	"github.com/upb/accounts-api/middleware"
	"github.com/upb/accounts-api/utils"
)

// AuthMeResponse is the response body for GET /api/v1/auth/me
type AuthMeResponse struct {
	Sub       string  `json:"sub"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	UserID    *string `json:"user_id,omitempty"`
	Linked    bool    `json:"linked"`
}

// AuthSessionResponse is the response body for GET /api/v1/auth/session
type AuthSessionResponse struct {
	SessionID   string     `json:"session_id"`
	Issuer      string     `json:"issuer"`
	IssuedAt    *time.Time `json:"issued_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	AuthMethods []string   `json:"auth_methods,omitempty"`
}

// GetAuthMeHandler returns the verified identity of the caller together with
// the linked local user id when reconciliation succeeded
func GetAuthMeHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims := middleware.GetClaimsFromContext(ctx)
		if claims == nil {
			_ = utils.WriteUnauthorized(w, "Authentication required")
			return
		}

		resp := AuthMeResponse{
			Sub:       claims.Subject,
			Email:     claims.Email,
			FirstName: claims.FirstName,
			LastName:  claims.LastName,
		}

		if user := middleware.GetUserFromContext(ctx); user != nil {
			id := user.ID.String()
			resp.UserID = &id
			resp.Linked = true
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Data: resp})
	}
}

// GetAuthSessionHandler returns session details from the verified token
func GetAuthSessionHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := middleware.GetClaimsFromContext(r.Context())
		if claims == nil {
			_ = utils.WriteUnauthorized(w, "Authentication required")
			return
		}

		resp := AuthSessionResponse{
			SessionID:   claims.SessionID,
			Issuer:      claims.Issuer,
			AuthMethods: claims.AuthMethods,
		}
		if claims.IssuedAt != nil {
			resp.IssuedAt = &claims.IssuedAt.Time
		}
		if claims.ExpiresAt != nil {
			resp.ExpiresAt = &claims.ExpiresAt.Time
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Data: resp})
	}
}
