package handlers

import (
	"net/http"

	"github.com/upb/accounts-api/app"
	"github.com/upb/accounts-api/middleware"
	"github.com/upb/accounts-api/models"
	"github.com/upb/accounts-api/services"
	"github.com/upb/accounts-api/utils"
)

// currentUser resolves the reconciled local user for the request, writing a
// 401 when the caller is authenticated but has no usable local record.
func currentUser(w http.ResponseWriter, r *http.Request) *models.User {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		_ = utils.WriteUnauthorized(w, "User account not available")
		return nil
	}
	return user
}

// CreateOrganizationHandler creates an organization owned by the caller
func CreateOrganizationHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(w, r)
		if user == nil {
			return
		}

		var input services.CreateOrganizationInput
		if err := decodeJSON(r, &input); err != nil {
			_ = utils.WriteBadRequest(w, "Invalid request body", nil)
			return
		}

		if err := utils.ValidateStruct(input); err != nil {
			HandleValidationError(w, err, deps.Logger)
			return
		}

		org, err := deps.OrganizationService.Create(r.Context(), user.ID, input)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		respondJSON(w, http.StatusCreated, SuccessResponse{Data: org})
	}
}

// GetMyOrganizationHandler returns the caller's organization
func GetMyOrganizationHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(w, r)
		if user == nil {
			return
		}

		org, err := deps.OrganizationService.GetForUser(r.Context(), user.ID)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Data: org})
	}
}

// UpdateMyOrganizationHandler updates the caller's organization
func UpdateMyOrganizationHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(w, r)
		if user == nil {
			return
		}

		var input services.UpdateOrganizationInput
		if err := decodeJSON(r, &input); err != nil {
			_ = utils.WriteBadRequest(w, "Invalid request body", nil)
			return
		}

		if err := utils.ValidateStruct(input); err != nil {
			HandleValidationError(w, err, deps.Logger)
			return
		}

		org, err := deps.OrganizationService.UpdateForUser(r.Context(), user.ID, input)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Data: org})
	}
}

// ListOrganizationUsersHandler lists the members of the caller's organization
func ListOrganizationUsersHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(w, r)
		if user == nil {
			return
		}

		members, err := deps.OrganizationService.ListUsers(r.Context(), user.ID)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Data: members})
	}
}
