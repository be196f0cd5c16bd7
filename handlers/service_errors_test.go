package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/upb/accounts-api/services"
	"github.com/upb/accounts-api/utils"
	"go.uber.org/zap"
)

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "not found",
			err:        services.ErrUserNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   "not_found",
		},
		{
			name:       "validation",
			err:        services.ErrEmailRequired,
			wantStatus: http.StatusBadRequest,
			wantBody:   "bad_request",
		},
		{
			name:       "unauthorized",
			err:        services.ErrUnauthorized,
			wantStatus: http.StatusUnauthorized,
			wantBody:   "unauthorized",
		},
		{
			name:       "conflict",
			err:        services.ErrDuplicateEmail,
			wantStatus: http.StatusConflict,
			wantBody:   "conflict",
		},
		{
			name:       "conflict with details",
			err:        services.ErrDuplicateOrgURL.WithDetail("org_url", "acme"),
			wantStatus: http.StatusConflict,
			wantBody:   "acme",
		},
		{
			name:       "provider unavailable",
			err:        services.ErrProviderUnavailable,
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "service_unavailable",
		},
		{
			name:       "provider invalid",
			err:        services.ErrProviderInvalid,
			wantStatus: http.StatusBadGateway,
			wantBody:   "bad_gateway",
		},
		{
			name:       "internal hides the underlying message",
			err:        services.WrapInternal("database exploded", assert.AnError),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "An internal error occurred",
		},
		{
			name:       "unknown error type",
			err:        assert.AnError,
			wantStatus: http.StatusInternalServerError,
			wantBody:   "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleServiceError(rec, tt.err, zap.NewNop())

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestHandleServiceErrorInternalDoesNotLeakDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleServiceError(rec, services.WrapInternal("pq: connection refused", assert.AnError), zap.NewNop())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestHandleServiceErrorNil(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleServiceError(rec, nil, zap.NewNop())

	// Nothing written
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestHandleValidationError(t *testing.T) {
	rec := httptest.NewRecorder()

	input := struct {
		Name string `json:"name" validate:"required,min=2"`
	}{Name: ""}

	err := utils.ValidateStruct(input)
	HandleValidationError(rec, err, zap.NewNop())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Validation failed")
	assert.Contains(t, rec.Body.String(), "Name")
}

func TestHandleValidationErrorPlainError(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleValidationError(rec, assert.AnError, zap.NewNop())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
