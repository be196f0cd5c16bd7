package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteOK(t *testing.T) {
	rec := httptest.NewRecorder()

	err := WriteOK(rec, map[string]string{"hello": "world"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp SuccessResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "world", data["hello"])
}

func TestWriteJSONNilBody(t *testing.T) {
	rec := httptest.NewRecorder()

	err := WriteJSON(rec, http.StatusAccepted, nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		status    int
		wantError string
	}{
		{http.StatusBadRequest, "bad_request"},
		{http.StatusUnauthorized, "unauthorized"},
		{http.StatusForbidden, "forbidden"},
		{http.StatusNotFound, "not_found"},
		{http.StatusConflict, "conflict"},
		{http.StatusBadGateway, "bad_gateway"},
		{http.StatusServiceUnavailable, "service_unavailable"},
		{http.StatusInternalServerError, "internal_error"},
		{http.StatusTeapot, "internal_error"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		require.NoError(t, WriteError(rec, tt.status, "boom", nil))

		var resp ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, tt.status, rec.Code)
		assert.Equal(t, tt.wantError, resp.Error)
	}
}

func TestWriteUnauthorizedDefaultMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteUnauthorized(rec, ""))

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Authentication required", resp.Message)
}

func TestWriteConflictWithDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteConflict(rec, "email already registered", map[string]interface{}{
		"email": "ada@example.com",
	}))

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ada@example.com", resp.Details["email"])
}
