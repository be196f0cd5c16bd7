package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/accounts-api/clerk"
	"github.com/upb/accounts-api/middleware"
	"github.com/upb/accounts-api/models"
)

func urlParamRequest(method, target, key, value string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestGetUserHandler(t *testing.T) {
	user := models.NewUser("ada@example.com", "Ada", "Lovelace", "")
	deps := newTestDependencies(newFakeUserRepo(user), newFakeOrgRepo())

	req := urlParamRequest(http.MethodGet, "/api/v1/user/"+user.ID.String(), "id", user.ID.String())
	rec := httptest.NewRecorder()
	GetUserHandler(deps)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "ada@example.com", data["email"])
}

func TestGetUserHandlerInvalidID(t *testing.T) {
	deps := newTestDependencies(newFakeUserRepo(), newFakeOrgRepo())

	req := urlParamRequest(http.MethodGet, "/api/v1/user/not-a-uuid", "id", "not-a-uuid")
	rec := httptest.NewRecorder()
	GetUserHandler(deps)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "bad_request")
}

func TestGetUserHandlerNotFound(t *testing.T) {
	deps := newTestDependencies(newFakeUserRepo(), newFakeOrgRepo())

	id := uuid.New().String()
	req := urlParamRequest(http.MethodGet, "/api/v1/user/"+id, "id", id)
	rec := httptest.NewRecorder()
	GetUserHandler(deps)(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCurrentUserHandler(t *testing.T) {
	user := models.NewUser("ada@example.com", "Ada", "Lovelace", "")
	deps := newTestDependencies(newFakeUserRepo(user), newFakeOrgRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	GetCurrentUserHandler(deps)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ada@example.com")
}

func TestGetCurrentUserHandlerUnauthenticated(t *testing.T) {
	deps := newTestDependencies(newFakeUserRepo(), newFakeOrgRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil)
	rec := httptest.NewRecorder()
	GetCurrentUserHandler(deps)(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetCurrentUserHandlerRetriesReconcile(t *testing.T) {
	// No user in context, but claims carry enough to create the record
	repo := newFakeUserRepo()
	deps := newTestDependencies(repo, newFakeOrgRepo())

	claims := &clerk.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user_abc"},
		Email:            "ada@example.com",
		FirstName:        "Ada",
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil)
	req = req.WithContext(middleware.WithClaims(req.Context(), claims))
	rec := httptest.NewRecorder()
	GetCurrentUserHandler(deps)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	created, err := repo.GetByClerkID(context.Background(), "user_abc")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", created.Email)
}

func TestSyncCurrentUserHandler(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "user_abc",
			"first_name": "Augusta",
			"last_name": "King",
			"primary_email_address_id": "em_1",
			"email_addresses": [{"id": "em_1", "email_address": "ada@example.com"}]
		}`))
	}))
	defer server.Close()

	clerkID := "user_abc"
	user := models.NewUser("ada@example.com", "Ada", "Lovelace", "")
	user.ClerkID = &clerkID
	repo := newFakeUserRepo(user)
	deps := newTestDependencies(repo, newFakeOrgRepo())
	deps.ClerkClient = clerk.NewClient(server.URL, "sk_test", 0)

	claims := &clerk.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: clerkID}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/me", nil)
	req = req.WithContext(middleware.WithClaims(req.Context(), claims))
	rec := httptest.NewRecorder()
	SyncCurrentUserHandler(deps)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	synced, err := repo.GetByClerkID(context.Background(), clerkID)
	require.NoError(t, err)
	assert.Equal(t, "Augusta", synced.FirstName)
	assert.Equal(t, "King", synced.LastName)
}

func TestSyncCurrentUserHandlerFallsBackToClaims(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	repo := newFakeUserRepo()
	deps := newTestDependencies(repo, newFakeOrgRepo())
	deps.ClerkClient = clerk.NewClient(server.URL, "sk_test", 0)

	claims := &clerk.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user_abc"},
		Email:            "ada@example.com",
		FirstName:        "Ada",
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/me", nil)
	req = req.WithContext(middleware.WithClaims(req.Context(), claims))
	rec := httptest.NewRecorder()
	SyncCurrentUserHandler(deps)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	created, err := repo.GetByClerkID(context.Background(), "user_abc")
	require.NoError(t, err)
	assert.Equal(t, "Ada", created.FirstName)
}

func TestSyncCurrentUserHandlerWithoutClaims(t *testing.T) {
	deps := newTestDependencies(newFakeUserRepo(), newFakeOrgRepo())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/me", nil)
	rec := httptest.NewRecorder()
	SyncCurrentUserHandler(deps)(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
