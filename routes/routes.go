package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/accounts-api/app"
	"github.com/upb/accounts-api/handlers"
)

// SetupRoutes configures all application routes and middleware. Route
// protection is decided inside the auth middleware by path pattern rather
// than per route group, so the middleware sits on the root router.
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID", "X-Auth-Time", "X-Process-Time"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Path-pattern based authentication
	r.Use(deps.AuthMiddleware.Handler)

	// Health check endpoints
	r.Get("/healthz", handlers.HealthCheck(deps))
	r.Get("/readyz", handlers.ReadinessCheck(deps))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Get("/me", handlers.GetCurrentUserHandler(deps))
			r.Post("/me", handlers.SyncCurrentUserHandler(deps))
			r.Get("/{id}", handlers.GetUserHandler(deps))
		})

		r.Route("/organization", func(r chi.Router) {
			r.Post("/", handlers.CreateOrganizationHandler(deps))
			r.Get("/me", handlers.GetMyOrganizationHandler(deps))
			r.Put("/me", handlers.UpdateMyOrganizationHandler(deps))
			r.Get("/users", handlers.ListOrganizationUsersHandler(deps))
		})

		r.Route("/auth", func(r chi.Router) {
			r.Get("/me", handlers.GetAuthMeHandler(deps))
			r.Get("/session", handlers.GetAuthSessionHandler(deps))
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
