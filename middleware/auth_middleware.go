package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/accounts-api/clerk"
	"github.com/upb/accounts-api/models"
	"github.com/upb/accounts-api/utils"
	"go.uber.org/zap"
)

// TokenVerifier verifies a bearer token and returns its claims
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*clerk.Claims, error)
}

// ProfileFetcher fetches the provider profile for a subject id
type ProfileFetcher interface {
	GetUser(ctx context.Context, userID string) (*clerk.Profile, error)
}

// IdentityReconciler syncs a provider identity into a local user record
type IdentityReconciler interface {
	Reconcile(ctx context.Context, clerkID string, profile *clerk.Profile) (*models.User, error)
}

// AuthMiddleware authenticates requests against Clerk session tokens. Routes
// are gated by regex lists: a path is protected when it matches a protected
// pattern and no exclusion pattern, with exclusions always winning. OPTIONS
// requests pass through for CORS preflight.
type AuthMiddleware struct {
	verifier   TokenVerifier
	profiles   ProfileFetcher
	reconciler IdentityReconciler
	protected  []*regexp.Regexp
	excluded   []*regexp.Regexp
	logger     *zap.Logger
}

// NewAuthMiddleware creates an AuthMiddleware with compiled route patterns
func NewAuthMiddleware(
	verifier TokenVerifier,
	profiles ProfileFetcher,
	reconciler IdentityReconciler,
	protectedPaths []string,
	excludePaths []string,
	logger *zap.Logger,
) (*AuthMiddleware, error) {
	protected, err := compilePatterns(protectedPaths)
	if err != nil {
		return nil, fmt.Errorf("invalid protected path pattern: %w", err)
	}

	excluded, err := compilePatterns(excludePaths)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude path pattern: %w", err)
	}

	return &AuthMiddleware{
		verifier:   verifier,
		profiles:   profiles,
		reconciler: reconciler,
		protected:  protected,
		excluded:   excluded,
		logger:     logger,
	}, nil
}

// Handler authenticates protected routes and attaches claims and the
// reconciled user to the request context. Reconciliation failures are logged
// and the request proceeds with claims only.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		requestID := chimiddleware.GetReqID(ctx)

		w.Header().Set("X-Request-ID", requestID)
		tw := &timedResponseWriter{ResponseWriter: w, start: start}

		if r.Method == http.MethodOptions {
			next.ServeHTTP(tw, r)
			return
		}

		if !m.requiresAuth(r.URL.Path) {
			next.ServeHTTP(tw, r)
			return
		}

		token := extractBearerToken(r)
		if token == "" {
			m.logger.Warn("missing bearer token",
				zap.String("request_id", requestID),
				zap.String("path", r.URL.Path))
			_ = utils.WriteUnauthorized(tw, "Missing or invalid authorization header")
			return
		}

		claims, err := m.verifier.Verify(ctx, token)
		if err != nil {
			m.writeVerifyError(tw, requestID, r.URL.Path, err)
			return
		}

		tw.Header().Set("X-Auth-Time", fmt.Sprintf("%.6f", time.Since(start).Seconds()))
		ctx = WithClaims(ctx, claims)

		profile, err := m.profiles.GetUser(ctx, claims.Subject)
		if err != nil {
			m.logger.Warn("profile fetch failed, falling back to token claims",
				zap.String("request_id", requestID),
				zap.String("sub", claims.Subject),
				zap.Error(err))
			profile = claims.Profile()
		}

		user, err := m.reconciler.Reconcile(ctx, claims.Subject, profile)
		if err != nil {
			m.logger.Error("identity reconciliation failed, continuing without local user",
				zap.String("request_id", requestID),
				zap.String("sub", claims.Subject),
				zap.Error(err))
		} else {
			ctx = WithUser(ctx, user)
		}

		m.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.String("sub", claims.Subject))

		next.ServeHTTP(tw, r.WithContext(ctx))
	})
}

// requiresAuth reports whether the path is protected. Exclusions win over
// protections.
func (m *AuthMiddleware) requiresAuth(path string) bool {
	for _, pattern := range m.excluded {
		if pattern.MatchString(path) {
			return false
		}
	}
	for _, pattern := range m.protected {
		if pattern.MatchString(path) {
			return true
		}
	}
	return false
}

// writeVerifyError maps verification failures to HTTP responses. Key set
// transport failures are 503, malformed key sets are 502, everything else
// is a 401.
func (m *AuthMiddleware) writeVerifyError(w http.ResponseWriter, requestID, path string, err error) {
	switch {
	case errors.Is(err, clerk.ErrJWKSUnavailable):
		m.logger.Error("key set unavailable",
			zap.String("request_id", requestID),
			zap.String("path", path),
			zap.Error(err))
		_ = utils.WriteServiceUnavailable(w, "Authentication service unavailable")
	case errors.Is(err, clerk.ErrJWKSInvalid):
		m.logger.Error("key set invalid",
			zap.String("request_id", requestID),
			zap.String("path", path),
			zap.Error(err))
		_ = utils.WriteBadGateway(w, "Invalid response from authentication service")
	case errors.Is(err, clerk.ErrTokenExpired):
		m.logger.Warn("token expired",
			zap.String("request_id", requestID),
			zap.String("path", path))
		_ = utils.WriteUnauthorized(w, "Token has expired")
	default:
		m.logger.Warn("token verification failed",
			zap.String("request_id", requestID),
			zap.String("path", path),
			zap.Error(err))
		_ = utils.WriteUnauthorized(w, "Invalid or expired token")
	}
}

// compilePatterns compiles a list of regex route patterns
func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// timedResponseWriter stamps X-Process-Time on the response just before the
// status line is written.
type timedResponseWriter struct {
	http.ResponseWriter
	start       time.Time
	wroteHeader bool
}

func (w *timedResponseWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.Header().Set("X-Process-Time", fmt.Sprintf("%.6f", time.Since(w.start).Seconds()))
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *timedResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}
