package clerk

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired is returned when the token has expired
	ErrTokenExpired = errors.New("token has expired")

	// ErrInvalidToken is returned when signature, issuer, or audience checks fail
	ErrInvalidToken = errors.New("invalid token")

	// ErrMissingClaim is returned when a required claim is absent
	ErrMissingClaim = errors.New("missing required claim")
)

// Verifier validates Clerk-issued bearer tokens against the cached JWKS and
// the configured issuer and audience.
type Verifier struct {
	keys   *KeyCache
	parser *jwt.Parser
}

// NewVerifier creates a token verifier. Clerk signs session tokens with RS256
// only; any other algorithm is rejected outright. An empty audience disables
// the audience check, matching Clerk tokens that omit the aud claim.
func NewVerifier(keys *KeyCache, issuer, audience string) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return &Verifier{
		keys:   keys,
		parser: jwt.NewParser(opts...),
	}
}

// Verify parses and validates a bearer token, returning the full claim set.
// Key-cache failures pass through unchanged so callers can distinguish a
// provider outage (ErrJWKSUnavailable, ErrJWKSInvalid) from a bad token.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		kid, ok := t.Header["kid"].(string)
		if !ok {
			return nil, fmt.Errorf("%w: kid header not found", ErrInvalidToken)
		}
		return v.keys.Key(ctx, kid)
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, ErrJWKSUnavailable), errors.Is(err, ErrJWKSInvalid), errors.Is(err, ErrKeyNotFound):
			return nil, err
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	return claims, nil
}
