package clerk

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"
)

var (
	// ErrJWKSUnavailable is returned when the JWKS endpoint cannot be reached
	ErrJWKSUnavailable = errors.New("authentication service unavailable")

	// ErrJWKSInvalid is returned when the JWKS endpoint returns an unparseable response
	ErrJWKSInvalid = errors.New("invalid response from authentication service")

	// ErrKeyNotFound is returned when no cached key matches the requested kid
	ErrKeyNotFound = errors.New("signing key not found")
)

// JWKS represents the JSON Web Key Set published by Clerk
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWK represents a single JSON Web Key
type JWK struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// KeyCache fetches the issuer's JWKS once and serves signing keys from memory
// for the process lifetime. There is no TTL or background refresh; staleness
// is handled by the explicit Invalidate hook. A kid miss on a populated cache
// does not trigger a re-fetch.
type KeyCache struct {
	jwksURL    string
	httpClient *http.Client

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	populated bool
}

// NewKeyCache creates a key cache for the issuer's well-known JWKS endpoint
func NewKeyCache(issuer string, timeout time.Duration) *KeyCache {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &KeyCache{
		jwksURL: fmt.Sprintf("%s/.well-known/jwks.json", issuer),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Key returns the public key for the given kid, fetching the JWKS on first
// use. Concurrent first calls may fetch twice; the last write wins, which is
// harmless because the key set is identical.
func (c *KeyCache) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.mu.RLock()
	if c.populated {
		key, ok := c.keys[kid]
		c.mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("%w: kid %s", ErrKeyNotFound, kid)
		}
		return key, nil
	}
	c.mu.RUnlock()

	keys, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.keys = keys
	c.populated = true
	c.mu.Unlock()

	key, ok := keys[kid]
	if !ok {
		return nil, fmt.Errorf("%w: kid %s", ErrKeyNotFound, kid)
	}
	return key, nil
}

// Populated reports whether the cache holds a fetched key set
func (c *KeyCache) Populated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.populated
}

// Invalidate drops the cached key set so the next lookup re-fetches the JWKS
func (c *KeyCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = nil
	c.populated = false
}

// fetch retrieves and parses the JWKS from the issuer
func (c *KeyCache) fetch(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.jwksURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJWKSUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJWKSUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status code %d", ErrJWKSUnavailable, resp.StatusCode)
	}

	var jwks JWKS
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJWKSInvalid, err)
	}

	keys := make(map[string]*rsa.PublicKey, len(jwks.Keys))
	for i := range jwks.Keys {
		key, err := jwkToRSAPublicKey(&jwks.Keys[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrJWKSInvalid, err)
		}
		keys[jwks.Keys[i].Kid] = key
	}

	return keys, nil
}

// jwkToRSAPublicKey converts a JWK to an RSA public key
func jwkToRSAPublicKey(jwk *JWK) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(jwk.N)
	if err != nil {
		return nil, fmt.Errorf("failed to decode modulus: %w", err)
	}

	eBytes, err := base64.RawURLEncoding.DecodeString(jwk.E)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exponent: %w", err)
	}

	n := new(big.Int).SetBytes(nBytes)

	var e int
	for _, b := range eBytes {
		e = e*256 + int(b)
	}

	return &rsa.PublicKey{N: n, E: e}, nil
}
