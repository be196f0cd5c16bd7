package clerk

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the decoded, verified payload of a Clerk session token
type Claims struct {
	jwt.RegisteredClaims
	Email       string   `json:"email"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	ImageURL    string   `json:"image_url"`
	SessionID   string   `json:"sid"`
	AuthMethods []string `json:"auth_methods"`
}

// Profile is the provider-reported user profile used during identity
// reconciliation. It is derived either from the Clerk user API or, as a
// fallback, from the token claims themselves.
type Profile struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	ProfileImageURL string `json:"profile_image_url"`
}

// Profile builds a fallback profile from the token-embedded claims. Name
// fields default to empty strings when the token omits them.
func (c *Claims) Profile() *Profile {
	return &Profile{
		ID:              c.Subject,
		Email:           c.Email,
		FirstName:       c.FirstName,
		LastName:        c.LastName,
		ProfileImageURL: c.ImageURL,
	}
}
