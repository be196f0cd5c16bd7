package clerk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var (
	// ErrUserNotFound is returned when the subject id is unknown to Clerk
	ErrUserNotFound = errors.New("user not found in clerk")

	// ErrProfileUnavailable is returned when the user API cannot be reached
	ErrProfileUnavailable = errors.New("clerk user api unavailable")
)

// Client calls the Clerk backend user API. It is used by the auth middleware
// to fetch a richer profile than the token claims carry; failures degrade to
// the token-embedded claims rather than failing the request.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

// NewClient creates a Clerk backend API client
func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// clerkUser mirrors the wire shape of Clerk's user object
type clerkUser struct {
	ID                    string `json:"id"`
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	ProfileImageURL       string `json:"profile_image_url"`
	ImageURL              string `json:"image_url"`
	PrimaryEmailAddressID string `json:"primary_email_address_id"`
	EmailAddresses        []struct {
		ID           string `json:"id"`
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
}

// GetUser fetches the provider profile for a subject id
func (c *Client) GetUser(ctx context.Context, userID string) (*Profile, error) {
	endpoint := fmt.Sprintf("%s/v1/users/%s", c.baseURL, url.PathEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status code %d", ErrProfileUnavailable, resp.StatusCode)
	}

	var user clerkUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileUnavailable, err)
	}

	imageURL := user.ProfileImageURL
	if imageURL == "" {
		imageURL = user.ImageURL
	}

	return &Profile{
		ID:              user.ID,
		Email:           primaryEmail(&user),
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		ProfileImageURL: imageURL,
	}, nil
}

// primaryEmail extracts the primary email address, falling back to the first
// listed address when no primary is flagged.
func primaryEmail(u *clerkUser) string {
	for _, addr := range u.EmailAddresses {
		if addr.ID != "" && addr.ID == u.PrimaryEmailAddressID {
			return addr.EmailAddress
		}
	}
	if len(u.EmailAddresses) > 0 {
		return u.EmailAddresses[0].EmailAddress
	}
	return ""
}
