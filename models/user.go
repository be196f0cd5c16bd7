package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserRole represents the application-level role of a user
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// DefaultProfileImageURL is used when the identity provider reports no avatar
const DefaultProfileImageURL = "https://www.profileimageurl.com"

// User represents a locally persisted user. Identity is owned by Clerk;
// ClerkID links this record to the provider's subject id. Users are never
// hard-deleted, only flagged via IsDeleted/DeletedAt.
type User struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	ClerkID         *string    `json:"clerk_id" db:"clerk_id"`
	FirstName       string     `json:"first_name" db:"first_name"`
	LastName        string     `json:"last_name" db:"last_name"`
	Email           string     `json:"email" db:"email"`
	ProfileImageURL string     `json:"profile_image_url" db:"profile_image_url"`
	Role            UserRole   `json:"role" db:"role"`
	IsActive        bool       `json:"is_active" db:"is_active"`
	OrganizationID  *uuid.UUID `json:"organization_id" db:"organization_id"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at" db:"deleted_at"`
	IsDeleted       bool       `json:"is_deleted" db:"is_deleted"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User instance with a generated id and defaults
func NewUser(email, firstName, lastName, profileImageURL string) *User {
	now := time.Now().UTC()
	if profileImageURL == "" {
		profileImageURL = DefaultProfileImageURL
	}
	return &User{
		ID:              uuid.New(),
		FirstName:       firstName,
		LastName:        lastName,
		Email:           email,
		ProfileImageURL: profileImageURL,
		Role:            RoleUser,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// FullName returns the display name assembled from the name parts
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Linked returns true if the user is linked to a Clerk identity
func (u *User) Linked() bool {
	return u.ClerkID != nil && *u.ClerkID != ""
}
