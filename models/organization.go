package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents a tenant a user can belong to. A user belongs to at
// most one organization; the creating user is promoted to admin within it.
type Organization struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	OrgURL    *string    `json:"org_url" db:"org_url"` // URL-friendly identifier, unique when set
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" db:"deleted_at"`
	IsDeleted bool       `json:"is_deleted" db:"is_deleted"`
}

// TableName returns the table name for the Organization model
func (Organization) TableName() string {
	return "organizations"
}

// NewOrganization creates a new Organization instance
func NewOrganization(name string, orgURL *string) *Organization {
	now := time.Now().UTC()
	return &Organization{
		ID:        uuid.New(),
		Name:      name,
		OrgURL:    orgURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
