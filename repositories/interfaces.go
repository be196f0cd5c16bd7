package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/accounts-api/models"
)

var (
	// ErrNotFound is returned when no matching non-deleted record exists
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a write violates a uniqueness constraint
	ErrDuplicate = errors.New("duplicate value")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction.
	// Automatically commits if the function succeeds, rolls back on error.
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// UserRepository handles user data operations. All lookups exclude
// soft-deleted records; deletion is soft-delete only.
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by internal id
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByClerkID retrieves a user by Clerk subject id
	GetByClerkID(ctx context.Context, clerkID string) (*models.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// EmailTaken reports whether an active user other than excludeID owns the email
	EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)

	// ListByOrganization retrieves all active users of an organization
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.User, error)

	// Update persists all mutable fields of a user
	Update(ctx context.Context, user *models.User) error

	// SoftDelete flags a user as deleted
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// OrganizationRepository handles organization data operations
type OrganizationRepository interface {
	// Create creates a new organization
	Create(ctx context.Context, org *models.Organization) error

	// GetByID retrieves an organization by id
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)

	// GetByOrgURL retrieves an organization by its url slug
	GetByOrgURL(ctx context.Context, orgURL string) (*models.Organization, error)

	// OrgURLTaken reports whether an active organization other than excludeID owns the slug
	OrgURLTaken(ctx context.Context, orgURL string, excludeID uuid.UUID) (bool, error)

	// Update persists all mutable fields of an organization
	Update(ctx context.Context, org *models.Organization) error

	// SoftDelete flags an organization as deleted
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// Repositories groups all repository instances
type Repositories struct {
	Users         UserRepository
	Organizations OrganizationRepository
}
