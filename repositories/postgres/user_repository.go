package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/upb/accounts-api/models"
	"github.com/upb/accounts-api/repositories"
	"go.uber.org/zap"
)

const userColumns = `id, clerk_id, first_name, last_name, email, profile_image_url,
		role, is_active, organization_id, created_at, updated_at, deleted_at, is_deleted`

// UserRepository implements the repositories.UserRepository interface
type UserRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB, logger *zap.Logger) repositories.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, clerk_id, first_name, last_name, email, profile_image_url,
			role, is_active, organization_id, created_at, updated_at, deleted_at, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		user.ID,
		user.ClerkID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.ProfileImageURL,
		user.Role,
		user.IsActive,
		user.OrganizationID,
		user.CreatedAt,
		user.UpdatedAt,
		user.DeletedAt,
		user.IsDeleted,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", repositories.ErrDuplicate, err)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Debug("user created", zap.String("id", user.ID.String()), zap.String("email", user.Email))
	return nil
}

// GetByID retrieves a user by internal id
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE id = $1 AND is_deleted = FALSE
	`, userColumns)

	executor := GetExecutor(ctx, r.db)
	return scanUser(executor.QueryRowContext(ctx, query, id))
}

// GetByClerkID retrieves a user by Clerk subject id
func (r *UserRepository) GetByClerkID(ctx context.Context, clerkID string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE clerk_id = $1 AND is_deleted = FALSE
	`, userColumns)

	executor := GetExecutor(ctx, r.db)
	return scanUser(executor.QueryRowContext(ctx, query, clerkID))
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE email = $1 AND is_deleted = FALSE
	`, userColumns)

	executor := GetExecutor(ctx, r.db)
	return scanUser(executor.QueryRowContext(ctx, query, email))
}

// EmailTaken reports whether an active user other than excludeID owns the email
func (r *UserRepository) EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM users
			WHERE email = $1 AND id <> $2 AND is_deleted = FALSE
		)
	`

	executor := GetExecutor(ctx, r.db)
	var taken bool
	if err := executor.QueryRowContext(ctx, query, email, excludeID).Scan(&taken); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}

	return taken, nil
}

// ListByOrganization retrieves all active users of an organization
func (r *UserRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE organization_id = $1 AND is_deleted = FALSE
		ORDER BY created_at DESC
	`, userColumns)

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		err := rows.Scan(
			&user.ID,
			&user.ClerkID,
			&user.FirstName,
			&user.LastName,
			&user.Email,
			&user.ProfileImageURL,
			&user.Role,
			&user.IsActive,
			&user.OrganizationID,
			&user.CreatedAt,
			&user.UpdatedAt,
			&user.DeletedAt,
			&user.IsDeleted,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

// Update persists all mutable fields of a user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET clerk_id = $2,
		    first_name = $3,
		    last_name = $4,
		    email = $5,
		    profile_image_url = $6,
		    role = $7,
		    is_active = $8,
		    organization_id = $9,
		    updated_at = $10
		WHERE id = $1 AND is_deleted = FALSE
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		user.ID,
		user.ClerkID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.ProfileImageURL,
		user.Role,
		user.IsActive,
		user.OrganizationID,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", repositories.ErrDuplicate, err)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: user %s", repositories.ErrNotFound, user.ID)
	}

	r.logger.Debug("user updated", zap.String("id", user.ID.String()))
	return nil
}

// SoftDelete flags a user as deleted
func (r *UserRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE users
		SET is_deleted = TRUE,
		    deleted_at = $2,
		    updated_at = $2
		WHERE id = $1 AND is_deleted = FALSE
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: user %s", repositories.ErrNotFound, id)
	}

	r.logger.Debug("user deleted", zap.String("id", id.String()))
	return nil
}

// scanUser scans a single user row, mapping sql.ErrNoRows to ErrNotFound
func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.ClerkID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.ProfileImageURL,
		&user.Role,
		&user.IsActive,
		&user.OrganizationID,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.DeletedAt,
		&user.IsDeleted,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: user", repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}
