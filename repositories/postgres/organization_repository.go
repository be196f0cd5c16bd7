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

const orgColumns = `id, name, org_url, created_at, updated_at, deleted_at, is_deleted`

// OrganizationRepository implements the repositories.OrganizationRepository interface
type OrganizationRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(db *DB, logger *zap.Logger) repositories.OrganizationRepository {
	return &OrganizationRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new organization
func (r *OrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	query := `
		INSERT INTO organizations (id, name, org_url, created_at, updated_at, deleted_at, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		org.ID,
		org.Name,
		org.OrgURL,
		org.CreatedAt,
		org.UpdatedAt,
		org.DeletedAt,
		org.IsDeleted,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", repositories.ErrDuplicate, err)
		}
		return fmt.Errorf("failed to create organization: %w", err)
	}

	r.logger.Debug("organization created", zap.String("id", org.ID.String()), zap.String("name", org.Name))
	return nil
}

// GetByID retrieves an organization by id
func (r *OrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM organizations
		WHERE id = $1 AND is_deleted = FALSE
	`, orgColumns)

	executor := GetExecutor(ctx, r.db)
	return scanOrganization(executor.QueryRowContext(ctx, query, id))
}

// GetByOrgURL retrieves an organization by its url slug
func (r *OrganizationRepository) GetByOrgURL(ctx context.Context, orgURL string) (*models.Organization, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM organizations
		WHERE org_url = $1 AND is_deleted = FALSE
	`, orgColumns)

	executor := GetExecutor(ctx, r.db)
	return scanOrganization(executor.QueryRowContext(ctx, query, orgURL))
}

// OrgURLTaken reports whether an active organization other than excludeID owns the slug
func (r *OrganizationRepository) OrgURLTaken(ctx context.Context, orgURL string, excludeID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM organizations
			WHERE org_url = $1 AND id <> $2 AND is_deleted = FALSE
		)
	`

	executor := GetExecutor(ctx, r.db)
	var taken bool
	if err := executor.QueryRowContext(ctx, query, orgURL, excludeID).Scan(&taken); err != nil {
		return false, fmt.Errorf("failed to check org url: %w", err)
	}

	return taken, nil
}

// Update persists all mutable fields of an organization
func (r *OrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	query := `
		UPDATE organizations
		SET name = $2,
		    org_url = $3,
		    updated_at = $4
		WHERE id = $1 AND is_deleted = FALSE
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		org.ID,
		org.Name,
		org.OrgURL,
		org.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", repositories.ErrDuplicate, err)
		}
		return fmt.Errorf("failed to update organization: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: organization %s", repositories.ErrNotFound, org.ID)
	}

	r.logger.Debug("organization updated", zap.String("id", org.ID.String()))
	return nil
}

// SoftDelete flags an organization as deleted
func (r *OrganizationRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE organizations
		SET is_deleted = TRUE,
		    deleted_at = $2,
		    updated_at = $2
		WHERE id = $1 AND is_deleted = FALSE
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: organization %s", repositories.ErrNotFound, id)
	}

	r.logger.Debug("organization deleted", zap.String("id", id.String()))
	return nil
}

// scanOrganization scans a single organization row
func scanOrganization(row *sql.Row) (*models.Organization, error) {
	org := &models.Organization{}
	err := row.Scan(
		&org.ID,
		&org.Name,
		&org.OrgURL,
		&org.CreatedAt,
		&org.UpdatedAt,
		&org.DeletedAt,
		&org.IsDeleted,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: organization", repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	return org, nil
}
