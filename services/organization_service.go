package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/upb/accounts-api/models"
	"github.com/upb/accounts-api/repositories"
	"go.uber.org/zap"
)

// CreateOrganizationInput is the payload for creating an organization
type CreateOrganizationInput struct {
	Name   string  `json:"name" validate:"required,min=2,max=100"`
	OrgURL *string `json:"org_url,omitempty" validate:"omitempty,min=2,max=100"`
}

// UpdateOrganizationInput is the payload for updating an organization
type UpdateOrganizationInput struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	OrgURL *string `json:"org_url,omitempty" validate:"omitempty,min=2,max=100"`
}

// OrganizationService handles organization lifecycle and membership
type OrganizationService struct {
	orgs   repositories.OrganizationRepository
	users  repositories.UserRepository
	txMgr  repositories.TransactionManager
	logger *zap.Logger
}

// NewOrganizationService creates a new organization service
func NewOrganizationService(
	orgs repositories.OrganizationRepository,
	users repositories.UserRepository,
	txMgr repositories.TransactionManager,
	logger *zap.Logger,
) *OrganizationService {
	return &OrganizationService{
		orgs:   orgs,
		users:  users,
		txMgr:  txMgr,
		logger: logger,
	}
}

// Create creates an organization, attaches the calling user to it and
// promotes them to admin. The organization insert and the user update
// happen in one transaction.
func (s *OrganizationService) Create(ctx context.Context, userID uuid.UUID, input CreateOrganizationInput) (*models.Organization, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, WrapInternal("failed to get user", err)
	}

	if user.OrganizationID != nil {
		return nil, ErrUserHasOrganization.WithDetail("organization_id", user.OrganizationID.String())
	}

	org := models.NewOrganization(input.Name, input.OrgURL)

	if org.OrgURL != nil {
		taken, err := s.orgs.OrgURLTaken(ctx, *org.OrgURL, org.ID)
		if err != nil {
			return nil, WrapInternal("failed to check org url", err)
		}
		if taken {
			return nil, ErrDuplicateOrgURL.WithDetail("org_url", *org.OrgURL)
		}
	}

	err = s.txMgr.InTransaction(ctx, func(txCtx context.Context, _ repositories.Transaction) error {
		if err := s.orgs.Create(txCtx, org); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return ErrDuplicateOrgURL
			}
			return WrapInternal("failed to create organization", err)
		}

		user.OrganizationID = &org.ID
		user.Role = models.RoleAdmin
		user.UpdatedAt = time.Now().UTC()

		if err := s.users.Update(txCtx, user); err != nil {
			return WrapInternal("failed to attach user to organization", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("organization created",
		zap.String("organization_id", org.ID.String()),
		zap.String("name", org.Name),
		zap.String("owner_id", user.ID.String()),
	)

	return org, nil
}

// GetForUser returns the organization the user belongs to
func (s *OrganizationService) GetForUser(ctx context.Context, userID uuid.UUID) (*models.Organization, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, WrapInternal("failed to get user", err)
	}

	if user.OrganizationID == nil {
		return nil, ErrUserNoOrganization
	}

	org, err := s.orgs.GetByID(ctx, *user.OrganizationID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, WrapInternal("failed to get organization", err)
	}

	return org, nil
}

// UpdateForUser updates the organization the user belongs to
func (s *OrganizationService) UpdateForUser(ctx context.Context, userID uuid.UUID, input UpdateOrganizationInput) (*models.Organization, error) {
	org, err := s.GetForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		org.Name = *input.Name
	}
	if input.OrgURL != nil {
		taken, err := s.orgs.OrgURLTaken(ctx, *input.OrgURL, org.ID)
		if err != nil {
			return nil, WrapInternal("failed to check org url", err)
		}
		if taken {
			return nil, ErrDuplicateOrgURL.WithDetail("org_url", *input.OrgURL)
		}
		org.OrgURL = input.OrgURL
	}
	org.UpdatedAt = time.Now().UTC()

	if err := s.orgs.Update(ctx, org); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrDuplicateOrgURL
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, WrapInternal("failed to update organization", err)
	}

	s.logger.Info("organization updated", zap.String("organization_id", org.ID.String()))

	return org, nil
}

// ListUsers returns all active members of the user's organization
func (s *OrganizationService) ListUsers(ctx context.Context, userID uuid.UUID) ([]*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, WrapInternal("failed to get user", err)
	}

	if user.OrganizationID == nil {
		return nil, ErrUserNoOrganization
	}

	members, err := s.users.ListByOrganization(ctx, *user.OrganizationID)
	if err != nil {
		return nil, WrapInternal("failed to list organization users", err)
	}

	return members, nil
}
