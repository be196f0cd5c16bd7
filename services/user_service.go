package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/upb/accounts-api/clerk"
	"github.com/upb/accounts-api/models"
	"github.com/upb/accounts-api/repositories"
	"go.uber.org/zap"
)

// UserService handles user lookups and reconciliation of Clerk identities
// with local user records.
type UserService struct {
	users  repositories.UserRepository
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(users repositories.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger,
	}
}

// GetByID retrieves a user by internal id
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, WrapInternal("failed to get user", err)
	}
	return user, nil
}

// GetByClerkID retrieves a user by Clerk subject id
func (s *UserService) GetByClerkID(ctx context.Context, clerkID string) (*models.User, error) {
	user, err := s.users.GetByClerkID(ctx, clerkID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, WrapInternal("failed to get user", err)
	}
	return user, nil
}

// Reconcile ensures a local user record exists for the given Clerk subject
// id and returns it. Lookup order is clerk id first, then email; a match by
// email links the Clerk id to the existing record. Provider values win over
// stored values on every sync, with empty names falling back to empty
// strings and the stored profile image kept when the provider sends none.
func (s *UserService) Reconcile(ctx context.Context, clerkID string, profile *clerk.Profile) (*models.User, error) {
	if clerkID == "" {
		return nil, ErrSubjectRequired
	}

	user, err := s.users.GetByClerkID(ctx, clerkID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, WrapInternal("failed to look up user by clerk id", err)
	}

	if user == nil && profile.Email != "" {
		user, err = s.users.GetByEmail(ctx, profile.Email)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, WrapInternal("failed to look up user by email", err)
		}
	}

	if user != nil {
		return s.syncExisting(ctx, user, clerkID, profile)
	}

	return s.createFromProfile(ctx, clerkID, profile)
}

// syncExisting overwrites the local record with the provider profile and
// links the clerk id when it is not set yet.
func (s *UserService) syncExisting(ctx context.Context, user *models.User, clerkID string, profile *clerk.Profile) (*models.User, error) {
	if profile.Email != "" && profile.Email != user.Email {
		taken, err := s.users.EmailTaken(ctx, profile.Email, user.ID)
		if err != nil {
			return nil, WrapInternal("failed to check email", err)
		}
		if taken {
			return nil, ErrDuplicateEmail.WithDetail("email", profile.Email)
		}
		user.Email = profile.Email
	}

	user.FirstName = profile.FirstName
	user.LastName = profile.LastName
	if profile.ProfileImageURL != "" {
		user.ProfileImageURL = profile.ProfileImageURL
	}
	if user.ClerkID == nil {
		user.ClerkID = &clerkID
		s.logger.Info("linked existing user to clerk identity",
			zap.String("user_id", user.ID.String()),
			zap.String("clerk_id", clerkID),
		)
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, WrapInternal("failed to update user", err)
	}

	return user, nil
}

// createFromProfile creates a new user record from the provider profile.
func (s *UserService) createFromProfile(ctx context.Context, clerkID string, profile *clerk.Profile) (*models.User, error) {
	if profile.Email == "" {
		return nil, ErrEmailRequired
	}

	taken, err := s.users.EmailTaken(ctx, profile.Email, uuid.Nil)
	if err != nil {
		return nil, WrapInternal("failed to check email", err)
	}
	if taken {
		return nil, ErrDuplicateEmail.WithDetail("email", profile.Email)
	}

	user := models.NewUser(profile.Email, profile.FirstName, profile.LastName, profile.ProfileImageURL)
	user.ClerkID = &clerkID

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, WrapInternal(fmt.Sprintf("failed to create user for clerk id %s", clerkID), err)
	}

	s.logger.Info("created user from clerk identity",
		zap.String("user_id", user.ID.String()),
		zap.String("clerk_id", clerkID),
		zap.String("email", user.Email),
	)

	return user, nil
}
