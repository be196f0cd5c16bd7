package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/upb/accounts-api/app"
	"github.com/upb/accounts-api/models"
	"github.com/upb/accounts-api/repositories"
	"github.com/upb/accounts-api/services"
	"go.uber.org/zap"
)

// fakeUserRepo is an in-memory repositories.UserRepository for handler tests
type fakeUserRepo struct {
	users map[uuid.UUID]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, fmt.Errorf("%w: user", repositories.ErrNotFound)
}

func (r *fakeUserRepo) GetByClerkID(ctx context.Context, clerkID string) (*models.User, error) {
	for _, user := range r.users {
		if user.ClerkID != nil && *user.ClerkID == clerkID {
			return user, nil
		}
	}
	return nil, fmt.Errorf("%w: user", repositories.ErrNotFound)
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, fmt.Errorf("%w: user", repositories.ErrNotFound)
}

func (r *fakeUserRepo) EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	for _, user := range r.users {
		if user.Email == email && user.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.User, error) {
	var members []*models.User
	for _, user := range r.users {
		if user.OrganizationID != nil && *user.OrganizationID == orgID {
			members = append(members, user)
		}
	}
	return members, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("%w: user", repositories.ErrNotFound)
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.users[id]; !ok {
		return fmt.Errorf("%w: user", repositories.ErrNotFound)
	}
	delete(r.users, id)
	return nil
}

// fakeOrgRepo is an in-memory repositories.OrganizationRepository
type fakeOrgRepo struct {
	orgs map[uuid.UUID]*models.Organization
}

func newFakeOrgRepo(orgs ...*models.Organization) *fakeOrgRepo {
	repo := &fakeOrgRepo{orgs: make(map[uuid.UUID]*models.Organization)}
	for _, o := range orgs {
		repo.orgs[o.ID] = o
	}
	return repo
}

func (r *fakeOrgRepo) Create(ctx context.Context, org *models.Organization) error {
	r.orgs[org.ID] = org
	return nil
}

func (r *fakeOrgRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	if org, ok := r.orgs[id]; ok {
		return org, nil
	}
	return nil, fmt.Errorf("%w: organization", repositories.ErrNotFound)
}

func (r *fakeOrgRepo) GetByOrgURL(ctx context.Context, orgURL string) (*models.Organization, error) {
	for _, org := range r.orgs {
		if org.OrgURL != nil && *org.OrgURL == orgURL {
			return org, nil
		}
	}
	return nil, fmt.Errorf("%w: organization", repositories.ErrNotFound)
}

func (r *fakeOrgRepo) OrgURLTaken(ctx context.Context, orgURL string, excludeID uuid.UUID) (bool, error) {
	for _, org := range r.orgs {
		if org.OrgURL != nil && *org.OrgURL == orgURL && org.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeOrgRepo) Update(ctx context.Context, org *models.Organization) error {
	if _, ok := r.orgs[org.ID]; !ok {
		return fmt.Errorf("%w: organization", repositories.ErrNotFound)
	}
	r.orgs[org.ID] = org
	return nil
}

func (r *fakeOrgRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	delete(r.orgs, id)
	return nil
}

// fakeTxManager runs transactional functions inline without a database
type fakeTxManager struct{}

func (m *fakeTxManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	return &fakeTx{ctx: ctx}, nil
}

func (m *fakeTxManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	return fn(ctx, &fakeTx{ctx: ctx})
}

type fakeTx struct{ ctx context.Context }

func (t *fakeTx) Commit() error            { return nil }
func (t *fakeTx) Rollback() error          { return nil }
func (t *fakeTx) Context() context.Context { return t.ctx }

// newTestDependencies wires real services over in-memory repositories
func newTestDependencies(users *fakeUserRepo, orgs *fakeOrgRepo) *app.Dependencies {
	logger := zap.NewNop()
	return &app.Dependencies{
		Logger:              logger,
		Users:               users,
		Organizations:       orgs,
		TxManager:           &fakeTxManager{},
		UserService:         services.NewUserService(users, logger),
		OrganizationService: services.NewOrganizationService(orgs, users, &fakeTxManager{}, logger),
	}
}
