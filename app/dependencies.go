package app

import (
	"context"
	"fmt"

	"github.com/upb/accounts-api/clerk"
	"github.com/upb/accounts-api/config"
	"github.com/upb/accounts-api/middleware"
	"github.com/upb/accounts-api/repositories"
	"github.com/upb/accounts-api/repositories/postgres"
	"github.com/upb/accounts-api/services"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Users         repositories.UserRepository
	Organizations repositories.OrganizationRepository
	TxManager     repositories.TransactionManager

	// Clerk integration
	KeyCache    *clerk.KeyCache
	Verifier    *clerk.Verifier
	ClerkClient *clerk.Client

	// Services
	UserService         *services.UserService
	OrganizationService *services.OrganizationService

	// Auth
	AuthMiddleware *middleware.AuthMiddleware
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initRepositories()
	deps.initServices()

	if err := deps.initAuth(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the PostgreSQL database connection and factory
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	if err := d.DB.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if err := d.DB.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	d.Logger.Info("database connection established",
		zap.String("connection", cfg.Database.LogString()))

	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Users = repos.Users
	d.Organizations = repos.Organizations
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

// initServices initializes the service layer
func (d *Dependencies) initServices() {
	d.UserService = services.NewUserService(d.Users, d.Logger)
	d.OrganizationService = services.NewOrganizationService(d.Organizations, d.Users, d.TxManager, d.Logger)

	d.Logger.Info("services initialized")
}

// initAuth wires the Clerk token verifier, profile client and the route
// protection middleware.
func (d *Dependencies) initAuth(cfg *config.Config) error {
	if cfg.Clerk.Issuer == "" {
		d.Logger.Warn("clerk issuer not configured, protected routes will reject all requests")
	}

	d.KeyCache = clerk.NewKeyCache(cfg.Clerk.Issuer, cfg.Clerk.HTTPTimeout)
	d.Verifier = clerk.NewVerifier(d.KeyCache, cfg.Clerk.Issuer, cfg.Clerk.Audience)
	d.ClerkClient = clerk.NewClient(cfg.Clerk.APIBaseURL, cfg.Clerk.SecretKey, cfg.Clerk.HTTPTimeout)

	authMiddleware, err := middleware.NewAuthMiddleware(
		d.Verifier,
		d.ClerkClient,
		d.UserService,
		cfg.Auth.ProtectedPaths,
		cfg.Auth.ExcludePaths,
		d.Logger,
	)
	if err != nil {
		return err
	}

	d.AuthMiddleware = authMiddleware
	d.Logger.Info("auth middleware initialized",
		zap.Strings("protected_paths", cfg.Auth.ProtectedPaths),
		zap.Strings("exclude_paths", cfg.Auth.ExcludePaths))

	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
