package app

import (
	"context"
	"fmt"

	"github.com/upb/content-governance/config"
	"github.com/upb/content-governance/middleware"
	"github.com/upb/content-governance/repositories"
	"github.com/upb/content-governance/repositories/postgres"
	"github.com/upb/content-governance/services/content"
	"github.com/upb/content-governance/services/tenant"
	"github.com/upb/content-governance/workflow"
	"go.uber.org/zap"
)

// Version is reported by the health endpoints
const Version = "0.4.0"

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
	Tenants   repositories.TenantRepository
	Content   repositories.ContentRepository
	Events    repositories.EventRepository
	TxManager repositories.TransactionManager

	// Services
	TenantResolver *tenant.Resolver
	ContentService *content.Service

	// Middleware
	TenantMiddleware *middleware.TenantMiddleware
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
	deps.initServices(cfg)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the PostgreSQL connection and schema
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	if err := d.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if err := factory.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Tenants = repos.Tenants
	d.Content = repos.Content
	d.Events = repos.Events
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

// initServices wires the tenant resolver and the content orchestrator
func (d *Dependencies) initServices(cfg *config.Config) {
	d.TenantResolver = tenant.NewResolver(d.Tenants, d.Logger)

	d.ContentService = content.NewService(
		d.Content,
		d.Events,
		d.TxManager,
		workflow.DefaultPolicy(),
		d.Logger,
		content.Config{EventListCap: cfg.Workflow.EventListCap},
	)

	d.TenantMiddleware = middleware.NewTenantMiddleware(d.TenantResolver, d.Logger)

	d.Logger.Info("services initialized")
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
