package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/upb/content-governance/models"
	"github.com/upb/content-governance/repositories"
	"go.uber.org/zap"
)

// TenantRepository implements the repositories.TenantRepository interface
type TenantRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *DB, logger *zap.Logger) repositories.TenantRepository {
	return &TenantRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a tenant. Tenants are created by provisioning tooling
// and test fixtures, never by request handling.
func (r *TenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, slug, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		tenant.ID,
		tenant.Name,
		tenant.Slug,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}

	r.logger.Debug("tenant created", zap.String("id", tenant.ID.String()), zap.String("slug", tenant.Slug))
	return nil
}

// GetByID retrieves a tenant by internal key
func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	query := `
		SELECT id, name, slug, created_at, updated_at
		FROM tenants
		WHERE id = $1
	`

	return r.queryTenant(ctx, query, id)
}

// GetBySlug retrieves a tenant by its unique slug
func (r *TenantRepository) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	query := `
		SELECT id, name, slug, created_at, updated_at
		FROM tenants
		WHERE slug = $1
	`

	return r.queryTenant(ctx, query, slug)
}

func (r *TenantRepository) queryTenant(ctx context.Context, query string, arg interface{}) (*models.Tenant, error) {
	executor := GetExecutor(ctx, r.db)
	tenant := &models.Tenant{}

	err := executor.QueryRowContext(ctx, query, arg).Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Slug,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	return tenant, nil
}
