package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/content-governance/models"
	"github.com/upb/content-governance/repositories"
	"go.uber.org/zap"
)

func tenantRow(tenant *models.Tenant) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "slug", "created_at", "updated_at"}).
		AddRow(tenant.ID.String(), tenant.Name, tenant.Slug, tenant.CreatedAt, tenant.UpdatedAt)
}

func TestTenantRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTenantRepository(db, zap.NewNop())

	tenant := models.NewTenant("Acme Publishing", "acme")

	mock.ExpectExec("INSERT INTO tenants").
		WithArgs(tenant.ID, tenant.Name, tenant.Slug, tenant.CreatedAt, tenant.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), tenant)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantRepository_GetBySlug(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTenantRepository(db, zap.NewNop())

		tenant := models.NewTenant("Acme Publishing", "acme")
		mock.ExpectQuery(`FROM tenants WHERE slug = \$1`).
			WithArgs("acme").
			WillReturnRows(tenantRow(tenant))

		got, err := repo.GetBySlug(context.Background(), "acme")

		require.NoError(t, err)
		assert.Equal(t, tenant.ID, got.ID)
		assert.Equal(t, "acme", got.Slug)
	})

	t.Run("unknown slug maps to ErrNotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTenantRepository(db, zap.NewNop())

		mock.ExpectQuery(`FROM tenants WHERE slug = \$1`).
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetBySlug(context.Background(), "ghost")

		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestTenantRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTenantRepository(db, zap.NewNop())

	tenant := models.NewTenant("Acme Publishing", "acme")
	mock.ExpectQuery(`FROM tenants WHERE id = \$1`).
		WithArgs(tenant.ID).
		WillReturnRows(tenantRow(tenant))

	got, err := repo.GetByID(context.Background(), tenant.ID)

	require.NoError(t, err)
	assert.Equal(t, tenant.Slug, got.Slug)
}

func TestTenantRepository_GetByID_Missing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTenantRepository(db, zap.NewNop())

	id := uuid.New()
	mock.ExpectQuery(`FROM tenants WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), id)

	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
