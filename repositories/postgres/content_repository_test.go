package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/content-governance/models"
	"github.com/upb/content-governance/repositories"
	"go.uber.org/zap"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return &DB{DB: sqlDB, logger: zap.NewNop()}, mock
}

func contentColumns() []string {
	return []string{"id", "tenant_id", "title", "state", "risk", "created_at", "updated_at"}
}

func contentRow(item *models.ContentItem) *sqlmock.Rows {
	return sqlmock.NewRows(contentColumns()).AddRow(
		item.ID.String(),
		item.TenantID.String(),
		item.Title,
		string(item.State),
		item.RiskTier.Label(),
		item.CreatedAt,
		item.UpdatedAt,
	)
}

func TestContentRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewContentRepository(db, zap.NewNop())

	item := models.NewContentItem(uuid.New(), "Quarterly outlook", 2)

	mock.ExpectExec("INSERT INTO content_items").
		WithArgs(item.ID, item.TenantID, item.Title, string(item.State), "TIER_2", item.CreatedAt, item.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), item)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepository_GetByID(t *testing.T) {
	t.Run("decodes the persisted risk label", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewContentRepository(db, zap.NewNop())

		item := models.NewContentItem(uuid.New(), "Quarterly outlook", 3)

		mock.ExpectQuery("SELECT id, tenant_id, title, state, risk, created_at, updated_at FROM content_items").
			WithArgs(item.ID, item.TenantID).
			WillReturnRows(contentRow(item))

		got, err := repo.GetByID(context.Background(), item.TenantID, item.ID)

		require.NoError(t, err)
		assert.Equal(t, item.ID, got.ID)
		assert.Equal(t, models.RiskTier(3), got.RiskTier)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row maps to ErrNotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewContentRepository(db, zap.NewNop())

		tenantID, id := uuid.New(), uuid.New()
		mock.ExpectQuery("SELECT id, tenant_id, title, state, risk, created_at, updated_at FROM content_items").
			WithArgs(id, tenantID).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(context.Background(), tenantID, id)

		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("corrupt risk label surfaces as an error", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewContentRepository(db, zap.NewNop())

		tenantID, id := uuid.New(), uuid.New()
		rows := sqlmock.NewRows(contentColumns()).AddRow(
			id.String(), tenantID.String(), "t", "INGESTED", "TIER_9", time.Now(), time.Now(),
		)
		mock.ExpectQuery("SELECT id, tenant_id, title, state, risk, created_at, updated_at FROM content_items").
			WithArgs(id, tenantID).
			WillReturnRows(rows)

		_, err := repo.GetByID(context.Background(), tenantID, id)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "corrupt content item row")
	})
}

func TestContentRepository_List(t *testing.T) {
	t.Run("tenant-only listing with default paging", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewContentRepository(db, zap.NewNop())

		tenantID := uuid.New()
		item := models.NewContentItem(tenantID, "a", 1)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM content_items WHERE tenant_id = \$1`).
			WithArgs(tenantID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`SELECT id, tenant_id, title, state, risk, created_at, updated_at FROM content_items WHERE tenant_id = \$1 ORDER BY created_at ASC LIMIT \$2 OFFSET \$3`).
			WithArgs(tenantID, defaultListLimit, 0).
			WillReturnRows(contentRow(item))

		items, total, err := repo.List(context.Background(), tenantID,
			repositories.ContentFilter{}, repositories.ContentSort{Field: repositories.SortByCreatedAt}, repositories.Page{})

		require.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Equal(t, 1, total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("filters build positional clauses in order", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewContentRepository(db, zap.NewNop())

		tenantID := uuid.New()
		state := models.StateDrafted
		tier := models.RiskTier(2)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM content_items WHERE tenant_id = \$1 AND state = \$2 AND risk = \$3 AND title ILIKE \$4`).
			WithArgs(tenantID, string(state), "TIER_2", "%outlook%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`FROM content_items WHERE tenant_id = \$1 AND state = \$2 AND risk = \$3 AND title ILIKE \$4 ORDER BY title DESC LIMIT \$5 OFFSET \$6`).
			WithArgs(tenantID, string(state), "TIER_2", "%outlook%", 10, 20).
			WillReturnRows(sqlmock.NewRows(contentColumns()))

		items, total, err := repo.List(context.Background(), tenantID,
			repositories.ContentFilter{State: &state, RiskTier: &tier, TitleQuery: "outlook"},
			repositories.ContentSort{Field: repositories.SortByTitle, Descending: true},
			repositories.Page{Limit: 10, Offset: 20})

		require.NoError(t, err)
		assert.Empty(t, items)
		assert.Equal(t, 0, total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestContentRepository_UpdateState(t *testing.T) {
	tenantID := uuid.New()

	t.Run("guarded update returns the new row", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewContentRepository(db, zap.NewNop())

		item := models.NewContentItem(tenantID, "x", 1)
		updated := *item
		updated.State = models.StateClassified

		mock.ExpectQuery("UPDATE content_items").
			WithArgs(string(models.StateClassified), sqlmock.AnyArg(), item.ID, tenantID, string(models.StateIngested)).
			WillReturnRows(contentRow(&updated))

		got, err := repo.UpdateState(context.Background(), tenantID, item.ID, models.StateIngested, models.StateClassified)

		require.NoError(t, err)
		assert.Equal(t, models.StateClassified, got.State)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero rows with a surviving row is a state conflict", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewContentRepository(db, zap.NewNop())

		id := uuid.New()
		mock.ExpectQuery("UPDATE content_items").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery("SELECT 1 FROM content_items").
			WithArgs(id, tenantID).
			WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

		_, err := repo.UpdateState(context.Background(), tenantID, id, models.StateIngested, models.StateClassified)

		assert.ErrorIs(t, err, repositories.ErrStateConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero rows with no row at all is not-found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewContentRepository(db, zap.NewNop())

		id := uuid.New()
		mock.ExpectQuery("UPDATE content_items").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery("SELECT 1 FROM content_items").
			WithArgs(id, tenantID).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.UpdateState(context.Background(), tenantID, id, models.StateIngested, models.StateClassified)

		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("other failures pass through wrapped", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewContentRepository(db, zap.NewNop())

		driverErr := errors.New("connection reset")
		mock.ExpectQuery("UPDATE content_items").WillReturnError(driverErr)

		_, err := repo.UpdateState(context.Background(), tenantID, uuid.New(), models.StateIngested, models.StateClassified)

		require.Error(t, err)
		assert.ErrorIs(t, err, driverErr)
		assert.NotErrorIs(t, err, repositories.ErrStateConflict)
	})
}

func TestOrderClause(t *testing.T) {
	tests := []struct {
		name string
		sort repositories.ContentSort
		want string
	}{
		{"created ascending", repositories.ContentSort{Field: repositories.SortByCreatedAt}, "created_at ASC"},
		{"updated descending", repositories.ContentSort{Field: repositories.SortByUpdatedAt, Descending: true}, "updated_at DESC"},
		{"title ascending", repositories.ContentSort{Field: repositories.SortByTitle}, "title ASC"},
		{"unknown field falls back to created_at", repositories.ContentSort{Field: repositories.SortField("id; DROP TABLE content_items")}, "created_at ASC"},
		{"empty field falls back to created_at", repositories.ContentSort{}, "created_at ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, orderClause(tt.sort))
		})
	}
}

func TestBuildContentWhere(t *testing.T) {
	tenantID := uuid.New()

	t.Run("always pins the tenant first", func(t *testing.T) {
		where, args := buildContentWhere(tenantID, repositories.ContentFilter{})
		assert.Equal(t, "tenant_id = $1", where)
		assert.Equal(t, []interface{}{tenantID}, args)
	})

	t.Run("appends filters with sequential placeholders", func(t *testing.T) {
		state := models.StateDrafted
		tier := models.RiskTier(1)
		where, args := buildContentWhere(tenantID, repositories.ContentFilter{
			State: &state, RiskTier: &tier, TitleQuery: "out",
		})
		assert.Equal(t, "tenant_id = $1 AND state = $2 AND risk = $3 AND title ILIKE $4", where)
		assert.Equal(t, []interface{}{tenantID, state, "TIER_1", "%out%"}, args)
	})
}
