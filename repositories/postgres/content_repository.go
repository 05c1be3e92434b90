package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/upb/content-governance/models"
	"github.com/upb/content-governance/repositories"
	"go.uber.org/zap"
)

// defaultListLimit bounds listings when the caller does not specify one
const defaultListLimit = 50

// ContentRepository implements the repositories.ContentRepository
// interface. Every query is scoped by tenant in the WHERE clause: a row
// owned by another tenant is indistinguishable from a nonexistent one.
type ContentRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewContentRepository creates a new content repository
func NewContentRepository(db *DB, logger *zap.Logger) repositories.ContentRepository {
	return &ContentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new content item
func (r *ContentRepository) Create(ctx context.Context, item *models.ContentItem) error {
	query := `
		INSERT INTO content_items (id, tenant_id, title, state, risk, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		item.ID,
		item.TenantID,
		item.Title,
		item.State,
		item.RiskTier.Label(),
		item.CreatedAt,
		item.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create content item: %w", err)
	}

	r.logger.Debug("content item created",
		zap.String("id", item.ID.String()),
		zap.String("tenant_id", item.TenantID.String()),
		zap.String("state", string(item.State)))
	return nil
}

// GetByID retrieves a content item owned by the tenant
func (r *ContentRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ContentItem, error) {
	query := `
		SELECT id, tenant_id, title, state, risk, created_at, updated_at
		FROM content_items
		WHERE id = $1 AND tenant_id = $2
	`

	executor := GetExecutor(ctx, r.db)
	item, err := scanContentItem(executor.QueryRowContext(ctx, query, id, tenantID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get content item: %w", err)
	}

	return item, nil
}

// List retrieves content items matching the filter plus the total count
// of matches before pagination
func (r *ContentRepository) List(ctx context.Context, tenantID uuid.UUID, filter repositories.ContentFilter, sort repositories.ContentSort, page repositories.Page) ([]*models.ContentItem, int, error) {
	where, args := buildContentWhere(tenantID, filter)

	executor := GetExecutor(ctx, r.db)

	countQuery := "SELECT COUNT(*) FROM content_items WHERE " + where
	var total int
	if err := executor.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count content items: %w", err)
	}

	limit := page.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT id, tenant_id, title, state, risk, created_at, updated_at
		FROM content_items
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, where, orderClause(sort), len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list content items: %w", err)
	}
	defer rows.Close()

	var items []*models.ContentItem
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan content item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating content item rows: %w", err)
	}

	return items, total, nil
}

// UpdateState performs the guarded state write. The WHERE clause pins
// both the tenant and the expected current state, so two concurrent
// transitions that read the same from_state cannot both succeed: the
// loser sees zero rows affected and gets ErrStateConflict.
func (r *ContentRepository) UpdateState(ctx context.Context, tenantID, id uuid.UUID, fromState, toState models.ContentState) (*models.ContentItem, error) {
	query := `
		UPDATE content_items
		SET state = $1,
		    updated_at = $2
		WHERE id = $3 AND tenant_id = $4 AND state = $5
		RETURNING id, tenant_id, title, state, risk, created_at, updated_at
	`

	executor := GetExecutor(ctx, r.db)
	item, err := scanContentItem(executor.QueryRowContext(ctx, query,
		toState,
		time.Now(),
		id,
		tenantID,
		fromState,
	))

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, r.classifyMissedUpdate(ctx, tenantID, id)
		}
		return nil, fmt.Errorf("failed to update content state: %w", err)
	}

	r.logger.Debug("content state updated",
		zap.String("id", item.ID.String()),
		zap.String("from_state", string(fromState)),
		zap.String("to_state", string(item.State)))
	return item, nil
}

// classifyMissedUpdate distinguishes "row gone" from "state moved" after
// a guarded update matched zero rows
func (r *ContentRepository) classifyMissedUpdate(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `SELECT 1 FROM content_items WHERE id = $1 AND tenant_id = $2`

	executor := GetExecutor(ctx, r.db)
	var one int
	err := executor.QueryRowContext(ctx, query, id, tenantID).Scan(&one)
	if err == sql.ErrNoRows {
		return repositories.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to verify content item after missed update: %w", err)
	}
	return repositories.ErrStateConflict
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanContentItem decodes a content item row, mapping the persisted
// TIER_n risk label back to its integer form at the storage boundary
func scanContentItem(row rowScanner) (*models.ContentItem, error) {
	item := &models.ContentItem{}
	var riskLabel string

	err := row.Scan(
		&item.ID,
		&item.TenantID,
		&item.Title,
		&item.State,
		&riskLabel,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	tier, err := models.RiskTierFromLabel(riskLabel)
	if err != nil {
		return nil, fmt.Errorf("corrupt content item row: %w", err)
	}
	item.RiskTier = tier

	return item, nil
}

// buildContentWhere assembles the tenant-scoped WHERE clause and its
// positional arguments
func buildContentWhere(tenantID uuid.UUID, filter repositories.ContentFilter) (string, []interface{}) {
	clauses := []string{"tenant_id = $1"}
	args := []interface{}{tenantID}

	if filter.State != nil {
		args = append(args, *filter.State)
		clauses = append(clauses, fmt.Sprintf("state = $%d", len(args)))
	}
	if filter.RiskTier != nil {
		args = append(args, filter.RiskTier.Label())
		clauses = append(clauses, fmt.Sprintf("risk = $%d", len(args)))
	}
	if filter.TitleQuery != "" {
		args = append(args, "%"+filter.TitleQuery+"%")
		clauses = append(clauses, fmt.Sprintf("title ILIKE $%d", len(args)))
	}

	return strings.Join(clauses, " AND "), args
}

// orderClause maps the allow-listed sort to a SQL ORDER BY expression.
// Anything outside the allow-list falls back to created_at so caller
// input can never reach the ORDER BY clause verbatim.
func orderClause(sort repositories.ContentSort) string {
	column := "created_at"
	switch sort.Field {
	case repositories.SortByCreatedAt:
		column = "created_at"
	case repositories.SortByUpdatedAt:
		column = "updated_at"
	case repositories.SortByTitle:
		column = "title"
	}

	direction := "ASC"
	if sort.Descending {
		direction = "DESC"
	}

	return column + " " + direction
}
