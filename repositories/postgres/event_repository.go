package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/upb/content-governance/models"
	"github.com/upb/content-governance/repositories"
	"go.uber.org/zap"
)

// EventRepository implements the repositories.EventRepository interface.
// The tables it writes are append-only: there is no update or delete
// path, by contract.
type EventRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *DB, logger *zap.Logger) repositories.EventRepository {
	return &EventRepository{
		db:     db,
		logger: logger,
	}
}

// Insert appends a new event
func (r *EventRepository) Insert(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (
			id, tenant_id, entity_type, entity_id, event_type,
			actor_type, actor_id, payload, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		event.ID,
		event.TenantID,
		event.EntityType,
		event.EntityID,
		event.EventType,
		event.ActorType,
		event.ActorID,
		event.Payload,
		event.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	r.logger.Debug("event appended",
		zap.String("id", event.ID.String()),
		zap.String("event_type", string(event.EventType)),
		zap.String("entity_id", event.EntityID.String()))
	return nil
}

// ListForEntity retrieves events for an entity ascending by created_at.
// limit <= 0 means unbounded; the operator-facing cap lives in config,
// not here.
func (r *EventRepository) ListForEntity(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID, limit int) ([]*models.Event, error) {
	query := `
		SELECT id, tenant_id, entity_type, entity_id, event_type,
		       actor_type, actor_id, payload, created_at
		FROM events
		WHERE tenant_id = $1 AND entity_type = $2 AND entity_id = $3
		ORDER BY created_at ASC
	`
	args := []interface{}{tenantID, entityType, entityID}

	if limit > 0 {
		query += " LIMIT $4"
		args = append(args, limit)
	}

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event := &models.Event{}
		err := rows.Scan(
			&event.ID,
			&event.TenantID,
			&event.EntityType,
			&event.EntityID,
			&event.EventType,
			&event.ActorType,
			&event.ActorID,
			&event.Payload,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return events, nil
}

// InsertProvenance appends a new provenance record
func (r *EventRepository) InsertProvenance(ctx context.Context, event *models.ProvenanceEvent) error {
	query := `
		INSERT INTO provenance_events (
			id, tenant_id, content_id, agent_name, model_name,
			input_hash, output_hash, status, details, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		event.ID,
		event.TenantID,
		event.ContentID,
		event.AgentName,
		event.ModelName,
		event.InputHash,
		event.OutputHash,
		event.Status,
		event.Details,
		event.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert provenance event: %w", err)
	}

	r.logger.Debug("provenance event appended",
		zap.String("id", event.ID.String()),
		zap.String("agent_name", event.AgentName))
	return nil
}

// ListProvenanceForContent retrieves provenance records for a content
// item ascending by created_at. limit <= 0 means unbounded.
func (r *EventRepository) ListProvenanceForContent(ctx context.Context, tenantID, contentID uuid.UUID, limit int) ([]*models.ProvenanceEvent, error) {
	query := `
		SELECT id, tenant_id, content_id, agent_name, model_name,
		       input_hash, output_hash, status, details, created_at
		FROM provenance_events
		WHERE tenant_id = $1 AND content_id = $2
		ORDER BY created_at ASC
	`
	args := []interface{}{tenantID, contentID}

	if limit > 0 {
		query += " LIMIT $3"
		args = append(args, limit)
	}

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query provenance events: %w", err)
	}
	defer rows.Close()

	var events []*models.ProvenanceEvent
	for rows.Next() {
		event := &models.ProvenanceEvent{}
		err := rows.Scan(
			&event.ID,
			&event.TenantID,
			&event.ContentID,
			&event.AgentName,
			&event.ModelName,
			&event.InputHash,
			&event.OutputHash,
			&event.Status,
			&event.Details,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan provenance event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating provenance event rows: %w", err)
	}

	return events, nil
}
