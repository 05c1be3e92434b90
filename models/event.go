package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType represents the kind of fact an event records
type EventType string

const (
	EventContentCreated      EventType = "content.created"
	EventContentTransitioned EventType = "content.transitioned"
)

// ActorType identifies who or what performed the audited action
type ActorType string

const (
	ActorTypeSystem ActorType = "system"
	ActorTypeUser   ActorType = "user"
	ActorTypeAgent  ActorType = "agent"
)

// EntityTypeContent is the entity type under which content items are audited
const EntityTypeContent = "content"

// Event is an immutable audit fact. Events are append-only: they are
// never updated or deleted, and are ordered by created_at per
// (tenant, entity).
type Event struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	TenantID   uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id" db:"entity_id"`
	EventType  EventType       `json:"event_type" db:"event_type"`
	ActorType  ActorType       `json:"actor_type" db:"actor_type"`
	ActorID    *string         `json:"actor_id,omitempty" db:"actor_id"`
	Payload    json.RawMessage `json:"payload" db:"payload"` // JSONB, persisted verbatim
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the Event model
func (Event) TableName() string {
	return "events"
}

// NewEvent creates a new Event instance with a system actor
func NewEvent(tenantID uuid.UUID, entityType string, entityID uuid.UUID, eventType EventType) *Event {
	return &Event{
		ID:         uuid.New(),
		TenantID:   tenantID,
		EntityType: entityType,
		EntityID:   entityID,
		EventType:  eventType,
		ActorType:  ActorTypeSystem,
		Payload:    json.RawMessage(`{}`),
		CreatedAt:  time.Now(),
	}
}

// WithActor sets the actor that performed the action
func (e *Event) WithActor(actorType ActorType, actorID string) *Event {
	e.ActorType = actorType
	if actorID != "" {
		e.ActorID = &actorID
	}
	return e
}

// WithPayload marshals and attaches the structured payload
func (e *Event) WithPayload(payload interface{}) *Event {
	if data, err := json.Marshal(payload); err == nil {
		e.Payload = data
	}
	return e
}
