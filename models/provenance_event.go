package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ProvenanceStatus records whether the producing step succeeded
type ProvenanceStatus string

const (
	ProvenanceStatusOK    ProvenanceStatus = "ok"
	ProvenanceStatusError ProvenanceStatus = "error"
)

// ProvenanceEvent enriches the audit trail with lineage metadata: which
// agent and model produced or touched a piece of content, with hashes of
// the inputs and outputs. Same append-only contract as Event, scoped
// additionally by an optional content reference.
type ProvenanceEvent struct {
	ID         uuid.UUID        `json:"id" db:"id"`
	TenantID   uuid.UUID        `json:"tenant_id" db:"tenant_id"`
	ContentID  *uuid.UUID       `json:"content_id,omitempty" db:"content_id"`
	AgentName  string           `json:"agent_name" db:"agent_name"`
	ModelName  string           `json:"model_name" db:"model_name"`
	InputHash  *string          `json:"input_hash,omitempty" db:"input_hash"`
	OutputHash *string          `json:"output_hash,omitempty" db:"output_hash"`
	Status     ProvenanceStatus `json:"status" db:"status"`
	Details    json.RawMessage  `json:"details" db:"details"` // JSONB, persisted verbatim
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the ProvenanceEvent model
func (ProvenanceEvent) TableName() string {
	return "provenance_events"
}

// NewProvenanceEvent creates a new ProvenanceEvent instance
func NewProvenanceEvent(tenantID uuid.UUID, agentName, modelName string) *ProvenanceEvent {
	return &ProvenanceEvent{
		ID:        uuid.New(),
		TenantID:  tenantID,
		AgentName: agentName,
		ModelName: modelName,
		Status:    ProvenanceStatusOK,
		Details:   json.RawMessage(`{}`),
		CreatedAt: time.Now(),
	}
}

// WithContent links the provenance record to a content item
func (p *ProvenanceEvent) WithContent(contentID uuid.UUID) *ProvenanceEvent {
	p.ContentID = &contentID
	return p
}

// WithHashes sets the input/output hashes
func (p *ProvenanceEvent) WithHashes(inputHash, outputHash string) *ProvenanceEvent {
	if inputHash != "" {
		p.InputHash = &inputHash
	}
	if outputHash != "" {
		p.OutputHash = &outputHash
	}
	return p
}

// WithStatus sets the step status
func (p *ProvenanceEvent) WithStatus(status ProvenanceStatus) *ProvenanceEvent {
	p.Status = status
	return p
}

// WithDetails marshals and attaches structured detail
func (p *ProvenanceEvent) WithDetails(details interface{}) *ProvenanceEvent {
	if data, err := json.Marshal(details); err == nil {
		p.Details = data
	}
	return p
}
