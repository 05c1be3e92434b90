package content

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/content-governance/models"
	"github.com/upb/content-governance/repositories"
	"github.com/upb/content-governance/services"
	"github.com/upb/content-governance/workflow"
	"go.uber.org/zap"
)

// Config holds orchestrator tuning knobs
type Config struct {
	// EventListCap bounds event listings for hot entities. 0 means
	// unbounded. Operator-facing: set via WORKFLOW_EVENT_LIST_CAP.
	EventListCap int
}

// Service orchestrates the content lifecycle: it validates transitions
// against the workflow policy and performs the state write plus audit
// event append as one atomic unit. One invocation per request; it holds
// no mutable state of its own.
type Service struct {
	content repositories.ContentRepository
	events  repositories.EventRepository
	txMgr   repositories.TransactionManager
	policy  workflow.Policy
	logger  *zap.Logger
	cfg     Config
}

// NewService creates a new content service
func NewService(
	content repositories.ContentRepository,
	events repositories.EventRepository,
	txMgr repositories.TransactionManager,
	policy workflow.Policy,
	logger *zap.Logger,
	cfg Config,
) *Service {
	return &Service{
		content: content,
		events:  events,
		txMgr:   txMgr,
		policy:  policy,
		logger:  logger,
		cfg:     cfg,
	}
}

// AgentContext carries optional lineage metadata for actions performed
// by an automated agent. When present, a provenance record is appended
// alongside the audit event.
type AgentContext struct {
	AgentName  string
	ModelName  string
	InputHash  string
	OutputHash string
}

// CreateInput is the validated input for content creation
type CreateInput struct {
	Title     string
	RiskTier  models.RiskTier
	ActorType models.ActorType
	ActorID   string
	Agent     *AgentContext
}

// TransitionInput is the validated input for a state transition
type TransitionInput struct {
	ToState   models.ContentState
	Reason    string
	ActorType models.ActorType
	ActorID   string
	Agent     *AgentContext
}

// TransitionSummary describes a recorded transition
type TransitionSummary struct {
	ContentID uuid.UUID           `json:"content_id"`
	FromState models.ContentState `json:"from_state"`
	ToState   models.ContentState `json:"to_state"`
	RiskTier  models.RiskTier     `json:"risk_tier"`
}

// AllowedTransitions describes the legal next states for a content item
type AllowedTransitions struct {
	ContentID uuid.UUID             `json:"content_id"`
	FromState models.ContentState   `json:"from_state"`
	RiskTier  models.RiskTier       `json:"risk_tier"`
	Allowed   []models.ContentState `json:"allowed"`
}

type createdPayload struct {
	Title    string `json:"title"`
	RiskTier int    `json:"risk_tier"`
	State    string `json:"state"`
}

type transitionedPayload struct {
	FromState string `json:"from_state"`
	ToState   string `json:"to_state"`
	RiskTier  int    `json:"risk_tier"`
	Reason    string `json:"reason,omitempty"`
}

// Create inserts a new content item in the initial state and appends the
// content.created event in the same transaction
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, in CreateInput) (*models.ContentItem, error) {
	if in.Title == "" {
		return nil, services.ErrEmptyTitle
	}
	if !in.RiskTier.Valid() {
		return nil, services.NewDomainError(services.ErrorTypeValidation, "risk tier outside supported range", nil).
			WithDetail("risk_tier", int(in.RiskTier))
	}

	item := models.NewContentItem(tenantID, in.Title, in.RiskTier)

	err := services.WithTransaction(ctx, s.txMgr, func(_ context.Context, tx repositories.Transaction) error {
		txCtx := tx.Context()

		if err := s.content.Create(txCtx, item); err != nil {
			return services.WrapInternal("failed to persist content item", err)
		}

		event := models.NewEvent(tenantID, models.EntityTypeContent, item.ID, models.EventContentCreated).
			WithActor(actorOrSystem(in.ActorType), in.ActorID).
			WithPayload(createdPayload{
				Title:    item.Title,
				RiskTier: int(item.RiskTier),
				State:    string(item.State),
			})
		if err := s.events.Insert(txCtx, event); err != nil {
			return services.WrapInternal("failed to append creation event", err)
		}

		return s.appendProvenance(txCtx, tenantID, item.ID, in.Agent)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("content item created",
		zap.String("content_id", item.ID.String()),
		zap.String("tenant_id", tenantID.String()),
		zap.Int("risk_tier", int(item.RiskTier)))
	return item, nil
}

// Get retrieves a single content item
func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.ContentItem, error) {
	item, err := s.content.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrContentNotFound
		}
		return nil, services.WrapInternal("failed to read content item", err)
	}
	return item, nil
}

// List retrieves content items with filter, sort, and pagination
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter repositories.ContentFilter, sort repositories.ContentSort, page repositories.Page) ([]*models.ContentItem, int, error) {
	items, total, err := s.content.List(ctx, tenantID, filter, sort, page)
	if err != nil {
		return nil, 0, services.WrapInternal("failed to list content items", err)
	}
	return items, total, nil
}

// AllowedTransitions returns the legal next states for a content item,
// reconstructed from the workflow policy for its current state and tier
func (s *Service) AllowedTransitions(ctx context.Context, tenantID, id uuid.UUID) (*AllowedTransitions, error) {
	item, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	return &AllowedTransitions{
		ContentID: item.ID,
		FromState: item.State,
		RiskTier:  item.RiskTier,
		Allowed:   s.policy.AllowedTransitions(item.State, item.RiskTier),
	}, nil
}

// Transition moves a content item to a new state. The proposed move is
// validated against the policy using the item's current state and risk
// tier; the guarded state write and the content.transitioned event then
// execute inside one transaction. Validation failures never reach the
// mutating step.
func (s *Service) Transition(ctx context.Context, tenantID, id uuid.UUID, in TransitionInput) (*models.ContentItem, *TransitionSummary, error) {
	item, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, nil, err
	}

	if err := s.policy.ValidateTransition(item.State, in.ToState, item.RiskTier); err != nil {
		return nil, nil, err
	}

	fromState := item.State

	updated, err := services.WithTransactionResult(ctx, s.txMgr, func(_ context.Context, tx repositories.Transaction) (*models.ContentItem, error) {
		txCtx := tx.Context()

		updated, err := s.content.UpdateState(txCtx, tenantID, id, fromState, in.ToState)
		if err != nil {
			switch {
			case errors.Is(err, repositories.ErrNotFound):
				return nil, services.ErrContentNotFound
			case errors.Is(err, repositories.ErrStateConflict):
				// The state moved between our read and the guarded
				// write. Safe for the caller to retry after re-reading.
				return nil, services.NewDomainError(services.ErrorTypeConflict, "content state changed concurrently", nil).
					WithDetail("expected_state", string(fromState))
			default:
				return nil, services.WrapInternal("failed to update content state", err)
			}
		}

		event := models.NewEvent(tenantID, models.EntityTypeContent, id, models.EventContentTransitioned).
			WithActor(actorOrSystem(in.ActorType), in.ActorID).
			WithPayload(transitionedPayload{
				FromState: string(fromState),
				ToState:   string(in.ToState),
				RiskTier:  int(updated.RiskTier),
				Reason:    in.Reason,
			})
		if err := s.events.Insert(txCtx, event); err != nil {
			return nil, services.WrapInternal("failed to append transition event", err)
		}

		if err := s.appendProvenance(txCtx, tenantID, id, in.Agent); err != nil {
			return nil, err
		}

		return updated, nil
	})
	if err != nil {
		return nil, nil, err
	}

	summary := &TransitionSummary{
		ContentID: updated.ID,
		FromState: fromState,
		ToState:   updated.State,
		RiskTier:  updated.RiskTier,
	}

	s.logger.Info("content item transitioned",
		zap.String("content_id", updated.ID.String()),
		zap.String("from_state", string(fromState)),
		zap.String("to_state", string(updated.State)))
	return updated, summary, nil
}

// ListEvents retrieves the audit trail for a content item, ascending by
// created_at, bounded by the configured cap
func (s *Service) ListEvents(ctx context.Context, tenantID, id uuid.UUID) ([]*models.Event, error) {
	events, err := s.events.ListForEntity(ctx, tenantID, models.EntityTypeContent, id, s.cfg.EventListCap)
	if err != nil {
		return nil, services.WrapInternal("failed to list events", err)
	}
	return events, nil
}

// ListProvenance retrieves the provenance records for a content item
func (s *Service) ListProvenance(ctx context.Context, tenantID, id uuid.UUID) ([]*models.ProvenanceEvent, error) {
	events, err := s.events.ListProvenanceForContent(ctx, tenantID, id, s.cfg.EventListCap)
	if err != nil {
		return nil, services.WrapInternal("failed to list provenance events", err)
	}
	return events, nil
}

// appendProvenance records lineage metadata when an agent context is
// supplied; a nil agent is a no-op
func (s *Service) appendProvenance(ctx context.Context, tenantID, contentID uuid.UUID, agent *AgentContext) error {
	if agent == nil {
		return nil
	}

	record := models.NewProvenanceEvent(tenantID, agent.AgentName, agent.ModelName).
		WithContent(contentID).
		WithHashes(agent.InputHash, agent.OutputHash)
	if err := s.events.InsertProvenance(ctx, record); err != nil {
		return services.WrapInternal("failed to append provenance event", err)
	}
	return nil
}

func actorOrSystem(actorType models.ActorType) models.ActorType {
	if actorType == "" {
		return models.ActorTypeSystem
	}
	return actorType
}
