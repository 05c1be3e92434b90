package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/upb/content-governance/middleware"
	"github.com/upb/content-governance/models"
	"github.com/upb/content-governance/repositories"
	"github.com/upb/content-governance/services/content"
	"github.com/upb/content-governance/utils"
	"go.uber.org/zap"
)

// ContentService defines the orchestrator operations the handlers need
type ContentService interface {
	Create(ctx context.Context, tenantID uuid.UUID, in content.CreateInput) (*models.ContentItem, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.ContentItem, error)
	List(ctx context.Context, tenantID uuid.UUID, filter repositories.ContentFilter, sort repositories.ContentSort, page repositories.Page) ([]*models.ContentItem, int, error)
	AllowedTransitions(ctx context.Context, tenantID, id uuid.UUID) (*content.AllowedTransitions, error)
	Transition(ctx context.Context, tenantID, id uuid.UUID, in content.TransitionInput) (*models.ContentItem, *content.TransitionSummary, error)
	ListEvents(ctx context.Context, tenantID, id uuid.UUID) ([]*models.Event, error)
	ListProvenance(ctx context.Context, tenantID, id uuid.UUID) ([]*models.ProvenanceEvent, error)
}

// CreateContentRequest represents a request to create a content item
type CreateContentRequest struct {
	Title     string        `json:"title" validate:"required,min=1,max=500"`
	RiskTier  int           `json:"risk_tier" validate:"gte=1,lte=3"`
	ActorType string        `json:"actor_type,omitempty"`
	ActorID   string        `json:"actor_id,omitempty"`
	Agent     *AgentRequest `json:"agent,omitempty"`
}

// TransitionContentRequest represents a request to transition a content item
type TransitionContentRequest struct {
	ToState   string        `json:"to_state" validate:"required"`
	Reason    string        `json:"reason,omitempty"`
	ActorType string        `json:"actor_type,omitempty"`
	ActorID   string        `json:"actor_id,omitempty"`
	Agent     *AgentRequest `json:"agent,omitempty"`
}

// AgentRequest carries optional lineage metadata for agent-performed actions
type AgentRequest struct {
	AgentName  string `json:"agent_name" validate:"required"`
	ModelName  string `json:"model_name" validate:"required"`
	InputHash  string `json:"input_hash,omitempty"`
	OutputHash string `json:"output_hash,omitempty"`
}

// ContentResponse represents a content item in API responses
type ContentResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	State     string    `json:"state"`
	RiskTier  int       `json:"risk_tier"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
}

// ContentListResponse represents a page of content items
type ContentListResponse struct {
	Items  []ContentResponse `json:"items"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
	Total  int               `json:"total"`
}

// EventResponse represents an audit event in API responses
type EventResponse struct {
	ID         uuid.UUID       `json:"id"`
	EntityType string          `json:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id"`
	EventType  string          `json:"event_type"`
	ActorType  string          `json:"actor_type"`
	ActorID    *string         `json:"actor_id,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  string          `json:"created_at"`
}

// ContentHandler handles content-related HTTP requests
type ContentHandler struct {
	service ContentService
	logger  *zap.Logger
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(service ContentService, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{
		service: service,
		logger:  logger,
	}
}

// HandleCreateContent handles POST /content
func (h *ContentHandler) HandleCreateContent(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantIDFromContext(r.Context())

	var req CreateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if req.RiskTier == 0 {
		req.RiskTier = int(models.MinRiskTier)
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	item, err := h.service.Create(r.Context(), tenantID, content.CreateInput{
		Title:     req.Title,
		RiskTier:  models.RiskTier(req.RiskTier),
		ActorType: models.ActorType(req.ActorType),
		ActorID:   req.ActorID,
		Agent:     agentContext(req.Agent),
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, toContentResponse(item))
}

// HandleGetContent handles GET /content/{id}
func (h *ContentHandler) HandleGetContent(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantIDFromContext(r.Context())

	id, ok := contentIDFromRequest(w, r)
	if !ok {
		return
	}

	item, err := h.service.Get(r.Context(), tenantID, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, toContentResponse(item))
}

// HandleListContent handles GET /content
func (h *ContentHandler) HandleListContent(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantIDFromContext(r.Context())

	filter, sort, page, err := parseListQuery(r)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	items, total, err := h.service.List(r.Context(), tenantID, filter, sort, page)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	resp := ContentListResponse{
		Items:  make([]ContentResponse, 0, len(items)),
		Limit:  page.Limit,
		Offset: page.Offset,
		Total:  total,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, toContentResponse(item))
	}

	_ = utils.WriteOK(w, resp)
}

// HandleAllowedTransitions handles GET /content/{id}/allowed
func (h *ContentHandler) HandleAllowedTransitions(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantIDFromContext(r.Context())

	id, ok := contentIDFromRequest(w, r)
	if !ok {
		return
	}

	allowed, err := h.service.AllowedTransitions(r.Context(), tenantID, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, allowed)
}

// HandleTransitionContent handles POST /content/{id}/transition
func (h *ContentHandler) HandleTransitionContent(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantIDFromContext(r.Context())

	id, ok := contentIDFromRequest(w, r)
	if !ok {
		return
	}

	var req TransitionContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	_, summary, err := h.service.Transition(r.Context(), tenantID, id, content.TransitionInput{
		ToState:   models.ContentState(req.ToState),
		Reason:    req.Reason,
		ActorType: models.ActorType(req.ActorType),
		ActorID:   req.ActorID,
		Agent:     agentContext(req.Agent),
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, summary)
}

// HandleListEvents handles GET /content/{id}/events
func (h *ContentHandler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantIDFromContext(r.Context())

	id, ok := contentIDFromRequest(w, r)
	if !ok {
		return
	}

	events, err := h.service.ListEvents(r.Context(), tenantID, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	resp := make([]EventResponse, 0, len(events))
	for _, event := range events {
		resp = append(resp, toEventResponse(event))
	}

	_ = utils.WriteOK(w, resp)
}

// HandleListProvenance handles GET /content/{id}/provenance
func (h *ContentHandler) HandleListProvenance(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantIDFromContext(r.Context())

	id, ok := contentIDFromRequest(w, r)
	if !ok {
		return
	}

	records, err := h.service.ListProvenance(r.Context(), tenantID, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, records)
}

// contentIDFromRequest parses the {id} path parameter, writing a 400 on failure
func contentIDFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid content id format", nil)
		return uuid.Nil, false
	}
	return id, true
}

// parseListQuery interprets the listing query string: state, risk_tier,
// q (title substring), sort (field name, "-" prefix for descending),
// limit, offset
func parseListQuery(r *http.Request) (repositories.ContentFilter, repositories.ContentSort, repositories.Page, error) {
	var filter repositories.ContentFilter
	sort := repositories.ContentSort{Field: repositories.SortByCreatedAt, Descending: true}
	page := repositories.Page{Limit: 20, Offset: 0}

	q := r.URL.Query()

	if stateStr := q.Get("state"); stateStr != "" {
		state := models.ContentState(stateStr)
		filter.State = &state
	}
	if tierStr := q.Get("risk_tier"); tierStr != "" {
		n, err := strconv.Atoi(tierStr)
		if err != nil {
			return filter, sort, page, errInvalidQueryParam("risk_tier")
		}
		tier := models.RiskTier(n)
		filter.RiskTier = &tier
	}
	filter.TitleQuery = q.Get("q")

	if sortStr := q.Get("sort"); sortStr != "" {
		field := sortStr
		descending := false
		if strings.HasPrefix(sortStr, "-") {
			field = sortStr[1:]
			descending = true
		}
		switch repositories.SortField(field) {
		case repositories.SortByCreatedAt, repositories.SortByUpdatedAt, repositories.SortByTitle:
			sort = repositories.ContentSort{Field: repositories.SortField(field), Descending: descending}
		default:
			return filter, sort, page, errInvalidQueryParam("sort")
		}
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 || n > 200 {
			return filter, sort, page, errInvalidQueryParam("limit")
		}
		page.Limit = n
	}
	if offsetStr := q.Get("offset"); offsetStr != "" {
		n, err := strconv.Atoi(offsetStr)
		if err != nil || n < 0 {
			return filter, sort, page, errInvalidQueryParam("offset")
		}
		page.Offset = n
	}

	return filter, sort, page, nil
}

type queryParamError struct{ param string }

func (e queryParamError) Error() string { return "invalid query parameter: " + e.param }

func errInvalidQueryParam(param string) error { return queryParamError{param: param} }

func agentContext(req *AgentRequest) *content.AgentContext {
	if req == nil {
		return nil
	}
	return &content.AgentContext{
		AgentName:  req.AgentName,
		ModelName:  req.ModelName,
		InputHash:  req.InputHash,
		OutputHash: req.OutputHash,
	}
}

func toContentResponse(item *models.ContentItem) ContentResponse {
	return ContentResponse{
		ID:        item.ID,
		Title:     item.Title,
		State:     string(item.State),
		RiskTier:  int(item.RiskTier),
		CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toEventResponse(event *models.Event) EventResponse {
	return EventResponse{
		ID:         event.ID,
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		EventType:  string(event.EventType),
		ActorType:  string(event.ActorType),
		ActorID:    event.ActorID,
		Payload:    event.Payload,
		CreatedAt:  event.CreatedAt.UTC().Format(time.RFC3339),
	}
}
