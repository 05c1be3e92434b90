package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ContentState represents a content item's position in the governance workflow
type ContentState string

const (
	StateIngested        ContentState = "INGESTED"
	StateClassified      ContentState = "CLASSIFIED"
	StateSelected        ContentState = "SELECTED"
	StateResearched      ContentState = "RESEARCHED"
	StateDrafted         ContentState = "DRAFTED"
	StateValidated       ContentState = "VALIDATED"
	StatePendingApproval ContentState = "PENDING_APPROVAL"
	StateReadyToPublish  ContentState = "READY_TO_PUBLISH"
	StatePublished       ContentState = "PUBLISHED"
	StateDeferred        ContentState = "DEFERRED"
	StateRetired         ContentState = "RETIRED"
)

// InitialState is the state every content item is created in.
const InitialState = StateIngested

// contentStates is the fixed enumeration, in workflow order. Must stay in
// sync with the content_items.state CHECK constraint.
var contentStates = []ContentState{
	StateIngested,
	StateClassified,
	StateSelected,
	StateResearched,
	StateDrafted,
	StateValidated,
	StatePendingApproval,
	StateReadyToPublish,
	StatePublished,
	StateDeferred,
	StateRetired,
}

// ContentStates returns the fixed state enumeration in workflow order.
// Callers receive a copy; the enumeration itself is immutable.
func ContentStates() []ContentState {
	out := make([]ContentState, len(contentStates))
	copy(out, contentStates)
	return out
}

// IsValidState reports whether s is a member of the fixed state enumeration
func IsValidState(s ContentState) bool {
	for _, known := range contentStates {
		if s == known {
			return true
		}
	}
	return false
}

// RiskTier classifies a content item's governance sensitivity.
// Supported range is MinRiskTier..MaxRiskTier.
type RiskTier int

const (
	MinRiskTier RiskTier = 1
	MaxRiskTier RiskTier = 3
)

// Valid reports whether the tier is within the supported range
func (t RiskTier) Valid() bool {
	return t >= MinRiskTier && t <= MaxRiskTier
}

// Label returns the storage encoding of the tier (TIER_1..TIER_3).
// This is the single place the integer form maps to the persisted label.
func (t RiskTier) Label() string {
	return fmt.Sprintf("TIER_%d", int(t))
}

// RiskTierFromLabel decodes a persisted TIER_n label back to the integer
// form. Errors on labels outside the supported range so a schema drift
// surfaces loudly instead of being clamped.
func RiskTierFromLabel(label string) (RiskTier, error) {
	var n int
	if _, err := fmt.Sscanf(label, "TIER_%d", &n); err != nil {
		return 0, fmt.Errorf("malformed risk tier label: %q", label)
	}
	tier := RiskTier(n)
	if !tier.Valid() {
		return 0, fmt.Errorf("risk tier label out of range: %q", label)
	}
	return tier, nil
}

// ContentItem represents a tenant-scoped piece of content moving through
// the governance workflow. Title and risk tier are immutable after
// creation; state only changes through validated transitions.
type ContentItem struct {
	ID        uuid.UUID    `json:"id" db:"id"`
	TenantID  uuid.UUID    `json:"tenant_id" db:"tenant_id"`
	Title     string       `json:"title" db:"title"`
	State     ContentState `json:"state" db:"state"`
	RiskTier  RiskTier     `json:"risk_tier" db:"risk"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the ContentItem model
func (ContentItem) TableName() string {
	return "content_items"
}

// NewContentItem creates a new ContentItem in the initial workflow state
func NewContentItem(tenantID uuid.UUID, title string, tier RiskTier) *ContentItem {
	now := time.Now()
	return &ContentItem{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Title:     title,
		State:     InitialState,
		RiskTier:  tier,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
