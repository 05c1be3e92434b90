package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentStates(t *testing.T) {
	states := ContentStates()
	assert.Len(t, states, 11)
	assert.Equal(t, StateIngested, states[0])
	assert.Equal(t, StateRetired, states[len(states)-1])

	// Mutating the returned slice must not alter the enumeration
	states[0] = StateRetired
	assert.Equal(t, StateIngested, ContentStates()[0])
}

func TestIsValidState(t *testing.T) {
	for _, state := range ContentStates() {
		assert.True(t, IsValidState(state), "state %s", state)
	}

	assert.False(t, IsValidState(ContentState("")))
	assert.False(t, IsValidState(ContentState("LIMBO")))
	assert.False(t, IsValidState(ContentState("ingested")), "case matters")
}

func TestRiskTier_Valid(t *testing.T) {
	assert.True(t, RiskTier(1).Valid())
	assert.True(t, RiskTier(2).Valid())
	assert.True(t, RiskTier(3).Valid())
	assert.False(t, RiskTier(0).Valid())
	assert.False(t, RiskTier(4).Valid())
	assert.False(t, RiskTier(-1).Valid())
}

func TestRiskTier_LabelRoundTrip(t *testing.T) {
	for tier := MinRiskTier; tier <= MaxRiskTier; tier++ {
		got, err := RiskTierFromLabel(tier.Label())
		require.NoError(t, err)
		assert.Equal(t, tier, got)
	}
}

func TestRiskTierFromLabel_Rejects(t *testing.T) {
	tests := []string{"", "TIER_0", "TIER_4", "TIER_", "tier_1", "1", "HIGH"}
	for _, label := range tests {
		t.Run(label, func(t *testing.T) {
			_, err := RiskTierFromLabel(label)
			assert.Error(t, err)
		})
	}
}

func TestNewContentItem(t *testing.T) {
	tenantID := uuid.New()
	item := NewContentItem(tenantID, "Quarterly outlook", RiskTier(2))

	assert.NotEqual(t, uuid.Nil, item.ID)
	assert.Equal(t, tenantID, item.TenantID)
	assert.Equal(t, "Quarterly outlook", item.Title)
	assert.Equal(t, StateIngested, item.State)
	assert.Equal(t, RiskTier(2), item.RiskTier)
	assert.False(t, item.CreatedAt.IsZero())
	assert.Equal(t, item.CreatedAt, item.UpdatedAt)
	assert.Equal(t, "content_items", item.TableName())
}
