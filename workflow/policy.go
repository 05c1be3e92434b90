package workflow

import (
	"github.com/upb/content-governance/models"
	"github.com/upb/content-governance/services"
)

// TransitionTable maps each state to its set of legal successor states.
// States absent from the table have no successors (terminal or unknown).
type TransitionTable map[models.ContentState][]models.ContentState

// Policy is the fixed workflow policy: a directed graph over the content
// state enumeration, with optional per-tier overrides. A Policy value is
// immutable after construction and safe for concurrent use. It is passed
// to the orchestrator as configuration so tests can substitute a smaller
// graph without touching anything else.
type Policy struct {
	table     TransitionTable
	tierRules map[models.RiskTier]TransitionTable
}

// NewPolicy builds a Policy from a transition table and optional per-tier
// override tables. A tier override, where present for a state, replaces
// that state's successor set for items of that tier. The inputs are
// deep-copied; later mutation of the arguments does not affect the Policy.
func NewPolicy(table TransitionTable, tierRules map[models.RiskTier]TransitionTable) Policy {
	p := Policy{
		table:     copyTable(table),
		tierRules: make(map[models.RiskTier]TransitionTable, len(tierRules)),
	}
	for tier, overrides := range tierRules {
		p.tierRules[tier] = copyTable(overrides)
	}
	return p
}

// DefaultPolicy returns the production workflow graph. The graph is
// tier-independent: risk tier is accepted everywhere as a reserved gating
// input, but no tier override is defined yet.
func DefaultPolicy() Policy {
	return NewPolicy(TransitionTable{
		models.StateIngested:        {models.StateClassified, models.StateDeferred, models.StateRetired},
		models.StateClassified:      {models.StateSelected, models.StateDeferred, models.StateRetired},
		models.StateSelected:        {models.StateResearched, models.StateDeferred, models.StateRetired},
		models.StateResearched:      {models.StateDrafted, models.StateDeferred, models.StateRetired},
		models.StateDrafted:         {models.StateValidated, models.StateDeferred, models.StateRetired},
		models.StateValidated:       {models.StatePendingApproval, models.StateDeferred, models.StateRetired},
		models.StatePendingApproval: {models.StateReadyToPublish, models.StateDeferred, models.StateRetired},
		models.StateReadyToPublish:  {models.StatePublished, models.StateDeferred, models.StateRetired},
		models.StatePublished:       {models.StateRetired},
		models.StateDeferred:        {models.StateClassified, models.StateRetired},
		models.StateRetired:         {},
	}, nil)
}

// AllowedTransitions returns the legal successor states for the given
// state and risk tier. Unknown and terminal states yield an empty set,
// never an error: an unrecognized state must fail safe by permitting no
// transitions at all.
func (p Policy) AllowedTransitions(from models.ContentState, tier models.RiskTier) []models.ContentState {
	if overrides, ok := p.tierRules[tier]; ok {
		if allowed, ok := overrides[from]; ok {
			return copyStates(allowed)
		}
	}
	return copyStates(p.table[from])
}

// ValidateTransition checks whether from -> to is legal for the given
// risk tier. A target state outside the fixed enumeration is an
// invalid-state error; a known target not reachable from the current
// state (including any no-op transition) is an invalid-transition error.
func (p Policy) ValidateTransition(from, to models.ContentState, tier models.RiskTier) error {
	if !models.IsValidState(to) {
		return services.NewDomainError(services.ErrorTypeInvalidState, "unknown content state", nil).
			WithDetail("to_state", string(to))
	}

	allowed := p.AllowedTransitions(from, tier)
	for _, s := range allowed {
		if s == to && from != to {
			return nil
		}
	}

	return services.NewDomainError(services.ErrorTypeInvalidTransition, "transition not permitted from current state", nil).
		WithDetail("from_state", string(from)).
		WithDetail("to_state", string(to)).
		WithDetail("allowed", stateStrings(allowed))
}

func copyTable(table TransitionTable) TransitionTable {
	out := make(TransitionTable, len(table))
	for state, allowed := range table {
		out[state] = copyStates(allowed)
	}
	return out
}

func copyStates(states []models.ContentState) []models.ContentState {
	out := make([]models.ContentState, len(states))
	copy(out, states)
	return out
}

func stateStrings(states []models.ContentState) []string {
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = string(s)
	}
	return out
}
