package utility

import (
	"math"
	"sort"
	"time"

	"github.com/overmind-sim/overmind/internal/agent/world"
)

// Consideration is one scored input feeding a response curve.
//
// Invariant: Weight must be >= 0.
type Consideration struct {
	// Name is a designer-facing label.
	Name string
	// Input selects the context scalar this consideration reads.
	Input world.Input
	// Curve transforms the normalized input.
	Curve ResponseCurve
	// Weight scales the curve output.
	Weight float64
}

// Action is a candidate behavior ranked by the scorer.
//
// Invariant: BaseScore must be >= 0.
type Action struct {
	// Name is a designer-facing label.
	Name string
	// Tag identifies the abstract command the orchestrator emits when this
	// action wins ("attack", "retreat", "gather", "build", "defend", "trade").
	Tag string
	// Considerations are indices into the scorer's consideration list, in
	// evaluation order. Out-of-range indices are skipped.
	Considerations []int
	// BaseScore seeds the multiplicative chain.
	BaseScore float64
}

// Score is one action's evaluated utility.
type Score struct {
	// ActionIndex is the index of the scored action in the scorer.
	ActionIndex int
	// Value is the final compensated score.
	Value float64
	// ConsiderationScores are the individual weighted curve outputs, in
	// the action's consideration order.
	ConsiderationScores []float64
}

// Scorer ranks actions by multiplicative utility.
//
// Scoring chains each consideration's weighted curve output into the action's
// base score, then applies a compensation factor so actions with many
// considerations are not unfairly crushed toward zero. One near-zero
// consideration still vetoes the action outright.
type Scorer struct {
	considerations []Consideration
	actions        []Action
	current        int
	updateInterval time.Duration
	lastUpdate     time.Duration
}

// NewScorer returns an empty Scorer with a one second update interval and no
// current action.
func NewScorer() *Scorer {
	return &Scorer{
		current:        -1,
		updateInterval: time.Second,
	}
}

// AddConsideration appends c and returns its index for use in Action
// consideration lists.
func (s *Scorer) AddConsideration(c Consideration) int {
	s.considerations = append(s.considerations, c)
	return len(s.considerations) - 1
}

// AddAction appends a to the action list.
func (s *Scorer) AddAction(a Action) {
	s.actions = append(s.actions, a)
}

// UpdateInterval returns the minimum interval between selections.
func (s *Scorer) UpdateInterval() time.Duration {
	return s.updateInterval
}

// SetUpdateInterval sets the minimum interval between selections.
// Precondition: interval must be >= 0; 0 selects on every call.
func (s *Scorer) SetUpdateInterval(interval time.Duration) {
	s.updateInterval = interval
}

// Due reports whether the update interval has elapsed since the last
// selection.
func (s *Scorer) Due(now time.Duration) bool {
	return now-s.lastUpdate >= s.updateInterval
}

// EvaluateActions scores every action against ctx and returns the scores in
// descending order of value. The sort is stable, so equal-scored actions keep
// declaration order.
//
// Postcondition: for non-negative weights and base scores, no returned value
// is NaN or negative.
func (s *Scorer) EvaluateActions(ctx *world.Context) []Score {
	scores := make([]Score, 0, len(s.actions))

	for i := range s.actions {
		action := &s.actions[i]
		total := action.BaseScore
		considerationScores := make([]float64, 0, len(action.Considerations))

		for _, ci := range action.Considerations {
			if ci < 0 || ci >= len(s.considerations) {
				continue
			}
			c := &s.considerations[ci]
			value := c.Curve.Evaluate(ctx.Value(c.Input)) * c.Weight
			considerationScores = append(considerationScores, value)
			total *= value
		}

		// Compensation: makes up part of the loss from multiplying many
		// sub-unit factors. A single consideration gets no makeup.
		if n := len(action.Considerations); n > 0 {
			modificationFactor := 1.0 - 1.0/float64(n)
			makeup := (1.0 - total) * modificationFactor
			total += makeup * total
		}
		if math.IsNaN(total) || total < 0 {
			total = 0
		}

		scores = append(scores, Score{
			ActionIndex:         i,
			Value:               total,
			ConsiderationScores: considerationScores,
		})
	}

	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].Value > scores[b].Value
	})
	return scores
}

// SelectAction evaluates all actions and adopts the top-scoring one when its
// score is positive. A zero top score selects nothing; that is an explicit
// no-op, not an error.
//
// Postcondition: records now as the last update time regardless of outcome.
func (s *Scorer) SelectAction(now time.Duration, ctx *world.Context) (*Action, bool) {
	s.lastUpdate = now

	scores := s.EvaluateActions(ctx)
	if len(scores) == 0 || scores[0].Value <= 0 {
		return nil, false
	}
	s.current = scores[0].ActionIndex
	return &s.actions[s.current], true
}

// Current returns the most recently selected action, or false when no
// selection has been made.
func (s *Scorer) Current() (*Action, bool) {
	if s.current < 0 || s.current >= len(s.actions) {
		return nil, false
	}
	return &s.actions[s.current], true
}
