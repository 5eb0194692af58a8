// Package target implements priority-based target selection: candidate
// ranking under a strategy comparator, caller-driven reacquisition, a
// stickiness guard against mid-cycle switching, and a bounded target history.
package target

import (
	"sort"
	"time"

	"github.com/overmind-sim/overmind/internal/agent/world"
)

// Strategy selects the comparator used to rank candidates.
// The zero value is Closest.
type Strategy int

const (
	// Closest prefers the nearest candidate.
	Closest Strategy = iota
	// Weakest prefers the lowest-health candidate.
	Weakest
	// Strongest prefers the highest-health candidate.
	Strongest
	// MostDangerous prefers the highest threat level.
	MostDangerous
	// LeaderPriority prefers leaders, breaking ties by distance.
	LeaderPriority
	// Resource ranks resource nodes by distance.
	Resource
	// Balanced ranks by a composite of proximity, missing health, threat,
	// and a leader bonus.
	Balanced
)

// String returns the profile-file name of the Strategy.
func (s Strategy) String() string {
	switch s {
	case Closest:
		return "closest"
	case Weakest:
		return "weakest"
	case Strongest:
		return "strongest"
	case MostDangerous:
		return "most_dangerous"
	case LeaderPriority:
		return "leader"
	case Resource:
		return "resource"
	case Balanced:
		return "balanced"
	default:
		return "unknown"
	}
}

// ParseStrategy maps a profile-file name to a Strategy.
// Postcondition: returns false for unrecognized names; the strategy is then
// Closest.
func ParseStrategy(s string) (Strategy, bool) {
	switch s {
	case "closest":
		return Closest, true
	case "weakest":
		return Weakest, true
	case "strongest":
		return Strongest, true
	case "most_dangerous":
		return MostDangerous, true
	case "leader":
		return LeaderPriority, true
	case "resource":
		return Resource, true
	case "balanced":
		return Balanced, true
	default:
		return Closest, false
	}
}

// StrategyForRole maps a unit role to its preset targeting strategy.
func StrategyForRole(role string) Strategy {
	switch role {
	case "tank":
		return Closest
	case "assassin":
		return Weakest
	case "support":
		return LeaderPriority
	case "gatherer":
		return Resource
	default:
		return Balanced
	}
}

// Candidate is an immutable snapshot of a potential target's combat-relevant
// attributes, built by the host each reacquisition. The selector never
// mutates candidates.
type Candidate struct {
	Entity      world.EntityID
	Position    world.Vec3
	Distance    float64
	Health      float64
	MaxHealth   float64
	Damage      float64
	IsLeader    bool
	ThreatLevel float64
}

// ThreatLevel estimates how dangerous a unit is: damage output, remaining
// health fraction, and proximity, averaged.
func ThreatLevel(damage, health, maxHealth, distance float64) float64 {
	damageThreat := damage / 10.0
	healthThreat := 0.0
	if maxHealth > 0 {
		healthThreat = health / maxHealth
	}
	distanceThreat := 1.0 / (distance + 1.0)
	return (damageThreat + healthThreat + distanceThreat) / 3.0
}

// historyCap bounds the FIFO target history.
const historyCap = 10

// closeEnemyDistance is the interrupt range for the Closest stickiness rule.
const closeEnemyDistance = 5.0

// Selector ranks candidates and tracks the current target.
type Selector struct {
	strategy  Strategy
	current   world.EntityID
	hasTarget bool
	targetPos world.Vec3
	// MaxRange is the furthest distance at which targets stay valid.
	MaxRange float64
	// ReacquisitionTime is the minimum interval between evaluations; the
	// caller gates on Due rather than the selector querying the world.
	ReacquisitionTime time.Duration
	lastCheck         time.Duration
	history           []world.EntityID
}

// NewSelector returns a Selector with a 30 unit range and one second
// reacquisition interval.
func NewSelector(strategy Strategy) *Selector {
	return &Selector{
		strategy:          strategy,
		MaxRange:          30.0,
		ReacquisitionTime: time.Second,
	}
}

// Strategy returns the selector's ranking strategy.
func (s *Selector) Strategy() Strategy {
	return s.strategy
}

// Due reports whether the reacquisition interval has elapsed since the last
// evaluation.
func (s *Selector) Due(now time.Duration) bool {
	return now-s.lastCheck >= s.ReacquisitionTime
}

// EvaluateTargets ranks the in-range candidates under the strategy comparator
// and adopts the best as the current target. Candidates beyond MaxRange are
// ignored.
//
// Postcondition: with no in-range candidate the current target is cleared and
// false returned. Otherwise the winner is recorded with its position and now
// as the last check time, pushed to history (evicting the oldest past 10),
// and returned. The candidates slice is never reordered or mutated.
func (s *Selector) EvaluateTargets(candidates []Candidate, now time.Duration) (world.EntityID, bool) {
	sorted := make([]Candidate, 0, len(candidates))
	for i := range candidates {
		if candidates[i].Distance <= s.MaxRange {
			sorted = append(sorted, candidates[i])
		}
	}
	if len(sorted) == 0 {
		s.ClearTarget()
		return world.NilEntity, false
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return s.less(&sorted[i], &sorted[j])
	})

	best := &sorted[0]
	s.current = best.Entity
	s.hasTarget = true
	s.targetPos = best.Position
	s.lastCheck = now

	s.history = append(s.history, best.Entity)
	if len(s.history) > historyCap {
		s.history = s.history[1:]
	}

	return best.Entity, true
}

// less is the strategy comparator: true when a outranks b.
func (s *Selector) less(a, b *Candidate) bool {
	switch s.strategy {
	case Weakest:
		return a.Health < b.Health
	case Strongest:
		return a.Health > b.Health
	case MostDangerous:
		return a.ThreatLevel > b.ThreatLevel
	case LeaderPriority:
		if a.IsLeader != b.IsLeader {
			return a.IsLeader
		}
		return a.Distance < b.Distance
	case Balanced:
		return s.balancedScore(a) > s.balancedScore(b)
	default:
		// Closest and Resource both rank by distance.
		return a.Distance < b.Distance
	}
}

// balancedScore composes proximity, missing health, and threat, doubled for
// leaders.
func (s *Selector) balancedScore(c *Candidate) float64 {
	distanceScore := 1.0 / (c.Distance + 1.0)
	healthScore := 0.0
	if c.MaxHealth > 0 {
		healthScore = 1.0 - c.Health/c.MaxHealth
	}
	leaderBonus := 1.0
	if c.IsLeader {
		leaderBonus = 2.0
	}
	return (distanceScore + healthScore + c.ThreatLevel) * leaderBonus
}

// ShouldSwitchTarget is the stickiness guard: it reports whether candidate
// justifies interrupting the current target before the next reacquisition.
//
// With no current target it always returns true. Closest interrupts for a
// candidate within 5 distance units; LeaderPriority interrupts for a leader
// within half the max range; every other strategy never interrupts mid-cycle.
func (s *Selector) ShouldSwitchTarget(candidate *Candidate) bool {
	if !s.hasTarget {
		return true
	}
	switch s.strategy {
	case Closest:
		return candidate.Distance < closeEnemyDistance
	case LeaderPriority:
		return candidate.IsLeader && candidate.Distance < s.MaxRange*0.5
	default:
		return false
	}
}

// ClearTarget drops the current target and its recorded position.
func (s *Selector) ClearTarget() {
	s.current = world.NilEntity
	s.hasTarget = false
	s.targetPos = world.Vec3{}
}

// HasTarget reports whether a target is currently held.
func (s *Selector) HasTarget() bool {
	return s.hasTarget
}

// Current returns the held target, or false when none is held.
func (s *Selector) Current() (world.EntityID, bool) {
	return s.current, s.hasTarget
}

// TargetPosition returns the held target's recorded position, or false when
// no target is held.
func (s *Selector) TargetPosition() (world.Vec3, bool) {
	return s.targetPos, s.hasTarget
}

// History returns the target history, oldest first. The returned slice is
// the selector's own; callers must not mutate it.
func (s *Selector) History() []world.EntityID {
	return s.history
}
