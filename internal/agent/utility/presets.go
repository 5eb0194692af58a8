package utility

import "github.com/overmind-sim/overmind/internal/agent/world"

// NewAggressive returns a scorer tuned to close and fight: attack utility
// climbs steeply as enemies approach, retreat competes only on health.
func NewAggressive() *Scorer {
	s := NewScorer()

	health := s.AddConsideration(Consideration{
		Name:   "Health",
		Input:  world.Input{Kind: world.InputHealth},
		Curve:  ResponseCurve{Kind: Linear},
		Weight: 0.8,
	})
	enemyDistance := s.AddConsideration(Consideration{
		Name:   "Enemy Distance",
		Input:  world.Input{Kind: world.InputEnemyDistance},
		Curve:  ResponseCurve{Kind: Exponential},
		Weight: 1.2,
	})

	s.AddAction(Action{
		Name:           "Attack",
		Tag:            "attack",
		Considerations: []int{health, enemyDistance},
		BaseScore:      0.8,
	})
	s.AddAction(Action{
		Name:           "Retreat",
		Tag:            "retreat",
		Considerations: []int{health},
		BaseScore:      0.3,
	})
	return s
}

// NewEconomic returns a scorer tuned to gather and spend: resource pressure
// drives gathering early and building once stockpiles grow.
func NewEconomic() *Scorer {
	s := NewScorer()

	resources := s.AddConsideration(Consideration{
		Name:   "Resources",
		Input:  world.Input{Kind: world.InputResources},
		Curve:  ResponseCurve{Kind: Logarithmic},
		Weight: 1.5,
	})
	elapsed := s.AddConsideration(Consideration{
		Name:   "Time",
		Input:  world.Input{Kind: world.InputTimeElapsed},
		Curve:  ResponseCurve{Kind: Linear},
		Weight: 0.5,
	})

	s.AddAction(Action{
		Name:           "Gather",
		Tag:            "gather",
		Considerations: []int{resources, elapsed},
		BaseScore:      0.9,
	})
	s.AddAction(Action{
		Name:           "Build",
		Tag:            "build",
		Considerations: []int{resources},
		BaseScore:      0.6,
	})
	s.AddAction(Action{
		Name:           "Trade",
		Tag:            "trade",
		Considerations: []int{resources},
		BaseScore:      0.4,
	})
	return s
}

// NewDefensive returns a scorer that holds ground while healthy and falls
// back as damage accumulates or enemies press in.
func NewDefensive() *Scorer {
	s := NewScorer()

	health := s.AddConsideration(Consideration{
		Name:   "Health",
		Input:  world.Input{Kind: world.InputHealth},
		Curve:  ResponseCurve{Kind: Quadratic},
		Weight: 1.0,
	})
	enemyDistance := s.AddConsideration(Consideration{
		Name:   "Enemy Distance",
		Input:  world.Input{Kind: world.InputEnemyDistance},
		Curve:  ResponseCurve{Kind: Sigmoid},
		Weight: 1.0,
	})
	allies := s.AddConsideration(Consideration{
		Name:   "Allies",
		Input:  world.Input{Kind: world.InputAlliedUnits},
		Curve:  ResponseCurve{Kind: Linear},
		Weight: 0.6,
	})

	s.AddAction(Action{
		Name:           "Defend",
		Tag:            "defend",
		Considerations: []int{health, enemyDistance},
		BaseScore:      0.7,
	})
	s.AddAction(Action{
		Name:           "Attack",
		Tag:            "attack",
		Considerations: []int{health, enemyDistance, allies},
		BaseScore:      0.5,
	})
	s.AddAction(Action{
		Name:           "Retreat",
		Tag:            "retreat",
		Considerations: []int{health},
		BaseScore:      0.3,
	})
	return s
}

// PresetScorer returns the named preset, or false for unknown names.
func PresetScorer(name string) (*Scorer, bool) {
	switch name {
	case "aggressive":
		return NewAggressive(), true
	case "economic":
		return NewEconomic(), true
	case "defensive":
		return NewDefensive(), true
	default:
		return nil, false
	}
}
