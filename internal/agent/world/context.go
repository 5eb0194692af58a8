package world

import "math"

// InputKind selects which scalar from the Context feeds a consideration.
// The zero value is InputHealth.
type InputKind int

const (
	// InputHealth reads the agent's health percentage.
	InputHealth InputKind = iota
	// InputResources reads the agent's resource amount, normalized against 1000.
	InputResources
	// InputEnemyDistance reads proximity to the nearest enemy, normalized against 100.
	InputEnemyDistance
	// InputAlliedUnits reads the nearby ally count, normalized against 10.
	InputAlliedUnits
	// InputTimeElapsed reads elapsed time, normalized against 300 seconds.
	InputTimeElapsed
	// InputCustom reads a named float from the Custom map.
	InputCustom
)

// String returns the profile-file name of the InputKind.
func (k InputKind) String() string {
	switch k {
	case InputHealth:
		return "health"
	case InputResources:
		return "resources"
	case InputEnemyDistance:
		return "enemy_distance"
	case InputAlliedUnits:
		return "allied_units"
	case InputTimeElapsed:
		return "time_elapsed"
	case InputCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// ParseInputKind maps a profile-file name to an InputKind.
// Postcondition: returns false for unrecognized names; the kind is then InputHealth.
func ParseInputKind(s string) (InputKind, bool) {
	switch s {
	case "health":
		return InputHealth, true
	case "resources":
		return InputResources, true
	case "enemy_distance":
		return InputEnemyDistance, true
	case "allied_units":
		return InputAlliedUnits, true
	case "time_elapsed":
		return InputTimeElapsed, true
	case "custom":
		return InputCustom, true
	default:
		return InputHealth, false
	}
}

// Input selects a Context scalar. Key is consulted only when Kind is InputCustom.
type Input struct {
	Kind InputKind
	Key  string
}

// Context holds the per-agent scalar inputs for one decision tick.
//
// All values are supplied by the host; the engine only reads them.
type Context struct {
	// HealthPercent is current health as a fraction in [0, 1].
	HealthPercent float64
	// ResourceAmount is the agent's held resource quantity.
	ResourceAmount float64
	// EnemyDistance is the distance to the nearest known enemy.
	EnemyDistance float64
	// AlliedUnits is the count of nearby allied units.
	AlliedUnits float64
	// TimeElapsed is seconds of simulation time since the agent spawned.
	TimeElapsed float64
	// Custom holds named designer-defined floats; nil means none.
	Custom map[string]float64
}

// DefaultContext returns a Context for an unhurt agent with no enemies in sight.
func DefaultContext() Context {
	return Context{
		HealthPercent: 1.0,
		EnemyDistance: 100.0,
	}
}

// Value resolves sel against the context and normalizes it into [0, 1].
//
// Postcondition: the result is in [0, 1] and is never NaN; NaN or missing
// inputs resolve to 0.
func (c *Context) Value(sel Input) float64 {
	var raw float64
	switch sel.Kind {
	case InputHealth:
		raw = c.HealthPercent
	case InputResources:
		raw = math.Min(c.ResourceAmount/1000.0, 1.0)
	case InputEnemyDistance:
		raw = math.Max(1.0-c.EnemyDistance/100.0, 0.0)
	case InputAlliedUnits:
		raw = math.Min(c.AlliedUnits/10.0, 1.0)
	case InputTimeElapsed:
		raw = math.Min(c.TimeElapsed/300.0, 1.0)
	case InputCustom:
		raw = c.Custom[sel.Key]
	}
	if math.IsNaN(raw) {
		return 0
	}
	return math.Min(math.Max(raw, 0), 1)
}
