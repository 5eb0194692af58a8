package scripting

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/overmind-sim/overmind/internal/agent/bt"
	"github.com/overmind-sim/overmind/internal/agent/utility"
	"github.com/overmind-sim/overmind/internal/agent/world"
)

// Curve returns a response-curve function backed by the named Lua global.
// The Lua function receives one number in [0, 1] and must return a number.
//
// Postcondition: returns an error when the function is not defined. The
// returned func never panics: a Lua error or non-number result evaluates
// to 0, keeping scores NaN-free.
func (s *Sandbox) Curve(name string) (utility.CurveFunc, error) {
	if _, err := s.call(name, lua.LNumber(0)); err != nil {
		return nil, fmt.Errorf("scripting: probing curve %q: %w", name, err)
	}
	return func(x float64) float64 {
		ret, err := s.call(name, lua.LNumber(x))
		if err != nil {
			return 0
		}
		n, ok := ret.(lua.LNumber)
		if !ok {
			return 0
		}
		return float64(n)
	}, nil
}

// Predicate returns a behavior tree condition backed by the named Lua
// global. The Lua function receives a table of the agent's context scalars
// (health, resources, enemy_distance, allied_units, time_elapsed, plus any
// custom values) and must return a boolean.
//
// Lua failures are treated as precondition-false, never panics: trees are
// content that may reference scripts still under development.
func (s *Sandbox) Predicate(name string) (bt.ConditionFunc, error) {
	if s.state.GetGlobal(name) == lua.LNil {
		return nil, fmt.Errorf("scripting: predicate %q is not defined", name)
	}
	return func(_ *bt.Blackboard, ctx *world.Context) bool {
		ret, err := s.call(name, s.contextTable(ctx))
		if err != nil {
			return false
		}
		return ret == lua.LTrue
	}, nil
}

// contextTable copies ctx into a fresh Lua table.
func (s *Sandbox) contextTable(ctx *world.Context) *lua.LTable {
	t := s.state.NewTable()
	t.RawSetString("health", lua.LNumber(ctx.HealthPercent))
	t.RawSetString("resources", lua.LNumber(ctx.ResourceAmount))
	t.RawSetString("enemy_distance", lua.LNumber(ctx.EnemyDistance))
	t.RawSetString("allied_units", lua.LNumber(ctx.AlliedUnits))
	t.RawSetString("time_elapsed", lua.LNumber(ctx.TimeElapsed))
	for key, value := range ctx.Custom {
		t.RawSetString(key, lua.LNumber(value))
	}
	return t
}
