package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/overmind-sim/overmind/internal/agent/world"
	"github.com/overmind-sim/overmind/internal/scripting"
)

func TestCurve_WrapsLuaFunction(t *testing.T) {
	s := scripting.New(0)
	defer s.Close()
	require.NoError(t, s.DoString(`function inverted(x) return 1 - x end`))

	fn, err := s.Curve("inverted")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, fn(0), 1e-9)
	assert.InDelta(t, 0.25, fn(0.75), 1e-9)
}

func TestCurve_UndefinedNameErrors(t *testing.T) {
	s := scripting.New(0)
	defer s.Close()
	_, err := s.Curve("never_defined")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "never_defined")
}

func TestCurve_NonNumberResultEvaluatesToZero(t *testing.T) {
	s := scripting.New(0)
	defer s.Close()
	require.NoError(t, s.DoString(`function chatty(x) return "not a number" end`))

	fn, err := s.Curve("chatty")
	require.NoError(t, err)
	assert.Equal(t, 0.0, fn(0.5))
}

func TestCurve_RuntimeErrorEvaluatesToZero(t *testing.T) {
	s := scripting.New(0)
	defer s.Close()
	require.NoError(t, s.DoString(`
		probes = 0
		function brittle(x)
			probes = probes + 1
			if probes > 1 then error("boom") end
			return x
		end
	`))

	fn, err := s.Curve("brittle")
	require.NoError(t, err)
	assert.Equal(t, 0.0, fn(0.5))
}

func TestPredicate_ReadsContextTable(t *testing.T) {
	s := scripting.New(0)
	defer s.Close()
	require.NoError(t, s.DoString(`
		function outnumbered(ctx)
			return ctx.allied_units < 2 and ctx.enemy_distance < 20
		end
	`))

	pred, err := s.Predicate("outnumbered")
	require.NoError(t, err)

	ctx := world.Context{AlliedUnits: 1, EnemyDistance: 10}
	assert.True(t, pred(nil, &ctx))

	ctx.AlliedUnits = 5
	assert.False(t, pred(nil, &ctx))
}

func TestPredicate_ExposesCustomValues(t *testing.T) {
	s := scripting.New(0)
	defer s.Close()
	require.NoError(t, s.DoString(`
		function demoralized(ctx)
			return ctx.morale ~= nil and ctx.morale < 0.3
		end
	`))

	pred, err := s.Predicate("demoralized")
	require.NoError(t, err)

	ctx := world.Context{Custom: map[string]float64{"morale": 0.1}}
	assert.True(t, pred(nil, &ctx))

	ctx.Custom = nil
	assert.False(t, pred(nil, &ctx))
}

func TestPredicate_UndefinedNameErrors(t *testing.T) {
	s := scripting.New(0)
	defer s.Close()
	if _, err := s.Predicate("never_defined"); err == nil {
		t.Fatal("expected error for an undefined predicate")
	}
}

func TestPredicate_NonBooleanResultIsFalse(t *testing.T) {
	s := scripting.New(0)
	defer s.Close()
	require.NoError(t, s.DoString(`function numeric(ctx) return 1 end`))

	pred, err := s.Predicate("numeric")
	require.NoError(t, err)
	ctx := world.DefaultContext()
	assert.False(t, pred(nil, &ctx))
}
