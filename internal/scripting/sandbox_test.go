package scripting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/overmind-sim/overmind/internal/scripting"
)

func TestNew_UnsafeLibsUnavailable(t *testing.T) {
	s := scripting.New(0)
	defer s.Close()
	err := s.DoString(`assert(os == nil and io == nil and debug == nil, "unsafe lib loaded")`)
	assert.NoError(t, err)
}

func TestNew_DangerousGlobalsNil(t *testing.T) {
	s := scripting.New(0)
	defer s.Close()
	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require"} {
		err := s.DoString(`assert(` + name + ` == nil, "` + name + ` is defined")`)
		assert.NoError(t, err, "expected %s to be nil", name)
	}
}

func TestNew_SafeLibsAvailable(t *testing.T) {
	s := scripting.New(0)
	defer s.Close()
	err := s.DoString(`
		local x = math.sqrt(4)
		assert(x == 2.0, "math.sqrt failed")
		local str = string.upper("hello")
		assert(str == "HELLO", "string.upper failed")
		local tbl = {3, 1, 2}
		table.sort(tbl)
		assert(tbl[1] == 1, "table.sort failed")
	`)
	assert.NoError(t, err)
}

func TestDoString_InstructionLimitExceeded(t *testing.T) {
	s := scripting.New(10)
	defer s.Close()
	err := s.DoString(`while true do end`)
	assert.Error(t, err, "expected instruction limit error")
}

func TestDoString_LimitRearmsBetweenCalls(t *testing.T) {
	s := scripting.New(10)
	defer s.Close()
	require.Error(t, s.DoString(`while true do end`))
	assert.NoError(t, s.DoString(`local x = 1`), "limit did not reset for the next call")
}

func TestDoFile_ExecutesScript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "curves.lua")
	require.NoError(t, os.WriteFile(path, []byte("function half(x) return x / 2 end\n"), 0o644))

	s := scripting.New(0)
	defer s.Close()
	require.NoError(t, s.DoFile(path))

	fn, err := s.Curve("half")
	require.NoError(t, err)
	assert.InDelta(t, 0.25, fn(0.5), 1e-9)
}

func TestDoFile_MissingFileErrors(t *testing.T) {
	s := scripting.New(0)
	defer s.Close()
	assert.Error(t, s.DoFile(filepath.Join(t.TempDir(), "absent.lua")))
}

func TestProperty_InstructionLimitAlwaysErrors(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		limit := rapid.IntRange(1, 50).Draw(t, "limit")
		s := scripting.New(limit)
		defer s.Close()
		if err := s.DoString(`while true do end`); err == nil {
			t.Fatalf("expected error with limit=%d but got nil", limit)
		}
	})
}
