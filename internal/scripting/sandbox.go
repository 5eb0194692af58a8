// Package scripting provides a sandboxed GopherLua environment for
// designer-supplied AI extensions: custom response curves and tree condition
// predicates. It has no dependency on engine domain packages beyond the
// value types bridged across the boundary.
package scripting

import (
	"context"
	"fmt"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the maximum number of Lua opcodes allowed per
// call when no override is configured. Curves run inside scoring loops, so
// the default is deliberately tight.
const DefaultInstructionLimit = 100_000

// countingContext is a context.Context that cancels itself after Done() has
// been called limit times. GopherLua's main loop calls Done() once per
// opcode, making this an exact instruction-count limit.
type countingContext struct {
	context.Context
	cancel    context.CancelFunc
	remaining *atomic.Int64
}

// Done returns the underlying cancellation channel. Each call decrements the
// remaining counter; when it reaches zero the cancel function fires,
// terminating the Lua VM on the next opcode boundary.
func (c *countingContext) Done() <-chan struct{} {
	if c.remaining.Add(-1) <= 0 {
		c.cancel()
	}
	return c.Context.Done()
}

// newCountingContext returns a context that cancels after limit calls to Done().
// Precondition: limit > 0.
func newCountingContext(limit int) (context.Context, context.CancelFunc) {
	base, cancel := context.WithCancel(context.Background())
	rem := &atomic.Int64{}
	rem.Store(int64(limit))
	return &countingContext{
		Context:   base,
		cancel:    cancel,
		remaining: rem,
	}, cancel
}

// Sandbox owns one sandboxed LState. It is single-threaded like the agents
// that call into it; one Sandbox must not be shared across workers.
type Sandbox struct {
	state     *lua.LState
	instLimit int
}

// New creates a Sandbox whose LState has:
//   - Only safe stdlib loaded: base, table, string, math
//   - Dangerous globals removed: dofile, loadfile, load, collectgarbage, require
//   - Execution limited to at most instLimit Lua opcodes per call
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// The caller owns the Sandbox and must call Close when done.
func New(instLimit int) *Sandbox {
	limit := instLimit
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require"} {
		L.SetGlobal(name, lua.LNil)
	}

	return &Sandbox{state: L, instLimit: limit}
}

// DoString executes src in the sandbox, typically to define curve and
// predicate functions.
func (s *Sandbox) DoString(src string) error {
	s.arm()
	if err := s.state.DoString(src); err != nil {
		return fmt.Errorf("scripting: executing source: %w", err)
	}
	return nil
}

// DoFile executes the script at path in the sandbox.
func (s *Sandbox) DoFile(path string) error {
	s.arm()
	if err := s.state.DoFile(path); err != nil {
		return fmt.Errorf("scripting: executing %s: %w", path, err)
	}
	return nil
}

// Close releases the underlying LState.
func (s *Sandbox) Close() {
	s.state.Close()
}

// arm installs a fresh instruction-count limit before each entry into Lua.
func (s *Sandbox) arm() {
	ctx, _ := newCountingContext(s.instLimit) //nolint:govet // cancel fires automatically when the limit is reached
	s.state.SetContext(ctx)
}

// call invokes the named global function with args and returns its single
// result.
func (s *Sandbox) call(name string, args ...lua.LValue) (lua.LValue, error) {
	fn := s.state.GetGlobal(name)
	if fn == lua.LNil {
		return lua.LNil, fmt.Errorf("scripting: function %q is not defined", name)
	}
	s.arm()
	if err := s.state.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
		return lua.LNil, fmt.Errorf("scripting: calling %q: %w", name, err)
	}
	ret := s.state.Get(-1)
	s.state.Pop(1)
	return ret, nil
}
