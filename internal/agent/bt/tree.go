// Package bt implements the behavior tree engine: a blackboard, an arena of
// composite, decorator, and leaf nodes, and a cadence-gated recursive
// evaluator producing Success, Failure, or Running.
//
// Trees are stateless between ticks: every active tick restarts evaluation
// from the root with no persistent execution cursor. A Sequence whose first
// child stays Running therefore never advances past it; long-running leaves
// belong under Selectors or Parallel nodes.
package bt

import (
	"fmt"
	"time"

	"github.com/overmind-sim/overmind/internal/agent/world"
)

// Status is the result of ticking a node. The zero value is Success.
type Status int

const (
	// Success means the node completed its work.
	Success Status = iota
	// Failure means the node cannot complete its work.
	Failure
	// Running means the node needs more ticks to complete.
	Running
)

// String returns "success", "failure", or "running".
func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

// Kind identifies a node variant.
type Kind int

const (
	KindSequence Kind = iota
	KindSelector
	KindParallel
	KindInverter
	KindRepeater
	KindSucceeder
	KindFailer
	KindUntilSuccess
	KindUntilFail
	KindAction
	KindCondition
)

// node is one arena slot. Children are arena indices, always lower in the
// tree than their parent; the arena layout makes cycles unrepresentable.
type node struct {
	kind       Kind
	children   []int
	minSuccess int
	repeat     int
	tag        string
	action     ActionFunc
	condition  ConditionFunc
}

// Tree owns an arena of nodes, a blackboard, and a tick cadence.
//
// Trees are single-threaded and non-reentrant per agent.
type Tree struct {
	nodes      []node
	root       int
	blackboard *Blackboard
	tickRate   time.Duration
	lastTick   time.Duration
}

// Compile flattens root into an evaluable Tree, resolving leaf tags against
// reg and validating the shape.
//
// If reg is non-nil, an unregistered tag is a construction error. If reg is
// nil, leaves are left unresolved and fail closed to Failure at tick time.
//
// Postcondition: returns an error for a nil or cyclic spec, a Repeater with a
// negative count, or a Parallel with a negative minimum.
func Compile(root *Spec, reg *Registry) (*Tree, error) {
	if root == nil {
		return nil, fmt.Errorf("bt.Compile: root must not be nil")
	}
	t := &Tree{
		blackboard: NewBlackboard(),
		tickRate:   time.Second,
	}
	onPath := make(map[*Spec]bool)
	rootIdx, err := t.compile(root, reg, onPath)
	if err != nil {
		return nil, err
	}
	t.root = rootIdx
	return t, nil
}

// compile recursively appends s and its subtree to the arena, returning the
// arena index of s. onPath tracks the specs on the current ancestor chain so
// a node referencing an ancestor is rejected rather than looped on.
func (t *Tree) compile(s *Spec, reg *Registry, onPath map[*Spec]bool) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("bt.Compile: nil child spec")
	}
	if onPath[s] {
		return 0, fmt.Errorf("bt.Compile: cyclic tree: node references an ancestor")
	}
	onPath[s] = true
	defer delete(onPath, s)

	n := node{
		kind:       s.kind,
		minSuccess: s.minSuccess,
		repeat:     s.repeat,
		tag:        s.tag,
	}
	switch s.kind {
	case KindRepeater:
		if s.repeat < 0 {
			return 0, fmt.Errorf("bt.Compile: Repeater count must be >= 0, got %d", s.repeat)
		}
	case KindParallel:
		if s.minSuccess < 0 {
			return 0, fmt.Errorf("bt.Compile: Parallel minimum must be >= 0, got %d", s.minSuccess)
		}
	case KindAction:
		if reg != nil {
			fn, ok := reg.Action(s.tag)
			if !ok {
				return 0, fmt.Errorf("bt.Compile: action tag %q not registered", s.tag)
			}
			n.action = fn
		}
	case KindCondition:
		if reg != nil {
			fn, ok := reg.Condition(s.tag)
			if !ok {
				return 0, fmt.Errorf("bt.Compile: condition tag %q not registered", s.tag)
			}
			n.condition = fn
		}
	}

	for _, child := range s.children {
		idx, err := t.compile(child, reg, onPath)
		if err != nil {
			return 0, err
		}
		n.children = append(n.children, idx)
	}

	t.nodes = append(t.nodes, n)
	return len(t.nodes) - 1, nil
}

// Blackboard returns the tree's blackboard.
func (t *Tree) Blackboard() *Blackboard {
	return t.blackboard
}

// TickRate returns the minimum interval between evaluations.
func (t *Tree) TickRate() time.Duration {
	return t.tickRate
}

// SetTickRate sets the minimum interval between evaluations.
// Precondition: rate must be >= 0; 0 evaluates on every call.
func (t *Tree) SetTickRate(rate time.Duration) {
	t.tickRate = rate
}

// Tick evaluates the tree from the root if at least the tick rate has passed
// since the last evaluation.
//
// Postcondition: ticked is false when the cadence gate suppressed evaluation;
// the status is then the zero value and must be ignored.
func (t *Tree) Tick(now time.Duration, ctx *world.Context) (status Status, ticked bool) {
	if now-t.lastTick < t.tickRate {
		return Success, false
	}
	t.lastTick = now
	return t.Evaluate(ctx), true
}

// Evaluate runs one full evaluation from the root, ignoring the cadence gate.
func (t *Tree) Evaluate(ctx *world.Context) Status {
	return t.tick(t.root, ctx)
}

func (t *Tree) tick(idx int, ctx *world.Context) Status {
	n := &t.nodes[idx]
	switch n.kind {
	case KindSequence:
		for _, c := range n.children {
			if st := t.tick(c, ctx); st != Success {
				return st
			}
		}
		return Success

	case KindSelector:
		for _, c := range n.children {
			if st := t.tick(c, ctx); st != Failure {
				return st
			}
		}
		return Failure

	case KindParallel:
		// Every child runs every call; side effects happen regardless of outcome.
		successes := 0
		anyRunning := false
		for _, c := range n.children {
			switch t.tick(c, ctx) {
			case Success:
				successes++
			case Running:
				anyRunning = true
			}
		}
		if successes >= n.minSuccess {
			return Success
		}
		if anyRunning {
			return Running
		}
		return Failure

	case KindInverter:
		switch t.tick(n.children[0], ctx) {
		case Success:
			return Failure
		case Failure:
			return Success
		default:
			return Running
		}

	case KindRepeater:
		for i := 0; i < n.repeat; i++ {
			if t.tick(n.children[0], ctx) == Failure {
				return Failure
			}
		}
		return Success

	case KindSucceeder:
		t.tick(n.children[0], ctx)
		return Success

	case KindFailer:
		t.tick(n.children[0], ctx)
		return Failure

	case KindUntilSuccess:
		// One child tick per outer call; the next tick retries.
		if t.tick(n.children[0], ctx) == Success {
			return Success
		}
		return Running

	case KindUntilFail:
		if t.tick(n.children[0], ctx) == Failure {
			return Success
		}
		return Running

	case KindAction:
		// Unresolved tags fail closed: trees are content that may reference
		// tags not yet wired.
		if n.action == nil {
			return Failure
		}
		return n.action(t.blackboard, ctx)

	case KindCondition:
		if n.condition == nil {
			return Failure
		}
		if n.condition(t.blackboard, ctx) {
			return Success
		}
		return Failure

	default:
		return Failure
	}
}
