package bt

import (
	"fmt"

	"github.com/overmind-sim/overmind/internal/agent/world"
)

// ActionFunc executes an action leaf. It may mutate the blackboard and issue
// side effects, and returns any of the three statuses.
type ActionFunc func(bb *Blackboard, ctx *world.Context) Status

// ConditionFunc evaluates a condition leaf. It must be a pure predicate over
// the blackboard and context.
type ConditionFunc func(bb *Blackboard, ctx *world.Context) bool

// Registry maps leaf tags to their callbacks. Tags are resolved once at tree
// construction time, never looked up during a tick.
//
// Invariant: each tag is registered at most once per kind.
type Registry struct {
	actions    map[string]ActionFunc
	conditions map[string]ConditionFunc
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		actions:    make(map[string]ActionFunc),
		conditions: make(map[string]ConditionFunc),
	}
}

// RegisterAction stores fn under tag.
//
// Precondition: fn must not be nil.
// Postcondition: returns an error on a tag collision.
func (r *Registry) RegisterAction(tag string, fn ActionFunc) error {
	if fn == nil {
		panic("bt.Registry.RegisterAction: fn must not be nil")
	}
	if _, exists := r.actions[tag]; exists {
		return fmt.Errorf("bt.Registry: action tag %q already registered", tag)
	}
	r.actions[tag] = fn
	return nil
}

// RegisterCondition stores fn under tag.
//
// Precondition: fn must not be nil.
// Postcondition: returns an error on a tag collision.
func (r *Registry) RegisterCondition(tag string, fn ConditionFunc) error {
	if fn == nil {
		panic("bt.Registry.RegisterCondition: fn must not be nil")
	}
	if _, exists := r.conditions[tag]; exists {
		return fmt.Errorf("bt.Registry: condition tag %q already registered", tag)
	}
	r.conditions[tag] = fn
	return nil
}

// Action returns the callback for tag, or false if not registered.
func (r *Registry) Action(tag string) (ActionFunc, bool) {
	fn, ok := r.actions[tag]
	return fn, ok
}

// Condition returns the callback for tag, or false if not registered.
func (r *Registry) Condition(tag string) (ConditionFunc, bool) {
	fn, ok := r.conditions[tag]
	return fn, ok
}
