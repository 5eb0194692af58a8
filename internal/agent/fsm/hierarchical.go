package fsm

import "time"

// Hierarchical layers sub-machines under a root state: entering a root state
// that owns a sub-machine activates it, and triggers can then be routed into
// the active sub-machine without disturbing the root.
type Hierarchical struct {
	root      State
	sub       map[State]*Machine
	active    State
	hasActive bool
}

// NewHierarchical returns a Hierarchical rooted at StateIdle with no
// sub-machines.
func NewHierarchical() *Hierarchical {
	return &Hierarchical{
		root: StateIdle,
		sub:  make(map[State]*Machine),
	}
}

// Root returns the current root state.
func (h *Hierarchical) Root() State {
	return h.root
}

// AddSubMachine attaches machine under parent, replacing any existing one.
//
// Precondition: machine must not be nil.
func (h *Hierarchical) AddSubMachine(parent State, machine *Machine) {
	if machine == nil {
		panic("fsm.Hierarchical.AddSubMachine: machine must not be nil")
	}
	h.sub[parent] = machine
}

// TransitionRoot moves the root to state, activating its sub-machine when
// one is attached and deactivating any previous one otherwise.
func (h *Hierarchical) TransitionRoot(state State) {
	h.root = state
	if _, ok := h.sub[state]; ok {
		h.active = state
		h.hasActive = true
	} else {
		h.hasActive = false
	}
}

// TransitionSub routes trigger into the active sub-machine.
// Postcondition: returns false when no sub-machine is active or the trigger
// is unmapped in it.
func (h *Hierarchical) TransitionSub(trigger Trigger) bool {
	sub, ok := h.activeSub()
	if !ok {
		return false
	}
	return sub.Transition(trigger)
}

// ActiveSub returns the active sub-machine, or false when none is active.
func (h *Hierarchical) ActiveSub() (*Machine, bool) {
	return h.activeSub()
}

// Update advances the active sub-machine's timers by dt; a no-op when no
// sub-machine is active.
func (h *Hierarchical) Update(dt time.Duration) {
	if sub, ok := h.activeSub(); ok {
		sub.Update(dt)
	}
}

func (h *Hierarchical) activeSub() (*Machine, bool) {
	if !h.hasActive {
		return nil, false
	}
	sub, ok := h.sub[h.active]
	return sub, ok
}
