// Package fsm implements the per-agent finite state machine: a discrete
// state, a trigger-keyed transition table, and per-state elapsed timers.
//
// The table is a pure function: a (state, trigger) pair maps to at most one
// destination, so identical trigger sequences always produce identical state
// sequences. Timers only accumulate; they never fire transitions themselves.
// Timeout-driven transitions are an orchestrator policy.
package fsm

import "time"

// State is a discrete agent posture. States are compared by value; roles may
// introduce their own beyond the standard set.
type State string

const (
	StateIdle        State = "idle"
	StateGathering   State = "gathering"
	StateBuilding    State = "building"
	StateAttacking   State = "attacking"
	StateDefending   State = "defending"
	StateRetreating  State = "retreating"
	StateExpanding   State = "expanding"
	StateScouting    State = "scouting"
	StateResearching State = "researching"
	StateTrading     State = "trading"
)

// Trigger is an event that may cause a state transition.
type Trigger string

const (
	TriggerResourcesLow     Trigger = "resources_low"
	TriggerResourcesHigh    Trigger = "resources_high"
	TriggerUnderAttack      Trigger = "under_attack"
	TriggerEnemySpotted     Trigger = "enemy_spotted"
	TriggerEnemyDefeated    Trigger = "enemy_defeated"
	TriggerBuildingComplete Trigger = "building_complete"
	TriggerResearchComplete Trigger = "research_complete"
	TriggerHealthLow        Trigger = "health_low"
	TriggerHealthHigh       Trigger = "health_high"
	TriggerGoalAchieved     Trigger = "goal_achieved"
	TriggerTimeout          Trigger = "timeout"
)

// transitionKey identifies one table entry.
type transitionKey struct {
	from    State
	trigger Trigger
}

// Machine is a per-agent state machine with timed states.
type Machine struct {
	current     State
	previous    State
	hasPrevious bool
	table       map[transitionKey]State
	timers      map[State]time.Duration
	global      time.Duration
}

// New returns a Machine in the initial state with an empty transition table.
func New(initial State) *Machine {
	return &Machine{
		current: initial,
		table:   make(map[transitionKey]State),
		timers:  make(map[State]time.Duration),
	}
}

// NewWithDefaults returns a Machine in StateIdle with the standard survival
// table installed: idle agents react to scarcity and threats, combat states
// bail out on low health, and retreat recovers back to idle.
func NewWithDefaults() *Machine {
	m := New(StateIdle)

	m.AddTransition(StateIdle, TriggerResourcesLow, StateGathering)
	m.AddTransition(StateIdle, TriggerUnderAttack, StateDefending)
	m.AddTransition(StateIdle, TriggerEnemySpotted, StateAttacking)

	m.AddTransition(StateGathering, TriggerResourcesHigh, StateBuilding)
	m.AddTransition(StateGathering, TriggerUnderAttack, StateDefending)

	m.AddTransition(StateBuilding, TriggerBuildingComplete, StateIdle)
	m.AddTransition(StateBuilding, TriggerUnderAttack, StateDefending)

	m.AddTransition(StateAttacking, TriggerHealthLow, StateRetreating)
	m.AddTransition(StateAttacking, TriggerEnemyDefeated, StateIdle)

	m.AddTransition(StateDefending, TriggerEnemyDefeated, StateIdle)
	m.AddTransition(StateDefending, TriggerHealthLow, StateRetreating)

	m.AddTransition(StateRetreating, TriggerHealthHigh, StateIdle)

	return m
}

// Current returns the current state.
func (m *Machine) Current() State {
	return m.current
}

// Previous returns the state before the most recent transition.
// Postcondition: ok is false until the first transition or force.
func (m *Machine) Previous() (State, bool) {
	return m.previous, m.hasPrevious
}

// Transition applies trigger against the table.
//
// Postcondition: on a mapped (current, trigger) pair, previous is recorded,
// the destination becomes current with its timer reset to 0, and true is
// returned. On an unmapped pair nothing mutates and false is returned.
func (m *Machine) Transition(trigger Trigger) bool {
	next, ok := m.table[transitionKey{from: m.current, trigger: trigger}]
	if !ok {
		return false
	}
	m.previous = m.current
	m.hasPrevious = true
	m.current = next
	m.timers[next] = 0
	return true
}

// ForceState overrides the current state unconditionally, bypassing the
// table. Previous is still recorded and the new state's timer resets.
func (m *Machine) ForceState(state State) {
	m.previous = m.current
	m.hasPrevious = true
	m.current = state
	m.timers[state] = 0
}

// Update advances the global timer and the current state's timer by dt. It
// never transitions.
//
// Precondition: dt must be >= 0.
func (m *Machine) Update(dt time.Duration) {
	m.global += dt
	m.timers[m.current] += dt
}

// StateDuration returns accumulated time in the current state since it was
// last entered.
func (m *Machine) StateDuration() time.Duration {
	return m.timers[m.current]
}

// GlobalTime returns total time accumulated across all Update calls.
func (m *Machine) GlobalTime() time.Duration {
	return m.global
}

// AddTransition installs or replaces the table entry (from, trigger) -> to,
// allowing per-role customization at runtime.
func (m *Machine) AddTransition(from State, trigger Trigger, to State) {
	m.table[transitionKey{from: from, trigger: trigger}] = to
}

// CanTransition reports whether trigger is mapped from the current state.
func (m *Machine) CanTransition(trigger Trigger) bool {
	_, ok := m.table[transitionKey{from: m.current, trigger: trigger}]
	return ok
}
