package brain

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/overmind-sim/overmind/internal/agent/bt"
	"github.com/overmind-sim/overmind/internal/agent/fsm"
	"github.com/overmind-sim/overmind/internal/agent/profile"
	"github.com/overmind-sim/overmind/internal/agent/target"
	"github.com/overmind-sim/overmind/internal/agent/utility"
	"github.com/overmind-sim/overmind/internal/agent/world"
)

// Snapshot is the read-only view of the world the host supplies for one
// agent on one orchestrator tick. The engine never writes back through it.
type Snapshot struct {
	// Position is the agent's own position.
	Position world.Vec3
	// Context holds the agent's scalar inputs.
	Context world.Context
	// Candidates are the potential targets visible to the agent.
	Candidates []target.Candidate
}

// Defaults are the engine-level cadence and policy values applied where a
// profile leaves them unset.
type Defaults struct {
	// TickRate is the behavior tree evaluation interval.
	TickRate time.Duration
	// UpdateInterval is the utility selection interval.
	UpdateInterval time.Duration
	// ReacquisitionTime is the target re-evaluation interval.
	ReacquisitionTime time.Duration
	// StateTimeout is how long an agent may sit in one state before the
	// orchestrator fires the timeout trigger.
	StateTimeout time.Duration
}

// StandardDefaults returns the stock cadences: one second for every
// subsystem and a 30 second state timeout.
func StandardDefaults() Defaults {
	return Defaults{
		TickRate:          time.Second,
		UpdateInterval:    time.Second,
		ReacquisitionTime: time.Second,
		StateTimeout:      30 * time.Second,
	}
}

// Options customizes agent construction beyond the profile.
type Options struct {
	// Logger receives decision events; nil means no logging.
	Logger *zap.Logger
	// Curves resolves custom response curves named in the profile; nil is
	// valid when the profile uses none.
	Curves profile.CurveResolver
	// Conditions are extra condition tags merged into the standard registry
	// before the tree compiles.
	Conditions map[string]bt.ConditionFunc
	// Actions are extra action tags merged into the standard registry
	// before the tree compiles.
	Actions map[string]bt.ActionFunc
	// Patrol is the agent's patrol route, used by the patrol action and
	// command translation.
	Patrol []world.Vec3
	// Defaults overrides StandardDefaults when any field is non-zero.
	Defaults Defaults
}

// retreatOffset is where a retreating agent falls back to, relative to its
// current position.
var retreatOffset = world.Vec3{X: -20, Z: -20}

// Thresholds for the trigger derivation policy.
const (
	lowHealthFraction  = 0.25
	highHealthFraction = 0.75
	lowResourceAmount  = 50.0
	highResourceAmount = 500.0
)

// Agent couples the four decision subsystems for one autonomous entity.
//
// An Agent is exclusively owned by one worker; nothing in it is safe for
// concurrent use. All four subsystems are created at spawn with the role's
// defaults and discarded with the Agent at despawn.
type Agent struct {
	id       world.EntityID
	name     string
	role     string
	position world.Vec3

	tree     *bt.Tree
	scorer   *utility.Scorer
	machine  *fsm.Machine
	selector *target.Selector

	stateTimeout time.Duration
	patrol       []world.Vec3
	pending      []Command
	log          *zap.Logger
}

// NewAgent assembles an Agent from a validated profile.
//
// Precondition: prof must not be nil and must have passed Validate.
// Postcondition: returns an error when the profile's tree references an
// unknown tag or a custom curve cannot be resolved.
func NewAgent(prof *profile.Profile, opts Options) (*Agent, error) {
	if prof == nil {
		panic("brain.NewAgent: prof must not be nil")
	}

	defaults := opts.Defaults
	if defaults == (Defaults{}) {
		defaults = StandardDefaults()
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &Agent{
		id:           world.NewEntityID(),
		name:         prof.Name,
		role:         prof.Role,
		stateTimeout: defaults.StateTimeout,
		patrol:       opts.Patrol,
		log:          logger,
	}

	scorer, err := prof.BuildScorer(opts.Curves, defaults.UpdateInterval)
	if err != nil {
		return nil, fmt.Errorf("brain.NewAgent: %w", err)
	}
	a.scorer = scorer
	a.machine = prof.BuildMachine()
	a.selector = prof.BuildSelector(defaults.ReacquisitionTime)

	reg := a.standardRegistry()
	for tag, fn := range opts.Conditions {
		if err := reg.RegisterCondition(tag, fn); err != nil {
			return nil, fmt.Errorf("brain.NewAgent: %w", err)
		}
	}
	for tag, fn := range opts.Actions {
		if err := reg.RegisterAction(tag, fn); err != nil {
			return nil, fmt.Errorf("brain.NewAgent: %w", err)
		}
	}
	tree, err := prof.BuildTree(reg, defaults.TickRate)
	if err != nil {
		return nil, fmt.Errorf("brain.NewAgent: %w", err)
	}
	a.tree = tree

	return a, nil
}

// ID returns the agent's runtime identity.
func (a *Agent) ID() world.EntityID { return a.id }

// Name returns the profile name the agent was built from.
func (a *Agent) Name() string { return a.name }

// Role returns the agent's role.
func (a *Agent) Role() string { return a.role }

// State returns the state machine's current state.
func (a *Agent) State() fsm.State { return a.machine.Current() }

// Machine returns the agent's state machine.
func (a *Agent) Machine() *fsm.Machine { return a.machine }

// Selector returns the agent's target selector.
func (a *Agent) Selector() *target.Selector { return a.selector }

// Scorer returns the agent's utility scorer.
func (a *Agent) Scorer() *utility.Scorer { return a.scorer }

// Tree returns the agent's behavior tree, or nil when the profile has none.
func (a *Agent) Tree() *bt.Tree { return a.tree }

// emit buffers a command for this tick, stamping the agent's identity.
func (a *Agent) emit(cmd Command) {
	cmd.Agent = a.id
	a.pending = append(a.pending, cmd)
}

// Tick runs one decision cycle: state timers and derived triggers, target
// maintenance, the behavior tree at its cadence, then utility selection at
// its cadence. The returned commands are everything the agent wants the host
// to attempt; the slice is owned by the caller.
//
// Precondition: dt must be >= 0 and now must not decrease across calls.
func (a *Agent) Tick(now, dt time.Duration, snap *Snapshot) []Command {
	a.pending = nil
	a.position = snap.Position

	a.updateMachine(dt, snap)
	a.maintainTarget(now, snap)

	if a.tree != nil {
		if status, ticked := a.tree.Tick(now, &snap.Context); ticked {
			a.log.Debug("behavior tree evaluated",
				zap.String("agent", a.id.String()),
				zap.String("status", status.String()))
		}
	}

	if a.scorer.Due(now) {
		if action, ok := a.scorer.SelectAction(now, &snap.Context); ok {
			a.log.Debug("utility action selected",
				zap.String("agent", a.id.String()),
				zap.String("action", action.Name),
				zap.String("state", string(a.machine.Current())))
			a.translate(action)
		}
	}

	out := a.pending
	a.pending = nil
	return out
}

// updateMachine advances timers, applies the timeout policy, and feeds the
// machine the triggers derivable from the snapshot. Unmapped triggers are
// no-ops by design, so firing them unconditionally is safe.
func (a *Agent) updateMachine(dt time.Duration, snap *Snapshot) {
	a.machine.Update(dt)
	if a.stateTimeout > 0 && a.machine.StateDuration() >= a.stateTimeout {
		if a.machine.Transition(fsm.TriggerTimeout) {
			a.log.Debug("state timed out",
				zap.String("agent", a.id.String()),
				zap.String("state", string(a.machine.Current())))
		}
	}

	ctx := &snap.Context
	if ctx.HealthPercent < lowHealthFraction {
		a.machine.Transition(fsm.TriggerHealthLow)
	} else if ctx.HealthPercent >= highHealthFraction {
		a.machine.Transition(fsm.TriggerHealthHigh)
	}
	if len(snap.Candidates) > 0 {
		a.machine.Transition(fsm.TriggerEnemySpotted)
	} else {
		a.machine.Transition(fsm.TriggerEnemyDefeated)
	}
	if ctx.ResourceAmount < lowResourceAmount {
		a.machine.Transition(fsm.TriggerResourcesLow)
	} else if ctx.ResourceAmount > highResourceAmount {
		a.machine.Transition(fsm.TriggerResourcesHigh)
	}
}

// maintainTarget invalidates a dead or out-of-range target immediately,
// otherwise re-evaluates only when the reacquisition interval has elapsed or
// the stickiness guard fires for a fresh candidate.
func (a *Agent) maintainTarget(now time.Duration, snap *Snapshot) {
	if current, ok := a.selector.Current(); ok {
		if !a.targetValid(current, snap.Candidates) {
			a.selector.ClearTarget()
			a.selector.EvaluateTargets(snap.Candidates, now)
		} else if a.selector.Due(now) || a.interruptWorthy(snap.Candidates) {
			a.selector.EvaluateTargets(snap.Candidates, now)
		}
	} else if len(snap.Candidates) > 0 {
		a.selector.EvaluateTargets(snap.Candidates, now)
	}

	bb := a.blackboard()
	if bb == nil {
		return
	}
	if tgt, ok := a.selector.Current(); ok {
		bb.SetEntity(keyAttackTarget, tgt)
		if pos, ok := a.selector.TargetPosition(); ok {
			bb.SetVec3(keyTargetPosition, pos)
		}
	} else {
		bb.Delete(keyAttackTarget)
		bb.Delete(keyTargetPosition)
	}
}

// targetValid reports whether id is a living, in-range candidate.
func (a *Agent) targetValid(id world.EntityID, candidates []target.Candidate) bool {
	for i := range candidates {
		c := &candidates[i]
		if c.Entity == id {
			return c.Health > 0 && c.Distance <= a.selector.MaxRange
		}
	}
	return false
}

// interruptWorthy reports whether any candidate passes the stickiness guard.
func (a *Agent) interruptWorthy(candidates []target.Candidate) bool {
	for i := range candidates {
		if a.selector.ShouldSwitchTarget(&candidates[i]) {
			return true
		}
	}
	return false
}

// blackboard returns the tree's blackboard, or nil for tree-less agents.
func (a *Agent) blackboard() *bt.Blackboard {
	if a.tree == nil {
		return nil
	}
	return a.tree.Blackboard()
}

// translate maps a winning utility action tag to a command. Tags without a
// command form (build, trade, research) decide posture only.
func (a *Agent) translate(action *utility.Action) {
	switch action.Tag {
	case "attack":
		if tgt, ok := a.selector.Current(); ok {
			a.emit(Command{Kind: CommandAttack, Target: tgt})
		}
	case "retreat":
		a.emit(Command{Kind: CommandMoveTo, Position: a.position.Add(retreatOffset)})
	case "defend":
		a.emit(Command{Kind: CommandDefend, Position: a.position})
	case "gather":
		if tgt, ok := a.selector.Current(); ok && a.selector.Strategy() == target.Resource {
			a.emit(Command{Kind: CommandGather, Target: tgt})
		}
	case "patrol":
		if len(a.patrol) > 0 {
			a.emit(Command{Kind: CommandPatrol, Waypoints: a.patrol})
		}
	}
}
