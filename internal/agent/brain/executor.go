package brain

import (
	"github.com/overmind-sim/overmind/internal/agent/bt"
	"github.com/overmind-sim/overmind/internal/agent/world"
)

// Blackboard keys the standard executor reads. The orchestrator writes
// attack_target and target_position from the target selector before each
// tree tick; move_target, gather_target, and under_attack are set by tree
// actions or host-side signal injection.
const (
	keyAttackTarget   = "attack_target"
	keyTargetPosition = "target_position"
	keyMoveTarget     = "move_target"
	keyGatherTarget   = "gather_target"
	keyUnderAttack    = "under_attack"
	keyCanBuild       = "can_build"
)

// standardRegistry wires the built-in leaf tags for one agent. Action leaves
// emit commands through the agent's pending buffer and report Running while
// the host carries the command out.
func (a *Agent) standardRegistry() *bt.Registry {
	reg := bt.NewRegistry()

	// Condition tags are pure predicates over blackboard and context.
	conditions := map[string]bt.ConditionFunc{
		"has_target": func(bb *bt.Blackboard, _ *world.Context) bool {
			_, ok := bb.GetEntity(keyAttackTarget)
			return ok
		},
		"has_resources": func(_ *bt.Blackboard, ctx *world.Context) bool {
			return ctx.ResourceAmount > 100
		},
		"is_healthy": func(_ *bt.Blackboard, ctx *world.Context) bool {
			return ctx.HealthPercent > 0.5
		},
		"under_attack": func(bb *bt.Blackboard, _ *world.Context) bool {
			v, _ := bb.GetBool(keyUnderAttack)
			return v
		},
		"can_build": func(bb *bt.Blackboard, _ *world.Context) bool {
			v, _ := bb.GetBool(keyCanBuild)
			return v
		},
	}
	for tag, fn := range conditions {
		// Tags are unique within the fresh registry; errors are impossible.
		_ = reg.RegisterCondition(tag, fn)
	}

	actions := map[string]bt.ActionFunc{
		"move_to": func(bb *bt.Blackboard, _ *world.Context) bt.Status {
			pos, ok := bb.GetVec3(keyMoveTarget)
			if !ok {
				return bt.Failure
			}
			a.emit(Command{Kind: CommandMoveTo, Position: pos})
			return bt.Running
		},
		"attack": func(bb *bt.Blackboard, _ *world.Context) bt.Status {
			tgt, ok := bb.GetEntity(keyAttackTarget)
			if !ok {
				return bt.Failure
			}
			a.emit(Command{Kind: CommandAttack, Target: tgt})
			return bt.Running
		},
		"gather": func(bb *bt.Blackboard, _ *world.Context) bt.Status {
			tgt, ok := bb.GetEntity(keyGatherTarget)
			if !ok {
				return bt.Failure
			}
			a.emit(Command{Kind: CommandGather, Target: tgt})
			return bt.Running
		},
		"defend": func(_ *bt.Blackboard, _ *world.Context) bt.Status {
			a.emit(Command{Kind: CommandDefend, Position: a.position})
			return bt.Running
		},
		"patrol": func(_ *bt.Blackboard, _ *world.Context) bt.Status {
			if len(a.patrol) == 0 {
				return bt.Failure
			}
			a.emit(Command{Kind: CommandPatrol, Waypoints: a.patrol})
			return bt.Running
		},
		"wait": func(_ *bt.Blackboard, _ *world.Context) bt.Status {
			return bt.Success
		},
	}
	for tag, fn := range actions {
		_ = reg.RegisterAction(tag, fn)
	}

	return reg
}
