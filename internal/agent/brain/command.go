// Package brain is the decision orchestrator: it owns one behavior tree,
// utility scorer, state machine, and target selector per agent, ticks them at
// their independent cadences, and forwards the outcome to the host as
// abstract commands. Movement, combat resolution, and persistence stay on
// the host's side of the boundary.
package brain

import (
	"fmt"

	"github.com/overmind-sim/overmind/internal/agent/world"
)

// CommandKind identifies what an agent wants the host to do.
// The zero value (CommandUnknown) is intentionally invalid.
type CommandKind int

const (
	CommandUnknown CommandKind = iota // zero value; intentionally invalid
	// CommandMoveTo asks the host to move the agent to Position.
	CommandMoveTo
	// CommandAttack asks the host to engage Target.
	CommandAttack
	// CommandDefend asks the host to hold Position.
	CommandDefend
	// CommandPatrol asks the host to walk Waypoints in order.
	CommandPatrol
	// CommandGather asks the host to harvest Target.
	CommandGather
)

// String returns the human-readable name of the CommandKind.
func (k CommandKind) String() string {
	switch k {
	case CommandMoveTo:
		return "move_to"
	case CommandAttack:
		return "attack"
	case CommandDefend:
		return "defend"
	case CommandPatrol:
		return "patrol"
	case CommandGather:
		return "gather"
	default:
		return "unknown"
	}
}

// Command is one abstract instruction emitted toward the host simulation.
// Which fields are meaningful depends on Kind.
type Command struct {
	// Agent is the issuing agent.
	Agent world.EntityID
	// Kind selects the instruction.
	Kind CommandKind
	// Target is set for CommandAttack and CommandGather.
	Target world.EntityID
	// Position is set for CommandMoveTo and CommandDefend.
	Position world.Vec3
	// Waypoints is set for CommandPatrol.
	Waypoints []world.Vec3
}

// String renders the command for logs.
func (c Command) String() string {
	switch c.Kind {
	case CommandAttack, CommandGather:
		return fmt.Sprintf("%s(%s)", c.Kind, c.Target)
	case CommandMoveTo, CommandDefend:
		return fmt.Sprintf("%s(%.1f, %.1f, %.1f)", c.Kind, c.Position.X, c.Position.Y, c.Position.Z)
	case CommandPatrol:
		return fmt.Sprintf("%s(%d waypoints)", c.Kind, len(c.Waypoints))
	default:
		return c.Kind.String()
	}
}

// CommandSink receives the commands an agent population emits each tick.
// The movement/combat subsystem implements this on the host side.
type CommandSink interface {
	Dispatch(cmd Command)
}

// CommandSinkFunc adapts a function to the CommandSink interface.
type CommandSinkFunc func(cmd Command)

// Dispatch calls f(cmd).
func (f CommandSinkFunc) Dispatch(cmd Command) { f(cmd) }
