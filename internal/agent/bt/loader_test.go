package bt_test

import (
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/overmind-sim/overmind/internal/agent/bt"
	"github.com/overmind-sim/overmind/internal/agent/world"
)

const patrolTreeYAML = `
selector:
  - sequence:
      - condition: has_target
      - action: attack
  - until_fail:
      child:
        action: patrol
`

func TestNodeDef_BuildFromYAML(t *testing.T) {
	var def bt.NodeDef
	if err := yaml.Unmarshal([]byte(patrolTreeYAML), &def); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	reg := bt.NewRegistry()
	var attacks, patrols int
	if err := reg.RegisterCondition("has_target", func(bb *bt.Blackboard, _ *world.Context) bool {
		v, _ := bb.GetBool("has_target")
		return v
	}); err != nil {
		t.Fatalf("registering has_target: %v", err)
	}
	if err := reg.RegisterAction("attack", func(_ *bt.Blackboard, _ *world.Context) bt.Status {
		attacks++
		return bt.Running
	}); err != nil {
		t.Fatalf("registering attack: %v", err)
	}
	if err := reg.RegisterAction("patrol", func(_ *bt.Blackboard, _ *world.Context) bt.Status {
		patrols++
		return bt.Success
	}); err != nil {
		t.Fatalf("registering patrol: %v", err)
	}

	tree, err := def.Build(reg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ctx := world.DefaultContext()

	// Without a target the selector falls through to the patrol loop.
	if st := tree.Evaluate(&ctx); st != bt.Running {
		t.Fatalf("status without target = %v; want running", st)
	}
	if attacks != 0 || patrols != 1 {
		t.Fatalf("attacks = %d, patrols = %d; want 0, 1", attacks, patrols)
	}

	tree.Blackboard().SetBool("has_target", true)
	if st := tree.Evaluate(&ctx); st != bt.Running {
		t.Fatalf("status with target = %v; want running", st)
	}
	if attacks != 1 || patrols != 1 {
		t.Fatalf("attacks = %d, patrols = %d; want 1, 1", attacks, patrols)
	}
}

func TestNodeDef_ValidateRejectsAmbiguousNode(t *testing.T) {
	def := bt.NodeDef{
		Action:    "attack",
		Condition: "has_target",
	}
	if err := def.Validate(); err == nil {
		t.Fatal("expected error for a node with two kinds set")
	}
}

func TestNodeDef_ValidateRejectsEmptyNode(t *testing.T) {
	var def bt.NodeDef
	if err := def.Validate(); err == nil {
		t.Fatal("expected error for a node with no kind set")
	}
}

func TestNodeDef_ValidateRejectsNestedBadChild(t *testing.T) {
	def := bt.NodeDef{
		Sequence: []bt.NodeDef{
			{Action: "move"},
			{}, // empty child
		},
	}
	if err := def.Validate(); err == nil {
		t.Fatal("expected error for an invalid sequence child")
	}
}

func TestNodeDef_ValidateRejectsRepeaterWithoutChild(t *testing.T) {
	def := bt.NodeDef{
		Repeater: &bt.RepeaterDef{Times: 3},
	}
	if err := def.Validate(); err == nil {
		t.Fatal("expected error for a repeater without a child")
	}
}

func TestNodeDef_BuildRejectsUnknownTag(t *testing.T) {
	def := bt.NodeDef{Action: "never_registered"}
	if _, err := def.Build(bt.NewRegistry()); err == nil {
		t.Fatal("expected error for an unregistered action tag")
	}
}

func TestNodeDef_ParallelRoundTrip(t *testing.T) {
	const src = `
parallel:
  min_success: 2
  children:
    - action: scan
    - action: advance
    - condition: has_target
`
	var def bt.NodeDef
	if err := yaml.Unmarshal([]byte(src), &def); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	reg := bt.NewRegistry()
	for _, tag := range []string{"scan", "advance"} {
		if err := reg.RegisterAction(tag, func(_ *bt.Blackboard, _ *world.Context) bt.Status {
			return bt.Success
		}); err != nil {
			t.Fatalf("registering %q: %v", tag, err)
		}
	}
	if err := reg.RegisterCondition("has_target", func(_ *bt.Blackboard, _ *world.Context) bool {
		return false
	}); err != nil {
		t.Fatalf("registering has_target: %v", err)
	}

	tree, err := def.Build(reg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ctx := world.DefaultContext()
	if st := tree.Evaluate(&ctx); st != bt.Success {
		t.Fatalf("status = %v; want success with two of three succeeding", st)
	}
}
