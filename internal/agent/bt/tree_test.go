package bt_test

import (
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/overmind-sim/overmind/internal/agent/bt"
	"github.com/overmind-sim/overmind/internal/agent/world"
)

// leaf returns an action spec whose callback counts its ticks and returns a
// fixed status. The tag is registered on reg.
func leaf(t *testing.T, reg *bt.Registry, tag string, status bt.Status, calls *int) *bt.Spec {
	t.Helper()
	err := reg.RegisterAction(tag, func(_ *bt.Blackboard, _ *world.Context) bt.Status {
		*calls++
		return status
	})
	if err != nil {
		t.Fatalf("registering %q: %v", tag, err)
	}
	return bt.Action(tag)
}

func evaluate(t *testing.T, spec *bt.Spec, reg *bt.Registry) bt.Status {
	t.Helper()
	tree, err := bt.Compile(spec, reg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	ctx := world.DefaultContext()
	return tree.Evaluate(&ctx)
}

func TestSequence_ShortCircuitsOnFailure(t *testing.T) {
	reg := bt.NewRegistry()
	var first, second, third int
	spec := bt.Sequence(
		leaf(t, reg, "first", bt.Success, &first),
		leaf(t, reg, "second", bt.Failure, &second),
		leaf(t, reg, "third", bt.Success, &third),
	)

	if st := evaluate(t, spec, reg); st != bt.Failure {
		t.Fatalf("status = %v; want failure", st)
	}
	if first != 1 || second != 1 || third != 0 {
		t.Fatalf("call counts = %d, %d, %d; want 1, 1, 0", first, second, third)
	}
}

func TestSequence_ShortCircuitsOnRunning(t *testing.T) {
	reg := bt.NewRegistry()
	var first, second int
	spec := bt.Sequence(
		leaf(t, reg, "first", bt.Running, &first),
		leaf(t, reg, "second", bt.Success, &second),
	)

	if st := evaluate(t, spec, reg); st != bt.Running {
		t.Fatalf("status = %v; want running", st)
	}
	if second != 0 {
		t.Fatalf("second ticked %d times; want 0", second)
	}
}

func TestSequence_EmptySucceeds(t *testing.T) {
	if st := evaluate(t, bt.Sequence(), bt.NewRegistry()); st != bt.Success {
		t.Fatalf("status = %v; want success", st)
	}
}

func TestSelector_ShortCircuitsOnSuccess(t *testing.T) {
	reg := bt.NewRegistry()
	var first, second, third int
	spec := bt.Selector(
		leaf(t, reg, "first", bt.Failure, &first),
		leaf(t, reg, "second", bt.Success, &second),
		leaf(t, reg, "third", bt.Failure, &third),
	)

	if st := evaluate(t, spec, reg); st != bt.Success {
		t.Fatalf("status = %v; want success", st)
	}
	if first != 1 || second != 1 || third != 0 {
		t.Fatalf("call counts = %d, %d, %d; want 1, 1, 0", first, second, third)
	}
}

func TestSelector_ShortCircuitsOnRunning(t *testing.T) {
	reg := bt.NewRegistry()
	var first, second int
	spec := bt.Selector(
		leaf(t, reg, "first", bt.Running, &first),
		leaf(t, reg, "second", bt.Success, &second),
	)

	if st := evaluate(t, spec, reg); st != bt.Running {
		t.Fatalf("status = %v; want running", st)
	}
	if second != 0 {
		t.Fatalf("second ticked %d times; want 0", second)
	}
}

func TestSelector_EmptyFails(t *testing.T) {
	if st := evaluate(t, bt.Selector(), bt.NewRegistry()); st != bt.Failure {
		t.Fatalf("status = %v; want failure", st)
	}
}

func TestParallel_TicksEveryChildOnce(t *testing.T) {
	reg := bt.NewRegistry()
	var a, b, c int
	spec := bt.Parallel(1,
		leaf(t, reg, "a", bt.Success, &a),
		leaf(t, reg, "b", bt.Running, &b),
		leaf(t, reg, "c", bt.Failure, &c),
	)

	if st := evaluate(t, spec, reg); st != bt.Success {
		t.Fatalf("status = %v; want success with one success and min 1", st)
	}
	if a != 1 || b != 1 || c != 1 {
		t.Fatalf("call counts = %d, %d, %d; want 1, 1, 1", a, b, c)
	}
}

func TestParallel_RunningWhenBelowMinimum(t *testing.T) {
	reg := bt.NewRegistry()
	var a, b int
	spec := bt.Parallel(2,
		leaf(t, reg, "a", bt.Success, &a),
		leaf(t, reg, "b", bt.Running, &b),
	)

	if st := evaluate(t, spec, reg); st != bt.Running {
		t.Fatalf("status = %v; want running", st)
	}
}

func TestParallel_FailureWhenNothingRuns(t *testing.T) {
	reg := bt.NewRegistry()
	var a, b int
	spec := bt.Parallel(1,
		leaf(t, reg, "a", bt.Failure, &a),
		leaf(t, reg, "b", bt.Failure, &b),
	)

	if st := evaluate(t, spec, reg); st != bt.Failure {
		t.Fatalf("status = %v; want failure", st)
	}
}

func TestInverter_SwapsSuccessAndFailure(t *testing.T) {
	cases := []struct {
		child bt.Status
		want  bt.Status
	}{
		{bt.Success, bt.Failure},
		{bt.Failure, bt.Success},
		{bt.Running, bt.Running},
	}
	for _, tc := range cases {
		reg := bt.NewRegistry()
		var calls int
		spec := bt.Inverter(leaf(t, reg, "child", tc.child, &calls))
		if st := evaluate(t, spec, reg); st != tc.want {
			t.Fatalf("Inverter(%v) = %v; want %v", tc.child, st, tc.want)
		}
	}
}

func TestInverter_DoubleInversionIsIdentity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		child := bt.Status(rapid.IntRange(0, 2).Draw(rt, "status"))
		reg := bt.NewRegistry()
		var calls int
		spec := bt.Inverter(bt.Inverter(leaf(t, reg, "child", child, &calls)))
		tree, err := bt.Compile(spec, reg)
		if err != nil {
			rt.Fatalf("Compile: %v", err)
		}
		ctx := world.DefaultContext()
		if st := tree.Evaluate(&ctx); st != child {
			rt.Fatalf("double inversion of %v = %v", child, st)
		}
	})
}

func TestRepeater_RunsChildNTimes(t *testing.T) {
	reg := bt.NewRegistry()
	var calls int
	spec := bt.Repeater(4, leaf(t, reg, "child", bt.Success, &calls))

	if st := evaluate(t, spec, reg); st != bt.Success {
		t.Fatalf("status = %v; want success", st)
	}
	if calls != 4 {
		t.Fatalf("child ticked %d times; want 4", calls)
	}
}

func TestRepeater_AbortsOnFirstFailure(t *testing.T) {
	reg := bt.NewRegistry()
	calls := 0
	err := reg.RegisterAction("flaky", func(_ *bt.Blackboard, _ *world.Context) bt.Status {
		calls++
		if calls == 2 {
			return bt.Failure
		}
		return bt.Success
	})
	if err != nil {
		t.Fatalf("registering flaky: %v", err)
	}
	spec := bt.Repeater(5, bt.Action("flaky"))

	if st := evaluate(t, spec, reg); st != bt.Failure {
		t.Fatalf("status = %v; want failure", st)
	}
	if calls != 2 {
		t.Fatalf("child ticked %d times; want 2", calls)
	}
}

func TestSucceederAndFailer_ForceOutcome(t *testing.T) {
	reg := bt.NewRegistry()
	var failing, succeeding int
	succeeder := bt.Succeeder(leaf(t, reg, "failing", bt.Failure, &failing))
	failer := bt.Failer(leaf(t, reg, "succeeding", bt.Success, &succeeding))

	if st := evaluate(t, succeeder, reg); st != bt.Success {
		t.Fatalf("Succeeder = %v; want success", st)
	}
	if st := evaluate(t, failer, reg); st != bt.Failure {
		t.Fatalf("Failer = %v; want failure", st)
	}
	if failing != 1 || succeeding != 1 {
		t.Fatalf("children ticked %d, %d times; want 1, 1", failing, succeeding)
	}
}

func TestUntilSuccess_TicksOncePerCall(t *testing.T) {
	reg := bt.NewRegistry()
	calls := 0
	err := reg.RegisterAction("eventually", func(_ *bt.Blackboard, _ *world.Context) bt.Status {
		calls++
		if calls >= 3 {
			return bt.Success
		}
		return bt.Failure
	})
	if err != nil {
		t.Fatalf("registering eventually: %v", err)
	}
	tree, err := bt.Compile(bt.UntilSuccess(bt.Action("eventually")), reg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	ctx := world.DefaultContext()

	// Two pending evaluations convert to Running, the third succeeds.
	if st := tree.Evaluate(&ctx); st != bt.Running {
		t.Fatalf("first evaluation = %v; want running", st)
	}
	if st := tree.Evaluate(&ctx); st != bt.Running {
		t.Fatalf("second evaluation = %v; want running", st)
	}
	if st := tree.Evaluate(&ctx); st != bt.Success {
		t.Fatalf("third evaluation = %v; want success", st)
	}
	if calls != 3 {
		t.Fatalf("child ticked %d times; want 3 (exactly once per call)", calls)
	}
}

func TestUntilFail_ConvertsPendingToRunning(t *testing.T) {
	reg := bt.NewRegistry()
	var calls int
	tree, err := bt.Compile(bt.UntilFail(leaf(t, reg, "busy", bt.Success, &calls)), reg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	ctx := world.DefaultContext()

	if st := tree.Evaluate(&ctx); st != bt.Running {
		t.Fatalf("evaluation = %v; want running while child succeeds", st)
	}
	if calls != 1 {
		t.Fatalf("child ticked %d times; want 1", calls)
	}
}

func TestCondition_MapsBoolToStatus(t *testing.T) {
	reg := bt.NewRegistry()
	err := reg.RegisterCondition("armed", func(bb *bt.Blackboard, _ *world.Context) bool {
		v, _ := bb.GetBool("armed")
		return v
	})
	if err != nil {
		t.Fatalf("registering armed: %v", err)
	}
	tree, err := bt.Compile(bt.Condition("armed"), reg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	ctx := world.DefaultContext()

	if st := tree.Evaluate(&ctx); st != bt.Failure {
		t.Fatalf("unset condition = %v; want failure", st)
	}
	tree.Blackboard().SetBool("armed", true)
	if st := tree.Evaluate(&ctx); st != bt.Success {
		t.Fatalf("set condition = %v; want success", st)
	}
}

func TestCompile_UnknownTagFailsConstruction(t *testing.T) {
	_, err := bt.Compile(bt.Action("unwired"), bt.NewRegistry())
	if err == nil {
		t.Fatal("expected error for unregistered action tag")
	}
	_, err = bt.Compile(bt.Condition("unwired"), bt.NewRegistry())
	if err == nil {
		t.Fatal("expected error for unregistered condition tag")
	}
}

func TestCompile_NilRegistryFailsClosedAtTick(t *testing.T) {
	tree, err := bt.Compile(bt.Action("unwired"), nil)
	if err != nil {
		t.Fatalf("Compile with nil registry: %v", err)
	}
	ctx := world.DefaultContext()
	if st := tree.Evaluate(&ctx); st != bt.Failure {
		t.Fatalf("unresolved leaf = %v; want failure", st)
	}
}

func TestCompile_RejectsCyclicTree(t *testing.T) {
	reg := bt.NewRegistry()
	var calls int
	child := leaf(t, reg, "child", bt.Success, &calls)
	cyclic := bt.Sequence(child)
	// Force the sequence to contain itself.
	cyclic2 := bt.Sequence(cyclic)
	*cyclic = *bt.Sequence(cyclic2)

	if _, err := bt.Compile(cyclic, reg); err == nil {
		t.Fatal("expected error for cyclic tree")
	}
}

func TestCompile_NegativeRepeaterRejected(t *testing.T) {
	reg := bt.NewRegistry()
	var calls int
	if _, err := bt.Compile(bt.Repeater(-1, leaf(t, reg, "child", bt.Success, &calls)), reg); err == nil {
		t.Fatal("expected error for negative repeat count")
	}
}

func TestTree_CadenceGating(t *testing.T) {
	reg := bt.NewRegistry()
	var calls int
	tree, err := bt.Compile(leaf(t, reg, "child", bt.Success, &calls), reg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	tree.SetTickRate(time.Second)
	ctx := world.DefaultContext()

	if _, ticked := tree.Tick(500*time.Millisecond, &ctx); ticked {
		t.Fatal("tree ticked before the tick rate elapsed")
	}
	if _, ticked := tree.Tick(time.Second, &ctx); !ticked {
		t.Fatal("tree did not tick once the tick rate elapsed")
	}
	if _, ticked := tree.Tick(1500*time.Millisecond, &ctx); ticked {
		t.Fatal("tree ticked again before another tick rate elapsed")
	}
	if calls != 1 {
		t.Fatalf("child ticked %d times; want 1", calls)
	}
}

func TestProperty_StatusAlwaysEnumerated(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		reg := bt.NewRegistry()
		statuses := rapid.SliceOfN(rapid.IntRange(0, 2), 1, 5).Draw(rt, "children")
		min := rapid.IntRange(0, 5).Draw(rt, "min")

		children := make([]*bt.Spec, len(statuses))
		for i, s := range statuses {
			tag := string(rune('a' + i))
			status := bt.Status(s)
			if err := reg.RegisterAction(tag, func(_ *bt.Blackboard, _ *world.Context) bt.Status {
				return status
			}); err != nil {
				rt.Fatalf("registering %q: %v", tag, err)
			}
			children[i] = bt.Action(tag)
		}
		tree, err := bt.Compile(bt.Parallel(min, children...), reg)
		if err != nil {
			rt.Fatalf("Compile: %v", err)
		}
		ctx := world.DefaultContext()
		st := tree.Evaluate(&ctx)
		if st != bt.Success && st != bt.Failure && st != bt.Running {
			rt.Fatalf("status %d outside the enumerated three", st)
		}
	})
}
