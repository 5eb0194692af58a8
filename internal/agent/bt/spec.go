package bt

// Spec is a declarative node description used to build a Tree. Specs form the
// construction-time shape of the tree; Compile flattens them into the arena
// the engine actually ticks.
type Spec struct {
	kind       Kind
	children   []*Spec
	minSuccess int
	repeat     int
	tag        string
}

// Sequence ticks children left to right and fails or pauses on the first
// non-Success child; an empty Sequence succeeds.
func Sequence(children ...*Spec) *Spec {
	return &Spec{kind: KindSequence, children: children}
}

// Selector ticks children left to right and succeeds or pauses on the first
// non-Failure child; an empty Selector fails.
func Selector(children ...*Spec) *Spec {
	return &Spec{kind: KindSelector, children: children}
}

// Parallel ticks every child every call and succeeds when at least minSuccess
// of them succeed.
func Parallel(minSuccess int, children ...*Spec) *Spec {
	return &Spec{kind: KindParallel, children: children, minSuccess: minSuccess}
}

// Inverter swaps Success and Failure; Running passes through.
func Inverter(child *Spec) *Spec {
	return &Spec{kind: KindInverter, children: []*Spec{child}}
}

// Repeater ticks its child up to n times within one call, aborting with
// Failure on the first child Failure.
func Repeater(n int, child *Spec) *Spec {
	return &Spec{kind: KindRepeater, children: []*Spec{child}, repeat: n}
}

// Succeeder ticks its child once and forces Success.
func Succeeder(child *Spec) *Spec {
	return &Spec{kind: KindSucceeder, children: []*Spec{child}}
}

// Failer ticks its child once and forces Failure.
func Failer(child *Spec) *Spec {
	return &Spec{kind: KindFailer, children: []*Spec{child}}
}

// UntilSuccess ticks its child once per call, reporting Running until the
// child succeeds so the next tick retries.
func UntilSuccess(child *Spec) *Spec {
	return &Spec{kind: KindUntilSuccess, children: []*Spec{child}}
}

// UntilFail ticks its child once per call, reporting Running until the child
// fails so the next tick retries.
func UntilFail(child *Spec) *Spec {
	return &Spec{kind: KindUntilFail, children: []*Spec{child}}
}

// Action is a leaf that delegates to the registered action callback for tag.
func Action(tag string) *Spec {
	return &Spec{kind: KindAction, tag: tag}
}

// Condition is a leaf that delegates to the registered condition callback
// for tag; true maps to Success, false to Failure.
func Condition(tag string) *Spec {
	return &Spec{kind: KindCondition, tag: tag}
}
