package bt

import (
	"fmt"
)

// NodeDef is the YAML form of one tree node. Exactly one field may be set.
//
// Composite children are listed inline; decorators wrap a single child.
type NodeDef struct {
	Sequence     []NodeDef     `yaml:"sequence,omitempty"`
	Selector     []NodeDef     `yaml:"selector,omitempty"`
	Parallel     *ParallelDef  `yaml:"parallel,omitempty"`
	Inverter     *NodeDef      `yaml:"inverter,omitempty"`
	Repeater     *RepeaterDef  `yaml:"repeater,omitempty"`
	Succeeder    *NodeDef      `yaml:"succeeder,omitempty"`
	Failer       *NodeDef      `yaml:"failer,omitempty"`
	UntilSuccess *NodeDef      `yaml:"until_success,omitempty"`
	UntilFail    *NodeDef      `yaml:"until_fail,omitempty"`
	Action       string        `yaml:"action,omitempty"`
	Condition    string        `yaml:"condition,omitempty"`
}

// ParallelDef is the YAML form of a Parallel node.
type ParallelDef struct {
	MinSuccess int       `yaml:"min_success"`
	Children   []NodeDef `yaml:"children"`
}

// RepeaterDef is the YAML form of a Repeater node.
type RepeaterDef struct {
	Times int      `yaml:"times"`
	Child *NodeDef `yaml:"child"`
}

// Validate checks that exactly one node field is set and recurses into
// children.
//
// Postcondition: nil return guarantees the definition converts to a Spec.
func (d *NodeDef) Validate() error {
	set := 0
	if len(d.Sequence) > 0 {
		set++
	}
	if len(d.Selector) > 0 {
		set++
	}
	if d.Parallel != nil {
		set++
	}
	if d.Inverter != nil {
		set++
	}
	if d.Repeater != nil {
		set++
	}
	if d.Succeeder != nil {
		set++
	}
	if d.Failer != nil {
		set++
	}
	if d.UntilSuccess != nil {
		set++
	}
	if d.UntilFail != nil {
		set++
	}
	if d.Action != "" {
		set++
	}
	if d.Condition != "" {
		set++
	}
	if set != 1 {
		return fmt.Errorf("bt.NodeDef: exactly one node kind must be set, got %d", set)
	}

	for i := range d.Sequence {
		if err := d.Sequence[i].Validate(); err != nil {
			return fmt.Errorf("sequence child %d: %w", i, err)
		}
	}
	for i := range d.Selector {
		if err := d.Selector[i].Validate(); err != nil {
			return fmt.Errorf("selector child %d: %w", i, err)
		}
	}
	if d.Parallel != nil {
		if d.Parallel.MinSuccess < 0 {
			return fmt.Errorf("bt.NodeDef: parallel min_success must be >= 0, got %d", d.Parallel.MinSuccess)
		}
		for i := range d.Parallel.Children {
			if err := d.Parallel.Children[i].Validate(); err != nil {
				return fmt.Errorf("parallel child %d: %w", i, err)
			}
		}
	}
	if d.Repeater != nil {
		if d.Repeater.Times < 0 {
			return fmt.Errorf("bt.NodeDef: repeater times must be >= 0, got %d", d.Repeater.Times)
		}
		if d.Repeater.Child == nil {
			return fmt.Errorf("bt.NodeDef: repeater requires a child")
		}
		if err := d.Repeater.Child.Validate(); err != nil {
			return fmt.Errorf("repeater child: %w", err)
		}
	}
	for _, dec := range []struct {
		name  string
		child *NodeDef
	}{
		{"inverter", d.Inverter},
		{"succeeder", d.Succeeder},
		{"failer", d.Failer},
		{"until_success", d.UntilSuccess},
		{"until_fail", d.UntilFail},
	} {
		if dec.child == nil {
			continue
		}
		if err := dec.child.Validate(); err != nil {
			return fmt.Errorf("%s child: %w", dec.name, err)
		}
	}
	return nil
}

// Spec converts the definition into a buildable Spec.
//
// Precondition: d must have passed Validate.
func (d *NodeDef) Spec() *Spec {
	switch {
	case len(d.Sequence) > 0:
		return Sequence(childSpecs(d.Sequence)...)
	case len(d.Selector) > 0:
		return Selector(childSpecs(d.Selector)...)
	case d.Parallel != nil:
		return Parallel(d.Parallel.MinSuccess, childSpecs(d.Parallel.Children)...)
	case d.Inverter != nil:
		return Inverter(d.Inverter.Spec())
	case d.Repeater != nil:
		return Repeater(d.Repeater.Times, d.Repeater.Child.Spec())
	case d.Succeeder != nil:
		return Succeeder(d.Succeeder.Spec())
	case d.Failer != nil:
		return Failer(d.Failer.Spec())
	case d.UntilSuccess != nil:
		return UntilSuccess(d.UntilSuccess.Spec())
	case d.UntilFail != nil:
		return UntilFail(d.UntilFail.Spec())
	case d.Action != "":
		return Action(d.Action)
	default:
		return Condition(d.Condition)
	}
}

// Build validates d and compiles it against reg.
//
// Postcondition: with a non-nil reg, every leaf tag is resolved or an error
// is returned; tree content never fails silently at tick time.
func (d *NodeDef) Build(reg *Registry) (*Tree, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return Compile(d.Spec(), reg)
}

func childSpecs(defs []NodeDef) []*Spec {
	out := make([]*Spec, len(defs))
	for i := range defs {
		out[i] = defs[i].Spec()
	}
	return out
}
