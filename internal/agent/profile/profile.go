// Package profile loads per-role agent profiles from YAML: the behavior tree
// definition, utility considerations and actions (or a named preset), state
// machine transitions, targeting strategy, and decision cadences.
//
// Profiles are content: they are validated fully at load time so a profile
// that parses is a profile that builds.
package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/overmind-sim/overmind/internal/agent/bt"
	"github.com/overmind-sim/overmind/internal/agent/fsm"
	"github.com/overmind-sim/overmind/internal/agent/target"
	"github.com/overmind-sim/overmind/internal/agent/utility"
	"github.com/overmind-sim/overmind/internal/agent/world"
)

// ConsiderationDef is the YAML form of one utility consideration.
//
// Key is consulted only when Input is "custom". CurveFn names a scripted
// curve and is required when Curve is "custom".
type ConsiderationDef struct {
	Name    string  `yaml:"name"`
	Input   string  `yaml:"input"`
	Key     string  `yaml:"key"`
	Curve   string  `yaml:"curve"`
	CurveFn string  `yaml:"curve_fn"`
	Weight  float64 `yaml:"weight"`
}

// ActionDef is the YAML form of one utility action. Considerations are
// indices into the profile's consideration list.
type ActionDef struct {
	Name           string  `yaml:"name"`
	Tag            string  `yaml:"tag"`
	Considerations []int   `yaml:"considerations"`
	BaseScore      float64 `yaml:"base_score"`
}

// TransitionDef is the YAML form of one transition table entry.
type TransitionDef struct {
	From    string `yaml:"from"`
	Trigger string `yaml:"trigger"`
	To      string `yaml:"to"`
}

// Profile describes how to assemble one agent role's decision engine.
//
// Durations are Go duration strings ("500ms", "2s"); empty means the engine
// default. Utility names a preset ("aggressive", "economic", "defensive")
// and is mutually exclusive with inline Considerations/Actions.
type Profile struct {
	Name               string             `yaml:"name"`
	Role               string             `yaml:"role"`
	TickRate           string             `yaml:"tick_rate"`
	UpdateInterval     string             `yaml:"update_interval"`
	ReacquisitionTime  string             `yaml:"reacquisition_time"`
	MaxRange           float64            `yaml:"max_range"`
	Utility            string             `yaml:"utility"`
	Considerations     []ConsiderationDef `yaml:"considerations"`
	Actions            []ActionDef        `yaml:"actions"`
	InitialState       string             `yaml:"initial_state"`
	DefaultTransitions bool               `yaml:"default_transitions"`
	Transitions        []TransitionDef    `yaml:"transitions"`
	TargetStrategy     string             `yaml:"target_strategy"`
	Tree               *bt.NodeDef        `yaml:"tree"`
}

// CurveResolver resolves named custom curves, typically a scripting sandbox.
type CurveResolver interface {
	Curve(name string) (utility.CurveFunc, error)
}

// Validate checks all required fields and cross-field constraints.
//
// Postcondition: nil return guarantees non-empty Name, parseable durations,
// known input/curve/strategy names, in-range action consideration indices,
// complete transition entries, and a structurally valid tree definition.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return errors.New("profile: name must not be empty")
	}
	for _, d := range []struct {
		field string
		value string
	}{
		{"tick_rate", p.TickRate},
		{"update_interval", p.UpdateInterval},
		{"reacquisition_time", p.ReacquisitionTime},
	} {
		if d.value == "" {
			continue
		}
		if _, err := time.ParseDuration(d.value); err != nil {
			return fmt.Errorf("profile %q: parsing %s: %w", p.Name, d.field, err)
		}
	}
	if p.MaxRange < 0 {
		return fmt.Errorf("profile %q: max_range must be >= 0, got %v", p.Name, p.MaxRange)
	}

	if p.Utility != "" {
		if len(p.Considerations) > 0 || len(p.Actions) > 0 {
			return fmt.Errorf("profile %q: utility preset and inline considerations/actions are mutually exclusive", p.Name)
		}
		if _, ok := utility.PresetScorer(p.Utility); !ok {
			return fmt.Errorf("profile %q: unknown utility preset %q", p.Name, p.Utility)
		}
	}
	for i, c := range p.Considerations {
		kind, ok := world.ParseInputKind(c.Input)
		if !ok {
			return fmt.Errorf("profile %q consideration %d: unknown input %q", p.Name, i, c.Input)
		}
		if kind == world.InputCustom && c.Key == "" {
			return fmt.Errorf("profile %q consideration %d: custom input requires a key", p.Name, i)
		}
		curveKind, err := utility.ParseCurveKind(c.Curve)
		if err != nil {
			return fmt.Errorf("profile %q consideration %d: %w", p.Name, i, err)
		}
		if curveKind == utility.Custom && c.CurveFn == "" {
			return fmt.Errorf("profile %q consideration %d: custom curve requires curve_fn", p.Name, i)
		}
		if c.Weight < 0 {
			return fmt.Errorf("profile %q consideration %d: weight must be >= 0, got %v", p.Name, i, c.Weight)
		}
	}
	for i, a := range p.Actions {
		if a.Tag == "" {
			return fmt.Errorf("profile %q action %d: tag must not be empty", p.Name, i)
		}
		if a.BaseScore < 0 {
			return fmt.Errorf("profile %q action %d: base_score must be >= 0, got %v", p.Name, i, a.BaseScore)
		}
		for _, ci := range a.Considerations {
			if ci < 0 || ci >= len(p.Considerations) {
				return fmt.Errorf("profile %q action %d: consideration index %d out of range", p.Name, i, ci)
			}
		}
	}

	for i, t := range p.Transitions {
		if t.From == "" || t.Trigger == "" || t.To == "" {
			return fmt.Errorf("profile %q transition %d: from, trigger, and to must all be set", p.Name, i)
		}
	}

	if p.TargetStrategy != "" {
		if _, ok := target.ParseStrategy(p.TargetStrategy); !ok {
			return fmt.Errorf("profile %q: unknown target strategy %q", p.Name, p.TargetStrategy)
		}
	}

	if p.Tree != nil {
		if err := p.Tree.Validate(); err != nil {
			return fmt.Errorf("profile %q tree: %w", p.Name, err)
		}
	}
	return nil
}

// duration parses a validated duration field, or returns fallback when the
// field is empty.
func duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, _ := time.ParseDuration(value)
	return d
}

// BuildScorer assembles the profile's utility scorer. resolver may be nil
// when no consideration uses a custom curve.
//
// Precondition: p must have passed Validate.
func (p *Profile) BuildScorer(resolver CurveResolver, defaultInterval time.Duration) (*utility.Scorer, error) {
	var scorer *utility.Scorer
	if p.Utility != "" {
		scorer, _ = utility.PresetScorer(p.Utility)
	} else {
		scorer = utility.NewScorer()
		for i, c := range p.Considerations {
			kind, _ := world.ParseInputKind(c.Input)
			curveKind, _ := utility.ParseCurveKind(c.Curve)
			curve := utility.ResponseCurve{Kind: curveKind}
			if curveKind == utility.Custom {
				if resolver == nil {
					return nil, fmt.Errorf("profile %q consideration %d: custom curve %q but no resolver supplied", p.Name, i, c.CurveFn)
				}
				fn, err := resolver.Curve(c.CurveFn)
				if err != nil {
					return nil, fmt.Errorf("profile %q consideration %d: %w", p.Name, i, err)
				}
				curve.Fn = fn
			}
			scorer.AddConsideration(utility.Consideration{
				Name:   c.Name,
				Input:  world.Input{Kind: kind, Key: c.Key},
				Curve:  curve,
				Weight: c.Weight,
			})
		}
		for _, a := range p.Actions {
			scorer.AddAction(utility.Action{
				Name:           a.Name,
				Tag:            a.Tag,
				Considerations: a.Considerations,
				BaseScore:      a.BaseScore,
			})
		}
	}
	scorer.SetUpdateInterval(duration(p.UpdateInterval, defaultInterval))
	return scorer, nil
}

// BuildMachine assembles the profile's state machine: the default table when
// requested, then profile entries layered on top.
//
// Precondition: p must have passed Validate.
func (p *Profile) BuildMachine() *fsm.Machine {
	var m *fsm.Machine
	if p.DefaultTransitions {
		m = fsm.NewWithDefaults()
	} else {
		initial := fsm.StateIdle
		if p.InitialState != "" {
			initial = fsm.State(p.InitialState)
		}
		m = fsm.New(initial)
	}
	if p.InitialState != "" && p.DefaultTransitions {
		m.ForceState(fsm.State(p.InitialState))
	}
	for _, t := range p.Transitions {
		m.AddTransition(fsm.State(t.From), fsm.Trigger(t.Trigger), fsm.State(t.To))
	}
	return m
}

// BuildSelector assembles the profile's target selector. An empty
// TargetStrategy falls back to the role preset mapping.
//
// Precondition: p must have passed Validate.
func (p *Profile) BuildSelector(defaultReacquisition time.Duration) *target.Selector {
	strategy := target.StrategyForRole(p.Role)
	if p.TargetStrategy != "" {
		strategy, _ = target.ParseStrategy(p.TargetStrategy)
	}
	s := target.NewSelector(strategy)
	if p.MaxRange > 0 {
		s.MaxRange = p.MaxRange
	}
	s.ReacquisitionTime = duration(p.ReacquisitionTime, defaultReacquisition)
	return s
}

// BuildTree compiles the profile's tree definition against reg.
//
// Precondition: p must have passed Validate.
// Postcondition: a profile without a tree returns (nil, nil); the agent then
// runs on utility and state machine decisions alone.
func (p *Profile) BuildTree(reg *bt.Registry, defaultTickRate time.Duration) (*bt.Tree, error) {
	if p.Tree == nil {
		return nil, nil
	}
	tree, err := p.Tree.Build(reg)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", p.Name, err)
	}
	tree.SetTickRate(duration(p.TickRate, defaultTickRate))
	return tree, nil
}

// yamlProfileFile wraps the YAML top-level key.
type yamlProfileFile struct {
	Profile *Profile `yaml:"profile"`
}

// Load reads all *.yaml files from dir and returns parsed, validated
// Profiles.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns an error if any YAML file fails to parse or
// validate, or if two profiles share a name. Returns (nil, nil) when dir
// contains no .yaml files.
func Load(dir string) ([]*Profile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("profile.Load: reading %q: %w", dir, err)
	}
	var profiles []*Profile
	seen := make(map[string]struct{})
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("profile.Load: reading %s: %w", e.Name(), err)
		}
		var f yamlProfileFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("profile.Load: parsing %s: %w", e.Name(), err)
		}
		if f.Profile == nil {
			return nil, fmt.Errorf("profile.Load: %s missing top-level 'profile' key", e.Name())
		}
		if err := f.Profile.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[f.Profile.Name]; dup {
			return nil, fmt.Errorf("profile.Load: duplicate profile name %q", f.Profile.Name)
		}
		seen[f.Profile.Name] = struct{}{}
		profiles = append(profiles, f.Profile)
	}
	return profiles, nil
}
