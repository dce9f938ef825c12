// Package belief implements the BeliefSystem façade: the object a caller
// actually holds, wrapping the fork-agnostic engine loop with rule
// storage, fork bookkeeping, and full SimulationResult assembly.
package belief

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/logic-fabricator/fabricator/internal/engine"
	"github.com/logic-fabricator/fabricator/internal/fork"
	"github.com/logic-fabricator/fabricator/internal/logging"
	"github.com/logic-fabricator/fabricator/internal/model"
)

var tracer = logging.Get(logging.CategoryBelief)

// maxForkDepth bounds the internal replay loop in Simulate. Each fork
// strictly consumes one contradiction and the next attempt either succeeds
// or trips a different signature, so in practice this is never approached;
// it exists only to fail loudly instead of looping forever if that
// invariant is ever violated by a future change.
const maxForkDepth = 10000

// Contradiction records a statement-level clash encountered while
// simulating, and how it was resolved.
type Contradiction struct {
	Existing model.Statement
	New      model.Statement
	Strategy fork.Strategy
}

// SimulationResult is the full outcome of a BeliefSystem.Simulate call:
// the engine.Result for whichever belief system the simulation actually
// completed in, plus any fork that occurred along the way.
type SimulationResult struct {
	Introduced     []model.Statement
	Derived        []model.Statement
	AppliedRules   []engine.AppliedRule
	EffectsApplied []model.Effect
	WorldBefore    map[string]interface{}
	WorldAfter     map[string]interface{}
	Contradictions []Contradiction
	ForkedBeliefs  []*BeliefSystem

	// Final is the belief system the simulation actually completed in:
	// bs itself if no fork occurred, or the deepest child otherwise. The
	// CLI workbench uses this to decide which belief system becomes the
	// new session head.
	Final *BeliefSystem
}

// ForkRecord is one entry in a belief system's fork history, used for
// introspection.
type ForkRecord struct {
	Child    *BeliefSystem
	Existing model.Statement
	New      model.Statement
	Strategy fork.Strategy
}

// BeliefSystem is the mutable container for a set of rules, a fact/world
// state, and the forks spawned from it. Rules are stored content-addressed:
// adding a rule that is ContentEqual to one already present is rejected.
type BeliefSystem struct {
	ID       string
	Name     string
	Strategy fork.Strategy
	Parent   *BeliefSystem

	rules   []model.Rule
	ruleIDs map[string]bool
	state   *engine.State
	forks   []ForkRecord
}

// New constructs an empty, root belief system.
func New(name string, strategy fork.Strategy) (*BeliefSystem, error) {
	if !strategy.Valid() {
		return nil, fmt.Errorf("unknown forking strategy %q", strategy)
	}
	return &BeliefSystem{
		ID:       uuid.NewString(),
		Name:     name,
		Strategy: strategy,
		ruleIDs:  make(map[string]bool),
		state:    engine.NewState(),
	}, nil
}

// Restore reconstructs a belief system from previously persisted parts —
// its rules, fact base, and world state — without replaying any
// simulation. Used by the CLI workbench to resume a session between
// process invocations.
func Restore(id, name string, strategy fork.Strategy, rules []model.Rule, facts []model.Statement, world map[string]interface{}) (*BeliefSystem, error) {
	if !strategy.Valid() {
		return nil, fmt.Errorf("unknown forking strategy %q", strategy)
	}
	bs := &BeliefSystem{
		ID:       id,
		Name:     name,
		Strategy: strategy,
		ruleIDs:  make(map[string]bool),
		state:    engine.NewState(),
	}
	for _, r := range rules {
		if err := bs.AddRule(r); err != nil {
			return nil, err
		}
	}
	for _, f := range facts {
		bs.state.Add(f)
	}
	for k, v := range world {
		bs.state.World[k] = v
	}
	return bs, nil
}

// AddRule stores rule, rejecting one that is content-equal to an existing
// rule in this belief system.
func (bs *BeliefSystem) AddRule(rule model.Rule) error {
	if bs.ruleIDs[rule.ID] {
		return fmt.Errorf("rule %s already present in belief system %s", rule.ID, bs.ID)
	}
	bs.ruleIDs[rule.ID] = true
	bs.rules = append(bs.rules, rule)
	return nil
}

// Rules returns the belief system's rules in the order they were added.
func (bs *BeliefSystem) Rules() []model.Rule {
	return append([]model.Rule(nil), bs.rules...)
}

// Statements returns the current fact base in insertion order.
func (bs *BeliefSystem) Statements() []model.Statement {
	return append([]model.Statement(nil), bs.state.Facts()...)
}

// World returns a snapshot of the current world state.
func (bs *BeliefSystem) World() map[string]interface{} {
	return bs.state.WorldSnapshot()
}

// Forks returns the fork history recorded against this belief system.
func (bs *BeliefSystem) Forks() []ForkRecord {
	return append([]ForkRecord(nil), bs.forks...)
}

// Fork explicitly creates a child belief system sharing this one's current
// rules and state, with no statement pair forcing the split. strategy, if
// empty, inherits the parent's.
func (bs *BeliefSystem) Fork(name string, strategy fork.Strategy) (*BeliefSystem, error) {
	if strategy == "" {
		strategy = bs.Strategy
	}
	if !strategy.Valid() {
		return nil, fmt.Errorf("unknown forking strategy %q", strategy)
	}
	child := &BeliefSystem{
		ID:       uuid.NewString(),
		Name:     name,
		Strategy: strategy,
		Parent:   bs,
		ruleIDs:  copyRuleIDs(bs.ruleIDs),
		rules:    append([]model.Rule(nil), bs.rules...),
		state:    bs.state.Clone(),
	}
	return child, nil
}

func copyRuleIDs(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Simulate runs inputs through the belief system's rules via engine.Simulate
// against a cloned trial state, committing the trial back only if it
// completes without contradiction. On a statement-level contradiction, it
// resolves the clash per bs.Strategy: preserve rejects the new statement
// and reports the contradiction without touching bs; the other three
// strategies spawn a child pre-loaded with the strategy-adjusted statement
// pair and replay the full original input list against it, so the parent
// is left exactly as it was before the call.
func (bs *BeliefSystem) Simulate(inputs []model.Statement) (*SimulationResult, error) {
	for _, s := range inputs {
		if !s.IsGround() {
			return nil, fmt.Errorf("simulate input %q is not ground", s.ContentKey())
		}
	}

	result := &SimulationResult{WorldBefore: bs.state.WorldSnapshot()}
	current := bs

	for depth := 0; ; depth++ {
		if depth > maxForkDepth {
			return nil, fmt.Errorf("exceeded max fork depth (%d) while simulating", maxForkDepth)
		}

		trial := current.state.Clone()
		out, conflict, err := engine.Simulate(trial, current.rules, inputs)
		if err != nil {
			return nil, err
		}

		if conflict == nil {
			current.state = trial
			// Reflects whichever belief system the simulation actually
			// completed in: the deepest child, if a fork occurred along
			// the way.
			result.Introduced = out.Introduced
			result.Derived = out.Derived
			result.AppliedRules = out.AppliedRules
			result.EffectsApplied = out.EffectsApplied
			result.WorldAfter = out.WorldAfter
			result.Final = current
			return result, nil
		}

		resolution := fork.Resolve(current.Strategy, conflict.Existing, conflict.New)
		result.Contradictions = append(result.Contradictions, Contradiction{
			Existing: conflict.Existing,
			New:      conflict.New,
			Strategy: current.Strategy,
		})

		if !resolution.Forked {
			// preserve: reject the new statement, leave current untouched.
			tracer.Trace("preserve rejected %s (clashes with %s)", conflict.New.ContentKey(), conflict.Existing.ContentKey())
			result.WorldAfter = result.WorldBefore
			result.Final = current
			return result, nil
		}

		child, err := spawnResolvedChild(current, resolution)
		if err != nil {
			return nil, err
		}
		tracer.Trace("belief %s forked to %s under %s on %s vs %s", current.ID, child.ID, current.Strategy, conflict.Existing.ContentKey(), conflict.New.ContentKey())
		current.forks = append(current.forks, ForkRecord{
			Child:    child,
			Existing: resolution.Existing,
			New:      resolution.New,
			Strategy: current.Strategy,
		})
		if current == bs {
			result.ForkedBeliefs = append(result.ForkedBeliefs, child)
		}
		current = child
	}
}

// spawnResolvedChild builds a child of parent whose fact base keeps the
// existing statement, with its strategy-resolved priority, and adds the
// strategy-resolved new statement alongside it, ready to replay the full
// input list.
func spawnResolvedChild(parent *BeliefSystem, resolution fork.Resolution) (*BeliefSystem, error) {
	child := &BeliefSystem{
		ID:       uuid.NewString(),
		Name:     parent.Name + "-fork",
		Strategy: parent.Strategy,
		Parent:   parent,
		ruleIDs:  copyRuleIDs(parent.ruleIDs),
		rules:    append([]model.Rule(nil), parent.rules...),
		state:    parent.state.Clone(),
	}
	child.state.SetPriority(resolution.Existing, resolution.Existing.Priority)
	if !child.state.Contains(resolution.New) {
		child.state.Add(resolution.New)
	}
	return child, nil
}
