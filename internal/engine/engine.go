package engine

import (
	"fmt"
	"sort"

	"github.com/logic-fabricator/fabricator/internal/eval"
	"github.com/logic-fabricator/fabricator/internal/logging"
	"github.com/logic-fabricator/fabricator/internal/model"
)

var tracer = logging.Get(logging.CategoryEngine)

// AppliedRule records that a rule fired under a specific binding.
type AppliedRule struct {
	RuleID  string
	Binding eval.Env
}

// Conflict is a statement-level contradiction encountered while simulating:
// stmt content-equal to Existing but with the opposite negation flag.
type Conflict struct {
	Existing model.Statement
	New      model.Statement
}

// Result is the core, fork-agnostic outcome of one Simulate call. The
// belief-system façade wraps this into a full SimulationResult, adding
// fork bookkeeping.
type Result struct {
	Introduced     []model.Statement
	Derived        []model.Statement
	AppliedRules   []AppliedRule
	EffectsApplied []model.Effect
	WorldBefore    map[string]interface{}
	WorldAfter     map[string]interface{}
}

type firing struct {
	rule model.Rule
	env  eval.Env
	key  string
}

func memoKey(ruleID string, env eval.Env) string {
	return ruleID + "|" + env.CanonicalKey()
}

// Simulate runs the fixed-point loop against state, mutating it in place,
// until quiescence or a statement-level contradiction. On contradiction it
// returns the partial Result accumulated so far and a non-nil Conflict;
// state is left exactly as far as processing got — callers that want
// "parent untouched" fork semantics should call Simulate against a
// State.Clone() and discard it on conflict, reconstructing the trial from
// the belief system's original facts plus the fork strategy's resolution
// instead.
func Simulate(state *State, rules []model.Rule, inputs []model.Statement) (*Result, *Conflict, error) {
	result := &Result{WorldBefore: state.WorldSnapshot()}

	sortedRules := append([]model.Rule(nil), rules...)
	sort.Slice(sortedRules, func(i, j int) bool { return sortedRules[i].ID < sortedRules[j].ID })

	for _, stmt := range inputs {
		model.RequireGround(stmt)

		if state.Contains(stmt) {
			continue
		}
		if existing, found := state.Contradicts(stmt); found {
			tracer.Trace("contradiction on input admission: %s vs %s", existing.ContentKey(), stmt.ContentKey())
			result.WorldAfter = state.WorldSnapshot()
			return result, &Conflict{Existing: existing, New: stmt}, nil
		}
		state.Add(stmt)
		result.Introduced = append(result.Introduced, stmt)
	}

	for {
		var firings []firing
		for _, r := range sortedRules {
			envs, err := eval.Evaluate(r.Condition, state, eval.Env{})
			if err != nil {
				return nil, nil, err
			}
			for _, e := range envs.Envs() {
				key := memoKey(r.ID, e)
				if state.Memo[key] {
					continue
				}
				firings = append(firings, firing{rule: r, env: e, key: key})
			}
		}
		if len(firings) == 0 {
			break
		}

		sort.Slice(firings, func(i, j int) bool {
			if firings[i].rule.ID != firings[j].rule.ID {
				return firings[i].rule.ID < firings[j].rule.ID
			}
			return firings[i].env.CanonicalKey() < firings[j].env.CanonicalKey()
		})

		progressed := false
		for _, f := range firings {
			if state.Memo[f.key] {
				continue
			}

			var derivedThisFiring []model.Statement
			var effectsThisFiring []model.Effect
			conflicted := false
			var conflict Conflict

			for _, cons := range f.rule.Consequences {
				switch cons.Kind {
				case model.ConsequenceStatement:
					inst := instantiateStatement(cons.Statement, f.env)
					if !inst.IsGround() {
						// A consequence variable the condition never bound:
						// an authoring error in the rule, not engine
						// corruption.
						return nil, nil, fmt.Errorf("rule %s consequence %q is not ground under binding %s", f.rule.ID, inst.ContentKey(), f.env.CanonicalKey())
					}
					if state.Contains(inst) {
						continue
					}
					if existing, found := state.Contradicts(inst); found {
						conflicted = true
						conflict = Conflict{Existing: existing, New: inst}
					} else {
						state.Add(inst)
						derivedThisFiring = append(derivedThisFiring, inst)
					}
				case model.ConsequenceEffect:
					e := instantiateEffect(cons.Effect, f.env)
					if err := ApplyEffect(state.World, e); err != nil {
						return nil, nil, err
					}
					effectsThisFiring = append(effectsThisFiring, e)
				}
				if conflicted {
					break
				}
			}

			if conflicted {
				result.Derived = append(result.Derived, derivedThisFiring...)
				result.EffectsApplied = append(result.EffectsApplied, effectsThisFiring...)
				result.WorldAfter = state.WorldSnapshot()
				return result, &conflict, nil
			}

			state.Memo[f.key] = true
			if len(derivedThisFiring) > 0 || len(effectsThisFiring) > 0 {
				result.AppliedRules = append(result.AppliedRules, AppliedRule{RuleID: f.rule.ID, Binding: f.env})
				tracer.Trace("rule %s fired under %s: %d derived, %d effects", f.rule.ID, f.env.CanonicalKey(), len(derivedThisFiring), len(effectsThisFiring))
			}
			result.Derived = append(result.Derived, derivedThisFiring...)
			result.EffectsApplied = append(result.EffectsApplied, effectsThisFiring...)
			progressed = true
		}
		if !progressed {
			break
		}
	}

	result.WorldAfter = state.WorldSnapshot()
	return result, nil, nil
}
