package eval

import (
	"fmt"
	"strings"

	"github.com/logic-fabricator/fabricator/internal/model"
)

// FactSource is anything the evaluator can match LEAF patterns against.
// A belief system's fact base satisfies this trivially.
type FactSource interface {
	Facts() []model.Statement
}

// IndexedFacts is implemented by a FactSource that can retrieve LEAF
// candidates by predicate instead of handing the evaluator every fact in
// the base to filter by hand. The belief system's live state
// (internal/engine.State) backs this with a Mangle
// (github.com/google/mangle/factstore) fact store keyed by predicate
// symbol and arity, so the LEAF base case is served by predicate-indexed
// retrieval rather than a bare linear scan.
type IndexedFacts interface {
	FactSource
	// CandidatesFor returns every ground statement stored for verb/negated
	// whose arity equals minArity (exact) or is at least minArity
	// (!exact, serving a greedy-wildcard pattern whose arity is a lower
	// bound rather than a fixed one).
	CandidatesFor(verb string, negated bool, minArity int, exact bool) []model.Statement
}

// SliceFacts adapts a plain slice of statements to FactSource, used by
// tests that evaluate conditions against a synthetic fact base rather than
// a live belief system. It does not
// implement IndexedFacts: these fact sets are small and throwaway, so
// evalLeaf falls back to a linear scan over Facts().
type SliceFacts []model.Statement

func (s SliceFacts) Facts() []model.Statement { return []model.Statement(s) }

// Evaluate computes the set of binding environments under which condition
// holds against facts, extending env. Quantified nodes
// (EXISTS, FORALL, NONE, COUNT) never leak their inner bindings outward —
// they pass env through unchanged on success. Only LEAF and AND contribute
// new bindings to the outward environment.
func Evaluate(condition *model.Condition, facts FactSource, env Env) (*EnvSet, error) {
	switch condition.Kind {
	case model.KindLeaf:
		return evalLeaf(condition, facts, env), nil

	case model.KindAnd:
		return evalAnd(condition, facts, env)

	case model.KindOr:
		return nil, fmt.Errorf("condition evaluator received an OR node; the IR translator must eliminate disjunction before rules reach the evaluator")

	case model.KindExists:
		inner, err := Evaluate(condition.Child, facts, env)
		if err != nil {
			return nil, err
		}
		out := NewEnvSet()
		if inner.Len() > 0 {
			out.Add(env)
		}
		return out, nil

	case model.KindForall:
		return evalForall(condition, facts, env)

	case model.KindNone:
		inner, err := Evaluate(condition.Child, facts, env)
		if err != nil {
			return nil, err
		}
		out := NewEnvSet()
		if inner.Len() == 0 {
			out.Add(env)
		}
		return out, nil

	case model.KindCount:
		inner, err := Evaluate(condition.Child, facts, env)
		if err != nil {
			return nil, err
		}
		out := NewEnvSet()
		if compareCount(inner.Len(), condition.Op, condition.Value) {
			out.Add(env)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unknown condition kind %q", condition.Kind)
	}
}

func evalLeaf(condition *model.Condition, facts FactSource, env Env) *EnvSet {
	out := NewEnvSet()
	for _, stmt := range candidateStatements(condition, facts) {
		if !stmt.IsGround() {
			continue
		}
		if next, ok := UnifyLeaf(condition, stmt, env); ok {
			out.Add(next)
		}
	}
	return out
}

// candidateStatements narrows the fact source to the statements a LEAF
// pattern could possibly match, via the Mangle-backed predicate index
// when facts provides one. A pattern without a greedy wildcard has a
// fixed arity, served by an exact (verb, negated, arity) lookup; a
// wildcard pattern's arity is only a lower bound, so every arity bucket
// at or above it is consulted.
func candidateStatements(condition *model.Condition, facts FactSource) []model.Statement {
	idx, ok := facts.(IndexedFacts)
	if !ok {
		return facts.Facts()
	}
	wildcardIdx := -1
	for i, t := range condition.Terms {
		if strings.HasPrefix(t, "*") {
			wildcardIdx = i
			break
		}
	}
	if wildcardIdx == -1 {
		return idx.CandidatesFor(condition.Verb, condition.Negated, len(condition.Terms), true)
	}
	return idx.CandidatesFor(condition.Verb, condition.Negated, wildcardIdx, false)
}

// evalAnd left-folds children: eval(c1, env) then for each resulting
// environment recurse into c2, etc. The final set is independent of child
// order, though an implementation may reorder children to push the most
// selective condition first; this evaluator evaluates in authored order.
func evalAnd(condition *model.Condition, facts FactSource, env Env) (*EnvSet, error) {
	frontier := []Env{env}
	for _, child := range condition.Children {
		next := NewEnvSet()
		for _, e := range frontier {
			childEnvs, err := Evaluate(child, facts, e)
			if err != nil {
				return nil, err
			}
			for _, ce := range childEnvs.Envs() {
				next.Add(ce)
			}
		}
		frontier = next.Envs()
		if len(frontier) == 0 {
			break
		}
	}
	out := NewEnvSet()
	for _, e := range frontier {
		out.Add(e)
	}
	return out, nil
}

func evalForall(condition *model.Condition, facts FactSource, env Env) (*EnvSet, error) {
	domainEnvs, err := Evaluate(condition.Domain, facts, env)
	if err != nil {
		return nil, err
	}
	out := NewEnvSet()
	// Vacuous truth over an empty domain: every binding (there are none)
	// trivially satisfies the property.
	holds := true
	for _, e := range domainEnvs.Envs() {
		propEnvs, err := Evaluate(condition.Property, facts, e)
		if err != nil {
			return nil, err
		}
		if propEnvs.Len() == 0 {
			holds = false
			break
		}
	}
	if holds {
		out.Add(env)
	}
	return out, nil
}

func compareCount(n int, op model.CountOp, value int) bool {
	switch op {
	case model.OpLess:
		return n < value
	case model.OpLessEq:
		return n <= value
	case model.OpEqual:
		return n == value
	case model.OpGreaterEq:
		return n >= value
	case model.OpGreater:
		return n > value
	default:
		return false
	}
}
