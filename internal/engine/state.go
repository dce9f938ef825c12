// Package engine implements the fixed-point inference loop: applying
// rules, deriving statements, applying world-state effects, and
// guaranteeing termination and idempotence via a causal memo.
package engine

import (
	"strings"

	"github.com/logic-fabricator/fabricator/internal/model"
)

// State is the mutable working set a single Simulate call operates
// against: the fact base, the world state, and the causal memo. The
// belief-system façade owns and snapshots it; the engine only ever
// mutates the State it's handed and never reaches into a BeliefSystem
// directly.
//
// The fact base is indexed twice: contentIndex/signIndex answer the
// identity questions (Contains/Contradicts) that forking and input
// admission need, while index is a Mangle (github.com/google/mangle)
// fact store that answers the evaluator's predicate-matching question —
// "which stored statements could a LEAF pattern for this verb possibly
// match" — via factstore.FactStore retrieval instead of a linear scan
// over facts.
type State struct {
	facts        []model.Statement
	contentIndex map[string]bool
	signIndex    map[string]map[bool]string // signature -> negated -> content key
	index        mangleFactIndex
	World        map[string]interface{}
	Memo         map[string]bool
}

// NewState returns an empty State.
func NewState() *State {
	return &State{
		contentIndex: make(map[string]bool),
		signIndex:    make(map[string]map[bool]string),
		index:        newMangleFactIndex(),
		World:        make(map[string]interface{}),
		Memo:         make(map[string]bool),
	}
}

// Clone deep-copies the state so a trial simulation never mutates the
// belief system it was snapshotted from. The Mangle fact store has no
// exposed clone primitive, so the clone's index is rebuilt by replaying
// every stored fact into a fresh factstore.FactStore.
func (s *State) Clone() *State {
	out := NewState()
	out.facts = append(out.facts, s.facts...)
	for k, v := range s.contentIndex {
		out.contentIndex[k] = v
	}
	for sig, m := range s.signIndex {
		inner := make(map[bool]string, len(m))
		for neg, key := range m {
			inner[neg] = key
		}
		out.signIndex[sig] = inner
	}
	for _, f := range s.facts {
		out.index.add(f)
	}
	for k, v := range s.World {
		out.World[k] = v
	}
	for k, v := range s.Memo {
		out.Memo[k] = v
	}
	return out
}

func signature(verb string, terms []string) string {
	return verb + "|" + strings.Join(terms, ",")
}

// Facts returns the fact base in insertion order, satisfying eval.FactSource.
func (s *State) Facts() []model.Statement {
	return s.facts
}

// CandidatesFor implements eval.IndexedFacts, serving the evaluator's LEAF
// base case via the Mangle fact store's predicate index instead of a
// linear scan over every fact in the base.
func (s *State) CandidatesFor(verb string, negated bool, minArity int, exact bool) []model.Statement {
	return s.index.candidatesFor(verb, negated, minArity, exact)
}

// Contains reports whether a content-equal statement is already present.
func (s *State) Contains(stmt model.Statement) bool {
	return s.contentIndex[stmt.ContentKey()]
}

// Contradicts reports the existing statement that content-equal-but-negated
// conflicts with stmt, if any.
func (s *State) Contradicts(stmt model.Statement) (model.Statement, bool) {
	sig := signature(stmt.Verb, stmt.Terms)
	m, ok := s.signIndex[sig]
	if !ok {
		return model.Statement{}, false
	}
	key, ok := m[!stmt.Negated]
	if !ok {
		return model.Statement{}, false
	}
	for _, f := range s.facts {
		if f.ContentKey() == key {
			return f, true
		}
	}
	return model.Statement{}, false
}

// Add inserts a ground statement into the fact base. Every fact-base
// member must be ground; violating that is a fatal programming error, not
// a recoverable one.
func (s *State) Add(stmt model.Statement) {
	model.RequireGround(stmt)

	key := stmt.ContentKey()
	s.contentIndex[key] = true
	s.facts = append(s.facts, stmt)
	s.index.add(stmt)

	sig := signature(stmt.Verb, stmt.Terms)
	m, ok := s.signIndex[sig]
	if !ok {
		m = make(map[bool]string)
		s.signIndex[sig] = m
	}
	m[stmt.Negated] = key
}

// SetPriority rewrites the stored priority of the content-equal statement,
// used by the prioritize_new/prioritize_old forking strategies to
// down-weight the disfavored side of a contradiction.
func (s *State) SetPriority(stmt model.Statement, priority int) {
	key := stmt.ContentKey()
	for i := range s.facts {
		if s.facts[i].ContentKey() == key {
			s.facts[i].Priority = priority
			return
		}
	}
}

// WorldSnapshot returns a shallow copy of the world state, used for
// before/after diffs in a SimulationResult.
func (s *State) WorldSnapshot() map[string]interface{} {
	out := make(map[string]interface{}, len(s.World))
	for k, v := range s.World {
		out[k] = v
	}
	return out
}
