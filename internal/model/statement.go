// Package model defines the canonical, immutable value types of the
// Logic Fabricator engine: statements, conditions, effects, and rules.
package model

import "strings"

// Statement is an assertion: a verb, an ordered sequence of terms, a
// negation flag, and a priority used only by priority-aware forking
// strategies. Priority is metadata, not identity.
type Statement struct {
	Verb     string   `json:"verb"`
	Terms    []string `json:"terms"`
	Negated  bool     `json:"negated"`
	Priority int      `json:"priority"`
}

// NewStatement builds a statement with priority 0.
func NewStatement(verb string, terms []string, negated bool) Statement {
	return Statement{Verb: verb, Terms: append([]string(nil), terms...), Negated: negated}
}

// IsGround reports whether no term begins with '?' or '*'.
func (s Statement) IsGround() bool {
	for _, t := range s.Terms {
		if strings.HasPrefix(t, "?") || strings.HasPrefix(t, "*") {
			return false
		}
	}
	return true
}

// ContentEqual reports whether two statements share the same
// (verb, terms, negated) tuple; priority is excluded.
func (s Statement) ContentEqual(other Statement) bool {
	if s.Verb != other.Verb || s.Negated != other.Negated {
		return false
	}
	if len(s.Terms) != len(other.Terms) {
		return false
	}
	for i := range s.Terms {
		if s.Terms[i] != other.Terms[i] {
			return false
		}
	}
	return true
}

// ContradictsWith reports whether other is the content-equal statement
// with the opposite negation flag — a statement-level contradiction.
func (s Statement) ContradictsWith(other Statement) bool {
	if s.Verb != other.Verb || s.Negated == other.Negated {
		return false
	}
	if len(s.Terms) != len(other.Terms) {
		return false
	}
	for i := range s.Terms {
		if s.Terms[i] != other.Terms[i] {
			return false
		}
	}
	return true
}

// ContentKey returns a stable string key for the (verb, terms, negated)
// tuple, used to index fact bases and causal memos.
func (s Statement) ContentKey() string {
	var b strings.Builder
	if s.Negated {
		b.WriteString("NOT ")
	}
	b.WriteString(s.Verb)
	for _, t := range s.Terms {
		b.WriteByte(' ')
		b.WriteString(t)
	}
	return b.String()
}

// Negate returns a copy of s with the negation flag flipped.
func (s Statement) Negate() Statement {
	n := s
	n.Negated = !n.Negated
	return n
}
