// Package fork implements the forking strategies: the closed, four-case
// enumeration that decides what happens to a belief system when a
// statement-level contradiction fires during simulation.
package fork

import "fmt"

// Strategy is one of the four forking strategies. The set is stable and
// enumerated, so it is modeled as a validated string sum type rather than
// polymorphism on a strategy object.
type Strategy string

const (
	Coexist       Strategy = "coexist"
	PrioritizeNew Strategy = "prioritize_new"
	PrioritizeOld Strategy = "prioritize_old"
	Preserve      Strategy = "preserve"
)

// Valid reports whether s is one of the four known strategies.
func (s Strategy) Valid() bool {
	switch s {
	case Coexist, PrioritizeNew, PrioritizeOld, Preserve:
		return true
	default:
		return false
	}
}

// Parse validates a strategy tag, returning an error for anything outside
// the closed enumeration.
func Parse(s string) (Strategy, error) {
	st := Strategy(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown forking strategy %q", s)
	}
	return st, nil
}
