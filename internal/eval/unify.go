package eval

import (
	"strings"

	"github.com/logic-fabricator/fabricator/internal/model"
)

// UnifyLeaf attempts to match a LEAF pattern against a ground statement
// under an existing environment. It returns the extended environment and
// true on success.
//
// Matching rules:
//   - verb and negated must match exactly.
//   - a plain pattern term must equal the corresponding statement term.
//   - a variable term ("?x") binds to the corresponding statement term.
//   - a greedy wildcard term ("*x") may appear at most once, must be last,
//     and binds to the list of all remaining statement terms.
//   - without a wildcard, term counts must be equal.
//   - repeated pattern variables must bind consistently.
func UnifyLeaf(pattern *model.Condition, stmt model.Statement, env Env) (Env, bool) {
	if pattern.Kind != model.KindLeaf {
		return nil, false
	}
	if pattern.Verb != stmt.Verb || pattern.Negated != stmt.Negated {
		return nil, false
	}

	wildcardIdx := -1
	for i, t := range pattern.Terms {
		if strings.HasPrefix(t, "*") {
			wildcardIdx = i
			break
		}
	}

	if wildcardIdx == -1 {
		if len(pattern.Terms) != len(stmt.Terms) {
			return nil, false
		}
	} else {
		if wildcardIdx != len(pattern.Terms)-1 {
			// A greedy wildcard must be the last pattern term.
			return nil, false
		}
		if len(stmt.Terms) < wildcardIdx {
			return nil, false
		}
	}

	current := env
	limit := len(pattern.Terms)
	if wildcardIdx != -1 {
		limit = wildcardIdx
	}

	for i := 0; i < limit; i++ {
		pt := pattern.Terms[i]
		st := stmt.Terms[i]
		var ok bool
		switch {
		case strings.HasPrefix(pt, "?"):
			current, ok = current.extend(pt[1:], st)
		default:
			ok = pt == st
		}
		if !ok {
			return nil, false
		}
	}

	if wildcardIdx != -1 {
		name := pattern.Terms[wildcardIdx][1:]
		captured := append([]string(nil), stmt.Terms[wildcardIdx:]...)
		var ok bool
		current, ok = current.extend(name, captured)
		if !ok {
			return nil, false
		}
	}

	return current, true
}
