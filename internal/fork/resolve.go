package fork

import "github.com/logic-fabricator/fabricator/internal/model"

// Resolution is the outcome of applying a Strategy to a statement-level
// contradiction: whether a child belief system should be spawned at all,
// and the (possibly priority-adjusted) copies of the two statements that
// child should hold.
type Resolution struct {
	Forked   bool
	Existing model.Statement
	New      model.Statement
}

// Resolve applies strategy to a contradiction between an existing fact and
// a newly introduced (or newly derived) statement. Only coexist,
// prioritize_new and prioritize_old ever produce a child; preserve always
// rejects the new statement outright and never forks.
func Resolve(strategy Strategy, existing, newStmt model.Statement) Resolution {
	switch strategy {
	case Preserve:
		return Resolution{Forked: false, Existing: existing, New: newStmt}

	case Coexist:
		return Resolution{Forked: true, Existing: existing, New: newStmt}

	case PrioritizeNew:
		adjustedExisting := existing
		adjustedExisting.Priority = downweight(existing.Priority, newStmt.Priority)
		return Resolution{Forked: true, Existing: adjustedExisting, New: newStmt}

	case PrioritizeOld:
		adjustedNew := newStmt
		adjustedNew.Priority = downweight(newStmt.Priority, existing.Priority)
		return Resolution{Forked: true, Existing: existing, New: adjustedNew}

	default:
		return Resolution{Forked: false, Existing: existing, New: newStmt}
	}
}

// downweight returns a priority for the disfavored side strictly below the
// favored side's priority, decrementing from its own current value.
func downweight(disfavored, favored int) int {
	next := disfavored - 1
	if next >= favored {
		next = favored - 1
	}
	return next
}
