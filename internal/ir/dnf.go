package ir

import "github.com/logic-fabricator/fabricator/internal/model"

// EliminateDisjunction pushes every OR node in c's top-level AND/OR
// skeleton out via distribution, returning one AND-of-non-OR condition per
// disjunct. LEAF and quantifier nodes (EXISTS, FORALL,
// NONE, COUNT) are treated as atoms: an OR authored directly inside one of
// their operands is not itself decomposed, since none of those quantifiers
// distribute over disjunction the way AND does. Authors should keep OR
// confined to the AND/OR skeleton surrounding leaves and quantifiers.
func EliminateDisjunction(c *model.Condition) []*model.Condition {
	switch c.Kind {
	case model.KindOr:
		var out []*model.Condition
		for _, child := range c.Children {
			out = append(out, EliminateDisjunction(child)...)
		}
		return out

	case model.KindAnd:
		perChild := make([][]*model.Condition, len(c.Children))
		for i, child := range c.Children {
			perChild[i] = EliminateDisjunction(child)
		}
		return cartesianAnd(perChild)

	default:
		return []*model.Condition{c}
	}
}

// cartesianAnd combines, for each AND child's list of disjuncts, every
// combination into a single flattened AND node, preserving authored child
// order within each combination.
func cartesianAnd(perChild [][]*model.Condition) []*model.Condition {
	combos := [][]*model.Condition{{}}
	for _, options := range perChild {
		var next [][]*model.Condition
		for _, combo := range combos {
			for _, opt := range options {
				extended := make([]*model.Condition, len(combo), len(combo)+1)
				copy(extended, combo)
				extended = append(extended, opt)
				next = append(next, extended)
			}
		}
		combos = next
	}

	out := make([]*model.Condition, len(combos))
	for i, combo := range combos {
		out[i] = model.And(flattenAndChildren(combo)...)
	}
	return out
}

// flattenAndChildren inlines any already-AND node's children so elimination
// never produces AND(AND(...), ...), keeping the result a flat
// AND-of-non-OR condition.
func flattenAndChildren(nodes []*model.Condition) []*model.Condition {
	var out []*model.Condition
	for _, n := range nodes {
		if n.Kind == model.KindAnd {
			out = append(out, n.Children...)
		} else {
			out = append(out, n)
		}
	}
	return out
}
