package fork

import "github.com/logic-fabricator/fabricator/internal/model"

// Tension is a proactively-detected pair of rules whose consequences could,
// under some as-yet-unseen binding, derive a statement and its negation.
// Detection is best-effort: it reasons over rule *templates*,
// not the current fact base, so it can flag a tension no input has
// triggered yet.
type Tension struct {
	RuleA   model.Rule
	RuleB   model.Rule
	Witness map[string]string
}

// DefaultContextHopLimit is the default depth for expanding a rule's direct
// consequences through "context rules" (single-leaf-condition,
// single-statement-consequence rules like "is ?x penguin => is ?x bird")
// before checking for a clash. Bounding the expansion keeps the check
// decidable; callers can raise the limit.
const DefaultContextHopLimit = 1

// DetectTensions scans rules pairwise for potential contradictions in their
// consequence templates, expanding each rule's conclusions through up to
// hopLimit applications of contextRules first. Only consequences are
// compared: the two rules' conditions are not checked for joint
// satisfiability, so a pair is reported even when no fact base could
// satisfy both conditions at once. It never mutates a belief system;
// callers decide what, if anything, to do with the report.
func DetectTensions(rules []model.Rule, contextRules []model.Rule, hopLimit int) []Tension {
	var tensions []Tension
	for i := 0; i < len(rules); i++ {
		for j := i + 1; j < len(rules); j++ {
			a, b := rules[i], rules[j]
			aConclusions := expand(statementConclusions(a), contextRules, hopLimit)
			bConclusions := expand(statementConclusions(b), contextRules, hopLimit)

			found := false
			var witness map[string]string
			for _, sa := range aConclusions {
				for _, sb := range bConclusions {
					if sa.Negated == sb.Negated {
						continue
					}
					if w, ok := unifyTemplates(sa, sb); ok {
						found = true
						witness = w
						break
					}
				}
				if found {
					break
				}
			}
			if found {
				tensions = append(tensions, Tension{RuleA: a, RuleB: b, Witness: witness})
			}
		}
	}
	return tensions
}

func statementConclusions(r model.Rule) []model.Statement {
	var out []model.Statement
	for _, c := range r.Consequences {
		if c.Kind == model.ConsequenceStatement {
			out = append(out, *c.Statement)
		}
	}
	return out
}

// expand grows a conclusion set by applying any single-leaf/single-statement
// context rule whose condition template pattern-unifies with a conclusion
// already in the set, up to hopLimit rounds.
func expand(seed []model.Statement, contextRules []model.Rule, hopLimit int) []model.Statement {
	out := append([]model.Statement(nil), seed...)
	for hop := 0; hop < hopLimit; hop++ {
		var added []model.Statement
		for _, cr := range contextRules {
			if cr.Condition == nil || cr.Condition.Kind != model.KindLeaf {
				continue
			}
			crConclusions := statementConclusions(cr)
			if len(crConclusions) != 1 {
				continue
			}
			leafAsStatement := model.NewStatement(cr.Condition.Verb, cr.Condition.Terms, cr.Condition.Negated)
			for _, s := range out {
				witness, ok := unifyTemplates(s, leafAsStatement)
				if !ok {
					continue
				}
				added = append(added, substituteTemplate(crConclusions[0], witness, "b"))
			}
		}
		if len(added) == 0 {
			break
		}
		out = append(out, added...)
	}
	return out
}

func substituteTemplate(tmpl model.Statement, witness map[string]string, side string) model.Statement {
	terms := make([]string, len(tmpl.Terms))
	for i, t := range tmpl.Terms {
		if len(t) > 0 && t[0] == '?' {
			if v, ok := witness[side+"."+t[1:]]; ok {
				terms[i] = v
				continue
			}
		}
		terms[i] = t
	}
	return model.NewStatement(tmpl.Verb, terms, tmpl.Negated)
}

// unifyTemplates performs pattern-pattern unification between two statement
// templates that may each carry their own variables (the tension check
// needs this, unlike ordinary pattern-against-ground-fact unification in
// internal/eval). Two bound variables unify by aliasing to a
// synthetic shared symbol; a variable against a literal binds to that
// literal; two literals must match exactly.
func unifyTemplates(a, b model.Statement) (map[string]string, bool) {
	if a.Verb != b.Verb || len(a.Terms) != len(b.Terms) {
		return nil, false
	}
	aBind := map[string]string{}
	bBind := map[string]string{}
	for i := range a.Terms {
		at, bt := a.Terms[i], b.Terms[i]
		aVar := len(at) > 0 && (at[0] == '?' || at[0] == '*')
		bVar := len(bt) > 0 && (bt[0] == '?' || bt[0] == '*')
		switch {
		case !aVar && !bVar:
			if at != bt {
				return nil, false
			}
		case aVar && !bVar:
			key := at[1:]
			if existing, ok := aBind[key]; ok && existing != bt {
				return nil, false
			}
			aBind[key] = bt
		case !aVar && bVar:
			key := bt[1:]
			if existing, ok := bBind[key]; ok && existing != at {
				return nil, false
			}
			bBind[key] = at
		default:
			sym := "~" + at[1:] + "=" + bt[1:]
			aBind[at[1:]] = sym
			bBind[bt[1:]] = sym
		}
	}
	witness := make(map[string]string, len(aBind)+len(bBind))
	for k, v := range aBind {
		witness["a."+k] = v
	}
	for k, v := range bBind {
		witness["b."+k] = v
	}
	return witness, true
}
