package engine

import (
	"encoding/json"
	"strings"

	"github.com/logic-fabricator/fabricator/internal/eval"
	"github.com/logic-fabricator/fabricator/internal/model"
)

// substituteTerm resolves a single consequence-template term against a
// binding environment. A literal term passes through unchanged. A variable
// term ("?x") resolves to its bound value: a plain term if bound to a
// single string, or a JSON array rendering if bound to a wildcard-captured
// list, so a derived statement stays a flat list of string terms.
func substituteTerm(term string, env eval.Env) string {
	if !strings.HasPrefix(term, "?") {
		return term
	}
	val, ok := env[term[1:]]
	if !ok {
		return term
	}
	switch v := val.(type) {
	case string:
		return v
	case []string:
		data, err := json.Marshal(v)
		if err != nil {
			return term
		}
		return string(data)
	default:
		return term
	}
}

// instantiateStatement substitutes variables in a statement template.
func instantiateStatement(tmpl *model.Statement, env eval.Env) model.Statement {
	terms := make([]string, len(tmpl.Terms))
	for i, t := range tmpl.Terms {
		terms[i] = substituteTerm(t, env)
	}
	return model.Statement{
		Verb:     tmpl.Verb,
		Terms:    terms,
		Negated:  tmpl.Negated,
		Priority: tmpl.Priority,
	}
}

// instantiateEffect substitutes variables in an effect template's target
// key and, if it is itself a variable reference, its value.
func instantiateEffect(tmpl *model.Effect, env eval.Env) model.Effect {
	out := model.Effect{
		TargetKey: substituteTerm(tmpl.TargetKey, env),
		Operation: tmpl.Operation,
		Value:     tmpl.Value,
	}
	if s, ok := tmpl.Value.(string); ok {
		out.Value = substituteTerm(s, env)
	}
	return out
}
