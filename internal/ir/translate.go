package ir

import (
	"encoding/json"
	"fmt"

	"github.com/logic-fabricator/fabricator/internal/model"
)

// Result is the translation outcome for one IR envelope — exactly one of
// Rules, Statement, or Condition is populated, keyed by Kind.
type Result struct {
	Kind      string // "rule", "statement", or "question"
	Rules     []model.Rule
	Statement model.Statement
	Condition *model.Condition
}

// Translate parses a top-level IR envelope and dispatches on input_type.
func Translate(raw []byte) (*Result, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("malformed IR envelope: %w", err)
	}

	switch env.InputType {
	case "rule":
		var rd RuleData
		if err := json.Unmarshal(env.Data, &rd); err != nil {
			return nil, fmt.Errorf("malformed rule IR: %w", err)
		}
		rules, err := TranslateRule(rd)
		if err != nil {
			return nil, err
		}
		return &Result{Kind: "rule", Rules: rules}, nil

	case "statement":
		var sd Statement
		if err := json.Unmarshal(env.Data, &sd); err != nil {
			return nil, fmt.Errorf("malformed statement IR: %w", err)
		}
		stmt := TranslateStatement(sd)
		return &Result{Kind: "statement", Statement: stmt}, nil

	case "question":
		var cd Condition
		if err := json.Unmarshal(env.Data, &cd); err != nil {
			return nil, fmt.Errorf("malformed question IR: %w", err)
		}
		cond, err := TranslateCondition(&cd)
		if err != nil {
			return nil, err
		}
		return &Result{Kind: "question", Condition: cond}, nil

	default:
		return nil, fmt.Errorf("unknown input_type %q", env.InputType)
	}
}

// TranslateStatement lowers an IR statement into a model.Statement,
// concatenating subject and object into the term sequence.
func TranslateStatement(sd Statement) model.Statement {
	return model.NewStatement(sd.Verb, terms(sd.Subject, sd.Object), sd.Negated)
}

// TranslateEffect lowers an IR effect into a model.Effect.
func TranslateEffect(ed Effect) (model.Effect, error) {
	e := model.Effect{
		TargetKey: ed.TargetWorldStateKey,
		Operation: model.EffectOp(ed.EffectOperation),
		Value:     ed.EffectValue,
	}
	if err := e.Validate(); err != nil {
		return model.Effect{}, fmt.Errorf("invalid effect IR: %w", err)
	}
	return e, nil
}

// TranslateCondition lowers an IR condition tree into a model.Condition
// tree. The result may still contain OR nodes; callers that need an
// evaluator-ready condition must run EliminateDisjunction afterward.
func TranslateCondition(c *Condition) (*model.Condition, error) {
	if c == nil {
		return nil, fmt.Errorf("nil condition")
	}
	switch c.Type {
	case "LEAF":
		return model.Leaf(c.Verb, terms(c.Subject, c.Object), c.Negated), nil

	case "AND", "OR":
		children := make([]*model.Condition, len(c.Children))
		for i, ch := range c.Children {
			mc, err := TranslateCondition(ch)
			if err != nil {
				return nil, err
			}
			children[i] = mc
		}
		if c.Type == "AND" {
			return model.And(children...), nil
		}
		return model.Or(children...), nil

	case "EXISTS":
		if len(c.Children) != 1 {
			return nil, fmt.Errorf("EXISTS requires exactly 1 child, got %d", len(c.Children))
		}
		child, err := TranslateCondition(c.Children[0])
		if err != nil {
			return nil, err
		}
		return model.Exists(child), nil

	case "NONE":
		if len(c.Children) != 1 {
			return nil, fmt.Errorf("NONE requires exactly 1 child, got %d", len(c.Children))
		}
		child, err := TranslateCondition(c.Children[0])
		if err != nil {
			return nil, err
		}
		return model.None(child), nil

	case "FORALL":
		if len(c.Children) != 2 {
			return nil, fmt.Errorf("FORALL requires exactly 2 children (domain, property), got %d", len(c.Children))
		}
		domain, err := TranslateCondition(c.Children[0])
		if err != nil {
			return nil, err
		}
		property, err := TranslateCondition(c.Children[1])
		if err != nil {
			return nil, err
		}
		return model.Forall(domain, property), nil

	case "COUNT":
		if len(c.Children) != 1 {
			return nil, fmt.Errorf("COUNT requires exactly 1 child, got %d", len(c.Children))
		}
		child, err := TranslateCondition(c.Children[0])
		if err != nil {
			return nil, err
		}
		op, err := countOp(c.Operator)
		if err != nil {
			return nil, err
		}
		return model.Count(child, op, c.Value), nil

	default:
		return nil, fmt.Errorf("unknown condition type %q", c.Type)
	}
}

// TranslateRule lowers an IR rule into one or more engine rules, performing
// mandatory disjunction elimination: every OR node in the top-level AND/OR
// skeleton is distributed out into disjunctive normal form, and one engine
// rule is emitted per disjunct, each carrying a copy of the original
// consequence.
func TranslateRule(rd RuleData) ([]model.Rule, error) {
	cond, err := TranslateCondition(rd.Condition)
	if err != nil {
		return nil, err
	}
	consequence, err := translateConsequence(rd)
	if err != nil {
		return nil, err
	}

	disjuncts := EliminateDisjunction(cond)
	rules := make([]model.Rule, len(disjuncts))
	for i, d := range disjuncts {
		r, err := model.NewRule(d, []model.Consequence{consequence})
		if err != nil {
			return nil, fmt.Errorf("building rule for disjunct %d: %w", i, err)
		}
		rules[i] = r
	}
	return rules, nil
}

func translateConsequence(rd RuleData) (model.Consequence, error) {
	switch rd.RuleType {
	case "standard":
		var sd Statement
		if err := json.Unmarshal(rd.Consequence, &sd); err != nil {
			return model.Consequence{}, fmt.Errorf("malformed statement consequence: %w", err)
		}
		return model.StatementConsequence(TranslateStatement(sd)), nil

	case "effect":
		var ed Effect
		if err := json.Unmarshal(rd.Consequence, &ed); err != nil {
			return model.Consequence{}, fmt.Errorf("malformed effect consequence: %w", err)
		}
		e, err := TranslateEffect(ed)
		if err != nil {
			return model.Consequence{}, err
		}
		return model.EffectConsequence(e), nil

	default:
		return model.Consequence{}, fmt.Errorf("unknown rule_type %q", rd.RuleType)
	}
}
