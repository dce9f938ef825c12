package ir

import (
	"encoding/json"
	"fmt"

	"github.com/logic-fabricator/fabricator/internal/model"
)

func marshalConsequence(consequence interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(consequence)
	if err != nil {
		return nil, fmt.Errorf("marshaling consequence: %w", err)
	}
	return data, nil
}

// Leaf builds an IR LEAF condition node directly in Go, for callers that
// construct rules without round-tripping through JSON (the CLI workbench
// and tests).
func Leaf(subject []string, verb string, object []string, negated bool) *Condition {
	return &Condition{Type: "LEAF", Subject: append(TermList(nil), subject...), Verb: verb, Object: append(TermList(nil), object...), Negated: negated}
}

// And builds an IR AND node.
func And(children ...*Condition) *Condition {
	return &Condition{Type: "AND", Children: children}
}

// Or builds an IR OR node.
func Or(children ...*Condition) *Condition {
	return &Condition{Type: "OR", Children: children}
}

// Exists builds an IR EXISTS node.
func Exists(child *Condition) *Condition {
	return &Condition{Type: "EXISTS", Children: []*Condition{child}}
}

// Forall builds an IR FORALL node with its domain and property operands.
func Forall(domain, property *Condition) *Condition {
	return &Condition{Type: "FORALL", Children: []*Condition{domain, property}}
}

// None builds an IR NONE node.
func None(child *Condition) *Condition {
	return &Condition{Type: "NONE", Children: []*Condition{child}}
}

// Count builds an IR COUNT node.
func Count(child *Condition, op model.CountOp, value int) *Condition {
	return &Condition{Type: "COUNT", Children: []*Condition{child}, Operator: string(op), Value: value}
}

// StatementData builds an IR statement (used as a "statement" envelope's
// data, or a "standard" rule's consequence).
func StatementData(subject []string, verb string, object []string, negated bool) Statement {
	return Statement{Subject: TermList(subject), Verb: verb, Object: TermList(object), Negated: negated}
}

// EffectData builds an IR effect (used as an "effect" rule's consequence).
func EffectData(targetKey string, op model.EffectOp, value interface{}) Effect {
	return Effect{TargetWorldStateKey: targetKey, EffectOperation: string(op), EffectValue: value}
}

// Rule builds an IR RuleData value ready for TranslateRule, marshaling the
// consequence (a Statement for rule_type "standard" or an Effect for
// "effect") to the RuleData.Consequence raw form TranslateRule expects.
func Rule(ruleType string, condition *Condition, consequence interface{}) (RuleData, error) {
	data, err := marshalConsequence(consequence)
	if err != nil {
		return RuleData{}, err
	}
	return RuleData{RuleType: ruleType, Condition: condition, Consequence: data}, nil
}
