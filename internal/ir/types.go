// Package ir implements the translator boundary: lowering the external
// parser's JSON intermediate representation (or, for tests and the CLI
// workbench, IR trees built directly in Go) into the engine's canonical
// model.Rule / model.Statement / model.Condition objects.
package ir

import (
	"encoding/json"
	"fmt"

	"github.com/logic-fabricator/fabricator/internal/model"
)

// Condition is the tagged IR condition tree: type ∈
// {LEAF, AND, OR, EXISTS, FORALL, NONE, COUNT}, with children[] for
// composite types and (subject, verb, object, negated) for LEAF.
//
// Composite children are addressed positionally: AND/OR use every entry of
// Children; EXISTS/NONE/COUNT use Children[0] as their single operand;
// FORALL uses Children[0] as the domain and Children[1] as the property.
type Condition struct {
	Type     string       `json:"type"`
	Children []*Condition `json:"children,omitempty"`
	Subject  TermList     `json:"subject,omitempty"`
	Verb     string       `json:"verb,omitempty"`
	Object   TermList     `json:"object,omitempty"`
	Negated  bool         `json:"negated,omitempty"`
	Operator string       `json:"operator,omitempty"`
	Value    int          `json:"value,omitempty"`
}

// TermList accepts either a bare JSON string or an array of strings, and
// always flattens to a []string.
type TermList []string

// UnmarshalJSON implements the subject/object string-or-array contract.
func (t *TermList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = TermList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("term list must be a string or array of strings: %w", err)
	}
	*t = TermList(many)
	return nil
}

// MarshalJSON renders a single-element list as a bare string, matching the
// external contract's shorthand, and a multi-element list as an array.
func (t TermList) MarshalJSON() ([]byte, error) {
	if len(t) == 1 {
		return json.Marshal(t[0])
	}
	return json.Marshal([]string(t))
}

// Statement is the IR shape of the "statement" input_type and of a
// "standard" rule's consequence: subject/object concatenate (flattened)
// into the term sequence, with verb and negated carried through directly.
// Modifiers are accepted for forward compatibility with the external
// parser but carry no engine semantics today.
type Statement struct {
	Subject   TermList               `json:"subject"`
	Verb      string                 `json:"verb"`
	Object    TermList               `json:"object"`
	Negated   bool                   `json:"negated"`
	Modifiers map[string]interface{} `json:"modifiers,omitempty"`
}

// Effect is the IR shape of an "effect" rule's consequence.
type Effect struct {
	TargetWorldStateKey string      `json:"target_world_state_key"`
	EffectOperation     string      `json:"effect_operation"`
	EffectValue         interface{} `json:"effect_value"`
}

// RuleData is the payload of a top-level {"input_type": "rule", ...}
// envelope.
type RuleData struct {
	RuleType    string          `json:"rule_type"`
	Condition   *Condition      `json:"condition"`
	Consequence json.RawMessage `json:"consequence"`
}

// Envelope is the top-level {"input_type": ..., "data": ...} contract.
type Envelope struct {
	InputType string          `json:"input_type"`
	Data      json.RawMessage `json:"data"`
}

func terms(subject, object TermList) []string {
	out := make([]string, 0, len(subject)+len(object))
	out = append(out, subject...)
	out = append(out, object...)
	return out
}

func countOp(op string) (model.CountOp, error) {
	switch model.CountOp(op) {
	case model.OpLess, model.OpLessEq, model.OpEqual, model.OpGreaterEq, model.OpGreater:
		return model.CountOp(op), nil
	default:
		return "", fmt.Errorf("unknown count operator %q", op)
	}
}
