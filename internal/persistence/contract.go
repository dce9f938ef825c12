// Package persistence defines the DatabaseAdapter contract and the
// canonical-node graph schema every conforming adapter implements, plus
// two implementations: an in-memory adapter for tests, and a sqlite-backed
// reference adapter under internal/persistence/sqlite.
package persistence

import (
	"time"

	"github.com/logic-fabricator/fabricator/internal/engine"
	"github.com/logic-fabricator/fabricator/internal/model"
)

// AppliedRuleRecord is the persisted shape of an engine.AppliedRule: the
// binding environment, flattened to plain JSON-able values.
type AppliedRuleRecord struct {
	RuleID  string
	Binding map[string]interface{}
}

// SimulationRecord is one row of a belief system's simulation history.
type SimulationRecord struct {
	ID             string
	BeliefSystemID string
	Timestamp      time.Time
	Introduced     []model.Statement
	AppliedRules   []AppliedRuleRecord
	Derived        []model.Statement
}

// DatabaseAdapter is the persistence contract the engine records through.
// Every operation is atomic; a caller that receives an error has not
// mutated the store for that call.
type DatabaseAdapter interface {
	// CreateBeliefSystem records a new root or standalone belief system.
	CreateBeliefSystem(id, name, strategy string, createdAt time.Time) error

	// ForkBeliefSystem records a child belief system and its FORKED_FROM
	// edge to parentID.
	ForkBeliefSystem(parentID, childID, name, strategy string, createdAt time.Time) error

	// AddRule records a rule under a belief system, MERGEd by rule content
	// (ruleID is already the content hash, so this is idempotent).
	AddRule(beliefSystemID, ruleID string, conditionJSON, consequencesJSON []byte) error

	// RecordSimulation records one simulation event and all of its edges
	// (USED, INTRODUCED, APPLIED_RULE, DERIVED_FACT) in a single
	// transaction. Statements and rules are MERGEd by content.
	RecordSimulation(rec SimulationRecord) error

	// GetSimulationHistory returns every simulation recorded against
	// beliefSystemID, oldest first.
	GetSimulationHistory(beliefSystemID string) ([]SimulationRecord, error)
}

// FromAppliedRules converts engine-level applied-rule records (keyed by
// eval.Env) into the persistence layer's plain-map shape.
func FromAppliedRules(rules []engine.AppliedRule) []AppliedRuleRecord {
	out := make([]AppliedRuleRecord, len(rules))
	for i, r := range rules {
		binding := make(map[string]interface{}, len(r.Binding))
		for k, v := range r.Binding {
			binding[k] = v
		}
		out[i] = AppliedRuleRecord{RuleID: r.RuleID, Binding: binding}
	}
	return out
}
