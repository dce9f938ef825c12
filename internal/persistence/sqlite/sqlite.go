// Package sqlite is the reference DatabaseAdapter: the canonical-node
// graph schema (BeliefSystem, Rule, Statement, Simulation nodes;
// CONTAINS, FORKED_FROM, USED, INTRODUCED, APPLIED_RULE, DERIVED_FACT
// edges) stored as relational tables. The pure-Go modernc.org/sqlite
// driver keeps the adapter free of any cgo/C-toolchain requirement.
package sqlite

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/logic-fabricator/fabricator/internal/logging"
	"github.com/logic-fabricator/fabricator/internal/model"
	"github.com/logic-fabricator/fabricator/internal/persistence"
)

var tracer = logging.Get(logging.CategoryPersistence)

const schema = `
CREATE TABLE IF NOT EXISTS belief_systems (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	strategy TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	parent_id TEXT
);

CREATE TABLE IF NOT EXISTS rules (
	id TEXT PRIMARY KEY,
	condition_json TEXT NOT NULL,
	consequences_json TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS belief_system_rules (
	belief_system_id TEXT NOT NULL,
	rule_id TEXT NOT NULL,
	PRIMARY KEY (belief_system_id, rule_id)
);

CREATE TABLE IF NOT EXISTS statements (
	id TEXT PRIMARY KEY,
	verb TEXT NOT NULL,
	terms_json TEXT NOT NULL,
	negated INTEGER NOT NULL,
	priority INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS simulations (
	id TEXT PRIMARY KEY,
	belief_system_id TEXT NOT NULL,
	timestamp DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS simulation_introduced (
	simulation_id TEXT NOT NULL,
	statement_id TEXT NOT NULL,
	PRIMARY KEY (simulation_id, statement_id)
);

CREATE TABLE IF NOT EXISTS simulation_applied_rules (
	simulation_id TEXT NOT NULL,
	rule_id TEXT NOT NULL,
	binding_json TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS simulation_derived (
	simulation_id TEXT NOT NULL,
	statement_id TEXT NOT NULL,
	PRIMARY KEY (simulation_id, statement_id)
);
`

// Adapter is the sqlite-backed DatabaseAdapter.
type Adapter struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (creating if necessary) a sqlite database at path and ensures
// the schema exists.
func Open(path string) (*Adapter, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Adapter{db: db}, nil
}

// Close releases the underlying database handle.
func (a *Adapter) Close() error {
	return a.db.Close()
}

func statementID(s model.Statement) string {
	sum := sha256.Sum256([]byte(s.ContentKey()))
	return hex.EncodeToString(sum[:])
}

// CreateBeliefSystem implements persistence.DatabaseAdapter.
func (a *Adapter) CreateBeliefSystem(id, name, strategy string, createdAt time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, err := a.db.Exec(
		`INSERT INTO belief_systems (id, name, strategy, created_at, parent_id) VALUES (?, ?, ?, ?, NULL)`,
		id, name, strategy, createdAt,
	)
	if err != nil {
		return fmt.Errorf("create belief system %s: %w", id, err)
	}
	tracer.Trace("created belief system %s (%s)", id, name)
	return nil
}

// ForkBeliefSystem implements persistence.DatabaseAdapter, also emitting the
// FORKED_FROM edge via the parent_id column.
func (a *Adapter) ForkBeliefSystem(parentID, childID, name, strategy string, createdAt time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("begin fork transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO belief_systems (id, name, strategy, created_at, parent_id) VALUES (?, ?, ?, ?, ?)`,
		childID, name, strategy, createdAt, parentID,
	); err != nil {
		return fmt.Errorf("insert forked belief system %s: %w", childID, err)
	}
	if _, err := tx.Exec(
		`INSERT INTO belief_system_rules (belief_system_id, rule_id)
		 SELECT ?, rule_id FROM belief_system_rules WHERE belief_system_id = ?`,
		childID, parentID,
	); err != nil {
		return fmt.Errorf("copying parent rules to fork %s: %w", childID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit fork transaction: %w", err)
	}
	tracer.Trace("forked belief system %s -> %s", parentID, childID)
	return nil
}

// AddRule implements persistence.DatabaseAdapter with MERGE-by-content
// semantics: the rules table is keyed by ruleID (already a content hash),
// so INSERT OR IGNORE makes repeated adds of the same rule a no-op.
func (a *Adapter) AddRule(beliefSystemID, ruleID string, conditionJSON, consequencesJSON []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("begin add-rule transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT OR IGNORE INTO rules (id, condition_json, consequences_json) VALUES (?, ?, ?)`,
		ruleID, string(conditionJSON), string(consequencesJSON),
	); err != nil {
		return fmt.Errorf("merge rule %s: %w", ruleID, err)
	}
	if _, err := tx.Exec(
		`INSERT OR IGNORE INTO belief_system_rules (belief_system_id, rule_id) VALUES (?, ?)`,
		beliefSystemID, ruleID,
	); err != nil {
		return fmt.Errorf("link rule %s to belief system %s: %w", ruleID, beliefSystemID, err)
	}
	return tx.Commit()
}

func mergeStatement(tx *sql.Tx, s model.Statement) (string, error) {
	id := statementID(s)
	termsJSON, err := json.Marshal(s.Terms)
	if err != nil {
		return "", fmt.Errorf("marshal statement terms: %w", err)
	}
	negated := 0
	if s.Negated {
		negated = 1
	}
	_, err = tx.Exec(
		`INSERT OR IGNORE INTO statements (id, verb, terms_json, negated, priority) VALUES (?, ?, ?, ?, ?)`,
		id, s.Verb, string(termsJSON), negated, s.Priority,
	)
	if err != nil {
		return "", fmt.Errorf("merge statement %s: %w", s.ContentKey(), err)
	}
	return id, nil
}

// RecordSimulation implements persistence.DatabaseAdapter in a single
// transaction, MERGEing every statement it references by content.
func (a *Adapter) RecordSimulation(rec persistence.SimulationRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("begin record-simulation transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO simulations (id, belief_system_id, timestamp) VALUES (?, ?, ?)`,
		rec.ID, rec.BeliefSystemID, rec.Timestamp,
	); err != nil {
		return fmt.Errorf("insert simulation %s: %w", rec.ID, err)
	}

	for _, s := range rec.Introduced {
		sid, err := mergeStatement(tx, s)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO simulation_introduced (simulation_id, statement_id) VALUES (?, ?)`,
			rec.ID, sid,
		); err != nil {
			return fmt.Errorf("link introduced statement: %w", err)
		}
	}

	for _, s := range rec.Derived {
		sid, err := mergeStatement(tx, s)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO simulation_derived (simulation_id, statement_id) VALUES (?, ?)`,
			rec.ID, sid,
		); err != nil {
			return fmt.Errorf("link derived statement: %w", err)
		}
	}

	for _, ar := range rec.AppliedRules {
		bindingJSON, err := json.Marshal(ar.Binding)
		if err != nil {
			return fmt.Errorf("marshal applied-rule binding: %w", err)
		}
		if _, err := tx.Exec(
			`INSERT INTO simulation_applied_rules (simulation_id, rule_id, binding_json) VALUES (?, ?, ?)`,
			rec.ID, ar.RuleID, string(bindingJSON),
		); err != nil {
			return fmt.Errorf("link applied rule %s: %w", ar.RuleID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record-simulation transaction: %w", err)
	}
	tracer.Trace("recorded simulation %s for belief system %s (%d introduced, %d derived, %d rules fired)",
		rec.ID, rec.BeliefSystemID, len(rec.Introduced), len(rec.Derived), len(rec.AppliedRules))
	return nil
}

// GetSimulationHistory implements persistence.DatabaseAdapter.
func (a *Adapter) GetSimulationHistory(beliefSystemID string) ([]persistence.SimulationRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rows, err := a.db.Query(
		`SELECT id, timestamp FROM simulations WHERE belief_system_id = ? ORDER BY timestamp ASC`,
		beliefSystemID,
	)
	if err != nil {
		return nil, fmt.Errorf("query simulation history for %s: %w", beliefSystemID, err)
	}
	defer rows.Close()

	var records []persistence.SimulationRecord
	for rows.Next() {
		var rec persistence.SimulationRecord
		rec.BeliefSystemID = beliefSystemID
		if err := rows.Scan(&rec.ID, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan simulation row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate simulation rows: %w", err)
	}

	for i := range records {
		if err := a.hydrateSimulation(&records[i]); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (a *Adapter) hydrateSimulation(rec *persistence.SimulationRecord) error {
	introduced, err := a.statementsFor(
		`SELECT s.verb, s.terms_json, s.negated, s.priority
		 FROM simulation_introduced si JOIN statements s ON s.id = si.statement_id
		 WHERE si.simulation_id = ?`, rec.ID)
	if err != nil {
		return fmt.Errorf("hydrate introduced statements for %s: %w", rec.ID, err)
	}
	rec.Introduced = introduced

	derived, err := a.statementsFor(
		`SELECT s.verb, s.terms_json, s.negated, s.priority
		 FROM simulation_derived sd JOIN statements s ON s.id = sd.statement_id
		 WHERE sd.simulation_id = ?`, rec.ID)
	if err != nil {
		return fmt.Errorf("hydrate derived statements for %s: %w", rec.ID, err)
	}
	rec.Derived = derived

	rows, err := a.db.Query(
		`SELECT rule_id, binding_json FROM simulation_applied_rules WHERE simulation_id = ?`, rec.ID)
	if err != nil {
		return fmt.Errorf("query applied rules for %s: %w", rec.ID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var ruleID, bindingJSON string
		if err := rows.Scan(&ruleID, &bindingJSON); err != nil {
			return fmt.Errorf("scan applied rule row: %w", err)
		}
		var binding map[string]interface{}
		if err := json.Unmarshal([]byte(bindingJSON), &binding); err != nil {
			return fmt.Errorf("unmarshal applied-rule binding: %w", err)
		}
		rec.AppliedRules = append(rec.AppliedRules, persistence.AppliedRuleRecord{RuleID: ruleID, Binding: binding})
	}
	return rows.Err()
}

func (a *Adapter) statementsFor(query string, simulationID string) ([]model.Statement, error) {
	rows, err := a.db.Query(query, simulationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Statement
	for rows.Next() {
		var verb, termsJSON string
		var negated, priority int
		if err := rows.Scan(&verb, &termsJSON, &negated, &priority); err != nil {
			return nil, err
		}
		var terms []string
		if err := json.Unmarshal([]byte(termsJSON), &terms); err != nil {
			return nil, fmt.Errorf("unmarshal statement terms: %w", err)
		}
		out = append(out, model.Statement{Verb: verb, Terms: terms, Negated: negated != 0, Priority: priority})
	}
	return out, rows.Err()
}
