package belief

import (
	"testing"

	"github.com/logic-fabricator/fabricator/internal/fork"
	"github.com/logic-fabricator/fabricator/internal/model"
)

func mustRule(t *testing.T, cond *model.Condition, consequences ...model.Consequence) model.Rule {
	t.Helper()
	r, err := model.NewRule(cond, consequences)
	if err != nil {
		t.Fatalf("NewRule: %v", err)
	}
	return r
}

func TestAddRuleRejectsDuplicate(t *testing.T) {
	bs, err := New("b", fork.Coexist)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rule := mustRule(t,
		model.Leaf("is", []string{"?x", "man"}, false),
		model.StatementConsequence(model.NewStatement("is", []string{"?x", "mortal"}, false)),
	)
	if err := bs.AddRule(rule); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := bs.AddRule(rule); err == nil {
		t.Fatalf("expected error adding content-equal rule twice")
	}
}

// Scenario 5 — contradiction under coexist forks; parent is left untouched
// and the child holds both statements.
func TestSimulateCoexistForks(t *testing.T) {
	bs, err := New("b", fork.Coexist)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := bs.Simulate([]model.Statement{model.NewStatement("is", []string{"sky", "blue"}, false)}); err != nil {
		t.Fatalf("seed simulate: %v", err)
	}

	result, err := bs.Simulate([]model.Statement{model.NewStatement("is", []string{"sky", "blue"}, true)})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if len(result.Contradictions) != 1 {
		t.Fatalf("expected 1 contradiction, got %d", len(result.Contradictions))
	}
	if len(result.ForkedBeliefs) != 1 {
		t.Fatalf("expected 1 forked belief, got %d", len(result.ForkedBeliefs))
	}

	child := result.ForkedBeliefs[0]
	stmts := child.Statements()
	hasTrue, hasFalse := false, false
	for _, s := range stmts {
		if s.ContentEqual(model.NewStatement("is", []string{"sky", "blue"}, false)) {
			hasTrue = true
		}
		if s.ContentEqual(model.NewStatement("is", []string{"sky", "blue"}, true)) {
			hasFalse = true
		}
	}
	if !hasTrue || !hasFalse {
		t.Fatalf("expected child to contain both polarity statements, got %+v", stmts)
	}

	// Parent must be untouched: still has only the original fact.
	parentStmts := bs.Statements()
	if len(parentStmts) != 1 || !parentStmts[0].ContentEqual(model.NewStatement("is", []string{"sky", "blue"}, false)) {
		t.Fatalf("expected parent untouched with 1 fact, got %+v", parentStmts)
	}
}

// Scenario 6 — contradiction under preserve rejects the new statement and
// never forks.
func TestSimulatePreserveRejects(t *testing.T) {
	bs, err := New("b", fork.Preserve)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := bs.Simulate([]model.Statement{model.NewStatement("is", []string{"sky", "blue"}, false)}); err != nil {
		t.Fatalf("seed simulate: %v", err)
	}

	before := len(bs.Statements())
	result, err := bs.Simulate([]model.Statement{model.NewStatement("is", []string{"sky", "blue"}, true)})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if len(result.ForkedBeliefs) != 0 {
		t.Fatalf("expected no forks under preserve, got %d", len(result.ForkedBeliefs))
	}
	if len(result.Contradictions) != 1 {
		t.Fatalf("expected contradiction recorded, got %d", len(result.Contradictions))
	}
	if len(bs.Statements()) != before {
		t.Fatalf("preserve must not grow the fact base, before=%d after=%d", before, len(bs.Statements()))
	}
}

func TestSimulatePrioritizeNewOrdersPriorities(t *testing.T) {
	bs, err := New("b", fork.PrioritizeNew)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := bs.Simulate([]model.Statement{model.NewStatement("is", []string{"sky", "blue"}, false)}); err != nil {
		t.Fatalf("seed simulate: %v", err)
	}
	result, err := bs.Simulate([]model.Statement{model.NewStatement("is", []string{"sky", "blue"}, true)})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	child := result.ForkedBeliefs[0]
	var existingP, newP int
	for _, s := range child.Statements() {
		if s.ContentEqual(model.NewStatement("is", []string{"sky", "blue"}, false)) {
			existingP = s.Priority
		}
		if s.ContentEqual(model.NewStatement("is", []string{"sky", "blue"}, true)) {
			newP = s.Priority
		}
	}
	if existingP >= newP {
		t.Fatalf("expected existing priority below new priority under prioritize_new, got existing=%d new=%d", existingP, newP)
	}
}

func TestSimulateIdempotentOnReplay(t *testing.T) {
	bs, err := New("b", fork.Coexist)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rule := mustRule(t,
		model.Leaf("is", []string{"?x", "man"}, false),
		model.StatementConsequence(model.NewStatement("is", []string{"?x", "mortal"}, false)),
	)
	if err := bs.AddRule(rule); err != nil {
		t.Fatalf("AddRule: %v", err)
	}
	inputs := []model.Statement{model.NewStatement("is", []string{"socrates", "man"}, false)}

	r1, err := bs.Simulate(inputs)
	if err != nil {
		t.Fatalf("Simulate 1: %v", err)
	}
	if len(r1.Derived) != 1 {
		t.Fatalf("expected 1 derived fact, got %d", len(r1.Derived))
	}

	r2, err := bs.Simulate(inputs)
	if err != nil {
		t.Fatalf("Simulate 2: %v", err)
	}
	if len(r2.Derived) != 0 || len(r2.Introduced) != 0 {
		t.Fatalf("expected no new facts on replay, got %+v", r2)
	}
}

func TestSimulateRejectsNonGroundInput(t *testing.T) {
	bs, err := New("b", fork.Coexist)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := bs.Simulate([]model.Statement{model.NewStatement("is", []string{"?x", "man"}, false)}); err == nil {
		t.Fatalf("expected error for non-ground input")
	}
}
