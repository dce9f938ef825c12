package engine

import (
	"testing"

	"github.com/logic-fabricator/fabricator/internal/eval"
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

// Scenario 1 — classical syllogism.
func TestSimulateSyllogism(t *testing.T) {
	rule := mustRule(t,
		model.Leaf("is", []string{"?x", "man"}, false),
		model.StatementConsequence(model.NewStatement("is", []string{"?x", "mortal"}, false)),
	)

	state := NewState()
	result, conflict, err := Simulate(state, []model.Rule{rule}, []model.Statement{
		model.NewStatement("is", []string{"socrates", "man"}, false),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conflict != nil {
		t.Fatalf("unexpected conflict: %+v", conflict)
	}
	if len(result.Derived) != 1 || !result.Derived[0].ContentEqual(model.NewStatement("is", []string{"socrates", "mortal"}, false)) {
		t.Fatalf("expected derived {is socrates mortal}, got %+v", result.Derived)
	}
	if len(result.EffectsApplied) != 0 {
		t.Fatalf("expected no effects")
	}
}

// Scenario 2 — chained inference with dual consequence, and idempotence on
// a second call with the same input.
func TestSimulateChainedDualConsequenceAndIdempotence(t *testing.T) {
	mortalRule := mustRule(t,
		model.Leaf("is", []string{"?x", "man"}, false),
		model.StatementConsequence(model.NewStatement("is", []string{"?x", "mortal"}, false)),
	)
	countRule := mustRule(t,
		model.Leaf("is", []string{"?x", "mortal"}, false),
		model.EffectConsequence(model.Effect{TargetKey: "mortal_count", Operation: model.OpIncrement, Value: 1.0}),
		model.StatementConsequence(model.NewStatement("counted", []string{"?x"}, false)),
	)
	rules := []model.Rule{mortalRule, countRule}

	state := NewState()
	inputs := []model.Statement{model.NewStatement("is", []string{"socrates", "man"}, false)}

	result, conflict, err := Simulate(state, rules, inputs)
	if err != nil || conflict != nil {
		t.Fatalf("unexpected err=%v conflict=%v", err, conflict)
	}
	if len(result.Derived) != 2 {
		t.Fatalf("expected 2 derived facts, got %d: %+v", len(result.Derived), result.Derived)
	}
	if state.World["mortal_count"] != 1.0 {
		t.Fatalf("expected mortal_count=1, got %v", state.World["mortal_count"])
	}

	// Second call, same input: idempotent.
	result2, conflict2, err := Simulate(state, rules, inputs)
	if err != nil || conflict2 != nil {
		t.Fatalf("unexpected err=%v conflict=%v", err, conflict2)
	}
	if len(result2.Derived) != 0 || len(result2.EffectsApplied) != 0 {
		t.Fatalf("expected no additional derived facts or effects, got %+v", result2)
	}
	if state.World["mortal_count"] != 1.0 {
		t.Fatalf("expected mortal_count unchanged at 1, got %v", state.World["mortal_count"])
	}
}

// Scenario 3 — greedy wildcard.
func TestSimulateWildcard(t *testing.T) {
	rule := mustRule(t,
		model.Leaf("says", []string{"?s", "*w"}, false),
		model.StatementConsequence(model.NewStatement("transcript_of", []string{"?w"}, false)),
	)
	state := NewState()
	result, conflict, err := Simulate(state, []model.Rule{rule}, []model.Statement{
		model.NewStatement("says", []string{"ravi", "hello", "world", "how", "are", "you"}, false),
	})
	if err != nil || conflict != nil {
		t.Fatalf("unexpected err=%v conflict=%v", err, conflict)
	}
	if len(result.Derived) != 1 {
		t.Fatalf("expected 1 derived fact, got %d", len(result.Derived))
	}
	want := `["hello","world","how","are","you"]`
	if result.Derived[0].Terms[0] != want {
		t.Fatalf("expected transcript term %s, got %s", want, result.Derived[0].Terms[0])
	}
}

// Scenario 4 — conjunction requiring two separate inputs.
func TestSimulateConjunctionAcrossTwoInputs(t *testing.T) {
	rule := mustRule(t,
		model.And(
			model.Leaf("is", []string{"?x", "king"}, false),
			model.Leaf("is", []string{"?x", "wise"}, false),
		),
		model.StatementConsequence(model.NewStatement("is", []string{"?x", "good_ruler"}, false)),
	)
	state := NewState()

	result1, conflict, err := Simulate(state, []model.Rule{rule}, []model.Statement{
		model.NewStatement("is", []string{"arthur", "king"}, false),
	})
	if err != nil || conflict != nil {
		t.Fatalf("unexpected err=%v conflict=%v", err, conflict)
	}
	if len(result1.Derived) != 0 {
		t.Fatalf("expected no derived facts yet, got %+v", result1.Derived)
	}

	result2, conflict, err := Simulate(state, []model.Rule{rule}, []model.Statement{
		model.NewStatement("is", []string{"arthur", "wise"}, false),
	})
	if err != nil || conflict != nil {
		t.Fatalf("unexpected err=%v conflict=%v", err, conflict)
	}
	if len(result2.Derived) != 1 || !result2.Derived[0].ContentEqual(model.NewStatement("is", []string{"arthur", "good_ruler"}, false)) {
		t.Fatalf("expected {is arthur good_ruler}, got %+v", result2.Derived)
	}
}

// Scenario 7 — FORALL over an empty domain is vacuously true. The leading
// leaf binds ?x; the FORALL then holds with no subjects at all.
func TestSimulateForallVacuousTruth(t *testing.T) {
	rule := mustRule(t,
		model.And(
			model.Leaf("is", []string{"?x", "king"}, false),
			model.Forall(
				model.Leaf("is_subject_of", []string{"?y", "?x"}, false),
				model.Leaf("is", []string{"?y", "loyal"}, false),
			),
		),
		model.StatementConsequence(model.NewStatement("is", []string{"?x", "happy_king"}, false)),
	)
	state := NewState()
	result, conflict, err := Simulate(state, []model.Rule{rule}, []model.Statement{
		model.NewStatement("is", []string{"arthur", "king"}, false),
	})
	if err != nil || conflict != nil {
		t.Fatalf("unexpected err=%v conflict=%v", err, conflict)
	}
	found := false
	for _, d := range result.Derived {
		if d.ContentEqual(model.NewStatement("is", []string{"arthur", "happy_king"}, false)) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected {is arthur happy_king} to be derived vacuously, got %+v", result.Derived)
	}
}

func TestSimulateStatementContradictionAborts(t *testing.T) {
	state := NewState()
	state.Add(model.NewStatement("is", []string{"sky", "blue"}, false))

	result, conflict, err := Simulate(state, nil, []model.Statement{
		model.NewStatement("is", []string{"sky", "blue"}, true),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conflict == nil {
		t.Fatalf("expected a conflict")
	}
	if !conflict.Existing.ContentEqual(model.NewStatement("is", []string{"sky", "blue"}, false)) {
		t.Fatalf("unexpected existing statement: %+v", conflict.Existing)
	}
	if len(result.Introduced) != 0 {
		t.Fatalf("contradicting input must not be introduced")
	}
}

func TestSimulateRejectsNonGroundConsequence(t *testing.T) {
	// ?z never appears in the condition, so instantiation can't ground it.
	rule := mustRule(t,
		model.Leaf("is", []string{"?x", "man"}, false),
		model.StatementConsequence(model.NewStatement("is", []string{"?z", "mortal"}, false)),
	)
	state := NewState()
	_, _, err := Simulate(state, []model.Rule{rule}, []model.Statement{
		model.NewStatement("is", []string{"socrates", "man"}, false),
	})
	if err == nil {
		t.Fatalf("expected an error for a consequence variable the condition never binds")
	}
}

func TestMemoKeyDependsOnBindingEnv(t *testing.T) {
	e1 := eval.Env{"x": "a"}
	e2 := eval.Env{"x": "b"}
	if memoKey("r1", e1) == memoKey("r1", e2) {
		t.Fatalf("expected distinct memo keys for distinct bindings")
	}
}
