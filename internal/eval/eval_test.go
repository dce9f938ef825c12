package eval

import (
	"testing"

	"github.com/logic-fabricator/fabricator/internal/model"
)

func TestEvaluateLeafAgainstFactBase(t *testing.T) {
	facts := SliceFacts{
		model.NewStatement("is", []string{"socrates", "man"}, false),
		model.NewStatement("is", []string{"plato", "man"}, false),
	}
	cond := model.Leaf("is", []string{"?x", "man"}, false)

	envs, err := Evaluate(cond, facts, Env{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if envs.Len() != 2 {
		t.Fatalf("expected 2 bindings, got %d", envs.Len())
	}
}

func TestEvaluateAndConjunction(t *testing.T) {
	facts := SliceFacts{
		model.NewStatement("is", []string{"arthur", "king"}, false),
		model.NewStatement("is", []string{"arthur", "wise"}, false),
		model.NewStatement("is", []string{"lancelot", "king"}, false),
	}
	cond := model.And(
		model.Leaf("is", []string{"?x", "king"}, false),
		model.Leaf("is", []string{"?x", "wise"}, false),
	)

	envs, err := Evaluate(cond, facts, Env{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if envs.Len() != 1 {
		t.Fatalf("expected 1 binding, got %d", envs.Len())
	}
	if envs.Envs()[0]["x"] != "arthur" {
		t.Fatalf("expected x=arthur, got %v", envs.Envs()[0]["x"])
	}
}

func TestEvaluateExistsDoesNotLeakBindings(t *testing.T) {
	facts := SliceFacts{
		model.NewStatement("is", []string{"socrates", "man"}, false),
	}
	cond := model.Exists(model.Leaf("is", []string{"?x", "man"}, false))

	envs, err := Evaluate(cond, facts, Env{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if envs.Len() != 1 {
		t.Fatalf("expected pass-through of the single outer env, got %d", envs.Len())
	}
	if _, bound := envs.Envs()[0]["x"]; bound {
		t.Fatalf("EXISTS must not leak inner bindings")
	}
}

func TestEvaluateExistsAndCountGreaterThanZeroAgree(t *testing.T) {
	facts := SliceFacts{
		model.NewStatement("is", []string{"socrates", "man"}, false),
	}
	child := model.Leaf("is", []string{"?x", "man"}, false)
	existsResult, err := Evaluate(model.Exists(child), facts, Env{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	countResult, err := Evaluate(model.Count(child, model.OpGreater, 0), facts, Env{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if existsResult.Len() != countResult.Len() {
		t.Fatalf("EXISTS and COUNT(>0) must agree: %d vs %d", existsResult.Len(), countResult.Len())
	}
}

func TestEvaluateNoneDuality(t *testing.T) {
	emptyFacts := SliceFacts{}
	child := model.Leaf("is", []string{"?x", "man"}, false)

	noneEnvs, err := Evaluate(model.None(child), emptyFacts, Env{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if noneEnvs.Len() != 1 {
		t.Fatalf("NONE over an empty fact base should hold")
	}

	nonEmptyFacts := SliceFacts{model.NewStatement("is", []string{"socrates", "man"}, false)}
	noneEnvs2, err := Evaluate(model.None(child), nonEmptyFacts, Env{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if noneEnvs2.Len() != 0 {
		t.Fatalf("NONE must fail when the child condition is satisfiable")
	}
}

func TestEvaluateForallVacuousOverEmptyDomain(t *testing.T) {
	facts := SliceFacts{
		model.NewStatement("is", []string{"arthur", "king"}, false),
	}
	cond := model.Forall(
		model.Leaf("is_subject_of", []string{"?y", "?x"}, false),
		model.Leaf("is", []string{"?y", "loyal"}, false),
	)

	envs, err := Evaluate(cond, facts, Env{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if envs.Len() != 1 {
		t.Fatalf("FORALL over an empty domain must hold vacuously")
	}
}

func TestEvaluateForallFailsWhenPropertyUnmet(t *testing.T) {
	facts := SliceFacts{
		model.NewStatement("is_subject_of", []string{"mordred", "arthur"}, false),
	}
	cond := model.Forall(
		model.Leaf("is_subject_of", []string{"?y", "?x"}, false),
		model.Leaf("is", []string{"?y", "loyal"}, false),
	)

	envs, err := Evaluate(cond, facts, Env{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if envs.Len() != 0 {
		t.Fatalf("FORALL must fail when a domain binding doesn't satisfy the property")
	}
}

func TestEvaluateCountOperators(t *testing.T) {
	facts := SliceFacts{
		model.NewStatement("is", []string{"a", "man"}, false),
		model.NewStatement("is", []string{"b", "man"}, false),
		model.NewStatement("is", []string{"c", "man"}, false),
	}
	child := model.Leaf("is", []string{"?x", "man"}, false)

	cases := []struct {
		op   model.CountOp
		val  int
		want bool
	}{
		{model.OpEqual, 3, true},
		{model.OpEqual, 2, false},
		{model.OpGreaterEq, 3, true},
		{model.OpGreater, 3, false},
		{model.OpLess, 4, true},
		{model.OpLessEq, 3, true},
	}
	for _, c := range cases {
		envs, err := Evaluate(model.Count(child, c.op, c.val), facts, Env{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := envs.Len() == 1
		if got != c.want {
			t.Fatalf("op=%s val=%d: expected %v, got %v", c.op, c.val, c.want, got)
		}
	}
}

func TestEvaluateRejectsOr(t *testing.T) {
	cond := model.Or(model.Leaf("a", nil, false), model.Leaf("b", nil, false))
	if _, err := Evaluate(cond, SliceFacts{}, Env{}); err == nil {
		t.Fatalf("expected an error for an un-eliminated OR node")
	}
}

// indexedFacts is a test-only IndexedFacts backed by plain Go slices,
// recording every CandidatesFor call it receives so tests can assert on
// which lookup evalLeaf actually issued rather than just the final result.
type indexedFacts struct {
	all   []model.Statement
	calls []struct {
		verb     string
		negated  bool
		minArity int
		exact    bool
	}
}

func (f *indexedFacts) Facts() []model.Statement { return f.all }

func (f *indexedFacts) CandidatesFor(verb string, negated bool, minArity int, exact bool) []model.Statement {
	f.calls = append(f.calls, struct {
		verb     string
		negated  bool
		minArity int
		exact    bool
	}{verb, negated, minArity, exact})
	var out []model.Statement
	for _, s := range f.all {
		if s.Verb != verb || s.Negated != negated {
			continue
		}
		if exact && len(s.Terms) != minArity {
			continue
		}
		if !exact && len(s.Terms) < minArity {
			continue
		}
		out = append(out, s)
	}
	return out
}

func TestEvaluateLeafUsesIndexedFactsExactArity(t *testing.T) {
	facts := &indexedFacts{all: []model.Statement{
		model.NewStatement("is", []string{"socrates", "man"}, false),
		model.NewStatement("is", []string{"socrates", "mortal", "forever"}, false),
	}}
	cond := model.Leaf("is", []string{"?x", "man"}, false)

	envs, err := Evaluate(cond, facts, Env{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if envs.Len() != 1 {
		t.Fatalf("expected 1 binding, got %d", envs.Len())
	}
	if len(facts.calls) != 1 {
		t.Fatalf("expected evalLeaf to consult the index exactly once, got %d calls", len(facts.calls))
	}
	if call := facts.calls[0]; !call.exact || call.minArity != 2 {
		t.Fatalf("expected an exact arity-2 lookup, got %+v", call)
	}
}

func TestEvaluateLeafWildcardUsesLowerBoundArityLookup(t *testing.T) {
	facts := &indexedFacts{all: []model.Statement{
		model.NewStatement("says", []string{"socrates", "hello", "world"}, false),
	}}
	cond := model.Leaf("says", []string{"?x", "*rest"}, false)

	envs, err := Evaluate(cond, facts, Env{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if envs.Len() != 1 {
		t.Fatalf("expected 1 binding, got %d", envs.Len())
	}
	if call := facts.calls[0]; call.exact || call.minArity != 1 {
		t.Fatalf("expected a lower-bound arity-1 lookup for the wildcard pattern, got %+v", call)
	}
}
