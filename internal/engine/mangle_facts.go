package engine

import (
	"github.com/google/mangle/ast"
	"github.com/google/mangle/factstore"

	"github.com/logic-fabricator/fabricator/internal/model"
)

// negatedPrefix distinguishes a negated statement's Mangle predicate
// symbol from its affirmative counterpart: the fact store itself only
// ever holds positive atoms, so negation is folded into the symbol rather
// than carried as a separate argument. A rule author naming a verb that
// happens to collide with this prefix would see their facts indexed
// alongside a negated statement's; the IR translator is expected to keep
// verbs to plain domain vocabulary.
const negatedPrefix = "not$"

func mangleSymbol(verb string, negated bool) string {
	if negated {
		return negatedPrefix + verb
	}
	return verb
}

// statementToAtom renders a ground statement as the Mangle atom stored in
// State's fact-store index: the predicate symbol folds in negation, and
// each term becomes a Mangle string constant.
func statementToAtom(stmt model.Statement) ast.Atom {
	terms := make([]ast.BaseTerm, len(stmt.Terms))
	for i, t := range stmt.Terms {
		terms[i] = ast.String(t)
	}
	return ast.NewAtom(mangleSymbol(stmt.Verb, stmt.Negated), terms...)
}

// atomToStatement reconstructs the statement a stored atom was built
// from. verb/negated are supplied by the caller (the query that produced
// atom already knows them) rather than decoded from the symbol, since
// decoding would need to re-strip negatedPrefix; priority is not part of
// the atom's identity and is never reconstructed here — callers that need
// it already hold the canonical copy in State.facts.
func atomToStatement(atom ast.Atom, verb string, negated bool) model.Statement {
	terms := make([]string, len(atom.Args))
	for i, arg := range atom.Args {
		if c, ok := arg.(ast.Constant); ok {
			terms[i] = c.Symbol
		}
	}
	return model.Statement{Verb: verb, Terms: terms, Negated: negated}
}

// mangleFactIndex wraps a Mangle in-memory fact store as the predicate
// index backing State.CandidatesFor.
type mangleFactIndex struct {
	store factstore.FactStore
}

func newMangleFactIndex() mangleFactIndex {
	return mangleFactIndex{store: factstore.NewSimpleInMemoryStore()}
}

func (m mangleFactIndex) add(stmt model.Statement) {
	m.store.Add(statementToAtom(stmt))
}

// candidatesFor returns every stored statement under (verb, negated)
// whose arity is minArity (exact) or at least minArity (!exact),
// retrieved through Mangle's own predicate-symbol/arity index rather than
// a linear scan of the whole fact base.
func (m mangleFactIndex) candidatesFor(verb string, negated bool, minArity int, exact bool) []model.Statement {
	sym := mangleSymbol(verb, negated)
	var out []model.Statement
	collect := func(pred ast.PredicateSym) {
		_ = m.store.GetFacts(ast.NewQuery(pred), func(a ast.Atom) error {
			out = append(out, atomToStatement(a, verb, negated))
			return nil
		})
	}
	if exact {
		collect(ast.PredicateSym{Symbol: sym, Arity: minArity})
		return out
	}
	for _, pred := range m.store.ListPredicates() {
		if pred.Symbol == sym && pred.Arity >= minArity {
			collect(pred)
		}
	}
	return out
}
