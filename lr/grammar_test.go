package lr

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// A small grammar with epsilon-productions, used throughout the analysis
// tests:
//
//	S → A a
//	A → B D
//	B → b | ε
//	D → d | ε
func makeBDGrammar(t *testing.T) *Grammar {
	g, err := NewGrammar("G", []Rule{
		{LHS: "S", RHS: []Symbol{"A", "a"}},
		{LHS: "A", RHS: []Symbol{"B", "D"}},
		{LHS: "B", RHS: []Symbol{"b"}},
		{LHS: "B", RHS: []Symbol{}},
		{LHS: "D", RHS: []Symbol{"d"}},
		{LHS: "D", RHS: []Symbol{}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func symset(syms ...Symbol) map[Symbol]bool {
	m := make(map[Symbol]bool)
	for _, s := range syms {
		m[s] = true
	}
	return m
}

func expectSet(t *testing.T, name string, got interface{ Values() []interface{} }, want map[Symbol]bool) {
	t.Helper()
	vals := got.Values()
	if len(vals) != len(want) {
		t.Errorf("%s = %v, want %v", name, vals, want)
		return
	}
	for _, v := range vals {
		if !want[v.(Symbol)] {
			t.Errorf("%s contains unexpected %v", name, v)
		}
	}
}

func TestGrammarBasics(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yalr.lr")
	defer teardown()
	g := makeBDGrammar(t)
	if g.Size() != 7 {
		t.Errorf("expected 7 rules including the augmented one, got %d", g.Size())
	}
	aug := g.Rule(g.Size() - 1)
	if aug.LHS != AugmentedStart || len(aug.RHS) != 1 || aug.RHS[0] != g.Start() {
		t.Errorf("augmented rule is %v", aug)
	}
	if g.Start() != "S" {
		t.Errorf("start symbol is %s", g.Start())
	}
	for _, term := range []Symbol{"a", "b", "d", EndMark, DummyMark} {
		if !g.IsTerminal(term) {
			t.Errorf("%s should be a terminal", term)
		}
	}
	for _, nt := range []Symbol{"S", "A", "B", "D", AugmentedStart} {
		if !g.IsNonTerminal(nt) {
			t.Errorf("%s should be a nonterminal", nt)
		}
	}
	if len(g.RulesFor("B")) != 2 {
		t.Errorf("B should have 2 rules, has %d", len(g.RulesFor("B")))
	}
}

func TestGrammarRejectsReservedSymbols(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yalr.lr")
	defer teardown()
	_, err := NewGrammar("bad", []Rule{
		{LHS: "S", RHS: []Symbol{AugmentedStart}},
	})
	if err == nil {
		t.Errorf("reserved symbol on a rhs should be rejected")
	}
	_, err = NewGrammar("bad", []Rule{
		{LHS: EndMark, RHS: []Symbol{"a"}},
	})
	if err == nil {
		t.Errorf("reserved symbol as lhs should be rejected")
	}
}

func TestNullable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yalr.lr")
	defer teardown()
	ga := Analysis(makeBDGrammar(t))
	for sym, want := range map[Symbol]bool{
		"S": false, "A": true, "B": true, "D": true, "a": false, "b": false,
	} {
		if ga.Nullable(sym) != want {
			t.Errorf("nullable(%s) = %v, want %v", sym, !want, want)
		}
	}
}

func TestFirst(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yalr.lr")
	defer teardown()
	ga := Analysis(makeBDGrammar(t))
	expectSet(t, "FIRST(S)", ga.First("S"), symset("a", "b", "d"))
	expectSet(t, "FIRST(A)", ga.First("A"), symset("b", "d"))
	expectSet(t, "FIRST(B)", ga.First("B"), symset("b"))
	first, nullable := ga.FirstOfSeq([]Symbol{"B", "D", "a"})
	expectSet(t, "FIRST(B D a)", first, symset("b", "d", "a"))
	if nullable {
		t.Errorf("sequence B D a should not be nullable")
	}
	_, nullable = ga.FirstOfSeq([]Symbol{"B", "D"})
	if !nullable {
		t.Errorf("sequence B D should be nullable")
	}
}

// FIRST must converge on cyclic (left-recursive) dependencies.
func TestFirstWithCycle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yalr.lr")
	defer teardown()
	g, err := NewGrammar("cyclic", []Rule{
		{LHS: "E", RHS: []Symbol{"E", "+", "T"}},
		{LHS: "E", RHS: []Symbol{"T"}},
		{LHS: "T", RHS: []Symbol{"T", "*", "F"}},
		{LHS: "T", RHS: []Symbol{"F"}},
		{LHS: "F", RHS: []Symbol{"(", "E", ")"}},
		{LHS: "F", RHS: []Symbol{"id"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	ga := Analysis(g)
	expectSet(t, "FIRST(E)", ga.First("E"), symset("(", "id"))
	expectSet(t, "FIRST(T)", ga.First("T"), symset("(", "id"))
	expectSet(t, "FIRST(F)", ga.First("F"), symset("(", "id"))
	expectSet(t, "FOLLOW(E)", ga.Follow("E"), symset("+", ")", EndMark))
	expectSet(t, "FOLLOW(T)", ga.Follow("T"), symset("+", "*", ")", EndMark))
}

func TestFollow(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yalr.lr")
	defer teardown()
	ga := Analysis(makeBDGrammar(t))
	expectSet(t, "FOLLOW(S)", ga.Follow("S"), symset(EndMark))
	expectSet(t, "FOLLOW(A)", ga.Follow("A"), symset("a"))
	expectSet(t, "FOLLOW(B)", ga.Follow("B"), symset("d", "a"))
	expectSet(t, "FOLLOW(D)", ga.Follow("D"), symset("a"))
}

// FOLLOW propagation must reach every trailing-nullable occurrence of a
// nonterminal, not only the last rhs symbol. With only last-symbol
// propagation, FOLLOW(C) comes out as {i, n}.
func TestFollowTrailingNullable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yalr.lr")
	defer teardown()
	g, err := NewGrammar("tricky", []Rule{
		{LHS: "S", RHS: []Symbol{"B", "C", "D", "A"}},
		{LHS: "A", RHS: []Symbol{"n", "A"}},
		{LHS: "A", RHS: []Symbol{}},
		{LHS: "B", RHS: []Symbol{"t"}},
		{LHS: "C", RHS: []Symbol{"b", "D", "e"}},
		{LHS: "C", RHS: []Symbol{}},
		{LHS: "D", RHS: []Symbol{"i", "E"}},
		{LHS: "D", RHS: []Symbol{}},
		{LHS: "E", RHS: []Symbol{"S", "f"}},
		{LHS: "E", RHS: []Symbol{"p"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	ga := Analysis(g)
	expectSet(t, "FOLLOW(C)", ga.Follow("C"), symset("i", "n", EndMark, "f"))
	expectSet(t, "FOLLOW(S)", ga.Follow("S"), symset(EndMark, "f"))
}

func TestCloseNT(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yalr.lr")
	defer teardown()
	ga := Analysis(makeBDGrammar(t))
	targets := symset()
	for _, nt := range ga.CloseNT("S") {
		targets[nt] = true
	}
	// S ⇒ A a ⇒ B D a, and D is front-derivable through nullable B
	for _, want := range []Symbol{"S", "A", "B", "D"} {
		if !targets[want] {
			t.Errorf("CloseNT(S) should contain %s, has %v", want, ga.CloseNT("S"))
		}
	}
	ctxs := ga.DerivContexts("S", "A")
	if ctxs == nil || ctxs.Empty() {
		t.Fatalf("no derivation contexts for S ⇒* A γ")
	}
	found := false
	for _, v := range ctxs.Values() {
		ctx := v.(*DerivContext)
		if !ctx.Nullable && ctx.First.Contains(Symbol("a")) {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a context with FIRST(γ) ∋ a for S ⇒ A a")
	}
}

func TestDeriveTer(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yalr.lr")
	defer teardown()
	ga := Analysis(makeBDGrammar(t))
	// all terminals reachable at the front of a derivation of S
	expectSet(t, "DeriveTer(S)", ga.DeriveTer("S"), symset("a", "b", "d"))
	expectSet(t, "DeriveTer(B)", ga.DeriveTer("B"), symset("b"))
	expectSet(t, "DeriveTer(b)", ga.DeriveTer("b"), symset("b"))
}
