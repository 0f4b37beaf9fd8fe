package lr

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/npillmayer/yalr"
)

// The classic grammar which is LALR(1) but not SLR(1):
//
//	S → L = R | R
//	L → * R | id
//	R → L
func makeAssignGrammar(t *testing.T) *Grammar {
	g, err := NewGrammar("assignments", []Rule{
		{LHS: "S", RHS: []Symbol{"L", "=", "R"}},
		{LHS: "S", RHS: []Symbol{"R"}},
		{LHS: "L", RHS: []Symbol{"*", "R"}},
		{LHS: "L", RHS: []Symbol{"id"}},
		{LHS: "R", RHS: []Symbol{"L"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestSLRTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yalr.lr")
	defer teardown()
	ga := Analysis(makeBDGrammar(t))
	table, err := BuildTable(ga, nil, TableConfig{Variant: SLR1})
	if err != nil {
		t.Fatal(err)
	}
	if table.StateCount == 0 {
		t.Fatalf("no states generated")
	}
	checkTableInvariants(t, ga, table)
	if len(table.Log.SR)+len(table.Log.RR) != 0 {
		t.Errorf("grammar is SLR(1), expected no conflicts, log = %v", table.Log)
	}
}

// Invariants holding for every constructed table: accept entries sit at $
// only, and SLR reduce entries respect FOLLOW(lhs).
func checkTableInvariants(t *testing.T, ga *LRAnalysis, table *Table) {
	t.Helper()
	for key, action := range table.Actions {
		if action.Kind == Accept && key.Sym != EndMark {
			t.Errorf("accept action at terminal %s, must only occur at %s", key.Sym, EndMark)
		}
		if table.Variant == SLR1 && action.Kind == Reduce {
			lhs := ga.Grammar().Rule(action.Arg).LHS
			if !ga.Follow(lhs).Contains(key.Sym) {
				t.Errorf("reduce %d at %s, which is not in FOLLOW(%s)", action.Arg, key.Sym, lhs)
			}
		}
	}
}

func TestSLRConflictOnNonSLRGrammar(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yalr.lr")
	defer teardown()
	ga := Analysis(makeAssignGrammar(t))
	_, err := BuildTable(ga, nil, TableConfig{Variant: SLR1})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected a conflict error in strict mode, got %v", err)
	}
	if conflict.Symbol != "=" {
		t.Errorf("the SLR conflict of this grammar sits at '=', reported at %q", conflict.Symbol)
	}
	table, err := BuildTable(ga, nil, TableConfig{Variant: SLR1, ResolveSilently: true})
	if table == nil {
		t.Fatalf("silent mode should produce a table, error = %v", err)
	}
	if len(table.Log.SR) == 0 {
		t.Errorf("silent mode should have logged the shift/reduce conflict")
	}
	var exceeded *ConflictsExceededError
	if !errors.As(err, &exceeded) {
		t.Errorf("one conflict resolved with expect=0 should warn, got %v", err)
	}
}

func TestLALRTableOnNonSLRGrammar(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yalr.lr")
	defer teardown()
	ga := Analysis(makeAssignGrammar(t))
	table, err := BuildTable(ga, nil, TableConfig{Variant: LALR1})
	if err != nil {
		t.Fatalf("grammar is LALR(1), table construction failed: %v", err)
	}
	checkTableInvariants(t, ga, table)
	if len(table.Log.SR)+len(table.Log.RR) != 0 {
		t.Errorf("grammar is LALR(1), expected no conflicts, log = %v", table.Log)
	}
}

func TestLR1Table(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yalr.lr")
	defer teardown()
	ga := Analysis(makeAssignGrammar(t))
	lr1, err := BuildTable(ga, nil, TableConfig{Variant: LR1})
	if err != nil {
		t.Fatal(err)
	}
	lalr, err := BuildTable(ga, nil, TableConfig{Variant: LALR1})
	if err != nil {
		t.Fatal(err)
	}
	// merging by core can only shrink the state set
	if lalr.StateCount > lr1.StateCount {
		t.Errorf("LALR has %d states, LR(1) only %d", lalr.StateCount, lr1.StateCount)
	}
	checkTableInvariants(t, ga, lr1)
}

func TestReduceReduceConflict(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yalr.lr")
	defer teardown()
	g, err := NewGrammar("rr", []Rule{
		{LHS: "S", RHS: []Symbol{"A"}},
		{LHS: "S", RHS: []Symbol{"B"}},
		{LHS: "A", RHS: []Symbol{"x"}},
		{LHS: "B", RHS: []Symbol{"x"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	ga := Analysis(g)
	table, err := BuildTable(ga, nil, TableConfig{Variant: LALR1, ResolveSilently: true})
	if table == nil {
		t.Fatalf("silent mode should produce a table, error = %v", err)
	}
	var exceeded *ConflictsExceededError
	if !errors.As(err, &exceeded) {
		t.Errorf("expected a conflicts-exceeded warning, got %v", err)
	}
	if len(table.Log.RR) != 1 {
		t.Fatalf("expected exactly one logged rr conflict, log = %+v", table.Log)
	}
	rr := table.Log.RR[0]
	if rr.Sym != EndMark {
		t.Errorf("the rr conflict of this grammar sits at $, reported at %q", rr.Sym)
	}
	action, ok := table.Action(rr.State, rr.Sym)
	if !ok || action.Kind != Reduce || action.Arg != 2 {
		t.Errorf("rr resolution must keep the lower-indexed rule 2, entry is %v", action)
	}
	if _, err = BuildTable(ga, nil, TableConfig{Variant: LALR1}); err == nil {
		t.Errorf("strict mode should fail on the rr conflict")
	}
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Errorf("expected a conflict error, got %v", err)
	}
}

func TestOperatorPrecedenceResolution(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yalr.lr")
	defer teardown()
	g, err := NewGrammar("expressions", []Rule{
		{LHS: "E", RHS: []Symbol{"E", "+", "E"}},
		{LHS: "E", RHS: []Symbol{"E", "*", "E"}},
		{LHS: "E", RHS: []Symbol{"(", "E", ")"}},
		{LHS: "E", RHS: []Symbol{"id"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	ops := yalr.Operators{
		"+": {Prec: 100, Assoc: yalr.AssocLeft},
		"*": {Prec: 200, Assoc: yalr.AssocLeft},
	}
	table, err := BuildTable(Analysis(g), ops, TableConfig{Variant: LALR1, ResolveSilently: true})
	if err != nil {
		t.Fatalf("all conflicts carry operator info, expected a clean build: %v", err)
	}
	if len(table.Log.SR)+len(table.Log.RR) != 0 {
		t.Errorf("operator-resolved conflicts must not be logged, log = %+v", table.Log)
	}
	// find the state reducing E → E * E; on '+' it must reduce (200 > 100),
	// on '*' it must reduce again (left-associative tie)
	timesState := -1
	for key, action := range table.Actions {
		if action.Kind == Reduce && action.Arg == 1 && key.Sym == "+" {
			timesState = key.State
		}
	}
	if timesState < 0 {
		t.Fatalf("no state reduces E → E * E on '+'")
	}
	if action, _ := table.Action(timesState, "*"); action.Kind != Reduce || action.Arg != 1 {
		t.Errorf("left-assoc tie on '*' must reduce, entry is %v", action)
	}
	// the state reducing E → E + E shifts on '*' (100 < 200)
	plusState := -1
	for key, action := range table.Actions {
		if action.Kind == Reduce && action.Arg == 0 && key.Sym == "+" {
			plusState = key.State
		}
	}
	if plusState < 0 {
		t.Fatalf("no state reduces E → E + E on '+'")
	}
	if action, _ := table.Action(plusState, "*"); action.Kind != Shift {
		t.Errorf("lower-precedence reduce must lose against '*', entry is %v", action)
	}
}

func TestExplicitRulePrecedence(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yalr.lr")
	defer teardown()
	// unary minus: the rule's own precedence outranks the operator's
	g, err := NewGrammar("unary", []Rule{
		{LHS: "E", RHS: []Symbol{"E", "-", "E"}},
		{LHS: "E", RHS: []Symbol{"-", "E"}, Prec: &yalr.OpInfo{Prec: 300, Assoc: yalr.AssocRight}},
		{LHS: "E", RHS: []Symbol{"id"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	ops := yalr.Operators{"-": {Prec: 100, Assoc: yalr.AssocLeft}}
	table, err := BuildTable(Analysis(g), ops, TableConfig{Variant: LALR1, ResolveSilently: true})
	if err != nil {
		t.Fatalf("expected a clean build: %v", err)
	}
	// after reducing E → - E, a following '-' must reduce (300 > 100)
	found := false
	for key, action := range table.Actions {
		if action.Kind == Reduce && action.Arg == 1 && key.Sym == "-" {
			found = true
		}
	}
	if !found {
		t.Errorf("unary rule must win against binary '-' via explicit precedence")
	}
}
