package scanner

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/npillmayer/yalr"
)

func makeScanner(t *testing.T) *Scanner {
	s, err := New([]LexRule{
		{Pattern: "( |\t|\n)+", Kind: ""}, // whitespace is dropped
		{Pattern: "[0-9]+", Kind: "number"},
		{Pattern: "[a-z]+", Kind: "id"},
		{Pattern: "\\+", Kind: "+", Op: &yalr.OpInfo{Prec: 100, Assoc: yalr.AssocLeft}},
		{Pattern: "\\*", Kind: "*", Op: &yalr.OpInfo{Prec: 200, Assoc: yalr.AssocLeft}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestScanTokens(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yalr.scanner")
	defer teardown()
	s := makeScanner(t)
	tokens, err := s.Scan("ab + 12 * cd")
	if err != nil {
		t.Fatal(err)
	}
	want := []yalr.Token{
		{Kind: "id", Value: "ab"},
		{Kind: "+", Value: "+"},
		{Kind: "number", Value: "12"},
		{Kind: "*", Value: "*"},
		{Kind: "id", Value: "cd"},
	}
	if len(tokens) != len(want) {
		t.Fatalf("scanned %d tokens, want %d: %v", len(tokens), len(want), tokens)
	}
	for i, tok := range tokens {
		if tok != want[i] {
			t.Errorf("token #%d is %v, want %v", i, tok, want[i])
		}
	}
}

func TestScanOperators(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yalr.scanner")
	defer teardown()
	s := makeScanner(t)
	ops := s.Operators()
	if op, ok := ops["+"]; !ok || op.Prec != 100 || op.Assoc != yalr.AssocLeft {
		t.Errorf("operator table entry for '+' is %v", op)
	}
	if op, ok := ops["*"]; !ok || op.Prec != 200 {
		t.Errorf("operator table entry for '*' is %v", op)
	}
	if _, ok := ops["id"]; ok {
		t.Errorf("'id' carries no operator info but is in the table")
	}
}

func TestScanUnknownInput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yalr.scanner")
	defer teardown()
	s := makeScanner(t)
	tokens, err := s.Scan("ab ? cd")
	if err != nil {
		t.Fatal(err)
	}
	kinds := make([]string, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.Kind
	}
	if len(kinds) != 3 || kinds[0] != "id" || kinds[1] != yalr.UnknownTok || kinds[2] != "id" {
		t.Errorf("expected [id @UNK id], scanned %v", kinds)
	}
}

func TestScanMalformedPattern(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yalr.scanner")
	defer teardown()
	_, err := New([]LexRule{
		{Pattern: "[a-z", Kind: "broken"},
	})
	var lexErr *LexicalRuleError
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected a lexical rule error, got %v", err)
	}
	if lexErr.RuleNo != 1 {
		t.Errorf("error should point at rule 1, points at %d", lexErr.RuleNo)
	}
}

func TestScanLongestMatchWins(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yalr.scanner")
	defer teardown()
	s, err := New([]LexRule{
		{Pattern: "( |\t)+", Kind: ""},
		{Pattern: "for", Kind: "kwd"},
		{Pattern: "[a-z]+", Kind: "id"},
	})
	if err != nil {
		t.Fatal(err)
	}
	tokens, err := s.Scan("for forest")
	if err != nil {
		t.Fatal(err)
	}
	if len(tokens) != 2 || tokens[0].Kind != "kwd" || tokens[1].Kind != "id" {
		t.Errorf("expected [kwd id], scanned %v", tokens)
	}
	if tokens[1].Value != "forest" {
		t.Errorf("longest match should win, got %v", tokens[1])
	}
}
