package lr

import (
	"bytes"
	"fmt"

	"github.com/npillmayer/yalr"
)

// Symbol is a grammar symbol, terminal or nonterminal. Symbols are atomic
// string-like identifiers; whether a symbol is a terminal is a property of
// the grammar it occurs in.
type Symbol string

// Reserved symbols. Clients must not use them in their own rules.
const (
	EndMark        Symbol = "$"  // end-of-input sentinel terminal
	DummyMark      Symbol = "#"  // lookahead propagation marker, LALR only
	AugmentedStart Symbol = "@S" // lhs of the appended start rule
)

// SemRule is a semantic action. It receives the values of the right-hand
// side symbols of a reduction, in original left-to-right order, together
// with the computational context of the parse, and produces the value of
// the left-hand side.
type SemRule func(args []interface{}, ctx yalr.Context) (interface{}, error)

// DefaultSemRule passes through the value of the first right-hand side
// symbol. It is attached to every rule without an explicit action.
func DefaultSemRule(args []interface{}, ctx yalr.Context) (interface{}, error) {
	if len(args) == 0 {
		return nil, nil
	}
	return args[0], nil
}

// EmptySemRule produces no value. It is the natural action for
// epsilon-productions.
func EmptySemRule(args []interface{}, ctx yalr.Context) (interface{}, error) {
	return nil, nil
}

// Rule is a grammar production. An empty RHS denotes an epsilon-production.
// Prec, if set, overrides the rule precedence otherwise inherited from the
// rightmost operator terminal of the RHS.
type Rule struct {
	Serial int // index of this rule within its grammar
	LHS    Symbol
	RHS    []Symbol
	Sem    SemRule
	Prec   *yalr.OpInfo
}

// IsEpsilon is true for productions with an empty right-hand side.
func (r *Rule) IsEpsilon() bool {
	return len(r.RHS) == 0
}

func (r *Rule) String() string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%d: [%s] ::= [", r.Serial, r.LHS)
	for i, sym := range r.RHS {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(string(sym))
	}
	b.WriteString("]")
	return b.String()
}

// Grammar is a context-free grammar: an ordered list of productions plus the
// symbol partitioning derived from them. A Grammar is immutable after
// NewGrammar returns it and may be shared freely.
type Grammar struct {
	Name         string
	rules        []*Rule
	start        Symbol
	terminals    []Symbol // discovery order, ending with $ and #
	nonterminals []Symbol // lhs order, ending with @S
	termSet      map[Symbol]bool
	ntSet        map[Symbol]bool
	ntr          map[Symbol][]int // rule indices per lhs
}

// NewGrammar creates a grammar from a list of productions. The first rule is
// the start rule. An augmented rule @S → start is appended with the highest
// rule index. Rules without a semantic action get DefaultSemRule.
//
// Nonterminals are the symbols appearing on a left-hand side; all other
// symbols of the rules are terminals. A nonterminal without any production
// is tolerated (it is dead, and nothing will ever reduce to it).
func NewGrammar(name string, rules []Rule) (*Grammar, error) {
	if len(rules) == 0 {
		return nil, &GrammarError{Rule: "empty grammar"}
	}
	g := &Grammar{
		Name:    name,
		termSet: make(map[Symbol]bool),
		ntSet:   make(map[Symbol]bool),
		ntr:     make(map[Symbol][]int),
	}
	for i := range rules {
		r := rules[i] // copy
		r.Serial = len(g.rules)
		if r.Sem == nil {
			r.Sem = DefaultSemRule
		}
		if isReserved(r.LHS) || r.LHS == "" {
			return nil, &GrammarError{Rule: r.String()}
		}
		for _, sym := range r.RHS {
			if isReserved(sym) || sym == "" {
				return nil, &GrammarError{Rule: r.String()}
			}
		}
		g.rules = append(g.rules, &r)
	}
	for _, r := range g.rules { // nonterminals first, in lhs order
		if !g.ntSet[r.LHS] {
			g.ntSet[r.LHS] = true
			g.nonterminals = append(g.nonterminals, r.LHS)
		}
	}
	for _, r := range g.rules { // terminals are the remaining rhs symbols
		for _, sym := range r.RHS {
			if !g.ntSet[sym] && !g.termSet[sym] {
				g.termSet[sym] = true
				g.terminals = append(g.terminals, sym)
			}
		}
	}
	g.start = g.rules[0].LHS
	aug := &Rule{
		Serial: len(g.rules),
		LHS:    AugmentedStart,
		RHS:    []Symbol{g.start},
		Sem:    DefaultSemRule,
	}
	g.rules = append(g.rules, aug)
	g.terminals = append(g.terminals, EndMark, DummyMark)
	g.termSet[EndMark] = true
	g.termSet[DummyMark] = true
	g.nonterminals = append(g.nonterminals, AugmentedStart)
	g.ntSet[AugmentedStart] = true
	for i, r := range g.rules {
		g.ntr[r.LHS] = append(g.ntr[r.LHS], i)
	}
	return g, nil
}

func isReserved(sym Symbol) bool {
	return sym == EndMark || sym == DummyMark || sym == AugmentedStart ||
		sym == Symbol(yalr.UnknownTok)
}

// Size returns the number of rules, including the augmented start rule.
func (g *Grammar) Size() int {
	return len(g.rules)
}

// Rule returns rule no. i, or nil if out of range. The augmented start rule
// is the one with the highest index.
func (g *Grammar) Rule(i int) *Rule {
	if i < 0 || i >= len(g.rules) {
		return nil
	}
	return g.rules[i]
}

// Start returns the start symbol, i.e. the lhs of rule 0.
func (g *Grammar) Start() Symbol {
	return g.start
}

// Terminals returns the terminal symbols in discovery order, including the
// reserved $ and # sentinels. Callers must not modify the returned slice.
func (g *Grammar) Terminals() []Symbol {
	return g.terminals
}

// Nonterminals returns the nonterminal symbols in lhs order, including the
// augmented start symbol. Callers must not modify the returned slice.
func (g *Grammar) Nonterminals() []Symbol {
	return g.nonterminals
}

// IsTerminal checks if sym is a terminal of the grammar. Symbols unknown to
// the grammar are not terminals.
func (g *Grammar) IsTerminal(sym Symbol) bool {
	return g.termSet[sym]
}

// IsNonTerminal checks if sym is a nonterminal of the grammar.
func (g *Grammar) IsNonTerminal(sym Symbol) bool {
	return g.ntSet[sym]
}

// RulesFor returns the indices of all rules with lhs sym, in rule order.
func (g *Grammar) RulesFor(sym Symbol) []int {
	return g.ntr[sym]
}

// EachSymbol calls f for every user-defined symbol of the grammar:
// terminals in discovery order first, then nonterminals in lhs order. The
// reserved symbols $, # and @S are skipped.
func (g *Grammar) EachSymbol(f func(sym Symbol)) {
	for _, t := range g.terminals {
		if t == EndMark || t == DummyMark {
			continue
		}
		f(t)
	}
	for _, n := range g.nonterminals {
		if n == AugmentedStart {
			continue
		}
		f(n)
	}
}

// Dump is a debugging helper, tracing all grammar rules.
func (g *Grammar) Dump() {
	tracer().Debugf("Grammar %s:", g.Name)
	for _, r := range g.rules {
		tracer().Debugf("%v", r)
	}
}

func (g *Grammar) String() string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "Grammar %s:\n", g.Name)
	for _, r := range g.rules {
		fmt.Fprintf(&b, "%v\n", r)
	}
	return b.String()
}
