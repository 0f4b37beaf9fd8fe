/*
Package lr implements prerequisites for LR parsing: grammars, grammar
analysis, and the construction of LR parser tables.

Building a Grammar

Grammars are specified as a list of productions. Clients provide rules
consisting of a nonterminal left-hand side, a sequence of right-hand side
symbols (possibly empty for epsilon-productions), a semantic action and
optional operator precedence:

	rules := []lr.Rule{
	    {LHS: "E", RHS: []lr.Symbol{"E", "+", "E"}},
	    {LHS: "E", RHS: []lr.Symbol{"E", "*", "E"}},
	    {LHS: "E", RHS: []lr.Symbol{"(", "E", ")"}},
	    {LHS: "E", RHS: []lr.Symbol{"id"}},
	}
	g, err := lr.NewGrammar("Expressions", rules)

Terminals are the right-hand side symbols which never appear on a left-hand
side. The first rule is the start rule; an augmented rule @S → start is
appended automatically and receives the highest rule index.

Static Grammar Analysis

After the grammar is complete, it has to be analysed. For this end, the
grammar is subjected to an LRAnalysis object, which computes the NULLABLE,
FIRST and FOLLOW sets for the grammar, as well as two derived relations: the
nonterminal transitive closure and the set of first-derivable terminals. The
table builders do not consult the two derived relations.

Although these sets are mainly intended to be used for internal purposes of
constructing the parser tables, methods for getting FIRST(N) and FOLLOW(N)
of nonterminals are defined to be public.

	ga := lr.Analysis(g)
	fmt.Println(ga.Follow("E"))

Parser Table Construction

Using grammar analysis as input, the tables for a bottom-up parser can be
constructed. Three table variants are supported: SLR(1), canonical LR(1) and
LALR(1), all sharing one conflict-resolution policy driven by an operator
table. LALR(1) tables are built from kernel items with lookahead propagation,
avoiding the materialization of the full canonical LR(1) state set.

	lrgen := lr.NewTableGenerator(ga, operators, lr.DefaultTableConfig())
	table, err := lrgen.CreateTables()

Conflicts resolved without operator information are recorded in the table's
conflict log; in strict mode they abort the construction instead.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lr

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'yalr.lr'.
func tracer() tracing.Trace {
	return tracing.Select("yalr.lr")
}
