/*
Package parser provides the shift/reduce driver for LR parse tables.
Clients have to use the tools of package lr to prepare the necessary
tables. The driver utilizes these tables to create a right derivation for a
given token stream, interleaving parser actions with user semantic actions.

The main focus for this implementation is adaptability and on-the-fly usage.
Clients are able to construct the tables from a grammar and use the parser
directly, without a code-generation or compile step.

Usage

Clients construct a grammar, analyse it and create the parse tables:

	g, _ := lr.NewGrammar("Expressions", rules)
	ga := lr.Analysis(g)
	table, err := lr.BuildTable(ga, operators, lr.DefaultTableConfig())

Finally parse some input:

	p := parser.NewParser(g, table)
	value, err := p.Parse(tokens, ctx)

The tokens are (kind, value) pairs as produced by a lexical analyser, e.g.
one built with package scanner. The grammar's semantic actions compute the
parsed value; the sequence of reductions of the last parse is available from
Output().

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package parser

import (
	"github.com/npillmayer/schuko/tracing"

	"github.com/npillmayer/yalr"
	"github.com/npillmayer/yalr/lr"
)

// tracer traces with key 'yalr.parser'.
func tracer() tracing.Trace {
	return tracing.Select("yalr.parser")
}

// Parser is a shift/reduce parser driver. Create and initialize one with
// parser.NewParser(...). A Parser is good for any number of sequential
// parses; grammar and table are shared, the parse stack is per call.
type Parser struct {
	g      *lr.Grammar
	table  *lr.Table
	nosem  bool
	output []int // rule trace of the last parse, reductions in order
}

// We store pairs of state-IDs and semantic values on the parse stack.
type stackitem struct {
	stateID int
	value   interface{}
}

// Option configures a Parser.
type Option func(*Parser)

// SuppressSemRules makes the parser skip all semantic actions. Reduction
// values are nil; the rule trace is still produced.
func SuppressSemRules() Option {
	return func(p *Parser) {
		p.nosem = true
	}
}

// NewParser creates a parser driver for a grammar and a previously
// constructed table. The table must have been built for this grammar.
func NewParser(g *lr.Grammar, table *lr.Table, opts ...Option) *Parser {
	p := &Parser{
		g:     g,
		table: table,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Output returns the rule trace of the last parse: the indices of the
// reduced rules, in reduction order (a rightmost derivation in reverse).
func (p *Parser) Output() []int {
	return p.output
}

// Parse runs the driver loop over a token stream. The end-of-input sentinel
// is appended internally; tokens must not contain it. ctx is handed to
// every semantic action unchanged and may be nil.
//
// Parse returns the semantic value of the start symbol. On a syntax error
// it returns a *lr.ParserError carrying the current state and offending
// token kind; an error from a semantic action is wrapped in a
// *lr.SemanticError.
func (p *Parser) Parse(tokens []yalr.Token, ctx yalr.Context) (interface{}, error) {
	tracer().Debugf("~~~ parse of %d tokens ~~~", len(tokens))
	input := make([]yalr.Token, 0, len(tokens)+1)
	input = append(input, tokens...)
	input = append(input, yalr.Token{Kind: string(lr.EndMark), Value: string(lr.EndMark)})
	stack := make([]stackitem, 0, 512)
	stack = append(stack, stackitem{stateID: 0}) // initial state, empty value
	p.output = p.output[:0]
	ip := 0
	for {
		s := stack[len(stack)-1].stateID
		a := lr.Symbol(input[ip].Kind)
		action, ok := p.table.Action(s, a)
		if !ok {
			return nil, &lr.ParserError{State: s, Symbol: a}
		}
		tracer().Debugf("action(%d, %s) = %s", s, a, action)
		switch action.Kind {
		case lr.Shift:
			stack = append(stack, stackitem{stateID: action.Arg, value: input[ip].Value})
			ip++
		case lr.Reduce:
			rule := p.g.Rule(action.Arg)
			k := len(rule.RHS)
			if len(stack) <= k {
				return nil, &lr.StackUnderflowError{}
			}
			args := make([]interface{}, k)
			for i := 0; i < k; i++ { // preserve left-to-right order
				args[i] = stack[len(stack)-k+i].value
			}
			stack = stack[:len(stack)-k]
			var value interface{}
			if !p.nosem {
				var err error
				if value, err = rule.Sem(args, ctx); err != nil {
					return nil, &lr.SemanticError{
						Msg:  err.Error(),
						Rule: rule.Serial,
						In:   rule.String(),
						Err:  err,
					}
				}
			}
			s1 := stack[len(stack)-1].stateID
			nextstate, ok := p.table.Goto(s1, rule.LHS)
			if !ok {
				return nil, &lr.ParserError{State: s1, Symbol: rule.LHS}
			}
			tracer().Debugf("reduced %v, goto %d", rule, nextstate)
			stack = append(stack, stackitem{stateID: nextstate, value: value})
			p.output = append(p.output, rule.Serial)
		case lr.Accept:
			return stack[len(stack)-1].value, nil
		}
	}
}
