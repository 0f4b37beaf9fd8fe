/*
Package rulelang parses textual grammar-rule notation into the grammar form
of package lr.

The notation is the usual one:

	E -> E + E {{ plus // 100 left }} |
	     E * E {{ times // 200 left }} |
	     ( E ) {{ paren }} |
	     id ;
	F -> [] ;

Rules for one left-hand side are separated by the alternation symbol and
closed by the rule terminator. Symbols are whitespace-separated. A
right-hand side of [] (or an empty right-hand side) denotes an
epsilon-production. The optional semantic block names the semantic action,
resolved through a caller-supplied registry; an optional operator tail
inside the block attaches precedence and associativity to the rule. All
punctuation is tunable through a Syntax value.

The frontend does not implement its own parsing machinery: the rule
notation is described by a meta grammar which is analysed, tabled and
driven by the very packages this module provides.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package rulelang

import (
	"errors"
	"strconv"
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"github.com/npillmayer/yalr"
	"github.com/npillmayer/yalr/lr"
	"github.com/npillmayer/yalr/lr/parser"
	"github.com/npillmayer/yalr/lr/scanner"
)

// tracer traces with key 'yalr.rulelang'.
func tracer() tracing.Trace {
	return tracing.Select("yalr.rulelang")
}

// Syntax is the punctuation of the rule notation. The zero value is not
// usable; start from DefaultSyntax.
type Syntax struct {
	Arrow    string // lhs/rhs separator
	Alt      string // separator between rules for one lhs
	End      string // rule terminator
	SemOpen  string // semantic block start marker
	SemClose string // semantic block end marker
	OpSep    string // operator info separator within a semantic block
}

// DefaultSyntax returns the standard punctuation:
// "->", "|", ";", "{{", "}}" and "//".
func DefaultSyntax() Syntax {
	return Syntax{
		Arrow:    "->",
		Alt:      "|",
		End:      ";",
		SemOpen:  "{{",
		SemClose: "}}",
		OpSep:    "//",
	}
}

// Actions is a registry of named semantic actions. Semantic blocks refer to
// actions by name; an unknown name is a grammar error. Rules without a
// semantic block get lr.DefaultSemRule (epsilon-rules lr.EmptySemRule).
type Actions map[string]lr.SemRule

// EpsilonMark in rhs position denotes an epsilon-production.
const EpsilonMark = "[]"

// one parsed rhs alternative
type alternative struct {
	syms []string
	sem  semspec
}

// contents of a semantic block
type semspec struct {
	name string
	op   *yalr.OpInfo
}

// Parse parses rule notation into grammar productions, in input order, with
// semantic actions bound through acts. The first rule is the start rule.
// The second return value collects operator information from the rules'
// operator tails, keyed by the rightmost terminal of the respective rule.
//
// Malformed notation surfaces as *lr.GrammarError.
func Parse(src string, acts Actions, syn Syntax) ([]lr.Rule, yalr.Operators, error) {
	tokens, err := tokenize(src, syn)
	if err != nil {
		return nil, nil, err
	}
	var collected []struct {
		lhs string
		alt alternative
	}
	metaRules := []lr.Rule{
		{LHS: "G", RHS: []lr.Symbol{"RULE", "G"}},
		{LHS: "G", RHS: []lr.Symbol{}},
		{LHS: "RULE", RHS: []lr.Symbol{"id", "arrow", "MULTI", "end"},
			Sem: func(args []interface{}, ctx yalr.Context) (interface{}, error) {
				lhs := args[0].(string)
				for _, alt := range args[2].([]alternative) {
					collected = append(collected, struct {
						lhs string
						alt alternative
					}{lhs, alt})
				}
				return nil, nil
			}},
		{LHS: "MULTI", RHS: []lr.Symbol{"RHS", "alt", "MULTI"},
			Sem: func(args []interface{}, ctx yalr.Context) (interface{}, error) {
				return append([]alternative{args[0].(alternative)}, args[2].([]alternative)...), nil
			}},
		{LHS: "MULTI", RHS: []lr.Symbol{"RHS"},
			Sem: func(args []interface{}, ctx yalr.Context) (interface{}, error) {
				return []alternative{args[0].(alternative)}, nil
			}},
		{LHS: "RHS", RHS: []lr.Symbol{},
			Sem: func(args []interface{}, ctx yalr.Context) (interface{}, error) {
				return alternative{}, nil
			}},
		{LHS: "RHS", RHS: []lr.Symbol{"RH", "OPSEM"},
			Sem: func(args []interface{}, ctx yalr.Context) (interface{}, error) {
				return alternative{
					syms: args[0].([]string),
					sem:  args[1].(semspec),
				}, nil
			}},
		{LHS: "RH", RHS: []lr.Symbol{"id", "RH"},
			Sem: func(args []interface{}, ctx yalr.Context) (interface{}, error) {
				head := args[0].(string)
				return append([]string{head}, args[1].([]string)...), nil
			}},
		{LHS: "RH", RHS: []lr.Symbol{"id"},
			Sem: func(args []interface{}, ctx yalr.Context) (interface{}, error) {
				return []string{args[0].(string)}, nil
			}},
		{LHS: "OPSEM", RHS: []lr.Symbol{},
			Sem: func(args []interface{}, ctx yalr.Context) (interface{}, error) {
				return semspec{}, nil
			}},
		{LHS: "OPSEM", RHS: []lr.Symbol{"ids"},
			Sem: func(args []interface{}, ctx yalr.Context) (interface{}, error) {
				return parseSemBlock(args[0].(string), syn)
			}},
	}
	g, err := lr.NewGrammar("rule notation", metaRules)
	if err != nil {
		return nil, nil, err
	}
	table, err := lr.BuildTable(lr.Analysis(g), nil, lr.TableConfig{Variant: lr.LR1})
	if err != nil {
		return nil, nil, err
	}
	p := parser.NewParser(g, table)
	if _, err := p.Parse(tokens, nil); err != nil {
		var semErr *lr.SemanticError
		if errors.As(err, &semErr) {
			var gramErr *lr.GrammarError
			if errors.As(semErr.Err, &gramErr) {
				return nil, nil, gramErr
			}
		}
		var parseErr *lr.ParserError
		if errors.As(err, &parseErr) { // notation, not input, is at fault here
			return nil, nil, &lr.GrammarError{Rule: strings.TrimSpace(src)}
		}
		return nil, nil, err
	}
	return assemble(collected, acts)
}

func tokenize(src string, syn Syntax) ([]yalr.Token, error) {
	inner := "[^" + escapeLiteral(syn.SemClose[:1]) + "]*"
	rules := []scanner.LexRule{
		{Pattern: escapeLiteral(syn.SemOpen) + inner + escapeLiteral(syn.SemClose), Kind: "ids"},
		{Pattern: escapeLiteral(syn.Arrow), Kind: "arrow"},
		{Pattern: escapeLiteral(syn.Alt), Kind: "alt"},
		{Pattern: escapeLiteral(syn.End), Kind: "end"},
		{Pattern: "( |\t|\n|\r)+", Kind: ""},
		{Pattern: "[^ \t\n\r]+", Kind: "id"}, // catch-all, must come last
	}
	scn, err := scanner.New(rules)
	if err != nil {
		return nil, err
	}
	return scn.Scan(src)
}

// escapeLiteral makes a literal string safe for use within a pattern.
func escapeLiteral(lit string) string {
	return "\\" + strings.Join(strings.Split(lit, ""), "\\")
}

// parseSemBlock dissects a semantic block: "{{ name }}" or
// "{{ name // prec assoc }}".
func parseSemBlock(block string, syn Syntax) (interface{}, error) {
	body := strings.TrimPrefix(block, syn.SemOpen)
	body = strings.TrimSuffix(body, syn.SemClose)
	name := body
	var op *yalr.OpInfo
	if at := strings.Index(body, syn.OpSep); at >= 0 {
		name = body[:at]
		tail := strings.Fields(body[at+len(syn.OpSep):])
		if len(tail) != 2 {
			return nil, &lr.GrammarError{Rule: block}
		}
		prec, err := strconv.Atoi(tail[0])
		if err != nil {
			return nil, &lr.GrammarError{Rule: block}
		}
		var assoc yalr.Assoc
		switch tail[1] {
		case "left":
			assoc = yalr.AssocLeft
		case "right":
			assoc = yalr.AssocRight
		case "noassoc":
			assoc = yalr.AssocNone
		default:
			return nil, &lr.GrammarError{Rule: block}
		}
		op = &yalr.OpInfo{Prec: prec, Assoc: assoc}
	}
	return semspec{name: strings.TrimSpace(name), op: op}, nil
}

// assemble turns the collected alternatives into grammar productions and
// the operator table.
func assemble(collected []struct {
	lhs string
	alt alternative
}, acts Actions) ([]lr.Rule, yalr.Operators, error) {
	lhsSet := make(map[string]bool)
	for _, c := range collected {
		lhsSet[c.lhs] = true
	}
	ops := make(yalr.Operators)
	var rules []lr.Rule
	for _, c := range collected {
		epsilon := len(c.alt.syms) == 0 ||
			(len(c.alt.syms) == 1 && c.alt.syms[0] == EpsilonMark)
		rule := lr.Rule{LHS: lr.Symbol(c.lhs)}
		if !epsilon {
			for _, sym := range c.alt.syms {
				rule.RHS = append(rule.RHS, lr.Symbol(sym))
			}
		}
		switch {
		case c.alt.sem.name != "":
			sem, ok := acts[c.alt.sem.name]
			if !ok {
				return nil, nil, &lr.GrammarError{Rule: c.lhs + ": unknown action " + c.alt.sem.name}
			}
			rule.Sem = sem
		case epsilon:
			rule.Sem = lr.EmptySemRule
		default:
			rule.Sem = lr.DefaultSemRule
		}
		if c.alt.sem.op != nil {
			rule.Prec = c.alt.sem.op
			// operator info also lands in the operator table, keyed by the
			// rightmost terminal of the rule
			for i := len(rule.RHS) - 1; i >= 0; i-- {
				sym := string(rule.RHS[i])
				if !lhsSet[sym] {
					if _, exists := ops[sym]; !exists {
						ops[sym] = *c.alt.sem.op
					}
					break
				}
			}
		}
		tracer().Debugf("parsed rule %s -> %v", c.lhs, c.alt.syms)
		rules = append(rules, rule)
	}
	if len(rules) == 0 {
		return nil, nil, &lr.GrammarError{Rule: "no rules in input"}
	}
	return rules, ops, nil
}
