/*
Package scanner defines the lexical analysis boundary for the parsers of
this module.

A Scanner is built from an ordered list of lexical rules, each pairing a
regular expression with a token kind. Scanning produces the flat token
streams the parser driver consumes. Input not matched by any rule is
reported as tokens of kind @UNK, which the driver rejects like any terminal
unknown in the current state. The longest match wins; order of rules decides
only between equally long matches, where the rule listed first wins, so a
keyword rule must appear before a general rule which also matches it.

A lexical rule may carry operator information (precedence and
associativity); the collected operator table is handed to table
construction alongside the grammar.

The implementation is backed by lexmachine.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package scanner

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"

	"github.com/npillmayer/yalr"
)

// tracer traces with key 'yalr.scanner'.
func tracer() tracing.Trace {
	return tracing.Select("yalr.scanner")
}

// LexicalRuleError reports a lexical rule which could not be compiled,
// usually because of a malformed regular expression.
type LexicalRuleError struct {
	RuleNo  int // position of the offending rule, 1-based
	Pattern string
	Err     error
}

func (e *LexicalRuleError) Error() string {
	return fmt.Sprintf("error in RE %q at rule no.%d: %v", e.Pattern, e.RuleNo, e.Err)
}

func (e *LexicalRuleError) Unwrap() error {
	return e.Err
}

// LexRule is one lexical rule: a regular expression recognizing a token of
// the given kind. A rule with kind "" matches and discards input; this is
// used for whitespace and other delimiters. Op optionally carries operator
// information for the token, to be collected into the scanner's operator
// table.
type LexRule struct {
	Pattern string
	Kind    string
	Op      *yalr.OpInfo
}

// Scanner is a regex-rule tokenizer. Create one with New; a Scanner is
// immutable and good for any number of inputs.
type Scanner struct {
	lexer *lexmachine.Lexer
	ops   yalr.Operators
}

// New compiles a list of lexical rules into a scanner. Rules are matched
// longest-match first; between equally long matches, the rule added first
// wins. A malformed pattern surfaces as a *LexicalRuleError.
func New(rules []LexRule) (*Scanner, error) {
	s := &Scanner{
		lexer: lexmachine.NewLexer(),
		ops:   make(yalr.Operators),
	}
	for i, r := range rules {
		kind := r.Kind
		if kind == "" {
			s.lexer.Add([]byte(r.Pattern), skipToken)
		} else {
			s.lexer.Add([]byte(r.Pattern), makeToken(kind))
		}
		if r.Op != nil {
			if _, ok := s.ops[kind]; !ok {
				s.ops[kind] = *r.Op
			}
		}
		// compile each pattern on its own to attribute errors to single rules
		probe := lexmachine.NewLexer()
		probe.Add([]byte(r.Pattern), skipToken)
		err := func() (err error) {
			defer func() { // a panic inside lexmachine is reported as an error
				if p := recover(); p != nil {
					err = fmt.Errorf("%v", p)
				}
			}()
			return probe.Compile()
		}()
		if err != nil {
			return nil, &LexicalRuleError{RuleNo: i + 1, Pattern: r.Pattern, Err: err}
		}
	}
	if err := s.lexer.Compile(); err != nil {
		return nil, &LexicalRuleError{RuleNo: len(rules), Pattern: "", Err: err}
	}
	return s, nil
}

func makeToken(kind string) lexmachine.Action {
	return func(sc *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return yalr.Token{Kind: kind, Value: string(m.Bytes)}, nil
	}
}

// skipToken ignores the match; lexmachine drops tokens for which the action
// returns nil.
func skipToken(sc *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
	return nil, nil
}

// Operators returns the operator table collected from the lexical rules.
func (s *Scanner) Operators() yalr.Operators {
	return s.ops
}

// Scan performs the lexical analysis of input and returns the recognized
// tokens. Unmatched stretches of input are returned as @UNK tokens; the
// end-of-input sentinel is not part of the result.
func (s *Scanner) Scan(input string) ([]yalr.Token, error) {
	scan, err := s.lexer.Scanner([]byte(input))
	if err != nil {
		return nil, err
	}
	var tokens []yalr.Token
	for {
		tok, err, eof := scan.Next()
		if eof {
			break
		}
		if err != nil {
			ui, is := err.(*machines.UnconsumedInput)
			if !is {
				return nil, err
			}
			from, to := ui.StartTC, ui.FailTC
			if to <= from {
				to = from + 1
			}
			if to > len(input) {
				to = len(input)
			}
			tracer().Debugf("unmatched input %q", input[from:to])
			tokens = append(tokens, yalr.Token{Kind: yalr.UnknownTok, Value: input[from:to]})
			scan.TC = to
			continue
		}
		token := tok.(yalr.Token)
		tracer().Debugf("scanned token %v", token)
		tokens = append(tokens, token)
	}
	return tokens, nil
}
