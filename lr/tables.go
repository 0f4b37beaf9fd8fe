package lr

import (
	"fmt"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"

	"github.com/npillmayer/yalr"
	"github.com/npillmayer/yalr/lr/iteratable"
)

// Variant selects the table construction algorithm.
type Variant int

// Table variants. LALR1 is the default.
const (
	LALR1 Variant = iota
	SLR1
	LR1
)

func (v Variant) String() string {
	switch v {
	case SLR1:
		return "SLR(1)"
	case LR1:
		return "LR(1)"
	}
	return "LALR(1)"
}

// TableConfig configures table construction. The zero value builds an
// LALR(1) table in strict mode; DefaultTableConfig returns the common
// permissive setup.
type TableConfig struct {
	Variant         Variant
	ResolveSilently bool // resolve conflicts by policy instead of failing
	Expect          int  // number of silently resolved conflicts tolerated without warning
}

// DefaultTableConfig returns the default configuration: LALR(1), conflicts
// resolved silently, no conflicts expected.
func DefaultTableConfig() TableConfig {
	return TableConfig{Variant: LALR1, ResolveSilently: true}
}

// ActionKind discriminates parser actions.
type ActionKind int

// The parser action kinds. States without an entry signal a syntax error.
const (
	Shift ActionKind = iota
	Reduce
	Accept
)

func (k ActionKind) String() string {
	switch k {
	case Shift:
		return "shift"
	case Reduce:
		return "reduce"
	}
	return "accept"
}

// Action is an ACTION table entry. Arg is the successor state for shift
// entries and the rule index for reduce entries; it is unused for accept.
type Action struct {
	Kind ActionKind
	Arg  int
}

func (a Action) String() string {
	switch a.Kind {
	case Shift:
		return fmt.Sprintf("s%d", a.Arg)
	case Reduce:
		return fmt.Sprintf("r%d", a.Arg)
	}
	return "acc"
}

// StateSym addresses a table cell: a state paired with a grammar symbol.
type StateSym struct {
	State int
	Sym   Symbol
}

// SRConflict records a shift/reduce conflict resolved in favor of shift.
type SRConflict struct {
	State      int
	Sym        Symbol
	ShiftState int
	ReduceRule int
}

// RRConflict records a reduce/reduce conflict, resolved by keeping the
// lower-indexed rule.
type RRConflict struct {
	State int
	Sym   Symbol
	RuleA int
	RuleB int
}

// Log is the conflict report of a table construction. Recorded are the
// conflicts resolved without operator information, plus shift/reduce ties of
// a non-associative operator at equal precedence (resolved to shift). All
// other resolutions driven by precedence and associativity are considered
// intended by the grammar author and are not recorded.
type Log struct {
	SR              []SRConflict
	RR              []RRConflict
	Expect          int
	ResolveSilently bool
}

// Table holds the ACTION and GOTO functions for an LR parser, plus the
// conflict log of its construction. Cells not present in the maps are error
// entries. A Table is immutable once built and may be shared across parses.
type Table struct {
	Variant    Variant
	StateCount int
	Actions    map[StateSym]Action
	Gotos      map[StateSym]int
	Log        *Log
}

// Action looks up the ACTION entry for (state, terminal).
func (t *Table) Action(state int, sym Symbol) (Action, bool) {
	a, ok := t.Actions[StateSym{State: state, Sym: sym}]
	return a, ok
}

// Goto looks up the GOTO entry for (state, nonterminal).
func (t *Table) Goto(state int, sym Symbol) (int, bool) {
	j, ok := t.Gotos[StateSym{State: state, Sym: sym}]
	return j, ok
}

// --- States and edges ------------------------------------------------------

// tableState is a state within the LR automaton for a grammar.
type tableState struct {
	ID     int
	items  *iteratable.Set // item set for SLR/LR(1) states
	kernel *Kernel         // kernel form for LALR(1) states
}

// edge between two states, directed and labeled with a grammar symbol
type stateEdge struct {
	from  int
	to    int
	label Symbol
}

// States are kept sorted by serial ID.
func stateComparator(a, b interface{}) int {
	s1 := a.(*tableState)
	s2 := b.(*tableState)
	return utils.IntComparator(s1.ID, s2.ID)
}

// TableGenerator constructs LR parser tables. Clients create a Grammar G,
// then an LRAnalysis object for G, and then a table generator;
// CreateTables() enumerates the item sets and emits the ACTION and GOTO
// tables for an LR parser recognizing G.
type TableGenerator struct {
	ga      *LRAnalysis
	g       *Grammar
	ops     yalr.Operators
	cfg     TableConfig
	prec    []*yalr.OpInfo  // effective precedence per rule
	states  *treeset.Set    // all the states, sorted by ID
	byID    []*tableState   // states addressed by serial ID
	edges   *arraylist.List // all the edges between states
	gotoRef map[StateSym]int
	table   *Table
	srlog   *arraylist.List
	rrlog   *arraylist.List
}

// NewTableGenerator creates a table generator for a previously analysed
// grammar. ops may be nil for grammars without operator precedence.
func NewTableGenerator(ga *LRAnalysis, ops yalr.Operators, cfg TableConfig) *TableGenerator {
	return &TableGenerator{
		ga:      ga,
		g:       ga.Grammar(),
		ops:     ops,
		cfg:     cfg,
		states:  treeset.NewWith(stateComparator),
		edges:   arraylist.New(),
		gotoRef: make(map[StateSym]int),
		srlog:   arraylist.New(),
		rrlog:   arraylist.New(),
	}
}

// BuildTable is a convenience wrapper: it analyses nothing anew but drives a
// TableGenerator for the given analysis and configuration.
func BuildTable(ga *LRAnalysis, ops yalr.Operators, cfg TableConfig) (*Table, error) {
	return NewTableGenerator(ga, ops, cfg).CreateTables()
}

// CreateTables creates the ACTION and GOTO tables for the configured
// variant. On an unresolvable conflict in strict mode it returns a
// *ConflictError and no table. If more conflicts were silently resolved
// than cfg.Expect tolerates, the table is returned together with a
// *ConflictsExceededError — a warning, not a failure.
func (lrgen *TableGenerator) CreateTables() (*Table, error) {
	lrgen.rulesPrecedence()
	lrgen.table = &Table{
		Variant: lrgen.cfg.Variant,
		Actions: make(map[StateSym]Action),
		Gotos:   make(map[StateSym]int),
	}
	tracer().Debugf("=== build %s table for grammar %s ===", lrgen.cfg.Variant, lrgen.g.Name)
	var err error
	switch lrgen.cfg.Variant {
	case SLR1:
		err = lrgen.buildSLR()
	case LR1:
		err = lrgen.buildLR1()
	default:
		err = lrgen.buildLALR()
	}
	if err != nil {
		return nil, err
	}
	lrgen.table.StateCount = lrgen.states.Size()
	lrgen.table.Log = lrgen.freezeLog()
	if n := len(lrgen.table.Log.SR) + len(lrgen.table.Log.RR); lrgen.cfg.ResolveSilently && n > lrgen.cfg.Expect {
		return lrgen.table, &ConflictsExceededError{Count: n, Expect: lrgen.cfg.Expect}
	}
	return lrgen.table, nil
}

func (lrgen *TableGenerator) freezeLog() *Log {
	log := &Log{
		Expect:          lrgen.cfg.Expect,
		ResolveSilently: lrgen.cfg.ResolveSilently,
	}
	it := lrgen.srlog.Iterator()
	for it.Next() {
		log.SR = append(log.SR, *(it.Value().(*SRConflict)))
	}
	it = lrgen.rrlog.Iterator()
	for it.Next() {
		log.RR = append(log.RR, *(it.Value().(*RRConflict)))
	}
	return log
}

// rulesPrecedence determines the effective precedence of every rule: an
// explicit rule precedence if given, otherwise the operator info of the
// rightmost terminal of the rhs found in the operator table.
func (lrgen *TableGenerator) rulesPrecedence() {
	lrgen.prec = make([]*yalr.OpInfo, lrgen.g.Size())
	for i := 0; i < lrgen.g.Size(); i++ {
		r := lrgen.g.Rule(i)
		if r.Prec != nil {
			lrgen.prec[i] = r.Prec
			continue
		}
		if lrgen.ops == nil {
			continue
		}
		for k := len(r.RHS) - 1; k >= 0; k-- {
			if op, ok := lrgen.ops[string(r.RHS[k])]; ok && lrgen.g.IsTerminal(r.RHS[k]) {
				opcopy := op
				lrgen.prec[i] = &opcopy
				break
			}
		}
	}
}

// --- State bookkeeping -----------------------------------------------------

func (lrgen *TableGenerator) newState() *tableState {
	s := &tableState{ID: len(lrgen.byID)}
	lrgen.byID = append(lrgen.byID, s)
	lrgen.states.Add(s)
	return s
}

func (lrgen *TableGenerator) findStateByItems(items *iteratable.Set) *tableState {
	it := lrgen.states.Iterator()
	for it.Next() {
		s := it.Value().(*tableState)
		if s.items != nil && s.items.Equals(items) {
			return s
		}
	}
	return nil
}

func (lrgen *TableGenerator) findStateByKernelCore(k *Kernel) *tableState {
	it := lrgen.states.Iterator()
	for it.Next() {
		s := it.Value().(*tableState)
		if s.kernel != nil && s.kernel.coreEquals(k) {
			return s
		}
	}
	return nil
}

func (lrgen *TableGenerator) addEdge(from, to *tableState, label Symbol) {
	lrgen.edges.Add(&stateEdge{from: from.ID, to: to.ID, label: label})
	lrgen.gotoRef[StateSym{State: from.ID, Sym: label}] = to.ID
}

// emitGotos writes the GOTO entries of a state from the recorded edges.
func (lrgen *TableGenerator) emitGotos(s *tableState) {
	for _, nt := range lrgen.g.Nonterminals() {
		if nt == AugmentedStart {
			continue
		}
		if j, ok := lrgen.gotoRef[StateSym{State: s.ID, Sym: nt}]; ok {
			lrgen.table.Gotos[StateSym{State: s.ID, Sym: nt}] = j
		}
	}
}

// DumpAutomaton traces the states and transitions of the constructed LR
// automaton. This is a debugging helper; call it after CreateTables().
func (lrgen *TableGenerator) DumpAutomaton() {
	it := lrgen.states.Iterator()
	for it.Next() {
		s := it.Value().(*tableState)
		tracer().Debugf("--- state %03d -----------", s.ID)
		if s.items != nil {
			for _, v := range s.items.Values() {
				switch item := v.(type) {
				case Item:
					tracer().Debugf("  %s", lrgen.g.ItemString(item))
				case LR1Item:
					tracer().Debugf("  %s, %s", lrgen.g.ItemString(item.Core()), item.Lookahead)
				}
			}
		}
		if s.kernel != nil {
			for _, k := range s.kernel.Items() {
				tracer().Debugf("  %s, %v", lrgen.g.ItemString(k), s.kernel.Lookaheads(k))
			}
		}
	}
	eit := lrgen.edges.Iterator()
	for eit.Next() {
		e := eit.Value().(*stateEdge)
		tracer().Debugf("s%03d --%s--> s%03d", e.from, e.label, e.to)
	}
}

// --- Conflict resolution ---------------------------------------------------

// addAction enters (kind, arg) for state i and terminal a, or resolves the
// conflict with any existing entry. Shift/reduce conflicts are decided by
// operator precedence where available, by shifting otherwise; reduce/reduce
// conflicts keep the production listed first. Without ResolveSilently, any
// conflict not decidable by operator info is fatal.
func (lrgen *TableGenerator) addAction(i int, a Symbol, act Action) error {
	key := StateSym{State: i, Sym: a}
	old, exists := lrgen.table.Actions[key]
	if !exists || old == act {
		lrgen.table.Actions[key] = act
		return nil
	}
	tracer().Debugf("conflict at (%d, %s): %s vs %s", i, a, old, act)
	switch {
	case old.Kind == Shift && act.Kind == Reduce:
		return lrgen.resolveShiftReduce(i, a, old.Arg, act.Arg)
	case old.Kind == Reduce && act.Kind == Shift:
		return lrgen.resolveShiftReduce(i, a, act.Arg, old.Arg)
	case old.Kind == Reduce && act.Kind == Reduce:
		if !lrgen.cfg.ResolveSilently {
			return &ConflictError{State: i, Symbol: a}
		}
		keep := old.Arg
		if act.Arg < keep {
			keep = act.Arg
		}
		lrgen.table.Actions[key] = Action{Kind: Reduce, Arg: keep}
		lrgen.rrlog.Add(&RRConflict{State: i, Sym: a, RuleA: old.Arg, RuleB: act.Arg})
		tracer().Debugf("    resolved by keeping rule %d", keep)
		return nil
	}
	// accept colliding with anything else indicates a broken construction
	return &ConflictError{State: i, Symbol: a}
}

// resolveShiftReduce decides a shift/reduce conflict at (i, a) between
// shifting to state s and reducing rule r.
func (lrgen *TableGenerator) resolveShiftReduce(i int, a Symbol, s, r int) error {
	key := StateSym{State: i, Sym: a}
	op, hasOp := yalr.OpInfo{}, false
	if lrgen.ops != nil {
		op, hasOp = lrgen.ops[string(a)]
	}
	if hasOp && lrgen.prec[r] != nil {
		rp := lrgen.prec[r]
		switch {
		case rp.Prec > op.Prec:
			lrgen.table.Actions[key] = Action{Kind: Reduce, Arg: r}
		case rp.Prec < op.Prec:
			lrgen.table.Actions[key] = Action{Kind: Shift, Arg: s}
		case op.Assoc == yalr.AssocLeft:
			lrgen.table.Actions[key] = Action{Kind: Reduce, Arg: r}
		case op.Assoc == yalr.AssocRight:
			lrgen.table.Actions[key] = Action{Kind: Shift, Arg: s}
		default: // noassoc at equal precedence: shift, but record it
			lrgen.table.Actions[key] = Action{Kind: Shift, Arg: s}
			lrgen.srlog.Add(&SRConflict{State: i, Sym: a, ShiftState: s, ReduceRule: r})
		}
		tracer().Debugf("    resolved by operator %q to %s", a, lrgen.table.Actions[key])
		return nil
	}
	if lrgen.cfg.ResolveSilently {
		lrgen.table.Actions[key] = Action{Kind: Shift, Arg: s}
		lrgen.srlog.Add(&SRConflict{State: i, Sym: a, ShiftState: s, ReduceRule: r})
		tracer().Debugf("    resolved to shift %d", s)
		return nil
	}
	return &ConflictError{State: i, Symbol: a}
}

// --- SLR(1) ----------------------------------------------------------------

// buildSLR enumerates the canonical LR(0) item sets and emits an SLR(1)
// table: shift entries from the goto edges, reduce entries for completed
// items over FOLLOW(lhs).
func (lrgen *TableGenerator) buildSLR() error {
	start := newItemSet()
	start.Add(StartItem(lrgen.g))
	s0 := lrgen.newState()
	s0.items = lrgen.ga.closure0(start)
	queue := []*tableState{s0}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		lrgen.g.EachSymbol(func(X Symbol) {
			gotoset := lrgen.ga.goto0(s.items, X)
			if gotoset.Empty() {
				return
			}
			snew := lrgen.findStateByItems(gotoset)
			if snew == nil {
				snew = lrgen.newState()
				snew.items = gotoset
				queue = append(queue, snew)
			}
			lrgen.addEdge(s, snew, X)
		})
	}
	it := lrgen.states.Iterator()
	for it.Next() {
		s := it.Value().(*tableState)
		for _, v := range s.items.Values() {
			item := v.(Item)
			A, ok := lrgen.g.SymbolAfterDot(item)
			if ok {
				if !lrgen.g.IsTerminal(A) {
					continue
				}
				j := lrgen.gotoRef[StateSym{State: s.ID, Sym: A}]
				if err := lrgen.addAction(s.ID, A, Action{Kind: Shift, Arg: j}); err != nil {
					return err
				}
				continue
			}
			r := lrgen.g.Rule(item.Rule)
			if r.LHS == AugmentedStart {
				if err := lrgen.addAction(s.ID, EndMark, Action{Kind: Accept}); err != nil {
					return err
				}
				continue
			}
			for _, la := range lrgen.ga.Follow(r.LHS).Values() {
				if err := lrgen.addAction(s.ID, la.(Symbol), Action{Kind: Reduce, Arg: item.Rule}); err != nil {
					return err
				}
			}
		}
		lrgen.emitGotos(s)
	}
	return nil
}
