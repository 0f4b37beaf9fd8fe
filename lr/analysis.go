package lr

import (
	"github.com/npillmayer/yalr/lr/iteratable"
)

// LRAnalysis is the static analysis of a grammar: NULLABLE, FIRST and FOLLOW
// sets, plus two derived relations (the nonterminal transitive closure and
// the first-derivable terminals). The table builders use NULLABLE, FIRST and
// FOLLOW; the two derived relations are analysis results only and are not
// consulted by any table construction.
// All sets are computed once, by Analysis; an LRAnalysis is immutable
// afterwards and may be shared.
type LRAnalysis struct {
	g         *Grammar
	nullable  map[Symbol]bool
	first     map[Symbol]*iteratable.Set
	follow    map[Symbol]*iteratable.Set
	closeNT   map[Symbol]map[Symbol]*iteratable.Set // source → target → contexts
	closeNTTg map[Symbol][]Symbol                   // target enumeration order
	deriveTer map[Symbol]*iteratable.Set
}

// Analysis computes the analysis sets for a grammar.
func Analysis(g *Grammar) *LRAnalysis {
	ga := &LRAnalysis{g: g}
	ga.computeNullable()
	ga.computeFirst()
	ga.computeFollow()
	ga.computeCloseNT()
	ga.computeDeriveTer()
	return ga
}

// Grammar returns the grammar this analysis is for.
func (ga *LRAnalysis) Grammar() *Grammar {
	return ga.g
}

// --- NULLABLE --------------------------------------------------------------

// Nullable is true iff sym derives the empty string.
func (ga *LRAnalysis) Nullable(sym Symbol) bool {
	return ga.nullable[sym]
}

// NullableSeq is true iff every symbol of seq is nullable. The empty
// sequence is nullable.
func (ga *LRAnalysis) NullableSeq(seq []Symbol) bool {
	for _, sym := range seq {
		if !ga.nullable[sym] {
			return false
		}
	}
	return true
}

func (ga *LRAnalysis) computeNullable() {
	ga.nullable = make(map[Symbol]bool)
	for _, r := range ga.g.rules { // epsilon-rules seed the fixed point
		if r.IsEpsilon() {
			ga.nullable[r.LHS] = true
		}
	}
	changed := true
	for changed {
		changed = false
		for _, r := range ga.g.rules {
			if ga.nullable[r.LHS] {
				continue
			}
			if ga.NullableSeq(r.RHS) {
				ga.nullable[r.LHS] = true
				changed = true
			}
		}
	}
}

// --- FIRST -----------------------------------------------------------------

// First returns FIRST(sym): the set of terminals that begin the strings
// derivable from sym. For a terminal t, FIRST(t) = {t}. Callers must not
// modify the returned set.
func (ga *LRAnalysis) First(sym Symbol) *iteratable.Set {
	return ga.first[sym]
}

// FirstOfSeq generalizes FIRST to a sequence of symbols: the union of
// FIRST of each symbol up to and including the first non-nullable one.
// The second return value reports whether the whole sequence is nullable.
func (ga *LRAnalysis) FirstOfSeq(seq []Symbol) (*iteratable.Set, bool) {
	first := iteratable.NewSet(0)
	for _, sym := range seq {
		first.Union(ga.first[sym])
		if !ga.nullable[sym] {
			return first, false
		}
	}
	return first, true
}

// FIRST sets are computed with a depth-numbered DFS over the dependency
// relation "FIRST(A) contains FIRST(B)" induced by rules A → β B γ with β
// nullable. Cyclic dependencies are detected through the entry-depth numbers
// and resolved by sharing the set of the cycle head with all members, so
// left-recursive grammars converge to the least fixed point.
func (ga *LRAnalysis) computeFirst() {
	ga.first = make(map[Symbol]*iteratable.Set)
	for _, t := range ga.g.terminals {
		s := iteratable.NewSet(1)
		s.Add(t)
		ga.first[t] = s
	}
	nd := make(map[Symbol]int)
	var ms []Symbol // DFS stack of in-progress nonterminals
	for _, s := range ga.g.nonterminals {
		if len(ga.g.ntr[s]) > 0 && ga.first[s] == nil {
			ga.firstTraverse(s, 1, nd, &ms)
		}
	}
	for _, s := range ga.g.nonterminals { // dead nonterminals derive nothing
		if ga.first[s] == nil {
			ga.first[s] = iteratable.NewSet(0)
		}
	}
}

func (ga *LRAnalysis) firstTraverse(s Symbol, d int, nd map[Symbol]int, ms *[]Symbol) {
	*ms = append(*ms, s)
	nd[s] = d
	F := iteratable.NewSet(4)
	ga.first[s] = F
	for _, i := range ga.g.ntr[s] { // terminals directly at the front
		for _, y := range ga.g.rules[i].RHS {
			if ga.nullable[y] {
				continue
			}
			if ga.g.IsTerminal(y) {
				F.Add(y)
			}
			break
		}
	}
	for _, i := range ga.g.ntr[s] { // transitive closure over nonterminal fronts
		for _, y := range ga.g.rules[i].RHS {
			if ga.g.IsTerminal(y) {
				break
			}
			if ga.first[y] == nil {
				if len(ga.g.ntr[y]) > 0 {
					ga.firstTraverse(y, d+1, nd, ms)
				} else {
					ga.first[y] = iteratable.NewSet(0)
					nd[y] = -1
				}
			}
			if dy, ok := nd[y]; ok && dy != -1 && dy < nd[s] {
				nd[s] = dy
			}
			F.Union(ga.first[y])
			if !ga.nullable[y] {
				break
			}
		}
	}
	if nd[s] == d { // s heads a completed cycle (or is trivial)
		for {
			y := (*ms)[len(*ms)-1]
			*ms = (*ms)[:len(*ms)-1]
			if y == s {
				break
			}
			ga.first[y] = ga.first[s].Copy()
			nd[y] = -1
		}
		nd[s] = -1
	}
}

// --- FOLLOW ----------------------------------------------------------------

// Follow returns FOLLOW(sym) for a nonterminal: the set of terminals that
// can appear immediately to the right of sym in some sentential form.
// Callers must not modify the returned set.
func (ga *LRAnalysis) Follow(sym Symbol) *iteratable.Set {
	return ga.follow[sym]
}

func (ga *LRAnalysis) computeFollow() {
	ga.follow = make(map[Symbol]*iteratable.Set)
	for _, s := range ga.g.nonterminals {
		ga.follow[s] = iteratable.NewSet(4)
	}
	ga.follow[ga.g.start].Add(EndMark)
	for _, r := range ga.g.rules { // for A → α B β: FIRST(β) ⊆ FOLLOW(B)
		for i, sym := range r.RHS {
			if !ga.g.IsNonTerminal(sym) {
				continue
			}
			f, _ := ga.FirstOfSeq(r.RHS[i+1:])
			ga.follow[sym].Union(f)
		}
	}
	changed := true
	for changed {
		changed = false
		for _, r := range ga.g.rules {
			// For A → α B β with β nullable: FOLLOW(A) ⊆ FOLLOW(B). This must
			// hold for every trailing-nullable occurrence of a nonterminal,
			// not only the last rhs symbol.
			for k, sym := range r.RHS {
				if !ga.g.IsNonTerminal(sym) {
					continue
				}
				if !ga.NullableSeq(r.RHS[k+1:]) {
					continue
				}
				if ga.follow[sym].Union(ga.follow[r.LHS]) {
					changed = true
				}
			}
		}
	}
}

// --- Nonterminal transitive closure ----------------------------------------

// DerivContext captures the right context γ of a derivation s ⇒* A γ:
// FIRST(γ) and whether γ is nullable. LALR table construction does not use
// these contexts; it computes lookaheads from LR(1) closures of the kernel
// items.
type DerivContext struct {
	First    *iteratable.Set
	Nullable bool
}

// Equals makes DerivContext a value-comparable set element.
func (c *DerivContext) Equals(other interface{}) bool {
	o, ok := other.(*DerivContext)
	if !ok {
		return false
	}
	return c.Nullable == o.Nullable && c.First.Equals(o.First)
}

// CloseNT returns the nonterminal transitive closure of s: all nonterminals
// A with s ⇒* A γ for some γ, in deterministic discovery order. The closure
// is reflexive: s itself is always a member.
func (ga *LRAnalysis) CloseNT(s Symbol) []Symbol {
	return ga.closeNTTg[s]
}

// DerivContexts returns the set of *DerivContext observed for derivations
// s ⇒* target γ, or nil if target is not in CloseNT(s).
func (ga *LRAnalysis) DerivContexts(s, target Symbol) *iteratable.Set {
	m := ga.closeNT[s]
	if m == nil {
		return nil
	}
	return m[target]
}

func (ga *LRAnalysis) closeNTAdd(s, target Symbol, ctx *DerivContext) bool {
	m := ga.closeNT[s]
	if m == nil {
		m = make(map[Symbol]*iteratable.Set)
		ga.closeNT[s] = m
	}
	set := m[target]
	if set == nil {
		set = iteratable.NewSet(2)
		m[target] = set
		ga.closeNTTg[s] = append(ga.closeNTTg[s], target)
	}
	return set.Add(ctx)
}

func (ga *LRAnalysis) computeCloseNT() {
	ga.closeNT = make(map[Symbol]map[Symbol]*iteratable.Set)
	ga.closeNTTg = make(map[Symbol][]Symbol)
	empty := &DerivContext{First: iteratable.NewSet(0), Nullable: true}
	for _, s := range ga.g.nonterminals {
		ga.closeNTAdd(s, s, empty) // reflexive, γ = ε
	}
	changed := true
	for changed {
		changed = false
		for _, s := range ga.g.nonterminals {
			for _, i := range ga.g.ntr[s] {
				r := ga.g.rules[i].RHS
				for j, x := range r {
					if ga.g.IsTerminal(x) {
						break
					}
					f, n := ga.FirstOfSeq(r[j+1:])
					if ga.closeNTAdd(s, x, &DerivContext{First: f, Nullable: n}) {
						changed = true
					}
					for _, target := range ga.closeNTTg[x] { // compose x ⇒* A γ′
						for _, v := range ga.closeNT[x][target].Values() {
							inner := v.(*DerivContext)
							comb := &DerivContext{First: inner.First.Copy(), Nullable: inner.Nullable}
							if inner.Nullable {
								comb.First.Union(f)
								comb.Nullable = n
							}
							if ga.closeNTAdd(s, target, comb) {
								changed = true
							}
						}
					}
					if !ga.nullable[x] {
						break
					}
				}
			}
		}
	}
}

// --- Terminal derivability -------------------------------------------------

// DeriveTer returns the set of terminals that can appear as the first
// terminal of any derivation of sym. For a terminal t this is {t}.
// Callers must not modify the returned set.
func (ga *LRAnalysis) DeriveTer(sym Symbol) *iteratable.Set {
	return ga.deriveTer[sym]
}

func (ga *LRAnalysis) computeDeriveTer() {
	ga.deriveTer = make(map[Symbol]*iteratable.Set)
	for _, t := range ga.g.terminals {
		s := iteratable.NewSet(1)
		s.Add(t)
		ga.deriveTer[t] = s
	}
	for _, s := range ga.g.nonterminals {
		ga.deriveTer[s] = iteratable.NewSet(2)
	}
	changed := true
	for changed {
		changed = false
		for _, s := range ga.g.nonterminals {
			for _, i := range ga.g.ntr[s] {
				for _, x := range ga.g.rules[i].RHS {
					if ga.g.IsTerminal(x) {
						if ga.deriveTer[s].Add(x) {
							changed = true
						}
						break
					}
					if ga.deriveTer[s].Union(ga.deriveTer[x]) {
						changed = true
					}
					if !ga.nullable[x] {
						break
					}
				}
			}
		}
	}
}
