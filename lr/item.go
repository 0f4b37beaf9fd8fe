package lr

import (
	"bytes"
	"fmt"

	"github.com/npillmayer/yalr/lr/iteratable"
)

// Item is an LR(0) item: a production with a dot marking parser progress,
// represented by the rule index and the dot position. Items are values and
// compare with ==.
type Item struct {
	Rule int
	Dot  int
}

// Advance moves the dot of an item one position to the right.
func (i Item) Advance() Item {
	return Item{Rule: i.Rule, Dot: i.Dot + 1}
}

// LR1Item is an LR(1) item: an LR(0) item carrying its own lookahead
// terminal.
type LR1Item struct {
	Rule      int
	Dot       int
	Lookahead Symbol
}

// Core returns the LR(0) item underlying an LR(1) item.
func (i LR1Item) Core() Item {
	return Item{Rule: i.Rule, Dot: i.Dot}
}

// Advance moves the dot one position to the right, keeping the lookahead.
func (i LR1Item) Advance() LR1Item {
	return LR1Item{Rule: i.Rule, Dot: i.Dot + 1, Lookahead: i.Lookahead}
}

// StartItem returns the item for the augmented start rule with the dot at
// position 0. Table construction begins here.
func StartItem(g *Grammar) Item {
	return Item{Rule: g.Size() - 1, Dot: 0}
}

// SymbolAfterDot returns the symbol immediately after the dot of an item,
// or ok=false if the dot is at the right end of the production.
func (g *Grammar) SymbolAfterDot(i Item) (Symbol, bool) {
	r := g.Rule(i.Rule)
	if r == nil || i.Dot >= len(r.RHS) {
		return "", false
	}
	return r.RHS[i.Dot], true
}

// ItemString formats an item with the dot spelled out, for diagnostics.
func (g *Grammar) ItemString(i Item) string {
	r := g.Rule(i.Rule)
	if r == nil {
		return fmt.Sprintf("<invalid item %v>", i)
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s ::=", r.LHS)
	for k, sym := range r.RHS {
		if k == i.Dot {
			b.WriteString(" ∘")
		}
		fmt.Fprintf(&b, " %s", sym)
	}
	if i.Dot == len(r.RHS) {
		b.WriteString(" ∘")
	}
	return b.String()
}

// newItemSet creates an empty set of items.
func newItemSet() *iteratable.Set {
	return iteratable.NewSet(8)
}

// --- Closure and goto-set operations ---------------------------------------

// Refer to "Compilers — Principles, Techniques and Tools" by Aho, Sethi &
// Ullman, sections 4.6 and 4.7, for the constructions below.

// closure0 computes the closure of a set of LR(0) items: for every item
// A → α ∘ B β in the set and every rule B → γ of the grammar, the item
// B → ∘ γ is added. A per-nonterminal expansion flag keeps this linear in
// |items|·|rules|.
func (ga *LRAnalysis) closure0(S *iteratable.Set) *iteratable.Set {
	C := S.Copy()
	expanded := make(map[Symbol]bool)
	C.IterateOnce()
	for C.Next() {
		item := C.Item().(Item)
		A, ok := ga.g.SymbolAfterDot(item)
		if !ok || ga.g.IsTerminal(A) || expanded[A] {
			continue
		}
		for _, ri := range ga.g.RulesFor(A) {
			C.Add(Item{Rule: ri, Dot: 0})
		}
		expanded[A] = true
	}
	return C
}

// goto0 computes goto(I, X) for LR(0) item sets: the closure of all items
// A → α X ∘ β such that A → α ∘ X β is in I.
func (ga *LRAnalysis) goto0(C *iteratable.Set, X Symbol) *iteratable.Set {
	G := iteratable.NewSet(4)
	for _, v := range C.Values() {
		item := v.(Item)
		if sym, ok := ga.g.SymbolAfterDot(item); ok && sym == X {
			G.Add(item.Advance())
		}
	}
	return ga.closure0(G)
}

// closure1 computes the closure of a set of LR(1) items: for every item
// [A → α ∘ B β, a] in the set, every rule B → γ and every terminal
// b ∈ FIRST(β a), the item [B → ∘ γ, b] is added. The iteration runs until
// no new (item, lookahead) pair appears.
func (ga *LRAnalysis) closure1(S *iteratable.Set) *iteratable.Set {
	C := S.Copy()
	C.IterateOnce()
	for C.Next() {
		item := C.Item().(LR1Item)
		B, ok := ga.g.SymbolAfterDot(item.Core())
		if !ok || ga.g.IsTerminal(B) {
			continue
		}
		tail := ga.g.Rule(item.Rule).RHS[item.Dot+1:]
		first, nullable := ga.FirstOfSeq(tail)
		las := first.Copy()
		if nullable {
			las.Add(item.Lookahead)
		}
		for _, ri := range ga.g.RulesFor(B) {
			for _, b := range las.Values() {
				C.Add(LR1Item{Rule: ri, Dot: 0, Lookahead: b.(Symbol)})
			}
		}
	}
	return C
}

// goto1 computes goto(I, X) for LR(1) item sets.
func (ga *LRAnalysis) goto1(C *iteratable.Set, X Symbol) *iteratable.Set {
	G := iteratable.NewSet(4)
	for _, v := range C.Values() {
		item := v.(LR1Item)
		if sym, ok := ga.g.SymbolAfterDot(item.Core()); ok && sym == X {
			G.Add(item.Advance())
		}
	}
	return ga.closure1(G)
}

// --- LALR kernels ----------------------------------------------------------

// Kernel is the LALR(1) kernel form of an item set: a mapping from LR(0)
// kernel items to their (growing) lookahead sets. The kernel of an item set
// contains only items whose dot is not at position 0, plus the augmented
// start item. Two kernels identify the same LALR state iff their item cores
// are equal; lookaheads are merged.
type Kernel struct {
	items []Item // insertion order
	las   map[Item]*iteratable.Set
}

func newKernel() *Kernel {
	return &Kernel{las: make(map[Item]*iteratable.Set)}
}

// add ensures an entry for item and returns its lookahead set.
func (k *Kernel) add(item Item) *iteratable.Set {
	if set, ok := k.las[item]; ok {
		return set
	}
	set := iteratable.NewSet(2)
	k.las[item] = set
	k.items = append(k.items, item)
	return set
}

// Items returns the kernel items in insertion order.
func (k *Kernel) Items() []Item {
	return k.items
}

// Lookaheads returns the lookahead set of item, or nil.
func (k *Kernel) Lookaheads(item Item) *iteratable.Set {
	return k.las[item]
}

// Size returns the number of kernel items.
func (k *Kernel) Size() int {
	return len(k.items)
}

// coreEquals compares two kernels by their item cores, ignoring lookaheads.
func (k *Kernel) coreEquals(other *Kernel) bool {
	if len(k.items) != len(other.items) {
		return false
	}
	for _, item := range k.items {
		if _, ok := other.las[item]; !ok {
			return false
		}
	}
	return true
}

// kernelGoto computes the kernel of goto(I, X) from the kernel of I: the
// LR(0) closure of the kernel items is advanced over X, and only items with
// the dot past position 0 survive — which is all of them, so the advanced
// set is the new kernel. The closure here is the canonical item-enumeration
// fixed point; shortcuts over derivability indexes tend to fabricate items
// reachable only through a reduction.
func (ga *LRAnalysis) kernelGoto(k *Kernel, X Symbol) *Kernel {
	S := newItemSet()
	for _, item := range k.Items() {
		S.Add(item)
	}
	C := ga.closure0(S)
	nk := newKernel()
	for _, v := range C.Values() {
		item := v.(Item)
		if sym, ok := ga.g.SymbolAfterDot(item); ok && sym == X {
			nk.add(item.Advance())
		}
	}
	return nk
}
