package lr

import (
	"github.com/npillmayer/yalr/lr/iteratable"
)

// LALR(1) table construction from kernel items with lookahead propagation
// (Aho, Sethi & Ullman, section 4.7, algorithm 4.13). Instead of
// materializing the canonical LR(1) states and merging them by core, the
// LR(0) kernels are enumerated and lookaheads are discovered per kernel item
// by closing it under a dummy lookahead: lookaheads equal to the dummy
// propagate along the goto edge, all others appear spontaneously.

// stateItem addresses a kernel item within a state.
type stateItem struct {
	state int
	item  Item
}

// buildLALR enumerates the LR(0) kernel sets, computes lookaheads by
// spontaneous generation plus propagation to a fixed point, then emits the
// table from LR(1) closures of the finished kernels.
func (lrgen *TableGenerator) buildLALR() error {
	k0 := newKernel()
	k0.add(StartItem(lrgen.g)).Add(EndMark) // $ is spontaneous for the start item
	s0 := lrgen.newState()
	s0.kernel = k0
	queue := []*tableState{s0}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		lrgen.g.EachSymbol(func(X Symbol) {
			nk := lrgen.ga.kernelGoto(s.kernel, X)
			if nk.Size() == 0 {
				return
			}
			snew := lrgen.findStateByKernelCore(nk)
			if snew == nil {
				snew = lrgen.newState()
				snew.kernel = nk
				queue = append(queue, snew)
			}
			lrgen.addEdge(s, snew, X)
		})
	}
	lrgen.computeLookaheads()
	return lrgen.emitLALR()
}

// computeLookaheads discovers spontaneous lookaheads and propagation links
// for all kernel items, then iterates propagation to a fixed point.
func (lrgen *TableGenerator) computeLookaheads() {
	props := make(map[stateItem][]stateItem)
	for _, s := range lrgen.byID {
		for _, k := range s.kernel.Items() {
			probe := newItemSet()
			probe.Add(LR1Item{Rule: k.Rule, Dot: k.Dot, Lookahead: DummyMark})
			J := lrgen.ga.closure1(probe)
			for _, v := range J.Values() {
				item := v.(LR1Item)
				X, ok := lrgen.g.SymbolAfterDot(item.Core())
				if !ok {
					continue
				}
				target, ok := lrgen.gotoRef[StateSym{State: s.ID, Sym: X}]
				if !ok {
					continue
				}
				advanced := Item{Rule: item.Rule, Dot: item.Dot + 1}
				if item.Lookahead == DummyMark {
					src := stateItem{state: s.ID, item: k}
					props[src] = append(props[src], stateItem{state: target, item: advanced})
				} else {
					lrgen.byID[target].kernel.add(advanced).Add(item.Lookahead)
				}
			}
		}
	}
	changed := true
	for changed {
		changed = false
		for _, s := range lrgen.byID {
			for _, k := range s.kernel.Items() {
				las := s.kernel.Lookaheads(k)
				for _, dst := range props[stateItem{state: s.ID, item: k}] {
					if lrgen.byID[dst.state].kernel.add(dst.item).Union(las) {
						changed = true
					}
				}
			}
		}
	}
}

// emitLALR writes ACTION and GOTO entries. Each state is re-closed as an
// LR(1) item set seeded with its kernel items and their final lookaheads,
// so reductions of epsilon-productions receive their lookaheads from the
// closure like any other item.
func (lrgen *TableGenerator) emitLALR() error {
	it := lrgen.states.Iterator()
	for it.Next() {
		s := it.Value().(*tableState)
		seed := newItemSet()
		for _, k := range s.kernel.Items() {
			for _, la := range s.kernel.Lookaheads(k).Values() {
				seed.Add(LR1Item{Rule: k.Rule, Dot: k.Dot, Lookahead: la.(Symbol)})
			}
		}
		closed := lrgen.ga.closure1(seed)
		if err := lrgen.emitLALRState(s, closed); err != nil {
			return err
		}
		lrgen.emitGotos(s)
	}
	return nil
}

func (lrgen *TableGenerator) emitLALRState(s *tableState, closed *iteratable.Set) error {
	for _, v := range closed.Values() {
		item := v.(LR1Item)
		A, ok := lrgen.g.SymbolAfterDot(item.Core())
		if ok {
			if !lrgen.g.IsTerminal(A) {
				continue
			}
			j, ok := lrgen.gotoRef[StateSym{State: s.ID, Sym: A}]
			if !ok {
				continue
			}
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
		if err := lrgen.addAction(s.ID, item.Lookahead, Action{Kind: Reduce, Arg: item.Rule}); err != nil {
			return err
		}
	}
	return nil
}
