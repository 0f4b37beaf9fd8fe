package lr

// Canonical LR(1) table construction. Item sets carry a lookahead terminal
// per item; state equality is set equality over (item, lookahead) pairs.

// buildLR1 enumerates the canonical LR(1) item sets and emits the table:
// shift entries from the goto edges, a reduce entry per completed item at
// its own lookahead.
func (lrgen *TableGenerator) buildLR1() error {
	start := newItemSet()
	start.Add(LR1Item{Rule: lrgen.g.Size() - 1, Dot: 0, Lookahead: EndMark})
	s0 := lrgen.newState()
	s0.items = lrgen.ga.closure1(start)
	queue := []*tableState{s0}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		lrgen.g.EachSymbol(func(X Symbol) {
			gotoset := lrgen.ga.goto1(s.items, X)
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
			item := v.(LR1Item)
			A, ok := lrgen.g.SymbolAfterDot(item.Core())
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
			if err := lrgen.addAction(s.ID, item.Lookahead, Action{Kind: Reduce, Arg: item.Rule}); err != nil {
				return err
			}
		}
		lrgen.emitGotos(s)
	}
	return nil
}
