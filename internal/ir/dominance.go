package ir

// DomTree is a function's dominator tree plus dominance frontiers,
// computed with the Cooper-Harvey-Kennedy iterative algorithm over the
// CFG's reverse-postorder numbering (spec.md §4.5). Built fresh whenever
// a pass needs it; never kept up to date incrementally.
type DomTree struct {
	cfg      *CFG
	idom     map[*BasicBlock]*BasicBlock
	frontier map[*BasicBlock][]*BasicBlock
}

// BuildDomTree computes the dominator tree for fn. fn must have had
// SimplifyCFG's unreachable-block removal applied already, or
// unreachable blocks are simply left out (their idom is nil).
func BuildDomTree(fn *Function) *DomTree {
	cfg := BuildCFG(fn)
	rpo := cfg.ReversePostorder()
	d := &DomTree{cfg: cfg, idom: make(map[*BasicBlock]*BasicBlock)}
	if len(rpo) == 0 {
		return d
	}
	entry := rpo[0]
	d.idom[entry] = entry

	changed := true
	for changed {
		changed = false
		for _, b := range rpo[1:] {
			preds := cfg.ReachablePredecessors(b)
			var newIdom *BasicBlock
			for _, p := range preds {
				if _, ok := d.idom[p]; !ok {
					continue
				}
				if newIdom == nil {
					newIdom = p
					continue
				}
				newIdom = d.intersect(newIdom, p)
			}
			if newIdom == nil {
				continue
			}
			if d.idom[b] != newIdom {
				d.idom[b] = newIdom
				changed = true
			}
		}
	}
	d.idom[entry] = nil // entry has no strict dominator; drop the self-loop bookkeeping value

	d.computeFrontiers(rpo)
	return d
}

func (d *DomTree) intersect(a, b *BasicBlock) *BasicBlock {
	for a != b {
		for d.cfg.RPONumber(a) > d.cfg.RPONumber(b) {
			a = d.idom[a]
		}
		for d.cfg.RPONumber(b) > d.cfg.RPONumber(a) {
			b = d.idom[b]
		}
	}
	return a
}

func (d *DomTree) computeFrontiers(rpo []*BasicBlock) {
	d.frontier = make(map[*BasicBlock][]*BasicBlock)
	for _, b := range rpo {
		preds := d.cfg.ReachablePredecessors(b)
		if len(preds) < 2 {
			continue
		}
		idomB := d.idom[b]
		for _, p := range preds {
			runner := p
			for runner != idomB && runner != nil {
				d.frontier[runner] = appendIfMissing(d.frontier[runner], b)
				runner = d.idom[runner]
			}
		}
	}
}

func appendIfMissing(list []*BasicBlock, b *BasicBlock) []*BasicBlock {
	for _, existing := range list {
		if existing == b {
			return list
		}
	}
	return append(list, b)
}

// IDom returns b's immediate dominator, or nil for the entry block or
// for a block unreachable from it.
func (d *DomTree) IDom(b *BasicBlock) *BasicBlock { return d.idom[b] }

// Dominates reports whether a dominates b (every path from the entry to
// b passes through a), inclusive of a == b.
func (d *DomTree) Dominates(a, b *BasicBlock) bool {
	if _, ok := d.idom[b]; !ok {
		return false
	}
	for cur := b; cur != nil; cur = d.idom[cur] {
		if cur == a {
			return true
		}
	}
	return false
}

// Frontier returns b's dominance frontier: every block where b's
// dominance stops, i.e. b dominates a predecessor of the block but does
// not strictly dominate the block itself.
func (d *DomTree) Frontier(b *BasicBlock) []*BasicBlock { return d.frontier[b] }

// Children returns every block whose immediate dominator is b.
func (d *DomTree) Children(b *BasicBlock) []*BasicBlock {
	var out []*BasicBlock
	for _, rb := range d.cfg.ReversePostorder() {
		if rb != b && d.idom[rb] == b {
			out = append(out, rb)
		}
	}
	return out
}
