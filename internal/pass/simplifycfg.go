package pass

import "github.com/cobra-lang/cobra/internal/ir"

// SimplifyCFG folds a CondBranch whose condition is a literal boolean
// into an unconditional Branch, then removes blocks unreachable from
// the entry and drops any phi incoming-edges that named a removed
// predecessor, repeating to a fixed point since folding or removing one
// block can make another unreachable (spec.md §4.7).
type SimplifyCFG struct{}

func (*SimplifyCFG) Name() string { return "simplifycfg" }

func (s *SimplifyCFG) RunOnFunction(f *ir.Function) bool {
	changed := false
	for {
		folded := s.foldConstantBranches(f)
		if folded {
			changed = true
		}

		cfg := ir.BuildCFG(f)
		var dead []*ir.BasicBlock
		for _, b := range f.Blocks() {
			if !cfg.IsReachable(b) {
				dead = append(dead, b)
			}
		}
		if len(dead) == 0 && !folded {
			return changed
		}
		for _, b := range dead {
			s.removeBlock(f, b)
		}
		if len(dead) > 0 {
			changed = true
		}
	}
}

// foldConstantBranches rewrites every CondBranch whose condition is a
// literal boolean LoadConst into an unconditional Branch to the
// statically-selected target. This exposes the untaken arm as
// unreachable, which the dead-block sweep below then removes on the
// same (or next) trip through the loop, rather than requiring a
// separate constant-folding pass of its own.
func (s *SimplifyCFG) foldConstantBranches(f *ir.Function) bool {
	changed := false
	for _, b := range f.Blocks() {
		term := b.Terminator()
		if term == nil || term.Kind != ir.KindCondBranch {
			continue
		}
		cond := term.Cond()
		if cond.Kind != ir.KindLoadConst || cond.Literal.Kind != ir.LiteralBool {
			continue
		}

		taken, untaken := term.Else(), term.Then()
		if cond.Literal.Bool {
			taken, untaken = untaken, taken
		}

		r := term.Range
		term.EraseFromParent()
		// The folded-away edge no longer exists; any phi in the untaken
		// target still naming b as a predecessor must drop that entry,
		// whether or not untaken ends up fully unreachable.
		for _, phi := range untaken.Phis() {
			phi.RemoveIncoming(b)
		}

		bld := ir.NewBuilder(f.Module)
		bld.SetInsertionBlock(b)
		bld.CreateBranch(taken, r)
		changed = true
	}
	return changed
}

func (s *SimplifyCFG) removeBlock(f *ir.Function, b *ir.BasicBlock) {
	// Fix up any reachable block's phis that still reference b as a
	// predecessor before erasing b's own instructions, since erasing b's
	// terminator would otherwise leave a dangling PhiPreds entry pointing
	// at a block no longer in the function.
	for _, other := range f.Blocks() {
		if other == b {
			continue
		}
		for _, phi := range other.Phis() {
			phi.RemoveIncoming(b)
		}
	}

	instrs := b.Instructions()
	for i := len(instrs) - 1; i >= 0; i-- {
		instrs[i].EraseFromParent()
	}
	f.RemoveBlock(b)
}
