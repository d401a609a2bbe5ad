package pass

import (
	"github.com/cobra-lang/cobra/internal/diag"
	"github.com/cobra-lang/cobra/internal/ir"
	"github.com/cobra-lang/cobra/internal/value"
)

// Mem2Reg promotes AllocStack slots with no address-taking uses into
// pure SSA values, inserting phi nodes at the iterated dominance
// frontier of each slot's store set and then renaming loads/stores to
// direct value uses (the classic Cytron et al. construction, spec.md
// §4.8).
type Mem2Reg struct{}

func (*Mem2Reg) Name() string { return "mem2reg" }

func (m *Mem2Reg) RunOnFunction(f *ir.Function) bool {
	slots := promotableSlots(f)
	if len(slots) == 0 {
		return false
	}

	dt := ir.BuildDomTree(f)
	for _, slot := range slots {
		m.promote(f, dt, slot)
	}
	return true
}

// promotableSlots returns every AllocStack instruction whose only uses
// are as the address operand of a LoadStack or StoreStack - i.e. the
// slot's address never escapes - which is true of every slot irgen
// emits, since this IR has no address-of or pointer-arithmetic
// instructions.
func promotableSlots(f *ir.Function) []*ir.Instruction {
	var out []*ir.Instruction
	for _, b := range f.Blocks() {
		for _, in := range b.Instructions() {
			if in.Kind != ir.KindAllocStack {
				continue
			}
			if isPromotable(in) {
				out = append(out, in)
			}
		}
	}
	return out
}

func isPromotable(slot *ir.Instruction) bool {
	for _, user := range slot.Users() {
		switch user.Kind {
		case ir.KindLoadStack:
			if user.Addr() != slot {
				return false
			}
		case ir.KindStoreStack:
			if user.Addr() != slot {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func (m *Mem2Reg) promote(f *ir.Function, dt *ir.DomTree, slot *ir.Instruction) {
	defBlocks := storeBlocks(slot)
	phiBlocks := iteratedDominanceFrontier(dt, defBlocks)

	phis := make(map[*ir.BasicBlock]*ir.Instruction, len(phiBlocks))
	b := ir.NewBuilder(slot.Block.Function.Module)
	for bb := range phiBlocks {
		if mark := firstNonPhi(bb); mark != nil {
			b.SetInsertionPoint(mark)
		} else {
			b.SetInsertionBlock(bb)
		}
		phi := b.CreatePhi(slot.Type, diag.Range{})
		phis[bb] = phi
	}

	renamer := &mem2regRenamer{dt: dt, slot: slot, phis: phis, undef: make(map[*ir.Function]*ir.Instruction)}
	renamer.run(f.Entry(), nil)

	// Every reachable predecessor of a phi's block adds its incoming edge
	// when the renamer visits it. Phis left with zero users are removed
	// by DCE on the pipeline's next fixed-point iteration.
	slot.EraseFromParent()
}

func firstNonPhi(b *ir.BasicBlock) *ir.Instruction {
	for _, in := range b.Instructions() {
		if in.Kind != ir.KindPhi {
			return in
		}
	}
	// Block is empty or all-phi (e.g. an empty join block whose only
	// content will be this new phi); insert at the end by creating a
	// temporary cursor positioned nowhere, handled by callers via
	// SetInsertionBlock instead when this returns nil.
	return nil
}

func storeBlocks(slot *ir.Instruction) map[*ir.BasicBlock]bool {
	out := make(map[*ir.BasicBlock]bool)
	for _, user := range slot.Users() {
		if user.Kind == ir.KindStoreStack {
			out[user.Block] = true
		}
	}
	return out
}

func iteratedDominanceFrontier(dt *ir.DomTree, defBlocks map[*ir.BasicBlock]bool) map[*ir.BasicBlock]bool {
	out := make(map[*ir.BasicBlock]bool)
	worklist := make([]*ir.BasicBlock, 0, len(defBlocks))
	for b := range defBlocks {
		worklist = append(worklist, b)
	}
	for len(worklist) > 0 {
		b := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, fb := range dt.Frontier(b) {
			if !out[fb] {
				out[fb] = true
				worklist = append(worklist, fb)
			}
		}
	}
	return out
}

// mem2regRenamer walks the dominator tree once, maintaining the current
// SSA value for the one slot being promoted.
type mem2regRenamer struct {
	dt    *ir.DomTree
	slot  *ir.Instruction
	phis  map[*ir.BasicBlock]*ir.Instruction
	undef map[*ir.Function]*ir.Instruction
}

func (r *mem2regRenamer) defaultValue(b *ir.BasicBlock) *ir.Instruction {
	fn := b.Function
	if in, ok := r.undef[fn]; ok {
		return in
	}
	entry := fn.Entry()
	bld := ir.NewBuilder(fn.Module)
	bld.SetInsertionBlock(entry)
	var lit *ir.Literal
	switch {
	case r.slot.Type == value.TypeNumber:
		lit = bld.NumberLiteral(0)
	case r.slot.Type == value.TypeBoolean:
		lit = bld.BoolLiteral(false)
	default:
		lit = bld.UndefinedLiteral()
	}
	// Insert at the very start of entry so it dominates everything.
	if len(entry.Instructions()) > 0 {
		bld.SetInsertionPoint(entry.Instructions()[0])
	}
	in := bld.CreateLoadConst(lit, diag.Range{})
	r.undef[fn] = in
	return in
}

func (r *mem2regRenamer) run(b *ir.BasicBlock, current *ir.Instruction) {
	if phi, ok := r.phis[b]; ok {
		current = phi
	}

	for _, in := range append([]*ir.Instruction(nil), b.Instructions()...) {
		switch in.Kind {
		case ir.KindLoadStack:
			if in.Addr() != r.slot {
				continue
			}
			val := current
			if val == nil {
				val = r.defaultValue(b)
			}
			in.ReplaceAllUsesWith(val)
			in.EraseFromParent()
		case ir.KindStoreStack:
			if in.Addr() != r.slot {
				continue
			}
			current = in.StoredValue()
			in.EraseFromParent()
		}
	}

	for _, succ := range b.Successors() {
		if phi, ok := r.phis[succ]; ok {
			val := current
			if val == nil {
				val = r.defaultValue(b)
			}
			if phi.PhiIncoming(b) == nil {
				phi.AddIncoming(val, b)
			}
		}
	}

	for _, child := range r.dt.Children(b) {
		r.run(child, current)
	}
}
