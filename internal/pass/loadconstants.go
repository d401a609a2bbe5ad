package pass

import (
	"github.com/cobra-lang/cobra/internal/diag"
	"github.com/cobra-lang/cobra/internal/ir"
)

// LoadConstants canonicalizes LoadConst instructions: every distinct
// literal gets exactly one LoadConst in the entry block, and every use
// of a duplicate is rewritten to the canonical instruction (spec.md
// §4.10). irgen emits one LoadConst per literal occurrence in source,
// in whatever block that occurrence sits, so on irgen output this pass
// both merges repeated literals and hoists every literal load found
// outside the entry block into it.
type LoadConstants struct{}

func (*LoadConstants) Name() string { return "load-constants" }

func (p *LoadConstants) RunOnFunction(f *ir.Function) bool {
	entry := f.Entry()
	if entry == nil {
		return false
	}
	canonical := make(map[*ir.Literal]*ir.Instruction)
	changed := false

	for _, b := range f.Blocks() {
		for _, in := range append([]*ir.Instruction(nil), b.Instructions()...) {
			if in.Kind != ir.KindLoadConst {
				continue
			}
			if existing, ok := canonical[in.Literal]; ok {
				if existing == in {
					continue
				}
				in.ReplaceAllUsesWith(existing)
				in.EraseFromParent()
				changed = true
				continue
			}
			if in.Block == entry {
				canonical[in.Literal] = in
				continue
			}
			// First sighting is outside the entry block: hoist a fresh
			// canonical load into the entry instead of moving this one,
			// since moving would require re-validating dominance of any
			// later instructions that used its old position.
			b2 := ir.NewBuilder(f.Module)
			if len(entry.Instructions()) > 0 {
				b2.SetInsertionPoint(entry.Instructions()[0])
			} else {
				b2.SetInsertionBlock(entry)
			}
			hoisted := b2.CreateLoadConst(in.Literal, diag.Range{})
			canonical[in.Literal] = hoisted
			in.ReplaceAllUsesWith(hoisted)
			in.EraseFromParent()
			changed = true
		}
	}
	return changed
}

// LoadParameters canonicalizes LoadParam instructions the same way: one
// per parameter index, placed at the start of the entry block.
type LoadParameters struct{}

func (*LoadParameters) Name() string { return "load-parameters" }

func (p *LoadParameters) RunOnFunction(f *ir.Function) bool {
	entry := f.Entry()
	if entry == nil {
		return false
	}
	canonical := make(map[int]*ir.Instruction)
	changed := false

	for _, b := range f.Blocks() {
		for _, in := range append([]*ir.Instruction(nil), b.Instructions()...) {
			if in.Kind != ir.KindLoadParam {
				continue
			}
			if existing, ok := canonical[in.ParamIndex]; ok {
				if existing == in {
					continue
				}
				in.ReplaceAllUsesWith(existing)
				in.EraseFromParent()
				changed = true
				continue
			}
			if in.Block == entry {
				canonical[in.ParamIndex] = in
				continue
			}
			b2 := ir.NewBuilder(f.Module)
			if len(entry.Instructions()) > 0 {
				b2.SetInsertionPoint(entry.Instructions()[0])
			} else {
				b2.SetInsertionBlock(entry)
			}
			hoisted := b2.CreateLoadParam(in.ParamIndex, in.Type, diag.Range{})
			canonical[in.ParamIndex] = hoisted
			in.ReplaceAllUsesWith(hoisted)
			in.EraseFromParent()
			changed = true
		}
	}
	return changed
}
