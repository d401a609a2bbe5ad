package ir

// BasicBlock is a straight-line instruction sequence ending in exactly
// one terminator. It is itself a use-def node: Branch/CondBranch
// operands name a BasicBlock as their target, and those uses are what
// CFG.Predecessors walks (spec.md §4.5).
type BasicBlock struct {
	Function *Function
	Name     string

	instrs []*Instruction
	uses   UseList
}

// Instructions returns the block's instructions in order, terminator last.
func (b *BasicBlock) Instructions() []*Instruction { return b.instrs }

// Terminator returns the block's terminator instruction, or nil if the
// block has not been terminated yet (only valid mid-construction).
func (b *BasicBlock) Terminator() *Instruction {
	if n := len(b.instrs); n > 0 && b.instrs[n-1].Kind.IsTerminator() {
		return b.instrs[n-1]
	}
	return nil
}

// append adds inst at the end of the block's instruction list.
func (b *BasicBlock) append(inst *Instruction) {
	b.instrs = append(b.instrs, inst)
}

// insertBefore inserts inst immediately before the instruction at
// position mark.
func (b *BasicBlock) insertBefore(mark *Instruction, inst *Instruction) {
	idx := b.indexOf(mark)
	b.instrs = append(b.instrs, nil)
	copy(b.instrs[idx+1:], b.instrs[idx:])
	b.instrs[idx] = inst
}

func (b *BasicBlock) indexOf(inst *Instruction) int {
	for i, in := range b.instrs {
		if in == inst {
			return i
		}
	}
	return -1
}

// remove deletes inst from the block's instruction list. Its operand
// use-edges must already have been cleared by the caller
// (Instruction.EraseFromParent does this).
func (b *BasicBlock) remove(inst *Instruction) {
	idx := b.indexOf(inst)
	if idx < 0 {
		return
	}
	b.instrs = append(b.instrs[:idx], b.instrs[idx+1:]...)
}

// Phis returns the contiguous run of Phi instructions at the start of
// the block (spec.md §3: "All phi instructions, if any, appear
// contiguously at the start").
func (b *BasicBlock) Phis() []*Instruction {
	var out []*Instruction
	for _, in := range b.instrs {
		if in.Kind != KindPhi {
			break
		}
		out = append(out, in)
	}
	return out
}

// Users returns every terminator instruction that branches to this
// block.
func (b *BasicBlock) Users() []*Instruction { return b.uses.Users() }

// Successors returns the blocks this block's terminator can transfer
// control to.
func (b *BasicBlock) Successors() []*BasicBlock {
	term := b.Terminator()
	if term == nil {
		return nil
	}
	switch term.Kind {
	case KindBranch:
		return []*BasicBlock{term.Target()}
	case KindCondBranch:
		return []*BasicBlock{term.Then(), term.Else()}
	default:
		return nil
	}
}

// Predecessors returns every block whose terminator targets this block,
// derived from the use-def edges rather than a maintained list (spec.md
// §4.5).
func (b *BasicBlock) Predecessors() []*BasicBlock {
	seen := make(map[*BasicBlock]bool)
	var out []*BasicBlock
	for _, term := range b.Users() {
		pred := term.Block
		if pred == nil || seen[pred] {
			continue
		}
		seen[pred] = true
		out = append(out, pred)
	}
	return out
}
