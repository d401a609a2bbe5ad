package ir

import "github.com/cobra-lang/cobra/internal/value"

// Param describes one formal parameter's name and static type.
type Param struct {
	Name string
	Type value.Type
}

// Function owns an insertion-ordered list of BasicBlocks, the first of
// which is the unique entry block with no predecessors reachable from
// within the function (spec.md §3).
type Function struct {
	Module     *Module
	Name       string
	Params     []Param
	ReturnType value.Type

	blocks []*BasicBlock
}

// Entry returns the function's entry block.
func (f *Function) Entry() *BasicBlock {
	if len(f.blocks) == 0 {
		return nil
	}
	return f.blocks[0]
}

// Blocks returns the function's blocks in insertion order.
func (f *Function) Blocks() []*BasicBlock { return f.blocks }

// CreateBasicBlock appends a new, empty block to the function.
func (f *Function) CreateBasicBlock(name string) *BasicBlock {
	b := &BasicBlock{Function: f, Name: name}
	f.blocks = append(f.blocks, b)
	return b
}

// RemoveBlock drops b from the function's block list. Callers
// (SimplifyCFG) are responsible for having already erased its
// instructions and detached it from any use lists.
func (f *Function) RemoveBlock(b *BasicBlock) {
	for i, bb := range f.blocks {
		if bb == b {
			f.blocks = append(f.blocks[:i], f.blocks[i+1:]...)
			return
		}
	}
}

// Instructions iterates every instruction in every block, in block
// order then intra-block order.
func (f *Function) Instructions() []*Instruction {
	var out []*Instruction
	for _, b := range f.blocks {
		out = append(out, b.instrs...)
	}
	return out
}
