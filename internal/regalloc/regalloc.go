// Package regalloc implements the linear-scan register allocator that
// turns a function's unbounded set of SSA values into a bounded set of
// frame registers for the register-windowed interpreter (spec.md §4.11,
// §4.12). It runs after the optimization pipeline in internal/pass and
// before internal/bytecode.
package regalloc

import (
	"sort"

	"github.com/cobra-lang/cobra/internal/diag"
	"github.com/cobra-lang/cobra/internal/ir"
)

// Result is the outcome of allocating one function: the number of
// registers its frame window needs. Individual assignments are recorded
// directly on each Instruction's Reg field, since every SSA value has at
// most one producer.
type Result struct {
	NumRegisters int
}

// Allocate runs the full pipeline - phi pre-lowering, liveness,
// interval construction, linear-scan assignment, and Mov elimination -
// over f, and returns the frame's required register count.
func Allocate(f *ir.Function) Result {
	classes := lowerPhis(f)
	points := number(f)
	liveIn, liveOut := liveness(f, classes, points)
	intervals := buildIntervals(f, classes, points, liveIn, liveOut)
	numRegs := assign(intervals)
	propagateRegs(f, classes)
	eliminateRedundantMovs(f)
	return Result{NumRegisters: numRegs}
}

// --- congruence classes (phi coalescing) ---------------------------------

// classes implements union-find over *ir.Instruction, used to force a
// Phi and the Movs its predecessors write through to share one register
// (spec.md §4.11 "phi coalescing").
type classes struct {
	parent map[*ir.Instruction]*ir.Instruction
}

func newClasses() *classes { return &classes{parent: make(map[*ir.Instruction]*ir.Instruction)} }

func (c *classes) find(i *ir.Instruction) *ir.Instruction {
	root, ok := c.parent[i]
	if !ok {
		c.parent[i] = i
		return i
	}
	if root == i {
		return i
	}
	found := c.find(root)
	c.parent[i] = found
	return found
}

func (c *classes) union(a, b *ir.Instruction) {
	ra, rb := c.find(a), c.find(b)
	if ra != rb {
		c.parent[rb] = ra
	}
}

// lowerPhis replaces every phi's cross-block operands with a Mov
// inserted at the end of the corresponding predecessor (immediately
// before its terminator), and unions the phi with every Mov it now
// reads from. The phi instruction itself is left in the IR: it
// produces no bytecode of its own (internal/bytecode skips it), but
// its Reg field - shared with its Movs via the congruence class - is
// still what later instructions read.
func lowerPhis(f *ir.Function) *classes {
	c := newClasses()
	for _, b := range f.Blocks() {
		for _, phi := range b.Phis() {
			for idx, pred := range append([]*ir.BasicBlock(nil), phi.PhiPreds...) {
				incoming := phi.Operand(idx).Value()
				mov := insertMovBeforeTerminator(pred, incoming)
				phi.SetValueOperand(idx, mov)
				c.union(phi, mov)
			}
		}
	}
	return c
}

func insertMovBeforeTerminator(pred *ir.BasicBlock, src *ir.Instruction) *ir.Instruction {
	bld := ir.NewBuilder(pred.Function.Module)
	term := pred.Terminator()
	bld.SetInsertionPoint(term)
	return bld.CreateMov(src, diag.Range{})
}

// --- numbering ------------------------------------------------------------

// numbering assigns a dense per-instruction program counter in
// reverse-postorder block order, the order every dataflow computation
// below iterates in.
type numbering struct {
	index  map[*ir.Instruction]int
	blocks []*ir.BasicBlock
	// span(b) = [start, end) instruction-count range for block b.
	blockStart map[*ir.BasicBlock]int
	blockEnd   map[*ir.BasicBlock]int
}

func number(f *ir.Function) *numbering {
	cfg := ir.BuildCFG(f)
	rpo := cfg.ReversePostorder()
	n := &numbering{
		index:      make(map[*ir.Instruction]int),
		blocks:     rpo,
		blockStart: make(map[*ir.BasicBlock]int),
		blockEnd:   make(map[*ir.BasicBlock]int),
	}
	i := 0
	for _, b := range rpo {
		n.blockStart[b] = i
		for _, in := range b.Instructions() {
			n.index[in] = i
			i++
		}
		n.blockEnd[b] = i
	}
	return n
}

// --- liveness ---------------------------------------------------------------

type classSet map[*ir.Instruction]bool

func liveness(f *ir.Function, c *classes, n *numbering) (liveIn, liveOut map[*ir.BasicBlock]classSet) {
	liveIn = make(map[*ir.BasicBlock]classSet)
	liveOut = make(map[*ir.BasicBlock]classSet)
	ueVar := make(map[*ir.BasicBlock]classSet)
	varKill := make(map[*ir.BasicBlock]classSet)

	for _, b := range n.blocks {
		ue := classSet{}
		kill := classSet{}
		for _, in := range b.Instructions() {
			// A phi's operands are bookkeeping pointing at the movs its
			// predecessors now write through (lowerPhis), not real uses
			// within this block - counting them would self-reference the
			// phi's own congruence class. The movs themselves are
			// ordinary uses, counted in their own (predecessor) blocks.
			if in.Kind != ir.KindPhi {
				for _, op := range in.Operands() {
					if v := op.Value(); v != nil {
						cls := c.find(v)
						if !kill[cls] {
							ue[cls] = true
						}
					}
				}
			}
			if producesValue(in) {
				kill[c.find(in)] = true
			}
		}
		ueVar[b] = ue
		varKill[b] = kill
		liveIn[b] = classSet{}
		liveOut[b] = classSet{}
	}

	changed := true
	for changed {
		changed = false
		for i := len(n.blocks) - 1; i >= 0; i-- {
			b := n.blocks[i]
			out := classSet{}
			for _, s := range b.Successors() {
				for cls := range liveIn[s] {
					out[cls] = true
				}
			}
			in := classSet{}
			for cls := range ueVar[b] {
				in[cls] = true
			}
			for cls := range out {
				if !varKill[b][cls] {
					in[cls] = true
				}
			}
			if !setsEqual(in, liveIn[b]) || !setsEqual(out, liveOut[b]) {
				liveIn[b] = in
				liveOut[b] = out
				changed = true
			}
		}
	}
	return liveIn, liveOut
}

func setsEqual(a, b classSet) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// producesValue reports whether in defines a value other instructions
// can use as an operand. Every kind except the void/control ones does;
// StoreStack and the terminators produce no value.
func producesValue(in *ir.Instruction) bool {
	switch in.Kind {
	case ir.KindStoreStack, ir.KindBranch, ir.KindCondBranch, ir.KindReturn:
		return false
	default:
		return true
	}
}

// --- interval construction ---------------------------------------------

type interval struct {
	class *ir.Instruction
	start int
	end   int
}

// buildIntervals derives one conservative [start, end] live range per
// congruence class by scanning, for every block, whether the class is
// live-in, live-out, or locally defined/used, and widening the interval
// to cover the block's point range accordingly. This slightly
// overestimates true liveness across branches that never jointly
// execute (acceptable: this compiler has no loops, so the CFG is a DAG
// and reverse-postorder numbering keeps each class's true live range
// contiguous), trading a little register pressure for a much simpler
// implementation than full hole-aware intervals.
func buildIntervals(f *ir.Function, c *classes, n *numbering, liveIn, liveOut map[*ir.BasicBlock]classSet) []*interval {
	byClass := make(map[*ir.Instruction]*interval)
	touch := func(cls *ir.Instruction, point int) {
		iv, ok := byClass[cls]
		if !ok {
			iv = &interval{class: cls, start: point, end: point}
			byClass[cls] = iv
			return
		}
		if point < iv.start {
			iv.start = point
		}
		if point > iv.end {
			iv.end = point
		}
	}

	for _, b := range n.blocks {
		start, end := n.blockStart[b], n.blockEnd[b]
		for cls := range liveIn[b] {
			touch(cls, start)
		}
		for cls := range liveOut[b] {
			touch(cls, end-1)
		}
		for _, in := range b.Instructions() {
			if producesValue(in) {
				touch(c.find(in), n.index[in])
			}
			if in.Kind != ir.KindPhi {
				for _, op := range in.Operands() {
					if v := op.Value(); v != nil {
						touch(c.find(v), n.index[in])
					}
				}
			}
		}
	}

	out := make([]*interval, 0, len(byClass))
	for _, iv := range byClass {
		out = append(out, iv)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].start != out[j].start {
			return out[i].start < out[j].start
		}
		return n.index[out[i].class] < n.index[out[j].class]
	})
	return out
}

// --- assignment -------------------------------------------------------------

// assign runs linear-scan proper: sweep intervals in start order, expire
// active intervals whose end precedes the new interval's start back into
// a free register pool, and hand out the lowest free register number (or
// mint a new one if the pool is empty). The register-windowed
// interpreter has no fixed register file size, so there is no spill
// case - every function's window is exactly as large as its own peak
// concurrent live-value count.
func assign(intervals []*interval) int {
	type activeEntry struct {
		iv  *interval
		reg int
	}
	var active []activeEntry
	var freePool []int
	nextReg := 0

	for _, iv := range intervals {
		var stillActive []activeEntry
		for _, a := range active {
			if a.iv.end < iv.start {
				freePool = append(freePool, a.reg)
			} else {
				stillActive = append(stillActive, a)
			}
		}
		active = stillActive
		sort.Ints(freePool)

		var reg int
		if len(freePool) > 0 {
			reg = freePool[0]
			freePool = freePool[1:]
		} else {
			reg = nextReg
			nextReg++
		}
		iv.class.Reg = reg
		active = append(active, activeEntry{iv: iv, reg: reg})
	}
	return nextReg
}

// propagateRegs copies each congruence class's assigned register (set
// on the class's union-find root by assign) onto every member
// instruction, since only the root's Reg field was written.
func propagateRegs(f *ir.Function, c *classes) {
	for _, b := range f.Blocks() {
		for _, in := range b.Instructions() {
			if producesValue(in) {
				in.Reg = c.find(in).Reg
			}
		}
	}
}

// --- Mov elimination --------------------------------------------------------

// eliminateRedundantMovs drops Mov instructions whose source already
// lives in the same physical register as the Mov's own destination -
// the common case for a phi-lowering Mov whose incoming value was itself
// assigned the phi's register by a lucky (or coalescing-driven) choice
// (spec.md §4.12).
func eliminateRedundantMovs(f *ir.Function) {
	for _, b := range f.Blocks() {
		for _, in := range append([]*ir.Instruction(nil), b.Instructions()...) {
			if in.Kind != ir.KindMov {
				continue
			}
			if in.Reg == in.Arg().Reg {
				in.ReplaceAllUsesWith(in.Arg())
				in.EraseFromParent()
			}
		}
	}
}
