package interp

import (
	"github.com/cobra-lang/cobra/internal/bytecode"
	"github.com/cobra-lang/cobra/internal/value"
)

// frame is one register-windowed activation record (spec.md §4.15): a
// register file sized to its function's peak live-value count (per
// internal/regalloc, no fixed-size register file to spill against), the
// incoming argument values OpLoadParam reads from, and a link to the
// caller's frame.
type frame struct {
	fn     *bytecode.Function
	regs   []value.Value
	params []value.Value
	ip     int

	prev   *frame // restored by Ret's caller, spec.md §4.15
	dstReg int    // register in prev that receives this frame's return value
	depth  int
}

func newFrame(fn *bytecode.Function, params []value.Value, prev *frame, dstReg int) *frame {
	regs := make([]value.Value, fn.NumRegisters)
	for i := range regs {
		// Empty is only ever observable inside a not-yet-written
		// register slot (spec.md §3 invariant ii); every register
		// starts this way until its defining instruction runs, which
		// Mem2Reg/regalloc guarantee happens before any use.
		regs[i] = value.Empty()
	}
	depth := 1
	if prev != nil {
		depth = prev.depth + 1
	}
	return &frame{fn: fn, regs: regs, params: params, prev: prev, dstReg: dstReg, depth: depth}
}

// param returns the idx'th incoming argument, or Undefined if the call
// site didn't supply enough arguments (spec.md §4.15: "argument count
// mismatch: extra registers read as undefined").
func (f *frame) param(idx int) value.Value {
	if idx < 0 || idx >= len(f.params) {
		return value.Undefined()
	}
	return f.params[idx]
}
