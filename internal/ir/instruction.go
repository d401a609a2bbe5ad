package ir

import (
	"github.com/cobra-lang/cobra/internal/diag"
	"github.com/cobra-lang/cobra/internal/value"
)

// Instruction is the single polymorphic IR node. Kind-specific payload
// fields are only meaningful for the kinds that use them; see kind.go.
type Instruction struct {
	Kind  Kind
	Block *BasicBlock
	Type  value.Type
	Range diag.Range

	operands []Operand
	uses     UseList

	// Kind-specific payload.
	Literal    *Literal  // KindLoadConst
	ParamIndex int       // KindLoadParam (1-based)
	BinOp      BinOp     // KindBinaryOp
	UnOp       UnOp      // KindUnaryOp
	PhiPreds   []*BasicBlock
	Callee     *Function // KindCall: resolved by name at generation time, not via an operand
	slotName   string    // KindAllocStack, for debug printing only

	// Reg is the physical register number internal/regalloc assigns to
	// this instruction's result (or -1 before allocation has run). It is
	// a plain field rather than a side map since every instruction
	// produces at most one value and needs at most one register.
	Reg int
}

// SlotName returns the debug name given to an AllocStack slot at
// creation time.
func (i *Instruction) SlotName() string { return i.slotName }

// NoReg marks an instruction result as not yet assigned a physical
// register.
const NoReg = -1

// Operand-position conventions, documented once here rather than on
// every kind: BinaryOp(lhs=0, rhs=1); UnaryOp(arg=0); Mov(src=0);
// LoadStack(addr=0); StoreStack(addr=0, value=1); Return(value=0,
// absent if NumOperands()==0); CondBranch(cond=0) with Then/Else as
// block operands 1/2; Branch with Target as block operand 0; Phi has
// one value operand per incoming edge, parallel to PhiPreds; Call has
// one value operand per argument, in call order, with the callee named
// directly by the Callee field rather than an operand (this language
// has no closures or first-class function values, so a call always
// resolves to a fixed *Function at generation time).

// Addr returns the address operand of a LoadStack/StoreStack/AllocStack
// reference (i.e. operand 0).
func (i *Instruction) Addr() *Instruction { return i.operands[0].Value() }

// StoredValue returns the value operand of a StoreStack (operand 1).
func (i *Instruction) StoredValue() *Instruction { return i.operands[1].Value() }

// Lhs returns operand 0 of a BinaryOp.
func (i *Instruction) Lhs() *Instruction { return i.operands[0].Value() }

// Rhs returns operand 1 of a BinaryOp.
func (i *Instruction) Rhs() *Instruction { return i.operands[1].Value() }

// Arg returns operand 0 of a UnaryOp or Mov.
func (i *Instruction) Arg() *Instruction { return i.operands[0].Value() }

// Cond returns the condition operand of a CondBranch.
func (i *Instruction) Cond() *Instruction { return i.operands[0].Value() }

// Target returns a Branch's single successor block.
func (i *Instruction) Target() *BasicBlock { return i.operands[0].Block() }

// Then returns a CondBranch's true-edge successor.
func (i *Instruction) Then() *BasicBlock { return i.operands[1].Block() }

// Else returns a CondBranch's false-edge successor.
func (i *Instruction) Else() *BasicBlock { return i.operands[2].Block() }

// Args returns a Call's argument values, in call order.
func (i *Instruction) Args() []*Instruction {
	args := make([]*Instruction, len(i.operands))
	for idx, op := range i.operands {
		args[idx] = op.Value()
	}
	return args
}

// ReturnValue returns the Return's operand, or nil for a bare return.
func (i *Instruction) ReturnValue() *Instruction {
	if len(i.operands) == 0 {
		return nil
	}
	return i.operands[0].Value()
}

// PhiIncoming returns the value coming in from predecessor block pred,
// or nil if pred is not (yet) one of the phi's recorded edges.
func (i *Instruction) PhiIncoming(pred *BasicBlock) *Instruction {
	for idx, p := range i.PhiPreds {
		if p == pred {
			return i.operands[idx].Value()
		}
	}
	return nil
}

// AddIncoming appends one (value, predecessor) pair to a Phi.
func (i *Instruction) AddIncoming(v *Instruction, pred *BasicBlock) {
	i.PhiPreds = append(i.PhiPreds, pred)
	i.AddValueOperand(v)
}

// RemoveIncoming drops the phi entry for predecessor pred, if present.
func (i *Instruction) RemoveIncoming(pred *BasicBlock) {
	for idx, p := range i.PhiPreds {
		if p == pred {
			i.RemoveOperand(idx)
			i.PhiPreds = append(i.PhiPreds[:idx], i.PhiPreds[idx+1:]...)
			return
		}
	}
}

func (i *Instruction) String() string {
	return instructionString(i)
}
