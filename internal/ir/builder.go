package ir

import (
	"github.com/cobra-lang/cobra/internal/diag"
	"github.com/cobra-lang/cobra/internal/strtab"
	"github.com/cobra-lang/cobra/internal/value"
)

// Builder is a stateful insertion cursor over a Module: {function, block,
// position}. Every Create* method appends at the cursor (or inserts
// before the position instruction, if one is set) and registers
// use-def edges for any value operands (spec.md §4.3).
type Builder struct {
	Module *Module

	fn       *Function
	block    *BasicBlock
	position *Instruction // if non-nil, new instructions insert before this one
}

// NewBuilder returns a builder over m with no insertion point set.
func NewBuilder(m *Module) *Builder { return &Builder{Module: m} }

// CreateFunction declares a new function and returns it without
// changing the insertion point.
func (b *Builder) CreateFunction(name string) *Function { return b.Module.CreateFunction(name) }

// CreateBasicBlock appends a new block to fn.
func (b *Builder) CreateBasicBlock(fn *Function, name string) *BasicBlock {
	return fn.CreateBasicBlock(name)
}

// SetInsertionBlock points the cursor at the end of block bb.
func (b *Builder) SetInsertionBlock(bb *BasicBlock) {
	b.block = bb
	b.fn = bb.Function
	b.position = nil
}

// SetInsertionPoint points the cursor immediately before inst, within
// its owning block.
func (b *Builder) SetInsertionPoint(inst *Instruction) {
	b.block = inst.Block
	b.fn = inst.Block.Function
	b.position = inst
}

// Block returns the block the cursor is currently appending to.
func (b *Builder) Block() *BasicBlock { return b.block }

func (b *Builder) emit(inst *Instruction) *Instruction {
	inst.Block = b.block
	inst.Reg = NoReg
	if b.position != nil {
		b.block.insertBefore(b.position, inst)
	} else {
		b.block.append(inst)
	}
	return inst
}

// literal factories - memoized by value within the module (spec.md §4.3).

func (b *Builder) NumberLiteral(v float64) *Literal {
	return b.Module.internLiteral(Literal{Kind: LiteralNumber, Number: v})
}

func (b *Builder) BoolLiteral(v bool) *Literal {
	return b.Module.internLiteral(Literal{Kind: LiteralBool, Bool: v})
}

func (b *Builder) StringLiteral(s *strtab.UniqueString) *Literal {
	return b.Module.internLiteral(Literal{Kind: LiteralString, Str: s})
}

func (b *Builder) UndefinedLiteral() *Literal {
	return b.Module.internLiteral(Literal{Kind: LiteralUndefined})
}

func (b *Builder) NullLiteral() *Literal {
	return b.Module.internLiteral(Literal{Kind: LiteralNull})
}

func (b *Builder) EmptyLiteral() *Literal {
	return b.Module.internLiteral(Literal{Kind: LiteralEmpty})
}

func (b *Builder) literalType(l *Literal) value.Type {
	switch l.Kind {
	case LiteralNumber:
		return value.TypeNumber
	case LiteralBool:
		return value.TypeBoolean
	case LiteralString:
		return value.TypeString
	case LiteralUndefined:
		return value.TypeUndefined
	case LiteralNull:
		return value.TypeNull
	case LiteralEmpty:
		return value.TypeEmpty
	default:
		return value.Any
	}
}

// CreateLoadConst emits a LoadConst instruction carrying l.
func (b *Builder) CreateLoadConst(l *Literal, r diag.Range) *Instruction {
	inst := &Instruction{Kind: KindLoadConst, Literal: l, Type: b.literalType(l), Range: r}
	return b.emit(inst)
}

// CreateLoadParam emits a LoadParam instruction for the idx'th (1-based)
// parameter.
func (b *Builder) CreateLoadParam(idx int, typ value.Type, r diag.Range) *Instruction {
	inst := &Instruction{Kind: KindLoadParam, ParamIndex: idx, Type: typ, Range: r}
	return b.emit(inst)
}

// CreateAllocStack emits a stack slot allocation.
func (b *Builder) CreateAllocStack(name string, typ value.Type, r diag.Range) *Instruction {
	inst := &Instruction{Kind: KindAllocStack, Type: typ, Range: r}
	inst.slotName = name
	return b.emit(inst)
}

// CreateLoadStack emits a load of the value currently stored at addr.
func (b *Builder) CreateLoadStack(addr *Instruction, r diag.Range) *Instruction {
	inst := &Instruction{Kind: KindLoadStack, Type: addr.Type, Range: r}
	b.emit(inst)
	inst.SetValueOperand(0, addr)
	return inst
}

// CreateStoreStack emits a store of val to addr.
func (b *Builder) CreateStoreStack(addr, val *Instruction, r diag.Range) *Instruction {
	inst := &Instruction{Kind: KindStoreStack, Type: value.TypeUndefined, Range: r}
	b.emit(inst)
	inst.SetValueOperand(0, addr)
	inst.SetValueOperand(1, val)
	return inst
}

// CreateBinaryOp emits a binary arithmetic/comparison instruction.
func (b *Builder) CreateBinaryOp(op BinOp, lhs, rhs *Instruction, r diag.Range) *Instruction {
	typ := value.Any
	if op == OpEq || op == OpNeq || op == OpLt || op == OpLe || op == OpGt || op == OpGe {
		typ = value.TypeBoolean
	}
	inst := &Instruction{Kind: KindBinaryOp, BinOp: op, Type: typ, Range: r}
	b.emit(inst)
	inst.SetValueOperand(0, lhs)
	inst.SetValueOperand(1, rhs)
	return inst
}

// CreateUnaryOp emits a unary instruction.
func (b *Builder) CreateUnaryOp(op UnOp, arg *Instruction, r diag.Range) *Instruction {
	typ := value.Any
	if op == OpNot {
		typ = value.TypeBoolean
	}
	inst := &Instruction{Kind: KindUnaryOp, UnOp: op, Type: typ, Range: r}
	b.emit(inst)
	inst.SetValueOperand(0, arg)
	return inst
}

// CreateMov emits a register-to-register copy of src.
func (b *Builder) CreateMov(src *Instruction, r diag.Range) *Instruction {
	inst := &Instruction{Kind: KindMov, Type: src.Type, Range: r}
	b.emit(inst)
	inst.SetValueOperand(0, src)
	return inst
}

// CreateBranch emits an unconditional branch to target.
func (b *Builder) CreateBranch(target *BasicBlock, r diag.Range) *Instruction {
	inst := &Instruction{Kind: KindBranch, Range: r}
	b.emit(inst)
	inst.SetBlockOperand(0, target)
	return inst
}

// CreateCondBranch emits a conditional branch.
func (b *Builder) CreateCondBranch(cond *Instruction, then, els *BasicBlock, r diag.Range) *Instruction {
	inst := &Instruction{Kind: KindCondBranch, Range: r}
	b.emit(inst)
	inst.SetValueOperand(0, cond)
	inst.SetBlockOperand(1, then)
	inst.SetBlockOperand(2, els)
	return inst
}

// CreateReturn emits a return. val may be nil for a bare return (irgen
// always supplies an Undefined load per spec.md §4.4, but the IR itself
// allows a value-less Return).
func (b *Builder) CreateReturn(val *Instruction, r diag.Range) *Instruction {
	inst := &Instruction{Kind: KindReturn, Range: r}
	b.emit(inst)
	if val != nil {
		inst.SetValueOperand(0, val)
	}
	return inst
}

// CreateCall emits a call to callee with args, in order. The callee is
// resolved by internal/irgen to a concrete *Function before this is
// called - there is no indirect-call operand, since this language has
// no closures or first-class function values.
func (b *Builder) CreateCall(callee *Function, args []*Instruction, r diag.Range) *Instruction {
	inst := &Instruction{Kind: KindCall, Callee: callee, Type: callee.ReturnType, Range: r}
	b.emit(inst)
	for _, a := range args {
		inst.AddValueOperand(a)
	}
	return inst
}

// CreatePhi emits an empty phi node with no incoming edges yet.
func (b *Builder) CreatePhi(typ value.Type, r diag.Range) *Instruction {
	inst := &Instruction{Kind: KindPhi, Type: typ, Range: r}
	return b.emit(inst)
}
