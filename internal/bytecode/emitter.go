package bytecode

import (
	"github.com/cobra-lang/cobra/internal/ir"
	"github.com/pkg/errors"
)

// Function is one compiled function's flat bytecode: its register
// window size, its constant pool, and the instruction stream.
type Function struct {
	Name         string
	NumParams    int
	NumRegisters int
	Code         []byte
	Consts       []*ir.Literal
}

// Module is every emitted function from one ir.Module.
type Module struct {
	Functions []*Function
}

// FunctionByName looks up an emitted function by name.
func (m *Module) FunctionByName(name string) *Function {
	for _, f := range m.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// EmitModule lowers every function in m. Every instruction must already
// carry its register from internal/regalloc.Allocate; each function's
// register window size is passed in by the caller through numRegisters,
// since Allocate's Result isn't stored on the IR itself.
func EmitModule(m *ir.Module, numRegisters map[*ir.Function]int) (*Module, error) {
	out := &Module{}
	for _, f := range m.Functions() {
		fn, err := EmitFunction(f, numRegisters[f])
		if err != nil {
			return nil, errors.Wrapf(err, "function %s", f.Name)
		}
		out.Functions = append(out.Functions, fn)
	}
	return out, nil
}

// calleeIndex resolves a Call's target to its module-wide function
// index, in the same declaration order EmitModule emits functions in -
// the two must agree, since OpCall's operand is a bare index into
// Module.Functions with no name lookup at interpretation time.
func calleeIndex(callee *ir.Function) (int, error) {
	for i, f := range callee.Module.Functions() {
		if f == callee {
			return i, nil
		}
	}
	return 0, errors.Errorf("callee %s is not a function of its own module", callee.Name)
}

var binOpcodes = map[ir.BinOp]Opcode{
	ir.OpAdd: OpAdd, ir.OpSub: OpSub, ir.OpMul: OpMul, ir.OpDiv: OpDiv, ir.OpMod: OpMod,
	ir.OpEq: OpEq, ir.OpNeq: OpNeq, ir.OpLt: OpLt, ir.OpLe: OpLe, ir.OpGt: OpGt, ir.OpGe: OpGe,
}

var unOpcodes = map[ir.UnOp]Opcode{
	ir.OpNeg: OpNeg, ir.OpNot: OpNot,
}

func opcodeFor(in *ir.Instruction) (Opcode, error) {
	switch in.Kind {
	case ir.KindLoadConst:
		return OpLoadConst, nil
	case ir.KindLoadParam:
		return OpLoadParam, nil
	case ir.KindMov:
		return OpMov, nil
	case ir.KindBinaryOp:
		op, ok := binOpcodes[in.BinOp]
		if !ok {
			return 0, errors.Errorf("unsupported binary operator %s", in.BinOp)
		}
		return op, nil
	case ir.KindUnaryOp:
		op, ok := unOpcodes[in.UnOp]
		if !ok {
			return 0, errors.Errorf("unsupported unary operator %s", in.UnOp)
		}
		return op, nil
	case ir.KindReturn:
		return OpRet, nil
	default:
		return 0, errors.Errorf("%s cannot be lowered directly to bytecode", in.Kind)
	}
}

// unitKind distinguishes the two shapes of thing a function lowers to:
// a plain, fixed-size instruction, or a relocatable jump whose final
// opcode (short or long offset form) is only settled once layout
// converges.
type unitKind int

const (
	unitRegular unitKind = iota
	unitJump
	unitRawMov
	unitCall
)

type unit struct {
	kind unitKind

	// unitRegular
	inst   *ir.Instruction
	opcode Opcode

	// unitJump
	target *ir.BasicBlock
	cond   *ir.Instruction // nil for an unconditional jump
	long   bool

	// unitRawMov: stages one Call argument into its fixed window slot.
	// Has no backing ir.Instruction of its own - regalloc never assigns
	// these a register, since they exist purely as emission-time glue.
	dstReg int
	srcReg int

	// unitCall
	call      *ir.Instruction
	calleeIdx int
	argCount  int
}

func (u *unit) jumpOpcode() Opcode {
	switch {
	case u.cond != nil && u.long:
		return OpJmpIfFalse
	case u.cond != nil:
		return OpJmpIfFalseShort
	case u.long:
		return OpJmp
	default:
		return OpJmpShort
	}
}

func (u *unit) size() int {
	switch u.kind {
	case unitJump:
		return u.jumpOpcode().Size()
	case unitRawMov:
		return OpMov.Size()
	case unitCall:
		return OpCall.Size()
	default:
		return u.opcode.Size()
	}
}

// buildUnits flattens f's blocks into the linear unit sequence that
// will become the byte stream, in the function's own block order (no
// block-reordering/fallthrough elision pass exists, so every branch -
// including the "taken" edge of a CondBranch - is emitted as an
// explicit relocatable jump; this costs one redundant jump per
// then-branch that happens to already be laid out next, in exchange for
// never depending on block layout order for correctness).
func buildUnits(f *ir.Function) ([]unit, map[*ir.BasicBlock]int, error) {
	var units []unit
	blockIndex := make(map[*ir.BasicBlock]int)

	for _, b := range f.Blocks() {
		blockIndex[b] = len(units)
		for _, in := range b.Instructions() {
			switch in.Kind {
			case ir.KindPhi:
				continue // no runtime representation; see lowerPhis in internal/regalloc
			case ir.KindAllocStack, ir.KindLoadStack, ir.KindStoreStack:
				return nil, nil, errors.Errorf("unpromoted stack slot reached bytecode emission in %s (Mem2Reg should have removed it)", f.Name)
			case ir.KindBranch:
				units = append(units, unit{kind: unitJump, target: in.Target()})
			case ir.KindCondBranch:
				units = append(units, unit{kind: unitJump, target: in.Else(), cond: in.Cond()})
				units = append(units, unit{kind: unitJump, target: in.Then()})
			case ir.KindCall:
				idx, err := calleeIndex(in.Callee)
				if err != nil {
					return nil, nil, err
				}
				args := in.Args()
				// OpCall's convention (internal/interp.execCall) is that
				// arguments live in the argCount registers immediately
				// after dst; regalloc never lines an argument's own
				// register up with its slot, so each argument is staged
				// there with an explicit Mov right before the call.
				for i, a := range args {
					units = append(units, unit{kind: unitRawMov, dstReg: in.Reg + 1 + i, srcReg: a.Reg})
				}
				units = append(units, unit{kind: unitCall, call: in, calleeIdx: idx, argCount: len(args)})
			default:
				op, err := opcodeFor(in)
				if err != nil {
					return nil, nil, err
				}
				units = append(units, unit{kind: unitRegular, inst: in, opcode: op})
			}
		}
	}
	return units, blockIndex, nil
}

func layout(units []unit) []int {
	offsets := make([]int, len(units))
	pos := 0
	for i, u := range units {
		offsets[i] = pos
		pos += u.size()
	}
	return offsets
}

// EmitFunction lowers one already-allocated function to bytecode,
// iteratively widening short jumps to their long form until every
// jump's offset fits its chosen encoding (spec.md §4.13's short/long
// relocation tiers).
func EmitFunction(f *ir.Function, numRegisters int) (*Function, error) {
	units, blockIndex, err := buildUnits(f)
	if err != nil {
		return nil, err
	}

	var offsets []int
	for {
		offsets = layout(units)
		blockStart := make(map[*ir.BasicBlock]int, len(blockIndex))
		for b, idx := range blockIndex {
			blockStart[b] = offsets[idx]
		}

		widened := false
		for i := range units {
			u := &units[i]
			if u.kind != unitJump || u.long {
				continue
			}
			delta := blockStart[u.target] - (offsets[i] + u.size())
			if delta < -128 || delta > 127 {
				u.long = true
				widened = true
			}
		}
		if !widened {
			break
		}
	}

	blockStart := make(map[*ir.BasicBlock]int, len(blockIndex))
	for b, idx := range blockIndex {
		blockStart[b] = offsets[idx]
	}

	var buf buffer
	var pool constPool
	for i, u := range units {
		switch u.kind {
		case unitJump:
			emitJump(&buf, &u, offsets[i], blockStart[u.target])
		case unitRegular:
			emitRegular(&buf, &pool, u.inst, u.opcode)
		case unitRawMov:
			buf.writeByte(byte(OpMov))
			buf.writeUint8(uint8(u.dstReg))
			buf.writeUint8(uint8(u.srcReg))
		case unitCall:
			buf.writeByte(byte(OpCall))
			buf.writeUint8(uint8(u.call.Reg))
			buf.writeUint16(uint16(u.calleeIdx))
			buf.writeUint8(uint8(u.argCount))
		}
	}

	return &Function{
		Name:         f.Name,
		NumParams:    len(f.Params),
		NumRegisters: frameSize(units, numRegisters),
		Code:         buf.bytes,
		Consts:       pool.literals,
	}, nil
}

// frameSize widens regalloc's register count, if needed, to cover every
// call site's argument-staging window (dst+1..dst+argCount): regalloc
// has no notion of a call reserving a contiguous run of registers past
// its own result, since that reservation only exists at the bytecode
// level.
func frameSize(units []unit, numRegisters int) int {
	size := numRegisters
	for _, u := range units {
		if u.kind != unitCall {
			continue
		}
		if n := u.call.Reg + u.argCount + 1; n > size {
			size = n
		}
	}
	return size
}

func emitJump(buf *buffer, u *unit, ownOffset, targetOffset int) {
	op := u.jumpOpcode()
	delta := targetOffset - (ownOffset + op.Size())
	buf.writeByte(byte(op))
	if u.cond != nil {
		buf.writeUint8(uint8(u.cond.Reg))
	}
	if u.long {
		buf.writeInt32(int32(delta))
	} else {
		buf.writeInt8(int8(delta))
	}
}

func emitRegular(buf *buffer, pool *constPool, in *ir.Instruction, op Opcode) {
	buf.writeByte(byte(op))
	switch in.Kind {
	case ir.KindLoadConst:
		buf.writeUint8(uint8(in.Reg))
		buf.writeUint16(uint16(pool.id(in.Literal)))
	case ir.KindLoadParam:
		buf.writeUint8(uint8(in.Reg))
		buf.writeUint8(uint8(in.ParamIndex - 1))
	case ir.KindMov:
		buf.writeUint8(uint8(in.Reg))
		buf.writeUint8(uint8(in.Arg().Reg))
	case ir.KindBinaryOp:
		buf.writeUint8(uint8(in.Reg))
		buf.writeUint8(uint8(in.Lhs().Reg))
		buf.writeUint8(uint8(in.Rhs().Reg))
	case ir.KindUnaryOp:
		buf.writeUint8(uint8(in.Reg))
		buf.writeUint8(uint8(in.Arg().Reg))
	case ir.KindReturn:
		buf.writeUint8(uint8(in.ReturnValue().Reg))
	}
}

// constPool deduplicates literals by their (already module-interned)
// pointer identity, in first-use order.
type constPool struct {
	literals []*ir.Literal
	index    map[*ir.Literal]int
}

func (p *constPool) id(l *ir.Literal) int {
	if idx, ok := p.index[l]; ok {
		return idx
	}
	idx := len(p.literals)
	if p.index == nil {
		p.index = make(map[*ir.Literal]int)
	}
	p.index[l] = idx
	p.literals = append(p.literals, l)
	return idx
}
