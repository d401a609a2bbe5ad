// Package interp implements the register-windowed bytecode interpreter
// (spec.md §4.15): a switch-dispatched loop over internal/bytecode's
// instruction stream, operating on internal/value's NaN-boxed Values and
// allocating through internal/heap.
package interp

import (
	"math"

	"github.com/cobra-lang/cobra/internal/bytecode"
	"github.com/cobra-lang/cobra/internal/heap"
	"github.com/cobra-lang/cobra/internal/ir"
	"github.com/cobra-lang/cobra/internal/value"
	"github.com/pkg/errors"
)

// maxFrameDepth bounds the call-frame chain; exceeding it is spec.md
// §7's "Stack overflow (frame chain)" fatal condition. This Go port
// recurses one Go call per VM frame (see run's OpCall case), so the
// limit also keeps this interpreter from blowing its own Go stack.
const maxFrameDepth = 4096

// ErrUnknownOpcode is spec.md §7's "unknown opcode" fatal: a corrupted
// bytecode stream or a compiler bug, never raised by a program this
// compiler itself produced.
var ErrUnknownOpcode = errors.New("interp: unknown opcode")

// ErrStackOverflow is spec.md §7's frame-chain overflow fatal.
var ErrStackOverflow = errors.New("interp: call stack overflow")

// Interpreter runs compiled functions against one heap. A single
// Interpreter may run many functions in sequence; it caches each
// distinct string literal's heap allocation so re-running the same
// function doesn't re-allocate its constants every call.
type Interpreter struct {
	Heap   *heap.Heap
	Module *bytecode.Module // resolves OpCall's callee index; nil if calls never occur

	strings map[*ir.Literal]heap.Address
}

// New creates an interpreter over h. mod may be nil only if the program
// never calls another function; internal/runtime always passes its own
// compiled *bytecode.Module, since internal/irgen can lower CallExpr.
func New(h *heap.Heap, mod *bytecode.Module) *Interpreter {
	return &Interpreter{Heap: h, Module: mod, strings: make(map[*ir.Literal]heap.Address)}
}

// Run executes fn to completion with the given arguments and returns its
// result.
func (in *Interpreter) Run(fn *bytecode.Function, args []value.Value) (value.Value, error) {
	return in.run(newFrame(fn, args, nil, 0))
}

func (in *Interpreter) run(f *frame) (value.Value, error) {
	if f.depth > maxFrameDepth {
		return value.Value{}, errors.Wrapf(ErrStackOverflow, "calling %s", f.fn.Name)
	}
	code := f.fn.Code

	for {
		if f.ip < 0 || f.ip >= len(code) {
			return value.Value{}, errors.Errorf("interp: ip ran off the end of %s's instruction stream", f.fn.Name)
		}
		op := bytecode.Opcode(code[f.ip])

		switch op {
		case bytecode.OpLoadConst:
			dst := readUint8(code, f.ip+1)
			idx := readUint16(code, f.ip+2)
			v, err := in.constValue(f.fn.Consts[idx])
			if err != nil {
				return value.Value{}, err
			}
			f.regs[dst] = v
			f.ip += op.Size()

		case bytecode.OpLoadParam:
			dst := readUint8(code, f.ip+1)
			idx := readUint8(code, f.ip+2)
			f.regs[dst] = f.param(int(idx))
			f.ip += op.Size()

		case bytecode.OpMov:
			dst := readUint8(code, f.ip+1)
			src := readUint8(code, f.ip+2)
			f.regs[dst] = f.regs[src]
			f.ip += op.Size()

		case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod,
			bytecode.OpEq, bytecode.OpNeq, bytecode.OpLt, bytecode.OpLe, bytecode.OpGt, bytecode.OpGe:
			dst := readUint8(code, f.ip+1)
			lhs := readUint8(code, f.ip+2)
			rhs := readUint8(code, f.ip+3)
			result, err := in.binaryOp(op, f.regs[lhs], f.regs[rhs])
			if err != nil {
				return value.Value{}, err
			}
			f.regs[dst] = result
			f.ip += op.Size()

		case bytecode.OpNeg, bytecode.OpNot:
			dst := readUint8(code, f.ip+1)
			arg := readUint8(code, f.ip+2)
			result, err := in.unaryOp(op, f.regs[arg])
			if err != nil {
				return value.Value{}, err
			}
			f.regs[dst] = result
			f.ip += op.Size()

		case bytecode.OpJmpShort:
			delta := int(readInt8(code, f.ip+1))
			f.ip += op.Size() + delta

		case bytecode.OpJmp:
			delta := int(readInt32(code, f.ip+1))
			f.ip += op.Size() + delta

		case bytecode.OpJmpIfFalseShort:
			cond := readUint8(code, f.ip+1)
			delta := int(readInt8(code, f.ip+2))
			taken, err := in.truthy(f.regs[cond])
			if err != nil {
				return value.Value{}, err
			}
			next := f.ip + op.Size()
			if taken {
				f.ip = next
			} else {
				f.ip = next + delta
			}

		case bytecode.OpJmpIfFalse:
			cond := readUint8(code, f.ip+1)
			delta := int(readInt32(code, f.ip+2))
			taken, err := in.truthy(f.regs[cond])
			if err != nil {
				return value.Value{}, err
			}
			next := f.ip + op.Size()
			if taken {
				f.ip = next
			} else {
				f.ip = next + delta
			}

		case bytecode.OpRet:
			src := readUint8(code, f.ip+1)
			return f.regs[src], nil

		case bytecode.OpCall:
			result, err := in.execCall(f, code)
			if err != nil {
				return value.Value{}, err
			}
			dst := readUint8(code, f.ip+1)
			f.regs[dst] = result
			f.ip += op.Size()

		default:
			return value.Value{}, errors.Wrapf(ErrUnknownOpcode, "in %s at offset %d", f.fn.Name, f.ip)
		}
	}
}

// execCall resolves OpCall dst, calleeIndex, argCount: arguments are the
// argCount registers immediately after dst (spec.md §4.15: "reads n
// argument registers at a fixed offset after callee"), and runs the
// callee as a nested frame.
func (in *Interpreter) execCall(f *frame, code []byte) (value.Value, error) {
	dst := readUint8(code, f.ip+1)
	calleeIdx := readUint16(code, f.ip+2)
	argCount := readUint8(code, f.ip+4)

	if in.Module == nil || int(calleeIdx) >= len(in.Module.Functions) {
		return value.Value{}, errors.Errorf("interp: call to unknown function index %d", calleeIdx)
	}
	callee := in.Module.Functions[calleeIdx]

	args := make([]value.Value, argCount)
	for i := 0; i < int(argCount); i++ {
		args[i] = f.regs[int(dst)+1+i]
	}
	return in.run(newFrame(callee, args, f, int(dst)))
}

func (in *Interpreter) binaryOp(op bytecode.Opcode, a, b value.Value) (value.Value, error) {
	switch op {
	case bytecode.OpAdd:
		if a.IsString() || b.IsString() {
			sa, err := in.toStringValue(a)
			if err != nil {
				return value.Value{}, err
			}
			sb, err := in.toStringValue(b)
			if err != nil {
				return value.Value{}, err
			}
			addr, err := in.Heap.AllocString(sa + sb)
			if err != nil {
				return value.Value{}, err
			}
			return value.StringRef(uint64(addr)), nil
		}
		x, err := in.toNumber(a)
		if err != nil {
			return value.Value{}, err
		}
		y, err := in.toNumber(b)
		if err != nil {
			return value.Value{}, err
		}
		return value.Double(x + y), nil

	case bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod:
		x, err := in.toNumber(a)
		if err != nil {
			return value.Value{}, err
		}
		y, err := in.toNumber(b)
		if err != nil {
			return value.Value{}, err
		}
		switch op {
		case bytecode.OpSub:
			return value.Double(x - y), nil
		case bytecode.OpMul:
			return value.Double(x * y), nil
		case bytecode.OpDiv:
			return value.Double(x / y), nil // IEEE 754: ±Inf on /0, NaN on 0/0
		default: // OpMod
			return value.Double(math.Mod(x, y)), nil // fmod: round-toward-zero remainder
		}

	case bytecode.OpEq, bytecode.OpNeq:
		eq, err := in.strictEquals(a, b)
		if err != nil {
			return value.Value{}, err
		}
		if op == bytecode.OpNeq {
			eq = !eq
		}
		return value.Bool(eq), nil

	case bytecode.OpLt, bytecode.OpLe, bytecode.OpGt, bytecode.OpGe:
		x, err := in.toNumber(a)
		if err != nil {
			return value.Value{}, err
		}
		y, err := in.toNumber(b)
		if err != nil {
			return value.Value{}, err
		}
		switch op {
		case bytecode.OpLt:
			return value.Bool(x < y), nil
		case bytecode.OpLe:
			return value.Bool(x <= y), nil
		case bytecode.OpGt:
			return value.Bool(x > y), nil
		default: // OpGe
			return value.Bool(x >= y), nil
		}

	default:
		return value.Value{}, errors.Errorf("interp: unsupported binary opcode %s", op)
	}
}

func (in *Interpreter) unaryOp(op bytecode.Opcode, v value.Value) (value.Value, error) {
	switch op {
	case bytecode.OpNeg:
		n, err := in.toNumber(v)
		if err != nil {
			return value.Value{}, err
		}
		return value.Double(-n), nil
	case bytecode.OpNot:
		t, err := in.truthy(v)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(!t), nil
	default:
		return value.Value{}, errors.Errorf("interp: unsupported unary opcode %s", op)
	}
}

// constValue materializes a LoadConst's literal as a runtime Value,
// allocating string literals onto the heap once per distinct *ir.Literal
// and reusing the address on subsequent loads (including from later
// calls into the same function).
func (in *Interpreter) constValue(l *ir.Literal) (value.Value, error) {
	switch l.Kind {
	case ir.LiteralNumber:
		return value.Double(l.Number), nil
	case ir.LiteralBool:
		return value.Bool(l.Bool), nil
	case ir.LiteralUndefined:
		return value.Undefined(), nil
	case ir.LiteralNull:
		return value.Null(), nil
	case ir.LiteralEmpty:
		return value.Empty(), nil
	case ir.LiteralString:
		if addr, ok := in.strings[l]; ok {
			return value.StringRef(uint64(addr)), nil
		}
		addr, err := in.Heap.AllocString(l.Str.String())
		if err != nil {
			return value.Value{}, err
		}
		in.strings[l] = addr
		return value.StringRef(uint64(addr)), nil
	default:
		return value.Value{}, errors.Errorf("interp: unknown literal kind %d", l.Kind)
	}
}
