// Package bytecode lowers an allocated IR function (every value already
// assigned a register by internal/regalloc) into a flat byte stream the
// register-windowed interpreter in internal/interp executes directly
// (spec.md §4.13). The opcode set and its little-endian encoding follow
// KTStephano-GVM's vm/bytecode.go: a byte-sized tagged enum plus one
// shared metadata table driving both disassembly and operand-size
// bookkeeping, rather than a method per opcode.
package bytecode

// Opcode is one byte-sized instruction tag.
type Opcode byte

const (
	OpLoadConst Opcode = iota
	OpLoadParam
	OpMov
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNeq
	OpLt
	OpLe
	OpGt
	OpGe
	OpNeg
	OpNot
	OpJmpShort
	OpJmp
	OpJmpIfFalseShort
	OpJmpIfFalse
	OpRet
	OpCall
)

// OperandKind names one operand's wire encoding. Not every kind is used
// by an opcodeTable row (Double and StringID are immediate-operand forms
// a more aggressive emitter could use to skip a constant-pool
// indirection for hot literals; no opcode here takes them, Disassemble
// prints them as "?", and this emitter always goes through the pool
// instead, for a single simple code path - see DESIGN.md).
type OperandKind int

const (
	OperandReg8 OperandKind = iota
	OperandUInt8
	OperandUInt16
	OperandUInt32
	OperandInt8
	OperandInt32
	OperandDouble
	OperandStringID
)

func (k OperandKind) size() int {
	switch k {
	case OperandReg8, OperandUInt8, OperandInt8:
		return 1
	case OperandUInt16, OperandStringID:
		return 2
	case OperandUInt32, OperandInt32:
		return 4
	case OperandDouble:
		return 8
	default:
		return 0
	}
}

// opInfo is one opcode's metadata row: its disassembly mnemonic and its
// fixed operand signature, in wire order.
type opInfo struct {
	mnemonic string
	operands []OperandKind
}

// opcodeTable is the single source of truth every per-opcode helper in
// this package (encode, decode, disassemble, size-of) reads from,
// instead of a switch duplicated per concern (DESIGN NOTES §9).
var opcodeTable = map[Opcode]opInfo{
	OpLoadConst:  {"loadconst", []OperandKind{OperandReg8, OperandUInt16}},
	OpLoadParam:  {"loadparam", []OperandKind{OperandReg8, OperandUInt8}},
	OpMov:        {"mov", []OperandKind{OperandReg8, OperandReg8}},
	OpAdd:        {"add", []OperandKind{OperandReg8, OperandReg8, OperandReg8}},
	OpSub:        {"sub", []OperandKind{OperandReg8, OperandReg8, OperandReg8}},
	OpMul:        {"mul", []OperandKind{OperandReg8, OperandReg8, OperandReg8}},
	OpDiv:        {"div", []OperandKind{OperandReg8, OperandReg8, OperandReg8}},
	OpMod:        {"mod", []OperandKind{OperandReg8, OperandReg8, OperandReg8}},
	OpEq:         {"eq", []OperandKind{OperandReg8, OperandReg8, OperandReg8}},
	OpNeq:        {"neq", []OperandKind{OperandReg8, OperandReg8, OperandReg8}},
	OpLt:         {"lt", []OperandKind{OperandReg8, OperandReg8, OperandReg8}},
	OpLe:         {"le", []OperandKind{OperandReg8, OperandReg8, OperandReg8}},
	OpGt:         {"gt", []OperandKind{OperandReg8, OperandReg8, OperandReg8}},
	OpGe:         {"ge", []OperandKind{OperandReg8, OperandReg8, OperandReg8}},
	OpNeg:             {"neg", []OperandKind{OperandReg8, OperandReg8}},
	OpNot:             {"not", []OperandKind{OperandReg8, OperandReg8}},
	OpJmpShort:        {"jmp.s", []OperandKind{OperandInt8}},
	OpJmp:             {"jmp", []OperandKind{OperandInt32}},
	OpJmpIfFalseShort: {"jmpiffalse.s", []OperandKind{OperandReg8, OperandInt8}},
	OpJmpIfFalse:      {"jmpiffalse", []OperandKind{OperandReg8, OperandInt32}},
	OpRet:             {"ret", []OperandKind{OperandReg8}},
	OpCall:            {"call", []OperandKind{OperandReg8, OperandUInt16, OperandUInt8}},
}

// String renders an opcode's mnemonic, or "?unknown?" for an invalid byte.
func (o Opcode) String() string {
	if info, ok := opcodeTable[o]; ok {
		return info.mnemonic
	}
	return "?unknown?"
}

// Size returns the total encoded size of an instruction with this
// opcode, including the leading opcode byte itself.
func (o Opcode) Size() int {
	info, ok := opcodeTable[o]
	if !ok {
		return 1
	}
	n := 1
	for _, k := range info.operands {
		n += k.size()
	}
	return n
}

// IsJump reports whether o is one of the relocatable control-flow
// opcodes the emitter patches offsets into after layout.
func (o Opcode) IsJump() bool {
	return o == OpJmp || o == OpJmpIfFalse || o == OpJmpShort || o == OpJmpIfFalseShort
}

// IsConditional reports whether o tests a register before branching.
func (o Opcode) IsConditional() bool { return o == OpJmpIfFalse || o == OpJmpIfFalseShort }

// LongForm maps a short-offset jump opcode to the long-offset opcode of
// the same logical jump; every other opcode maps to itself.
func (o Opcode) LongForm() Opcode {
	switch o {
	case OpJmpShort:
		return OpJmp
	case OpJmpIfFalseShort:
		return OpJmpIfFalse
	default:
		return o
	}
}
