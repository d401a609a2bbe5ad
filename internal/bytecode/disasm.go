package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders fn's instruction stream as one line per
// instruction: byte offset, mnemonic, operands in wire order. It drives
// entirely off opcodeTable, the same single source of truth Emit and
// Size consult (DESIGN NOTES §9).
func Disassemble(fn *Function) string {
	var b strings.Builder
	fmt.Fprintf(&b, "function %s(%d params, %d registers)\n", fn.Name, fn.NumParams, fn.NumRegisters)
	code := fn.Code
	pos := 0
	for pos < len(code) {
		op := Opcode(code[pos])
		info, ok := opcodeTable[op]
		if !ok {
			fmt.Fprintf(&b, "  %4d  ?unknown? (byte %#x)\n", pos, code[pos])
			pos++
			continue
		}
		fmt.Fprintf(&b, "  %4d  %-14s", pos, info.mnemonic)
		cursor := pos + 1
		for _, kind := range info.operands {
			fmt.Fprintf(&b, " %s", formatOperand(fn, kind, code, cursor))
			cursor += kind.size()
		}
		b.WriteByte('\n')
		pos += op.Size()
	}
	return b.String()
}

func formatOperand(fn *Function, kind OperandKind, code []byte, pos int) string {
	switch kind {
	case OperandReg8, OperandUInt8:
		return fmt.Sprintf("%d", code[pos])
	case OperandInt8:
		return fmt.Sprintf("%d", int8(code[pos]))
	case OperandUInt16:
		v := uint16(code[pos]) | uint16(code[pos+1])<<8
		return fmt.Sprintf("%d", v)
	case OperandInt32, OperandUInt32:
		v := uint32(code[pos]) | uint32(code[pos+1])<<8 | uint32(code[pos+2])<<16 | uint32(code[pos+3])<<24
		if kind == OperandInt32 {
			return fmt.Sprintf("%d", int32(v))
		}
		return fmt.Sprintf("%d", v)
	default:
		return "?"
	}
}
