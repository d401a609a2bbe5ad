package interp

import "encoding/binary"

// Decoding helpers mirroring KTStephano-GVM's uint32FromBytes style:
// small free functions reading a fixed-width field out of the raw
// instruction stream at a byte offset, rather than a decoded-instruction
// struct - the dispatch loop below re-reads operands directly out of
// fn.Code every step, matching spec.md §4.15 ("operand bytes are
// decoded" per opcode, not pre-parsed).
func readUint8(code []byte, pos int) uint8   { return code[pos] }
func readInt8(code []byte, pos int) int8     { return int8(code[pos]) }
func readUint16(code []byte, pos int) uint16 { return binary.LittleEndian.Uint16(code[pos:]) }
func readInt32(code []byte, pos int) int32   { return int32(binary.LittleEndian.Uint32(code[pos:])) }
