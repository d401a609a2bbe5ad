package bytecode

import "encoding/binary"

// buffer is a little-endian byte writer, matching KTStephano-GVM's own
// wire format convention (vm/bytecode.go's header comment: "little
// endian").
type buffer struct {
	bytes []byte
}

func (b *buffer) writeByte(v byte) { b.bytes = append(b.bytes, v) }

func (b *buffer) writeUint8(v uint8) { b.writeByte(v) }

func (b *buffer) writeUint16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.bytes = append(b.bytes, tmp[:]...)
}

func (b *buffer) writeUint32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.bytes = append(b.bytes, tmp[:]...)
}

func (b *buffer) writeInt8(v int8) { b.writeByte(byte(v)) }

func (b *buffer) writeInt32(v int32) { b.writeUint32(uint32(v)) }

func (b *buffer) len() int { return len(b.bytes) }
