package heap

import (
	"encoding/binary"

	"github.com/cobra-lang/cobra/internal/value"
	"github.com/pkg/errors"
)

// Heap is the managed object heap: a Space of regions plus the
// out-of-band class table every object's header points at (spec.md
// §3/§4.14, C11 in SPEC_FULL.md).
type Heap struct {
	Space *Space

	classes       map[Address]*Class
	nextClassAddr uint64
}

// New creates a heap with one region already acquired. maxRegions <= 0
// means no cap on how many regions it may acquire.
func New(maxRegions int) *Heap {
	return &Heap{
		Space:   NewSpace(maxRegions),
		classes: make(map[Address]*Class),
	}
}

// DefineClass registers a new class and assigns it a heap address other
// objects' headers can reference. super may be nil for a root class.
func (h *Heap) DefineClass(name string, super *Class, fields []FieldDescriptor, methods []MethodDescriptor, staticFields []value.Value) *Class {
	c := &Class{
		Name:         name,
		Super:        super,
		Fields:       fields,
		Methods:      methods,
		StaticFields: staticFields,
		ObjectSize:   headerSize + len(fields)*8,
	}
	h.nextClassAddr++
	c.selfAddr = Address(h.nextClassAddr)
	// No metaclass hierarchy is modeled: every class's own class_ptr
	// points at itself, satisfying invariant (iii) ("the class's own
	// class_ptr points to the meta-class") in the degenerate case where
	// the meta-class and the class coincide.
	c.metaAddr = c.selfAddr
	h.classes[c.selfAddr] = c
	return c
}

// ClassAt resolves a class pointer (compressed or not - callers pass the
// decompressed Address) to its Class, or nil if unknown.
func (h *Heap) ClassAt(addr Address) *Class { return h.classes[addr] }

// NewObject allocates and zero-initializes an instance of c.
func (h *Heap) NewObject(c *Class) (Address, error) {
	addr, err := h.Space.Allocate(c.ObjectSize)
	if err != nil {
		return 0, err
	}
	region := h.Space.RegionFor(addr)
	binary.LittleEndian.PutUint32(region.slice(addr, 0, headerSize), compressPtr(c.selfAddr))
	return addr, nil
}

// ClassOf returns the class of the object at addr, read back from its header.
func (h *Heap) ClassOf(addr Address) (*Class, error) {
	region := h.Space.RegionFor(addr)
	if region == nil {
		return nil, errors.Errorf("heap: address %#x is not in any region", addr)
	}
	raw := binary.LittleEndian.Uint32(region.slice(addr, 0, headerSize))
	c := h.classes[decompressPtr(raw)]
	if c == nil {
		return nil, errors.Errorf("heap: object at %#x has an unknown class pointer", addr)
	}
	return c, nil
}

// GetField reads field index of the object at addr.
func (h *Heap) GetField(addr Address, index int) (value.Value, error) {
	region := h.Space.RegionFor(addr)
	if region == nil {
		return value.Value{}, errors.Errorf("heap: address %#x is not in any region", addr)
	}
	off := headerSize + index*8
	raw := binary.LittleEndian.Uint64(region.slice(addr, off, 8))
	return value.FromRaw(raw), nil
}

// SetField writes field index of the object at addr, dirtying its card
// first per the write-barrier ordering requirement (spec.md §5).
func (h *Heap) SetField(addr Address, index int, v value.Value) error {
	region := h.Space.RegionFor(addr)
	if region == nil {
		return errors.Errorf("heap: address %#x is not in any region", addr)
	}
	region.WriteBarrier(addr)
	off := headerSize + index*8
	binary.LittleEndian.PutUint64(region.slice(addr, off, 8), v.Raw())
	return nil
}

// stringHeaderSize is the length prefix every heap string begins with.
const stringHeaderSize = 4

// AllocString copies s onto the heap as a length-prefixed UTF-8 byte
// blob, returning its address. Strings are heap-allocated like any other
// object so StringRef's payload (spec.md §3) is a real heap pointer, but
// carry no class header of their own - they are read back only through
// ReadString, never dispatched on by class.
func (h *Heap) AllocString(s string) (Address, error) {
	data := []byte(s)
	size := stringHeaderSize + len(data)
	addr, err := h.Space.Allocate(size)
	if err != nil {
		return 0, err
	}
	region := h.Space.RegionFor(addr)
	buf := region.slice(addr, 0, size)
	binary.LittleEndian.PutUint32(buf[:stringHeaderSize], uint32(len(data)))
	copy(buf[stringHeaderSize:], data)
	return addr, nil
}

// ReadString reads back a string previously allocated with AllocString.
func (h *Heap) ReadString(addr Address) (string, error) {
	region := h.Space.RegionFor(addr)
	if region == nil {
		return "", errors.Errorf("heap: address %#x is not in any region", addr)
	}
	n := binary.LittleEndian.Uint32(region.slice(addr, 0, stringHeaderSize))
	data := region.slice(addr, stringHeaderSize, int(n))
	return string(data), nil
}
