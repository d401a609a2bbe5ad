package heap

import "github.com/cobra-lang/cobra/internal/value"

// headerSize is the size in bytes of every heap object's header: a
// single compressed class pointer (spec.md §3: "class_ptr: compressed
// 32-bit, then fields").
const headerSize = 4

// compressPtr truncates a heap address to 32 bits for storage in an
// object header. A real compressed-oop scheme would also shift out
// HeapAlign's low zero bits to extend its reach past 4 GiB of heap; this
// VM's modeled address space (region count x region size) stays well
// under 4 GiB, so a plain truncation is sufficient and is the simpler
// of the two to get right (see DESIGN.md).
func compressPtr(addr Address) uint32 { return uint32(addr) }

func decompressPtr(c uint32) Address { return Address(c) }

// FieldDescriptor names one instance field's slot.
type FieldDescriptor struct {
	Name   string
	Offset int // byte offset from the start of the fields area (after the header)
}

// MethodDescriptor names one method slot. No bytecode linkage is
// attached: class loading from a persistent bytecode file (CexFile /
// CotFile / ClassLinker in the original) is out of scope here (spec.md
// Non-goals; DESIGN.md Open Question 4).
type MethodDescriptor struct {
	Name string
}

// Class describes one object layout: its field/method descriptors,
// static fields, and access flags (spec.md §3's "Managed heap object").
// Class is conceptually itself a heap object, but is tracked out-of-band
// in Heap.classes rather than flattened into the byte-addressed object
// heap (see DESIGN.md) since its field/method descriptor arrays are
// variable-length and classes are few and long-lived compared to
// ordinary objects.
type Class struct {
	Name         string
	Super        *Class
	Fields       []FieldDescriptor
	StaticFields []value.Value
	Methods      []MethodDescriptor
	AccessFlags  uint32
	ObjectSize   int // header + fields, in bytes

	selfAddr Address // this class's own out-of-band heap address
	metaAddr Address // the class's own class_ptr target (its meta-class)
}

// NumFields returns how many value-sized fields an instance of c carries.
func (c *Class) NumFields() int { return (c.ObjectSize - headerSize) / 8 }
