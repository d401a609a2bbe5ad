package heap

import "github.com/pkg/errors"

// Card states, per spec.md §3.
const (
	CardClean byte = 0x00
	CardDirty byte = 0x70
)

// Region is one contiguous, power-of-two-sized chunk laid out as
// [CardTable | MarkBitSet | GuardPage | AllocationArea] (spec.md §3).
// GuardPage is a zero-length sentinel here rather than a real
// unmapped/protected page: this Go port has no mapped-memory faults to
// guard against, so it exists only as a documented layout placeholder
// (see DESIGN.md).
type Region struct {
	id   uint64
	base Address

	cardTable []byte
	markBits  []byte
	alloc     []byte

	top int // next allocation offset, within alloc
	end int // == len(alloc)
}

func newRegion(id uint64) *Region {
	base := Address(id << regionSizeBits)

	// The card table and mark-bit set themselves eat into the region,
	// so the allocation area is somewhat smaller than regionSize. The
	// true split is circular (table sizes depend on the allocation
	// area's own size); reserving a fixed fraction comfortably above
	// the 1/512 + 1/64 the tables actually need avoids solving that
	// exactly, at the cost of a small amount of unused space per region.
	allocLen := regionSize - regionSize/16
	allocLen = allocLen &^ (HeapAlign - 1)

	r := &Region{
		id:        id,
		base:      base,
		cardTable: make([]byte, (allocLen+cardSize-1)/cardSize),
		markBits:  make([]byte, (allocLen/HeapAlign+7)/8),
		alloc:     make([]byte, allocLen),
	}
	r.end = allocLen
	return r
}

// TryAlloc bumps the region's allocation pointer by size (rounded up to
// HeapAlign) and returns the address of the new object, or false if the
// region has no room left (spec.md §4.14's alloc pseudocode).
func (r *Region) TryAlloc(size int) (Address, bool) {
	aligned := alignUp(size)
	newTop := r.top + aligned
	if newTop > r.end {
		return 0, false
	}
	start := r.top
	r.top = newTop
	return r.base + Address(start), true
}

// slice returns the region-relative byte window [addr+offset,
// addr+offset+length) of the allocation area, for reading or writing an
// object's header or fields in place.
func (r *Region) slice(addr Address, offset, length int) []byte {
	start := int(addr-r.base) + offset
	return r.alloc[start : start+length]
}

// WriteBarrier dirties the card covering addr. Callers must invoke this
// before the pointer store it guards, per spec.md §5's ordering
// requirement ("the barrier precedes or is concurrent with the store").
func (r *Region) WriteBarrier(addr Address) {
	off := int(addr - r.base)
	r.cardTable[off>>cardShift] = CardDirty
}

// CardIsDirty reports whether the card covering addr has been written to
// since it was last cleared.
func (r *Region) CardIsDirty(addr Address) bool {
	off := int(addr - r.base)
	return r.cardTable[off>>cardShift] == CardDirty
}

// ClearCards resets every card to Clean, as a collector would after
// finishing a remembered-set scan.
func (r *Region) ClearCards() {
	for i := range r.cardTable {
		r.cardTable[i] = CardClean
	}
}

// SetMarked sets the mark bit for the 8-byte-aligned slot containing addr.
func (r *Region) SetMarked(addr Address) {
	idx := int(addr-r.base) / HeapAlign
	r.markBits[idx/8] |= 1 << uint(idx%8)
}

// IsMarked reports whether addr's slot is currently marked.
func (r *Region) IsMarked(addr Address) bool {
	idx := int(addr-r.base) / HeapAlign
	return r.markBits[idx/8]&(1<<uint(idx%8)) != 0
}

// ClearMarks resets every mark bit to zero.
func (r *Region) ClearMarks() {
	for i := range r.markBits {
		r.markBits[i] = 0
	}
}

// ErrOOM is returned when the heap cannot satisfy an allocation: either
// a single object is larger than a whole region, or the region space has
// hit its configured cap (standing in for a real OS mmap failure).
var ErrOOM = errors.New("heap: out of memory")
