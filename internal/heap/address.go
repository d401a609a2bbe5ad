// Package heap implements the managed object heap the interpreter
// allocates strings and objects from: power-of-two aligned regions,
// each carrying its own card table and mark-bit set, bump-allocated and
// never individually freed (spec.md §3/§4.14). It implements the
// region/card-table/mark-bit structures and the write-barrier contract
// only; no tracing collector runs (see DESIGN.md Open Question 3).
package heap

// Address is a heap pointer: an offset into the region space, recoverable
// to its owning region by masking off the low regionSizeBits bits (the
// same trick spec.md describes for a real mmap'd region - "the region's
// base address is derivable from any interior pointer by masking low
// bits"). Address zero is reserved and never returned by an allocation.
type Address uint64

const (
	// regionSizeBits is log2(4 MiB), the default region size spec.md
	// names as an example.
	regionSizeBits = 22
	regionSize     = 1 << regionSizeBits
	regionMask     = regionSize - 1

	// HeapAlign is the minimum alignment every allocation is rounded up
	// to, per spec.md §3 ("size must already be rounded to HeapAlign (8
	// bytes)").
	HeapAlign = 8

	// cardShift is log2(512), the card granularity spec.md §3 names.
	cardShift = 9
	cardSize  = 1 << cardShift
)

// regionBase masks addr down to its owning region's base address.
func regionBase(addr Address) Address { return addr &^ regionMask }

// regionID recovers the 1-based region index a base address was
// allocated under.
func regionID(base Address) uint64 { return uint64(base >> regionSizeBits) }

func alignUp(n int) int {
	return (n + HeapAlign - 1) &^ (HeapAlign - 1)
}
