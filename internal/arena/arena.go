// Package arena implements the bump allocator backing the IR and the
// string table. Allocation is append-only; the only way to free memory
// is to drop the whole arena.
package arena

import "github.com/pkg/errors"

// pageSize is the size of a normal page. Allocations larger than this
// get their own oversize page.
const pageSize = 8 * 1024

// ErrOOM is returned when the underlying OS allocation fails. In this
// Go port that can only happen if make() panics, which we never
// recover from; the sentinel exists so callers have something to
// compare against per spec.md's error-handling table.
var ErrOOM = errors.New("arena: out of memory")

type page struct {
	buf    []byte
	offset int
	next   *page
}

// Arena is a chain of fixed-size pages plus oversize single-object
// pages. It is not safe for concurrent use.
type Arena struct {
	head *page
}

// New returns an empty arena with one page already allocated.
func New() *Arena {
	a := &Arena{}
	a.head = newPage(pageSize)
	return a
}

func newPage(size int) *page {
	return &page{buf: make([]byte, size)}
}

func alignUp(offset, align int) int {
	if align <= 1 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// Allocate reserves size bytes aligned to align and returns the backing
// slice. It never fails (see ErrOOM doc above) unless size is negative.
func (a *Arena) Allocate(size, align int) []byte {
	if size < 0 {
		panic("arena: negative allocation size")
	}
	if align <= 0 {
		align = 1
	}

	if size > pageSize {
		// Oversize allocation gets its own page, linked in right
		// behind the head so the head page keeps absorbing small bump
		// allocations.
		p := newPage(size + align)
		start := alignUp(p.offset, align)
		p.offset = start + size
		p.next = a.head.next
		a.head.next = p
		return p.buf[start : start+size]
	}

	start := alignUp(a.head.offset, align)
	if start+size > len(a.head.buf) {
		a.head = &page{buf: make([]byte, pageSize), next: a.head}
		start = 0
	}
	a.head.offset = start + size
	return a.head.buf[start : start+size]
}

// Release drops every page in the arena. Objects allocated from it must
// not be used afterward.
func (a *Arena) Release() {
	a.head = nil
}
