package heap

import "github.com/pkg/errors"

// Space owns every Region acquired so far and hands out allocations from
// the most recently acquired one, acquiring a fresh region on exhaustion
// (spec.md §4.14: "region acquisition maps aligned memory from the OS
// ... on map failure, the region space reports OOM to the caller").
// maxRegions bounds how many regions this process simulates having
// address space for; zero means unbounded.
type Space struct {
	regions    map[uint64]*Region
	order      []*Region // acquisition order, current region is order[len-1]
	maxRegions int
}

// NewSpace creates a region space with one region already acquired.
// maxRegions <= 0 means no cap (limited only by process memory).
func NewSpace(maxRegions int) *Space {
	s := &Space{regions: make(map[uint64]*Region), maxRegions: maxRegions}
	s.acquireRegion()
	return s
}

func (s *Space) acquireRegion() (*Region, error) {
	if s.maxRegions > 0 && len(s.order) >= s.maxRegions {
		return nil, ErrOOM
	}
	id := uint64(len(s.order)) + 1
	r := newRegion(id)
	s.regions[id] = r
	s.order = append(s.order, r)
	return r, nil
}

// Allocate reserves size bytes, acquiring a new region if the current
// one has no room, and fails with ErrOOM if a fresh region still can't
// hold the request (object larger than a region) or no further region
// can be acquired.
func (s *Space) Allocate(size int) (Address, error) {
	cur := s.order[len(s.order)-1]
	if addr, ok := cur.TryAlloc(size); ok {
		return addr, nil
	}
	r, err := s.acquireRegion()
	if err != nil {
		return 0, errors.Wrap(err, "acquiring a fresh heap region")
	}
	addr, ok := r.TryAlloc(size)
	if !ok {
		return 0, errors.Wrap(ErrOOM, "object larger than one heap region")
	}
	return addr, nil
}

// RegionFor returns the region owning addr, or nil if addr does not
// belong to any region this space has acquired.
func (s *Space) RegionFor(addr Address) *Region {
	base := regionBase(addr)
	return s.regions[regionID(base)]
}

// WriteBarrier locates addr's region and dirties its card.
func (s *Space) WriteBarrier(addr Address) {
	if r := s.RegionFor(addr); r != nil {
		r.WriteBarrier(addr)
	}
}

// Regions returns every acquired region, in acquisition order.
func (s *Space) Regions() []*Region { return s.order }
