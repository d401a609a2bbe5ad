package heap

import (
	"testing"

	"github.com/cobra-lang/cobra/internal/value"
	"github.com/stretchr/testify/require"
)

func TestTryAllocBumpsWithinRegion(t *testing.T) {
	r := newRegion(1)
	a1, ok := r.TryAlloc(16)
	require.True(t, ok)
	a2, ok := r.TryAlloc(16)
	require.True(t, ok)
	require.Equal(t, Address(16), a2-a1)
}

func TestTryAllocFailsOnExhaustion(t *testing.T) {
	r := newRegion(1)
	_, ok := r.TryAlloc(r.end + 1)
	require.False(t, ok)
}

func TestRegionBaseRecoverableByMasking(t *testing.T) {
	r := newRegion(1)
	addr, ok := r.TryAlloc(8)
	require.True(t, ok)
	require.Equal(t, r.base, regionBase(addr))
}

func TestWriteBarrierDirtiesCard(t *testing.T) {
	r := newRegion(1)
	addr, ok := r.TryAlloc(8)
	require.True(t, ok)
	require.False(t, r.CardIsDirty(addr))
	r.WriteBarrier(addr)
	require.True(t, r.CardIsDirty(addr))
}

func TestMarkBits(t *testing.T) {
	r := newRegion(1)
	a1, _ := r.TryAlloc(8)
	a2, _ := r.TryAlloc(8)
	require.False(t, r.IsMarked(a1))
	r.SetMarked(a1)
	require.True(t, r.IsMarked(a1))
	require.False(t, r.IsMarked(a2))
}

func TestSpaceAcquiresFreshRegionOnExhaustion(t *testing.T) {
	s := NewSpace(0)
	first := s.order[0]
	_, err := s.Allocate(first.end) // fills the whole first region
	require.NoError(t, err)
	require.Len(t, s.order, 1)

	_, err = s.Allocate(8) // no room left, should acquire region 2
	require.NoError(t, err)
	require.Len(t, s.order, 2)
}

func TestSpaceReportsOOMWhenCapped(t *testing.T) {
	s := NewSpace(1)
	first := s.order[0]
	_, err := s.Allocate(first.end)
	require.NoError(t, err)

	_, err = s.Allocate(8)
	require.Error(t, err)
}

func TestNewObjectAndFieldRoundTrip(t *testing.T) {
	h := New(0)
	class := h.DefineClass("Point", nil, []FieldDescriptor{{Name: "x"}, {Name: "y"}}, nil, nil)

	addr, err := h.NewObject(class)
	require.NoError(t, err)

	got, err := h.ClassOf(addr)
	require.NoError(t, err)
	require.Equal(t, class, got)

	require.NoError(t, h.SetField(addr, 0, value.Double(3)))
	require.NoError(t, h.SetField(addr, 1, value.Double(4)))

	x, err := h.GetField(addr, 0)
	require.NoError(t, err)
	require.Equal(t, 3.0, x.AsDouble())

	y, err := h.GetField(addr, 1)
	require.NoError(t, err)
	require.Equal(t, 4.0, y.AsDouble())
}

func TestSetFieldDirtiesCard(t *testing.T) {
	h := New(0)
	class := h.DefineClass("Box", nil, []FieldDescriptor{{Name: "v"}}, nil, nil)
	addr, err := h.NewObject(class)
	require.NoError(t, err)

	region := h.Space.RegionFor(addr)
	require.False(t, region.CardIsDirty(addr))
	require.NoError(t, h.SetField(addr, 0, value.Bool(true)))
	require.True(t, region.CardIsDirty(addr))
}

func TestAllocStringRoundTrip(t *testing.T) {
	h := New(0)
	addr, err := h.AllocString("hello, cobra")
	require.NoError(t, err)

	got, err := h.ReadString(addr)
	require.NoError(t, err)
	require.Equal(t, "hello, cobra", got)
}

func TestAllocStringDistinctObjectsSameContent(t *testing.T) {
	h := New(0)
	a1, err := h.AllocString("same")
	require.NoError(t, err)
	a2, err := h.AllocString("same")
	require.NoError(t, err)
	require.NotEqual(t, a1, a2, "each AllocString call should mint a fresh heap object")

	s1, _ := h.ReadString(a1)
	s2, _ := h.ReadString(a2)
	require.Equal(t, s1, s2)
}
