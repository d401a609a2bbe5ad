package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocateWithinPage(t *testing.T) {
	a := New()
	b1 := a.Allocate(16, 8)
	b2 := a.Allocate(16, 8)
	require.Len(t, b1, 16)
	require.Len(t, b2, 16)
	// Distinct backing memory.
	b1[0] = 0xAA
	require.NotEqual(t, byte(0xAA), b2[0])
}

func TestAllocateCrossesPages(t *testing.T) {
	a := New()
	a.Allocate(pageSize-8, 8)
	// This should roll over to a fresh page rather than overflowing.
	b := a.Allocate(64, 8)
	require.Len(t, b, 64)
}

func TestAllocateOversize(t *testing.T) {
	a := New()
	b := a.Allocate(pageSize*2, 8)
	require.Len(t, b, pageSize*2)
}

func TestRelease(t *testing.T) {
	a := New()
	a.Allocate(16, 8)
	a.Release()
	require.Nil(t, a.head)
}
