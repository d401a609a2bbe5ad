package strtab

import (
	"testing"

	"github.com/cobra-lang/cobra/internal/arena"
	"github.com/stretchr/testify/require"
)

func TestInternIsStableByPointer(t *testing.T) {
	a := arena.New()
	tbl := New(a)

	u1 := tbl.Intern("hello")
	u2 := tbl.Intern("hello")
	u3 := tbl.Intern("world")

	require.True(t, u1 == u2)
	require.False(t, u1 == u3)
	require.Equal(t, "hello", u1.String())
}

func TestIdentifierEqual(t *testing.T) {
	a := arena.New()
	tbl := New(a)

	id1 := NewIdentifier(tbl.Intern("x"))
	id2 := NewIdentifier(tbl.Intern("x"))
	id3 := NewIdentifier(tbl.Intern("y"))

	require.True(t, id1.Equal(id2))
	require.False(t, id1.Equal(id3))
	require.Equal(t, "x", id1.Name())
}
