// Package strtab implements the interned string table. Every unique
// string content maps to exactly one *UniqueString for the lifetime of
// the owning arena, so pointer equality stands in for content equality.
package strtab

import "github.com/cobra-lang/cobra/internal/arena"

// UniqueString is an interned, zero-terminated string. Two UniqueStrings
// are equal (by ==) iff their content is equal.
type UniqueString struct {
	bytes []byte // zero-terminated
}

// String returns the Go string view (without the trailing zero byte).
func (u *UniqueString) String() string {
	if u == nil {
		return ""
	}
	return string(u.bytes[:len(u.bytes)-1])
}

// Table interns byte ranges into UniqueStrings backed by an arena.
type Table struct {
	arena *arena.Arena
	byKey map[string]*UniqueString
}

// New returns a table that interns into the given arena.
func New(a *arena.Arena) *Table {
	return &Table{arena: a, byKey: make(map[string]*UniqueString)}
}

// Intern returns the UniqueString for s, allocating and copying it into
// the arena on first use.
func (t *Table) Intern(s string) *UniqueString {
	if u, ok := t.byKey[s]; ok {
		return u
	}
	buf := t.arena.Allocate(len(s)+1, 1)
	copy(buf, s)
	buf[len(s)] = 0
	u := &UniqueString{bytes: buf}
	t.byKey[s] = u
	return u
}

// Identifier wraps a UniqueString with value semantics and an ordering
// suitable for deterministic output within a single run (by pointer, not
// by content - cross-run determinism is explicitly not required).
type Identifier struct {
	u *UniqueString
}

// NewIdentifier wraps u as an Identifier.
func NewIdentifier(u *UniqueString) Identifier { return Identifier{u: u} }

// Name returns the identifier's text.
func (id Identifier) Name() string { return id.u.String() }

// Equal reports whether id and other name the same interned string.
func (id Identifier) Equal(other Identifier) bool { return id.u == other.u }

// Less provides a stable (not cross-run-stable) ordering by pointer
// identity, used only to make test output and debug dumps deterministic
// within a run.
func (id Identifier) Less(other Identifier) bool {
	return uintptrOf(id.u) < uintptrOf(other.u)
}
