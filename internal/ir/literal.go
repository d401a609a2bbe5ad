package ir

import "github.com/cobra-lang/cobra/internal/strtab"

// LiteralKind discriminates the variants a Literal can hold.
type LiteralKind int

const (
	LiteralNumber LiteralKind = iota
	LiteralBool
	LiteralString
	LiteralUndefined
	LiteralNull
	LiteralEmpty
)

// Literal is an immutable constant node, unique per Module by content
// (two LoadConst instructions for the same literal content share one
// Literal, which LoadConstants relies on to emit a single LoadConst per
// distinct literal).
type Literal struct {
	Kind   LiteralKind
	Number float64
	Bool   bool
	Str    *strtab.UniqueString
}

func (l *Literal) key() literalKey {
	k := literalKey{kind: l.Kind, number: l.Number, boolean: l.Bool}
	if l.Str != nil {
		k.str = l.Str.String()
	}
	return k
}

type literalKey struct {
	kind    LiteralKind
	number  float64
	boolean bool
	str     string
}

func (l *Literal) String() string {
	switch l.Kind {
	case LiteralNumber:
		return fmtFloat(l.Number)
	case LiteralBool:
		if l.Bool {
			return "true"
		}
		return "false"
	case LiteralString:
		return `"` + l.Str.String() + `"`
	case LiteralUndefined:
		return "undefined"
	case LiteralNull:
		return "null"
	case LiteralEmpty:
		return "empty"
	default:
		return "?literal?"
	}
}
