package interp

import (
	"math"
	"strconv"
	"strings"

	"github.com/cobra-lang/cobra/internal/heap"
	"github.com/cobra-lang/cobra/internal/value"
)

// toNumber coerces v to a float64 per spec.md §4.15 ("Sub/Mul/Div/Mod
// always coerce to number"). Coercion never faults (spec.md's
// Interpreter "Failure handling" note) - an uncoercible value yields
// NaN, not an error; the only error path is a corrupt heap reference.
func (in *Interpreter) toNumber(v value.Value) (float64, error) {
	switch {
	case v.IsDouble():
		return v.AsDouble(), nil
	case v.IsBool():
		if v.AsBool() {
			return 1, nil
		}
		return 0, nil
	case v.IsNull():
		return 0, nil
	case v.IsString():
		s, err := in.Heap.ReadString(heap.Address(v.AsPointer()))
		if err != nil {
			return 0, err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return math.NaN(), nil
		}
		return f, nil
	default:
		return math.NaN(), nil
	}
}

// toStringValue coerces v to a Go string, for Add's string-concatenation
// path (spec.md §4.15: "on a string and anything yields string
// concatenation after coercion").
func (in *Interpreter) toStringValue(v value.Value) (string, error) {
	switch {
	case v.IsString():
		return in.Heap.ReadString(heap.Address(v.AsPointer()))
	case v.IsDouble():
		return formatNumber(v.AsDouble()), nil
	case v.IsBool():
		if v.AsBool() {
			return "true", nil
		}
		return "false", nil
	case v.IsNull():
		return "null", nil
	case v.IsUndefined(), v.IsEmpty():
		return "undefined", nil
	default:
		return "[object Object]", nil
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

// strictEquals implements Eq/Neq (spec.md §4.15): numbers compare by
// IEEE value, other variants by bit pattern, except strings, which
// compare by content - value.Value.StrictEquals can't do that on its
// own since a Value only carries a heap pointer, not string bytes (see
// DESIGN.md's deferred design note).
func (in *Interpreter) strictEquals(a, b value.Value) (bool, error) {
	if a.IsString() && b.IsString() {
		sa, err := in.Heap.ReadString(heap.Address(a.AsPointer()))
		if err != nil {
			return false, err
		}
		sb, err := in.Heap.ReadString(heap.Address(b.AsPointer()))
		if err != nil {
			return false, err
		}
		return sa == sb, nil
	}
	return a.StrictEquals(b), nil
}

// truthy decides whether v drives a CondBranch down its true edge. The
// core spec only specifies arithmetic/equality coercion; this "anything
// can be a branch condition" rule is this language's own, JS-like
// convention (undefined/null/false/0/NaN/"" are falsy, everything else
// is truthy), documented in DESIGN.md since spec.md's Interpreter
// section doesn't itself define it.
func (in *Interpreter) truthy(v value.Value) (bool, error) {
	switch {
	case v.IsUndefined(), v.IsNull(), v.IsEmpty():
		return false, nil
	case v.IsBool():
		return v.AsBool(), nil
	case v.IsDouble():
		f := v.AsDouble()
		return f != 0 && !math.IsNaN(f), nil
	case v.IsString():
		s, err := in.Heap.ReadString(heap.Address(v.AsPointer()))
		if err != nil {
			return false, err
		}
		return s != "", nil
	default:
		return true, nil
	}
}
