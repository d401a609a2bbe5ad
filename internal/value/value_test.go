package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDoubleRoundTrip(t *testing.T) {
	for _, f := range []float64{0, 1, -1, 3.14159, math.MaxFloat64, -math.MaxFloat64, math.Inf(1), math.Inf(-1)} {
		v := Double(f)
		require.True(t, v.IsDouble())
		require.Equal(t, f, v.AsDouble())
	}
}

func TestNaNCanonicalized(t *testing.T) {
	v := Double(math.NaN())
	require.True(t, v.IsDouble())
	require.True(t, math.IsNaN(v.AsDouble()))
}

func TestTaggedRoundTrip(t *testing.T) {
	require.True(t, Empty().IsEmpty())
	require.True(t, Undefined().IsUndefined())
	require.True(t, Null().IsNull())
	require.True(t, Bool(true).IsBool())
	require.Equal(t, true, Bool(true).AsBool())
	require.Equal(t, false, Bool(false).AsBool())
	require.True(t, Symbol(42).IsSymbol())
	require.Equal(t, uint32(42), Symbol(42).AsSymbol())
	require.True(t, NativeU32(7).IsNativeU32())
	require.Equal(t, uint32(7), NativeU32(7).AsNativeU32())

	addr := uint64(0x1234)
	require.True(t, StringRef(addr).IsString())
	require.Equal(t, addr, StringRef(addr).AsPointer())
	require.True(t, BigIntRef(addr).IsBigInt())
	require.True(t, ObjectRef(addr).IsObject())
	require.True(t, ObjectRef(addr).IsPointer())
}

func TestVariantsAreExclusive(t *testing.T) {
	vals := []Value{Empty(), Undefined(), Null(), Bool(true), Symbol(1), NativeU32(1), StringRef(1), BigIntRef(1), ObjectRef(1), Double(1.5)}
	classify := func(v Value) string {
		switch {
		case v.IsEmpty():
			return "empty"
		case v.IsUndefined():
			return "undefined"
		case v.IsNull():
			return "null"
		case v.IsBool():
			return "bool"
		case v.IsSymbol():
			return "symbol"
		case v.IsNativeU32():
			return "native"
		case v.IsString():
			return "string"
		case v.IsBigInt():
			return "bigint"
		case v.IsObject():
			return "object"
		case v.IsDouble():
			return "double"
		}
		return "?"
	}
	seen := map[string]bool{}
	for _, v := range vals {
		kind := classify(v)
		require.NotEqual(t, "?", kind)
		require.False(t, seen[kind], "duplicate classification for %s", kind)
		seen[kind] = true
	}
}

func TestStrictEquals(t *testing.T) {
	require.True(t, Double(0).StrictEquals(Double(-0.0)))
	require.False(t, Double(math.NaN()).StrictEquals(Double(math.NaN())))
	require.True(t, Undefined().StrictEquals(Undefined()))
	require.False(t, Undefined().StrictEquals(Null()))
	require.True(t, ObjectRef(8).StrictEquals(ObjectRef(8)))
	require.False(t, ObjectRef(8).StrictEquals(ObjectRef(16)))
}

func TestTypeLattice(t *testing.T) {
	require.True(t, Any.IsAny())
	join := TypeNumber.Join(TypeString)
	require.True(t, join.Contains(TypeNumber))
	require.True(t, join.Contains(TypeString))
	require.False(t, join.Contains(TypeBoolean))

	meet := join.Meet(TypeNumber)
	require.Equal(t, TypeNumber, meet)

	require.True(t, Closure().Contains(TypeObject))
	require.True(t, RegExp().Contains(TypeObject))
}
