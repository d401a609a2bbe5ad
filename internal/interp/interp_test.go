package interp

import (
	"math"
	"testing"

	"github.com/cobra-lang/cobra/internal/ast"
	"github.com/cobra-lang/cobra/internal/bytecode"
	"github.com/cobra-lang/cobra/internal/diag"
	"github.com/cobra-lang/cobra/internal/heap"
	"github.com/cobra-lang/cobra/internal/ir"
	"github.com/cobra-lang/cobra/internal/irgen"
	"github.com/cobra-lang/cobra/internal/pass"
	"github.com/cobra-lang/cobra/internal/regalloc"
	"github.com/cobra-lang/cobra/internal/value"
	"github.com/stretchr/testify/require"
)

var rng = diag.Range{}

// buildAbs mirrors the fixture shared by internal/pass, internal/regalloc
// and internal/bytecode's own tests: an if/else diamond assigning through
// a local, compiled end to end through the real pipeline.
func buildAbs() *ast.Program {
	x := ast.NewIdentifierExpr(rng, "x")
	result := ast.NewVariableStmt(rng, ast.KindLet, ast.NewVariableDecl(rng, "result", x))
	test := ast.NewBinaryExpr(rng, "<", ast.NewIdentifierExpr(rng, "x"), ast.NewNumericLiteral(rng, 0))
	assignNeg := ast.NewExpressionStmt(rng, ast.NewBinaryExpr(rng, "=", ast.NewIdentifierExpr(rng, "result"), ast.NewUnaryExpr(rng, "-", ast.NewIdentifierExpr(rng, "x"))))
	ifStmt := ast.NewIfStmt(rng, test, ast.NewBlockStmt(rng, assignNeg), nil)
	ret := ast.NewReturnStmt(rng, ast.NewIdentifierExpr(rng, "result"))
	body := ast.NewBlockStmt(rng, result, ifStmt, ret)
	fn := ast.NewFuncDecl(rng, "abs", []*ast.ParamDecl{ast.NewParamDecl(rng, "x", nil)}, body, nil)
	return ast.NewProgram(rng, fn)
}

func compileAbs(t *testing.T) *bytecode.Function {
	t.Helper()
	m := ir.NewModule()
	var diags diag.Bag
	g := irgen.New(m, &diags)
	fns := g.Generate(buildAbs())
	require.False(t, diags.HasErrors())

	mgr := pass.NewManager(nil)
	for _, p := range pass.Standard() {
		mgr.Add(p)
	}
	mgr.RunOnFunction(fns[0])

	result := regalloc.Allocate(fns[0])
	fn, err := bytecode.EmitFunction(fns[0], result.NumRegisters)
	require.NoError(t, err)
	return fn
}

func TestRunAbsPositive(t *testing.T) {
	fn := compileAbs(t)
	in := New(heap.New(0), nil)
	result, err := in.Run(fn, []value.Value{value.Double(5)})
	require.NoError(t, err)
	require.True(t, result.IsDouble())
	require.Equal(t, 5.0, result.AsDouble())
}

func TestRunAbsNegative(t *testing.T) {
	fn := compileAbs(t)
	in := New(heap.New(0), nil)
	result, err := in.Run(fn, []value.Value{value.Double(-5)})
	require.NoError(t, err)
	require.Equal(t, 5.0, result.AsDouble())
}

func TestArithmeticCoercion(t *testing.T) {
	h := heap.New(0)
	in := New(h, nil)

	r, err := in.binaryOp(bytecode.OpAdd, value.Double(1), value.Bool(true))
	require.NoError(t, err)
	require.Equal(t, 2.0, r.AsDouble())

	r, err = in.binaryOp(bytecode.OpDiv, value.Double(1), value.Double(0))
	require.NoError(t, err)
	require.True(t, math.IsInf(r.AsDouble(), 1))

	r, err = in.binaryOp(bytecode.OpDiv, value.Double(0), value.Double(0))
	require.NoError(t, err)
	require.True(t, math.IsNaN(r.AsDouble()))

	r, err = in.binaryOp(bytecode.OpMod, value.Double(5.5), value.Double(2))
	require.NoError(t, err)
	require.Equal(t, math.Mod(5.5, 2), r.AsDouble())
}

func TestStringConcatenation(t *testing.T) {
	h := heap.New(0)
	in := New(h, nil)

	aAddr, err := h.AllocString("foo")
	require.NoError(t, err)
	a := value.StringRef(uint64(aAddr))

	r, err := in.binaryOp(bytecode.OpAdd, a, value.Double(1))
	require.NoError(t, err)
	require.True(t, r.IsString())
	s, err := h.ReadString(heap.Address(r.AsPointer()))
	require.NoError(t, err)
	require.Equal(t, "foo1", s)
}

func TestStringEqualityIsByContent(t *testing.T) {
	h := heap.New(0)
	in := New(h, nil)

	aAddr, err := h.AllocString("same")
	require.NoError(t, err)
	bAddr, err := h.AllocString("same")
	require.NoError(t, err)
	require.NotEqual(t, aAddr, bAddr, "two allocations should not collide in address")

	eq, err := in.strictEquals(value.StringRef(uint64(aAddr)), value.StringRef(uint64(bAddr)))
	require.NoError(t, err)
	require.True(t, eq, "strings with equal content should compare equal despite distinct addresses")
}

func TestTruthiness(t *testing.T) {
	h := heap.New(0)
	in := New(h, nil)

	falsy := []value.Value{value.Undefined(), value.Null(), value.Bool(false), value.Double(0), value.Double(math.NaN())}
	for _, v := range falsy {
		ok, err := in.truthy(v)
		require.NoError(t, err)
		require.False(t, ok)
	}

	emptyStr, err := h.AllocString("")
	require.NoError(t, err)
	ok, err := in.truthy(value.StringRef(uint64(emptyStr)))
	require.NoError(t, err)
	require.False(t, ok, "empty string is falsy")

	truthy := []value.Value{value.Bool(true), value.Double(1), value.Double(-1)}
	for _, v := range truthy {
		ok, err := in.truthy(v)
		require.NoError(t, err)
		require.True(t, ok)
	}
}

// hand-assembles a two-function module (caller calls callee via OpCall)
// so the call convention is checked independently of irgen and the emitter.
func TestCallChainsFrames(t *testing.T) {
	callee := &bytecode.Function{
		Name:         "double",
		NumParams:    1,
		NumRegisters: 2,
		Consts:       nil,
		Code: []byte{
			byte(bytecode.OpLoadParam), 0, 0, // r0 = param[0]
			byte(bytecode.OpAdd), 1, 0, 0, // r1 = r0 + r0
			byte(bytecode.OpRet), 1, // return r1
		},
	}

	// caller(x): r0 = loadparam 0; r2 = call callee(r3=r0); ret r2
	// dst register is r2, args begin at r3 per the dst+1..dst+argCount
	// convention, so r3 holds the argument.
	caller := &bytecode.Function{
		Name:         "caller",
		NumParams:    1,
		NumRegisters: 4,
		Consts:       nil,
		Code: []byte{
			byte(bytecode.OpLoadParam), 0, 0, // r0 = param[0]
			byte(bytecode.OpMov), 3, 0, // r3 = r0 (argument register)
			byte(bytecode.OpCall), 2, 0, 0, 1, // r2 = call fn#0, 1 arg
			byte(bytecode.OpRet), 2,
		},
	}

	mod := &bytecode.Module{Functions: []*bytecode.Function{callee, caller}}
	in := New(heap.New(0), mod)

	result, err := in.Run(caller, []value.Value{value.Double(21)})
	require.NoError(t, err)
	require.Equal(t, 42.0, result.AsDouble())
}

func TestUnknownOpcodeIsFatal(t *testing.T) {
	fn := &bytecode.Function{
		Name:         "bad",
		NumParams:    0,
		NumRegisters: 1,
		Code:         []byte{0xFF},
	}
	in := New(heap.New(0), nil)
	_, err := in.Run(fn, nil)
	require.Error(t, err)
}
