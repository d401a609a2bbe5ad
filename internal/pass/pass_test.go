package pass

import (
	"testing"

	"github.com/cobra-lang/cobra/internal/ast"
	"github.com/cobra-lang/cobra/internal/diag"
	"github.com/cobra-lang/cobra/internal/ir"
	"github.com/cobra-lang/cobra/internal/irgen"
	"github.com/stretchr/testify/require"
)

var rng = diag.Range{}

func genFunc(t *testing.T, prog *ast.Program) (*ir.Module, *ir.Function) {
	t.Helper()
	m := ir.NewModule()
	var diags diag.Bag
	g := irgen.New(m, &diags)
	fns := g.Generate(prog)
	require.False(t, diags.HasErrors(), "%v", diags.All())
	require.Len(t, fns, 1)
	return m, fns[0]
}

// buildAbs mirrors the fixture used by internal/regalloc, internal/bytecode
// and internal/interp's tests: an if (with no else) assigning through a
// local variable, the shape Mem2Reg must turn into a single phi.
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

func TestMem2RegRemovesStackTraffic(t *testing.T) {
	_, f := genFunc(t, buildAbs())

	mgr := NewManager(nil)
	for _, p := range Standard() {
		mgr.Add(p)
	}
	mgr.RunOnFunction(f)

	for _, b := range f.Blocks() {
		for _, in := range b.Instructions() {
			require.NotEqual(t, ir.KindAllocStack, in.Kind, "AllocStack should have been promoted away")
			require.NotEqual(t, ir.KindLoadStack, in.Kind, "LoadStack should have been promoted away")
		}
	}

	foundPhi := false
	for _, b := range f.Blocks() {
		if len(b.Phis()) > 0 {
			foundPhi = true
		}
	}
	require.True(t, foundPhi, "join block should have a phi merging the two assignments to result")
}

func TestSimplifyCFGRemovesUnreachableBlock(t *testing.T) {
	_, f := genFunc(t, buildAbs())
	dead := f.CreateBasicBlock("dead")
	b := ir.NewBuilder(f.Module)
	b.SetInsertionBlock(dead)
	b.CreateReturn(nil, rng)

	before := len(f.Blocks())
	sc := &SimplifyCFG{}
	changed := sc.RunOnFunction(f)
	require.True(t, changed)
	require.Less(t, len(f.Blocks()), before)
	for _, b := range f.Blocks() {
		require.NotEqual(t, "dead", b.Name)
	}
}

// buildConstantIf constructs:
//
//	function main() { if (true) { return 7; } return 8; }
func buildConstantIf() *ast.Program {
	thenBlock := ast.NewBlockStmt(rng, ast.NewReturnStmt(rng, ast.NewNumericLiteral(rng, 7)))
	ifStmt := ast.NewIfStmt(rng, ast.NewBooleanLiteral(rng, true), thenBlock, nil)
	ret8 := ast.NewReturnStmt(rng, ast.NewNumericLiteral(rng, 8))
	body := ast.NewBlockStmt(rng, ifStmt, ret8)
	fn := ast.NewFuncDecl(rng, "main", nil, body, nil)
	return ast.NewProgram(rng, fn)
}

func TestSimplifyCFGFoldsConstantConditionAndDropsDeadArm(t *testing.T) {
	_, f := genFunc(t, buildConstantIf())

	sc := &SimplifyCFG{}
	changed := sc.RunOnFunction(f)
	require.True(t, changed)

	for _, b := range f.Blocks() {
		for _, in := range b.Instructions() {
			if in.Kind == ir.KindReturn {
				v := in.ReturnValue()
				require.NotNil(t, v)
				require.Equal(t, ir.LiteralNumber, v.Literal.Kind)
				require.NotEqual(t, float64(8), v.Literal.Number, "the always-false else arm (return 8) should not survive folding")
			}
			require.NotEqual(t, ir.KindCondBranch, in.Kind, "the literal condition should have folded to an unconditional Branch")
		}
	}
}

func TestDCERemovesUnusedLoadConst(t *testing.T) {
	m := ir.NewModule()
	f := m.CreateFunction("f")
	b := ir.NewBuilder(m)
	entry := f.CreateBasicBlock("entry")
	b.SetInsertionBlock(entry)
	b.CreateLoadConst(b.NumberLiteral(7), rng) // dead: never used
	undef := b.CreateLoadConst(b.UndefinedLiteral(), rng)
	b.CreateReturn(undef, rng)

	require.Len(t, entry.Instructions(), 3)
	dce := &DCE{}
	changed := dce.RunOnFunction(f)
	require.True(t, changed)
	require.Len(t, entry.Instructions(), 2)
}

func TestLoadConstantsCanonicalizesDuplicates(t *testing.T) {
	m := ir.NewModule()
	f := m.CreateFunction("f")
	b := ir.NewBuilder(m)
	entry := f.CreateBasicBlock("entry")
	thenBB := f.CreateBasicBlock("then")
	joinBB := f.CreateBasicBlock("join")

	b.SetInsertionBlock(entry)
	cond := b.CreateLoadParam(1, 0, rng)
	b.CreateCondBranch(cond, thenBB, joinBB, rng)

	b.SetInsertionBlock(thenBB)
	dup := b.CreateLoadConst(b.NumberLiteral(9), rng)
	b.CreateBranch(joinBB, rng)

	b.SetInsertionBlock(joinBB)
	phi := b.CreatePhi(0, rng)
	phi.AddIncoming(dup, thenBB)
	other := b.CreateLoadConst(b.NumberLiteral(9), rng)
	phi.AddIncoming(other, entry)
	b.CreateReturn(phi, rng)

	lc := &LoadConstants{}
	changed := lc.RunOnFunction(f)
	require.True(t, changed)

	count := 0
	for _, blk := range f.Blocks() {
		for _, in := range blk.Instructions() {
			if in.Kind == ir.KindLoadConst && in.Literal.Kind == ir.LiteralNumber && in.Literal.Number == 9 {
				count++
			}
		}
	}
	require.Equal(t, 1, count, "both LoadConst(9) sites should canonicalize to a single entry-block instruction")
}
