package irgen

import (
	"testing"

	"github.com/cobra-lang/cobra/internal/ast"
	"github.com/cobra-lang/cobra/internal/diag"
	"github.com/cobra-lang/cobra/internal/ir"
	"github.com/stretchr/testify/require"
)

var rng = diag.Range{}

// buildAbs constructs the AST for:
//
//	function abs(x) { if (x < 0) { return -x; } return x; }
func buildAbs() *ast.Program {
	x := ast.NewIdentifierExpr(rng, "x")
	test := ast.NewBinaryExpr(rng, "<", ast.NewIdentifierExpr(rng, "x"), ast.NewNumericLiteral(rng, 0))
	negReturn := ast.NewBlockStmt(rng, ast.NewReturnStmt(rng, ast.NewUnaryExpr(rng, "-", ast.NewIdentifierExpr(rng, "x"))))
	ifStmt := ast.NewIfStmt(rng, test, negReturn, nil)
	finalReturn := ast.NewReturnStmt(rng, x)
	body := ast.NewBlockStmt(rng, ifStmt, finalReturn)
	fn := ast.NewFuncDecl(rng, "abs", []*ast.ParamDecl{ast.NewParamDecl(rng, "x", nil)}, body, nil)
	return ast.NewProgram(rng, fn)
}

func TestGenerateProducesWellFormedFunction(t *testing.T) {
	prog := buildAbs()
	m := ir.NewModule()
	var diags diag.Bag
	g := New(m, &diags)

	fns := g.Generate(prog)
	require.False(t, diags.HasErrors(), "%v", diags.All())
	require.Len(t, fns, 1)

	fn := fns[0]
	require.Equal(t, "abs", fn.Name)
	require.Len(t, fn.Params, 1)

	entry := fn.Entry()
	require.NotNil(t, entry.Terminator())
	require.Equal(t, ir.KindCondBranch, entry.Terminator().Kind)

	for _, b := range fn.Blocks() {
		require.NotNilf(t, b.Terminator(), "block %s has no terminator", b.Name)
	}
}

func TestUndefinedIdentifierReportsDiagnostic(t *testing.T) {
	body := ast.NewBlockStmt(rng, ast.NewReturnStmt(rng, ast.NewIdentifierExpr(rng, "missing")))
	fn := ast.NewFuncDecl(rng, "f", nil, body, nil)
	prog := ast.NewProgram(rng, fn)

	m := ir.NewModule()
	var diags diag.Bag
	g := New(m, &diags)
	g.Generate(prog)

	require.True(t, diags.HasErrors())
}

// buildAddAndMain constructs:
//
//	function add(a, b) { return a + b; }
//	function main() { return add(40, 2); }
func buildAddAndMain() *ast.Program {
	addBody := ast.NewBlockStmt(rng, ast.NewReturnStmt(rng, ast.NewBinaryExpr(rng, "+", ast.NewIdentifierExpr(rng, "a"), ast.NewIdentifierExpr(rng, "b"))))
	add := ast.NewFuncDecl(rng, "add", []*ast.ParamDecl{ast.NewParamDecl(rng, "a", nil), ast.NewParamDecl(rng, "b", nil)}, addBody, nil)

	call := ast.NewCallExpr(rng, ast.NewIdentifierExpr(rng, "add"), ast.NewNumericLiteral(rng, 40), ast.NewNumericLiteral(rng, 2))
	mainBody := ast.NewBlockStmt(rng, ast.NewReturnStmt(rng, call))
	main := ast.NewFuncDecl(rng, "main", nil, mainBody, nil)

	return ast.NewProgram(rng, add, main)
}

func TestGenerateLowersCallExpr(t *testing.T) {
	prog := buildAddAndMain()
	m := ir.NewModule()
	var diags diag.Bag
	g := New(m, &diags)

	fns := g.Generate(prog)
	require.False(t, diags.HasErrors(), "%v", diags.All())
	require.Len(t, fns, 2)

	main := fns[1]
	ret := main.Entry().Terminator()
	require.Equal(t, ir.KindReturn, ret.Kind)

	call := ret.ReturnValue()
	require.Equal(t, ir.KindCall, call.Kind)
	require.Equal(t, "add", call.Callee.Name)
	require.Len(t, call.Args(), 2)
}

func TestGenerateResolvesForwardCallReference(t *testing.T) {
	// main is declared before the function it calls; declaration order
	// must not matter for resolving a callee by name.
	call := ast.NewCallExpr(rng, ast.NewIdentifierExpr(rng, "helper"))
	mainBody := ast.NewBlockStmt(rng, ast.NewReturnStmt(rng, call))
	main := ast.NewFuncDecl(rng, "main", nil, mainBody, nil)
	helperBody := ast.NewBlockStmt(rng, ast.NewReturnStmt(rng, ast.NewNumericLiteral(rng, 1)))
	helper := ast.NewFuncDecl(rng, "helper", nil, helperBody, nil)
	prog := ast.NewProgram(rng, main, helper)

	m := ir.NewModule()
	var diags diag.Bag
	g := New(m, &diags)
	fns := g.Generate(prog)
	require.False(t, diags.HasErrors(), "%v", diags.All())

	call2 := fns[0].Entry().Terminator().ReturnValue()
	require.Equal(t, ir.KindCall, call2.Kind)
	require.Equal(t, "helper", call2.Callee.Name)
}

func TestCallToUndefinedFunctionReportsDiagnostic(t *testing.T) {
	call := ast.NewCallExpr(rng, ast.NewIdentifierExpr(rng, "missing"))
	body := ast.NewBlockStmt(rng, ast.NewReturnStmt(rng, call))
	fn := ast.NewFuncDecl(rng, "f", nil, body, nil)
	prog := ast.NewProgram(rng, fn)

	m := ir.NewModule()
	var diags diag.Bag
	g := New(m, &diags)
	g.Generate(prog)

	require.True(t, diags.HasErrors())
}

func TestMemberAccessReportsDiagnosticDistinctFromCall(t *testing.T) {
	member := ast.NewMemberExpr(rng, ast.NewIdentifierExpr(rng, "obj"), ast.NewIdentifierExpr(rng, "field"), false)
	body := ast.NewBlockStmt(rng, ast.NewReturnStmt(rng, member))
	fn := ast.NewFuncDecl(rng, "f", []*ast.ParamDecl{ast.NewParamDecl(rng, "obj", nil)}, body, nil)
	prog := ast.NewProgram(rng, fn)

	m := ir.NewModule()
	var diags diag.Bag
	g := New(m, &diags)
	g.Generate(prog)

	require.True(t, diags.HasErrors())
	msg := diags.All()[0].Message
	require.Contains(t, msg, "member access")
	require.NotContains(t, msg, "calls")
}

func TestImplicitReturnUndefined(t *testing.T) {
	body := ast.NewBlockStmt(rng)
	fn := ast.NewFuncDecl(rng, "noop", nil, body, nil)
	prog := ast.NewProgram(rng, fn)

	m := ir.NewModule()
	var diags diag.Bag
	g := New(m, &diags)
	fns := g.Generate(prog)
	require.False(t, diags.HasErrors())

	entry := fns[0].Entry()
	require.Equal(t, ir.KindReturn, entry.Terminator().Kind)
}
