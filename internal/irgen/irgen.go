// Package irgen lowers the AST surface in internal/ast into the SSA IR
// defined by internal/ir, per spec.md §4.4. It performs no optimization;
// every local variable gets an AllocStack slot and every read/write goes
// through LoadStack/StoreStack, leaving Mem2Reg (internal/pass) to
// promote those slots to pure SSA values, with phis where definitions
// merge.
package irgen

import (
	"github.com/cobra-lang/cobra/internal/ast"
	"github.com/cobra-lang/cobra/internal/diag"
	"github.com/cobra-lang/cobra/internal/ir"
	"github.com/cobra-lang/cobra/internal/value"
)

// Generator walks a Program and emits one ir.Function per FuncDecl.
type Generator struct {
	module *ir.Module
	build  *ir.Builder
	diags  *diag.Bag

	scopes []scope
}

// scope maps a source-level name to the AllocStack instruction that
// backs it within one lexical block.
type scope struct {
	vars map[string]*ir.Instruction
}

// New returns a Generator that lowers into module m, reporting errors
// into diags.
func New(m *ir.Module, diags *diag.Bag) *Generator {
	return &Generator{module: m, build: ir.NewBuilder(m), diags: diags}
}

// Generate lowers every FuncDecl at the top level of prog. Non-function
// top-level statements are not executable in cobra's module model
// (spec.md §4.4 only defines function-body lowering) and are rejected
// with a diagnostic rather than silently dropped.
//
// Functions are declared (name, params, return type) in one pass before
// any body is lowered, so a call can resolve a callee declared later in
// source order - ordinary top-level function declarations have no
// notion of "not yet defined" the way a local variable would.
func (g *Generator) Generate(prog *ast.Program) []*ir.Function {
	var decls []*ast.FuncDecl
	var fns []*ir.Function
	for _, n := range prog.Body {
		fd, ok := n.(*ast.FuncDecl)
		if !ok {
			g.diags.Errorf(n.Range(), "only function declarations are supported at module scope")
			continue
		}
		decls = append(decls, fd)
		fns = append(fns, g.declareFunc(fd))
	}
	for i, fd := range decls {
		g.genFuncBody(fd, fns[i])
	}
	return fns
}

func typeOfAnnotation(t *ast.TypeAnnotation) value.Type {
	if t == nil {
		return value.Any
	}
	switch t.Name {
	case "number":
		return value.TypeNumber
	case "string":
		return value.TypeString
	case "boolean":
		return value.TypeBoolean
	case "bigint":
		return value.TypeBigInt
	case "object":
		return value.TypeObject
	default:
		return value.Any
	}
}

// declareFunc registers fd's signature in the module without lowering
// its body, so callers elsewhere in the same Generate pass can resolve
// it by name regardless of declaration order.
func (g *Generator) declareFunc(fd *ast.FuncDecl) *ir.Function {
	f := g.build.CreateFunction(fd.Name)
	f.ReturnType = typeOfAnnotation(fd.ReturnType)
	for _, p := range fd.Params {
		f.Params = append(f.Params, ir.Param{Name: p.Name, Type: typeOfAnnotation(p.Type)})
	}
	return f
}

func (g *Generator) genFuncBody(fd *ast.FuncDecl, f *ir.Function) {
	entry := f.CreateBasicBlock("entry")
	g.build.SetInsertionBlock(entry)

	g.pushScope()
	defer g.popScope()

	for i, p := range fd.Params {
		load := g.build.CreateLoadParam(i+1, typeOfAnnotation(p.Type), p.Range())
		slot := g.build.CreateAllocStack(p.Name, typeOfAnnotation(p.Type), p.Range())
		g.build.CreateStoreStack(slot, load, p.Range())
		g.bind(p.Name, slot)
	}

	g.genBlock(fd.Body)

	// Every path must end in a terminator; an implicit `return undefined`
	// closes out any fallthrough, matching cobra's default return value
	// for functions without an explicit return (spec.md §4.4).
	if g.build.Block().Terminator() == nil {
		undef := g.build.CreateLoadConst(g.build.UndefinedLiteral(), fd.Range())
		g.build.CreateReturn(undef, fd.Range())
	}
}

func (g *Generator) pushScope() { g.scopes = append(g.scopes, scope{vars: make(map[string]*ir.Instruction)}) }

func (g *Generator) popScope() { g.scopes = g.scopes[:len(g.scopes)-1] }

func (g *Generator) bind(name string, slot *ir.Instruction) {
	g.scopes[len(g.scopes)-1].vars[name] = slot
}

func (g *Generator) lookup(name string) *ir.Instruction {
	for i := len(g.scopes) - 1; i >= 0; i-- {
		if slot, ok := g.scopes[i].vars[name]; ok {
			return slot
		}
	}
	return nil
}

func (g *Generator) genBlock(b *ast.BlockStmt) {
	g.pushScope()
	defer g.popScope()
	for _, stmt := range b.Body {
		if g.build.Block().Terminator() != nil {
			// Unreachable code after a terminator (e.g. statements after
			// a return); SimplifyCFG's dead-block removal handles any
			// resulting unreachable blocks, but there is no block to
			// append to here, so stop walking this list.
			break
		}
		g.genStmt(stmt)
	}
}

func (g *Generator) genStmt(n ast.Node) {
	switch s := n.(type) {
	case *ast.VariableStmt:
		for _, d := range s.Decls {
			g.genVariableDecl(d)
		}
	case *ast.IfStmt:
		g.genIf(s)
	case *ast.ReturnStmt:
		g.genReturn(s)
	case *ast.ExpressionStmt:
		g.genExpr(s.Expression)
	case *ast.BlockStmt:
		g.genBlock(s)
	default:
		g.diags.Errorf(n.Range(), "unsupported statement")
	}
}

func (g *Generator) genVariableDecl(d *ast.VariableDecl) {
	typ := typeOfAnnotation(d.Type)
	slot := g.build.CreateAllocStack(d.Name, typ, d.Range())
	g.bind(d.Name, slot)
	if d.Init != nil {
		v := g.genExpr(d.Init)
		g.build.CreateStoreStack(slot, v, d.Range())
	} else {
		undef := g.build.CreateLoadConst(g.build.UndefinedLiteral(), d.Range())
		g.build.CreateStoreStack(slot, undef, d.Range())
	}
}

func (g *Generator) genIf(s *ast.IfStmt) {
	fn := g.build.Block().Function
	cond := g.genExpr(s.Test)

	thenBB := fn.CreateBasicBlock("if.then")
	joinBB := fn.CreateBasicBlock("if.end")
	var elseBB *ir.BasicBlock
	if s.Alternate != nil {
		elseBB = fn.CreateBasicBlock("if.else")
	} else {
		elseBB = joinBB
	}

	g.build.CreateCondBranch(cond, thenBB, elseBB, s.Range())

	g.build.SetInsertionBlock(thenBB)
	g.genStmt(s.Consequent)
	if g.build.Block().Terminator() == nil {
		g.build.CreateBranch(joinBB, s.Range())
	}

	if s.Alternate != nil {
		g.build.SetInsertionBlock(elseBB)
		g.genStmt(s.Alternate)
		if g.build.Block().Terminator() == nil {
			g.build.CreateBranch(joinBB, s.Range())
		}
	}

	g.build.SetInsertionBlock(joinBB)
}

func (g *Generator) genReturn(s *ast.ReturnStmt) {
	if s.Argument == nil {
		undef := g.build.CreateLoadConst(g.build.UndefinedLiteral(), s.Range())
		g.build.CreateReturn(undef, s.Range())
		return
	}
	v := g.genExpr(s.Argument)
	g.build.CreateReturn(v, s.Range())
}

func (g *Generator) genExpr(n ast.Node) *ir.Instruction {
	switch e := n.(type) {
	case *ast.NumericLiteral:
		return g.build.CreateLoadConst(g.build.NumberLiteral(e.Value), e.Range())
	case *ast.BooleanLiteral:
		return g.build.CreateLoadConst(g.build.BoolLiteral(e.Value), e.Range())
	case *ast.StringLiteral:
		us := g.module.Strings.Intern(e.Value)
		return g.build.CreateLoadConst(g.build.StringLiteral(us), e.Range())
	case *ast.IdentifierExpr:
		slot := g.lookup(e.Name)
		if slot == nil {
			g.diags.Errorf(e.Range(), "undefined identifier %q", e.Name)
			return g.build.CreateLoadConst(g.build.UndefinedLiteral(), e.Range())
		}
		return g.build.CreateLoadStack(slot, e.Range())
	case *ast.BinaryExpr:
		return g.genBinary(e)
	case *ast.UnaryExpr:
		return g.genUnary(e)
	case *ast.CallExpr:
		return g.genCall(e)
	case *ast.MemberExpr:
		// Resolving a.b to a field offset needs the object's class layout,
		// and this front end has no type checker or class declarations to
		// get one from (both are explicit non-goals); a call, by contrast,
		// resolves by static name alone, so calls are supported below even
		// though member access still isn't.
		g.diags.Errorf(n.Range(), "member access is not supported without a type checker or class declarations")
		return g.build.CreateLoadConst(g.build.UndefinedLiteral(), n.Range())
	default:
		g.diags.Errorf(n.Range(), "unsupported expression")
		return g.build.CreateLoadConst(g.build.UndefinedLiteral(), n.Range())
	}
}

func (g *Generator) genBinary(e *ast.BinaryExpr) *ir.Instruction {
	// Assignment is modeled as a BinaryExpr with operator "=" by the
	// parser stub, consistent with a plain recursive-descent expression
	// grammar that treats `=` as the lowest-precedence binary operator.
	if e.Operator == "=" {
		return g.genAssign(e)
	}
	op, ok := ir.BinOpFromSource(e.Operator)
	if !ok {
		g.diags.Errorf(e.Range(), "unknown operator %q", e.Operator)
		op = ir.OpAdd
	}
	lhs := g.genExpr(e.Left)
	rhs := g.genExpr(e.Right)
	return g.build.CreateBinaryOp(op, lhs, rhs, e.Range())
}

func (g *Generator) genAssign(e *ast.BinaryExpr) *ir.Instruction {
	ident, ok := e.Left.(*ast.IdentifierExpr)
	if !ok {
		g.diags.Errorf(e.Range(), "left-hand side of assignment must be an identifier")
		return g.build.CreateLoadConst(g.build.UndefinedLiteral(), e.Range())
	}
	slot := g.lookup(ident.Name)
	if slot == nil {
		g.diags.Errorf(e.Range(), "undefined identifier %q", ident.Name)
		return g.build.CreateLoadConst(g.build.UndefinedLiteral(), e.Range())
	}
	v := g.genExpr(e.Right)
	g.build.CreateStoreStack(slot, v, e.Range())
	return v
}

// genCall lowers a call expression. Calls resolve to a function by
// static name against the module, not through an indirect value
// operand: cobra has no closures or first-class function values, so
// the callee is always a named top-level function declaration.
func (g *Generator) genCall(e *ast.CallExpr) *ir.Instruction {
	ident, ok := e.Callee.(*ast.IdentifierExpr)
	if !ok {
		g.diags.Errorf(e.Range(), "call target must be a named function")
		return g.build.CreateLoadConst(g.build.UndefinedLiteral(), e.Range())
	}
	callee := g.module.FunctionByName(ident.Name)
	if callee == nil {
		g.diags.Errorf(e.Range(), "call to undefined function %q", ident.Name)
		return g.build.CreateLoadConst(g.build.UndefinedLiteral(), e.Range())
	}
	args := make([]*ir.Instruction, len(e.Arguments))
	for i, a := range e.Arguments {
		args[i] = g.genExpr(a)
	}
	return g.build.CreateCall(callee, args, e.Range())
}

func (g *Generator) genUnary(e *ast.UnaryExpr) *ir.Instruction {
	op, ok := ir.UnOpFromSource(e.Operator)
	if !ok {
		g.diags.Errorf(e.Range(), "unknown unary operator %q", e.Operator)
		op = ir.OpNeg
	}
	arg := g.genExpr(e.Argument)
	return g.build.CreateUnaryOp(op, arg, e.Range())
}
