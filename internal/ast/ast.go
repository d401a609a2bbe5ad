// Package ast defines the AST node shapes the IR generator consumes.
// The lexer and parser that produce these nodes are collaborators
// outside this module's scope (spec.md §1); this package only fixes the
// contract between them and internal/irgen, modeled on
// include/cobra/AST/Tree.h.
package ast

import "github.com/cobra-lang/cobra/internal/diag"

// Node is implemented by every AST node. Range returns the node's
// source span for diagnostics.
type Node interface {
	Range() diag.Range
}

type base struct {
	R diag.Range
}

func (b base) Range() diag.Range { return b.R }

// Program is the root node: a sequence of top-level statements.
type Program struct {
	base
	Body []Node
}

// TypeAnnotation names a static type written in source, e.g. `: number`.
// The IR generator does not type-check against it; it is carried through
// for diagnostics and for a future checker (non-goal here).
type TypeAnnotation struct {
	base
	Name string
}

// ParamDecl is one function parameter.
type ParamDecl struct {
	base
	Name    string
	Type    *TypeAnnotation
	Default Node // optional initializer expression, nil if none
}

// FuncDecl declares a named function.
type FuncDecl struct {
	base
	Name       string
	Params     []*ParamDecl
	Body       *BlockStmt
	ReturnType *TypeAnnotation
}

// BlockStmt is a braced statement sequence.
type BlockStmt struct {
	base
	Body []Node
}

// VariableKind distinguishes let/const/var-equivalent declaration kinds.
type VariableKind int

const (
	KindLet VariableKind = iota
	KindConst
	KindVar
)

// VariableDecl binds a name to an optional initializer expression.
type VariableDecl struct {
	base
	Name string
	Type *TypeAnnotation
	Init Node // optional, nil if none
}

// VariableStmt is one or more VariableDecls sharing a declaration kind.
type VariableStmt struct {
	base
	Kind  VariableKind
	Decls []*VariableDecl
}

// IfStmt is `if (Test) Consequent [else Alternate]`.
type IfStmt struct {
	base
	Test       Node
	Consequent Node
	Alternate  Node // optional, nil if no else branch
}

// ReturnStmt is `return [Argument];`.
type ReturnStmt struct {
	base
	Argument Node // optional, nil for a bare return
}

// ExpressionStmt wraps an expression used as a statement.
type ExpressionStmt struct {
	base
	Expression Node
}

// BinaryExpr is a binary operator application.
type BinaryExpr struct {
	base
	Operator string
	Left     Node
	Right    Node
}

// UnaryExpr is a prefix unary operator application.
type UnaryExpr struct {
	base
	Operator string
	Argument Node
}

// CallExpr invokes Callee with Arguments.
type CallExpr struct {
	base
	Callee    Node
	Arguments []Node
}

// MemberExpr is `Object.Property` (or `Object[Property]` when Computed).
type MemberExpr struct {
	base
	Object   Node
	Property Node
	Computed bool
}

// IdentifierExpr references a bound name.
type IdentifierExpr struct {
	base
	Name           string
	TypeAnnotation *TypeAnnotation
	Optional       bool
}

// BooleanLiteral is a `true`/`false` literal.
type BooleanLiteral struct {
	base
	Value bool
}

// NumericLiteral is a numeric literal.
type NumericLiteral struct {
	base
	Value float64
}

// StringLiteral is a string literal.
type StringLiteral struct {
	base
	Value string
}

// NewProgram, NewFuncDecl, etc. are convenience constructors used by
// tests and by any in-process parser stub that wants source ranges
// filled in without repeating the base{} boilerplate everywhere.

func NewProgram(r diag.Range, body ...Node) *Program { return &Program{base{r}, body} }

func NewFuncDecl(r diag.Range, name string, params []*ParamDecl, body *BlockStmt, ret *TypeAnnotation) *FuncDecl {
	return &FuncDecl{base{r}, name, params, body, ret}
}

func NewParamDecl(r diag.Range, name string, typ *TypeAnnotation) *ParamDecl {
	return &ParamDecl{base{r}, name, typ, nil}
}

func NewBlockStmt(r diag.Range, body ...Node) *BlockStmt { return &BlockStmt{base{r}, body} }

func NewVariableStmt(r diag.Range, kind VariableKind, decls ...*VariableDecl) *VariableStmt {
	return &VariableStmt{base{r}, kind, decls}
}

func NewVariableDecl(r diag.Range, name string, init Node) *VariableDecl {
	return &VariableDecl{base{r}, name, nil, init}
}

func NewIfStmt(r diag.Range, test, consequent, alternate Node) *IfStmt {
	return &IfStmt{base{r}, test, consequent, alternate}
}

func NewReturnStmt(r diag.Range, arg Node) *ReturnStmt { return &ReturnStmt{base{r}, arg} }

func NewExpressionStmt(r diag.Range, expr Node) *ExpressionStmt {
	return &ExpressionStmt{base{r}, expr}
}

func NewBinaryExpr(r diag.Range, op string, left, right Node) *BinaryExpr {
	return &BinaryExpr{base{r}, op, left, right}
}

func NewUnaryExpr(r diag.Range, op string, arg Node) *UnaryExpr {
	return &UnaryExpr{base{r}, op, arg}
}

func NewCallExpr(r diag.Range, callee Node, args ...Node) *CallExpr {
	return &CallExpr{base{r}, callee, args}
}

func NewMemberExpr(r diag.Range, obj, prop Node, computed bool) *MemberExpr {
	return &MemberExpr{base{r}, obj, prop, computed}
}

func NewIdentifierExpr(r diag.Range, name string) *IdentifierExpr {
	return &IdentifierExpr{base{r}, name, nil, false}
}

func NewBooleanLiteral(r diag.Range, v bool) *BooleanLiteral { return &BooleanLiteral{base{r}, v} }

func NewNumericLiteral(r diag.Range, v float64) *NumericLiteral { return &NumericLiteral{base{r}, v} }

func NewStringLiteral(r diag.Range, v string) *StringLiteral { return &StringLiteral{base{r}, v} }
