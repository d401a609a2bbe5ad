package ir

import (
	"testing"

	"github.com/cobra-lang/cobra/internal/diag"
	"github.com/cobra-lang/cobra/internal/value"
	"github.com/stretchr/testify/require"
)

// buildDiamond builds:
//
//	entry: branch on param 1
//	then:  x = 1; jump join
//	els:   x = 2; jump join
//	join:  phi(then: 1, els: 2); return phi
func buildDiamond(t *testing.T) (*Module, *Function) {
	t.Helper()
	m := NewModule()
	f := m.CreateFunction("diamond")
	f.Params = []Param{{Name: "cond", Type: value.TypeBoolean}}
	f.ReturnType = value.TypeNumber

	b := NewBuilder(m)
	entry := f.CreateBasicBlock("entry")
	thenBB := f.CreateBasicBlock("then")
	elseBB := f.CreateBasicBlock("else")
	joinBB := f.CreateBasicBlock("join")

	b.SetInsertionBlock(entry)
	cond := b.CreateLoadParam(1, value.TypeBoolean, diag.Range{})
	b.CreateCondBranch(cond, thenBB, elseBB, diag.Range{})

	b.SetInsertionBlock(thenBB)
	one := b.CreateLoadConst(b.NumberLiteral(1), diag.Range{})
	b.CreateBranch(joinBB, diag.Range{})

	b.SetInsertionBlock(elseBB)
	two := b.CreateLoadConst(b.NumberLiteral(2), diag.Range{})
	b.CreateBranch(joinBB, diag.Range{})

	b.SetInsertionBlock(joinBB)
	phi := b.CreatePhi(value.TypeNumber, diag.Range{})
	phi.AddIncoming(one, thenBB)
	phi.AddIncoming(two, elseBB)
	b.CreateReturn(phi, diag.Range{})

	return m, f
}

func TestBuilderProducesWellFormedUseDef(t *testing.T) {
	_, f := buildDiamond(t)
	entry, thenBB, elseBB, joinBB := f.blocks[0], f.blocks[1], f.blocks[2], f.blocks[3]

	require.Equal(t, entry, f.Entry())
	require.Len(t, entry.Successors(), 2)
	require.Contains(t, joinBB.Predecessors(), thenBB)
	require.Contains(t, joinBB.Predecessors(), elseBB)
	require.Len(t, joinBB.Predecessors(), 2)

	cond := entry.instrs[0]
	condBranch := entry.Terminator()
	require.Equal(t, KindCondBranch, condBranch.Kind)
	require.Equal(t, 1, cond.NumUsers())
	require.Same(t, condBranch, cond.Users()[0])

	phi := joinBB.Phis()[0]
	require.Equal(t, 2, phi.NumOperands())
	one := thenBB.instrs[0]
	two := elseBB.instrs[0]
	require.Same(t, one, phi.PhiIncoming(thenBB))
	require.Same(t, two, phi.PhiIncoming(elseBB))
	require.Equal(t, 1, one.NumUsers())
	require.Equal(t, 1, two.NumUsers())
}

func TestReplaceAllUsesWithMovesUseEdges(t *testing.T) {
	_, f := buildDiamond(t)
	thenBB := f.blocks[1]
	one := thenBB.instrs[0]

	undef := &Instruction{Kind: KindLoadConst, Literal: &Literal{Kind: LiteralUndefined}, Type: value.TypeUndefined}
	one.ReplaceAllUsesWith(undef)
	require.Zero(t, one.NumUsers())

	joinBB := f.blocks[3]
	phi := joinBB.Phis()[0]
	require.Same(t, undef, phi.PhiIncoming(thenBB))
}

func TestCFGReachability(t *testing.T) {
	_, f := buildDiamond(t)
	cfg := BuildCFG(f)
	rpo := cfg.ReversePostorder()
	require.Len(t, rpo, 4)
	require.Equal(t, f.Entry(), rpo[0])
	require.True(t, cfg.IsReachable(f.blocks[3]))

	unreachable := f.CreateBasicBlock("dead")
	b := NewBuilder(f.Module)
	b.SetInsertionBlock(unreachable)
	b.CreateReturn(nil, diag.Range{})
	cfg2 := BuildCFG(f)
	require.False(t, cfg2.IsReachable(unreachable))
}

func TestDominance(t *testing.T) {
	_, f := buildDiamond(t)
	entry, thenBB, elseBB, joinBB := f.blocks[0], f.blocks[1], f.blocks[2], f.blocks[3]

	dt := BuildDomTree(f)
	require.Nil(t, dt.IDom(entry))
	require.Equal(t, entry, dt.IDom(thenBB))
	require.Equal(t, entry, dt.IDom(elseBB))
	require.Equal(t, entry, dt.IDom(joinBB))

	require.True(t, dt.Dominates(entry, joinBB))
	require.False(t, dt.Dominates(thenBB, joinBB))

	require.Contains(t, dt.Frontier(thenBB), joinBB)
	require.Contains(t, dt.Frontier(elseBB), joinBB)
	require.Empty(t, dt.Frontier(joinBB))
}

func TestFunctionAndModuleString(t *testing.T) {
	m, f := buildDiamond(t)
	s := f.String()
	require.Contains(t, s, "function diamond(cond: boolean) {")
	require.Contains(t, s, "CondBranch")
	require.Contains(t, s, "Phi")
	require.Contains(t, m.String(), "diamond")
}

func TestCreateCallRecordsCalleeAndArgs(t *testing.T) {
	m := NewModule()
	callee := m.CreateFunction("add")
	callee.Params = []Param{{Name: "a", Type: value.TypeNumber}, {Name: "b", Type: value.TypeNumber}}
	callee.ReturnType = value.TypeNumber

	caller := m.CreateFunction("main")
	b := NewBuilder(m)
	entry := caller.CreateBasicBlock("entry")
	b.SetInsertionBlock(entry)

	a := b.CreateLoadConst(b.NumberLiteral(40), diag.Range{})
	c := b.CreateLoadConst(b.NumberLiteral(2), diag.Range{})
	call := b.CreateCall(callee, []*Instruction{a, c}, diag.Range{})
	b.CreateReturn(call, diag.Range{})

	require.Equal(t, KindCall, call.Kind)
	require.Same(t, callee, call.Callee)
	require.Equal(t, value.TypeNumber, call.Type)
	require.Equal(t, []*Instruction{a, c}, call.Args())
	require.Equal(t, 1, a.NumUsers())
	require.Equal(t, 1, c.NumUsers())
	require.Contains(t, call.String(), "add")
}

func TestLiteralInterning(t *testing.T) {
	m := NewModule()
	b := NewBuilder(m)
	l1 := b.NumberLiteral(42)
	l2 := b.NumberLiteral(42)
	require.Same(t, l1, l2)

	l3 := b.NumberLiteral(43)
	require.NotSame(t, l1, l3)
}
