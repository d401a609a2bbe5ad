package ir

import (
	"fmt"
	"strings"
)

// numbering assigns each instruction in a function a dense "%N" name in
// block-then-intra-block order, purely for textual dumps (spec.md §4.3's
// numbering pass is the real, semantically load-bearing one; this is a
// separate, throwaway numbering used only by String()/--dump-ir).
type numbering struct {
	index map[*Instruction]int
}

func numberFunction(f *Function) *numbering {
	n := &numbering{index: make(map[*Instruction]int)}
	i := 0
	for _, b := range f.blocks {
		for _, in := range b.instrs {
			n.index[in] = i
			i++
		}
	}
	return n
}

func (n *numbering) ref(i *Instruction) string {
	if i == nil {
		return "<nil>"
	}
	if idx, ok := n.index[i]; ok {
		return fmt.Sprintf("%%%d", idx)
	}
	return "%?"
}

// instructionString renders a single instruction without a function-wide
// numbering context, as "%?"-style operand refs; used by Instruction.String()
// for ad-hoc debugging (e.g. in test failure messages).
func instructionString(i *Instruction) string {
	var n *numbering
	if i.Block != nil && i.Block.Function != nil {
		n = numberFunction(i.Block.Function)
	} else {
		n = &numbering{index: map[*Instruction]int{}}
	}
	return formatInstruction(n, i)
}

func formatInstruction(n *numbering, i *Instruction) string {
	var b strings.Builder
	if i.Kind != KindBranch && i.Kind != KindCondBranch && i.Kind != KindReturn && i.Kind != KindStoreStack {
		fmt.Fprintf(&b, "%s = ", n.ref(i))
	}
	switch i.Kind {
	case KindLoadConst:
		fmt.Fprintf(&b, "LoadConst %s", i.Literal.String())
	case KindLoadParam:
		fmt.Fprintf(&b, "LoadParam %d", i.ParamIndex)
	case KindAllocStack:
		fmt.Fprintf(&b, "AllocStack %q", i.slotName)
	case KindLoadStack:
		fmt.Fprintf(&b, "LoadStack %s", n.ref(i.Addr()))
	case KindStoreStack:
		fmt.Fprintf(&b, "StoreStack %s, %s", n.ref(i.Addr()), n.ref(i.StoredValue()))
	case KindBinaryOp:
		fmt.Fprintf(&b, "BinaryOp %s %s, %s", i.BinOp, n.ref(i.Lhs()), n.ref(i.Rhs()))
	case KindUnaryOp:
		fmt.Fprintf(&b, "UnaryOp %s %s", i.UnOp, n.ref(i.Arg()))
	case KindMov:
		fmt.Fprintf(&b, "Mov %s", n.ref(i.Arg()))
	case KindBranch:
		fmt.Fprintf(&b, "Branch %s", blockName(i.Target()))
	case KindCondBranch:
		fmt.Fprintf(&b, "CondBranch %s, %s, %s", n.ref(i.Cond()), blockName(i.Then()), blockName(i.Else()))
	case KindReturn:
		if v := i.ReturnValue(); v != nil {
			fmt.Fprintf(&b, "Return %s", n.ref(v))
		} else {
			b.WriteString("Return")
		}
	case KindPhi:
		b.WriteString("Phi ")
		for idx, pred := range i.PhiPreds {
			if idx > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "[%s: %s]", blockName(pred), n.ref(i.operands[idx].Value()))
		}
	case KindCall:
		fmt.Fprintf(&b, "Call %s(", i.Callee.Name)
		for idx, arg := range i.Args() {
			if idx > 0 {
				b.WriteString(", ")
			}
			b.WriteString(n.ref(arg))
		}
		b.WriteString(")")
	default:
		b.WriteString("?instruction?")
	}
	return b.String()
}

func blockName(b *BasicBlock) string {
	if b == nil {
		return "<nil>"
	}
	return b.Name
}

// String renders the block's label and every instruction beneath it,
// using function-wide numbering.
func (b *BasicBlock) String() string {
	n := numberFunction(b.Function)
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:\n", b.Name)
	for _, in := range b.instrs {
		fmt.Fprintf(&sb, "  %s\n", formatInstruction(n, in))
	}
	return sb.String()
}

// String renders the whole function as textual IR, used by the CLI's
// --dump-ir flag.
func (f *Function) String() string {
	n := numberFunction(f)
	var sb strings.Builder
	fmt.Fprintf(&sb, "function %s(", f.Name)
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %s", p.Name, p.Type)
	}
	sb.WriteString(") {\n")
	for _, b := range f.blocks {
		fmt.Fprintf(&sb, "%s:\n", b.Name)
		for _, in := range b.instrs {
			fmt.Fprintf(&sb, "  %s\n", formatInstruction(n, in))
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}

// String renders every function in the module, in declaration order.
func (m *Module) String() string {
	var sb strings.Builder
	for i, f := range m.functions {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(f.String())
	}
	return sb.String()
}
