package ir

// Kind discriminates the instruction families listed in spec.md §3. A
// single tagged enum plus per-kind accessor fields stands in for the
// virtual-method + RTTI hierarchy the original C++ uses (DESIGN NOTES §9).
type Kind int

const (
	KindLoadConst Kind = iota
	KindLoadParam
	KindAllocStack
	KindLoadStack
	KindStoreStack
	KindBinaryOp
	KindUnaryOp
	KindMov
	KindBranch
	KindCondBranch
	KindReturn
	KindPhi
	KindCall
)

func (k Kind) String() string {
	switch k {
	case KindLoadConst:
		return "LoadConst"
	case KindLoadParam:
		return "LoadParam"
	case KindAllocStack:
		return "AllocStack"
	case KindLoadStack:
		return "LoadStack"
	case KindStoreStack:
		return "StoreStack"
	case KindBinaryOp:
		return "BinaryOp"
	case KindUnaryOp:
		return "UnaryOp"
	case KindMov:
		return "Mov"
	case KindBranch:
		return "Branch"
	case KindCondBranch:
		return "CondBranch"
	case KindReturn:
		return "Return"
	case KindPhi:
		return "Phi"
	case KindCall:
		return "Call"
	default:
		return "?"
	}
}

// IsTerminator reports whether an instruction of this kind must be the
// last instruction in a basic block.
func (k Kind) IsTerminator() bool {
	return k == KindBranch || k == KindCondBranch || k == KindReturn
}

// BinOp enumerates the binary operators IR-gen can lower a BinaryExpr to.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNeq
	OpLt
	OpLe
	OpGt
	OpGe
)

var binOpNames = map[BinOp]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpEq: "==", OpNeq: "!=", OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=",
}

func (b BinOp) String() string { return binOpNames[b] }

// BinOpFromSource maps the parser's operator spelling to a BinOp. Used
// by irgen when lowering BinaryExpr nodes.
func BinOpFromSource(op string) (BinOp, bool) {
	for k, v := range binOpNames {
		if v == op {
			return k, true
		}
	}
	return 0, false
}

// UnOp enumerates unary operators.
type UnOp int

const (
	OpNeg UnOp = iota
	OpNot
)

func (u UnOp) String() string {
	if u == OpNeg {
		return "-"
	}
	return "!"
}

// UnOpFromSource maps the parser's operator spelling to a UnOp.
func UnOpFromSource(op string) (UnOp, bool) {
	switch op {
	case "-":
		return OpNeg, true
	case "!":
		return OpNot, true
	default:
		return 0, false
	}
}
