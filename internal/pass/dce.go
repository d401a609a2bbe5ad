package pass

import "github.com/cobra-lang/cobra/internal/ir"

// DCE removes instructions with no users that are neither terminators
// nor memory-writing (StoreStack always has its address's later reads
// depend on it, so it is conservatively kept even with no direct users;
// AllocStack with no remaining uses is genuinely dead once Mem2Reg has
// promoted every load/store of it away). Runs to a fixed point within
// one RunOnFunction call since removing one dead instruction can make
// one of its operands' instructions newly dead (spec.md §4.9).
type DCE struct{}

func (*DCE) Name() string { return "dce" }

func (d *DCE) RunOnFunction(f *ir.Function) bool {
	changed := false
	for {
		progress := false
		for _, b := range f.Blocks() {
			for _, in := range append([]*ir.Instruction(nil), b.Instructions()...) {
				if d.isDead(in) {
					in.EraseFromParent()
					progress = true
				}
			}
		}
		if !progress {
			return changed
		}
		changed = true
	}
}

func (d *DCE) isDead(in *ir.Instruction) bool {
	if in.HasUsers() {
		return false
	}
	if in.Kind.IsTerminator() {
		return false
	}
	if in.Kind == ir.KindStoreStack {
		return false
	}
	if in.Kind == ir.KindCall {
		// A call can run arbitrary side-effecting code in its callee, so
		// it is kept even with no users, same as StoreStack.
		return false
	}
	if in.Kind == ir.KindPhi {
		// A phi can be dead even though it names operands; removing it
		// is still safe since RemoveIncoming/ReplaceAllUsesWith is not
		// involved - it simply has no users.
		return true
	}
	return true
}
