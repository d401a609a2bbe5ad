package ir

// UseList is the back-edge list a Value (an *Instruction or a
// *BasicBlock used as a branch target) maintains: every Instruction
// that names it as an operand. Each entry remembers which operand slot
// of the user it corresponds to, so removal is a swap-remove that
// patches exactly one other entry's stored index - the O(1) contract
// spec.md §3 requires.
type UseList struct {
	entries []useEntry
}

type useEntry struct {
	user *Instruction
	slot int
}

func (l *UseList) add(user *Instruction, slot int) int {
	idx := len(l.entries)
	l.entries = append(l.entries, useEntry{user: user, slot: slot})
	return idx
}

func (l *UseList) removeAt(idx int) {
	last := len(l.entries) - 1
	if idx != last {
		moved := l.entries[last]
		l.entries[idx] = moved
		moved.user.operands[moved.slot].indexInUsers = idx
	}
	l.entries = l.entries[:last]
}

// Len returns the number of uses.
func (l *UseList) Len() int { return len(l.entries) }

// At returns the user instruction at use-list index i.
func (l *UseList) At(i int) *Instruction { return l.entries[i].user }

// Users returns every instruction using this value, in no particular
// order (order is not semantically meaningful - only used.(idx) is).
func (l *UseList) Users() []*Instruction {
	out := make([]*Instruction, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.user
	}
	return out
}

// operandKind distinguishes what an Operand slot points at.
type operandKind int

const (
	operandNone operandKind = iota
	operandValue
	operandBlock
)

// Operand is one slot in an Instruction's operand list. It records
// enough to undo itself in O(1): which use-list it lives in, and the
// index within that use-list (indexInUsers), matching spec.md §3's
// "(value, index_in_users)" pair.
type Operand struct {
	kind         operandKind
	valueTarget  *Instruction
	blockTarget  *BasicBlock
	indexInUsers int
}

// Value returns the operand's value target, or nil if this operand is
// not a value operand.
func (o *Operand) Value() *Instruction {
	if o.kind == operandValue {
		return o.valueTarget
	}
	return nil
}

// Block returns the operand's block target, or nil if this operand is
// not a block operand.
func (o *Operand) Block() *BasicBlock {
	if o.kind == operandBlock {
		return o.blockTarget
	}
	return nil
}

func clearOperand(self *Instruction, i int) {
	op := &self.operands[i]
	switch op.kind {
	case operandValue:
		op.valueTarget.uses.removeAt(op.indexInUsers)
	case operandBlock:
		op.blockTarget.uses.removeAt(op.indexInUsers)
	}
	*op = Operand{}
}

// SetValueOperand replaces (or sets, growing as needed) operand slot i
// to reference value v, maintaining v's use list.
func (self *Instruction) SetValueOperand(i int, v *Instruction) {
	self.growOperands(i)
	clearOperand(self, i)
	idx := v.uses.add(self, i)
	self.operands[i] = Operand{kind: operandValue, valueTarget: v, indexInUsers: idx}
}

// AddValueOperand appends a new value operand and returns its index.
func (self *Instruction) AddValueOperand(v *Instruction) int {
	i := len(self.operands)
	self.operands = append(self.operands, Operand{})
	self.SetValueOperand(i, v)
	return i
}

// SetBlockOperand replaces (or sets, growing as needed) operand slot i
// to reference block target b, maintaining b's use list.
func (self *Instruction) SetBlockOperand(i int, b *BasicBlock) {
	self.growOperands(i)
	clearOperand(self, i)
	idx := b.uses.add(self, i)
	self.operands[i] = Operand{kind: operandBlock, blockTarget: b, indexInUsers: idx}
}

// AddBlockOperand appends a new block operand and returns its index.
func (self *Instruction) AddBlockOperand(b *BasicBlock) int {
	i := len(self.operands)
	self.operands = append(self.operands, Operand{})
	self.SetBlockOperand(i, b)
	return i
}

func (self *Instruction) growOperands(i int) {
	for len(self.operands) <= i {
		self.operands = append(self.operands, Operand{})
	}
}

// Operands returns the instruction's operand list.
func (self *Instruction) Operands() []Operand { return self.operands }

// NumOperands returns the number of operand slots.
func (self *Instruction) NumOperands() int { return len(self.operands) }

// Operand returns operand slot i.
func (self *Instruction) Operand(i int) *Operand { return &self.operands[i] }

// RemoveOperand deletes operand slot i, shifting later operands down by
// one and patching their stored indices (used when e.g. a phi entry for
// a removed predecessor is dropped).
func (self *Instruction) RemoveOperand(i int) {
	clearOperand(self, i)
	self.operands = append(self.operands[:i], self.operands[i+1:]...)
	for j := i; j < len(self.operands); j++ {
		op := &self.operands[j]
		switch op.kind {
		case operandValue:
			op.valueTarget.uses.entries[op.indexInUsers].slot = j
		case operandBlock:
			op.blockTarget.uses.entries[op.indexInUsers].slot = j
		}
	}
}

// EraseFromParent drops every remaining use of self (callers that need
// those uses rewired call ReplaceAllUsesWith first), detaches self from
// its own operands' use lists, and removes self from its owning block.
func (self *Instruction) EraseFromParent() {
	self.ReplaceAllUsesWith(nil)
	for i := range self.operands {
		clearOperand(self, i)
	}
	self.operands = nil
	if self.Block != nil {
		self.Block.remove(self)
	}
}

// ReplaceAllUsesWith rewrites every operand across the function that
// currently names self to instead name replacement. If replacement is
// nil, uses are simply cleared (only valid once the instruction's
// result is truly unused, e.g. during erasure of unreachable code).
func (self *Instruction) ReplaceAllUsesWith(replacement *Instruction) {
	for self.uses.Len() > 0 {
		e := self.uses.entries[self.uses.Len()-1]
		if replacement == nil {
			self.uses.removeAt(len(self.uses.entries) - 1)
			e.user.operands[e.slot] = Operand{}
		} else {
			e.user.SetValueOperand(e.slot, replacement)
		}
	}
}

// Users returns every instruction that uses self's produced value.
func (self *Instruction) Users() []*Instruction { return self.uses.Users() }

// NumUsers returns the number of uses of self's produced value.
func (self *Instruction) NumUsers() int { return self.uses.Len() }

// HasUsers reports whether self's value is used anywhere.
func (self *Instruction) HasUsers() bool { return self.uses.Len() > 0 }
