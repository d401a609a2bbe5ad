package ir

import (
	"github.com/cobra-lang/cobra/internal/arena"
	"github.com/cobra-lang/cobra/internal/strtab"
)

// Module owns every Function compiled together, plus the arena and
// string table every IR node and interned literal lives in. It is
// created at compile start and its arena is released after bytecode
// emission (spec.md §3).
type Module struct {
	Arena   *arena.Arena
	Strings *strtab.Table

	functions []*Function
	literals  map[literalKey]*Literal
}

// NewModule allocates a fresh module with its own arena and string table.
func NewModule() *Module {
	a := arena.New()
	return &Module{
		Arena:    a,
		Strings:  strtab.New(a),
		literals: make(map[literalKey]*Literal),
	}
}

// Functions returns every function declared in the module, in
// declaration order.
func (m *Module) Functions() []*Function { return m.functions }

// FunctionByName looks up a previously created function by name.
func (m *Module) FunctionByName(name string) *Function {
	for _, f := range m.functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// CreateFunction declares a new, block-less function.
func (m *Module) CreateFunction(name string) *Function {
	f := &Function{Module: m, Name: name}
	m.functions = append(m.functions, f)
	return f
}

// internLiteral returns the module-unique Literal for l's content,
// allocating a new one on first use (spec.md §3: "Literals are
// module-level-unique by content").
func (m *Module) internLiteral(l Literal) *Literal {
	k := l.key()
	if existing, ok := m.literals[k]; ok {
		return existing
	}
	stored := l
	m.literals[k] = &stored
	return &stored
}
