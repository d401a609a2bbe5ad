// Package pass implements the optimization pipeline that runs between
// irgen and register allocation: SimplifyCFG, Mem2Reg, DCE, and the
// constant/parameter hoisting pass (spec.md §4.7-§4.10).
package pass

import (
	"github.com/cobra-lang/cobra/internal/ir"
	"go.uber.org/zap"
)

// FunctionPass runs over one function at a time and reports whether it
// changed anything, the same changed-bit convention KTStephano-GVM's
// compile pipeline uses to decide whether to keep iterating.
type FunctionPass interface {
	Name() string
	RunOnFunction(f *ir.Function) bool
}

// Manager runs a fixed sequence of FunctionPasses over every function in
// a module, re-running the whole sequence on a function until a full
// pass over it produces no changes (a simple fixed-point driver rather
// than per-pass iteration counts).
type Manager struct {
	passes []FunctionPass
	log    *zap.Logger
}

// NewManager builds a pass manager logging to log (nop logger if nil).
func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{log: log}
}

// Add appends a pass to the pipeline, run in the order added.
func (m *Manager) Add(p FunctionPass) { m.passes = append(m.passes, p) }

// RunOnModule runs the full pipeline to a fixed point on every function.
func (m *Manager) RunOnModule(mod *ir.Module) {
	for _, f := range mod.Functions() {
		m.RunOnFunction(f)
	}
}

// RunOnFunction runs the full pipeline to a fixed point on f.
func (m *Manager) RunOnFunction(f *ir.Function) {
	for {
		changed := false
		for _, p := range m.passes {
			if p.RunOnFunction(f) {
				changed = true
				m.log.Debug("pass changed function", zap.String("pass", p.Name()), zap.String("function", f.Name))
			}
		}
		if !changed {
			return
		}
	}
}

// Standard returns the default pipeline: SimplifyCFG, Mem2Reg, DCE, then
// the two lowering passes that must run last, in the order spec.md §4.7
// lists them.
func Standard() []FunctionPass {
	return []FunctionPass{
		&SimplifyCFG{},
		&Mem2Reg{},
		&DCE{},
		&LoadConstants{},
		&LoadParameters{},
	}
}
