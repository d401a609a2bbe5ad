// Package runtime owns the pieces spec.md §5 says share nothing across
// independent invocations: an IR module (and the arena/string table it
// carries), a managed heap, and the pipeline stages that take an AST
// program from source to a returned Value. Multiple Runtimes may exist
// in one process; they never share state (spec.md §5: "Multiple runtimes
// in one process are permitted but share nothing").
package runtime

import (
	"github.com/cobra-lang/cobra/internal/ast"
	"github.com/cobra-lang/cobra/internal/bytecode"
	"github.com/cobra-lang/cobra/internal/diag"
	"github.com/cobra-lang/cobra/internal/heap"
	"github.com/cobra-lang/cobra/internal/interp"
	"github.com/cobra-lang/cobra/internal/ir"
	"github.com/cobra-lang/cobra/internal/irgen"
	"github.com/cobra-lang/cobra/internal/pass"
	"github.com/cobra-lang/cobra/internal/regalloc"
	"github.com/cobra-lang/cobra/internal/value"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrCompileFailed wraps a non-empty error diagnostic bag. Its Diags
// field is the caller's hook for printing cause/location; cmd/cobra maps
// every Load failure, this one included, to exit code 1.
type ErrCompileFailed struct {
	Diags []diag.Diagnostic
}

func (e *ErrCompileFailed) Error() string {
	if len(e.Diags) == 0 {
		return "compilation failed"
	}
	return e.Diags[0].String()
}

// Options configures one Runtime's pipeline and heap sizing.
type Options struct {
	// Optimize runs the standard pass pipeline (SimplifyCFG, Mem2Reg,
	// DCE, the two lowering passes). Disabling it still requires
	// Mem2Reg and the lowering passes to run, since the emitter rejects
	// un-promoted stack slots - see Load's note.
	Optimize bool
	// MaxHeapRegions caps the managed heap (0 means unbounded, per
	// heap.NewSpace).
	MaxHeapRegions int
	Log            *zap.Logger
}

// DefaultOptions returns the pipeline enabled, an unbounded heap.
func DefaultOptions() Options {
	return Options{Optimize: true, MaxHeapRegions: 0}
}

// Runtime is the single owner of one compilation's arena, string table,
// IR module, and heap (spec.md §5's "Shared resources" paragraph). It is
// not safe for concurrent use from multiple goroutines; the interpreter
// is single-threaded cooperative per spec.md §5.
type Runtime struct {
	opts Options
	log  *zap.Logger

	module  *ir.Module
	bcode   *bytecode.Module
	heap    *heap.Heap
	interp  *interp.Interpreter
	entries map[string]*bytecode.Function
}

// New creates a Runtime. The AST-producing front end (lexer/parser) is a
// collaborator outside this core (spec.md §1); callers supply an
// *ast.Program already parsed.
func New(opts Options) *Runtime {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	h := heap.New(opts.MaxHeapRegions)
	return &Runtime{
		opts:    opts,
		log:     opts.Log,
		heap:    h,
		entries: make(map[string]*bytecode.Function),
	}
}

// Load compiles prog's function declarations through irgen, the
// optimization pipeline (unless disabled), register allocation, and
// bytecode emission, making every function callable by name via Run.
//
// Mem2Reg and the two lowering passes always run even when
// opts.Optimize is false: the bytecode emitter has no lowering of its
// own for AllocStack/LoadStack/StoreStack (by design - see
// internal/bytecode's rejection of un-promoted slots), so "no optimize"
// here means "skip SimplifyCFG and DCE", not "skip SSA promotion
// entirely".
func (rt *Runtime) Load(prog *ast.Program) error {
	rt.module = ir.NewModule()
	var diags diag.Bag
	g := irgen.New(rt.module, &diags)
	fns := g.Generate(prog)
	if diags.HasErrors() {
		return &ErrCompileFailed{Diags: diags.All()}
	}

	mgr := pass.NewManager(rt.log)
	if rt.opts.Optimize {
		for _, p := range pass.Standard() {
			mgr.Add(p)
		}
	} else {
		mgr.Add(&pass.Mem2Reg{})
		mgr.Add(&pass.LoadConstants{})
		mgr.Add(&pass.LoadParameters{})
	}
	for _, f := range fns {
		mgr.RunOnFunction(f)
	}

	bmod := &bytecode.Module{}
	for _, f := range fns {
		result := regalloc.Allocate(f)
		bf, err := bytecode.EmitFunction(f, result.NumRegisters)
		if err != nil {
			return &ErrCompileFailed{Diags: []diag.Diagnostic{{
				Severity: diag.Error,
				Message:  errors.Wrapf(err, "emitting %s", f.Name).Error(),
			}}}
		}
		bmod.Functions = append(bmod.Functions, bf)
		rt.entries[f.Name] = bf
	}
	rt.bcode = bmod
	rt.interp = interp.New(rt.heap, bmod)
	rt.log.Debug("module loaded", zap.Int("functions", len(bmod.Functions)))
	return nil
}

// EntryPoint looks up a loaded function by name, for Run's caller to
// resolve "the" entry function (spec.md's CLI passes a fixed name, e.g.
// "main").
func (rt *Runtime) EntryPoint(name string) (*bytecode.Function, bool) {
	fn, ok := rt.entries[name]
	return fn, ok
}

// Run executes fn to completion and returns its result. Load must have
// been called first; fn is ordinarily the result of EntryPoint on this
// same Runtime, since the interpreter resolves Call targets against this
// Runtime's own bytecode module.
func (rt *Runtime) Run(fn *bytecode.Function, args []value.Value) (value.Value, error) {
	if rt.interp == nil {
		return value.Value{}, errors.New("runtime: Run called before Load")
	}
	return rt.interp.Run(fn, args)
}

// Heap exposes the managed heap, e.g. for a CLI to format a returned
// string Value back to a Go string.
func (rt *Runtime) Heap() *heap.Heap { return rt.heap }

// Module exposes the compiled IR module, e.g. for --dump-ir.
func (rt *Runtime) Module() *ir.Module { return rt.module }

// Bytecode exposes the emitted bytecode module, e.g. for --dump-bytecode.
func (rt *Runtime) Bytecode() *bytecode.Module { return rt.bcode }

// Close releases the Runtime's arena. After Close, the Runtime's IR and
// any Values pointing into its heap must not be used.
func (rt *Runtime) Close() {
	if rt.module != nil {
		rt.module.Arena.Release()
	}
}
