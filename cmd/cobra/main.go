// Command cobra is the CLI collaborator around the compiler/interpreter
// core: it reads a source file, lowers it through internal/runtime, and
// runs the resulting bytecode, following spec.md §6's "CLI surface
// (collaborator, not core)" note.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Exit codes per spec.md §6/§7: 0 success, 1 compile error, 2 runtime
// fatal.
const (
	exitOK           = 0
	exitCompileError = 1
	exitRuntimeFatal = 2
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		// cobra already printed the error; translate it to an exit code.
		os.Exit(exitCodeFor(err))
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "cobra",
		Short:         "Compile and run a cobra source file",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newRunCommand())
	return root
}

func exitCodeFor(err error) int {
	switch err.(type) {
	case *compileError:
		return exitCompileError
	case *runtimeError:
		return exitRuntimeFatal
	default:
		return exitRuntimeFatal
	}
}

// compileError and runtimeError wrap the two fatal categories spec.md §7
// distinguishes so main can map them to distinct exit codes without
// string-matching error text.
type compileError struct{ err error }

func (e *compileError) Error() string { return e.err.Error() }
func (e *compileError) Unwrap() error { return e.err }

type runtimeError struct{ err error }

func (e *runtimeError) Error() string { return e.err.Error() }
func (e *runtimeError) Unwrap() error { return e.err }
