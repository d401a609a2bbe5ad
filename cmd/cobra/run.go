package main

import (
	"fmt"
	"os"

	"github.com/cobra-lang/cobra/internal/runtime"
	"github.com/cobra-lang/cobra/internal/value"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCommand() *cobra.Command {
	var (
		dumpIR       bool
		dumpBytecode bool
		noOptimize   bool
		entry        string
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:   "run <source-file>",
		Short: "Compile and run a cobra source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(args[0], runFlags{
				dumpIR:       dumpIR,
				dumpBytecode: dumpBytecode,
				noOptimize:   noOptimize,
				entry:        entry,
				verbose:      verbose,
			})
		},
	}

	cmd.Flags().BoolVar(&dumpIR, "dump-ir", false, "print the post-pipeline IR instead of running it")
	cmd.Flags().BoolVar(&dumpBytecode, "dump-bytecode", false, "print the disassembled bytecode instead of running it")
	cmd.Flags().BoolVar(&noOptimize, "no-optimize", false, "skip SimplifyCFG/DCE (SSA promotion and lowering still run)")
	cmd.Flags().StringVar(&entry, "entry", "main", "name of the function to run")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline stage activity")

	return cmd
}

type runFlags struct {
	dumpIR       bool
	dumpBytecode bool
	noOptimize   bool
	entry        string
	verbose      bool
}

func runFile(path string, flags runFlags) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return &compileError{err: err}
	}

	prog, err := ParseSource(path, string(src))
	if err != nil {
		return &compileError{err: err}
	}

	opts := runtime.DefaultOptions()
	opts.Optimize = !flags.noOptimize
	if flags.verbose {
		log, _ := zap.NewDevelopment()
		opts.Log = log
	}

	rt := runtime.New(opts)
	defer rt.Close()

	if err := rt.Load(prog); err != nil {
		return &compileError{err: err}
	}

	if flags.dumpIR {
		for _, f := range rt.Module().Functions() {
			fmt.Println(f.String())
		}
		return nil
	}

	fn, ok := rt.EntryPoint(flags.entry)
	if !ok {
		return &compileError{err: fmt.Errorf("no function named %q", flags.entry)}
	}

	if flags.dumpBytecode {
		for _, f := range rt.Bytecode().Functions {
			fmt.Print(disassembleOrPanic(f))
		}
		return nil
	}

	result, err := rt.Run(fn, nil)
	if err != nil {
		return &runtimeError{err: err}
	}
	fmt.Println(formatResult(rt, result))
	return nil
}

func formatResult(rt *runtime.Runtime, v value.Value) string {
	if !v.IsString() {
		if v.IsDouble() {
			return fmt.Sprintf("%v", v.AsDouble())
		}
		return fmt.Sprintf("%v", v.Raw())
	}
	s, err := rt.Heap().ReadString(heapAddr(v))
	if err != nil {
		return fmt.Sprintf("<unreadable string: %v>", err)
	}
	return s
}
