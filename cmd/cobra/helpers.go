package main

import (
	"github.com/cobra-lang/cobra/internal/bytecode"
	"github.com/cobra-lang/cobra/internal/heap"
	"github.com/cobra-lang/cobra/internal/value"
)

func heapAddr(v value.Value) heap.Address { return heap.Address(v.AsPointer()) }

func disassembleOrPanic(f *bytecode.Function) string {
	return bytecode.Disassemble(f)
}
