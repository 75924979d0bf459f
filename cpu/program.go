package cpu

import (
	"iter"
)

// Program is the assembler's output: the instruction stream in source order
// plus the addresses of ~-marked breakpoints.
type Program struct {
	Inst       []Inst
	Breakpoint []Address
}

// Words flattens the program to the word stream loaded at LOAD_BASE.
func (prog *Program) Words() (words []uint32) {
	for _, inst := range prog.Inst {
		words = append(words, inst.Encode())
	}

	return
}

// Codes iterates the program as (absolute address, instruction) pairs.
func (prog *Program) Codes() iter.Seq2[Address, Inst] {
	return func(yield func(addr Address, inst Inst) bool) {
		for n, inst := range prog.Inst {
			if !yield(LOAD_BASE+Address(n), inst) {
				return
			}
		}
	}
}
