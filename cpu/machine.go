package cpu

import (
	"fmt"
	"iter"
	"log"
	"maps"
	"slices"

	"zpvm/io"
)

var _machine_defines = map[string]string{
	"PC":      fmt.Sprintf("%#x", uint16(PC)),
	"WRITING": fmt.Sprintf("%#x", uint16(WRITING)),
	"DATA":    fmt.Sprintf("%#x", uint16(DATA)),
}

// Machine executes the fetch-decode-execute loop over its own address space.
// The memory array is the machine's sole mutable state; the program counter
// is an ordinary cell at PC, so an instruction whose output address is PC
// effects a jump.
type Machine struct {
	Verbose bool        // Set to enable verbose logging.
	Console *io.Console // Memory-mapped character output device.

	mem        Memory
	breakpoint []Address
}

// NewMachine creates a machine with zeroed memory and no breakpoints.
func NewMachine() (m *Machine) {
	m = &Machine{}

	return
}

// Defines for the machine's reserved addresses.
func (m *Machine) Defines() iter.Seq2[string, string] {
	return maps.All(_machine_defines)
}

// Read returns the word at addr.
func (m *Machine) Read(addr Address) uint32 {
	return m.mem.Read(addr)
}

// Write replaces the word at addr.
func (m *Machine) Write(addr Address, value uint32) {
	m.mem.Write(addr, value)
}

// Load copies a flattened instruction stream into memory at addr.
func (m *Machine) Load(addr Address, words []uint32) error {
	return m.mem.LoadWords(addr, words)
}

// AddBreakpoint marks addr as a suspension point for the run loop.
func (m *Machine) AddBreakpoint(addr Address) {
	if !m.AtBreakpoint(addr) {
		m.breakpoint = append(m.breakpoint, addr)
	}
}

// AtBreakpoint reports whether addr is in the breakpoint set.
func (m *Machine) AtBreakpoint(addr Address) bool {
	return slices.Contains(m.breakpoint, addr)
}

// PC returns the current fetch address. The PC cell holds a full word; only
// its low 16 bits address memory.
func (m *Machine) PC() Address {
	return Address(m.mem.Read(PC))
}

// StepOutcome reports what a single step did.
type StepOutcome struct {
	PC     Address // Fetch address of the executed instruction.
	Inst   Inst    // Decoded instruction.
	Output bool    // True when the output device emitted a byte.
}

// Step runs one fetch-decode-execute iteration. Any error is fatal to the
// hosted program: an undecodable word, the reserved multi-word encoding, or
// a failed device write. The caller owns the loop and decides how to stop.
func (m *Machine) Step() (outcome StepOutcome, err error) {
	pc := m.PC()
	word := m.mem.Read(pc)

	op := Opcode(word >> 24)
	if op.VLE() {
		err = ErrNotSupported
		return
	}
	// Every defined encoding is a single word.
	length := uint32(1)

	inst, err := Decode(word)
	if err != nil {
		return
	}

	if m.Verbose {
		log.Printf("%04x: %v", uint16(pc), inst)
	}

	m.execute(inst)

	outcome = StepOutcome{PC: pc, Inst: inst}

	if m.mem.Read(WRITING) != 0 {
		if m.Console != nil {
			err = m.Console.Emit(uint8(m.mem.Read(DATA)))
			if err != nil {
				return
			}
		}
		m.mem.Write(WRITING, 0)
		outcome.Output = true
	}

	// Jump detection is generic: compare the PC cell before and after
	// execution rather than special-casing opcodes.
	if pc == m.PC() {
		m.mem.Write(PC, uint32(pc)+length)
	}

	return
}

// execute applies one instruction's semantics to memory. The variant set is
// closed; adding an opcode extends this switch and Decode together.
func (m *Machine) execute(inst Inst) {
	mem := &m.mem

	switch in := inst.(type) {
	case Add:
		// Wrapping 32-bit add.
		mem.Write(Address(in.Out), mem.Read(Address(in.Lhs))+mem.Read(Address(in.Rhs)))
	case Neg:
		mem.Write(Address(in.Out), uint32(-int32(mem.Read(Address(in.Input)))))
	case And:
		mem.Write(Address(in.Out), mem.Read(Address(in.Lhs))&mem.Read(Address(in.Rhs)))
	case Or:
		mem.Write(Address(in.Out), mem.Read(Address(in.Lhs))|mem.Read(Address(in.Rhs)))
	case Xor:
		mem.Write(Address(in.Out), mem.Read(Address(in.Lhs))^mem.Read(Address(in.Rhs)))
	case Load:
		mem.Write(Address(in.To), mem.Read(Address(in.From)))
	case Store:
		mem.Write(Address(in.To), mem.Read(Address(in.From)))
	case LoadImm:
		mem.Write(Address(in.Addr), uint32(in.Imm))
	case LoadIfPos:
		if int32(mem.Read(Address(in.Cond))) > 0 {
			mem.Write(Address(in.To), mem.Read(Address(in.From)))
		}
	}
}
