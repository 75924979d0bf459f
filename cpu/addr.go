package cpu

import (
	"slices"
)

const (
	MEMORY_SIZE = 1 << 16 // Words in the address space.
)

// Address indexes the word-addressed memory space.
type Address uint16

// Reserved addresses with fixed meaning.
const (
	PC        = Address(0x0000) // Program counter cell.
	WRITING   = Address(0xfffe) // Output strobe; nonzero after a step emits one character.
	DATA      = Address(0xffff) // Byte value emitted while WRITING is nonzero.
	LOAD_BASE = Address(0x8000) // Programs are loaded, and entered, here.
)

// Memory is the address space of a Machine. Single-cell access is total over
// Address; multi-word spans are bounds-checked.
type Memory struct {
	words [MEMORY_SIZE]uint32
}

// Read returns the word at addr.
func (mem *Memory) Read(addr Address) uint32 {
	return mem.words[addr]
}

// Write replaces the word at addr.
func (mem *Memory) Write(addr Address, value uint32) {
	mem.words[addr] = value
}

// LoadWords copies data into memory starting at addr.
func (mem *Memory) LoadWords(addr Address, data []uint32) (err error) {
	if int(addr)+len(data) > MEMORY_SIZE {
		err = ErrAddressRange
		return
	}

	copy(mem.words[int(addr):], data)

	return
}

// ReadWords returns a copy of count words starting at addr.
func (mem *Memory) ReadWords(addr Address, count int) (data []uint32, err error) {
	if int(addr)+count > MEMORY_SIZE {
		err = ErrAddressRange
		return
	}

	data = slices.Clone(mem.words[int(addr) : int(addr)+count])

	return
}
