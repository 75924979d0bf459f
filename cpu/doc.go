// Package cpu implements the zero-page word machine and its assembler.
//
// The machine's only mutable state is a 65,536-word memory of 32-bit words.
// The program counter lives in cell 0x0000, and a character-output device is
// mapped at 0xFFFE (strobe) and 0xFFFF (data). Every instruction occupies one
// big-endian 32-bit word whose leading byte is the opcode; most operands are
// 8-bit "zero-page" indices, with a little-endian 16-bit field where an
// instruction reaches the full address space.
//
// The assembler compiles a line-oriented text format in two passes so label
// references may appear before their defining line, and supports equates and
// compile-time expression evaluation on top of the base operand grammar.
package cpu
