package cpu

import (
	"fmt"
)

// Opcode is the leading byte of an encoded instruction word.
type Opcode uint8

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_ADD = Opcode(0b0000_0000) // ADD
	OP_NEG = Opcode(0b0000_0001) // NEG
	OP_AND = Opcode(0b0000_0010) // AND
	OP_OR  = Opcode(0b0000_0100) // OR
	OP_XOR = Opcode(0b0000_0101) // XOR
	OP_L   = Opcode(0b0000_0110) // L
	OP_S   = Opcode(0b0000_1001) // S
	OP_LI  = Opcode(0b0000_1010) // LI
	OP_LP  = Opcode(0b0000_1100) // LP
)

// VLE reports whether the opcode selects the reserved multi-word encoding.
// No such instruction is defined; fetching one is a fatal ErrNotSupported.
func (op Opcode) VLE() bool {
	return op&0b11 == 0b11
}

// Inst is one instruction of the closed nine-variant set. Encode and the
// per-variant decoders are exact inverses over all legal operand values.
type Inst interface {
	// Opcode returns the variant's opcode byte.
	Opcode() Opcode
	// Encode packs the instruction into its 32-bit word.
	Encode() uint32
}

// pack assembles the big-endian instruction word "op b1 b2 b3".
func pack(op Opcode, b1, b2, b3 uint8) uint32 {
	return uint32(op)<<24 | uint32(b1)<<16 | uint32(b2)<<8 | uint32(b3)
}

// fields validates the opcode byte and splits out the three operand bytes.
func fields(word uint32, want Opcode) (b [3]uint8, err error) {
	if Opcode(word>>24) != want {
		err = &ErrFormat{Want: want, Word: word}
		return
	}

	b[0] = uint8(word >> 16)
	b[1] = uint8(word >> 8)
	b[2] = uint8(word)

	return
}

// le16 joins an embedded little-endian 16-bit operand field.
func le16(lo, hi uint8) uint16 {
	return uint16(lo) | uint16(hi)<<8
}

// Add stores mem[Lhs] + mem[Rhs] (wrapping 32-bit add) into mem[Out].
type Add struct {
	Lhs uint8
	Rhs uint8
	Out uint8
}

func (in Add) Opcode() Opcode { return OP_ADD }

func (in Add) Encode() uint32 {
	return pack(OP_ADD, in.Lhs, in.Rhs, in.Out)
}

func (in Add) String() string {
	return fmt.Sprintf("%v %v %v %v", OP_ADD, in.Lhs, in.Rhs, in.Out)
}

// DecodeAdd decodes an ADD word.
func DecodeAdd(word uint32) (inst Add, err error) {
	b, err := fields(word, OP_ADD)
	if err != nil {
		return
	}
	inst = Add{Lhs: b[0], Rhs: b[1], Out: b[2]}
	return
}

// Neg stores the two's-complement negation of mem[Input] into mem[Out].
type Neg struct {
	Input uint8
	Out   uint8
}

func (in Neg) Opcode() Opcode { return OP_NEG }

func (in Neg) Encode() uint32 {
	return pack(OP_NEG, in.Input, in.Out, 0)
}

func (in Neg) String() string {
	return fmt.Sprintf("%v %v %v", OP_NEG, in.Input, in.Out)
}

// DecodeNeg decodes a NEG word. The trailing pad byte is ignored.
func DecodeNeg(word uint32) (inst Neg, err error) {
	b, err := fields(word, OP_NEG)
	if err != nil {
		return
	}
	inst = Neg{Input: b[0], Out: b[1]}
	return
}

// And stores mem[Lhs] & mem[Rhs] into mem[Out].
type And struct {
	Lhs uint8
	Rhs uint8
	Out uint8
}

func (in And) Opcode() Opcode { return OP_AND }

func (in And) Encode() uint32 {
	return pack(OP_AND, in.Lhs, in.Rhs, in.Out)
}

func (in And) String() string {
	return fmt.Sprintf("%v %v %v %v", OP_AND, in.Lhs, in.Rhs, in.Out)
}

// DecodeAnd decodes an AND word.
func DecodeAnd(word uint32) (inst And, err error) {
	b, err := fields(word, OP_AND)
	if err != nil {
		return
	}
	inst = And{Lhs: b[0], Rhs: b[1], Out: b[2]}
	return
}

// Or stores mem[Lhs] | mem[Rhs] into mem[Out].
type Or struct {
	Lhs uint8
	Rhs uint8
	Out uint8
}

func (in Or) Opcode() Opcode { return OP_OR }

func (in Or) Encode() uint32 {
	return pack(OP_OR, in.Lhs, in.Rhs, in.Out)
}

func (in Or) String() string {
	return fmt.Sprintf("%v %v %v %v", OP_OR, in.Lhs, in.Rhs, in.Out)
}

// DecodeOr decodes an OR word.
func DecodeOr(word uint32) (inst Or, err error) {
	b, err := fields(word, OP_OR)
	if err != nil {
		return
	}
	inst = Or{Lhs: b[0], Rhs: b[1], Out: b[2]}
	return
}

// Xor stores mem[Lhs] ^ mem[Rhs] into mem[Out].
type Xor struct {
	Lhs uint8
	Rhs uint8
	Out uint8
}

func (in Xor) Opcode() Opcode { return OP_XOR }

func (in Xor) Encode() uint32 {
	return pack(OP_XOR, in.Lhs, in.Rhs, in.Out)
}

func (in Xor) String() string {
	return fmt.Sprintf("%v %v %v %v", OP_XOR, in.Lhs, in.Rhs, in.Out)
}

// DecodeXor decodes a XOR word.
func DecodeXor(word uint32) (inst Xor, err error) {
	b, err := fields(word, OP_XOR)
	if err != nil {
		return
	}
	inst = Xor{Lhs: b[0], Rhs: b[1], Out: b[2]}
	return
}

// Load copies mem[From] into mem[To]. From spans the full address space,
// which is how programs read the memory-mapped device cells.
type Load struct {
	From uint16
	To   uint8
}

func (in Load) Opcode() Opcode { return OP_L }

func (in Load) Encode() uint32 {
	return pack(OP_L, uint8(in.From), uint8(in.From>>8), in.To)
}

func (in Load) String() string {
	return fmt.Sprintf("%v %v %v", OP_L, in.From, in.To)
}

// DecodeLoad decodes an L word.
func DecodeLoad(word uint32) (inst Load, err error) {
	b, err := fields(word, OP_L)
	if err != nil {
		return
	}
	inst = Load{From: le16(b[0], b[1]), To: b[2]}
	return
}

// Store copies mem[From] into mem[To]. To spans the full address space,
// which is how programs write the memory-mapped device cells.
type Store struct {
	From uint8
	To   uint16
}

func (in Store) Opcode() Opcode { return OP_S }

func (in Store) Encode() uint32 {
	return pack(OP_S, in.From, uint8(in.To), uint8(in.To>>8))
}

func (in Store) String() string {
	return fmt.Sprintf("%v %v %v", OP_S, in.From, in.To)
}

// DecodeStore decodes an S word.
func DecodeStore(word uint32) (inst Store, err error) {
	b, err := fields(word, OP_S)
	if err != nil {
		return
	}
	inst = Store{From: b[0], To: le16(b[1], b[2])}
	return
}

// LoadImm stores the zero-extended immediate into mem[Addr].
type LoadImm struct {
	Addr uint8
	Imm  uint16
}

func (in LoadImm) Opcode() Opcode { return OP_LI }

func (in LoadImm) Encode() uint32 {
	return pack(OP_LI, in.Addr, uint8(in.Imm), uint8(in.Imm>>8))
}

func (in LoadImm) String() string {
	return fmt.Sprintf("%v %v %v", OP_LI, in.Addr, in.Imm)
}

// DecodeLoadImm decodes an LI word.
func DecodeLoadImm(word uint32) (inst LoadImm, err error) {
	b, err := fields(word, OP_LI)
	if err != nil {
		return
	}
	inst = LoadImm{Addr: b[0], Imm: le16(b[1], b[2])}
	return
}

// LoadIfPos copies mem[From] into mem[To] only when mem[Cond], read as a
// signed 32-bit value, is strictly positive.
type LoadIfPos struct {
	Cond uint8
	From uint8
	To   uint8
}

func (in LoadIfPos) Opcode() Opcode { return OP_LP }

func (in LoadIfPos) Encode() uint32 {
	return pack(OP_LP, in.Cond, in.From, in.To)
}

func (in LoadIfPos) String() string {
	return fmt.Sprintf("%v %v %v %v", OP_LP, in.Cond, in.From, in.To)
}

// DecodeLoadIfPos decodes an LP word.
func DecodeLoadIfPos(word uint32) (inst LoadIfPos, err error) {
	b, err := fields(word, OP_LP)
	if err != nil {
		return
	}
	inst = LoadIfPos{Cond: b[0], From: b[1], To: b[2]}
	return
}

// Decode selects the variant decoder from the word's opcode byte. The
// reserved multi-word format fails with ErrNotSupported; any other unknown
// opcode byte fails with ErrDecode.
func Decode(word uint32) (inst Inst, err error) {
	op := Opcode(word >> 24)
	if op.VLE() {
		err = ErrNotSupported
		return
	}

	switch op {
	case OP_ADD:
		inst, err = DecodeAdd(word)
	case OP_NEG:
		inst, err = DecodeNeg(word)
	case OP_AND:
		inst, err = DecodeAnd(word)
	case OP_OR:
		inst, err = DecodeOr(word)
	case OP_XOR:
		inst, err = DecodeXor(word)
	case OP_L:
		inst, err = DecodeLoad(word)
	case OP_S:
		inst, err = DecodeStore(word)
	case OP_LI:
		inst, err = DecodeLoadImm(word)
	case OP_LP:
		inst, err = DecodeLoadIfPos(word)
	default:
		err = ErrDecode(word)
	}

	return
}
