package cpu

import (
	"errors"

	"zpvm/translate"
)

var f = translate.From

var (
	// Machine errors
	ErrNotSupported = errors.New(f("variable-length encoding not supported"))
	ErrAddressRange = errors.New(f("address out of range"))

	// Assembler errors
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrOperandMissing  = errors.New(f("operand missing"))
)

// ErrFormat reports a word whose leading byte does not match the decoder invoked.
type ErrFormat struct {
	Want Opcode
	Word uint32
}

func (err *ErrFormat) Error() string {
	return f("word 0x%08x is not %v", err.Word, err.Want)
}

// ErrDecode reports a word whose opcode byte is outside the instruction set.
type ErrDecode uint32

func (err ErrDecode) Error() string {
	return f("cannot decode word 0x%08x", uint32(err))
}

type ErrUnknownOpcode string

func (err ErrUnknownOpcode) Error() string {
	return f("Unknown opcode %v", string(err))
}

type ErrSymbolMissing string

func (err ErrSymbolMissing) Error() string {
	return f("symbol %v missing", string(err))
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrSyntax locates an assembly error in its source line.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}
