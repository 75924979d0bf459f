package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates.
var sysEquate = map[string]string{
	"LINENO":  "0",
	"PC":      fmt.Sprintf("%#x", uint16(PC)),
	"WRITING": fmt.Sprintf("%#x", uint16(WRITING)),
	"DATA":    fmt.Sprintf("%#x", uint16(DATA)),
}

// Assembler compiles the line-oriented assembly format in two passes, so a
// label may be referenced before the line that defines it.
type Assembler struct {
	Verbose bool               // If set, verbosely logs the assembler actions.
	Symbol  map[string]Address // Map of labels to absolute addresses.
	Equate  map[string]string  // Map of equates, rebuilt identically per pass.

	predefine map[string]string // Predefines
}

// Predefine defines a host-supplied equate visible to every pass.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// numberOf parses a plain numeric token, as used in equate values.
func (asm *Assembler) numberOf(word string) (value uint32, err error) {
	v64, err := strconv.ParseUint(word, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	value = uint32(v64)

	return
}

// parenEval does compile-time $(...) evaluations.
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value32 uint32
		value32, err = asm.numberOf(str)
		if err != nil {
			// Non-integer equates are invisible to expressions.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt(int(value32))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

// parseLine expands $() expressions and equates, and consumes .equ directives.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	asm.Equate["LINENO"] = strconv.Itoa(lineno)

	// Do $() evaluations
	re := regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#v", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(line)
	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	return
}

// operand evaluates one token of the operand grammar.
func (asm *Assembler) operand(word string, symbols map[string]Address) (value uint64, err error) {
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}

	switch {
	case strings.HasPrefix(word, "0x"):
		value, err = strconv.ParseUint(word[2:], 16, 64)
		if err != nil {
			err = ErrParseNumber(word)
		}
	case strings.HasPrefix(word, ":"):
		// Indirection marker; contributes no numeric transformation.
		return asm.operand(word[1:], symbols)
	case word[0] >= '0' && word[0] <= '9':
		value, err = strconv.ParseUint(word, 10, 64)
		if err != nil {
			err = ErrParseNumber(word)
		}
	default:
		// Bare identifier: a label reference. Pass 1 runs without the
		// symbol table and reads these as zero.
		if symbols == nil {
			return
		}
		addr, ok := symbols[word]
		if !ok {
			err = ErrSymbolMissing(word)
			return
		}
		value = uint64(addr)
	}

	return
}

// parseInst parses a mnemonic and its fixed operand list. Operand values
// truncate to the encoded field width.
func (asm *Assembler) parseInst(words []string, symbols map[string]Address) (inst Inst, err error) {
	operands := func(count int) (vals [3]uint64, err error) {
		if len(words) < count+1 {
			err = ErrOperandMissing
			return
		}
		for n := range count {
			vals[n], err = asm.operand(words[1+n], symbols)
			if err != nil {
				return
			}
		}
		return
	}

	var v [3]uint64
	switch words[0] {
	case "ADD":
		v, err = operands(3)
		inst = Add{Lhs: uint8(v[0]), Rhs: uint8(v[1]), Out: uint8(v[2])}
	case "NEG":
		v, err = operands(2)
		inst = Neg{Input: uint8(v[0]), Out: uint8(v[1])}
	case "AND":
		v, err = operands(3)
		inst = And{Lhs: uint8(v[0]), Rhs: uint8(v[1]), Out: uint8(v[2])}
	case "OR":
		v, err = operands(3)
		inst = Or{Lhs: uint8(v[0]), Rhs: uint8(v[1]), Out: uint8(v[2])}
	case "XOR":
		v, err = operands(3)
		inst = Xor{Lhs: uint8(v[0]), Rhs: uint8(v[1]), Out: uint8(v[2])}
	case "L":
		v, err = operands(2)
		inst = Load{From: uint16(v[0]), To: uint8(v[1])}
	case "S":
		v, err = operands(2)
		inst = Store{From: uint8(v[0]), To: uint16(v[1])}
	case "LI":
		v, err = operands(2)
		inst = LoadImm{Addr: uint8(v[0]), Imm: uint16(v[1])}
	case "LP":
		v, err = operands(3)
		inst = LoadIfPos{Cond: uint8(v[0]), From: uint8(v[1]), To: uint8(v[2])}
	default:
		err = ErrUnknownOpcode(words[0])
	}
	if err != nil {
		inst = nil
	}

	return
}

// pass scans every source line once. With symbols == nil (pass 1) it records
// labels and breakpoint markers and parses only to advance the instruction
// counter; with the symbol table (pass 2) it strips the same prefixes without
// re-recording them and emits the resolved instructions.
func (asm *Assembler) pass(lines []string, symbols map[string]Address, breakpoints *[]Address) (insts []Inst, err error) {
	asm.Equate = maps.Clone(sysEquate)
	maps.Copy(asm.Equate, asm.predefine)

	var lineno int
	var line string

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	for n, text := range lines {
		lineno = n + 1

		if asm.Verbose && symbols == nil {
			log.Printf("%v: %v", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		if len(line) == 0 {
			continue
		}

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		// label: prefixes name the address of the next instruction.
		for len(words) > 0 && strings.HasSuffix(words[0], ":") {
			if symbols == nil {
				name := strings.TrimSuffix(words[0], ":")
				_, ok := asm.Symbol[name]
				if ok {
					err = ErrLabelDuplicate
					return
				}
				asm.Symbol[name] = LOAD_BASE + Address(len(insts))
			}
			words = words[1:]
		}

		// ~ marks the next instruction address as a breakpoint.
		if len(words) > 0 && strings.HasPrefix(words[0], "~") {
			if breakpoints != nil {
				*breakpoints = append(*breakpoints, LOAD_BASE+Address(len(insts)))
			}
			words[0] = strings.TrimPrefix(words[0], "~")
			if len(words[0]) == 0 {
				words = words[1:]
			}
		}

		if len(words) == 0 {
			continue
		}

		var inst Inst
		inst, err = asm.parseInst(words, symbols)
		if err != nil {
			return
		}
		insts = append(insts, inst)
	}

	return
}

// Parse assembles an input stream into a Program. Pass 1 builds the symbol
// table and breakpoint list; pass 2 re-scans the same text and emits the
// instruction stream in source order. Any error leaves no partial program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	err = scanner.Err()
	if err != nil {
		return
	}

	asm.Symbol = make(map[string]Address, 16)

	var breakpoints []Address
	_, err = asm.pass(lines, nil, &breakpoints)
	if err != nil {
		return
	}

	insts, err := asm.pass(lines, asm.Symbol, nil)
	if err != nil {
		return
	}

	prog = &Program{Inst: insts, Breakpoint: breakpoints}

	return
}
