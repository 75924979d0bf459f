package emulator

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"zpvm/cpu"
)

// Debugger is the line-oriented REPL entered when the run loop reaches a
// breakpoint. It observes machine state but never mutates it; the only
// control actions are resuming the program and requesting exit.
type Debugger struct {
	Input       io.Reader // Command stream, usually stdin.
	Output      io.Writer // Response stream, usually stdout.
	Interactive bool      // If set, prints a prompt before each read.

	scanner *bufio.Scanner
}

func (dbg *Debugger) out() io.Writer {
	if dbg.Output == nil {
		return io.Discard
	}

	return dbg.Output
}

// readLine reads one command line; ok is false at end of input.
func (dbg *Debugger) readLine() (line string, ok bool) {
	if dbg.Input == nil {
		return
	}

	if dbg.scanner == nil {
		dbg.scanner = bufio.NewScanner(dbg.Input)
	}

	ok = dbg.scanner.Scan()
	if ok {
		line = dbg.scanner.Text()
	}

	return
}

// FormatWord renders a 32-bit word as binary nibble groups, with wider
// spacing at byte boundaries.
func FormatWord(value uint32) string {
	var sb strings.Builder

	for n := 31; n >= 0; n-- {
		if (value>>n)&1 != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
		switch {
		case n == 0:
			// no trailing space
		case n%8 == 0:
			sb.WriteString("  ")
		case n%4 == 0:
			sb.WriteString(" ")
		}
	}

	return sb.String()
}

// Interact reports the breakpoint address and dispatches commands until the
// hosted program is resumed or exit is requested. End of input resumes.
func (dbg *Debugger) Interact(m *cpu.Machine, at cpu.Address) (err error) {
	fmt.Fprintf(dbg.out(), "Hit breakpoint at 0x%04x\n", uint16(at))

	for {
		if dbg.Interactive {
			fmt.Fprint(dbg.out(), "> ")
		}

		line, ok := dbg.readLine()
		if !ok {
			// Out of commands; resume the program.
			return
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		switch words[0] {
		case "c", "cont", "continue":
			return
		case "r", "read":
			if len(words) < 2 {
				fmt.Fprintln(dbg.out(), "Invalid command")
				continue
			}
			addr, aerr := strconv.ParseUint(strings.TrimPrefix(words[1], "0x"), 16, 16)
			if aerr != nil {
				fmt.Fprintln(dbg.out(), "Invalid command")
				continue
			}
			fmt.Fprintln(dbg.out(), FormatWord(m.Read(cpu.Address(addr))))
		case "exit":
			err = ErrExit
			return
		default:
			fmt.Fprintln(dbg.out(), "Invalid command")
		}
	}
}
