// Package emulator drives the machine: the load convention, breakpoints,
// the interactive debugger, and the cancellable run loop.
package emulator

import (
	"context"
	"fmt"
	"iter"
	"log"
	"maps"
	"time"

	"zpvm/cpu"
	"zpvm/internal"
	"zpvm/io"
)

const (
	REPORT_STEPS = 100_000_000 // Steps between clock-rate reports.
)

var _emulator_defines = map[string]string{
	"BASE": fmt.Sprintf("%#x", uint16(cpu.LOAD_BASE)),
}

// Emulator state. Machine + console + debugger.
type Emulator struct {
	Verbose bool // If set, enables verbose logging.
	*cpu.Machine
	Program *cpu.Program // Program to load on Reset.

	Console io.Console // Character output device.
	Debug   Debugger   // Breakpoint debugger.

	Report int // Steps between clock-rate reports.
}

// NewEmulator creates an emulator around a fresh machine.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Machine: cpu.NewMachine(),
		Program: &cpu.Program{},
		Report:  REPORT_STEPS,
	}

	emu.Machine.Console = &emu.Console

	return
}

// Defines returns an iterator over all of the defines.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Machine.Defines(),
		emu.Console.Defines(),
	)
}

// Reset applies the load convention to a machine rebuilt from zeroed memory:
// the program's words at LOAD_BASE, the program counter at LOAD_BASE, an
// implicit breakpoint at LOAD_BASE, and a breakpoint per ~-marked line.
func (emu *Emulator) Reset() (err error) {
	emu.Machine = cpu.NewMachine()
	emu.Machine.Verbose = emu.Verbose
	emu.Machine.Console = &emu.Console

	err = emu.Machine.Load(cpu.LOAD_BASE, emu.Program.Words())
	if err != nil {
		return
	}

	emu.Machine.Write(cpu.PC, uint32(cpu.LOAD_BASE))

	emu.Machine.AddBreakpoint(cpu.LOAD_BASE)
	for _, addr := range emu.Program.Breakpoint {
		emu.Machine.AddBreakpoint(addr)
	}

	return
}

// clockRate estimates the execution rate in MHz.
func clockRate(steps int, elapsed time.Duration) float64 {
	return float64(steps) / elapsed.Seconds() / 1e6
}

// Run drives the machine until the context is cancelled, the debugger's exit
// command is issued, or the machine faults. Hosted programs have no halt
// instruction; there is no normal termination. Reaching a breakpoint suspends
// into the debugger before the instruction there takes effect.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	last := time.Now()
	steps := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		pc := emu.Machine.PC()
		if emu.Machine.AtBreakpoint(pc) {
			err = emu.Debug.Interact(emu.Machine, pc)
			if err != nil {
				return
			}
		}

		_, err = emu.Machine.Step()
		if err != nil {
			return &ErrRuntime{PC: pc, Err: err}
		}

		steps++
		if steps >= emu.Report {
			log.Printf("%.0fMHz", clockRate(steps, time.Since(last)))
			last = time.Now()
			steps = 0
		}
	}
}
