package emulator

import (
	"bytes"
	"context"
	"errors"
	"maps"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"zpvm/cpu"
)

func TestEmulatorReset(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Program = &cpu.Program{
		Inst: []cpu.Inst{
			cpu.LoadImm{Addr: 1, Imm: 10},
			cpu.Add{Lhs: 1, Rhs: 1, Out: 2},
		},
		Breakpoint: []cpu.Address{0x8001},
	}

	if !assert.NoError(emu.Reset()) {
		return
	}

	assert.Equal(cpu.LoadImm{Addr: 1, Imm: 10}.Encode(), emu.Read(cpu.LOAD_BASE))
	assert.Equal(cpu.Add{Lhs: 1, Rhs: 1, Out: 2}.Encode(), emu.Read(cpu.LOAD_BASE+1))
	assert.Equal(cpu.LOAD_BASE, emu.Machine.PC())

	assert.True(emu.AtBreakpoint(cpu.LOAD_BASE), "load address is an implicit breakpoint")
	assert.True(emu.AtBreakpoint(0x8001))
	assert.False(emu.AtBreakpoint(0x8002))
}

func TestEmulatorRunExit(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Program = &cpu.Program{
		Inst: []cpu.Inst{cpu.LoadImm{Addr: 2, Imm: 65}},
	}
	emu.Debug.Input = strings.NewReader("exit\n")

	if !assert.NoError(emu.Reset()) {
		return
	}

	err := emu.Run(context.Background())
	assert.ErrorIs(err, ErrExit)

	// The run suspended before the breakpointed instruction took effect.
	assert.EqualValues(0, emu.Read(2))
}

func TestEmulatorRunCancel(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Program = &cpu.Program{
		Inst: []cpu.Inst{
			cpu.LoadImm{Addr: 1, Imm: 0},
			cpu.LoadImm{Addr: uint8(cpu.PC), Imm: uint16(cpu.LOAD_BASE)},
		},
	}

	if !assert.NoError(emu.Reset()) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := emu.Run(ctx)
	assert.ErrorIs(err, context.DeadlineExceeded)
}

func TestEmulatorRunOutput(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer

	emu := NewEmulator()
	emu.Console.Output = &buf
	emu.Program = &cpu.Program{
		Inst: []cpu.Inst{
			cpu.LoadImm{Addr: 2, Imm: 'A'},
			cpu.Store{From: 2, To: uint16(cpu.DATA)},
			cpu.LoadImm{Addr: 3, Imm: 1},
			cpu.Store{From: 3, To: uint16(cpu.WRITING)},
			cpu.LoadImm{Addr: 4, Imm: 0},
			cpu.LoadImm{Addr: uint8(cpu.PC), Imm: uint16(cpu.LOAD_BASE + 4)},
		},
	}

	if !assert.NoError(emu.Reset()) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := emu.Run(ctx)
	assert.ErrorIs(err, context.DeadlineExceeded)

	assert.Equal("A", buf.String())
	assert.Equal(1, emu.Console.Count)
}

func TestEmulatorRunFault(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	if !assert.NoError(emu.Reset()) {
		return
	}

	// The reserved multi-word encoding at the entry point.
	emu.Write(cpu.LOAD_BASE, 0x03000000)

	err := emu.Run(context.Background())
	assert.ErrorIs(err, cpu.ErrNotSupported)

	var rerr *ErrRuntime
	if assert.ErrorAs(err, &rerr) {
		assert.Equal(cpu.LOAD_BASE, rerr.PC)
	}
}

func TestEmulatorDefines(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	defines := maps.Collect(emu.Defines())

	assert.Equal("0x8000", defines["BASE"])
	assert.Equal("0x0", defines["PC"])
	assert.Equal("0xfffe", defines["WRITING"])
	assert.Equal("0xffff", defines["DATA"])
}

func TestEmulatorRuntimeError(t *testing.T) {
	assert := assert.New(t)

	rerr := &ErrRuntime{PC: 0x8003, Err: cpu.ErrNotSupported}

	assert.Contains(rerr.Error(), "0x8003")
	assert.True(errors.Is(rerr, cpu.ErrNotSupported))
}
