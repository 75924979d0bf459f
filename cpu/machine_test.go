package cpu

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"zpvm/io"
)

// stepOne loads a single instruction at LOAD_BASE and executes it.
func stepOne(t *testing.T, m *Machine, inst Inst) StepOutcome {
	t.Helper()

	err := m.Load(LOAD_BASE, []uint32{inst.Encode()})
	assert.NoError(t, err)
	m.Write(PC, uint32(LOAD_BASE))

	outcome, err := m.Step()
	assert.NoError(t, err)

	return outcome
}

func TestMachineAdd(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	m.Write(2, 5)
	m.Write(3, 7)

	outcome := stepOne(t, m, Add{Lhs: 2, Rhs: 3, Out: 4})

	assert.EqualValues(12, m.Read(4))
	assert.Equal(LOAD_BASE, outcome.PC)
	assert.Equal(LOAD_BASE+1, m.PC())
	assert.False(outcome.Output)
}

func TestMachineAddWraps(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	m.Write(2, 0xffffffff)
	m.Write(3, 1)

	stepOne(t, m, Add{Lhs: 2, Rhs: 3, Out: 4})

	assert.EqualValues(0, m.Read(4))
}

func TestMachineNeg(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	m.Write(2, 5)

	stepOne(t, m, Neg{Input: 2, Out: 3})

	assert.Equal(uint32(0xfffffffb), m.Read(3))
}

func TestMachineBitwise(t *testing.T) {
	assert := assert.New(t)

	for _, test := range []struct {
		name string
		inst Inst
		want uint32
	}{
		{"and", And{Lhs: 2, Rhs: 3, Out: 4}, 0x000000f0},
		{"or", Or{Lhs: 2, Rhs: 3, Out: 4}, 0x0000ffff},
		{"xor", Xor{Lhs: 2, Rhs: 3, Out: 4}, 0x0000ff0f},
	} {
		m := NewMachine()
		m.Write(2, 0x0000ff00)
		m.Write(3, 0x000000ff)

		stepOne(t, m, test.inst)

		assert.Equal(test.want, m.Read(4), test.name)
	}
}

func TestMachineLoadStore(t *testing.T) {
	assert := assert.New(t)

	// L reaches the full address space; programs read device cells with it.
	m := NewMachine()
	m.Write(DATA, 0x41)
	stepOne(t, m, Load{From: uint16(DATA), To: 3})
	assert.EqualValues(0x41, m.Read(3))

	// S reaches the full address space on the destination side.
	m = NewMachine()
	m.Write(3, 0x42)
	stepOne(t, m, Store{From: 3, To: uint16(DATA)})
	assert.EqualValues(0x42, m.Read(DATA))
}

func TestMachineLoadImm(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	stepOne(t, m, LoadImm{Addr: 9, Imm: 0xbeef})

	assert.EqualValues(0xbeef, m.Read(9))
}

func TestMachineLoadIfPos(t *testing.T) {
	assert := assert.New(t)

	for _, test := range []struct {
		name string
		cond uint32
		want uint32
	}{
		{"positive", 1, 99},
		{"zero", 0, 0},
		{"negative", 0xffffffff, 0},
	} {
		m := NewMachine()
		m.Write(2, test.cond)
		m.Write(3, 99)

		stepOne(t, m, LoadIfPos{Cond: 2, From: 3, To: 4})

		assert.Equal(test.want, m.Read(4), test.name)
	}
}

func TestMachineJump(t *testing.T) {
	assert := assert.New(t)

	// Writing the PC cell is a jump; the automatic advance is suppressed.
	m := NewMachine()
	stepOne(t, m, LoadImm{Addr: uint8(PC), Imm: 0x9000})

	assert.Equal(Address(0x9000), m.PC())
}

func TestMachineJumpToSelf(t *testing.T) {
	assert := assert.New(t)

	// A jump that lands on its own address is indistinguishable from an
	// unchanged PC cell, so the advance still applies.
	m := NewMachine()
	stepOne(t, m, LoadImm{Addr: uint8(PC), Imm: uint16(LOAD_BASE)})

	assert.Equal(LOAD_BASE+1, m.PC())
}

func TestMachineOutput(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer

	m := NewMachine()
	m.Console = &io.Console{Output: &buf}
	m.Write(2, 1)
	m.Write(DATA, 'A')

	outcome := stepOne(t, m, Store{From: 2, To: uint16(WRITING)})

	assert.True(outcome.Output)
	assert.Equal("A", buf.String())
	assert.EqualValues(0, m.Read(WRITING), "strobe must clear after the emit")

	// The next step emits nothing.
	outcome, err := m.Step()
	assert.NoError(err)
	assert.False(outcome.Output)
	assert.Equal("A", buf.String())
}

func TestMachineStepNotSupported(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	err := m.Load(LOAD_BASE, []uint32{0x03000000})
	assert.NoError(err)
	m.Write(PC, uint32(LOAD_BASE))

	_, err = m.Step()
	assert.ErrorIs(err, ErrNotSupported)
	assert.Equal(LOAD_BASE, m.PC(), "a fatal step must not advance")
}

func TestMachineStepUndecodable(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	err := m.Load(LOAD_BASE, []uint32{0x08000000})
	assert.NoError(err)
	m.Write(PC, uint32(LOAD_BASE))

	var derr ErrDecode
	_, err = m.Step()
	assert.ErrorAs(err, &derr)
}

func TestMachinePCTruncates(t *testing.T) {
	assert := assert.New(t)

	// The PC cell holds a full word; fetch uses only the low 16 bits.
	m := NewMachine()
	m.Write(PC, 0x00018000)

	assert.Equal(Address(0x8000), m.PC())
}

func TestMachineBreakpoints(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	assert.False(m.AtBreakpoint(LOAD_BASE))

	m.AddBreakpoint(LOAD_BASE)
	m.AddBreakpoint(LOAD_BASE)
	m.AddBreakpoint(0x8004)

	assert.True(m.AtBreakpoint(LOAD_BASE))
	assert.True(m.AtBreakpoint(0x8004))
	assert.False(m.AtBreakpoint(0x8001))
}
