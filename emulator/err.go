package emulator

import (
	"errors"

	"zpvm/cpu"
	"zpvm/translate"
)

var f = translate.From

// ErrExit reports that the debugger's exit command stopped the run.
var ErrExit = errors.New(f("exit"))

// ErrRuntime locates a machine fault at its fetch address.
type ErrRuntime struct {
	PC  cpu.Address
	Err error
}

func (err *ErrRuntime) Error() string {
	return f("pc 0x%04x %v", uint16(err.PC), err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
