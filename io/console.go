// Package io provides device models for the machine's memory-mapped I/O.
package io

import (
	"io"
	"iter"
	"maps"
)

// Console is the character-output device behind the WRITING/DATA cells.
// Each Emit writes one byte and, when the writer buffers, flushes it
// immediately so hosted programs see their output as it happens.
type Console struct {
	Output io.Writer

	Count int // Bytes emitted since creation.
}

type flusher interface {
	Flush() error
}

// Defines returns an iter of defines for the device.
func (con *Console) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{})
}

// Emit writes a single byte to the output stream. A nil writer discards.
func (con *Console) Emit(value uint8) (err error) {
	con.Count++

	if con.Output == nil {
		return
	}

	_, err = con.Output.Write([]byte{value})
	if err != nil {
		return
	}

	if fl, ok := con.Output.(flusher); ok {
		err = fl.Flush()
	}

	return
}
