// Command zpvm assembles and executes zero-page machine programs.
package main

import (
	"context"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"golang.org/x/term"

	"zpvm/cpu"
	"zpvm/emulator"
)

func main() {
	var compile string
	var output string
	var save string
	var listing bool
	var verbose bool

	flag.StringVar(&compile, "c", "", "Assembly source to compile")
	flag.StringVar(&output, "o", "-", "Console output file ('-' for stdout)")
	flag.StringVar(&save, "s", "", "Save the assembled word stream and exit")
	flag.BoolVar(&listing, "l", false, "Print the assembled listing and exit")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose

	asm := &cpu.Assembler{Verbose: verbose}
	for attr, value := range emu.Defines() {
		asm.Predefine(attr, value)
	}

	prog := &cpu.Program{}

	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		prog, err = asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	}

	if listing {
		for addr, inst := range prog.Codes() {
			fmt.Printf("0x%04x: %v\n", uint16(addr), inst)
		}
		return
	}

	if len(save) != 0 {
		ouf, err := os.Create(save)
		if err != nil {
			log.Fatalf("%v: %v", save, err)
		}
		defer ouf.Close()

		err = binary.Write(ouf, binary.BigEndian, prog.Words())
		if err != nil {
			log.Fatalf("%v: %v", save, err)
		}
		return
	}

	emu.Program = prog

	if output == "-" {
		emu.Console.Output = os.Stdout
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		emu.Console.Output = ouf
	}

	emu.Debug.Input = os.Stdin
	emu.Debug.Output = os.Stdout
	emu.Debug.Interactive = term.IsTerminal(int(os.Stdin.Fd()))

	err := emu.Reset()
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = emu.Run(ctx)
	switch {
	case errors.Is(err, emulator.ErrExit):
		// Clean exit from the debugger.
	case errors.Is(err, context.Canceled):
		// Interrupted.
	default:
		log.Fatal(err)
	}
}
