package main

import (
	"fmt"
	"io"

	"github.com/ezrec/chip8/cpu"
)

// listing writes the disassembly of a program's instructions, one per line,
// with the source line each came from.
func listing(w io.Writer, prog *cpu.Program) (err error) {
	for addr, code := range prog.Codes() {
		lineno := 0
		if dbg := prog.Debug(addr); dbg.Opcode != nil {
			lineno = dbg.LineNo
		}
		_, err = fmt.Fprintf(w, "%03x: %04x %-16v ; line %d\n", addr, uint16(code), code, lineno)
		if err != nil {
			return
		}
	}

	return
}
