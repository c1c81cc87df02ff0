package emulator

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	// ErrQuit is returned by a Run hook to stop running.
	ErrQuit = errors.New(f("quit"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Pc     uint16 // Address of the failing instruction.
	LineNo int    // Source line, if the program has a listing.
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo > 0 {
		return f("line %d pc 0x%03x %v", err.LineNo, err.Pc, err.Err)
	}

	return f("pc 0x%03x %v", err.Pc, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
