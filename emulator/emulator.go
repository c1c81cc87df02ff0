// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"time"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/internal"
	"github.com/ezrec/chip8/io"
)

const (
	FRAME_RATE      = 60 // Frames per second; the timer rate.
	TICKS_PER_FRAME = 8  // Instructions per frame.
)

var _emulator_defines = map[string]string{
	"FRAME_RATE":      fmt.Sprintf("%v", FRAME_RATE),
	"TICKS_PER_FRAME": fmt.Sprintf("%v", TICKS_PER_FRAME),
}

// Hooks are called by Run around each frame. Either may be nil.
type Hooks struct {
	Before func() error // Prior to the frame; input.
	After  func() error // After the frame; output.
}

// Emulator state. CPU + tone + frame pacing.
type Emulator struct {
	Verbose       bool         // If set, enables verbose logging.
	*cpu.Cpu                   // Reference to the CPU simulation.
	Program       *cpu.Program // Listing of the loaded program, if any.
	Tone          io.Tone      // Sound timer observer.
	TicksPerFrame int          // Instruction ticks per frame.
	FrameRate     int          // Frames per second in Run. Zero runs unpaced.

	Frames  int // Frames since the last load.
	Unknown int // Unknown opcodes since the last load.

	fault error
}

// NewEmulator creates a new emulator, reset and ready for a Load.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:           cpu.NewCpu(),
		Program:       &cpu.Program{},
		TicksPerFrame: TICKS_PER_FRAME,
		FrameRate:     FRAME_RATE,
	}

	emu.Cpu.Diagnostic = emu.diagnostic
	emu.Cpu.Reset()

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
		emu.Cpu.Display.Defines(),
		emu.Cpu.Keypad.Defines(),
	)
}

// diagnostic counts, and optionally logs, unknown opcodes.
func (emu *Emulator) diagnostic(pc uint16, err error) {
	emu.Unknown++

	if emu.Verbose {
		log.Printf("emulator: %v", &ErrRuntime{Pc: pc, LineNo: emu.LineNo(pc), Err: err})
	}
}

// Load resets the machine and loads a program image.
// Any previous fault is cleared. An image that does not fit is rejected
// with ErrProgramSize, and leaves the emulator unchanged.
func (emu *Emulator) Load(image []byte) (err error) {
	if len(image) > cpu.PROGRAM_SIZE {
		err = cpu.ErrProgramSize
		return
	}

	emu.Cpu.Verbose = emu.Verbose

	emu.Cpu.Reset()
	err = emu.Cpu.Load(image)
	if err != nil {
		return
	}

	emu.Program = &cpu.Program{}
	emu.Frames = 0
	emu.Unknown = 0
	emu.fault = nil

	return
}

// LoadProgram loads an assembled program, keeping its listing.
func (emu *Emulator) LoadProgram(prog *cpu.Program) (err error) {
	err = emu.Load(prog.Binary())
	if err != nil {
		return
	}

	emu.Program = prog

	return
}

// Fault returns the runtime error that suspended instruction ticks, if any.
func (emu *Emulator) Fault() error {
	return emu.fault
}

// Ticks returns the total instruction ticks since a load.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// LineNo returns the source line number for an address, or 0 if the
// loaded program has no listing for it.
func (emu *Emulator) LineNo(pc uint16) int {
	dbg := emu.Program.Debug(pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.Opcode.LineNo
}

// Frame runs one frame: a timer tick, TicksPerFrame instruction ticks, and
// a tone update.
//
// An instruction error is returned as an *ErrRuntime once, and suspends
// instruction ticks until the next load. Timers and the tone keep running.
func (emu *Emulator) Frame() (err error) {
	fault, err := emu.frame()
	switch {
	case fault == nil:
		return
	case err == nil:
		err = fault
	default:
		err = errors.Join(fault, err)
	}

	return
}

// frame runs one frame, separating a new fault from tone errors.
func (emu *Emulator) frame() (fault error, err error) {
	emu.Cpu.Verbose = emu.Verbose

	emu.Cpu.TickTimers()

	if emu.fault == nil {
		for range emu.TicksPerFrame {
			pc := emu.Cpu.Pc
			tick_err := emu.Cpu.Tick()
			if tick_err != nil {
				fault = &ErrRuntime{Pc: pc, LineNo: emu.LineNo(pc), Err: tick_err}
				emu.fault = fault
				break
			}
		}
	}

	emu.Frames++

	err = emu.Tone.Update(emu.Cpu.Sound)

	return
}

// Run runs frames, paced at FrameRate, until the context is done or
// the frame budget (if non-zero) is spent.
//
// A runtime fault is logged and frames continue. A hook returning
// ErrQuit stops Run without error; any other hook error stops Run with
// that error.
func (emu *Emulator) Run(ctx context.Context, frames int, hooks Hooks) (err error) {
	var tick <-chan time.Time
	if emu.FrameRate > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(emu.FrameRate))
		defer ticker.Stop()
		tick = ticker.C
	}

	defer func() {
		if errors.Is(err, ErrQuit) {
			err = nil
		}
	}()

	for n := 0; frames <= 0 || n < frames; n++ {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			return
		default:
		}

		if hooks.Before != nil {
			err = hooks.Before()
			if err != nil {
				return
			}
		}

		var fault error
		fault, err = emu.frame()
		if fault != nil {
			log.Printf("emulator: %v", fault)
		}
		if err != nil {
			return
		}

		if hooks.After != nil {
			err = hooks.After()
			if err != nil {
				return
			}
		}

		if tick != nil {
			select {
			case <-ctx.Done():
				err = ctx.Err()
				return
			case <-tick:
			}
		}
	}

	return
}
