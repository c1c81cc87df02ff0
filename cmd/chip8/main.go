// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/internal"
	"github.com/ezrec/chip8/io"
)

func main() {
	var compile string
	var output string
	var ticks int
	var seed uint64
	var wav string
	var frames int
	var hold int
	var list bool
	var verbose bool
	defines := defineFlag{}

	flag.StringVar(&compile, "c", "", ".asm file to assemble")
	flag.StringVar(&output, "o", "", "Save assembled image to file, do not execute")
	flag.IntVar(&ticks, "i", emulator.TICKS_PER_FRAME, "Instructions per frame")
	flag.Uint64Var(&seed, "seed", 0, "Random seed (0 for time of day)")
	flag.StringVar(&wav, "wav", "", "Record the tone to a .wav file")
	flag.IntVar(&frames, "frames", 0, "Run headless for this many frames")
	flag.IntVar(&hold, "hold", io.KEY_HOLD_FRAMES, "Frames a key stays held")
	flag.BoolVar(&list, "l", false, "List assembler predefines, and exit")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.Var(defines, "D", "Assembler predefine NAME=VALUE (repeatable)")

	flag.Parse()

	log.SetFlags(0)
	log.SetPrefix("chip8: ")

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.TicksPerFrame = ticks
	if seed != 0 {
		emu.Cpu.Seed(seed)
	}

	if list {
		for key, value := range internal.IterSeq2Sorted(emu.Defines()) {
			fmt.Printf("%v=%v\n", key, value)
		}
		return
	}

	switch {
	case len(compile) != 0 && flag.NArg() != 0:
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	case len(compile) == 0 && flag.NArg() > 1:
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args()[1:])
	case len(output) != 0 && len(compile) == 0:
		log.Fatalf("%v: -o requires -c", os.Args[0])
	}

	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose}
		for key, value := range internal.IterSeq2Concat(emu.Defines(), maps.All(defines)) {
			asm.Predefine(key, value)
		}

		prog, err := asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}

		if verbose {
			err = listing(os.Stderr, prog)
			if err != nil {
				log.Fatalf("%v: %v", compile, err)
			}
		}

		if len(output) != 0 {
			err = os.WriteFile(output, prog.Binary(), 0o644)
			if err != nil {
				log.Fatalf("%v: %v", output, err)
			}
			return
		}

		err = emu.LoadProgram(prog)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	} else {
		rom := &io.Rom{Verbose: verbose, Name: "-"}

		path := flag.Arg(0)
		var err error
		if len(path) == 0 || path == "-" {
			path = rom.Name
			err = rom.Load(os.Stdin)
		} else {
			err = rom.LoadFS(os.DirFS(filepath.Dir(path)), filepath.Base(path))
		}
		if err != nil {
			log.Fatalf("%v: %v", path, err)
		}

		err = emu.Load(rom.Data)
		if err != nil {
			log.Fatalf("%v: %v", path, err)
		}
	}

	err := run(emu, frames, hold, wav)
	if err != nil {
		log.Fatal(err)
	}

	if frames > 0 {
		fmt.Print(emu.Cpu.Display)
		if emu.Fault() != nil {
			os.Exit(1)
		}
	}
}

// run drives the emulator until quit, interrupt, or the frame budget is
// spent. With no frame budget it owns the terminal.
func run(emu *emulator.Emulator, frames int, hold int, wav string) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	headless := frames > 0

	emu.Tone.Verbose = emu.Verbose
	if len(wav) != 0 {
		ouf, err := os.Create(wav)
		if err != nil {
			return err
		}
		defer ouf.Close()

		beeper := io.NewWavBeeper(ouf)
		defer func() {
			err = errors.Join(err, beeper.Close())
		}()
		emu.Tone.Beeper = beeper
	} else if !headless {
		emu.Tone.Beeper = &io.Bell{Output: os.Stdout}
	}

	hooks := emulator.Hooks{}
	if !headless {
		rt, err := enterRawTerm(os.Stdin)
		if err != nil {
			return fmt.Errorf("stdin: %w", err)
		}
		defer rt.exit()

		term := &io.Terminal{Output: os.Stdout}
		defer term.Close()

		keymap := io.NewKeyMap()
		keymap.Verbose = emu.Verbose
		keymap.Hold = hold

		input := make(chan []byte, 16)
		go readInput(os.Stdin, input)

		hooks.Before = func() error {
			data, ok := drainInput(input)
			if !ok {
				input = nil
			}
			if keymap.Feed(emu.Cpu.Keypad, data) {
				return emulator.ErrQuit
			}
			return nil
		}
		hooks.After = func() error {
			keymap.Frame(emu.Cpu.Keypad)
			return term.Render(emu.Cpu.Display)
		}
	}

	err = emu.Run(ctx, frames, hooks)
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	return
}
