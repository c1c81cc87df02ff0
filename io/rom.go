package io

import (
	"io"
	"io/fs"
	"log"

	"github.com/ezrec/chip8/cpu"
)

// ROM_SIZE is the largest image that fits above the program start address.
const ROM_SIZE = cpu.PROGRAM_SIZE

// Rom is a program image.
type Rom struct {
	Verbose bool   // If set, log loads.
	Name    string // Where the image came from.
	Data    []byte // Image, loaded at cpu.PROGRAM_START.
}

// Load reads an image from a reader.
// Images larger than ROM_SIZE are rejected with ErrRomSize,
// and leave the Rom unchanged.
func (rom *Rom) Load(r io.Reader) (err error) {
	data, err := io.ReadAll(io.LimitReader(r, ROM_SIZE+1))
	if err != nil {
		return
	}

	if len(data) > ROM_SIZE {
		err = ErrRomSize
		return
	}

	rom.Data = data

	if rom.Verbose {
		log.Printf("rom: %v: %d bytes", rom.Name, len(rom.Data))
	}

	return
}

// LoadFS reads an image from a file in a file system.
func (rom *Rom) LoadFS(fsys fs.FS, name string) (err error) {
	file, err := fsys.Open(name)
	if err != nil {
		return
	}
	defer file.Close()

	old_name := rom.Name
	rom.Name = name

	err = rom.Load(file)
	if err != nil {
		rom.Name = old_name
	}

	return
}
