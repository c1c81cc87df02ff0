package io

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	// Rom errors
	ErrRomSize = errors.New(f("rom too large"))

	// Tone errors
	ErrBeeperClosed = errors.New(f("beeper closed"))
)
