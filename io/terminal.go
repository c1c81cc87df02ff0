package io

import (
	"bytes"
	"io"

	"github.com/ezrec/chip8/display"
)

const (
	ANSI_CLEAR       = "\x1b[2J"
	ANSI_HOME        = "\x1b[H"
	ANSI_CURSOR_HIDE = "\x1b[?25l"
	ANSI_CURSOR_SHOW = "\x1b[?25h"
)

// halfBlock is the character for a top and bottom pixel pair.
var halfBlock = [2][2]rune{
	{' ', '▄'},
	{'▀', '█'},
}

// Terminal renders a display to an ANSI terminal, two pixel rows per
// line of text.
type Terminal struct {
	Output io.Writer // Terminal output.

	buf     bytes.Buffer
	last    display.Display
	started bool
}

// Render writes the display, if it changed since the last render.
func (term *Terminal) Render(dp *display.Display) (err error) {
	if term.started && term.last == *dp {
		return
	}

	term.buf.Reset()
	if !term.started {
		term.buf.WriteString(ANSI_CLEAR + ANSI_CURSOR_HIDE)
	}
	term.buf.WriteString(ANSI_HOME)

	for y := 0; y < display.DISPLAY_HEIGHT; y += 2 {
		for x := range display.DISPLAY_WIDTH {
			top := dp.Get(x, y)
			bottom := dp.Get(x, y+1)
			term.buf.WriteRune(halfBlock[b2i(top)][b2i(bottom)])
		}
		term.buf.WriteString("\r\n")
	}

	_, err = term.Output.Write(term.buf.Bytes())
	if err != nil {
		return
	}

	term.last = *dp
	term.started = true

	return
}

// Close restores the cursor.
func (term *Terminal) Close() (err error) {
	if !term.started {
		return
	}

	_, err = io.WriteString(term.Output, ANSI_CURSOR_SHOW)
	term.started = false

	return
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
