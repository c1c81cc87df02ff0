package io

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ezrec/chip8/display"
	"github.com/stretchr/testify/assert"
)

func TestTerminalRender(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	term := &Terminal{Output: out}

	dp := &display.Display{}
	dp.Draw(0, 0, []byte{0x80, 0xc0})
	dp.Draw(2, 1, []byte{0x80})

	assert.NoError(term.Render(dp))

	text := out.String()
	assert.True(strings.HasPrefix(text, ANSI_CLEAR+ANSI_CURSOR_HIDE+ANSI_HOME))

	lines := strings.Split(strings.TrimPrefix(text, ANSI_CLEAR+ANSI_CURSOR_HIDE+ANSI_HOME), "\r\n")
	assert.Equal(display.DISPLAY_HEIGHT/2+1, len(lines))
	assert.Equal("", lines[len(lines)-1])

	row := []rune(lines[0])
	assert.Equal(display.DISPLAY_WIDTH, len(row))
	assert.Equal('█', row[0])
	assert.Equal('▄', row[1])
	assert.Equal('▄', row[2])
	assert.Equal(' ', row[3])

	// Unchanged displays are not redrawn.
	out.Reset()
	assert.NoError(term.Render(dp))
	assert.Equal(0, out.Len())

	dp.Clear()
	assert.NoError(term.Render(dp))
	assert.True(strings.HasPrefix(out.String(), ANSI_HOME))
	assert.NotContains(out.String(), "█")

	out.Reset()
	assert.NoError(term.Close())
	assert.Equal(ANSI_CURSOR_SHOW, out.String())
}
