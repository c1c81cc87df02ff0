package main

import (
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefineFlag(t *testing.T) {
	assert := assert.New(t)

	defines := defineFlag{}

	fs := flag.NewFlagSet("chip8", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Var(defines, "D", "predefine")

	err := fs.Parse([]string{"-D", "SPEED=3", "-D", "PLAYER = V4", "rom.ch8"})
	assert.NoError(err)
	assert.Equal([]string{"rom.ch8"}, fs.Args())
	assert.Equal(defineFlag{"SPEED": "3", "PLAYER": "V4"}, defines)
	assert.Equal("PLAYER=V4,SPEED=3", defines.String())

	err = fs.Parse([]string{"-D", "SPEED"})
	assert.ErrorContains(err, errDefineSyntax.Error())

	err = defines.Set("=3")
	assert.ErrorIs(err, errDefineSyntax)
}
