package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInput(t *testing.T) {
	assert := assert.New(t)

	input := make(chan []byte)
	go readInput(strings.NewReader("qwer"), input)

	var data []byte
	for in := range input {
		data = append(data, in...)
	}
	assert.Equal([]byte("qwer"), data)

	input = make(chan []byte, 4)
	input <- []byte("1")
	input <- []byte("23")

	data, ok := drainInput(input)
	assert.True(ok)
	assert.Equal([]byte("123"), data)

	data, ok = drainInput(input)
	assert.True(ok)
	assert.Empty(data)

	input <- []byte("z")
	close(input)
	data, ok = drainInput(input)
	assert.False(ok)
	assert.Equal([]byte("z"), data)
}
