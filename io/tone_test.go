package io

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordBeeper struct {
	events []string
}

func (rb *recordBeeper) BeginBeep() error {
	rb.events = append(rb.events, "begin")
	return nil
}

func (rb *recordBeeper) EndBeep() error {
	rb.events = append(rb.events, "end")
	return nil
}

func (rb *recordBeeper) Frame() error {
	rb.events = append(rb.events, "frame")
	return nil
}

func TestToneUpdate(t *testing.T) {
	assert := assert.New(t)

	rb := &recordBeeper{}
	tone := &Tone{Beeper: rb}

	for _, sound := range []uint8{0, 3, 2, 1, 0, 0} {
		assert.NoError(tone.Update(sound))
	}

	assert.Equal([]string{
		"frame",
		"begin", "frame",
		"frame",
		"frame",
		"end", "frame",
		"frame",
	}, rb.events)
	assert.False(tone.Playing())
}

func TestToneNoBeeper(t *testing.T) {
	assert := assert.New(t)

	tone := &Tone{}
	assert.NoError(tone.Update(2))
	assert.True(tone.Playing())
	assert.NoError(tone.Update(0))
	assert.False(tone.Playing())
}

func TestWavBeeper(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "tone.wav")
	file, err := os.Create(path)
	require.NoError(err)

	wb := NewWavBeeper(file)
	tone := &Tone{Beeper: wb}

	for _, sound := range []uint8{0, 2, 1, 0} {
		require.NoError(tone.Update(sound))
	}
	require.NoError(wb.Close())
	require.NoError(file.Close())

	assert.ErrorIs(wb.Frame(), ErrBeeperClosed)

	data, err := os.ReadFile(path)
	require.NoError(err)

	dec := wav.NewDecoder(bytes.NewReader(data))
	require.True(dec.IsValidFile())
	assert.Equal(uint32(TONE_SAMPLE_RATE), dec.SampleRate)
	assert.Equal(uint16(1), dec.NumChans)
	assert.Equal(uint16(TONE_BIT_DEPTH), dec.BitDepth)

	buf, err := dec.FullPCMBuffer()
	require.NoError(err)
	require.Equal(4*TONE_FRAME_SAMPLES, len(buf.Data))

	silent := buf.Data[:TONE_FRAME_SAMPLES]
	for _, value := range silent {
		assert.Equal(TONE_SILENCE, value)
	}

	beep := buf.Data[TONE_FRAME_SAMPLES : 3*TONE_FRAME_SAMPLES]
	assert.Equal(TONE_SILENCE+TONE_AMPLITUDE, beep[0])

	// One full period is high for its first half, and low for the second.
	period := TONE_SAMPLE_RATE / TONE_FREQUENCY
	assert.Equal(TONE_SILENCE+TONE_AMPLITUDE, beep[period/2-1])
	assert.Equal(TONE_SILENCE-TONE_AMPLITUDE, beep[period/2+1])

	edges := 0
	for n := 1; n < len(beep); n++ {
		if beep[n] != beep[n-1] {
			edges++
		}
	}
	// 440 Hz for 2/60 of a second.
	assert.InDelta(2*TONE_FREQUENCY*2/TONE_FRAME_RATE, edges, 1)

	for _, value := range buf.Data[3*TONE_FRAME_SAMPLES:] {
		assert.Equal(TONE_SILENCE, value)
	}
}

func TestBell(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	tone := &Tone{Beeper: &Bell{Output: out}}

	for _, sound := range []uint8{1, 1, 0, 5} {
		assert.NoError(tone.Update(sound))
	}

	assert.Equal("\a\a", out.String())
}
