package io

import (
	"io"
	"log"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	TONE_SAMPLE_RATE   = 44100 // Samples per second.
	TONE_BIT_DEPTH     = 8     // Unsigned 8-bit PCM.
	TONE_FREQUENCY     = 440   // Square wave, in Hz.
	TONE_FRAME_RATE    = 60    // Frames per second.
	TONE_FRAME_SAMPLES = TONE_SAMPLE_RATE / TONE_FRAME_RATE
	TONE_SILENCE       = 0x80 // 8-bit PCM midpoint.
	TONE_AMPLITUDE     = 0x40
)

// Beeper is a sound output.
type Beeper interface {
	BeginBeep() error // Start the tone.
	EndBeep() error   // Stop the tone.
	Frame() error     // Advance one frame of audio.
}

// Tone drives a Beeper from the sound timer.
type Tone struct {
	Verbose bool   // If set, log tone changes.
	Beeper  Beeper // Sound output, may be nil.

	playing bool
}

// Playing returns true while the tone sounds.
func (tone *Tone) Playing() bool {
	return tone.playing
}

// Update observes the sound timer for one frame. The tone begins when
// the timer becomes non-zero, and ends when it reaches zero.
func (tone *Tone) Update(sound uint8) (err error) {
	if tone.Beeper == nil {
		tone.playing = sound > 0
		return
	}

	switch {
	case sound > 0 && !tone.playing:
		if tone.Verbose {
			log.Printf("tone: begin")
		}
		err = tone.Beeper.BeginBeep()
		if err != nil {
			return
		}
		tone.playing = true
	case sound == 0 && tone.playing:
		if tone.Verbose {
			log.Printf("tone: end")
		}
		err = tone.Beeper.EndBeep()
		if err != nil {
			return
		}
		tone.playing = false
	}

	err = tone.Beeper.Frame()

	return
}

// WavBeeper records a square wave tone to a WAV file, one frame at a time.
type WavBeeper struct {
	enc    *wav.Encoder
	buf    *audio.IntBuffer
	on     bool
	phase  int
	closed bool
}

var _ Beeper = (*WavBeeper)(nil)

// NewWavBeeper starts a mono 8-bit WAV recording.
func NewWavBeeper(ws io.WriteSeeker) (wb *WavBeeper) {
	wb = &WavBeeper{
		enc: wav.NewEncoder(ws, TONE_SAMPLE_RATE, TONE_BIT_DEPTH, 1, 1),
		buf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: 1,
				SampleRate:  TONE_SAMPLE_RATE,
			},
			Data:           make([]int, TONE_FRAME_SAMPLES),
			SourceBitDepth: TONE_BIT_DEPTH,
		},
	}

	return
}

func (wb *WavBeeper) BeginBeep() (err error) {
	wb.on = true
	wb.phase = 0
	return
}

func (wb *WavBeeper) EndBeep() (err error) {
	wb.on = false
	return
}

// Frame appends one frame of tone or silence.
func (wb *WavBeeper) Frame() (err error) {
	if wb.closed {
		err = ErrBeeperClosed
		return
	}

	for n := range wb.buf.Data {
		value := TONE_SILENCE
		if wb.on {
			// Two half cycles per period.
			if (wb.phase*TONE_FREQUENCY*2/TONE_SAMPLE_RATE)%2 == 0 {
				value += TONE_AMPLITUDE
			} else {
				value -= TONE_AMPLITUDE
			}
			wb.phase++
		}
		wb.buf.Data[n] = value
	}

	err = wb.enc.Write(wb.buf)

	return
}

// Close completes the WAV headers. The underlying writer is not closed.
func (wb *WavBeeper) Close() (err error) {
	if wb.closed {
		return
	}

	wb.closed = true
	err = wb.enc.Close()

	return
}

// Bell rings the terminal bell when a tone begins.
type Bell struct {
	Output io.Writer
}

var _ Beeper = (*Bell)(nil)

func (bell *Bell) BeginBeep() (err error) {
	_, err = io.WriteString(bell.Output, "\a")
	return
}

func (bell *Bell) EndBeep() (err error) {
	return
}

func (bell *Bell) Frame() (err error) {
	return
}
