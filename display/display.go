// Package display implements the 64x32 monochrome framebuffer.
//
// Sprites are composited with XOR. A draw reports a collision when a lit
// sprite bit lands on an already lit pixel, regardless of the pixel being
// toggled off as a result.
package display

import (
	"fmt"
	"iter"
	"maps"
	"strings"
)

const (
	DISPLAY_WIDTH  = 64 // Width in pixels.
	DISPLAY_HEIGHT = 32 // Height in pixels.
	SPRITE_WIDTH   = 8  // Pixels per sprite row (one byte).
)

var _display_defines = map[string]string{
	"DISPLAY_WIDTH":  fmt.Sprintf("%v", DISPLAY_WIDTH),
	"DISPLAY_HEIGHT": fmt.Sprintf("%v", DISPLAY_HEIGHT),
	"SPRITE_WIDTH":   fmt.Sprintf("%v", SPRITE_WIDTH),
}

// Display is the framebuffer. Pixel[y][x] is true when lit.
type Display struct {
	Pixel [DISPLAY_HEIGHT][DISPLAY_WIDTH]bool
}

// Clear turns off every pixel.
func (dp *Display) Clear() {
	for y := range dp.Pixel {
		clear(dp.Pixel[y][:])
	}
}

// wrap reduces a coordinate into [0, size).
func wrap(v int, size int) int {
	v %= size
	if v < 0 {
		v += size
	}
	return v
}

// Draw composites a sprite at (x, y). Each byte of the sprite is one row,
// most significant bit leftmost. Pixels past an edge wrap to the opposite
// edge.
func (dp *Display) Draw(x, y int, sprite []byte) (collision bool) {
	for j, row := range sprite {
		py := wrap(y+j, DISPLAY_HEIGHT)
		for i := range SPRITE_WIDTH {
			bit := (row>>(7-i))&1 == 1
			if !bit {
				continue
			}
			px := wrap(x+i, DISPLAY_WIDTH)
			old := dp.Pixel[py][px]
			collision = collision || old
			dp.Pixel[py][px] = !old
		}
	}

	return
}

// Get returns the state of the pixel at (x, y), wrapping coordinates.
func (dp *Display) Get(x, y int) bool {
	return dp.Pixel[wrap(y, DISPLAY_HEIGHT)][wrap(x, DISPLAY_WIDTH)]
}

// Lit returns the number of lit pixels.
func (dp *Display) Lit() (count int) {
	for _, row := range dp.Rows() {
		for _, on := range row {
			if on {
				count++
			}
		}
	}
	return
}

// Rows iterates over the framebuffer rows, top to bottom.
func (dp *Display) Rows() iter.Seq2[int, []bool] {
	return func(yield func(int, []bool) bool) {
		for y := range dp.Pixel {
			if !yield(y, dp.Pixel[y][:]) {
				return
			}
		}
	}
}

// String renders the framebuffer as text, '#' for lit and '.' for unlit.
func (dp *Display) String() string {
	var sb strings.Builder
	sb.Grow((DISPLAY_WIDTH + 1) * DISPLAY_HEIGHT)
	for _, row := range dp.Rows() {
		for _, on := range row {
			if on {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Defines for the display.
func (dp *Display) Defines() iter.Seq2[string, string] {
	return maps.All(_display_defines)
}
