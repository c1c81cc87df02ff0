package io

import (
	"iter"
	"log"
	"maps"

	"github.com/ezrec/chip8/keypad"
)

const (
	KEY_HOLD_FRAMES = 6    // Frames a key stays down after its key-down byte.
	KEY_QUIT        = 0x1b // Escape.
)

// QWERTY maps the left hand block of a QWERTY keyboard onto the
// hexadecimal keypad:
//
//	1 2 3 4      1 2 3 C
//	q w e r  ->  4 5 6 D
//	a s d f      7 8 9 E
//	z x c v      A 0 B F
var QWERTY = map[byte]keypad.Key{
	'1': keypad.KEY_1, '2': keypad.KEY_2, '3': keypad.KEY_3, '4': keypad.KEY_C,
	'q': keypad.KEY_4, 'w': keypad.KEY_5, 'e': keypad.KEY_6, 'r': keypad.KEY_D,
	'a': keypad.KEY_7, 's': keypad.KEY_8, 'd': keypad.KEY_9, 'f': keypad.KEY_E,
	'z': keypad.KEY_A, 'x': keypad.KEY_0, 'c': keypad.KEY_B, 'v': keypad.KEY_F,
}

// KeyMap translates terminal input bytes into keypad presses.
//
// A terminal only reports key-down, so each press is held for Hold
// frames and then released.
type KeyMap struct {
	Verbose bool                // If set, log presses and releases.
	Map     map[byte]keypad.Key // Input byte to key.
	Hold    int                 // Frames to hold a key.

	held [keypad.KEY_COUNT]int
}

// NewKeyMap returns a KeyMap with the QWERTY layout.
func NewKeyMap() *KeyMap {
	return &KeyMap{
		Map:  maps.Clone(QWERTY),
		Hold: KEY_HOLD_FRAMES,
	}
}

// Key translates an input byte. Letters match either case.
func (km *KeyMap) Key(in byte) (key keypad.Key, ok bool) {
	key, ok = km.Map[in]
	if !ok && in >= 'A' && in <= 'Z' {
		key, ok = km.Map[in-'A'+'a']
	}
	return
}

// Feed presses the keys for the input bytes, restarting their hold.
// Returns quit if KEY_QUIT was in the input.
func (km *KeyMap) Feed(kp *keypad.Keypad, input []byte) (quit bool) {
	for _, in := range input {
		if in == KEY_QUIT {
			quit = true
			continue
		}

		key, ok := km.Key(in)
		if !ok {
			continue
		}

		if kp.Press(key) != nil {
			continue
		}

		if km.Verbose && km.held[key] == 0 {
			log.Printf("keymap: %q: press %v", in, key)
		}

		km.held[key] = max(km.Hold, 1)
	}

	return
}

// Frame ages the held keys, releasing those whose hold has expired.
func (km *KeyMap) Frame(kp *keypad.Keypad) {
	for key, frames := range km.Held() {
		frames--
		km.held[key] = frames
		if frames == 0 {
			kp.Release(key)
			if km.Verbose {
				log.Printf("keymap: release %v", key)
			}
		}
	}
}

// Held iterates over the held keys and their remaining frames.
func (km *KeyMap) Held() iter.Seq2[keypad.Key, int] {
	return func(yield func(key keypad.Key, frames int) bool) {
		for key, frames := range km.held {
			if frames == 0 {
				continue
			}
			if !yield(keypad.Key(key), frames) {
				return
			}
		}
	}
}
