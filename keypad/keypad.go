// Package keypad holds the state of the 16-key hexadecimal input pad.
//
// The pad is laid out as:
//
//	+---+---+---+---+
//	| 1 | 2 | 3 | C |
//	+---+---+---+---+
//	| 4 | 5 | 6 | D |
//	+---+---+---+---+
//	| 7 | 8 | 9 | E |
//	+---+---+---+---+
//	| A | 0 | B | F |
//	+---+---+---+---+
//
// Only the instantaneous held state of each key is tracked.
package keypad

import (
	"errors"
	"fmt"
	"iter"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

const (
	KEY_COUNT = 16 // Number of keys on the pad.
)

// Key is a logical key code, 0x0 through 0xF.
type Key uint8

const (
	KEY_0 = Key(0x0)
	KEY_1 = Key(0x1)
	KEY_2 = Key(0x2)
	KEY_3 = Key(0x3)
	KEY_4 = Key(0x4)
	KEY_5 = Key(0x5)
	KEY_6 = Key(0x6)
	KEY_7 = Key(0x7)
	KEY_8 = Key(0x8)
	KEY_9 = Key(0x9)
	KEY_A = Key(0xA)
	KEY_B = Key(0xB)
	KEY_C = Key(0xC)
	KEY_D = Key(0xD)
	KEY_E = Key(0xE)
	KEY_F = Key(0xF)
)

var (
	ErrKeyInvalid = errors.New(f("key invalid"))
)

// Valid returns true if the key is one of the 16 pad keys.
func (key Key) Valid() bool {
	return key < KEY_COUNT
}

// String returns the hex digit printed on the key.
func (key Key) String() string {
	if !key.Valid() {
		return fmt.Sprintf("Key(%d)", uint8(key))
	}
	return fmt.Sprintf("%X", uint8(key))
}

// Keypad is the held state of each key.
type Keypad struct {
	Key [KEY_COUNT]bool
}

// Press marks a key as held.
func (kp *Keypad) Press(key Key) (err error) {
	if !key.Valid() {
		err = ErrKeyInvalid
		return
	}

	kp.Key[key] = true
	return
}

// Release marks a key as not held.
func (kp *Keypad) Release(key Key) (err error) {
	if !key.Valid() {
		err = ErrKeyInvalid
		return
	}

	kp.Key[key] = false
	return
}

// IsPressed returns true if the key is held.
// Invalid keys are never held.
func (kp *Keypad) IsPressed(key Key) bool {
	if !key.Valid() {
		return false
	}
	return kp.Key[key]
}

// Pressed returns the lowest numbered held key.
func (kp *Keypad) Pressed() (key Key, ok bool) {
	for n, held := range kp.Key {
		if held {
			key = Key(n)
			ok = true
			return
		}
	}
	return
}

// Reset releases all keys.
func (kp *Keypad) Reset() {
	clear(kp.Key[:])
}

// Defines returns the assembler equates for the key codes.
func (kp *Keypad) Defines() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for n := range KEY_COUNT {
			if !yield(fmt.Sprintf("KEY_%X", n), fmt.Sprintf("%#x", n)) {
				return
			}
		}
	}
}
