package keypad

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeypad_Press(t *testing.T) {
	assert := assert.New(t)

	kp := &Keypad{}
	for key := range Key(KEY_COUNT) {
		assert.False(kp.IsPressed(key))
	}

	assert.NoError(kp.Press(KEY_A))
	assert.True(kp.IsPressed(KEY_A))
	assert.False(kp.IsPressed(KEY_B))

	// Pressing twice is not a counter.
	assert.NoError(kp.Press(KEY_A))
	assert.NoError(kp.Release(KEY_A))
	assert.False(kp.IsPressed(KEY_A))
}

func TestKeypad_Invalid(t *testing.T) {
	assert := assert.New(t)

	kp := &Keypad{}
	assert.ErrorIs(kp.Press(Key(0x10)), ErrKeyInvalid)
	assert.ErrorIs(kp.Release(Key(0xff)), ErrKeyInvalid)
	assert.False(kp.IsPressed(Key(0x10)))

	_, ok := kp.Pressed()
	assert.False(ok)
}

func TestKeypad_Pressed(t *testing.T) {
	assert := assert.New(t)

	kp := &Keypad{}

	key, ok := kp.Pressed()
	assert.False(ok)
	assert.Equal(KEY_0, key)

	kp.Press(KEY_F)
	kp.Press(KEY_7)
	key, ok = kp.Pressed()
	assert.True(ok)
	assert.Equal(KEY_7, key)

	kp.Release(KEY_7)
	key, ok = kp.Pressed()
	assert.True(ok)
	assert.Equal(KEY_F, key)

	kp.Press(KEY_0)
	key, ok = kp.Pressed()
	assert.True(ok)
	assert.Equal(KEY_0, key)
}

func TestKeypad_Reset(t *testing.T) {
	assert := assert.New(t)

	kp := &Keypad{}
	kp.Press(KEY_1)
	kp.Press(KEY_C)

	kp.Reset()
	_, ok := kp.Pressed()
	assert.False(ok)
}

func TestKey_String(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("0", KEY_0.String())
	assert.Equal("C", KEY_C.String())
	assert.Equal("Key(16)", Key(16).String())
}

func TestKeypad_Defines(t *testing.T) {
	assert := assert.New(t)

	kp := &Keypad{}
	defines := maps.Collect(kp.Defines())

	assert.Len(defines, KEY_COUNT)
	assert.Equal("0x0", defines["KEY_0"])
	assert.Equal("0xf", defines["KEY_F"])
}
