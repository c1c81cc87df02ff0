// Package io provides the peripherals around the CHIP-8 core: program
// images (Rom), keyboard input (KeyMap), terminal output (Terminal), and
// sound (Tone, with the WavBeeper and Bell backends).
package io
