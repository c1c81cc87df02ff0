// Package cpu implements the interpreter and assembler for the CHIP-8
// virtual machine.
//
// The CPU consists of 4096 bytes of memory holding the built-in font and
// the program, sixteen 8-bit registers (V0-VF, with VF doubling as the
// carry, borrow and collision flag), a 16-bit index register, a program
// counter, a 16 entry return stack, and the delay and sound timers. It
// draws into a display.Display and polls a keypad.Keypad.
//
// The assembler accepts the conventional CHIP-8 mnemonics, and supports
// macros, labels, equates, and compile-time expression evaluation.
package cpu
