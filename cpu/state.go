package cpu

// State is the instruction execution state of the interpreter.
type State int

//go:generate go tool stringer -linecomment -type=State
const (
	STATE_RUNNING      = State(0) // running
	STATE_AWAITING_KEY = State(1) // awaiting-key
)
