package cpu

const (
	STACK_LIMIT = 16 // Maximum stack depth
)

// Stack is the subroutine return address stack.
type Stack struct {
	Data [STACK_LIMIT]uint16
	Sp   int
}

// Push a return address. Returns false if the stack is full.
func (s *Stack) Push(value uint16) (ok bool) {
	if s.Full() {
		return
	}

	s.Data[s.Sp] = value
	s.Sp++
	return true
}

// Pop the most recent return address. Returns false if the stack is empty.
func (s *Stack) Pop() (value uint16, ok bool) {
	value, ok = s.Peek()
	if ok {
		s.Sp--
	}
	return
}

func (s *Stack) Empty() bool {
	return s.Sp == 0
}

func (s *Stack) Full() bool {
	return s.Sp == STACK_LIMIT
}

func (s *Stack) Peek() (value uint16, ok bool) {
	if s.Empty() {
		return
	}

	return s.Data[s.Sp-1], true
}

func (s *Stack) Reset() {
	clear(s.Data[:])
	s.Sp = 0
}
