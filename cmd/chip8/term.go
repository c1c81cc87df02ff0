package main

import (
	"io"
	"os"
	"slices"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// rawTerm holds a terminal in cbreak mode: no echo, and input is
// delivered per byte. Signals are still generated by the terminal.
type rawTerm struct {
	fd      uintptr
	restore unix.Termios
}

func enterRawTerm(file *os.File) (rt *rawTerm, err error) {
	rt = &rawTerm{fd: file.Fd()}

	err = termios.Tcgetattr(rt.fd, &rt.restore)
	if err != nil {
		rt = nil
		return
	}

	state := rt.restore
	termios.Cfmakecbreak(&state)
	state.Cc[unix.VMIN] = 1
	state.Cc[unix.VTIME] = 0

	err = termios.Tcsetattr(rt.fd, termios.TCSANOW, &state)
	if err != nil {
		rt = nil
		return
	}

	return
}

func (rt *rawTerm) exit() error {
	return termios.Tcsetattr(rt.fd, termios.TCSANOW, &rt.restore)
}

// readInput sends each read from r on input, until r fails.
func readInput(r io.Reader, input chan<- []byte) {
	defer close(input)

	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			input <- slices.Clone(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

// drainInput returns all input ready without blocking. ok is false once
// input has been closed.
func drainInput(input <-chan []byte) (data []byte, ok bool) {
	for {
		select {
		case in, open := <-input:
			if !open {
				return
			}
			data = append(data, in...)
		default:
			ok = true
			return
		}
	}
}
