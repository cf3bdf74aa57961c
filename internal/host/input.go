package host

import (
	"bufio"
	"io"
	"sync/atomic"
)

// StdinInput implements engine.InputSource as a latch toggled by input lines:
// pressing Enter alternates between "record held" and released, standing in
// for press-and-hold on a gamepad. The reader goroutine is the host's; the
// engine only ever sees IsHeld.
type StdinInput struct {
	held atomic.Bool
}

// NewStdinInput starts watching r (normally os.Stdin) for toggle lines.
func NewStdinInput(r io.Reader) *StdinInput {
	in := &StdinInput{}
	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			in.Toggle()
		}
	}()
	return in
}

// Toggle flips the held latch and returns the new value.
func (in *StdinInput) Toggle() bool {
	for {
		old := in.held.Load()
		if in.held.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Poll implements engine.InputSource. The latch updates asynchronously, so
// there is nothing to do per tick.
func (in *StdinInput) Poll() {}

// IsHeld implements engine.InputSource.
func (in *StdinInput) IsHeld(device, button int) bool {
	return in.held.Load()
}
