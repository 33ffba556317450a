package driver

import "fmt"

// State is where a driver is in its lifecycle.
type State string

const (
	// StateClosed means the hardware hasn't been opened, so nothing is known
	// about it yet, not even its pixel formats.
	StateClosed State = "closed"
	// StateOpened means the hardware is open and its properties can be
	// queried.
	StateOpened State = "opened"
	// StateRunning means frames are being delivered to the reader returned
	// by VideoRecord.
	StateRunning State = "running"
)

// allowed maps every state to the states it can be reached from.
var allowed = map[State][]State{
	StateClosed:  {StateClosed, StateOpened, StateRunning},
	StateOpened:  {StateClosed},
	StateRunning: {StateOpened},
}

// Update runs f and moves s to next if f succeeds. A transition that isn't
// allowed fails with ErrInvalidState before f is run.
func (s *State) Update(next State, f func() error) error {
	if !s.canMoveTo(next) {
		return fmt.Errorf("%w: %s driver can't become %s", ErrInvalidState, *s, next)
	}

	if err := f(); err != nil {
		return err
	}
	*s = next
	return nil
}

func (s State) canMoveTo(next State) bool {
	for _, from := range allowed[next] {
		if from == s {
			return true
		}
	}
	return false
}
