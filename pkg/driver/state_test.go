package driver

import (
	"errors"
	"testing"
)

var noop = func() error { return nil }

func TestUpdate1(t *testing.T) {
	s := StateClosed
	s.Update(StateOpened, noop)

	if s != StateOpened {
		t.Fatalf("expected %s, got %s", StateOpened, s)
	}

	s.Update(StateClosed, noop)

	if s != StateClosed {
		t.Fatalf("expected %s, got %s", StateClosed, s)
	}

	s.Update(StateOpened, noop)

	if s != StateOpened {
		t.Fatalf("expected %s, got %s", StateOpened, s)
	}
}

func TestUpdateInvalidTransitions(t *testing.T) {
	s := StateClosed
	if err := s.Update(StateRunning, noop); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected running a closed driver to fail with %v, got %v", ErrInvalidState, err)
	}

	s = StateRunning
	if err := s.Update(StateRunning, noop); err == nil {
		t.Error("expected running a running driver to fail")
	}
	if err := s.Update(StateOpened, noop); err == nil {
		t.Error("expected opening a running driver to fail")
	}
}

func TestUpdateKeepsStateOnFailure(t *testing.T) {
	s := StateClosed
	broken := errors.New("broken")
	if err := s.Update(StateOpened, func() error { return broken }); err != broken {
		t.Fatalf("expected %v, got %v", broken, err)
	}
	if s != StateClosed {
		t.Errorf("expected %s, got %s", StateClosed, s)
	}
}
