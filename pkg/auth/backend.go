package auth

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
)

// Backend is the source of truth for the permission state.
type Backend interface {
	// Status returns the current state without prompting.
	Status() State
	// Request asks for permission. It is only called while Status returns
	// NotDetermined and may block until the user answers.
	Request(ctx context.Context) (State, error)
}

// DefaultDevicePattern matches the video device nodes of the host.
const DefaultDevicePattern = "/dev/video*"

// DeviceNodeBackend derives the permission from the access mode of the
// video device nodes. The kernel doesn't prompt, so it never reports
// NotDetermined.
type DeviceNodeBackend struct {
	// Pattern is a filepath.Glob pattern. Empty means DefaultDevicePattern.
	Pattern string
}

// Status returns Authorized when any device node is readable and writable,
// Denied when nodes exist but none is accessible, and Restricted when there
// is no node at all.
func (b DeviceNodeBackend) Status() State {
	pattern := b.Pattern
	if pattern == "" {
		pattern = DefaultDevicePattern
	}

	nodes, err := filepath.Glob(pattern)
	if err != nil || len(nodes) == 0 {
		return Restricted
	}
	for _, node := range nodes {
		err := access(node)
		if err == nil {
			return Authorized
		}
		logger.Debugf("%s is not accessible: %v", node, err)
	}
	return Denied
}

// Request returns Status, there is nothing to ask.
func (b DeviceNodeBackend) Request(context.Context) (State, error) {
	return b.Status(), nil
}

// PromptFunc asks the user for camera access and returns whether it was
// granted.
type PromptFunc func(ctx context.Context) (bool, error)

// PromptBackend defers to a host provided prompt the first time permission
// is requested. It keeps the answer afterwards.
type PromptBackend struct {
	prompt PromptFunc

	mu    sync.Mutex
	state State
}

var errNoPrompt = errors.New("auth: no prompt available")

// NewPromptBackend creates a backend that starts out NotDetermined.
func NewPromptBackend(prompt PromptFunc) *PromptBackend {
	return &PromptBackend{prompt: prompt}
}

func (b *PromptBackend) Status() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *PromptBackend) Request(ctx context.Context) (State, error) {
	if b.prompt == nil {
		return NotDetermined, errNoPrompt
	}

	granted, err := b.prompt(ctx)
	if err != nil {
		return NotDetermined, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if granted {
		b.state = Authorized
	} else {
		b.state = Denied
	}
	return b.state, nil
}

// StaticBackend always reports the same state. Requests leave
// NotDetermined unchanged.
type StaticBackend State

func (b StaticBackend) Status() State {
	return State(b)
}

func (b StaticBackend) Request(context.Context) (State, error) {
	return State(b), nil
}
