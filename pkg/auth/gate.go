package auth

import (
	"context"
	"sync"

	"github.com/pion/videorecord/internal/logging"
)

var logger = logging.NewLogger("videorecord/auth")

// Gate caches the permission state of a Backend for the lifetime of the
// process and funnels concurrent requests into a single prompt.
type Gate struct {
	backend Backend

	mu      sync.Mutex
	cached  State
	pending *request
}

type request struct {
	done  chan struct{}
	state State
	err   error
}

// NewGate creates a gate over backend.
func NewGate(backend Backend) *Gate {
	return &Gate{backend: backend}
}

// Default is the process-wide gate over the host's video device nodes.
var Default = NewGate(DeviceNodeBackend{})

// Check reports whether the Default gate grants camera access.
func Check(ctx context.Context) (bool, string) {
	return Default.Check(ctx)
}

// State returns the cached state, consulting the backend without prompting
// if nothing has been determined yet.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.cached.Determined() {
		g.cached = g.backend.Status()
	}
	return g.cached
}

// Check resolves the permission. Determined states are answered from the
// cache without touching the backend. NotDetermined triggers a request that
// blocks the calling goroutine until the backend answers or ctx is done;
// concurrent callers share that request. Check never fails: a missing
// permission is reported as granted=false with a reason.
func (g *Gate) Check(ctx context.Context) (granted bool, message string) {
	g.mu.Lock()
	if !g.cached.Determined() {
		g.cached = g.backend.Status()
	}
	if g.cached.Determined() {
		state := g.cached
		g.mu.Unlock()
		return state == Authorized, state.message()
	}

	req := g.pending
	if req == nil {
		req = &request{done: make(chan struct{})}
		g.pending = req
		go g.request(req)
	}
	g.mu.Unlock()

	select {
	case <-req.done:
	case <-ctx.Done():
		return false, "camera authorization was interrupted: " + ctx.Err().Error()
	}

	if req.err != nil {
		return false, "camera authorization failed: " + req.err.Error()
	}
	return req.state == Authorized, req.state.message()
}

// request runs detached from any caller's context, so one impatient caller
// can't cancel the prompt for everyone else.
func (g *Gate) request(req *request) {
	state, err := g.backend.Request(context.Background())

	g.mu.Lock()
	if err == nil && state.Determined() {
		g.cached = state
	}
	g.pending = nil
	g.mu.Unlock()

	if err != nil {
		logger.Warnf("authorization request failed: %v", err)
	} else {
		logger.Infof("camera authorization: %s", state)
	}

	req.state, req.err = state, err
	close(req.done)
}

// CheckAsync runs Check on its own goroutine and hands the result to fn
// exactly once.
func (g *Gate) CheckAsync(ctx context.Context, fn func(granted bool, message string)) {
	go func() {
		fn(g.Check(ctx))
	}()
}
