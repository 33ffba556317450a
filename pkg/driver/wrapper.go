package driver

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pion/videorecord/pkg/io/video"
	"github.com/pion/videorecord/pkg/prop"
)

func wrapAdapter(a Adapter, info Info) (Driver, error) {
	generator, ok := a.(VideoRecorder)
	if !ok {
		return nil, errNotVideoRecorder
	}

	return &videoAdapterWrapper{
		adapter:  a,
		recorder: generator,
		id:       uuid.NewString(),
		info:     info,
		state:    StateClosed,
	}, nil
}

// videoAdapterWrapper adds state management to an adapter. All methods are
// safe for concurrent use.
type videoAdapterWrapper struct {
	adapter  Adapter
	recorder VideoRecorder
	id       string
	info     Info

	mu    sync.Mutex
	state State
}

func (w *videoAdapterWrapper) ID() string {
	return w.id
}

func (w *videoAdapterWrapper) Info() Info {
	return w.info
}

func (w *videoAdapterWrapper) Status() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *videoAdapterWrapper) Open() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Update(StateOpened, w.adapter.Open)
}

func (w *videoAdapterWrapper) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Update(StateClosed, w.adapter.Close)
}

func (w *videoAdapterWrapper) Properties() []prop.Media {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Properties method can only be called after the driver has been opened
	if w.state == StateClosed {
		return nil
	}
	return w.adapter.Properties()
}

func (w *videoAdapterWrapper) VideoRecord(p prop.Media) (video.Reader, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var r video.Reader
	err := w.state.Update(StateRunning, func() error {
		var err error
		r, err = w.recorder.VideoRecord(p)
		return err
	})
	if err != nil && !errors.Is(err, ErrInvalidState) {
		// A failed start leaves the hardware in an unknown state, so release it
		// and let the caller open it again.
		if closeErr := w.adapter.Close(); closeErr == nil {
			w.state = StateClosed
		}
	}
	return r, err
}

func (w *videoAdapterWrapper) CanFocus() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, ok := w.adapter.(Focuser)
	return ok && w.state != StateClosed && f.CanFocus()
}

func (w *videoAdapterWrapper) Focus(x, y float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, ok := w.adapter.(Focuser)
	if !ok || !f.CanFocus() {
		return ErrFocusNotSupported
	}
	if w.state == StateClosed {
		return fmt.Errorf("%w: focusing a closed driver", ErrInvalidState)
	}
	return f.Focus(x, y)
}
