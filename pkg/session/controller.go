// Package session owns the capture session: the active camera, the stream
// shared by preview, recording and photos, and the recording job.
//
// Every public method of Controller is asynchronous. Commands run one at a
// time on the controller's own goroutine, which is the only place session
// state is touched, and outcomes are reported to registered Handlers.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pion/videorecord/internal/dispatch"
	"github.com/pion/videorecord/internal/logging"
	"github.com/pion/videorecord/pkg/driver"
	"github.com/pion/videorecord/pkg/frame"
	"github.com/pion/videorecord/pkg/io/video"
	"github.com/pion/videorecord/pkg/prop"
)

var logger = logging.NewLogger("videorecord/session")

// Only one session may hold a camera at a time.
var (
	runningMu sync.Mutex
	running   *Controller
)

func claim(c *Controller) bool {
	runningMu.Lock()
	defer runningMu.Unlock()
	if running != nil && running != c {
		return false
	}
	running = c
	return true
}

func release(c *Controller) {
	runningMu.Lock()
	defer runningMu.Unlock()
	if running == c {
		running = nil
	}
}

// Controller drives one capture session.
type Controller struct {
	opts  Options
	ideal prop.Media

	loop     *dispatch.Queue
	events   *dispatch.Queue
	handlers dispatch.Registry[Handler]

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	// Owned by the loop goroutine.
	preparing     bool
	prepared      bool
	drv           driver.Driver
	media         prop.Media
	broadcaster   *video.Broadcaster
	job           *recording
	photoInFlight bool
	geometry      Geometry
}

// New creates an idle controller. Nothing is opened until Prepare.
func New(opts ...Option) *Controller {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.ProgressInterval <= 0 {
		o.ProgressInterval = DefaultProgressInterval
	}
	if o.FinalizeTimeout <= 0 {
		o.FinalizeTimeout = DefaultFinalizeTimeout
	}

	ideal, err := o.Preset.Media()
	if err != nil {
		logger.Warnf("%v, using %s", err, DefaultPreset)
		ideal, _ = DefaultPreset.Media()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		opts:   o,
		ideal:  ideal,
		loop:   dispatch.NewQueue(),
		events: dispatch.NewQueue(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register adds h and returns the token to unregister it with.
func (c *Controller) Register(h Handler) dispatch.Token {
	return c.handlers.Add(h)
}

// Unregister removes the handler behind t. Events already queued skip it.
func (c *Controller) Unregister(t dispatch.Token) {
	c.handlers.Remove(t)
}

func (c *Controller) post(fn func()) bool {
	return c.loop.Post(fn)
}

// call runs fn on the loop and waits for it. It reports false once the
// controller is closed.
func (c *Controller) call(fn func()) bool {
	done := make(chan struct{})
	if !c.post(func() { fn(); close(done) }) {
		return false
	}
	<-done
	return true
}

func (c *Controller) emit(fn func(Handler)) {
	c.events.Post(func() {
		c.handlers.Each(fn)
	})
}

func (c *Controller) emitError(err error) {
	logger.Warnf("%v", err)
	c.emit(func(h Handler) { h.OnError(err) })
}

// Prepare checks authorization and starts the preferred camera. It is a
// no-op while prepared. The outcome is reported through OnPrepared.
func (c *Controller) Prepare() {
	c.post(func() {
		if c.prepared && c.drv.Status() != driver.StateRunning {
			logger.Warnf("%s stopped running, preparing again", c.drv.Info().Label)
			c.releaseCapture()
		}
		if c.prepared || c.preparing {
			return
		}
		c.preparing = true

		// The check may wait on the user, so it runs off the loop.
		go func() {
			granted, message := c.opts.Authorizer.Check(c.ctx)
			c.post(func() { c.finishPrepare(granted, message) })
		}()
	})
}

func (c *Controller) finishPrepare(granted bool, message string) {
	c.preparing = false
	if c.prepared {
		return
	}
	if !granted {
		err := fmt.Errorf("%w: %s", ErrPermissionDenied, message)
		logger.Warnf("%v", err)
		c.emit(func(h Handler) { h.OnPrepared(err) })
		return
	}

	err := c.setup()
	if err != nil {
		logger.Warnf("prepare failed: %v", err)
	}
	c.emit(func(h Handler) { h.OnPrepared(err) })
}

func (c *Controller) setup() error {
	if !claim(c) {
		return fmt.Errorf("%w: another session is running", ErrDeviceUnavailable)
	}

	d := pickInitial(c.candidates(), c.opts.Position)
	if d == nil {
		release(c)
		return fmt.Errorf("%w: no camera found", ErrDeviceUnavailable)
	}

	r, media, err := c.startDriver(d)
	if err != nil {
		release(c)
		return err
	}

	broadcaster := video.NewBroadcaster(r, nil)
	// Drivers may round the requested size, movies carry the real one.
	actual, err := probeFrameSize(broadcaster)
	if err != nil {
		_ = d.Close()
		release(c)
		return fmt.Errorf("%w: %s delivered no frame: %v", ErrDeviceUnavailable, d.Info().Label, err)
	}
	media.Width, media.Height = actual.Width, actual.Height

	c.drv, c.media = d, media
	c.broadcaster = broadcaster
	c.prepared = true
	return nil
}

// Preview returns a reader of the live stream for the host's view. Frames
// are copied, so they stay valid until the next Read.
func (c *Controller) Preview() (video.Reader, error) {
	var r video.Reader
	ok := c.call(func() {
		if c.prepared {
			r = c.broadcaster.NewReader(true)
		}
	})
	if !ok || r == nil {
		return nil, ErrNotPrepared
	}
	return r, nil
}

// Status is a snapshot of the session.
type Status struct {
	Prepared  bool
	Recording bool
	Device    Device
	Media     prop.Media
}

// Status returns the current state of the session.
func (c *Controller) Status() Status {
	var s Status
	c.call(func() {
		s.Prepared = c.prepared
		s.Recording = c.job != nil
		if c.drv != nil {
			s.Device = deviceOf(c.drv)
			s.Media = c.media
		}
	})
	return s
}

// StartRecording records the live stream into a new movie at path.
// OnRecordingStarted reports success; failures go to OnError and leave
// the session ready for another attempt.
func (c *Controller) StartRecording(path string) {
	c.post(func() {
		if !c.prepared {
			c.emitError(ErrNotPrepared)
			return
		}
		if c.job != nil {
			c.emitError(ErrRecordingActive)
			return
		}

		r, err := c.newRecording(path)
		if err != nil {
			c.emitError(fmt.Errorf("%w: %v", ErrWriteFailure, err))
			return
		}
		c.job = r
		r.start()

		job := r.snapshot()
		logger.Infof("recording %s to %s", job.ID, job.Path)
		c.emit(func(h Handler) { h.OnRecordingStarted(job) })
	})
}

// StopRecording finalizes the active job. OnRecordingFinished fires once,
// after the job's last OnProgress. Without an active job nothing happens.
func (c *Controller) StopRecording() {
	c.post(func() { c.stopRecording(nil, nil) })
}

// stopRecording finishes r, or the active job if r is nil. cause marks the
// job as failed.
func (c *Controller) stopRecording(r *recording, cause error) {
	if c.job == nil || (r != nil && c.job != r) {
		return
	}
	r, c.job = c.job, nil

	result := r.finish(cause, c.opts.FinalizeTimeout)
	if result.Err != nil {
		logger.Errorf("recording %s failed: %v", result.Job.ID, result.Err)
	} else {
		logger.Infof("recording %s finished: %v, %d frames", result.Job.ID, result.Duration, result.Frames)
	}
	c.emit(func(h Handler) { h.OnRecordingFinished(result) })
}

// SwitchCamera moves the session to the camera on the other side. An
// active recording keeps going. Nothing happens without another camera.
func (c *Controller) SwitchCamera() {
	c.post(func() {
		if !c.prepared {
			c.emitError(ErrNotPrepared)
			return
		}
		if c.photoInFlight {
			c.emitError(ErrPhotoInFlight)
			return
		}

		next := pickAlternate(c.candidates(), c.drv)
		if next == nil {
			logger.Debugf("no camera to switch to from %s", c.drv.Info().Label)
			return
		}

		r, media, err := c.startDriver(next)
		if err != nil {
			// The current camera keeps streaming.
			c.emitError(err)
			return
		}

		// Readers blocked on the old camera carry on with the new one, so
		// closing it afterwards doesn't cut the recording.
		if err := c.broadcaster.ReplaceSource(r); err != nil {
			_ = next.Close()
			c.emitError(fmt.Errorf("%w: %v", ErrDeviceUnavailable, err))
			return
		}
		prev := c.drv
		c.drv, c.media = next, media
		if err := prev.Close(); err != nil {
			logger.Warnf("failed to close %s: %v", prev.Info().Label, err)
		}

		device := deviceOf(next)
		logger.Infof("switched from %s to %s", prev.Info().Label, device.Label)
		c.emit(func(h Handler) { h.OnCameraSwitched(device) })
	})
}

// TakePhoto captures the next frame of the live stream as a JPEG, delivered
// through OnPhoto.
func (c *Controller) TakePhoto() {
	c.post(func() {
		if !c.prepared {
			c.emit(func(h Handler) { h.OnPhoto(nil, ErrNotPrepared) })
			return
		}
		if c.photoInFlight {
			c.emit(func(h Handler) { h.OnPhoto(nil, ErrPhotoInFlight) })
			return
		}
		c.photoInFlight = true

		r := c.broadcaster.NewReader(true)
		quality := c.opts.JPEGQuality
		go func() {
			data, err := capturePhoto(r, quality)
			c.post(func() {
				c.photoInFlight = false
				c.emit(func(h Handler) { h.OnPhoto(data, err) })
			})
		}()
	})
}

func capturePhoto(r video.Reader, quality int) ([]byte, error) {
	img, release, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	defer release()
	return frame.EncodeJPEG(img, quality)
}

// SetPreviewGeometry tells the session how the preview is displayed, which
// SetFocus needs to map points.
func (c *Controller) SetPreviewGeometry(g Geometry) {
	c.post(func() { c.geometry = g })
}

// SetFocus focuses and exposes at p, given in preview coordinates. It is
// ignored when the camera can't focus.
func (c *Controller) SetFocus(p Point) {
	c.post(func() {
		if !c.prepared || !c.drv.CanFocus() {
			return
		}
		mirrored := c.drv.Info().Position == driver.PositionFront
		dp := c.geometry.DevicePoint(p, c.media.Width, c.media.Height, mirrored)
		err := c.drv.Focus(dp.X, dp.Y)
		if err != nil && !errors.Is(err, driver.ErrFocusNotSupported) {
			logger.Warnf("focus at (%.2f, %.2f) failed: %v", dp.X, dp.Y, err)
		}
	})
}

// Close ends any recording, releases the camera and waits until every
// pending callback has been delivered. It must not be called from a
// Handler.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		c.post(c.teardown)
		c.loop.Close()
		c.events.Close()
	})
}

func (c *Controller) teardown() {
	c.stopRecording(nil, nil)
	c.releaseCapture()
}

// releaseCapture closes the camera and gives up the process-wide claim.
func (c *Controller) releaseCapture() {
	if c.drv != nil {
		if err := c.drv.Close(); err != nil {
			logger.Warnf("failed to close %s: %v", c.drv.Info().Label, err)
		}
	}
	if c.prepared {
		release(c)
	}
	c.drv, c.broadcaster, c.prepared = nil, nil, false
}

// dropCapture releases a capture whose stream failed. It does nothing if
// the session has moved on from b in the meantime.
func (c *Controller) dropCapture(b *video.Broadcaster, cause error) {
	if !c.prepared || c.broadcaster != b {
		return
	}
	c.releaseCapture()
	c.emitError(fmt.Errorf("%w: camera stopped: %v", ErrDeviceUnavailable, cause))
}
