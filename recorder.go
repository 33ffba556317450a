// Package videorecord records video from the cameras of the host.
//
// A Recorder ties together the permission check, the capture session, the
// cache directory and the compressor: recordings are written to the cache,
// compressed in the background and handed to the host to confirm or
// discard.
package videorecord

import (
	"context"
	"sync"
	"time"

	"github.com/pion/videorecord/internal/dispatch"
	"github.com/pion/videorecord/internal/logging"
	"github.com/pion/videorecord/pkg/io/video"
	"github.com/pion/videorecord/pkg/session"
	"github.com/pion/videorecord/pkg/storage"
	"github.com/pion/videorecord/pkg/transcode"
)

var logger = logging.NewLogger("videorecord")

// Take is the outcome of the last recording.
type Take struct {
	Raw        string
	Compressed string
	Duration   time.Duration
	// Compressing is set while the compressor works on Raw.
	Compressing bool
}

// Recorder is the entry point for hosts. All methods are safe for
// concurrent use and, apart from Close, return without waiting on the
// camera.
type Recorder struct {
	opts       RecorderOptions
	session    *session.Controller
	storage    *storage.Storage
	compressor *transcode.Compressor

	events   *dispatch.Queue
	handlers dispatch.Registry[Handler]

	mu        sync.Mutex
	take      *Take
	discarded map[string]struct{}
}

// New creates a Recorder. The camera isn't touched until Prepare.
func New(opts ...RecorderOption) (*Recorder, error) {
	o := defaultRecorderOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var storageOpts []storage.Option
	if o.OutputExt != "" {
		storageOpts = append(storageOpts, storage.WithOutputExt(o.OutputExt))
	}
	st, err := storage.New(o.CacheDir, storageOpts...)
	if err != nil {
		return nil, err
	}

	r := &Recorder{
		opts:       o,
		storage:    st,
		compressor: transcode.NewCompressor(st, o.Transcoder),
		events:     dispatch.NewQueue(),
		discarded:  make(map[string]struct{}),
	}

	sessionOpts := append([]session.Option{}, o.SessionOptions...)
	sessionOpts = append(sessionOpts, session.WithAuthorizer(session.AuthorizerFunc(r.authorize)))
	r.session = session.New(sessionOpts...)
	r.session.Register(r.sessionHandler())
	return r, nil
}

// Register adds h and returns the token to unregister it with.
func (r *Recorder) Register(h Handler) dispatch.Token {
	return r.handlers.Add(h)
}

// Unregister removes the handler behind t.
func (r *Recorder) Unregister(t dispatch.Token) {
	r.handlers.Remove(t)
}

func (r *Recorder) emit(fn func(Handler)) {
	r.events.Post(func() {
		r.handlers.Each(fn)
	})
}

func (r *Recorder) authorize(ctx context.Context) (bool, string) {
	granted, message := r.opts.Authorizer.Check(ctx)
	r.emit(func(h Handler) { h.OnAuthorizationResult(granted, message) })
	return granted, message
}

func (r *Recorder) sessionHandler() session.Handler {
	return session.HandlerFuncs{
		Prepared: func(err error) {
			r.emit(func(h Handler) { h.OnPrepared(err) })
		},
		RecordingStarted: func(job session.Job) {
			r.emit(func(h Handler) { h.OnRecordingStarted(job) })
		},
		Progress: func(current, total time.Duration) {
			r.emit(func(h Handler) { h.OnProgress(current, total) })
		},
		RecordingFinished: r.recordingFinished,
		Photo: func(data []byte, err error) {
			r.emit(func(h Handler) { h.OnPhoto(data, err) })
		},
		CameraSwitched: func(d session.Device) {
			r.emit(func(h Handler) { h.OnCameraSwitched(d) })
		},
		Error: func(err error) {
			r.emit(func(h Handler) { h.OnError(err) })
		},
	}
}

func (r *Recorder) recordingFinished(result session.RecordingResult) {
	if result.Err == nil {
		r.mu.Lock()
		r.take = &Take{Raw: result.Path, Duration: result.Duration}
		r.mu.Unlock()
	}
	r.emit(func(h Handler) { h.OnRecordingFinished(result) })

	if result.Err == nil && r.opts.AutoCompress {
		r.Compress(result.Path)
	}
}

// Storage returns the cache the recorder writes to.
func (r *Recorder) Storage() *storage.Storage {
	return r.storage
}

// Prepare checks authorization and starts the camera.
func (r *Recorder) Prepare() {
	r.session.Prepare()
}

// Preview returns a reader of the live stream.
func (r *Recorder) Preview() (video.Reader, error) {
	return r.session.Preview()
}

// Status returns a snapshot of the capture session.
func (r *Recorder) Status() session.Status {
	return r.session.Status()
}

// StartRecording starts recording into a new cache file and returns its
// path.
func (r *Recorder) StartRecording() string {
	path := r.storage.CacheFilePath(true)
	r.session.StartRecording(path)
	return path
}

// StopRecording finishes the active recording.
func (r *Recorder) StopRecording() {
	r.session.StopRecording()
}

// SwitchCamera moves to the camera on the other side.
func (r *Recorder) SwitchCamera() {
	r.session.SwitchCamera()
}

// TakePhoto captures a still image.
func (r *Recorder) TakePhoto() {
	r.session.TakePhoto()
}

// SetPreviewGeometry describes how the preview is displayed.
func (r *Recorder) SetPreviewGeometry(g session.Geometry) {
	r.session.SetPreviewGeometry(g)
}

// SetFocus focuses at p in preview coordinates.
func (r *Recorder) SetFocus(p session.Point) {
	r.session.SetFocus(p)
}

// Compress compresses the recording at path in the background. The result
// is reported through OnCompressionComplete.
func (r *Recorder) Compress(path string) {
	r.mu.Lock()
	if r.take != nil && r.take.Raw == path {
		r.take.Compressing = true
	}
	r.mu.Unlock()

	req := transcode.Request{Input: path, RemoveInput: r.opts.RemoveRaw}
	r.compressor.CompressFunc(context.Background(), req, r.compressed)
}

func (r *Recorder) compressed(res transcode.Result) {
	r.mu.Lock()
	_, discarded := r.discarded[res.Input]
	if discarded {
		delete(r.discarded, res.Input)
	} else if r.take != nil && r.take.Raw == res.Input {
		r.take.Compressing = false
		r.take.Compressed = res.Output
		if res.Success && r.opts.RemoveRaw {
			r.take.Raw = ""
		}
	}
	r.mu.Unlock()

	if discarded && res.Success {
		if err := r.storage.Remove(res.Output); err != nil {
			logger.Warnf("failed to remove %s: %v", res.Output, err)
		}
	}
	r.emit(func(h Handler) { h.OnCompressionComplete(res.Success, res.Output) })
}

// Last returns the last finished recording that hasn't been confirmed or
// discarded.
func (r *Recorder) Last() (Take, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.take == nil {
		return Take{}, false
	}
	return *r.take, true
}

// Confirm hands the last recording over to the caller, who owns the
// returned file from then on. The compressed file is preferred over the
// raw one.
func (r *Recorder) Confirm() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.take == nil {
		return "", ErrNoRecording
	}
	t := *r.take
	r.take = nil

	if t.Compressed != "" {
		return t.Compressed, nil
	}
	return t.Raw, nil
}

// Discard deletes the files of the last recording. A compression still
// running is cleaned up when it completes.
func (r *Recorder) Discard() error {
	r.mu.Lock()
	t := r.take
	r.take = nil
	if t != nil && t.Compressing {
		r.discarded[t.Raw] = struct{}{}
	}
	r.mu.Unlock()

	if t == nil {
		return ErrNoRecording
	}
	for _, p := range []string{t.Raw, t.Compressed} {
		if p == "" {
			continue
		}
		if err := r.storage.Remove(p); err != nil {
			return err
		}
	}
	return nil
}

// Close stops any recording and camera, waits for queued compressions and
// delivers the remaining events. It must not be called from a Handler.
func (r *Recorder) Close() {
	r.session.Close()
	r.compressor.Close()
	r.events.Close()
}
