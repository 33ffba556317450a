package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pion/videorecord/pkg/frame"
	"github.com/pion/videorecord/pkg/io/video"
	"github.com/pion/videorecord/pkg/movie"
)

// recording is an active job. Its writer and ticker goroutines only talk
// back to the controller by posting commands.
type recording struct {
	c      *Controller
	job    Job
	writer *movie.Writer
	reader video.Reader
	// source is the stream the job was started on.
	source *video.Broadcaster

	ctx        context.Context
	cancel     context.CancelFunc
	writerDone chan struct{}
	tickerDone chan struct{}

	mu  sync.Mutex
	err error
}

func (c *Controller) newRecording(path string) (*recording, error) {
	w, err := movie.Create(path, c.media.Width, c.media.Height)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(c.ctx)
	r := &recording{
		c: c,
		job: Job{
			ID:     uuid.NewString(),
			Path:   path,
			Status: JobRecording,
		},
		writer:     w,
		ctx:        ctx,
		cancel:     cancel,
		writerDone: make(chan struct{}),
		tickerDone: make(chan struct{}),
	}
	// A camera switch may change the frame size mid-recording, the movie
	// keeps the size it was created with.
	r.source = c.broadcaster
	r.reader = video.Fit(c.media.Width, c.media.Height, video.ScalerApproxBiLinear)(c.broadcaster.NewReader(true))
	return r, nil
}

func (r *recording) start() {
	r.job.StartedAt = time.Now()
	go r.write()
	go r.tick()
}

func (r *recording) snapshot() Job {
	return r.job
}

func (r *recording) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err == nil {
		r.err = err
	}
}

func (r *recording) getErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// write encodes frames until the job is stopped. A failure ends the job.
func (r *recording) write() {
	defer close(r.writerDone)

	quality := r.c.opts.JPEGQuality
	for r.ctx.Err() == nil {
		img, release, err := r.reader.Read()
		if r.ctx.Err() != nil {
			if err == nil {
				release()
			}
			return
		}
		if err != nil {
			r.lost(err)
			return
		}

		pts := time.Since(r.job.StartedAt)
		data, err := frame.EncodeJPEG(img, quality)
		release()
		if err != nil {
			r.fail(fmt.Errorf("%w: %v", ErrWriteFailure, err))
			return
		}
		if err := r.writer.WriteFrame(pts, data); err != nil {
			r.fail(fmt.Errorf("%w: %v", ErrWriteFailure, err))
			return
		}
	}
}

func (r *recording) fail(err error) {
	r.setErr(err)
	r.c.post(func() { r.c.stopRecording(r, err) })
}

// lost ends the job after the camera stream itself failed. The capture is
// torn down as well, so the next Prepare starts the camera afresh.
func (r *recording) lost(cause error) {
	err := fmt.Errorf("%w: camera stopped: %v", ErrWriteFailure, cause)
	r.setErr(err)
	r.c.post(func() {
		r.c.stopRecording(r, err)
		r.c.dropCapture(r.source, cause)
	})
}

// tick reports progress until the job stops or reaches the time limit.
// Elapsed time is measured from the start on every tick, so ticks don't
// drift.
func (r *recording) tick() {
	defer close(r.tickerDone)

	interval, limit := r.c.opts.ProgressInterval, r.c.opts.MaxDuration
	t := time.NewTicker(interval)
	defer t.Stop()

	var last time.Duration
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-t.C:
		}

		elapsed := time.Since(r.job.StartedAt)
		if limit > 0 && elapsed > limit {
			elapsed = limit
		}
		if elapsed < last {
			elapsed = last
		}
		last = elapsed

		r.c.emit(func(h Handler) { h.OnProgress(elapsed, limit) })

		if limit > 0 && elapsed >= limit {
			logger.Infof("recording %s reached its limit of %v", r.job.ID, limit)
			r.c.post(func() { r.c.stopRecording(r, nil) })
			return
		}
	}
}

// finish stops both goroutines and finalizes the movie. The ticker is
// fully stopped before this returns, so no tick can follow the result.
func (r *recording) finish(cause error, timeout time.Duration) RecordingResult {
	elapsed := time.Since(r.job.StartedAt)
	if limit := r.c.opts.MaxDuration; limit > 0 && elapsed > limit {
		elapsed = limit
	}

	r.cancel()
	<-r.tickerDone

	select {
	case <-r.writerDone:
	case <-time.After(timeout):
		// The writer is stuck reading a frame. Closing the movie makes its
		// next write fail harmlessly.
		logger.Warnf("recording %s: writer didn't stop within %v", r.job.ID, timeout)
	}

	err := cause
	if err == nil {
		err = r.getErr()
	}
	if err == nil {
		if closeErr := r.writer.Close(elapsed); closeErr != nil {
			err = fmt.Errorf("%w: %v", ErrWriteFailure, closeErr)
		}
	}

	job := r.job
	job.Elapsed = elapsed
	result := RecordingResult{Job: job, Frames: r.writer.Frames()}
	if err != nil {
		if abortErr := r.writer.Abort(); abortErr != nil {
			logger.Warnf("failed to remove %s: %v", job.Path, abortErr)
		}
		result.Job.Status = JobFailed
		result.Err = err
		return result
	}

	result.Job.Status = JobFinished
	result.Path = job.Path
	result.Duration = elapsed
	return result
}
