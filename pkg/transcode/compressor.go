package transcode

import (
	"context"
	"fmt"
	"sync"

	"github.com/pion/videorecord/internal/dispatch"
	"github.com/pion/videorecord/pkg/storage"
)

// Request asks for one input file to be compressed. Requests are not reused.
type Request struct {
	Input string
	// RemoveInput deletes the input once compression succeeded. The input
	// is always kept on failure.
	RemoveInput bool
}

// Result reports the outcome of a Request. Output is empty unless Success.
type Result struct {
	Input      string
	Output     string
	Success    bool
	Err        error
	InputSize  int64
	OutputSize int64
}

// Compressor runs requests one at a time on its own goroutine.
type Compressor struct {
	transcoder Transcoder
	storage    *storage.Storage
	worker     *dispatch.Queue
	closeOnce  sync.Once
}

// NewCompressor creates a compressor that writes outputs to st. A nil
// transcoder selects JPEG with DefaultQuality.
func NewCompressor(st *storage.Storage, t Transcoder) *Compressor {
	if t == nil {
		t = JPEG{Quality: DefaultQuality}
	}
	return &Compressor{
		transcoder: t,
		storage:    st,
		worker:     dispatch.NewQueue(),
	}
}

// Compress queues req and returns a channel that receives exactly one
// Result. ctx can only cancel the request before it starts.
func (c *Compressor) Compress(ctx context.Context, req Request) <-chan Result {
	ch := make(chan Result, 1)
	c.CompressFunc(ctx, req, func(r Result) { ch <- r })
	return ch
}

// CompressFunc queues req and calls fn with its Result exactly once, on the
// compressor's goroutine unless the compressor is closed.
func (c *Compressor) CompressFunc(ctx context.Context, req Request, fn func(Result)) {
	posted := c.worker.Post(func() {
		if err := ctx.Err(); err != nil {
			fn(c.fail(req, "", err))
			return
		}
		fn(c.run(req))
	})
	if !posted {
		fn(c.fail(req, "", ErrClosed))
	}
}

func (c *Compressor) run(req Request) Result {
	out := c.storage.CacheFilePath(false)
	inSize := storage.FileSize(req.Input)
	logger.Infof("compressing %s (%d bytes)", req.Input, inSize)

	// Started requests run to completion.
	if err := c.transcoder.Transcode(context.Background(), req.Input, out); err != nil {
		return c.fail(req, out, err)
	}

	outSize := storage.FileSize(out)
	if outSize > inSize {
		return c.fail(req, out, fmt.Errorf("output is larger than input (%d > %d bytes)", outSize, inSize))
	}

	if req.RemoveInput {
		if err := c.storage.Remove(req.Input); err != nil {
			logger.Warnf("failed to remove %s: %v", req.Input, err)
		}
	}
	logger.Infof("compressed %s into %s (%d bytes)", req.Input, out, outSize)
	return Result{
		Input:      req.Input,
		Output:     out,
		Success:    true,
		InputSize:  inSize,
		OutputSize: outSize,
	}
}

func (c *Compressor) fail(req Request, out string, err error) Result {
	if out != "" {
		if rmErr := c.storage.Remove(out); rmErr != nil {
			logger.Warnf("failed to remove partial output %s: %v", out, rmErr)
		}
	}
	logger.Warnf("compressing %s failed: %v", req.Input, err)
	return Result{
		Input:     req.Input,
		Err:       fmt.Errorf("%w: %w", ErrCompressionFailure, err),
		InputSize: storage.FileSize(req.Input),
	}
}

// Close waits for queued requests to finish. Later requests fail with
// ErrClosed.
func (c *Compressor) Close() {
	c.closeOnce.Do(c.worker.Close)
}
