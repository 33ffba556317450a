// Package transcode turns finished recordings into smaller deliverables.
package transcode

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/pion/videorecord/internal/logging"
)

var logger = logging.NewLogger("videorecord/transcode")

var (
	// ErrCompressionFailure wraps every failure reported by a Compressor.
	ErrCompressionFailure = errors.New("compression failed")
	// ErrEmptyMovie is returned for finalized movies without frames.
	ErrEmptyMovie = errors.New("transcode: movie has no frames")
	// ErrClosed is reported for requests submitted after Close.
	ErrClosed = errors.New("transcode: compressor is closed")
)

// Transcoder converts the movie at in into out. Implementations must leave
// in untouched. out may be left partially written on error.
type Transcoder interface {
	Transcode(ctx context.Context, in, out string) error
}

// TranscoderFunc is a proxy type for Transcoder
type TranscoderFunc func(ctx context.Context, in, out string) error

func (f TranscoderFunc) Transcode(ctx context.Context, in, out string) error {
	return f(ctx, in, out)
}

func copyFile(dst, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
