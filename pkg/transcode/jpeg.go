package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"time"

	"github.com/pion/videorecord/pkg/frame"
	"github.com/pion/videorecord/pkg/io/video"
	"github.com/pion/videorecord/pkg/movie"
	"github.com/pion/videorecord/pkg/storage"
)

// DefaultQuality is the JPEG quality used when none is configured.
const DefaultQuality = 50

// JPEG re-encodes every frame of a movie at a lower quality, optionally
// downscaling and dropping frames. The output is never larger than the
// input: when re-encoding doesn't pay off the input is copied as is.
type JPEG struct {
	// Quality is the JPEG quality of the output frames, 1 to 100.
	Quality int
	// MaxWidth and MaxHeight bound the output size, keeping the aspect
	// ratio. Zero means unbounded.
	MaxWidth, MaxHeight int
	// MaxFrameRate drops frames arriving faster than this rate. Zero keeps
	// every frame.
	MaxFrameRate float32
	// Scaler used for downscaling, video.ScalerApproxBiLinear if nil.
	Scaler video.Scaler
}

func (j JPEG) Transcode(ctx context.Context, in, out string) error {
	if err := j.reencode(ctx, in, out); err != nil {
		return err
	}

	inSize, outSize := storage.FileSize(in), storage.FileSize(out)
	if outSize < inSize {
		logger.Debugf("re-encoded %s: %d -> %d bytes", in, inSize, outSize)
		return nil
	}
	logger.Debugf("re-encoding %s didn't shrink it (%d -> %d bytes), copying", in, inSize, outSize)
	return copyFile(out, in)
}

func (j JPEG) reencode(ctx context.Context, in, out string) error {
	r, err := movie.Open(in)
	if err != nil {
		return err
	}
	defer r.Close()

	hdr := r.Header()
	width, height := fit(hdr.Width, hdr.Height, j.MaxWidth, j.MaxHeight)

	w, err := movie.Create(out, width, height)
	if err != nil {
		return err
	}
	finalized := false
	defer func() {
		if !finalized {
			_ = w.Abort()
		}
	}()

	// Frames are pulled through Fit like a live stream, so every frame of
	// the output matches its header.
	scaler := j.Scaler
	if scaler == nil {
		scaler = video.ScalerApproxBiLinear
	}
	var current image.Image
	fitted := video.Fit(width, height, scaler)(video.ReaderFunc(func() (image.Image, func(), error) {
		return current, func() {}, nil
	}))

	var minGap time.Duration
	if j.MaxFrameRate > 0 {
		minGap = time.Duration(float32(time.Second) / j.MaxFrameRate)
	}
	lastKept := time.Duration(-1)
	written := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		f, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if lastKept >= 0 && f.PTS-lastKept < minGap {
			continue
		}

		img, err := jpeg.Decode(bytes.NewReader(f.Data))
		if err != nil {
			return fmt.Errorf("frame at %v: %w", f.PTS, err)
		}
		current = img
		if img, _, err = fitted.Read(); err != nil {
			return err
		}

		data, err := frame.EncodeJPEG(img, j.quality())
		if err != nil {
			return err
		}
		if err := w.WriteFrame(f.PTS, data); err != nil {
			return err
		}
		lastKept = f.PTS
		written++
	}

	if written == 0 {
		return ErrEmptyMovie
	}
	finalized = true
	return w.Close(r.Duration())
}

func (j JPEG) quality() int {
	if j.Quality < 1 || j.Quality > 100 {
		return DefaultQuality
	}
	return j.Quality
}

// fit shrinks width x height into maxW x maxH keeping the aspect ratio.
// Dimensions are kept even for chroma subsampling.
func fit(width, height, maxW, maxH int) (int, int) {
	if width <= 0 || height <= 0 {
		return width, height
	}
	scale := 1.0
	if maxW > 0 && width > maxW {
		scale = float64(maxW) / float64(width)
	}
	if maxH > 0 && height > maxH {
		if s := float64(maxH) / float64(height); s < scale {
			scale = s
		}
	}
	if scale == 1.0 {
		return width, height
	}
	w := int(float64(width)*scale) &^ 1
	h := int(float64(height)*scale) &^ 1
	if w < 2 {
		w = 2
	}
	if h < 2 {
		h = 2
	}
	return w, h
}
