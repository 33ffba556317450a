package transcode

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pion/videorecord/pkg/frame"
	"github.com/pion/videorecord/pkg/movie"
	"github.com/pion/videorecord/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(width, height int, seed int64) image.Image {
	img := image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio420)
	random := rand.New(rand.NewSource(seed))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Gradient with noise, which JPEG can't compress for free.
			img.Y[y*img.YStride+x] = uint8(x*255/width) ^ uint8(random.Intn(32))
		}
	}
	for i := range img.Cb {
		img.Cb[i] = 128
		img.Cr[i] = uint8(random.Intn(256))
	}
	return img
}

func writeTestMovie(t *testing.T, path string, frames, quality int, gap time.Duration) {
	t.Helper()
	w, err := movie.Create(path, 64, 48)
	require.NoError(t, err)
	for i := 0; i < frames; i++ {
		data, err := frame.EncodeJPEG(testImage(64, 48, int64(i)), quality)
		require.NoError(t, err)
		require.NoError(t, w.WriteFrame(time.Duration(i)*gap, data))
	}
	require.NoError(t, w.Close(time.Duration(frames)*gap))
}

func TestJPEGShrinks(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.vrec")
	out := filepath.Join(dir, "out.vrec")
	writeTestMovie(t, in, 10, 95, 40*time.Millisecond)
	before, err := os.ReadFile(in)
	require.NoError(t, err)

	require.NoError(t, JPEG{Quality: 30}.Transcode(context.Background(), in, out))

	assert.Less(t, storage.FileSize(out), storage.FileSize(in))
	after, err := os.ReadFile(in)
	require.NoError(t, err)
	assert.Equal(t, before, after, "input must be left untouched")

	info, err := movie.Probe(out)
	require.NoError(t, err)
	assert.True(t, info.Complete)
	assert.Equal(t, 10, info.Frames)
	assert.Equal(t, 400*time.Millisecond, info.Duration)
}

func TestJPEGNeverGrows(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.vrec")
	out := filepath.Join(dir, "out.vrec")
	writeTestMovie(t, in, 4, 5, 40*time.Millisecond)

	require.NoError(t, JPEG{Quality: 100}.Transcode(context.Background(), in, out))
	assert.Equal(t, storage.FileSize(in), storage.FileSize(out))

	info, err := movie.Probe(out)
	require.NoError(t, err)
	assert.True(t, info.Complete)
}

func TestJPEGDownscaleAndFrameRate(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.vrec")
	out := filepath.Join(dir, "out.vrec")
	writeTestMovie(t, in, 9, 95, 40*time.Millisecond)

	require.NoError(t, JPEG{Quality: 60, MaxWidth: 32, MaxFrameRate: 10}.Transcode(context.Background(), in, out))

	r, err := movie.Open(out)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, 32, r.Header().Width)
	assert.Equal(t, 24, r.Header().Height)

	var pts []time.Duration
	for {
		f, err := r.Next()
		if err != nil {
			break
		}
		img, err := jpeg.Decode(bytes.NewReader(f.Data))
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 32, 24), img.Bounds())
		pts = append(pts, f.PTS)
	}
	// 25 fps capped at 10 fps keeps every third frame.
	assert.Equal(t, []time.Duration{0, 120 * time.Millisecond, 240 * time.Millisecond}, pts)
}

func TestJPEGRejectsBrokenInput(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.vrec")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	assert.ErrorIs(t, JPEG{}.Transcode(context.Background(), empty, filepath.Join(dir, "o1")), movie.ErrBadMagic)

	truncated := filepath.Join(dir, "truncated.vrec")
	w, err := movie.Create(truncated, 64, 48)
	require.NoError(t, err)
	data, err := frame.EncodeJPEG(testImage(64, 48, 0), 90)
	require.NoError(t, err)
	require.NoError(t, w.WriteFrame(0, data))
	// Abandon the writer without finalizing it; copying what hit the disk
	// yields a movie without end record.
	require.NoError(t, w.Close(time.Second))
	raw, err := os.ReadFile(truncated)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(truncated, raw[:len(raw)-9], 0o600))

	out := filepath.Join(dir, "o2")
	assert.ErrorIs(t, JPEG{}.Transcode(context.Background(), truncated, out), movie.ErrTruncated)
	assert.Equal(t, int64(0), storage.FileSize(out))

	noFrames := filepath.Join(dir, "noframes.vrec")
	w, err = movie.Create(noFrames, 64, 48)
	require.NoError(t, err)
	require.NoError(t, w.Close(0))
	assert.ErrorIs(t, JPEG{}.Transcode(context.Background(), noFrames, filepath.Join(dir, "o3")), ErrEmptyMovie)
}

func TestFit(t *testing.T) {
	testCases := map[string]struct {
		w, h, maxW, maxH int
		ew, eh           int
	}{
		"Unbounded":  {640, 480, 0, 0, 640, 480},
		"SmallerMax": {640, 480, 320, 0, 320, 240},
		"HeightOnly": {640, 480, 0, 120, 160, 120},
		"Both":       {1280, 720, 640, 640, 640, 360},
		"Fits":       {320, 240, 640, 480, 320, 240},
	}
	for name, c := range testCases {
		c := c
		t.Run(name, func(t *testing.T) {
			w, h := fit(c.w, c.h, c.maxW, c.maxH)
			assert.Equal(t, c.ew, w)
			assert.Equal(t, c.eh, h)
		})
	}
}

func TestFFmpegArgs(t *testing.T) {
	args, err := FFmpeg{Args: `-f mjpeg -framerate {fps} -i pipe:0 "{out}"`}.args(25, "/tmp/a b.mp4")
	require.NoError(t, err)
	assert.Equal(t, []string{"-f", "mjpeg", "-framerate", "25.000", "-i", "pipe:0", "/tmp/a b.mp4"}, args)

	_, err = FFmpeg{Args: `"unterminated`}.args(25, "x")
	assert.Error(t, err)
}

func TestFFmpegTranscode(t *testing.T) {
	f := FFmpeg{}
	if !f.Available() {
		t.Skip("ffmpeg is not installed")
	}

	dir := t.TempDir()
	in := filepath.Join(dir, "in.vrec")
	out := filepath.Join(dir, "out.mp4")
	writeTestMovie(t, in, 10, 95, 40*time.Millisecond)

	require.NoError(t, f.Transcode(context.Background(), in, out))
	assert.NotZero(t, storage.FileSize(out))
}
