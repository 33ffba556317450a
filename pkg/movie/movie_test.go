package movie

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMovie(t *testing.T, path string, frames int, finalize bool) {
	t.Helper()
	w, err := Create(path, 64, 48)
	require.NoError(t, err)
	for i := 0; i < frames; i++ {
		require.NoError(t, w.WriteFrame(time.Duration(i)*40*time.Millisecond, []byte{0xff, 0xd8, byte(i)}))
	}
	if finalize {
		require.NoError(t, w.Close(time.Second))
		return
	}
	// Flush without an end record to simulate a crash.
	require.NoError(t, w.w.Flush())
	require.NoError(t, w.f.Close())
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.vrec")
	writeMovie(t, path, 3, true)

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 64, r.Header().Width)
	assert.Equal(t, 48, r.Header().Height)
	assert.WithinDuration(t, time.Now(), r.Header().Created, time.Minute)

	for i := 0; i < 3; i++ {
		f, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, time.Duration(i)*40*time.Millisecond, f.PTS)
		assert.Equal(t, []byte{0xff, 0xd8, byte(i)}, f.Data)
	}
	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, time.Second, r.Duration())
}

func TestProbe(t *testing.T) {
	dir := t.TempDir()

	complete := filepath.Join(dir, "complete.vrec")
	writeMovie(t, complete, 5, true)
	info, err := Probe(complete)
	require.NoError(t, err)
	assert.True(t, info.Complete)
	assert.Equal(t, 5, info.Frames)
	assert.Equal(t, time.Second, info.Duration)

	partial := filepath.Join(dir, "partial.vrec")
	writeMovie(t, partial, 2, false)
	info, err = Probe(partial)
	require.NoError(t, err)
	assert.False(t, info.Complete)
	assert.Equal(t, 2, info.Frames)
}

func TestOpenRejectsGarbage(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	_, err := Open(empty)
	assert.ErrorIs(t, err, ErrBadMagic)

	garbage := filepath.Join(dir, "garbage")
	require.NoError(t, os.WriteFile(garbage, []byte("this is definitely not a movie file"), 0o600))
	_, err = Open(garbage)
	assert.ErrorIs(t, err, ErrBadMagic)

	_, err = Open(filepath.Join(dir, "missing"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWriterRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.vrec")
	w, err := Create(path, 1, 1)
	require.NoError(t, err)

	assert.ErrorIs(t, w.WriteFrame(0, nil), ErrCorrupt)
	require.NoError(t, w.WriteFrame(time.Second, []byte{1}))
	assert.ErrorIs(t, w.WriteFrame(time.Millisecond, []byte{1}), ErrTimestamp)
	assert.Equal(t, 1, w.Frames())

	// The end record never claims less than the last frame.
	require.NoError(t, w.Close(0))
	require.NoError(t, w.Close(time.Hour))
	assert.ErrorIs(t, w.WriteFrame(2*time.Second, []byte{1}), ErrClosed)

	info, err := Probe(path)
	require.NoError(t, err)
	assert.Equal(t, time.Second, info.Duration)
}

func TestWriterConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concurrent.vrec")
	w, err := Create(path, 1, 1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = w.WriteFrame(0, []byte{byte(j)})
			}
		}()
	}
	wg.Wait()
	require.NoError(t, w.Close(time.Second))

	info, err := Probe(path)
	require.NoError(t, err)
	assert.Equal(t, 200, info.Frames)
}

func TestAbort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abort.vrec")
	w, err := Create(path, 1, 1)
	require.NoError(t, err)
	require.NoError(t, w.WriteFrame(0, []byte{1}))
	require.NoError(t, w.Abort())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.ErrorIs(t, w.WriteFrame(time.Second, []byte{1}), ErrClosed)
}
