package movie

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"sync"
	"time"
)

// Writer appends frames to a movie file. It is safe for concurrent use.
type Writer struct {
	mu     sync.Mutex
	f      *os.File
	w      *bufio.Writer
	path   string
	frames int
	last   time.Duration
	closed bool
}

// Create truncates or creates path and writes the header.
func Create(path string, width, height int) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}

	w := &Writer{f: f, w: bufio.NewWriter(f), path: path}

	var hdr [headerSize]byte
	copy(hdr[:4], magic)
	binary.BigEndian.PutUint16(hdr[4:], version)
	binary.BigEndian.PutUint32(hdr[8:], uint32(width))
	binary.BigEndian.PutUint32(hdr[12:], uint32(height))
	binary.BigEndian.PutUint64(hdr[16:], uint64(time.Now().UnixNano()))
	if _, err := w.w.Write(hdr[:]); err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

// Frames returns how many frames have been written.
func (w *Writer) Frames() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frames
}

// WriteFrame appends a JPEG frame presented at pts.
func (w *Writer) WriteFrame(pts time.Duration, data []byte) error {
	if len(data) == 0 || len(data) > MaxFrameSize {
		return fmt.Errorf("%w: frame of %d bytes", ErrCorrupt, len(data))
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if pts < w.last {
		return fmt.Errorf("%w: %v after %v", ErrTimestamp, pts, w.last)
	}

	var rec [13]byte
	rec[0] = tagFrame
	binary.BigEndian.PutUint64(rec[1:], uint64(pts))
	binary.BigEndian.PutUint32(rec[9:], uint32(len(data)))
	if _, err := w.w.Write(rec[:]); err != nil {
		return err
	}
	if _, err := w.w.Write(data); err != nil {
		return err
	}
	w.frames++
	w.last = pts
	return nil
}

// Close writes the end record carrying duration and syncs the file. Only
// the first call has an effect.
func (w *Writer) Close(duration time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if duration < w.last {
		duration = w.last
	}
	var rec [9]byte
	rec[0] = tagEnd
	binary.BigEndian.PutUint64(rec[1:], uint64(duration))

	_, err := w.w.Write(rec[:])
	if err == nil {
		err = w.w.Flush()
	}
	if err == nil {
		err = w.f.Sync()
	}
	if closeErr := w.f.Close(); err == nil {
		err = closeErr
	}
	return err
}

// Abort closes the file without finalizing it and removes it.
func (w *Writer) Abort() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.closed {
		w.closed = true
		_ = w.f.Close()
	}
	if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
