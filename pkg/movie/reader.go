package movie

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// Reader walks the frames of a movie.
type Reader struct {
	f        *os.File
	r        *bufio.Reader
	header   Header
	duration time.Duration
	done     bool
}

// Open reads and validates the header of path.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r := &Reader{f: f, r: bufio.NewReader(f)}
	if err := r.readHeader(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) readHeader() error {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r.r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrBadMagic
		}
		return err
	}
	if string(hdr[:4]) != magic {
		return ErrBadMagic
	}
	if v := binary.BigEndian.Uint16(hdr[4:]); v > version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	r.header = Header{
		Width:   int(binary.BigEndian.Uint32(hdr[8:])),
		Height:  int(binary.BigEndian.Uint32(hdr[12:])),
		Created: time.Unix(0, int64(binary.BigEndian.Uint64(hdr[16:]))),
	}
	return nil
}

// Header returns the movie header.
func (r *Reader) Header() Header {
	return r.header
}

// Duration returns the duration stored in the end record. It is only known
// once Next has returned io.EOF.
func (r *Reader) Duration() time.Duration {
	return r.duration
}

// Next returns the next frame. It returns io.EOF after the end record and
// ErrTruncated if the file ends before it.
func (r *Reader) Next() (Frame, error) {
	if r.done {
		return Frame{}, io.EOF
	}

	tag, err := r.r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Frame{}, ErrTruncated
		}
		return Frame{}, err
	}

	switch tag {
	case tagEnd:
		var rec [8]byte
		if err := r.readFull(rec[:]); err != nil {
			return Frame{}, err
		}
		r.duration = time.Duration(binary.BigEndian.Uint64(rec[:]))
		r.done = true
		return Frame{}, io.EOF
	case tagFrame:
		var rec [12]byte
		if err := r.readFull(rec[:]); err != nil {
			return Frame{}, err
		}
		n := binary.BigEndian.Uint32(rec[8:])
		if n == 0 || n > MaxFrameSize {
			return Frame{}, fmt.Errorf("%w: frame of %d bytes", ErrCorrupt, n)
		}
		data := make([]byte, n)
		if err := r.readFull(data); err != nil {
			return Frame{}, err
		}
		return Frame{PTS: time.Duration(binary.BigEndian.Uint64(rec[:8])), Data: data}, nil
	}
	return Frame{}, fmt.Errorf("%w: unknown tag %#x", ErrCorrupt, tag)
}

func (r *Reader) readFull(b []byte) error {
	if _, err := io.ReadFull(r.r, b); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrTruncated
		}
		return err
	}
	return nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}

// Info summarizes a movie file.
type Info struct {
	Header
	Frames   int
	Duration time.Duration
	// Complete is false for files without an end record.
	Complete bool
}

// Probe walks the whole file. Truncated files are reported with
// Complete=false and no error; any other malformation is an error.
func Probe(path string) (Info, error) {
	r, err := Open(path)
	if err != nil {
		return Info{}, err
	}
	defer r.Close()

	info := Info{Header: r.Header()}
	for {
		f, err := r.Next()
		switch {
		case err == nil:
			info.Frames++
			info.Duration = f.PTS
		case errors.Is(err, io.EOF):
			info.Duration = r.Duration()
			info.Complete = true
			return info, nil
		case errors.Is(err, ErrTruncated):
			return info, nil
		default:
			return info, err
		}
	}
}
