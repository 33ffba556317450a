// Package movie implements the container recordings are written to: a
// stream of timestamped JPEG frames closed by an end record.
//
// Layout, all integers big endian:
//
//	header  "VRMJ" | version u16 | flags u16 | width u32 | height u32 | created unix ns i64
//	frame   'F' | pts ns i64 | length u32 | JPEG bytes
//	end     'E' | duration ns i64
//
// A file without the end record was not finalized and is rejected by Reader
// once the frames run out.
package movie

import (
	"errors"
	"time"
)

const (
	magic      = "VRMJ"
	version    = 1
	headerSize = 24

	tagFrame = 'F'
	tagEnd   = 'E'

	// MaxFrameSize bounds a single frame record.
	MaxFrameSize = 64 << 20
)

var (
	// ErrBadMagic is returned for files that aren't movies.
	ErrBadMagic = errors.New("movie: not a movie file")
	// ErrUnsupportedVersion is returned for movies written by a newer version.
	ErrUnsupportedVersion = errors.New("movie: unsupported version")
	// ErrTruncated is returned when a movie ends without its end record.
	ErrTruncated = errors.New("movie: file is not finalized")
	// ErrCorrupt is returned for malformed records.
	ErrCorrupt = errors.New("movie: corrupt record")
	// ErrClosed is returned by writes after Close.
	ErrClosed = errors.New("movie: writer is closed")
	// ErrTimestamp is returned when frame timestamps go backwards.
	ErrTimestamp = errors.New("movie: timestamp goes backwards")
)

// Header describes a movie.
type Header struct {
	Width, Height int
	Created       time.Time
}

// Frame is one JPEG encoded picture.
type Frame struct {
	PTS  time.Duration
	Data []byte
}
