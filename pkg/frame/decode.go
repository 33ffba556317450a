package frame

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned when no decoder exists for a format.
var ErrUnsupportedFormat = errors.New("unsupported frame format")

// NewDecoder returns the decoder for raw frames in format f.
func NewDecoder(f Format) (Decoder, error) {
	var decoder decoderFunc

	switch f {
	case FormatI420:
		decoder = decodeI420
	case FormatNV21:
		decoder = decodeNV21
	case FormatYUY2:
		decoder = decodeYUY2
	case FormatUYVY:
		decoder = decodeUYVY
	case FormatMJPEG:
		decoder = decodeMJPEG
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}

	return decoder, nil
}
