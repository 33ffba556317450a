package frame

import (
	"fmt"
	"image"
)

func errShortFrame(got, want int) error {
	return fmt.Errorf("frame length (%d) less than expected (%d)", got, want)
}

// decodeI420 wraps the planar Y, Cb, Cr layout without copying.
func decodeI420(frame []byte, width, height int) (image.Image, error) {
	luma := width * height
	chroma := luma / 4
	if need := luma + 2*chroma; len(frame) < need {
		return nil, errShortFrame(len(frame), need)
	}

	img := &image.YCbCr{
		YStride:        width,
		CStride:        width / 2,
		SubsampleRatio: image.YCbCrSubsampleRatio420,
		Rect:           image.Rect(0, 0, width, height),
	}
	img.Y = frame[:luma]
	img.Cb = frame[luma : luma+chroma]
	img.Cr = frame[luma+chroma : luma+2*chroma]
	return img, nil
}

// decodeNV21 splits the interleaved Cr/Cb plane that follows the Y plane.
func decodeNV21(frame []byte, width, height int) (image.Image, error) {
	luma := width * height
	chroma := luma / 4
	if need := luma + 2*chroma; len(frame) < need {
		return nil, errShortFrame(len(frame), need)
	}

	cb := make([]byte, chroma)
	cr := make([]byte, chroma)
	vu := frame[luma : luma+2*chroma]
	for i := range cb {
		cr[i], cb[i] = vu[2*i], vu[2*i+1]
	}

	return &image.YCbCr{
		Y:              frame[:luma],
		YStride:        width,
		Cb:             cb,
		Cr:             cr,
		CStride:        width / 2,
		SubsampleRatio: image.YCbCrSubsampleRatio420,
		Rect:           image.Rect(0, 0, width, height),
	}, nil
}

// packed422 decodes a packed 4:2:2 layout where every 4 bytes carry two
// luma samples and one chroma pair. The offsets give each sample's position
// inside the group.
func packed422(y0, cb, y1, cr int) decoderFunc {
	return func(frame []byte, width, height int) (image.Image, error) {
		luma := width * height
		if need := 2 * luma; len(frame) != need {
			return nil, errShortFrame(len(frame), need)
		}

		img := image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio422)
		for i, g := 0, 0; i < len(frame); i, g = i+4, g+1 {
			img.Y[2*g] = frame[i+y0]
			img.Y[2*g+1] = frame[i+y1]
			img.Cb[g] = frame[i+cb]
			img.Cr[g] = frame[i+cr]
		}
		return img, nil
	}
}

var (
	decodeYUY2 = packed422(0, 1, 2, 3)
	decodeUYVY = packed422(1, 0, 3, 2)
)
