package video

import (
	"image"

	"golang.org/x/image/draw"
)

// FrameBuffer holds a private copy of the last stored frame. Its memory is
// reused across frames of the same size and layout.
type FrameBuffer struct {
	buffer []uint8
	img    image.Image
}

// NewFrameBuffer creates a FrameBuffer with initialSize bytes preallocated.
func NewFrameBuffer(initialSize int) *FrameBuffer {
	return &FrameBuffer{buffer: make([]uint8, initialSize)}
}

// Load returns the stored copy. It stays valid until the next StoreCopy.
func (buff *FrameBuffer) Load() image.Image {
	return buff.img
}

// StoreCopy copies src into the buffer. Gray, RGBA and YCbCr frames keep
// their type; anything else is stored as RGBA.
func (buff *FrameBuffer) StoreCopy(src image.Image) {
	switch src := src.(type) {
	case nil:
		buff.img = nil

	case *image.Gray:
		dst := reuse[image.Gray](buff.img)
		*dst = *src
		dst.Pix = buff.copyPlanes(src.Pix)[0]
		buff.img = dst

	case *image.RGBA:
		dst := reuse[image.RGBA](buff.img)
		*dst = *src
		dst.Pix = buff.copyPlanes(src.Pix)[0]
		buff.img = dst

	case *image.YCbCr:
		dst := reuse[image.YCbCr](buff.img)
		*dst = *src
		planes := buff.copyPlanes(src.Y, src.Cb, src.Cr)
		dst.Y, dst.Cb, dst.Cr = planes[0], planes[1], planes[2]
		buff.img = dst

	default:
		converted := image.NewRGBA(src.Bounds())
		draw.Draw(converted, converted.Bounds(), src, src.Bounds().Min, draw.Src)
		buff.StoreCopy(converted)
	}
}

// reuse returns the previous image if it has the wanted type, so its header
// isn't reallocated for every frame.
func reuse[T any](prev image.Image) *T {
	if img, ok := any(prev).(*T); ok {
		return img
	}
	return new(T)
}

// copyPlanes lays srcs out back to back in the buffer, growing it when
// needed, and returns the copied planes.
func (buff *FrameBuffer) copyPlanes(srcs ...[]uint8) [][]uint8 {
	size := 0
	for _, src := range srcs {
		size += len(src)
	}
	if cap(buff.buffer) < size {
		buff.buffer = make([]uint8, size)
	}
	buff.buffer = buff.buffer[:size]

	planes := make([][]uint8, len(srcs))
	offset := 0
	for i, src := range srcs {
		end := offset + len(src)
		planes[i] = buff.buffer[offset:end:end]
		copy(planes[i], src)
		offset = end
	}
	return planes
}
