package frame

import "image"

// Decoder turns a raw frame captured by a driver into an image. release must
// be called once the image is no longer used.
type Decoder interface {
	Decode(frame []byte, width, height int) (img image.Image, release func(), err error)
}

// decoderFunc adapts a decoder whose images need no release.
type decoderFunc func(frame []byte, width, height int) (image.Image, error)

func (f decoderFunc) Decode(frame []byte, width, height int) (image.Image, func(), error) {
	img, err := f(frame, width, height)
	return img, func() {}, err
}
