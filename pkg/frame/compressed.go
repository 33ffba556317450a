package frame

import (
	"bytes"
	"image"
	"image/jpeg"
)

// DefaultJPEGQuality is used by EncodeJPEG when quality is out of range.
const DefaultJPEGQuality = 85

func decodeMJPEG(frame []byte, width, height int) (image.Image, error) {
	return jpeg.Decode(bytes.NewReader(frame))
}

// EncodeJPEG compresses img into a baseline JPEG. quality follows
// image/jpeg, 1 to 100.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
