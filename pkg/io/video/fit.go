package video

import (
	"image"

	"github.com/pion/videorecord/pkg/prop"
)

// Fit returns a transform delivering every frame at exactly width x height.
// Frames already at that size pass through untouched; the others, for
// example after the source was replaced by a camera with another
// resolution, are scaled with scaler. width and height have to be positive.
func Fit(width, height int, scaler Scaler) TransformFunc {
	return func(r Reader) Reader {
		fits := true
		r = DetectChanges(0, func(p prop.Media) {
			fits = p.Width == width && p.Height == height
		})(r)

		var current image.Image
		scaled := Scale(width, height, scaler)(ReaderFunc(func() (image.Image, func(), error) {
			return current, func() {}, nil
		}))

		return ReaderFunc(func() (image.Image, func(), error) {
			img, release, err := r.Read()
			if err != nil || fits {
				return img, release, err
			}

			current = img
			out, _, err := scaled.Read()
			current = nil
			release()
			if err != nil {
				return nil, func() {}, err
			}
			return out, func() {}, nil
		})
	}
}
