package video

import (
	"image"
	"time"

	"github.com/pion/videorecord/pkg/prop"
)

// DetectChanges reports the properties of the stream read through it. A
// size change is reported on the frame it happens. With a positive interval
// the frame rate is measured over windows of that length and reported at
// the end of each window.
func DetectChanges(interval time.Duration, onChange func(prop.Media)) TransformFunc {
	return func(r Reader) Reader {
		var (
			current     prop.Media
			windowStart time.Time
			frames      int
		)

		return ReaderFunc(func() (image.Image, func(), error) {
			img, release, err := r.Read()
			if err != nil {
				return nil, func() {}, err
			}

			size := img.Bounds().Size()
			changed := size.X != current.Width || size.Y != current.Height
			current.Width, current.Height = size.X, size.Y

			now := time.Now()
			if windowStart.IsZero() {
				windowStart = now
			}
			frames++
			if elapsed := now.Sub(windowStart); interval > 0 && elapsed >= interval {
				current.FrameRate = float32(float64(frames-1) / elapsed.Seconds())
				windowStart, frames = now, 1
				changed = true
			}

			if changed {
				onChange(current)
			}
			return img, release, nil
		})
	}
}
