// Package video provides pull-based image readers and the transforms that
// operate on them.
package video

import (
	"image"

	"github.com/pion/videorecord/pkg/io"
)

// Reader produces frames. release must be called once the frame has been
// consumed.
type Reader = io.Reader[image.Image]

// ReaderFunc is a proxy type to make easier for users to implement Reader
type ReaderFunc = io.ReaderFunc[image.Image]

// TransformFunc produces a new Reader that will produces a transformed video
type TransformFunc func(r Reader) Reader

// Merge chains transforms, the first one being applied to the source. nil
// transforms are skipped.
func Merge(transforms ...TransformFunc) TransformFunc {
	return func(r Reader) Reader {
		for _, transform := range transforms {
			if transform != nil {
				r = transform(r)
			}
		}
		return r
	}
}
