package video

import (
	"image"

	"github.com/pion/videorecord/pkg/io"
)

// Broadcaster shares one camera stream between the preview, the recording
// and photo captures.
type Broadcaster struct {
	*io.Broadcaster[image.Image]
}

// NewBroadcaster creates a broadcaster reading from source. config may be
// nil.
func NewBroadcaster(source Reader, config *io.BroadcasterConfig) *Broadcaster {
	return &Broadcaster{io.NewBroadcaster(source, config)}
}

// NewReader creates a new reader. Each reader will retrieve the same data from the source.
// When copyFrame is set, every frame is copied into a buffer owned by the reader, so the
// returned image stays valid until the next Read on the same reader.
func (b *Broadcaster) NewReader(copyFrame bool) Reader {
	if !copyFrame {
		return b.Broadcaster.NewReader(nil)
	}

	buffer := NewFrameBuffer(0)
	return b.Broadcaster.NewReader(func(src image.Image) image.Image {
		buffer.StoreCopy(src)
		return buffer.Load()
	})
}
