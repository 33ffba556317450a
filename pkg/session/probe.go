package session

import (
	"github.com/pion/videorecord/pkg/io/video"
	"github.com/pion/videorecord/pkg/prop"
)

// probeFrameSize pulls one frame through a private reader and reports its
// size. Readers created afterwards start with the next frame of the source.
func probeFrameSize(broadcaster *video.Broadcaster) (prop.Media, error) {
	img, release, err := broadcaster.NewReader(false).Read()
	if err != nil {
		return prop.Media{}, err
	}
	defer release()

	bounds := img.Bounds()
	return prop.Media{Video: prop.Video{Width: bounds.Dx(), Height: bounds.Dy()}}, nil
}
