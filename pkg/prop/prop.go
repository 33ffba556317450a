// Package prop describes capture properties: what a driver can deliver and
// what a session asks for.
package prop

import (
	"math"

	"github.com/pion/videorecord/pkg/frame"
)

// Media is a set of capture properties. Zero fields mean "don't care".
type Media struct {
	DeviceID string
	Video
}

// Video represents a video's properties
type Video struct {
	Width, Height int
	FrameRate     float32
	FrameFormat   frame.Format
}

// Merge merges all the non-zero field values from o to p.
func (p *Media) Merge(o Media) {
	if o.DeviceID != "" {
		p.DeviceID = o.DeviceID
	}
	if o.Width != 0 {
		p.Width = o.Width
	}
	if o.Height != 0 {
		p.Height = o.Height
	}
	if o.FrameRate != 0 {
		p.FrameRate = o.FrameRate
	}
	if o.FrameFormat != "" {
		p.FrameFormat = o.FrameFormat
	}
}

// FitnessDistance measures how far o is from the ideal values in p. Zero
// means a perfect match; fields left zero in p are not compared.
// Reference: https://w3c.github.io/mediacapture-main/#dfn-fitness-distance
func (p *Media) FitnessDistance(o Media) float64 {
	var dist float64

	numeric := func(ideal, actual float64) {
		if ideal == 0 || ideal == actual {
			return
		}
		dist += math.Abs(actual-ideal) / math.Max(math.Abs(actual), math.Abs(ideal))
	}

	numeric(float64(p.Width), float64(o.Width))
	numeric(float64(p.Height), float64(o.Height))
	numeric(float64(p.FrameRate), float64(o.FrameRate))

	if p.FrameFormat != "" && p.FrameFormat != o.FrameFormat {
		dist++
	}
	if p.DeviceID != "" && p.DeviceID != o.DeviceID {
		dist++
	}

	return dist
}
