package session

// Point is a location in preview coordinates.
type Point struct {
	X, Y float64
}

// Orientation is how the preview is rotated relative to the sensor, named
// after the interface orientation of the host.
type Orientation int

// Orientations. The sensor's native orientation is LandscapeRight.
const (
	LandscapeRight Orientation = iota
	Portrait
	PortraitUpsideDown
	LandscapeLeft
)

// Gravity is how the video is laid out in the preview.
type Gravity int

const (
	// GravityResize stretches the video to the preview.
	GravityResize Gravity = iota
	// GravityAspect fits the whole video in the preview, letterboxed.
	GravityAspect
	// GravityAspectFill fills the preview and crops the video.
	GravityAspectFill
)

// Geometry describes the preview surface. The zero Geometry means points
// are already normalized to 0..1.
type Geometry struct {
	Width, Height float64
	Orientation   Orientation
	Gravity       Gravity
}

// DevicePoint maps p from preview coordinates to the normalized point of
// interest of a frameW x frameH sensor. mirrored is set for front cameras,
// whose preview is flipped horizontally.
func (g Geometry) DevicePoint(p Point, frameW, frameH int, mirrored bool) Point {
	u, v := g.videoPoint(p, frameW, frameH)
	if mirrored {
		u = 1 - u
	}

	var x, y float64
	switch g.Orientation {
	case Portrait:
		x, y = v, 1-u
	case PortraitUpsideDown:
		x, y = 1-v, u
	case LandscapeLeft:
		x, y = 1-u, 1-v
	default:
		x, y = u, v
	}
	return Point{X: clamp(x), Y: clamp(y)}
}

// videoPoint returns p normalized to the displayed video rather than the
// preview, undoing letterboxing or cropping.
func (g Geometry) videoPoint(p Point, frameW, frameH int) (float64, float64) {
	if g.Width <= 0 || g.Height <= 0 {
		return clamp(p.X), clamp(p.Y)
	}
	if g.Gravity == GravityResize || frameW <= 0 || frameH <= 0 {
		return clamp(p.X / g.Width), clamp(p.Y / g.Height)
	}

	// Size of the video as displayed, before scaling.
	dw, dh := float64(frameW), float64(frameH)
	if g.Orientation == Portrait || g.Orientation == PortraitUpsideDown {
		dw, dh = dh, dw
	}

	scale := g.Width / dw
	if s := g.Height / dh; (g.Gravity == GravityAspectFill) == (s > scale) {
		scale = s
	}
	vw, vh := dw*scale, dh*scale
	offX, offY := (g.Width-vw)/2, (g.Height-vh)/2
	return clamp((p.X - offX) / vw), clamp((p.Y - offY) / vh)
}

func clamp(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
