package prop

import "fmt"

// Preset names a capture quality level for a session.
type Preset string

// Session presets, from smallest to largest.
const (
	PresetLow    Preset = "low"
	PresetMedium Preset = "medium"
	PresetHigh   Preset = "high"
	Preset640    Preset = "640x480"
	Preset1280   Preset = "1280x720"
)

var presets = map[Preset]Video{
	PresetLow:    {Width: 192, Height: 144, FrameRate: 15},
	PresetMedium: {Width: 480, Height: 360, FrameRate: 30},
	PresetHigh:   {Width: 1280, Height: 720, FrameRate: 30},
	Preset640:    {Width: 640, Height: 480, FrameRate: 30},
	Preset1280:   {Width: 1280, Height: 720, FrameRate: 30},
}

// Media returns the ideal capture properties for the preset.
func (p Preset) Media() (Media, error) {
	v, ok := presets[p]
	if !ok {
		return Media{}, fmt.Errorf("unknown preset %q", string(p))
	}
	return Media{Video: v}, nil
}
