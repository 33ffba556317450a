package driver

// DeviceType represents human readable device type. DeviceType
// can be useful to filter the drivers too.
type DeviceType string

const (
	// Camera represents camera devices
	Camera DeviceType = "camera"
)

// Position is where a camera faces relative to the screen of the host.
type Position string

const (
	// PositionUnspecified is used by cameras that can't tell, e.g. USB webcams.
	PositionUnspecified Position = ""
	// PositionFront faces the user.
	PositionFront Position = "front"
	// PositionBack faces away from the user.
	PositionBack Position = "back"
)

// Opposite returns the other side. Unspecified has no opposite.
func (p Position) Opposite() Position {
	switch p {
	case PositionFront:
		return PositionBack
	case PositionBack:
		return PositionFront
	}
	return PositionUnspecified
}

// Priority represents device selection priority level
type Priority float32

const (
	// PriorityHigh is a value for system default devices
	PriorityHigh Priority = 0.1
	// PriorityNormal is a value for normal devices
	PriorityNormal Priority = 0.0
	// PriorityLow is a value for unrecommended devices
	PriorityLow Priority = -0.1
)
