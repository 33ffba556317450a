package driver

import (
	"github.com/pion/videorecord/pkg/io/video"
	"github.com/pion/videorecord/pkg/prop"
)

// OpenCloser is an interface with Open and Close methods
type OpenCloser interface {
	Open() error
	Close() error
}

// Properties is an interface with Properties method
type Properties interface {
	Properties() []prop.Media
}

// VideoRecorder is an interface to encapsulate VideoRecord method
type VideoRecorder interface {
	VideoRecord(p prop.Media) (r video.Reader, err error)
}

// Focuser is implemented by adapters whose hardware can adjust focus and
// exposure at a point of interest. x and y are normalized to 0..1 in the
// sensor's native (landscape) orientation.
type Focuser interface {
	CanFocus() bool
	Focus(x, y float64) error
}

// Adapter is a generic type to wrap a driver
type Adapter interface {
	OpenCloser
	Properties
}

// Info is a generic information about the driver
type Info struct {
	Label      string
	DeviceType DeviceType
	Position   Position
	Priority   Priority
}

// Driver represents an adapter with state management and a unique ID
type Driver interface {
	Adapter
	ID() string
	Info() Info
	Status() State
	// Focus forwards a point of interest to the adapter. It returns
	// ErrFocusNotSupported if the hardware can't focus.
	Focus(x, y float64) error
	// CanFocus reports whether Focus can succeed. It is only meaningful
	// while the driver is opened.
	CanFocus() bool
}
