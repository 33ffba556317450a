package session

import (
	"context"
	"time"

	"github.com/pion/videorecord/pkg/auth"
	"github.com/pion/videorecord/pkg/driver"
	"github.com/pion/videorecord/pkg/frame"
	"github.com/pion/videorecord/pkg/prop"
)

// Authorizer decides whether the camera may be used. *auth.Gate
// implements it.
type Authorizer interface {
	Check(ctx context.Context) (granted bool, message string)
}

// AuthorizerFunc is a proxy type for Authorizer
type AuthorizerFunc func(ctx context.Context) (bool, string)

func (f AuthorizerFunc) Check(ctx context.Context) (bool, string) {
	return f(ctx)
}

// Options stores parameters used by Controller.
type Options struct {
	Authorizer Authorizer
	Preset     prop.Preset
	// Position is the camera Prepare starts with.
	Position driver.Position
	// DriverFilter narrows the drivers the session may use.
	DriverFilter driver.FilterFn
	// ProgressInterval is the cadence of OnProgress.
	ProgressInterval time.Duration
	// MaxDuration stops recordings automatically. Zero means unlimited.
	MaxDuration time.Duration
	// JPEGQuality applies to recorded frames and photos.
	JPEGQuality int
	// FinalizeTimeout bounds how long StopRecording waits for the frame
	// being written.
	FinalizeTimeout time.Duration
}

// Defaults
const (
	DefaultPreset           = prop.PresetMedium
	DefaultProgressInterval = time.Second
	DefaultMaxDuration      = 10 * time.Second
	DefaultFinalizeTimeout  = 2 * time.Second
)

// DefaultOptions returns the options used by New before applying any Option.
func DefaultOptions() Options {
	return Options{
		Authorizer:       auth.Default,
		Preset:           DefaultPreset,
		Position:         driver.PositionBack,
		ProgressInterval: DefaultProgressInterval,
		MaxDuration:      DefaultMaxDuration,
		JPEGQuality:      frame.DefaultJPEGQuality,
		FinalizeTimeout:  DefaultFinalizeTimeout,
	}
}

// Option is a type of Controller functional option.
type Option func(*Options)

// WithAuthorizer sets the permission check run by Prepare.
func WithAuthorizer(a Authorizer) Option {
	return func(o *Options) {
		o.Authorizer = a
	}
}

// WithPreset sets the capture quality preset.
func WithPreset(p prop.Preset) Option {
	return func(o *Options) {
		o.Preset = p
	}
}

// WithPosition sets the camera Prepare starts with.
func WithPosition(p driver.Position) Option {
	return func(o *Options) {
		o.Position = p
	}
}

// WithDriverFilter restricts the drivers the session considers.
func WithDriverFilter(f driver.FilterFn) Option {
	return func(o *Options) {
		o.DriverFilter = f
	}
}

// WithProgressInterval sets the OnProgress cadence.
func WithProgressInterval(d time.Duration) Option {
	return func(o *Options) {
		o.ProgressInterval = d
	}
}

// WithMaxDuration sets the recording time limit. Zero disables it.
func WithMaxDuration(d time.Duration) Option {
	return func(o *Options) {
		o.MaxDuration = d
	}
}

// WithJPEGQuality sets the quality of recorded frames and photos.
func WithJPEGQuality(q int) Option {
	return func(o *Options) {
		o.JPEGQuality = q
	}
}

// WithFinalizeTimeout bounds the wait for the writer on stop.
func WithFinalizeTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.FinalizeTimeout = d
	}
}
