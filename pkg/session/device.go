package session

import (
	"fmt"
	"math"

	"github.com/pion/videorecord/pkg/driver"
	"github.com/pion/videorecord/pkg/io/video"
	"github.com/pion/videorecord/pkg/prop"
)

// Device is a camera the session can capture from.
type Device struct {
	ID       string
	Label    string
	Position driver.Position
	CanFocus bool
}

func deviceOf(d driver.Driver) Device {
	info := d.Info()
	return Device{
		ID:       d.ID(),
		Label:    info.Label,
		Position: info.Position,
		CanFocus: d.CanFocus(),
	}
}

// candidates lists the cameras the session may use, best first.
func (c *Controller) candidates() []driver.Driver {
	filters := []driver.FilterFn{
		driver.FilterVideoRecorder(),
		driver.FilterDeviceType(driver.Camera),
	}
	if c.opts.DriverFilter != nil {
		filters = append(filters, c.opts.DriverFilter)
	}
	return driver.GetManager().Query(driver.FilterAnd(filters...))
}

// pickInitial prefers a camera at position and falls back to any camera.
func pickInitial(drivers []driver.Driver, position driver.Position) driver.Driver {
	for _, d := range drivers {
		if d.Info().Position == position {
			return d
		}
	}
	if len(drivers) > 0 {
		return drivers[0]
	}
	return nil
}

// pickAlternate returns the camera a switch from current moves to. Cameras
// with a known position switch sides; others cycle to the next camera.
func pickAlternate(drivers []driver.Driver, current driver.Driver) driver.Driver {
	if current == nil {
		return nil
	}
	if opposite := current.Info().Position.Opposite(); opposite != driver.PositionUnspecified {
		for _, d := range drivers {
			if d.Info().Position == opposite && d.ID() != current.ID() {
				return d
			}
		}
		return nil
	}

	for i, d := range drivers {
		if d.ID() != current.ID() {
			continue
		}
		for j := 1; j < len(drivers); j++ {
			next := drivers[(i+j)%len(drivers)]
			if next.Info().Position == driver.PositionUnspecified {
				return next
			}
		}
	}
	return nil
}

// selectProperties returns the property of the driver closest to ideal.
func selectProperties(ideal prop.Media, props []prop.Media) (prop.Media, bool) {
	best, bestDist := prop.Media{}, math.Inf(1)
	for _, p := range props {
		if dist := ideal.FitnessDistance(p); dist < bestDist {
			best, bestDist = p, dist
		}
	}
	if math.IsInf(bestDist, 1) {
		return prop.Media{}, false
	}
	if best.FrameRate == 0 {
		best.FrameRate = ideal.FrameRate
	}
	return best, true
}

// startDriver opens d and starts capturing with the properties closest to
// the preset. d is closed again on failure.
func (c *Controller) startDriver(d driver.Driver) (video.Reader, prop.Media, error) {
	if d.Status() != driver.StateClosed {
		return nil, prop.Media{}, fmt.Errorf("%w: %s is busy", ErrDeviceUnavailable, d.Info().Label)
	}
	if err := d.Open(); err != nil {
		return nil, prop.Media{}, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	media, ok := selectProperties(c.ideal, d.Properties())
	if !ok {
		_ = d.Close()
		return nil, prop.Media{}, fmt.Errorf("%w: %s has no usable format", ErrDeviceUnavailable, d.Info().Label)
	}

	r, err := d.(driver.VideoRecorder).VideoRecord(media)
	if err != nil {
		_ = d.Close()
		return nil, prop.Media{}, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	logger.Infof("started %s at %dx%d", d.Info().Label, media.Width, media.Height)
	return r, media, nil
}
