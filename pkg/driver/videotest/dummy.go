// Package videotest provides dummy video drivers for testing.
//
// Importing the package registers a back camera that can focus and a front
// camera that can't. Tests that need more control can register their own
// Camera with driver.GetManager().Register.
package videotest

import (
	"context"
	"fmt"
	"image"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/pion/videorecord/pkg/driver"
	"github.com/pion/videorecord/pkg/frame"
	"github.com/pion/videorecord/pkg/io/video"
	"github.com/pion/videorecord/pkg/prop"
)

const (
	// LabelBack is the label of the default back camera.
	LabelBack = "VideoTest Back"
	// LabelFront is the label of the default front camera.
	LabelFront = "VideoTest Front"

	defaultFrameRate = 30
)

func init() {
	driver.GetManager().Register(New(true), driver.Info{
		Label:      LabelBack,
		DeviceType: driver.Camera,
		Position:   driver.PositionBack,
		Priority:   driver.PriorityHigh,
	})
	driver.GetManager().Register(New(false), driver.Info{
		Label:      LabelFront,
		DeviceType: driver.Camera,
		Position:   driver.PositionFront,
	})
}

// Point is a normalized focus point.
type Point struct {
	X, Y float64
}

// Camera generates color bars with a noise area at the requested size and
// frame rate. Frames are produced as raw I420 and decoded the way a real
// driver decodes them.
type Camera struct {
	canFocus bool

	// OpenErr, when set, is returned by Open to simulate an unavailable device.
	OpenErr error
	// Resolutions lists the sizes the camera advertises. It defaults to
	// 320x240 and 640x480.
	Resolutions []image.Point

	closed <-chan struct{}
	cancel func()
	tick   *time.Ticker

	mu      sync.Mutex
	focus   []Point
	opened  int
	readErr error
}

// New creates a dummy camera.
func New(canFocus bool) *Camera {
	return &Camera{canFocus: canFocus}
}

// FocusPoints returns every point Focus has been called with.
func (d *Camera) FocusPoints() []Point {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Point(nil), d.focus...)
}

// OpenCount returns how many times the camera has been opened.
func (d *Camera) OpenCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opened
}

// Fail makes every following read of the running stream return err, like
// a camera that has been unplugged. Opening the camera again clears it.
func (d *Camera) Fail(err error) {
	d.mu.Lock()
	d.readErr = err
	d.mu.Unlock()
}

func (d *Camera) failure() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readErr
}

func (d *Camera) Open() error {
	if d.OpenErr != nil {
		return d.OpenErr
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.closed = ctx.Done()
	d.cancel = cancel

	d.mu.Lock()
	d.opened++
	d.readErr = nil
	d.mu.Unlock()
	return nil
}

func (d *Camera) Close() error {
	if d.cancel != nil {
		d.cancel()
	}
	if d.tick != nil {
		d.tick.Stop()
	}
	return nil
}

func (d *Camera) CanFocus() bool {
	return d.canFocus
}

func (d *Camera) Focus(x, y float64) error {
	if !d.canFocus {
		return driver.ErrFocusNotSupported
	}
	d.mu.Lock()
	d.focus = append(d.focus, Point{X: x, Y: y})
	d.mu.Unlock()
	return nil
}

var colorBars = [][3]byte{
	{235, 128, 128},
	{210, 16, 146},
	{170, 166, 16},
	{145, 54, 34},
	{107, 202, 222},
	{82, 90, 240},
	{41, 240, 110},
}

// testPattern renders the static part of a w x h I420 frame: color bars on
// the top three quarters, a gray gradation below them.
func testPattern(w, h int) []byte {
	luma := w * h
	cw := w / 2
	buf := make([]byte, luma+luma/2)
	yy, cb, cr := buf[:luma], buf[luma:luma+luma/4], buf[luma+luma/4:]

	barsEnd, gradationEnd := h*3/4, w*5/7
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			l, u, v := byte(0), byte(128), byte(128)
			switch {
			case y < barsEnd:
				c := colorBars[x*7/w]
				l, u, v = uint8(uint16(c[0])*75/100), c[1], c[2]
			case x < gradationEnd:
				l = uint8(x * 255 / gradationEnd)
			}
			yy[y*w+x] = l
			if y%2 == 0 && x%2 == 0 {
				cb[(y/2)*cw+x/2] = u
				cr[(y/2)*cw+x/2] = v
			}
		}
	}
	return buf
}

func (d *Camera) VideoRecord(p prop.Media) (video.Reader, error) {
	if p.FrameRate == 0 {
		p.FrameRate = defaultFrameRate
	}
	if p.Width == 0 || p.Height == 0 {
		p.Width, p.Height = 320, 240
	}
	if p.FrameFormat == "" {
		p.FrameFormat = frame.FormatI420
	}
	if p.FrameFormat != frame.FormatI420 || p.Width%2 != 0 || p.Height%2 != 0 {
		return nil, fmt.Errorf("videotest: can't produce %s at %dx%d", p.FrameFormat, p.Width, p.Height)
	}
	decoder, err := frame.NewDecoder(p.FrameFormat)
	if err != nil {
		return nil, err
	}

	pattern := testPattern(p.Width, p.Height)
	barsEnd, gradationEnd := p.Height*3/4, p.Width*5/7
	random := rand.New(rand.NewSource(0))

	tick := time.NewTicker(time.Duration(float32(time.Second) / p.FrameRate))
	d.tick = tick
	closed := d.closed

	r := video.ReaderFunc(func() (image.Image, func(), error) {
		select {
		case <-closed:
			return nil, func() {}, io.EOF
		default:
		}

		select {
		case <-closed:
			return nil, func() {}, io.EOF
		case <-tick.C:
		}
		if err := d.failure(); err != nil {
			return nil, func() {}, err
		}

		// Every frame gets its own buffer since consumers may keep it.
		raw := make([]byte, len(pattern))
		copy(raw, pattern)
		for y := barsEnd; y < p.Height; y++ {
			for x := gradationEnd; x < p.Width; x++ {
				raw[y*p.Width+x] = uint8(random.Int31n(2) * 255)
			}
		}
		return decoder.Decode(raw, p.Width, p.Height)
	})

	return r, nil
}

func (d *Camera) Properties() []prop.Media {
	sizes := d.Resolutions
	if len(sizes) == 0 {
		sizes = []image.Point{{X: 320, Y: 240}, {X: 640, Y: 480}}
	}

	props := make([]prop.Media, 0, len(sizes))
	for _, size := range sizes {
		props = append(props, prop.Media{
			Video: prop.Video{
				Width:       size.X,
				Height:      size.Y,
				FrameRate:   defaultFrameRate,
				FrameFormat: frame.FormatI420,
			},
		})
	}
	return props
}
