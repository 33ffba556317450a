package camera

import (
	"context"
	"errors"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blackjack/webcam"
	"github.com/pion/videorecord/internal/logging"
	"github.com/pion/videorecord/pkg/driver"
	"github.com/pion/videorecord/pkg/frame"
	"github.com/pion/videorecord/pkg/io/video"
	"github.com/pion/videorecord/pkg/prop"
)

const (
	maxEmptyFrameCount = 5
	frameWaitSeconds   = 5
)

// Values from linux/videodev2.h. They are spelled out here so that the
// driver builds without cgo.
const (
	pixFmtYUYV  webcam.PixelFormat = 0x56595559
	pixFmtUYVY  webcam.PixelFormat = 0x59565955
	pixFmtNV21  webcam.PixelFormat = 0x3132564e
	pixFmtMJPEG webcam.PixelFormat = 0x47504a4d

	cidFocusAuto      webcam.ControlID = 0x009a090c
	cidAutoFocusStart webcam.ControlID = 0x009a091c
)

var (
	errReadTimeout = errors.New("read timeout")
	errEmptyFrame  = errors.New("empty frame")
)

var logger = logging.NewLogger("videorecord/camera")

// Camera implementation using v4l2
// Reference: https://linuxtv.org/downloads/v4l-dvb-apis/uapi/v4l/videodev.html#videodev
type camera struct {
	path            string
	cam             *webcam.Webcam
	formats         map[webcam.PixelFormat]frame.Format
	reversedFormats map[frame.Format]webcam.PixelFormat
	mutex           sync.Mutex
	cancel          func()
}

func init() {
	discovered := make(map[string]struct{})
	discover(discovered, "/dev/v4l/by-path/*")
	discover(discovered, "/dev/video*")
}

// discover registers every device matching pattern that hasn't been seen
// yet. Symlinks are resolved so a device found from multiple locations is
// registered once.
func discover(discovered map[string]struct{}, pattern string) {
	devices, err := filepath.Glob(pattern)
	if err != nil {
		// No v4l device.
		return
	}
	for _, device := range devices {
		label := filepath.Base(device)
		reallink, err := os.Readlink(device)
		if err != nil {
			reallink = label
		} else {
			reallink = filepath.Base(reallink)
		}

		if _, ok := discovered[reallink]; ok {
			continue
		}
		discovered[reallink] = struct{}{}

		cam := newCamera(device)
		err = driver.GetManager().Register(cam, driver.Info{
			Label:      label + LabelSeparator + reallink,
			DeviceType: driver.Camera,
			Position:   positionOf(label),
			Priority:   driver.PriorityNormal,
		})
		if err != nil {
			logger.Warnf("failed to register %s: %v", device, err)
		}
	}
}

// positionOf guesses the side of the host a camera faces from its by-path
// name. udev rules on phones and tablets name them that way.
func positionOf(label string) driver.Position {
	label = strings.ToLower(label)
	switch {
	case strings.Contains(label, "front"):
		return driver.PositionFront
	case strings.Contains(label, "back"), strings.Contains(label, "rear"):
		return driver.PositionBack
	}
	return driver.PositionUnspecified
}

func newCamera(path string) *camera {
	formats := map[webcam.PixelFormat]frame.Format{
		pixFmtYUYV:  frame.FormatYUYV,
		pixFmtUYVY:  frame.FormatUYVY,
		pixFmtNV21:  frame.FormatNV21,
		pixFmtMJPEG: frame.FormatMJPEG,
	}

	reversedFormats := make(map[frame.Format]webcam.PixelFormat)
	for k, v := range formats {
		reversedFormats[v] = k
	}

	return &camera{
		path:            path,
		formats:         formats,
		reversedFormats: reversedFormats,
	}
}

func (c *camera) Open() error {
	cam, err := webcam.Open(c.path)
	if err != nil {
		return err
	}

	c.cam = cam
	return nil
}

func (c *camera) Close() error {
	if c.cam == nil {
		return nil
	}

	if c.cancel != nil {
		// Let the reader knows that the caller has closed the camera
		c.cancel()
		// Wait until the reader unref the buffer
		c.mutex.Lock()
		defer c.mutex.Unlock()

		// StopStreaming frees the mmap buffers. The reader copies every frame
		// out of them, so nothing handed to consumers points into freed memory.
		if err := c.cam.StopStreaming(); err != nil {
			logger.Debugf("stop streaming %s: %v", c.path, err)
		}
		c.cancel = nil
	}
	err := c.cam.Close()
	c.cam = nil
	return err
}

func (c *camera) VideoRecord(p prop.Media) (video.Reader, error) {
	decoder, err := frame.NewDecoder(p.FrameFormat)
	if err != nil {
		return nil, err
	}

	pf, ok := c.reversedFormats[p.FrameFormat]
	if !ok {
		return nil, frame.ErrUnsupportedFormat
	}
	_, w, h, err := c.cam.SetImageFormat(pf, uint32(p.Width), uint32(p.Height))
	if err != nil {
		return nil, err
	}
	// The device may round the requested size to the closest one it supports.
	p.Width, p.Height = int(w), int(h)

	if p.FrameRate > 0 {
		if err := c.cam.SetFramerate(p.FrameRate); err != nil {
			logger.Debugf("%s ignored frame rate %v: %v", c.path, p.FrameRate, err)
		}
	}

	if err := c.cam.StartStreaming(); err != nil {
		return nil, err
	}

	cam := c.cam

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	var buf []byte
	r := video.ReaderFunc(func() (img image.Image, release func(), err error) {
		// Lock to avoid accessing the buffer after StopStreaming()
		c.mutex.Lock()
		defer c.mutex.Unlock()

		// Wait until a frame is ready
		for i := 0; i < maxEmptyFrameCount; i++ {
			if ctx.Err() != nil {
				// Return EOF if the camera is already closed.
				return nil, func() {}, io.EOF
			}

			err := cam.WaitForFrame(frameWaitSeconds)
			switch err.(type) {
			case nil:
			case *webcam.Timeout:
				return nil, func() {}, errReadTimeout
			default:
				// Camera has been stopped.
				return nil, func() {}, err
			}

			b, err := cam.ReadFrame()
			if err != nil {
				// Camera has been stopped.
				return nil, func() {}, err
			}

			// Frame is empty.
			// Retry reading and return errEmptyFrame if it exceeds maxEmptyFrameCount.
			if len(b) == 0 {
				continue
			}

			if len(b) > len(buf) {
				// Grow the intermediate buffer
				buf = make([]byte, len(b))
			}

			// move the memory from mmap to Go. This will guarantee that any data that's going out
			// from this reader will be Go safe.
			n := copy(buf, b)
			return decoder.Decode(buf[:n], p.Width, p.Height)
		}
		return nil, func() {}, errEmptyFrame
	})

	return r, nil
}

func (c *camera) Properties() []prop.Media {
	properties := make([]prop.Media, 0)
	for format := range c.cam.GetSupportedFormats() {
		f, ok := c.formats[format]
		if !ok {
			continue
		}
		for _, frameSize := range c.cam.GetSupportedFrameSizes(format) {
			properties = append(properties, prop.Media{
				Video: prop.Video{
					Width:       int(frameSize.MaxWidth),
					Height:      int(frameSize.MaxHeight),
					FrameFormat: f,
				},
			})
		}
	}
	return properties
}

// CanFocus reports whether the device exposes a one-shot autofocus trigger.
func (c *camera) CanFocus() bool {
	if c.cam == nil {
		return false
	}
	_, ok := c.cam.GetControls()[cidAutoFocusStart]
	return ok
}

// Focus runs a one-shot autofocus. V4L2 has no generic point-of-interest
// control, so the point only selects when to refocus, not where.
func (c *camera) Focus(x, y float64) error {
	if c.cam == nil {
		return driver.ErrFocusNotSupported
	}
	if _, ok := c.cam.GetControls()[cidFocusAuto]; ok {
		// Continuous autofocus has to be off for the trigger to take effect.
		if err := c.cam.SetControl(cidFocusAuto, 0); err != nil {
			return err
		}
	}
	logger.Debugf("%s: autofocus at (%.2f, %.2f)", c.path, x, y)
	return c.cam.SetControl(cidAutoFocusStart, 1)
}
