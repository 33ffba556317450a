package prop

import (
	"testing"

	"github.com/pion/videorecord/pkg/frame"
)

func TestMerge(t *testing.T) {
	p := Media{Video: Video{Width: 640, Height: 480, FrameFormat: frame.FormatYUY2}}
	p.Merge(Media{DeviceID: "abc", Video: Video{Width: 1280, FrameRate: 30}})

	expected := Media{DeviceID: "abc", Video: Video{Width: 1280, Height: 480, FrameRate: 30, FrameFormat: frame.FormatYUY2}}
	if p != expected {
		t.Errorf("expected %+v, got %+v", expected, p)
	}
}

func TestFitnessDistance(t *testing.T) {
	ideal := Media{Video: Video{Width: 640, Height: 480}}

	testDataSet := map[string]struct {
		actual Media
		dist   float64
	}{
		"Exact": {
			Media{Video: Video{Width: 640, Height: 480, FrameFormat: frame.FormatMJPEG}},
			0,
		},
		"HalfWidth": {
			Media{Video: Video{Width: 320, Height: 480}},
			0.5,
		},
		"Both": {
			Media{Video: Video{Width: 320, Height: 240}},
			1,
		},
	}

	for name, data := range testDataSet {
		data := data
		t.Run(name, func(t *testing.T) {
			if d := ideal.FitnessDistance(data.actual); d != data.dist {
				t.Errorf("expected distance %v, got %v", data.dist, d)
			}
		})
	}

	withFormat := Media{Video: Video{FrameFormat: frame.FormatI420}}
	if d := withFormat.FitnessDistance(Media{Video: Video{FrameFormat: frame.FormatYUY2}}); d != 1 {
		t.Errorf("expected a format mismatch to cost 1, got %v", d)
	}
}

func TestPresetMedia(t *testing.T) {
	m, err := Preset640.Media()
	if err != nil {
		t.Fatal(err)
	}
	if m.Width != 640 || m.Height != 480 {
		t.Errorf("unexpected preset size %dx%d", m.Width, m.Height)
	}

	if _, err := Preset("8k").Media(); err == nil {
		t.Error("expected unknown preset to fail")
	}
}
