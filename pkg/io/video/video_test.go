package video

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/pion/videorecord/pkg/prop"
)

func staticSource(img image.Image) Reader {
	return ReaderFunc(func() (image.Image, func(), error) {
		return img, func() {}, nil
	})
}

func TestMerge(t *testing.T) {
	var order []int
	mark := func(i int) TransformFunc {
		return func(r Reader) Reader {
			return ReaderFunc(func() (image.Image, func(), error) {
				order = append(order, i)
				return r.Read()
			})
		}
	}

	r := Merge(mark(1), nil, mark(2))(staticSource(image.NewGray(image.Rect(0, 0, 1, 1))))
	if _, _, err := r.Read(); err != nil {
		t.Fatal(err)
	}

	// The last transform wraps the others, so it runs first.
	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Errorf("unexpected transform order %v", order)
	}
}

func TestScale(t *testing.T) {
	cases := map[string]struct {
		src           image.Image
		width, height int
		expected      image.Rectangle
	}{
		"RGBA": {
			src:      image.NewRGBA(image.Rect(0, 0, 64, 48)),
			width:    32,
			height:   24,
			expected: image.Rect(0, 0, 32, 24),
		},
		"YCbCrKeepAspect": {
			src:      image.NewYCbCr(image.Rect(0, 0, 64, 48), image.YCbCrSubsampleRatio420),
			width:    32,
			height:   -1,
			expected: image.Rect(0, 0, 32, 24),
		},
		"Gray": {
			src:      image.NewGray(image.Rect(0, 0, 64, 48)),
			width:    -1,
			height:   12,
			expected: image.Rect(0, 0, 16, 12),
		},
	}

	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			r := Scale(c.width, c.height, nil)(staticSource(c.src))
			img, _, err := r.Read()
			if err != nil {
				t.Fatal(err)
			}
			if img.Bounds() != c.expected {
				t.Errorf("expected %v, got %v", c.expected, img.Bounds())
			}
		})
	}
}

func TestScaleUnsupported(t *testing.T) {
	r := Scale(8, 8, nil)(staticSource(image.NewAlpha(image.Rect(0, 0, 16, 16))))
	if _, _, err := r.Read(); !errors.Is(err, errUnsupportedImageType) {
		t.Errorf("expected %v, got %v", errUnsupportedImageType, err)
	}
}

func TestScaleInvalidSize(t *testing.T) {
	r := Scale(0, -1, nil)(staticSource(image.NewGray(image.Rect(0, 0, 16, 16))))
	if _, _, err := r.Read(); !errors.Is(err, errInvalidScaleSize) {
		t.Errorf("expected %v, got %v", errInvalidScaleSize, err)
	}
}

func TestScaleFollowsResolutionChanges(t *testing.T) {
	src := image.NewYCbCr(image.Rect(0, 0, 64, 48), image.YCbCrSubsampleRatio420)
	r := Scale(32, -1, ScalerApproxBiLinear)(ReaderFunc(func() (image.Image, func(), error) {
		return src, func() {}, nil
	}))

	img, _, err := r.Read()
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 32, 24) {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}

	src = image.NewYCbCr(image.Rect(0, 0, 64, 64), image.YCbCrSubsampleRatio420)
	img, _, err = r.Read()
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 32, 32) {
		t.Errorf("unexpected bounds after resize %v", img.Bounds())
	}
	if _, ok := img.(*image.YCbCr); !ok {
		t.Errorf("expected YCbCr output, got %T", img)
	}
}

func TestFit(t *testing.T) {
	small := image.NewYCbCr(image.Rect(0, 0, 32, 24), image.YCbCrSubsampleRatio420)
	large := image.NewYCbCr(image.Rect(0, 0, 64, 48), image.YCbCrSubsampleRatio420)
	frames := []image.Image{small, large, small}

	i := 0
	r := Fit(32, 24, nil)(ReaderFunc(func() (image.Image, func(), error) {
		img := frames[i%len(frames)]
		i++
		return img, func() {}, nil
	}))

	img, _, err := r.Read()
	if err != nil {
		t.Fatal(err)
	}
	if img != image.Image(small) {
		t.Error("expected a frame of the right size to pass through")
	}

	img, _, err = r.Read()
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != small.Rect {
		t.Errorf("expected the large frame to be scaled to %v, got %v", small.Rect, img.Bounds())
	}

	img, _, err = r.Read()
	if err != nil {
		t.Fatal(err)
	}
	if img != image.Image(small) {
		t.Error("expected frames to pass through again once sizes match")
	}
}

func TestFitSourceError(t *testing.T) {
	broken := errors.New("broken")
	r := Fit(32, 24, nil)(ReaderFunc(func() (image.Image, func(), error) {
		return nil, func() {}, broken
	}))
	if _, _, err := r.Read(); err != broken {
		t.Errorf("expected %v, got %v", broken, err)
	}
}

func TestDetectChanges(t *testing.T) {
	size := image.Rect(0, 0, 16, 8)
	src := ReaderFunc(func() (image.Image, func(), error) {
		return image.NewGray(size), func() {}, nil
	})

	var detected []prop.Media
	r := DetectChanges(time.Hour, func(p prop.Media) { detected = append(detected, p) })(src)

	for i := 0; i < 3; i++ {
		if _, _, err := r.Read(); err != nil {
			t.Fatal(err)
		}
	}
	if len(detected) != 1 {
		t.Fatalf("expected exactly one change, got %d", len(detected))
	}
	if detected[0].Width != 16 || detected[0].Height != 8 {
		t.Errorf("unexpected detected size %dx%d", detected[0].Width, detected[0].Height)
	}

	size = image.Rect(0, 0, 32, 8)
	if _, _, err := r.Read(); err != nil {
		t.Fatal(err)
	}
	if len(detected) != 2 || detected[1].Width != 32 {
		t.Errorf("expected a resize to be detected, got %+v", detected)
	}
}

func TestDetectChangesFrameRate(t *testing.T) {
	var detected []prop.Media
	r := DetectChanges(20*time.Millisecond, func(p prop.Media) { detected = append(detected, p) })(
		staticSource(image.NewGray(image.Rect(0, 0, 4, 4))),
	)

	for i := 0; i < 4; i++ {
		if _, _, err := r.Read(); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	var measured bool
	for _, p := range detected[1:] {
		if p.FrameRate > 0 {
			measured = true
		}
	}
	if !measured {
		t.Errorf("expected a frame rate to be reported, got %+v", detected)
	}
}

func TestBroadcasterCopiesFrames(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	broadcaster := NewBroadcaster(staticSource(img), nil)

	r := broadcaster.NewReader(true)
	got, _, err := r.Read()
	if err != nil {
		t.Fatal(err)
	}

	img.Pix[0] = 42
	if got.(*image.Gray).Pix[0] == 42 {
		t.Error("expected the reader to own a copy of the frame")
	}

	shared := broadcaster.NewReader(false)
	got, _, err = shared.Read()
	if err != nil {
		t.Fatal(err)
	}
	if got != image.Image(img) {
		t.Error("expected the non-copying reader to return the source frame")
	}
}
