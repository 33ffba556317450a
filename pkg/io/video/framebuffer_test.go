package video

import (
	"image"
	"image/color"
	"math/rand"
	"reflect"
	"testing"
)

func randomize(arr []uint8) {
	for i := range arr {
		arr[i] = uint8(rand.Uint32())
	}
}

func BenchmarkFrameBufferCopyOptimized(b *testing.B) {
	frameBuffer := NewFrameBuffer(0)
	resolution := image.Rect(0, 0, 1920, 1080)
	src := image.NewYCbCr(resolution, image.YCbCrSubsampleRatio420)

	for i := 0; i < b.N; i++ {
		frameBuffer.StoreCopy(src)
	}
}

func TestFrameBufferStoreCopyAndLoad(t *testing.T) {
	resolution := image.Rect(0, 0, 16, 8)
	testCases := map[string]struct {
		New    func() image.Image
		Update func(image.Image)
	}{
		"Gray": {
			New: func() image.Image {
				img := image.NewGray(resolution)
				randomize(img.Pix)
				return img
			},
			Update: func(src image.Image) {
				randomize(src.(*image.Gray).Pix)
			},
		},
		"RGBA": {
			New: func() image.Image {
				img := image.NewRGBA(resolution)
				randomize(img.Pix)
				return img
			},
			Update: func(src image.Image) {
				randomize(src.(*image.RGBA).Pix)
			},
		},
		"YCbCr": {
			New: func() image.Image {
				img := image.NewYCbCr(resolution, image.YCbCrSubsampleRatio420)
				randomize(img.Y)
				randomize(img.Cb)
				randomize(img.Cr)
				return img
			},
			Update: func(src image.Image) {
				img := src.(*image.YCbCr)
				randomize(img.Y)
				randomize(img.Cb)
				randomize(img.Cr)
			},
		},
	}

	frameBuffer := NewFrameBuffer(0)

	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			src := tc.New()
			frameBuffer.StoreCopy(src)
			if !reflect.DeepEqual(frameBuffer.Load(), src) {
				t.Fatal("Expected the copied image to be identical with the source")
			}

			tc.Update(src)
			if reflect.DeepEqual(frameBuffer.Load(), src) {
				t.Fatal("Expected the copy to be independent from the source")
			}

			frameBuffer.StoreCopy(src)
			if !reflect.DeepEqual(frameBuffer.Load(), src) {
				t.Fatal("Expected the copied image to be identical with the updated source")
			}
		})
	}
}

func TestFrameBufferConvertsUnknownTypes(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.Set(1, 1, color.NRGBA{R: 255, A: 255})

	frameBuffer := NewFrameBuffer(0)
	frameBuffer.StoreCopy(src)

	rgba, ok := frameBuffer.Load().(*image.RGBA)
	if !ok {
		t.Fatalf("expected *image.RGBA, got %T", frameBuffer.Load())
	}
	if r, _, _, _ := rgba.At(1, 1).RGBA(); r != 0xffff {
		t.Errorf("expected red pixel to survive the conversion, got %v", rgba.At(1, 1))
	}
}
