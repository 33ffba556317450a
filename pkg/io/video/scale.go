package video

import (
	"errors"
	"image"

	"golang.org/x/image/draw"
)

// Scaler represents scaling algorithm
type Scaler draw.Scaler

// List of scaling algorithms
var (
	ScalerNearestNeighbor = Scaler(draw.NearestNeighbor)
	ScalerApproxBiLinear  = Scaler(draw.ApproxBiLinear)
	ScalerBiLinear        = Scaler(draw.BiLinear)
	ScalerCatmullRom      = Scaler(draw.CatmullRom)
)

var (
	errUnsupportedImageType = errors.New("scaling: unsupported image type")
	errInvalidScaleSize     = errors.New("scaling: width or height has to be positive")
)

// Scale returns a transform resizing every frame to width x height. A
// non-positive width or height is derived from the other one, keeping the
// aspect ratio of each incoming frame. scaler defaults to
// ScalerNearestNeighbor.
//
// YCbCr frames are scaled plane by plane and stay YCbCr, so they can be
// encoded as JPEG without a color conversion. The returned image is reused
// by the next Read.
func Scale(width, height int, scaler Scaler) TransformFunc {
	if scaler == nil {
		scaler = ScalerNearestNeighbor
	}

	return func(r Reader) Reader {
		var out image.Image

		return ReaderFunc(func() (image.Image, func(), error) {
			if width <= 0 && height <= 0 {
				return nil, func() {}, errInvalidScaleSize
			}

			img, release, err := r.Read()
			if err != nil {
				return nil, func() {}, err
			}
			defer release()

			rect := targetRect(img.Bounds(), width, height)

			switch src := img.(type) {
			case *image.YCbCr:
				dst, ok := out.(*image.YCbCr)
				if !ok || dst.Rect != rect || dst.SubsampleRatio != src.SubsampleRatio {
					dst = image.NewYCbCr(rect, src.SubsampleRatio)
				}
				srcPlanes, dstPlanes := planes(src), planes(dst)
				for i := range srcPlanes {
					scaler.Scale(dstPlanes[i], dstPlanes[i].Rect, srcPlanes[i], srcPlanes[i].Rect, draw.Src, nil)
				}
				out = dst

			case *image.Gray:
				dst, ok := out.(*image.Gray)
				if !ok || dst.Rect != rect {
					dst = image.NewGray(rect)
				}
				scaler.Scale(dst, rect, src, src.Rect, draw.Src, nil)
				out = dst

			case *image.RGBA, *image.NRGBA:
				dst, ok := out.(*image.RGBA)
				if !ok || dst.Rect != rect {
					dst = image.NewRGBA(rect)
				}
				scaler.Scale(dst, rect, src, src.Bounds(), draw.Src, nil)
				out = dst

			default:
				return nil, func() {}, errUnsupportedImageType
			}

			return out, func() {}, nil
		})
	}
}

func targetRect(bounds image.Rectangle, width, height int) image.Rectangle {
	switch {
	case height <= 0:
		height = bounds.Dy() * width / bounds.Dx()
	case width <= 0:
		width = bounds.Dx() * height / bounds.Dy()
	}
	return image.Rect(0, 0, width, height)
}

// planes exposes the Y, Cb and Cr planes of img as gray images sharing its
// memory.
func planes(img *image.YCbCr) [3]*image.Gray {
	r := img.Rect
	cw, ch := r.Dx(), r.Dy()
	switch img.SubsampleRatio {
	case image.YCbCrSubsampleRatio422:
		cw = (r.Max.X+1)/2 - r.Min.X/2
	case image.YCbCrSubsampleRatio420:
		cw = (r.Max.X+1)/2 - r.Min.X/2
		ch = (r.Max.Y+1)/2 - r.Min.Y/2
	case image.YCbCrSubsampleRatio440:
		ch = (r.Max.Y+1)/2 - r.Min.Y/2
	case image.YCbCrSubsampleRatio411:
		cw = (r.Max.X+3)/4 - r.Min.X/4
	case image.YCbCrSubsampleRatio410:
		cw = (r.Max.X+3)/4 - r.Min.X/4
		ch = (r.Max.Y+1)/2 - r.Min.Y/2
	}

	chroma := image.Rect(0, 0, cw, ch)
	return [3]*image.Gray{
		{Pix: img.Y, Stride: img.YStride, Rect: image.Rect(0, 0, r.Dx(), r.Dy())},
		{Pix: img.Cb, Stride: img.CStride, Rect: chroma},
		{Pix: img.Cr, Stride: img.CStride, Rect: chroma},
	}
}
