// Package preprocess turns decoded images into the classifier input tensor.
package preprocess

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/nfnt/resize"

	"github.com/Brownie44l1/emotion-detector/internal/model"
)

// Interpolation is the resampler used to reach 48x48. It is fixed so the same
// input always produces the same tensor.
const Interpolation = resize.Bicubic

// Preprocess converts img to grayscale, resizes it to 48x48 and scales pixel
// values into [0, 1]. img must be a valid decoded image.
func Preprocess(img image.Image) *model.Tensor {
	gray := Grayscale(img)
	resized := resize.Resize(model.TensorWidth, model.TensorHeight, gray, Interpolation)

	// nfnt/resize keeps *image.Gray for gray input; redraw covers any other result.
	small, ok := resized.(*image.Gray)
	if !ok {
		small = Grayscale(resized)
	}

	var t model.Tensor
	bounds := small.Bounds()
	for y := 0; y < model.TensorHeight; y++ {
		for x := 0; x < model.TensorWidth; x++ {
			v := small.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y
			t.Set(y, x, float32(v)/255.0)
		}
	}
	return &t
}

// Grayscale returns a single-channel copy of img with its origin at (0, 0).
// Alpha is ignored: a transparent pixel keeps the luma of its straight RGB
// color instead of being composited onto black.
func Grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		draw.Draw(gray, gray.Bounds(), img, bounds.Min, draw.Src)
		return gray
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			gray.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: luma(c.R, c.G, c.B)})
		}
	}
	return gray
}

// luma is ITU-R 601-2 (299/587/114) in 16-bit fixed point.
func luma(r, g, b uint8) uint8 {
	return uint8((19595*uint32(r) + 38470*uint32(g) + 7471*uint32(b) + 1<<15) >> 16)
}
