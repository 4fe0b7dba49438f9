package ocr

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Preprocess controls how an image is prepared before recognition.
type Preprocess struct {
	// MinHeight upscales images shorter than this many pixels.
	MinHeight int
	// Contrast is passed to imaging.AdjustContrast (percent, -100..100).
	Contrast float64
	// Sharpen is the sigma for imaging.Sharpen; 0 disables it.
	Sharpen float64
	// Threshold binarizes the image when > 0.
	Threshold uint8
	// Invert flips light-on-dark screenshots to dark-on-light.
	Invert bool
}

// DefaultPreprocess is the light pass used for every screenshot.
func DefaultPreprocess() Preprocess {
	return Preprocess{MinHeight: 1200, Contrast: 15}
}

// AggressivePreprocess is used when re-reading low-confidence standings.
func AggressivePreprocess() Preprocess {
	return Preprocess{MinHeight: 1600, Contrast: 30, Sharpen: 0.8, Threshold: 140, Invert: true}
}

// PrepareFile writes the image at in, prepared with p, to out and returns
// the upscale factor. It shows what the recognizer is given.
func PrepareFile(in, out string, p Preprocess) (float64, error) {
	img, err := imaging.Open(in)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrNoImage, in, err)
	}
	prepared, scale := prepare(img, p)
	if err := imaging.Save(prepared, out); err != nil {
		return 0, fmt.Errorf("save prepared image: %w", err)
	}
	return scale, nil
}

// prepare returns the processed image and the factor by which it was
// upscaled. Coordinates measured on the result must be divided by the factor
// to land on the original image.
func prepare(img image.Image, p Preprocess) (image.Image, float64) {
	out := image.Image(imaging.Grayscale(img))
	if p.Invert {
		out = imaging.Invert(out)
	}
	if p.Contrast != 0 {
		out = imaging.AdjustContrast(out, p.Contrast)
	}
	if p.Sharpen > 0 {
		out = imaging.Sharpen(out, p.Sharpen)
	}
	scale := 1.0
	if h := img.Bounds().Dy(); p.MinHeight > 0 && h > 0 && h < p.MinHeight {
		scale = float64(p.MinHeight) / float64(h)
		out = imaging.Resize(out, 0, p.MinHeight, imaging.Lanczos)
	}
	if p.Threshold > 0 {
		out = binarize(out, p.Threshold)
	}
	return out, scale
}

// binarize performs a simple global threshold on a grayscale image.
func binarize(img image.Image, threshold uint8) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, _ := img.At(x, y).RGBA()
			gray := uint8((r + g + bb) / 3 >> 8)
			var v uint8 = 255
			if gray <= threshold {
				v = 0
			}
			out.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return out
}
