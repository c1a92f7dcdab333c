// Package raster prepares decoded ECG paper images for trace extraction:
// grayscale conversion, size normalization, grid-ink suppression and
// binarization into a foreground mask.
package raster

import (
	"fmt"
	"image"
	"image/color"
	stddraw "image/draw"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
	xdraw "golang.org/x/image/draw"

	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/config"
)

// InputError rejects a malformed, empty or oversized input before any
// processing begins. It is the only failure in the pipeline surfaced as an
// immediate error rather than a degraded result.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string { return "input rejected: " + e.Reason }

// FromImage converts a decoded image into the grayscale raster the pipeline
// works on. Oversized images are downscaled to cfg.MaxImageDim on the longest
// side; undersized ones are rejected.
func FromImage(img image.Image, cfg config.AnalysisConfig) (*image.Gray, error) {
	if img == nil {
		return nil, &InputError{Reason: "nil image"}
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < cfg.MinImageDim || h < cfg.MinImageDim {
		return nil, &InputError{Reason: fmt.Sprintf("image %dx%d below minimum dimension %d", w, h, cfg.MinImageDim)}
	}
	if w > cfg.MaxImageDim || h > cfg.MaxImageDim {
		img = downscale(img, cfg.MaxImageDim)
	}
	return toGray(imaging.Grayscale(img)), nil
}

// FromMatrix builds a grayscale raster from a raw intensity matrix
// (rows of pixel values 0-255), the transport-independent image input form.
func FromMatrix(pixels [][]uint8, cfg config.AnalysisConfig) (*image.Gray, error) {
	h := len(pixels)
	if h == 0 {
		return nil, &InputError{Reason: "empty pixel matrix"}
	}
	w := len(pixels[0])
	if w < cfg.MinImageDim || h < cfg.MinImageDim {
		return nil, &InputError{Reason: fmt.Sprintf("matrix %dx%d below minimum dimension %d", w, h, cfg.MinImageDim)}
	}
	if w > cfg.MaxImageDim || h > cfg.MaxImageDim {
		return nil, &InputError{Reason: fmt.Sprintf("matrix %dx%d exceeds maximum dimension %d", w, h, cfg.MaxImageDim)}
	}
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y, row := range pixels {
		if len(row) != w {
			return nil, &InputError{Reason: "ragged pixel matrix"}
		}
		for x, v := range row {
			g.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return g, nil
}

// SuppressGridInk whitens the reddish printed grid of ECG paper on a color
// image before grayscale conversion, so grid lines do not survive into the
// trace mask. Pixels whose hue falls in the red/pink band with enough
// saturation are treated as grid ink.
func SuppressGridInk(img image.Image) image.Image {
	b := img.Bounds()
	out := image.NewRGBA(b)
	stddraw.Draw(out, b, img, b.Min, stddraw.Src)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			h, s, v := c.Hsv()
			if isGridHue(h, s, v) {
				out.Set(x, y, color.White)
			}
		}
	}
	return out
}

// isGridHue matches the red/orange/pink band used for printed ECG grids.
// Low-saturation pixels (the trace ink, usually near-black) pass through.
func isGridHue(h, s, v float64) bool {
	if s < 0.15 || v < 0.25 {
		return false
	}
	return h <= 30 || h >= 330
}

func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	stddraw.Draw(g, g.Bounds(), img, b.Min, stddraw.Src)
	return g
}

func downscale(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	scale := float64(maxDim) / float64(max(w, h))
	nw, nh := int(float64(w)*scale), int(float64(h)*scale)
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}
