package synth

import (
	"image"
	"image/color"
)

// PaperOptions controls the rendered raster.
type PaperOptions struct {
	SquarePx     int     // pixel pitch of one small grid square
	MVPerSquare  float64 // paper gain convention
	SecPerSquare float64 // paper speed convention
	HeightPx     int
	GridInk      color.Color
	TraceInk     color.Color
}

// DefaultPaperOptions mimics standard 25 mm/s, 10 mm/mV paper.
func DefaultPaperOptions() PaperOptions {
	return PaperOptions{
		SquarePx:     10,
		MVPerSquare:  0.1,
		SecPerSquare: 0.04,
		HeightPx:     400,
		GridInk:      color.RGBA{R: 240, G: 128, B: 128, A: 255},
		TraceInk:     color.RGBA{R: 16, G: 16, B: 16, A: 255},
	}
}

// RenderPaper draws a record onto a synthetic ECG paper raster: white
// background, periodic grid lines, and the trace as a connected dark
// polyline. One pixel column corresponds to one sample when the record was
// generated at SquarePx/SecPerSquare samples per second.
func RenderPaper(samples []float64, opts PaperOptions) *image.RGBA {
	w := len(samples)
	h := opts.HeightPx
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}

	for x := 0; x < w; x += opts.SquarePx {
		for y := 0; y < h; y++ {
			img.Set(x, y, opts.GridInk)
		}
	}
	for y := 0; y < h; y += opts.SquarePx {
		for x := 0; x < w; x++ {
			img.Set(x, y, opts.GridInk)
		}
	}

	pxPerMV := float64(opts.SquarePx) / opts.MVPerSquare
	mid := h / 2
	prevY := traceY(samples[0], pxPerMV, mid, h)
	for x, v := range samples {
		y := traceY(v, pxPerMV, mid, h)
		drawSegment(img, x, prevY, y, opts.TraceInk)
		prevY = y
	}
	return img
}

func traceY(v, pxPerMV float64, mid, h int) int {
	y := mid - int(v*pxPerMV)
	if y < 1 {
		y = 1
	}
	if y > h-2 {
		y = h - 2
	}
	return y
}

// drawSegment fills the vertical span between consecutive sample heights so
// steep QRS slopes stay 4-connected, and thickens the stroke by one pixel.
func drawSegment(img *image.RGBA, x, y0, y1 int, ink color.Color) {
	lo, hi := y0, y1
	if lo > hi {
		lo, hi = hi, lo
	}
	for y := lo; y <= hi; y++ {
		img.Set(x, y, ink)
		img.Set(x, y+1, ink)
	}
}
