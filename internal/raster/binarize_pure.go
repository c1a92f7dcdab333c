package raster

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/segment"
)

// BinarizePure converts a grayscale raster into a trace mask without cgo:
// light Gaussian blur, then a global Otsu threshold. Dark pixels (the trace
// ink) become foreground.
func BinarizePure(g *image.Gray) *Bitmap {
	blurred := toGray(blur.Gaussian(g, 1.5))
	level := otsuLevel(blurred)
	th := segment.Threshold(blurred, level)

	bm := NewBitmap(th.Bounds().Dx(), th.Bounds().Dy())
	for y := 0; y < bm.H; y++ {
		for x := 0; x < bm.W; x++ {
			// segment.Threshold whitens pixels at or above the level, so
			// foreground ink is what stayed black.
			bm.Set(x, y, th.GrayAt(x, y).Y == 0)
		}
	}
	return bm
}

// otsuLevel computes the Otsu threshold over an 8-bit histogram: the level
// maximizing inter-class variance between ink and paper.
func otsuLevel(g *image.Gray) uint8 {
	var hist [256]int
	b := g.Bounds()
	total := b.Dx() * b.Dy()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[g.GrayAt(x, y).Y]++
		}
	}

	var sum float64
	for i, n := range hist {
		sum += float64(i) * float64(n)
	}

	var sumB, wB float64
	var best float64
	level := uint8(128)
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			level = uint8(t)
		}
	}
	return level
}
