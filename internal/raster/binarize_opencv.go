package raster

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// BinarizeOpenCV converts a grayscale raster into a trace mask using OpenCV:
// Gaussian blur, inverted Otsu threshold (dark ink becomes foreground), then
// morphological close/open to bridge broken strokes and drop speckle noise.
func BinarizeOpenCV(g *image.Gray, cleanupIterations int) (*Bitmap, error) {
	w, h := g.Bounds().Dx(), g.Bounds().Dy()
	src, err := grayToMat(g)
	if err != nil {
		return nil, fmt.Errorf("converting raster to mat: %w", err)
	}
	defer src.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(src, &blurred, image.Point{X: 5, Y: 5}, 0, 0, gocv.BorderDefault)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(blurred, &mask, 0, 255, gocv.ThresholdBinaryInv|gocv.ThresholdOtsu)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: 3, Y: 3})
	defer kernel.Close()

	// Close small gaps in the trace stroke, then remove isolated noise.
	for i := 0; i < cleanupIterations; i++ {
		gocv.MorphologyEx(mask, &mask, gocv.MorphClose, kernel)
	}
	for i := 0; i < cleanupIterations; i++ {
		gocv.MorphologyEx(mask, &mask, gocv.MorphOpen, kernel)
	}

	bm := NewBitmap(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			bm.Set(x, y, mask.GetUCharAt(y, x) > 0)
		}
	}
	return bm, nil
}

func grayToMat(g *image.Gray) (gocv.Mat, error) {
	w, h := g.Bounds().Dx(), g.Bounds().Dy()
	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8U)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			mat.SetUCharAt(y, x, g.GrayAt(g.Bounds().Min.X+x, g.Bounds().Min.Y+y).Y)
		}
	}
	return mat, nil
}
