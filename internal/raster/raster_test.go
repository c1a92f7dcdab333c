package raster

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/config"
)

func uniformRGBA(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestFromImageRejectsTiny(t *testing.T) {
	_, err := FromImage(uniformRGBA(8, 8, color.White), config.Default())
	var ie *InputError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want InputError", err)
	}

	if _, err := FromImage(nil, config.Default()); err == nil {
		t.Error("nil image accepted")
	}
}

func TestFromImageDownscalesOversized(t *testing.T) {
	cfg := config.Default()
	cfg.MaxImageDim = 64

	g, err := FromImage(uniformRGBA(128, 32, color.White), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if g.Bounds().Dx() != 64 {
		t.Errorf("width = %d, want downscaled to 64", g.Bounds().Dx())
	}
	if g.Bounds().Dy() != 16 {
		t.Errorf("height = %d, want aspect-preserving 16", g.Bounds().Dy())
	}
}

func TestFromMatrix(t *testing.T) {
	cfg := config.Default()
	pixels := make([][]uint8, 32)
	for y := range pixels {
		pixels[y] = make([]uint8, 32)
		for x := range pixels[y] {
			pixels[y][x] = 255
		}
	}
	pixels[10][12] = 30

	g, err := FromMatrix(pixels, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if g.Bounds().Dx() != 32 || g.Bounds().Dy() != 32 {
		t.Fatalf("bounds = %v", g.Bounds())
	}
	if g.GrayAt(12, 10).Y != 30 {
		t.Errorf("pixel (12,10) = %d, want 30", g.GrayAt(12, 10).Y)
	}
}

func TestFromMatrixRejectsMalformed(t *testing.T) {
	cfg := config.Default()

	if _, err := FromMatrix(nil, cfg); err == nil {
		t.Error("empty matrix accepted")
	}

	ragged := [][]uint8{make([]uint8, 32), make([]uint8, 31)}
	for i := 2; i < 32; i++ {
		ragged = append(ragged, make([]uint8, 32))
	}
	_, err := FromMatrix(ragged, cfg)
	var ie *InputError
	if !errors.As(err, &ie) {
		t.Fatalf("ragged matrix err = %v, want InputError", err)
	}
}

func TestSuppressGridInk(t *testing.T) {
	img := uniformRGBA(32, 32, color.White)
	img.Set(5, 5, color.RGBA{R: 240, G: 128, B: 128, A: 255}) // grid ink
	img.Set(6, 6, color.RGBA{R: 16, G: 16, B: 16, A: 255})    // trace ink

	out := SuppressGridInk(img)

	r, g, b, _ := out.At(5, 5).RGBA()
	if r != 0xffff || g != 0xffff || b != 0xffff {
		t.Errorf("grid pixel not whitened: %d %d %d", r, g, b)
	}
	r, _, _, _ = out.At(6, 6).RGBA()
	if r > 0x2000 {
		t.Errorf("trace pixel lightened: r = %d", r)
	}
}

func TestBinarizePureSeparatesInk(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			g.SetGray(x, y, color.Gray{Y: 250})
		}
	}
	for y := 20; y < 30; y++ {
		for x := 20; x < 30; x++ {
			g.SetGray(x, y, color.Gray{Y: 20})
		}
	}

	bm := BinarizePure(g)
	if bm.W != 64 || bm.H != 64 {
		t.Fatalf("bitmap %dx%d", bm.W, bm.H)
	}
	if !bm.At(25, 25) {
		t.Error("dark block center not foreground")
	}
	if bm.At(5, 5) {
		t.Error("paper background marked foreground")
	}
	n := bm.ForegroundCount()
	if n < 60 || n > 250 {
		t.Errorf("foreground count = %d for a 100-pixel block", n)
	}
}

func TestOtsuLevelBimodal(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if x < 8 {
				g.SetGray(x, y, color.Gray{Y: 40})
			} else {
				g.SetGray(x, y, color.Gray{Y: 220})
			}
		}
	}
	level := otsuLevel(g)
	if level < 40 || level > 220 {
		t.Errorf("otsu level = %d, want between the two modes", level)
	}
}

func TestBitmapBounds(t *testing.T) {
	bm := NewBitmap(4, 4)
	bm.Set(1, 2, true)
	bm.Set(-1, 0, true) // ignored
	bm.Set(4, 4, true)  // ignored

	if !bm.At(1, 2) {
		t.Error("set pixel not readable")
	}
	if bm.At(-1, 0) || bm.At(4, 4) {
		t.Error("out-of-bounds reads foreground")
	}
	if bm.ForegroundCount() != 1 {
		t.Errorf("foreground count = %d, want 1", bm.ForegroundCount())
	}
	if bm.Empty() {
		t.Error("non-empty bitmap reported empty")
	}
}
