// Package legend reads the printed calibration legend on ECG paper
// ("25mm/s 10mm/mV") with Tesseract. It is an optional cross-check for the
// grid-pitch calibration; any failure degrades silently to the grid estimate.
package legend

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"regexp"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// Legend holds the parsed paper speed and gain.
type Legend struct {
	MMPerSecond    float64 `json:"mm_per_second"`
	MMPerMillivolt float64 `json:"mm_per_millivolt"`
}

// Engine wraps a Tesseract client restricted to the legend character set.
type Engine struct {
	client *gosseract.Client
}

// legendChars keeps Tesseract from hallucinating words out of the legend.
const legendChars = "0123456789.mMsSvV/ "

var (
	speedRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[mM][mM]\s*/\s*[sS]`)
	gainRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[mM][mM]\s*/\s*[mM][vV]`)
)

// NewEngine creates an OCR engine for legend reading.
func NewEngine() (*Engine, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("setting OCR language: %w", err)
	}
	// The legend is not prose; dictionary correction only hurts.
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")
	_ = client.SetWhitelist(legendChars)
	return &Engine{client: client}, nil
}

// Close releases the Tesseract client.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// Read OCRs the bottom strip of the raster, where the legend is printed, and
// parses speed and gain. Both values must parse for the legend to count.
func (e *Engine) Read(img image.Image) (Legend, error) {
	strip := bottomStrip(img)

	var buf bytes.Buffer
	if err := png.Encode(&buf, strip); err != nil {
		return Legend{}, fmt.Errorf("encoding legend strip: %w", err)
	}
	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return Legend{}, fmt.Errorf("loading legend strip: %w", err)
	}
	text, err := e.client.Text()
	if err != nil {
		return Legend{}, fmt.Errorf("running OCR: %w", err)
	}
	return Parse(text)
}

// Parse extracts speed and gain from OCR text.
func Parse(text string) (Legend, error) {
	sm := speedRe.FindStringSubmatch(text)
	gm := gainRe.FindStringSubmatch(text)
	if sm == nil || gm == nil {
		return Legend{}, fmt.Errorf("no legend found in %q", text)
	}
	speed, err := strconv.ParseFloat(sm[1], 64)
	if err != nil {
		return Legend{}, err
	}
	gain, err := strconv.ParseFloat(gm[1], 64)
	if err != nil {
		return Legend{}, err
	}
	if speed <= 0 || gain <= 0 {
		return Legend{}, fmt.Errorf("non-positive legend values %g mm/s, %g mm/mV", speed, gain)
	}
	return Legend{MMPerSecond: speed, MMPerMillivolt: gain}, nil
}

// bottomStrip crops the lower 15% of the image and upscales it for OCR.
func bottomStrip(img image.Image) image.Image {
	b := img.Bounds()
	stripTop := b.Min.Y + (b.Dy()*85)/100
	strip := imaging.Crop(img, image.Rect(b.Min.X, stripTop, b.Max.X, b.Max.Y))
	// Tesseract works better above ~30px glyph height.
	return imaging.Resize(strip, strip.Bounds().Dx()*2, 0, imaging.Lanczos)
}
