// Package config consolidates every tunable threshold of the analysis
// pipeline into a single value passed explicitly to each component, keeping
// the components independently testable.
package config

import (
	"os"
	"strconv"
)

// BinarizeStrategy selects how a grayscale raster is turned into a trace mask.
type BinarizeStrategy int

const (
	// BinarizeOpenCV uses Gaussian blur, Otsu thresholding and morphological
	// cleanup via OpenCV. Requires cgo and an OpenCV installation.
	BinarizeOpenCV BinarizeStrategy = iota
	// BinarizePure uses a pure-Go blur and a histogram Otsu threshold.
	BinarizePure
)

func (s BinarizeStrategy) String() string {
	switch s {
	case BinarizeOpenCV:
		return "opencv"
	case BinarizePure:
		return "pure"
	default:
		return "unknown"
	}
}

// AnalysisConfig carries the physiological and quality thresholds used across
// the pipeline. Values are copied, never shared mutable state.
type AnalysisConfig struct {
	// Paper convention: dimensions of one small grid square.
	PaperSecondsPerSquare    float64
	PaperMillivoltsPerSquare float64

	// Grid & calibration estimation.
	MinGridPeaks        int     // fewer consistent grid-line peaks -> confidence 0
	GridSpacingSlackPct float64 // spacing agreement tolerance around the modal pitch
	CalibrationFloor    float64 // below this confidence, amplitudes stay in pixel units
	LegendOCR           bool    // read the printed "25mm/s 10mm/mV" legend via OCR

	// Raster handling.
	Binarize    BinarizeStrategy
	MaxImageDim int // larger images are downscaled before processing
	MinImageDim int // smaller images are rejected as input errors

	// Trace extraction quality gate.
	MinColumnCoverage float64 // fraction of columns that must yield a direct sample
	MinQuality        float64 // coverage x grid-removal floor; below -> extraction failure
	SplineKnotStride  int     // column stride between spline knots

	// Sampling rate assigned to uncalibrated extractions (pixel-per-column
	// signals with no detected time base).
	FallbackSampleRateHz float64

	// Signal conditioning cascade.
	HighPassHz       float64
	LowPassHz        float64
	NotchHz          float64 // mains frequency; 50 or 60 depending on region
	NotchBandwidthHz float64

	// Spectral analysis.
	BandLowHz           float64 // physiologically plausible dominant-frequency band
	BandHighHz          float64
	HarmonicMinFraction float64 // harmonic counts if amplitude > fraction of fundamental
	MaxHarmonics        int

	// AR stability analysis.
	ARMaxOrder        int
	ARRidgeFraction   float64 // identity ridge as a fraction of r[0]
	ARConditionLimit  float64 // past this, fall back to least squares
	StabilityEpsilon  float64 // pole magnitude slack inside the unit circle
	MinSamplesForFit  int

	// Peak & morphology detection.
	PeakMinDistanceSec float64 // physiological rate ceiling (~200 bpm)
	PeakHeightSigma    float64 // threshold in standard deviations of the signal
	QRSMinSec          float64 // widened physiological envelope for width estimates
	QRSMaxSec          float64
	TemplateHalfSec    float64 // half-window around a peak for the beat template

	// Arrhythmia rules.
	BradycardiaBPM   float64
	TachycardiaBPM   float64
	IrregularRRSDSec float64
	QRSWideSec       float64
	QRSBorderlineSec float64

	// Validation.
	ToleranceSec float64

	// Input guards.
	MaxSamples int
}

// Default returns the baseline configuration. The image-quality gates are
// empirical and validated by the synthetic test corpus, not authoritative.
func Default() AnalysisConfig {
	return AnalysisConfig{
		PaperSecondsPerSquare:    0.04, // standard 25 mm/s paper, 1 mm square
		PaperMillivoltsPerSquare: 0.1,  // standard 10 mm/mV gain

		MinGridPeaks:        4,
		GridSpacingSlackPct: 0.20,
		CalibrationFloor:    0.5,
		LegendOCR:           false,

		Binarize:    BinarizePure,
		MaxImageDim: 4096,
		MinImageDim: 16,

		MinColumnCoverage: 0.60,
		MinQuality:        0.30,
		SplineKnotStride:  3,

		FallbackSampleRateHz: 250,

		HighPassHz:       0.5,
		LowPassHz:        40,
		NotchHz:          50,
		NotchBandwidthHz: 2,

		BandLowHz:           0.5,
		BandHighHz:          5,
		HarmonicMinFraction: 0.05,
		MaxHarmonics:        8,

		ARMaxOrder:       10,
		ARRidgeFraction:  1e-6,
		ARConditionLimit: 1e12,
		StabilityEpsilon: 1e-9,
		MinSamplesForFit: 16,

		PeakMinDistanceSec: 0.3,
		PeakHeightSigma:    1.0,
		QRSMinSec:          0.020,
		QRSMaxSec:          0.250,
		TemplateHalfSec:    0.125,

		BradycardiaBPM:   60,
		TachycardiaBPM:   100,
		IrregularRRSDSec: 0.15,
		QRSWideSec:       0.120,
		QRSBorderlineSec: 0.100,

		ToleranceSec: 0.050,

		MaxSamples: 10_000_000,
	}
}

// WithNotch returns a copy tuned to the given mains frequency.
func (c AnalysisConfig) WithNotch(hz float64) AnalysisConfig {
	c.NotchHz = hz
	return c
}

// WithBinarize returns a copy using the given binarization strategy.
func (c AnalysisConfig) WithBinarize(s BinarizeStrategy) AnalysisConfig {
	c.Binarize = s
	return c
}

// WithLegendOCR returns a copy with legend OCR enabled or disabled.
func (c AnalysisConfig) WithLegendOCR(enabled bool) AnalysisConfig {
	c.LegendOCR = enabled
	return c
}

// FromEnv overlays environment overrides onto the default configuration.
func FromEnv() AnalysisConfig {
	c := Default()
	c.NotchHz = getEnvFloat("ECG_NOTCH_HZ", c.NotchHz)
	c.MinColumnCoverage = getEnvFloat("ECG_MIN_COLUMN_COVERAGE", c.MinColumnCoverage)
	c.MinQuality = getEnvFloat("ECG_MIN_QUALITY", c.MinQuality)
	c.CalibrationFloor = getEnvFloat("ECG_CALIBRATION_FLOOR", c.CalibrationFloor)
	c.FallbackSampleRateHz = getEnvFloat("ECG_FALLBACK_FS", c.FallbackSampleRateHz)
	c.MaxImageDim = getEnvInt("ECG_MAX_IMAGE_DIM", c.MaxImageDim)
	if os.Getenv("ECG_BINARIZE") == "opencv" {
		c.Binarize = BinarizeOpenCV
	}
	if os.Getenv("ECG_LEGEND_OCR") == "1" {
		c.LegendOCR = true
	}
	return c
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
