// Package spectral computes frequency-domain features of a conditioned
// waveform: one-sided magnitude spectrum, dominant frequency within a
// physiologically plausible band, harmonic content, total harmonic
// distortion and spectral purity.
package spectral

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/config"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/pkg/mathutil"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/pkg/wave"
)

// Status reports the analyzability of the input.
type Status int

const (
	// StatusOK means the spectrum carries usable signal.
	StatusOK Status = iota
	// StatusInsufficient means the signal was too short to transform.
	StatusInsufficient
	// StatusDegenerate means the spectrum is empty (constant input).
	StatusDegenerate
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInsufficient:
		return "insufficient_data"
	default:
		return "degenerate"
	}
}

// Harmonic is one detected integer multiple of the fundamental.
type Harmonic struct {
	Order       int     `json:"order"`
	FrequencyHz float64 `json:"frequency_hz"`
	Amplitude   float64 `json:"amplitude"`
}

// Result is the frequency-domain summary for one waveform.
type Result struct {
	Status            Status         `json:"status"`
	Frequencies       []float64      `json:"frequencies,omitempty"`
	Magnitudes        []float64      `json:"magnitudes,omitempty"`
	DominantHz        mathutil.Float `json:"dominant_hz"`
	DominantAmplitude mathutil.Float `json:"dominant_amplitude"`
	Harmonics         []Harmonic     `json:"harmonics,omitempty"`
	THDPercent        mathutil.Float `json:"thd_percent"`
	PurityPercent     mathutil.Float `json:"purity_percent"`
}

// Analyze computes the spectrum of the waveform. Signals shorter than two
// samples return a structured empty result rather than dividing by zero.
func Analyze(w *wave.Waveform, cfg config.AnalysisConfig) Result {
	undef := mathutil.Float(math.NaN())
	if w == nil || w.Len() < 2 {
		return Result{Status: StatusInsufficient, DominantHz: undef, DominantAmplitude: undef, THDPercent: undef, PurityPercent: undef}
	}

	if w.IsNearConstant() {
		return Result{Status: StatusDegenerate, DominantHz: undef, DominantAmplitude: undef, THDPercent: undef, PurityPercent: undef}
	}

	n := w.Len()
	fs := w.SampleRate
	mean := w.Mean()
	x := make([]float64, n)
	for i, v := range w.Samples {
		x[i] = v - mean
	}

	spec := fft.FFTReal(x)
	half := n/2 + 1
	freqs := make([]float64, half)
	mags := make([]float64, half)
	df := fs / float64(n)
	for i := 0; i < half; i++ {
		freqs[i] = float64(i) * df
		m := cmplx.Abs(spec[i]) / float64(n)
		if i > 0 && i < n/2 {
			m *= 2 // fold negative frequencies into the one-sided spectrum
		}
		mags[i] = m
	}

	res := Result{
		Status:      StatusOK,
		Frequencies: freqs,
		Magnitudes:  mags,
	}

	fundIdx := dominantIndex(mags, df, cfg.BandLowHz, cfg.BandHighHz)
	if fundIdx <= 0 || mags[fundIdx] == 0 {
		res.Status = StatusDegenerate
		res.DominantHz, res.DominantAmplitude = undef, undef
		res.THDPercent, res.PurityPercent = undef, undef
		return res
	}

	fundAmp := mags[fundIdx]
	res.DominantHz = mathutil.Float(freqs[fundIdx])
	res.DominantAmplitude = mathutil.Float(fundAmp)

	var harmonicPower float64
	for k := 2; k <= cfg.MaxHarmonics; k++ {
		idx := int(math.Round(float64(k*fundIdx)))
		if idx >= half {
			break
		}
		if mags[idx] > cfg.HarmonicMinFraction*fundAmp {
			res.Harmonics = append(res.Harmonics, Harmonic{
				Order:       k,
				FrequencyHz: freqs[idx],
				Amplitude:   mags[idx],
			})
			harmonicPower += mags[idx] * mags[idx]
		}
	}
	res.THDPercent = mathutil.Float(math.Sqrt(harmonicPower) / fundAmp * 100)

	var totalPower float64
	for i := 1; i < half; i++ {
		totalPower += mags[i] * mags[i]
	}
	if totalPower > 0 {
		res.PurityPercent = mathutil.Float(fundAmp * fundAmp / totalPower * 100)
	} else {
		res.PurityPercent = undef
	}
	return res
}

// dominantIndex picks the tallest bin inside [bandLow, bandHigh]; if the band
// holds no meaningful energy it falls back to the global maximum excluding DC.
func dominantIndex(mags []float64, df, bandLow, bandHigh float64) int {
	global := -1
	for i := 1; i < len(mags); i++ {
		if global == -1 || mags[i] > mags[global] {
			global = i
		}
	}
	if global == -1 || mags[global] == 0 {
		return -1
	}

	lo := int(math.Ceil(bandLow / df))
	hi := int(math.Floor(bandHigh / df))
	if lo < 1 {
		lo = 1
	}
	if hi > len(mags)-1 {
		hi = len(mags) - 1
	}

	best := -1
	for i := lo; i <= hi; i++ {
		if best == -1 || mags[i] > mags[best] {
			best = i
		}
	}
	// FFT numerical noise leaves every bin slightly nonzero; the band only
	// wins if it carries a non-negligible share of the tallest peak.
	if best != -1 && mags[best] > 1e-3*mags[global] {
		return best
	}
	return global
}
