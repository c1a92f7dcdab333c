// Package wave defines the shared waveform value type passed between
// pipeline stages. A Waveform is never modified in place: every processing
// stage derives a new one, so independent analyzers can run concurrently
// over the same input.
package wave

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Unit describes what the sample amplitudes mean.
type Unit int

const (
	// UnitMillivolts indicates amplitudes calibrated to physical millivolts.
	UnitMillivolts Unit = iota
	// UnitNormalized indicates uncalibrated amplitudes in normalized pixel
	// units. Downstream consumers must not attach physical meaning to them.
	UnitNormalized
)

func (u Unit) String() string {
	switch u {
	case UnitMillivolts:
		return "mV"
	case UnitNormalized:
		return "normalized"
	default:
		return "unknown"
	}
}

// Waveform is an ordered sequence of real samples at a fixed sampling rate.
type Waveform struct {
	Samples    []float64 `json:"samples,omitempty"`
	SampleRate float64   `json:"sample_rate_hz"`
	Unit       Unit      `json:"unit"`
}

// New validates and constructs a Waveform. The sample slice is copied so the
// caller cannot alias the waveform's backing storage.
func New(samples []float64, sampleRate float64, unit Unit) (*Waveform, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %g", sampleRate)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("empty sample sequence")
	}
	s := make([]float64, len(samples))
	copy(s, samples)
	return &Waveform{Samples: s, SampleRate: sampleRate, Unit: unit}, nil
}

// Derive returns a new Waveform with the given samples and this waveform's
// sampling rate and unit. Used by stages that transform amplitudes.
func (w *Waveform) Derive(samples []float64) *Waveform {
	s := make([]float64, len(samples))
	copy(s, samples)
	return &Waveform{Samples: s, SampleRate: w.SampleRate, Unit: w.Unit}
}

// Len returns the number of samples.
func (w *Waveform) Len() int { return len(w.Samples) }

// Duration returns the signal length in seconds.
func (w *Waveform) Duration() float64 {
	return float64(len(w.Samples)) / w.SampleRate
}

// Mean returns the sample mean.
func (w *Waveform) Mean() float64 { return stat.Mean(w.Samples, nil) }

// StdDev returns the sample standard deviation.
func (w *Waveform) StdDev() float64 {
	if len(w.Samples) < 2 {
		return 0
	}
	return stat.StdDev(w.Samples, nil)
}

// IsNearConstant reports whether the signal carries effectively no variation.
// Such signals short-circuit the numerical analyzers (a constant input makes
// the AR normal equations singular).
func (w *Waveform) IsNearConstant() bool {
	sd := w.StdDev()
	scale := math.Max(1, math.Abs(w.Mean()))
	return sd < 1e-10*scale
}

// Normalized returns a zero-mean, unit-variance copy. A near-constant signal
// yields a zero-filled copy rather than dividing by a vanishing deviation.
func (w *Waveform) Normalized() *Waveform {
	out := make([]float64, len(w.Samples))
	mean := w.Mean()
	sd := w.StdDev()
	if sd < 1e-12 {
		return w.Derive(out)
	}
	for i, v := range w.Samples {
		out[i] = (v - mean) / sd
	}
	return w.Derive(out)
}
