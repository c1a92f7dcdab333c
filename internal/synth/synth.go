// Package synth produces deterministic ECG-like records and rendered paper
// rasters for tests and the fixture command. The waveform is deliberately
// non-clinical: a baseline drift plus gaussian P/QRS/T bumps per cycle.
package synth

import "math"

// Generator synthesizes an ECG-shaped signal.
type Generator struct {
	SampleRate float64 // Hz
	RateBPM    float64
	Noise      float64 // 0 disables the deterministic noise term
}

// NewGenerator returns a generator at typical monitor settings.
func NewGenerator(sampleRate, rateBPM, noise float64) *Generator {
	return &Generator{SampleRate: sampleRate, RateBPM: rateBPM, Noise: noise}
}

// Record synthesizes durationSec seconds of samples.
func (g *Generator) Record(durationSec float64) []float64 {
	n := int(durationSec * g.SampleRate)
	out := make([]float64, n)
	cycleHz := g.RateBPM / 60
	phase := 0.0
	for i := 0; i < n; i++ {
		out[i] = g.sample(phase, float64(i)/g.SampleRate)
		phase += cycleHz / g.SampleRate
		if phase >= 1 {
			phase -= 1
		}
	}
	return out
}

// sample evaluates one sample at a normalized cycle phase t in [0,1).
func (g *Generator) sample(t, wallSec float64) float64 {
	// Slow respiratory baseline drift.
	baseline := 0.05 * math.Sin(2*math.Pi*0.33*wallSec)

	p := 0.08 * gauss(t, 0.18, 0.03)
	q := -0.12 * gauss(t, 0.30, 0.01)
	r := 1.00 * gauss(t, 0.32, 0.008)
	s := -0.25 * gauss(t, 0.35, 0.012)
	tw := 0.25 * gauss(t, 0.60, 0.06)

	// Cheap deterministic noise keeps test fixtures reproducible.
	n := g.Noise * (2*fract(math.Sin(12345.678*t+wallSec)*9876.543) - 1)

	return baseline + p + q + r + s + tw + n
}

// PeakIndices returns the sample indices of the R peaks the generator will
// place in a record of the given duration, for use as reference annotations.
func (g *Generator) PeakIndices(durationSec float64) []int {
	n := int(durationSec * g.SampleRate)
	cycleSamples := g.SampleRate * 60 / g.RateBPM
	var peaks []int
	// R peak sits at phase 0.32 of each cycle.
	for c := 0; ; c++ {
		idx := int((float64(c) + 0.32) * cycleSamples)
		if idx >= n {
			break
		}
		peaks = append(peaks, idx)
	}
	return peaks
}

func gauss(x, mu, sigma float64) float64 {
	z := (x - mu) / sigma
	return math.Exp(-0.5 * z * z)
}

func fract(x float64) float64 { return x - math.Floor(x) }
