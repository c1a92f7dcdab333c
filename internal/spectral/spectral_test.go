package spectral

import (
	"math"
	"testing"

	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/config"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/pkg/wave"
)

func sine(freq, fs float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / fs)
	}
	return out
}

func TestPureSinusoidDominant(t *testing.T) {
	// 2 Hz lands exactly on bin 8 at fs=256, N=1024.
	const fs, freq = 256.0, 2.0
	w, _ := wave.New(sine(freq, fs, 1024), fs, wave.UnitMillivolts)

	res := Analyze(w, config.Default())
	if res.Status != StatusOK {
		t.Fatalf("status = %v, want ok", res.Status)
	}

	binWidth := fs / 1024
	if math.Abs(float64(res.DominantHz)-freq) > binWidth {
		t.Errorf("dominant = %g Hz, want %g within %g", float64(res.DominantHz), freq, binWidth)
	}
	if float64(res.THDPercent) >= 1 {
		t.Errorf("THD = %g%%, want < 1%% for a pure tone", float64(res.THDPercent))
	}
	if float64(res.PurityPercent) < 95 {
		t.Errorf("purity = %g%%, want > 95%% for a pure tone", float64(res.PurityPercent))
	}
}

func TestHarmonicDetection(t *testing.T) {
	const fs, freq = 256.0, 2.0
	base := sine(freq, fs, 1024)
	second := sine(2*freq, fs, 1024)
	mixed := make([]float64, len(base))
	for i := range mixed {
		mixed[i] = base[i] + 0.3*second[i]
	}
	w, _ := wave.New(mixed, fs, wave.UnitMillivolts)

	res := Analyze(w, config.Default())
	if res.Status != StatusOK {
		t.Fatalf("status = %v, want ok", res.Status)
	}
	if len(res.Harmonics) != 1 {
		t.Fatalf("harmonics = %d, want 1 (%v)", len(res.Harmonics), res.Harmonics)
	}
	h := res.Harmonics[0]
	if h.Order != 2 || math.Abs(h.FrequencyHz-2*freq) > fs/1024 {
		t.Errorf("harmonic = order %d at %g Hz, want order 2 at %g Hz", h.Order, h.FrequencyHz, 2*freq)
	}
	if thd := float64(res.THDPercent); math.Abs(thd-30) > 3 {
		t.Errorf("THD = %g%%, want ~30%%", thd)
	}
}

func TestBandFallback(t *testing.T) {
	// 20 Hz is outside the 0.5-5 Hz band; the analyzer must fall back to
	// the global maximum rather than reporting nothing.
	const fs, freq = 256.0, 20.0
	w, _ := wave.New(sine(freq, fs, 1024), fs, wave.UnitMillivolts)

	res := Analyze(w, config.Default())
	if res.Status != StatusOK {
		t.Fatalf("status = %v, want ok", res.Status)
	}
	if math.Abs(float64(res.DominantHz)-freq) > fs/1024 {
		t.Errorf("dominant = %g Hz, want %g", float64(res.DominantHz), freq)
	}
}

func TestTooShortSignal(t *testing.T) {
	w, _ := wave.New([]float64{1}, 100, wave.UnitMillivolts)
	res := Analyze(w, config.Default())
	if res.Status != StatusInsufficient {
		t.Errorf("status = %v, want insufficient_data", res.Status)
	}
	if res.DominantHz.Defined() {
		t.Error("dominant frequency should be undefined for a one-sample signal")
	}
}

func TestConstantSignalDegenerate(t *testing.T) {
	samples := make([]float64, 256)
	for i := range samples {
		samples[i] = 3.3
	}
	w, _ := wave.New(samples, 100, wave.UnitMillivolts)

	res := Analyze(w, config.Default())
	if res.Status != StatusDegenerate {
		t.Errorf("status = %v, want degenerate", res.Status)
	}
	if res.THDPercent.Defined() {
		t.Error("THD should be undefined for a constant signal")
	}
}
