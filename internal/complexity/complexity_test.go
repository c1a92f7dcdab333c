package complexity

import (
	"math"
	"testing"

	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/pkg/wave"
)

func mustWave(t *testing.T, samples []float64, fs float64) *wave.Waveform {
	t.Helper()
	w, err := wave.New(samples, fs, wave.UnitNormalized)
	if err != nil {
		t.Fatalf("wave.New: %v", err)
	}
	return w
}

func TestComputeRampRatioIsOne(t *testing.T) {
	samples := make([]float64, 100)
	for i := range samples {
		samples[i] = float64(i) / 99
	}
	res := Compute(mustWave(t, samples, 100))
	if res.Status != StatusOK {
		t.Fatalf("status = %v, want ok", res.Status)
	}
	// A monotone ramp's path length equals its amplitude.
	if math.Abs(float64(res.Ratio)-1) > 1e-9 {
		t.Errorf("ratio = %v, want 1", float64(res.Ratio))
	}
}

func TestComputeSineRatio(t *testing.T) {
	const (
		fs   = 256.0
		freq = 2.0
		n    = 1024
	)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * freq * float64(i) / fs)
	}
	res := Compute(mustWave(t, samples, fs))
	if res.Status != StatusOK {
		t.Fatalf("status = %v, want ok", res.Status)
	}
	// Each full cycle walks 4x the unit amplitude, peak-to-peak is 2,
	// so 8 cycles give a ratio of 2*freq*duration = 16.
	if got := float64(res.Ratio); math.Abs(got-16) > 0.1 {
		t.Errorf("ratio = %v, want ~16", got)
	}
	if got := float64(res.PeakToPeak); math.Abs(got-2) > 1e-9 {
		t.Errorf("peak-to-peak = %v, want 2", got)
	}
}

func TestComputeConstantIsDegenerate(t *testing.T) {
	samples := make([]float64, 64)
	for i := range samples {
		samples[i] = 3.3
	}
	res := Compute(mustWave(t, samples, 100))
	if res.Status != StatusDegenerate {
		t.Fatalf("status = %v, want degenerate", res.Status)
	}
	if res.Ratio.Defined() {
		t.Errorf("ratio defined for constant input: %v", float64(res.Ratio))
	}
	if float64(res.PeakToPeak) != 0 {
		t.Errorf("peak-to-peak = %v, want 0", float64(res.PeakToPeak))
	}
}

func TestComputeInsufficient(t *testing.T) {
	if res := Compute(nil); res.Status != StatusInsufficient {
		t.Errorf("nil waveform: status = %v, want insufficient", res.Status)
	}
	if res := Compute(mustWave(t, []float64{1.0}, 100)); res.Status != StatusInsufficient {
		t.Errorf("one sample: status = %v, want insufficient", res.Status)
	}
}
