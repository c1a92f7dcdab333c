package morphology

import (
	"math"
	"testing"

	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/config"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/synth"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/pkg/wave"
)

func synthWave(t *testing.T, bpm, seconds float64) (*wave.Waveform, []int) {
	t.Helper()
	gen := synth.NewGenerator(250, bpm, 0)
	w, err := wave.New(gen.Record(seconds), 250, wave.UnitMillivolts)
	if err != nil {
		t.Fatal(err)
	}
	return w, gen.PeakIndices(seconds)
}

func TestDetectPeaksOnSynthetic(t *testing.T) {
	cfg := config.Default()
	w, ref := synthWave(t, 72, 10)

	ps := DetectPeaks(w, cfg)
	if ps.Len() != len(ref) {
		t.Fatalf("detected %d peaks, want %d (reference %v, got %v)",
			ps.Len(), len(ref), ref, ps.Indices)
	}
	for i := 1; i < ps.Len(); i++ {
		if ps.Indices[i] <= ps.Indices[i-1] {
			t.Fatalf("peak indices not strictly increasing: %v", ps.Indices)
		}
	}
	for i, idx := range ps.Indices {
		if d := idx - ref[i]; d < -4 || d > 4 {
			t.Errorf("peak %d at %d, reference %d", i, idx, ref[i])
		}
	}
	if len(ps.Confidence) != ps.Len() {
		t.Fatalf("confidence length %d != %d peaks", len(ps.Confidence), ps.Len())
	}
	for i, c := range ps.Confidence {
		if c <= 0 || c > 1 {
			t.Errorf("peak %d confidence %g outside (0,1]", i, c)
		}
	}
}

func TestAnalyzeHeartRate(t *testing.T) {
	cfg := config.Default()
	w, _ := synthWave(t, 72, 10)

	rep := Analyze(w, cfg)
	if rep.Status != StatusOK {
		t.Fatalf("status = %v, want ok", rep.Status)
	}
	hr := float64(rep.MeanHeartRateBPM)
	if math.Abs(hr-72) > 3 {
		t.Errorf("mean heart rate = %.1f bpm, want 72 +/- 3", hr)
	}
	if hrv := float64(rep.HRVSDSec); !rep.HRVSDSec.Defined() || hrv > 0.02 {
		t.Errorf("regular rhythm HRV = %v sec, want < 0.02", rep.HRVSDSec)
	}
	if len(rep.RRIntervalsSec) != rep.Peaks.Len()-1 {
		t.Errorf("%d RR intervals for %d peaks", len(rep.RRIntervalsSec), rep.Peaks.Len())
	}
	if qrs := float64(rep.QRSMedianSec); rep.QRSMedianSec.Defined() {
		if qrs < cfg.QRSMinSec || qrs > cfg.QRSMaxSec {
			t.Errorf("QRS median %.3f sec outside plausible range", qrs)
		}
	}
}

func TestAnalyzeFastRate(t *testing.T) {
	w, ref := synthWave(t, 150, 12)

	rep := Analyze(w, config.Default())
	if rep.Status != StatusOK {
		t.Fatalf("status = %v, want ok", rep.Status)
	}
	if rep.Peaks.Len() != len(ref) {
		t.Errorf("detected %d peaks, want %d", rep.Peaks.Len(), len(ref))
	}
	hr := float64(rep.MeanHeartRateBPM)
	if math.Abs(hr-150) > 5 {
		t.Errorf("mean heart rate = %.1f bpm, want 150 +/- 5", hr)
	}
}

func TestAnalyzeFlatSignal(t *testing.T) {
	xs := make([]float64, 1000)
	w, _ := wave.New(xs, 250, wave.UnitMillivolts)

	rep := Analyze(w, config.Default())
	if rep.Status != StatusInsufficient {
		t.Fatalf("status = %v, want insufficient", rep.Status)
	}
	if rep.MeanHeartRateBPM.Defined() {
		t.Error("mean heart rate defined with no beats")
	}
	if rep.QRSMedianSec.Defined() {
		t.Error("QRS median defined with no beats")
	}
}

// spikeSignal places single-sample spikes in an otherwise flat trace. A
// one-sample spike defeats all three width measurements, so every beat's
// estimate fails.
func spikeSignal(n int, peaks []int) []float64 {
	xs := make([]float64, n)
	for _, p := range peaks {
		xs[p] = 1
	}
	return xs
}

func TestQRSWidthsParallelToPeaks(t *testing.T) {
	cfg := config.Default()

	w, _ := synthWave(t, 72, 10)
	ps := DetectPeaks(w, cfg)
	perBeat := qrsWidths(w.Normalized().Samples, ps.Indices, w.SampleRate, cfg)
	if len(perBeat) != ps.Len() {
		t.Fatalf("%d width slots for %d peaks", len(perBeat), ps.Len())
	}

	// Failed estimates must hold their slots instead of shifting the
	// widths of later beats onto earlier ones.
	spikes := []int{800, 2000, 3200}
	perBeat = qrsWidths(spikeSignal(4000, spikes), spikes, 1000, cfg)
	if len(perBeat) != len(spikes) {
		t.Fatalf("%d width slots for %d spike beats", len(perBeat), len(spikes))
	}
	for i, width := range perBeat {
		if !math.IsNaN(width) {
			t.Errorf("spike beat %d got width %.3f, want undefined", i, width)
		}
	}
}

func TestFromPeaksSkipsUndefinedWidths(t *testing.T) {
	spikes := []int{800, 2000, 3200}
	w, err := wave.New(spikeSignal(4000, spikes), 1000, wave.UnitMillivolts)
	if err != nil {
		t.Fatal(err)
	}

	rep := FromPeaks(w, PeakSet{Indices: spikes, Confidence: []float64{1, 1, 1}}, config.Default())
	if rep.Status != StatusOK {
		t.Fatalf("status = %v, want ok", rep.Status)
	}
	if len(rep.QRSWidthsSec) != 0 {
		t.Errorf("exposed %d widths for beats with no usable estimate", len(rep.QRSWidthsSec))
	}
	if rep.QRSMedianSec.Defined() {
		t.Errorf("QRS median defined with no usable widths: %v", float64(rep.QRSMedianSec))
	}
	if !rep.QTMeanSec.Defined() {
		t.Error("QT mean undefined; failed widths should fall back to the nominal half-width")
	}
}

func TestFromPeaksSinglePeak(t *testing.T) {
	w, _ := synthWave(t, 72, 10)
	rep := FromPeaks(w, PeakSet{Indices: []int{100}, Confidence: []float64{1}}, config.Default())
	if rep.Status != StatusInsufficient {
		t.Errorf("status = %v, want insufficient for a single peak", rep.Status)
	}
}
