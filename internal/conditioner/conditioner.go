// Package conditioner applies the fixed filter cascade to a waveform:
// high-pass (baseline wander), mains notch (power-line interference), then
// low-pass (EMG/high-frequency noise). Every stage is zero-phase: the filter
// runs forward and then backward over the data with fresh state, so filtering
// shifts no fiducial points. Stages that cannot run on a given signal are
// skipped and recorded, never raised.
package conditioner

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/jfcg/butter"

	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/config"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/pkg/wave"
)

// minFilterLen is the shortest signal a forward-backward pass makes sense on.
const minFilterLen = 16

// StageReport records whether one cascade stage ran.
type StageReport struct {
	Name    string `json:"name"`
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"`
}

// Result carries the conditioned waveform and the per-stage reports.
type Result struct {
	Wave   *wave.Waveform `json:"wave"`
	Stages []StageReport  `json:"stages"`
}

// filter is one directional IIR pass.
type filter interface {
	Next(x float64) float64
}

// Condition runs the cascade and returns a new waveform; the input is never
// modified. A nil logger disables stage logging.
func Condition(w *wave.Waveform, cfg config.AnalysisConfig, log *slog.Logger) Result {
	res := Result{Wave: w}

	res.apply("highpass", w.Len(), func() (*wave.Waveform, string) {
		return highPass(res.Wave, cfg.HighPassHz)
	}, log)
	res.apply("notch", w.Len(), func() (*wave.Waveform, string) {
		return notch(res.Wave, cfg.NotchHz, cfg.NotchBandwidthHz)
	}, log)
	res.apply("lowpass", w.Len(), func() (*wave.Waveform, string) {
		return lowPass(res.Wave, cfg.LowPassHz)
	}, log)

	return res
}

func (r *Result) apply(name string, n int, stage func() (*wave.Waveform, string), log *slog.Logger) {
	rep := StageReport{Name: name}
	if n < minFilterLen {
		rep.Reason = fmt.Sprintf("signal shorter than %d samples", minFilterLen)
	} else if out, reason := stage(); reason != "" {
		rep.Reason = reason
	} else {
		rep.Applied = true
		r.Wave = out
	}
	if log != nil && !rep.Applied {
		log.Warn("conditioning stage skipped", "stage", name, "reason", rep.Reason)
	}
	r.Stages = append(r.Stages, rep)
}

func highPass(w *wave.Waveform, cutoffHz float64) (*wave.Waveform, string) {
	wc := 2 * math.Pi * cutoffHz / w.SampleRate
	if butter.NewHighPass1(wc) == nil {
		return nil, fmt.Sprintf("high-pass cutoff %.3g Hz outside design range at fs=%.4g Hz", cutoffHz, w.SampleRate)
	}
	mk := func() filter { return butter.NewHighPass1(wc) }
	return w.Derive(filtfilt(w.Samples, mk)), ""
}

func lowPass(w *wave.Waveform, cutoffHz float64) (*wave.Waveform, string) {
	if cutoffHz >= w.SampleRate/2 {
		return nil, fmt.Sprintf("low-pass cutoff %.4g Hz at or above Nyquist (fs=%.4g Hz)", cutoffHz, w.SampleRate)
	}
	wc := 2 * math.Pi * cutoffHz / w.SampleRate
	if butter.NewLowPass1(wc) == nil {
		return nil, fmt.Sprintf("low-pass cutoff %.4g Hz outside design range at fs=%.4g Hz", cutoffHz, w.SampleRate)
	}
	mk := func() filter { return butter.NewLowPass1(wc) }
	return w.Derive(filtfilt(w.Samples, mk)), ""
}

// notch applies a second-order band-stop biquad at the mains frequency.
// Neither butter nor the FFT library ships a band-stop design, so the
// standard constrained-pole biquad is derived here directly.
func notch(w *wave.Waveform, freqHz, bandwidthHz float64) (*wave.Waveform, string) {
	if freqHz >= w.SampleRate/2 {
		return nil, fmt.Sprintf("notch %.4g Hz at or above Nyquist (fs=%.4g Hz)", freqHz, w.SampleRate)
	}
	w0 := 2 * math.Pi * freqHz / w.SampleRate
	r := 1 - math.Pi*bandwidthHz/w.SampleRate
	if r <= 0 || r >= 1 {
		return nil, fmt.Sprintf("notch bandwidth %.4g Hz invalid at fs=%.4g Hz", bandwidthHz, w.SampleRate)
	}
	cw := math.Cos(w0)
	// Unity gain at DC.
	k := (1 - 2*r*cw + r*r) / (2 - 2*cw)
	mk := func() filter {
		return &biquad{
			b0: k, b1: -2 * k * cw, b2: k,
			a1: -2 * r * cw, a2: r * r,
		}
	}
	return w.Derive(filtfilt(w.Samples, mk)), ""
}

// biquad is a direct-form-II-transposed second-order section.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
	z1, z2     float64
}

func (f *biquad) Next(x float64) float64 {
	y := f.b0*x + f.z1
	f.z1 = f.b1*x - f.a1*y + f.z2
	f.z2 = f.b2*x - f.a2*y
	return y
}

// filtfilt runs a fresh filter forward over x, then another fresh filter
// backward over the intermediate, canceling the phase response.
func filtfilt(x []float64, mk func() filter) []float64 {
	n := len(x)
	fwd := make([]float64, n)
	f := mk()
	for i, v := range x {
		fwd[i] = f.Next(v)
	}
	out := make([]float64, n)
	b := mk()
	for i := n - 1; i >= 0; i-- {
		out[i] = b.Next(fwd[i])
	}
	return out
}
