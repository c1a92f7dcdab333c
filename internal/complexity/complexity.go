// Package complexity scores waveform irregularity as the ratio of the
// signal's total path length (total variation) to its peak-to-peak
// amplitude. A straight ramp scores exactly 1; every additional direction
// change raises the ratio. A constant signal has no amplitude to normalize
// by and returns an explicitly flagged degenerate result.
package complexity

import (
	"math"

	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/pkg/mathutil"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/pkg/wave"
)

// Status reports whether the ratio could be formed.
type Status int

const (
	// StatusOK means the ratio is defined.
	StatusOK Status = iota
	// StatusInsufficient means fewer than two samples.
	StatusInsufficient
	// StatusDegenerate means the signal is constant: the path length and
	// amplitude both vanish and the ratio is undefined.
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

// Result is the length/amplitude complexity summary for one waveform.
type Result struct {
	Status         Status         `json:"status"`
	TotalVariation mathutil.Float `json:"total_variation"`
	PeakToPeak     mathutil.Float `json:"peak_to_peak"`
	Ratio          mathutil.Float `json:"ratio"`
}

// Compute derives the complexity ratio of the waveform.
func Compute(w *wave.Waveform) Result {
	undef := mathutil.Float(math.NaN())
	if w == nil || w.Len() < 2 {
		return Result{Status: StatusInsufficient, TotalVariation: undef, PeakToPeak: undef, Ratio: undef}
	}

	lo, hi := w.Samples[0], w.Samples[0]
	var tv float64
	for i := 1; i < len(w.Samples); i++ {
		v := w.Samples[i]
		tv += math.Abs(v - w.Samples[i-1])
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	ptp := hi - lo

	if ptp == 0 || w.IsNearConstant() {
		return Result{
			Status:         StatusDegenerate,
			TotalVariation: mathutil.Float(tv),
			PeakToPeak:     mathutil.Float(ptp),
			Ratio:          undef,
		}
	}
	return Result{
		Status:         StatusOK,
		TotalVariation: mathutil.Float(tv),
		PeakToPeak:     mathutil.Float(ptp),
		Ratio:          mathutil.Float(tv / ptp),
	}
}
