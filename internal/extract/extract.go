// Package extract converts a binarized ECG raster into an ordered waveform.
// It walks the mask column by column taking the centroid of the largest
// foreground run, fills broken-trace columns from their nearest valid
// neighbors, and smooths the result with a monotone cubic spline. Extraction
// quality is gated: a near-empty or grid-polluted mask is reported as a
// failure with a reason, never as a misleading near-empty signal.
package extract

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"

	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/config"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/grid"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/raster"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/pkg/wave"
)

// Status reports the outcome of an extraction attempt.
type Status int

const (
	// StatusOK means a usable waveform was produced.
	StatusOK Status = iota
	// StatusFailed means the trace could not be recovered; Reason says why.
	StatusFailed
)

func (s Status) String() string {
	if s == StatusOK {
		return "ok"
	}
	return "failed"
}

// Result is the extraction outcome. On failure Wave is nil and Reason is set.
type Result struct {
	Status      Status          `json:"status"`
	Reason      string          `json:"reason,omitempty"`
	Wave        *wave.Waveform  `json:"wave,omitempty"`
	Coverage    float64         `json:"coverage"`     // fraction of columns with a direct sample
	GridRemoval float64         `json:"grid_removal"` // fraction of ink explained by the trace
	Quality     float64         `json:"quality"`      // coverage x grid removal
	Calibrated  bool            `json:"calibrated"`
	Calibration grid.Calibration `json:"calibration"`
}

// columnSample is one column's trace estimate.
type columnSample struct {
	y     float64
	valid bool
}

// Extract digitizes the trace mask into a waveform using the calibration.
func Extract(bm *raster.Bitmap, cal grid.Calibration, cfg config.AnalysisConfig) *Result {
	res := &Result{Status: StatusFailed, Calibration: cal}
	if bm == nil || bm.W == 0 || bm.H == 0 {
		res.Reason = "empty bitmap"
		return res
	}

	cols, usedInk, totalInk := scanColumns(bm)

	valid := 0
	for _, c := range cols {
		if c.valid {
			valid++
		}
	}
	res.Coverage = float64(valid) / float64(len(cols))
	if totalInk > 0 {
		res.GridRemoval = float64(usedInk) / float64(totalInk)
	}
	res.Quality = res.Coverage * res.GridRemoval

	if totalInk == 0 {
		res.Reason = "no trace ink detected in image"
		return res
	}
	if frac := float64(totalInk) / float64(bm.W*bm.H); frac > 0.5 {
		res.Reason = fmt.Sprintf("mask is %.0f%% foreground; not a trace", frac*100)
		return res
	}
	if res.Coverage < cfg.MinColumnCoverage {
		res.Reason = fmt.Sprintf("trace covers only %.0f%% of columns (minimum %.0f%%)",
			res.Coverage*100, cfg.MinColumnCoverage*100)
		return res
	}
	if res.Quality < cfg.MinQuality {
		res.Reason = fmt.Sprintf("extraction quality %.2f below floor %.2f (grid residue likely)",
			res.Quality, cfg.MinQuality)
		return res
	}

	ys := fillMissing(cols)
	ys = splineSmooth(ys, cfg.SplineKnotStride)

	// Image y grows downward; flip around the baseline so positive amplitude
	// means upward deflection on paper.
	baseline := stat.Mean(ys, nil)
	amps := make([]float64, len(ys))
	for i, y := range ys {
		amps[i] = baseline - y
	}

	fs := cfg.FallbackSampleRateHz
	unit := wave.UnitNormalized
	if cal.Usable(cfg.CalibrationFloor) {
		fs = cal.PixelsPerSecond // one sample per pixel column
		unit = wave.UnitMillivolts
		for i := range amps {
			amps[i] /= cal.PixelsPerMillivolt
		}
		res.Calibrated = true
	}

	w, err := wave.New(amps, fs, unit)
	if err != nil {
		res.Reason = fmt.Sprintf("assembling waveform: %v", err)
		return res
	}
	res.Status = StatusOK
	res.Wave = w
	return res
}

// scanColumns finds the largest vertical foreground run per column and its
// centroid. It also accounts ink usage: pixels inside chosen runs versus all
// foreground, which estimates how much grid residue survived binarization.
func scanColumns(bm *raster.Bitmap) (cols []columnSample, usedInk, totalInk int) {
	cols = make([]columnSample, bm.W)
	for x := 0; x < bm.W; x++ {
		bestStart, bestLen := -1, 0
		runStart, runLen := -1, 0
		colInk := 0
		for y := 0; y <= bm.H; y++ {
			if y < bm.H && bm.At(x, y) {
				if runLen == 0 {
					runStart = y
				}
				runLen++
				colInk++
				continue
			}
			if runLen > bestLen {
				bestStart, bestLen = runStart, runLen
			}
			runLen = 0
		}
		totalInk += colInk
		if bestLen > 0 {
			usedInk += bestLen
			cols[x] = columnSample{y: float64(bestStart) + float64(bestLen-1)/2, valid: true}
		}
	}
	return cols, usedInk, totalInk
}

// fillMissing interpolates broken-trace columns linearly between the nearest
// valid neighbors; runs off either edge take the nearest valid value.
func fillMissing(cols []columnSample) []float64 {
	ys := make([]float64, len(cols))
	lastValid := -1
	for i, c := range cols {
		if !c.valid {
			continue
		}
		ys[i] = c.y
		if lastValid == -1 {
			// Extend the first valid value to the left edge.
			for j := 0; j < i; j++ {
				ys[j] = c.y
			}
		} else if lastValid < i-1 {
			span := float64(i - lastValid)
			for j := lastValid + 1; j < i; j++ {
				t := float64(j-lastValid) / span
				ys[j] = ys[lastValid]*(1-t) + c.y*t
			}
		}
		lastValid = i
	}
	if lastValid == -1 {
		return ys
	}
	for j := lastValid + 1; j < len(ys); j++ {
		ys[j] = ys[lastValid]
	}
	return ys
}

// splineSmooth fits a monotone cubic (Fritsch-Butland) through decimated
// knots and re-samples every column, suppressing pixel jaggedness without
// introducing overshoot between knots.
func splineSmooth(ys []float64, stride int) []float64 {
	if stride < 2 || len(ys) < 2*stride {
		return ys
	}
	var xs, ks []float64
	for i := 0; i < len(ys); i += stride {
		xs = append(xs, float64(i))
		ks = append(ks, ys[i])
	}
	if xs[len(xs)-1] != float64(len(ys)-1) {
		xs = append(xs, float64(len(ys)-1))
		ks = append(ks, ys[len(ys)-1])
	}

	var fb interp.FritschButland
	if err := fb.Fit(xs, ks); err != nil {
		return ys
	}
	out := make([]float64, len(ys))
	for i := range ys {
		out[i] = fb.Predict(float64(i))
	}
	return out
}
