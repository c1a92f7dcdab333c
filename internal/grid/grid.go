// Package grid estimates the printed reference-grid pitch of ECG paper from
// row/column intensity profiles and derives the pixel-to-physical-unit
// calibration. Estimation never fails hard: too few consistent grid lines
// yields a zero-confidence calibration that downstream stages must treat as
// "units unknown".
package grid

import (
	"image"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/config"
)

// Source records where the calibration scale came from.
type Source int

const (
	// SourceNone means no usable calibration was found.
	SourceNone Source = iota
	// SourceGrid means the scale was derived from the detected grid pitch
	// using the standard paper convention.
	SourceGrid
	// SourceLegend means the printed paper legend overrode the convention.
	SourceLegend
)

func (s Source) String() string {
	switch s {
	case SourceGrid:
		return "grid"
	case SourceLegend:
		return "legend"
	default:
		return "none"
	}
}

// Calibration maps pixel distances to physical units.
type Calibration struct {
	PixelsPerSecond    float64 `json:"pixels_per_second"`
	PixelsPerMillivolt float64 `json:"pixels_per_millivolt"`
	ColumnPitchPx      float64 `json:"column_pitch_px"`
	RowPitchPx         float64 `json:"row_pitch_px"`
	Confidence         float64 `json:"confidence"`
	Source             Source  `json:"source"`
}

// Usable reports whether the calibration clears the configured confidence
// floor. Below it, amplitudes stay in normalized pixel units.
func (c Calibration) Usable(floor float64) bool {
	return c.Confidence >= floor && c.PixelsPerSecond > 0 && c.PixelsPerMillivolt > 0
}

// Estimate detects the grid pitch along both axes of a grayscale raster.
func Estimate(g *image.Gray, cfg config.AnalysisConfig) Calibration {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()

	colProfile := make([]float64, w)
	rowProfile := make([]float64, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := 255 - float64(g.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			colProfile[x] += d
			rowProfile[y] += d
		}
	}
	for x := range colProfile {
		colProfile[x] /= float64(h)
	}
	for y := range rowProfile {
		rowProfile[y] /= float64(w)
	}

	colPitch, colConf, colPeaks := pitchFromProfile(colProfile, cfg)
	rowPitch, rowConf, rowPeaks := pitchFromProfile(rowProfile, cfg)

	if colPeaks < cfg.MinGridPeaks || rowPeaks < cfg.MinGridPeaks {
		return Calibration{Source: SourceNone}
	}

	cal := Calibration{
		ColumnPitchPx: colPitch,
		RowPitchPx:    rowPitch,
		Confidence:    math.Min(colConf, rowConf),
		Source:        SourceGrid,
	}
	if cfg.PaperSecondsPerSquare > 0 {
		cal.PixelsPerSecond = colPitch / cfg.PaperSecondsPerSquare
	}
	if cfg.PaperMillivoltsPerSquare > 0 {
		cal.PixelsPerMillivolt = rowPitch / cfg.PaperMillivoltsPerSquare
	}
	return cal
}

// ApplyLegend overrides the convention-derived scale with a parsed paper
// legend (mm/s and mm/mV). One printed millimeter is one small square, so the
// pitch in pixels stands in for a millimeter.
func ApplyLegend(cal Calibration, mmPerSec, mmPerMV float64) Calibration {
	if cal.Source == SourceNone || mmPerSec <= 0 || mmPerMV <= 0 {
		return cal
	}
	cal.PixelsPerSecond = cal.ColumnPitchPx * mmPerSec
	cal.PixelsPerMillivolt = cal.RowPitchPx * mmPerMV
	cal.Source = SourceLegend
	// A machine-printed legend pins the convention down.
	cal.Confidence = math.Min(1, cal.Confidence+0.25)
	return cal
}

// pitchFromProfile finds periodic grid-line peaks in an intensity profile and
// returns the modal spacing, a consistency score in [0,1], and the peak count.
func pitchFromProfile(profile []float64, cfg config.AnalysisConfig) (pitch, confidence float64, peaks int) {
	smoothed := movingAverage(profile, 3)
	idx := localMaxima(smoothed, 4)
	if len(idx) < 2 {
		return 0, 0, len(idx)
	}

	spacings := make([]float64, 0, len(idx)-1)
	for i := 1; i < len(idx); i++ {
		spacings = append(spacings, float64(idx[i]-idx[i-1]))
	}
	sort.Float64s(spacings)
	median := spacings[len(spacings)/2]
	if median <= 0 {
		return 0, 0, len(idx)
	}

	// Modal pitch: mean of spacings agreeing with the median within the
	// configured slack. Their fraction is the consistency score.
	var sum float64
	consistent := 0
	for _, s := range spacings {
		if math.Abs(s-median) <= cfg.GridSpacingSlackPct*median {
			sum += s
			consistent++
		}
	}
	if consistent == 0 {
		return 0, 0, len(idx)
	}
	return sum / float64(consistent), float64(consistent) / float64(len(spacings)), len(idx)
}

// localMaxima returns indices of profile values that exceed a deviation-based
// threshold and are the largest sample within minSep on either side.
// Selection is greedy by height, mirroring a minimum-separation constraint.
func localMaxima(profile []float64, minSep int) []int {
	if len(profile) < 3 {
		return nil
	}
	mean := stat.Mean(profile, nil)
	sd := stat.StdDev(profile, nil)
	threshold := mean + 0.5*sd

	type candidate struct {
		idx int
		val float64
	}
	var cands []candidate
	for i := 1; i < len(profile)-1; i++ {
		if profile[i] >= threshold && profile[i] >= profile[i-1] && profile[i] > profile[i+1] {
			cands = append(cands, candidate{i, profile[i]})
		}
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].val > cands[j].val })

	var picked []int
	for _, c := range cands {
		ok := true
		for _, p := range picked {
			if abs(c.idx-p) < minSep {
				ok = false
				break
			}
		}
		if ok {
			picked = append(picked, c.idx)
		}
	}
	sort.Ints(picked)
	return picked
}

func movingAverage(data []float64, window int) []float64 {
	if window < 2 || len(data) < window {
		out := make([]float64, len(data))
		copy(out, data)
		return out
	}
	out := make([]float64, len(data))
	half := window / 2
	for i := range data {
		lo, hi := i-half, i+half
		if lo < 0 {
			lo = 0
		}
		if hi >= len(data) {
			hi = len(data) - 1
		}
		var sum float64
		for j := lo; j <= hi; j++ {
			sum += data[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
