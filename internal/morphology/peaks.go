// Package morphology locates heartbeat fiducial points (R-peaks) on a
// conditioned waveform and derives per-beat and aggregate features: RR
// intervals, heart rate and its variability, QRS width and QT/ST estimates.
package morphology

import (
	"sort"

	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/config"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/pkg/mathutil"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/pkg/wave"
)

// PeakSet holds detected fiducial points as strictly increasing sample
// indices with a per-point derivation confidence.
type PeakSet struct {
	Indices    []int     `json:"indices"`
	Confidence []float64 `json:"confidence"`
}

// Len returns the number of peaks.
func (p PeakSet) Len() int { return len(p.Indices) }

// DetectPeaks finds R-peak candidates on the z-normalized signal: local
// maxima above a deviation-derived height threshold, thinned greedily by
// amplitude under a minimum inter-peak distance that enforces a
// physiological rate ceiling.
func DetectPeaks(w *wave.Waveform, cfg config.AnalysisConfig) PeakSet {
	if w == nil || w.Len() < 3 {
		return PeakSet{}
	}
	norm := w.Normalized().Samples
	threshold := cfg.PeakHeightSigma

	minDist := int(cfg.PeakMinDistanceSec * w.SampleRate)
	if minDist < 1 {
		minDist = 1
	}

	type candidate struct {
		idx int
		amp float64
	}
	var cands []candidate
	for i := 1; i < len(norm)-1; i++ {
		if norm[i] >= threshold && norm[i] >= norm[i-1] && norm[i] > norm[i+1] {
			cands = append(cands, candidate{i, norm[i]})
		}
	}
	if len(cands) == 0 {
		return PeakSet{}
	}

	// Tallest first; a candidate inside the refractory distance of an
	// accepted peak (typically a T wave shadowing its R) is dropped.
	sort.Slice(cands, func(i, j int) bool { return cands[i].amp > cands[j].amp })
	maxAmp := cands[0].amp

	var accepted []candidate
	for _, c := range cands {
		ok := true
		for _, a := range accepted {
			if absInt(c.idx-a.idx) < minDist {
				ok = false
				break
			}
		}
		if ok {
			accepted = append(accepted, c)
		}
	}
	sort.Slice(accepted, func(i, j int) bool { return accepted[i].idx < accepted[j].idx })

	ps := PeakSet{
		Indices:    make([]int, len(accepted)),
		Confidence: make([]float64, len(accepted)),
	}
	for i, c := range accepted {
		ps.Indices[i] = c.idx
		ps.Confidence[i] = mathutil.Clamp(c.amp/maxAmp, 0, 1)
	}
	return ps
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
