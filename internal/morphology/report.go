package morphology

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/config"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/pkg/mathutil"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/pkg/wave"
)

// Status reports whether enough beats were found for morphology features.
type Status int

const (
	// StatusOK means at least two beats were available.
	StatusOK Status = iota
	// StatusInsufficient means fewer than two peaks were detected.
	StatusInsufficient
)

func (s Status) String() string {
	if s == StatusOK {
		return "ok"
	}
	return "insufficient_data"
}

// Report carries per-beat and aggregate morphology features.
type Report struct {
	Status           Status         `json:"status"`
	Peaks            PeakSet        `json:"peaks"`
	RRIntervalsSec   []float64      `json:"rr_intervals_sec,omitempty"`
	HeartRatesBPM    []float64      `json:"heart_rates_bpm,omitempty"`
	MeanHeartRateBPM mathutil.Float `json:"mean_heart_rate_bpm"`
	MinHeartRateBPM  mathutil.Float `json:"min_heart_rate_bpm"`
	MaxHeartRateBPM  mathutil.Float `json:"max_heart_rate_bpm"`
	HRVSDSec         mathutil.Float `json:"hrv_sd_sec"`
	QRSWidthsSec     []float64      `json:"qrs_widths_sec,omitempty"`
	QRSMedianSec     mathutil.Float `json:"qrs_median_sec"`
	QTMeanSec        mathutil.Float `json:"qt_mean_sec"`
	STDeviation      mathutil.Float `json:"st_deviation"` // in signal amplitude units
}

// Analyze detects peaks and derives the morphology report. Fewer than two
// peaks yields an explicit insufficient-data result.
func Analyze(w *wave.Waveform, cfg config.AnalysisConfig) Report {
	peaks := DetectPeaks(w, cfg)
	return FromPeaks(w, peaks, cfg)
}

// FromPeaks derives the report from an already detected peak set, so
// validation callers can reuse their own fiducials.
func FromPeaks(w *wave.Waveform, peaks PeakSet, cfg config.AnalysisConfig) Report {
	undef := mathutil.Float(math.NaN())
	rep := Report{
		Peaks:            peaks,
		MeanHeartRateBPM: undef,
		MinHeartRateBPM:  undef,
		MaxHeartRateBPM:  undef,
		HRVSDSec:         undef,
		QRSMedianSec:     undef,
		QTMeanSec:        undef,
		STDeviation:      undef,
	}
	if w == nil || peaks.Len() < 2 {
		rep.Status = StatusInsufficient
		return rep
	}
	rep.Status = StatusOK

	fs := w.SampleRate
	times := make([]float64, peaks.Len())
	for i, idx := range peaks.Indices {
		times[i] = float64(idx) / fs
	}
	rr := mathutil.Diff(times)
	hrs := make([]float64, len(rr))
	for i, interval := range rr {
		hrs[i] = 60 / interval
	}
	rep.RRIntervalsSec = rr
	rep.HeartRatesBPM = hrs
	rep.MeanHeartRateBPM = mathutil.Float(stat.Mean(hrs, nil))
	rep.MinHeartRateBPM = mathutil.Float(minOf(hrs))
	rep.MaxHeartRateBPM = mathutil.Float(maxOf(hrs))
	if len(rr) >= 2 {
		rep.HRVSDSec = mathutil.Float(stat.StdDev(rr, nil))
	}

	norm := w.Normalized().Samples
	// perBeat stays parallel to the peak set so qtMean can pair each beat
	// with its own width; only defined widths are exposed in the report.
	perBeat := qrsWidths(norm, peaks.Indices, fs, cfg)
	defined := make([]float64, 0, len(perBeat))
	for _, width := range perBeat {
		if !math.IsNaN(width) {
			defined = append(defined, width)
		}
	}
	rep.QRSWidthsSec = defined
	if len(defined) > 0 {
		rep.QRSMedianSec = mathutil.Float(mathutil.Median(defined))
	}
	rep.QTMeanSec = mathutil.Float(qtMean(norm, peaks.Indices, fs, perBeat))
	rep.STDeviation = mathutil.Float(stDeviation(norm, peaks.Indices, fs))
	return rep
}

func minOf(xs []float64) float64 {
	m := xs[0]
	for _, v := range xs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, v := range xs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
