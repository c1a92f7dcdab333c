package morphology

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/config"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/pkg/mathutil"
)

// qrsWidths estimates one width per beat from three independent
// measurements: gradient-crossing width, amplitude-threshold width and the
// beat-template half-amplitude width. Estimates outside the widened
// physiological envelope or more than two standard deviations from the
// measurement set's mean are discarded before taking the median. The
// returned slice stays parallel to peaks: a beat with no surviving
// measurement holds NaN.
func qrsWidths(x []float64, peaks []int, fs float64, cfg config.AnalysisConfig) []float64 {
	halfWin := int(cfg.TemplateHalfSec * fs)
	if halfWin < 2 {
		return nil
	}
	template := beatTemplate(x, peaks, halfWin)
	tmplWidth := halfAmplitudeWidth(template, len(template)/2, fs)

	widths := make([]float64, len(peaks))
	for i, p := range peaks {
		measurements := []float64{
			gradientWidth(x, p, halfWin, fs),
			amplitudeWidth(x, p, halfWin, fs),
			tmplWidth,
		}
		widths[i] = robustMedian(measurements, cfg.QRSMinSec, cfg.QRSMaxSec)
	}
	return widths
}

// gradientWidth walks outward from the peak until the slope magnitude stays
// below 10% of the window's steepest slope, marking QRS onset and offset.
func gradientWidth(x []float64, peak, halfWin int, fs float64) float64 {
	lo, hi := bounded(peak-halfWin, peak+halfWin, len(x))
	var maxGrad float64
	for i := lo + 1; i <= hi; i++ {
		g := math.Abs(x[i] - x[i-1])
		if g > maxGrad {
			maxGrad = g
		}
	}
	if maxGrad == 0 {
		return math.NaN()
	}
	floor := 0.1 * maxGrad

	left := peak
	quiet := 0
	for i := peak; i > lo; i-- {
		if math.Abs(x[i]-x[i-1]) < floor {
			quiet++
			if quiet >= 3 {
				break
			}
		} else {
			quiet = 0
		}
		left = i - 1
	}
	right := peak
	quiet = 0
	for i := peak; i < hi; i++ {
		if math.Abs(x[i+1]-x[i]) < floor {
			quiet++
			if quiet >= 3 {
				break
			}
		} else {
			quiet = 0
		}
		right = i + 1
	}
	return float64(right-left) / fs
}

// amplitudeWidth measures the half-height width of the beat relative to the
// local baseline at the window edges.
func amplitudeWidth(x []float64, peak, halfWin int, fs float64) float64 {
	lo, hi := bounded(peak-halfWin, peak+halfWin, len(x))
	baseline := (x[lo] + x[hi]) / 2
	half := baseline + (x[peak]-baseline)/2

	left := peak
	for i := peak; i >= lo; i-- {
		if x[i] < half {
			break
		}
		left = i
	}
	right := peak
	for i := peak; i <= hi; i++ {
		if x[i] < half {
			break
		}
		right = i
	}
	if right == left {
		return math.NaN()
	}
	return float64(right-left) / fs
}

// beatTemplate averages aligned windows around every peak.
func beatTemplate(x []float64, peaks []int, halfWin int) []float64 {
	tmpl := make([]float64, 2*halfWin+1)
	count := 0
	for _, p := range peaks {
		if p-halfWin < 0 || p+halfWin >= len(x) {
			continue
		}
		for j := -halfWin; j <= halfWin; j++ {
			tmpl[j+halfWin] += x[p+j]
		}
		count++
	}
	if count == 0 {
		return tmpl
	}
	for i := range tmpl {
		tmpl[i] /= float64(count)
	}
	return tmpl
}

func halfAmplitudeWidth(tmpl []float64, center int, fs float64) float64 {
	if len(tmpl) < 3 {
		return math.NaN()
	}
	return amplitudeWidth(tmpl, center, len(tmpl)/2, fs)
}

// robustMedian drops measurements outside [lo, hi] and beyond two standard
// deviations of the set mean, then returns the median. NaN when nothing
// survives.
func robustMedian(vals []float64, lo, hi float64) float64 {
	inEnvelope := vals[:0:0]
	for _, v := range vals {
		if !math.IsNaN(v) && v >= lo && v <= hi {
			inEnvelope = append(inEnvelope, v)
		}
	}
	if len(inEnvelope) == 0 {
		return math.NaN()
	}
	mean := stat.Mean(inEnvelope, nil)
	sd := stat.StdDev(inEnvelope, nil)
	if len(inEnvelope) < 2 || sd == 0 {
		return mathutil.Median(inEnvelope)
	}
	kept := inEnvelope[:0:0]
	for _, v := range inEnvelope {
		if math.Abs(v-mean) <= 2*sd {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return mathutil.Median(inEnvelope)
	}
	return mathutil.Median(kept)
}

// qtMean estimates the mean QT interval: from QRS onset (half the beat's QRS
// width before the R peak) to the end of the T wave, taken as the decay of
// the post-beat local maximum to 10% of its height above baseline.
// qrsWidths is the per-beat slice parallel to peaks; beats whose width
// estimate failed fall back to a nominal half-width.
func qtMean(x []float64, peaks []int, fs float64, qrsWidths []float64) float64 {
	var sum float64
	count := 0
	for i, p := range peaks {
		tStart := p + int(0.10*fs)
		tEnd := p + int(0.45*fs)
		if tEnd >= len(x) || tStart >= tEnd {
			continue
		}
		tPeak := tStart
		for j := tStart; j <= tEnd; j++ {
			if x[j] > x[tPeak] {
				tPeak = j
			}
		}
		baseline := x[tEnd]
		level := baseline + 0.1*(x[tPeak]-baseline)
		tOff := tPeak
		for j := tPeak; j <= tEnd; j++ {
			tOff = j
			if x[j] <= level {
				break
			}
		}
		qrsHalf := 0.04
		if i < len(qrsWidths) && !math.IsNaN(qrsWidths[i]) {
			qrsHalf = qrsWidths[i] / 2
		}
		qt := float64(tOff-p)/fs + qrsHalf
		sum += qt
		count++
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}

// stDeviation estimates the mean ST-segment level (60-100 ms after the R
// peak) relative to the PR baseline (200-120 ms before it).
func stDeviation(x []float64, peaks []int, fs float64) float64 {
	var sum float64
	count := 0
	for _, p := range peaks {
		prLo, prHi := p-int(0.20*fs), p-int(0.12*fs)
		stLo, stHi := p+int(0.06*fs), p+int(0.10*fs)
		if prLo < 0 || stHi >= len(x) || prHi <= prLo || stHi <= stLo {
			continue
		}
		sum += segmentMean(x, stLo, stHi) - segmentMean(x, prLo, prHi)
		count++
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}

func segmentMean(x []float64, lo, hi int) float64 {
	var sum float64
	for i := lo; i <= hi; i++ {
		sum += x[i]
	}
	return sum / float64(hi-lo+1)
}

func bounded(lo, hi, n int) (int, int) {
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	return lo, hi
}
