// Package validate compares detected peaks against externally supplied
// reference annotations under a time tolerance and computes precision,
// recall and F1.
package validate

import (
	"math"
	"sort"

	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/pkg/mathutil"
)

// Report is the accuracy summary against ground truth.
type Report struct {
	TruePositives  int            `json:"true_positives"`
	FalsePositives int            `json:"false_positives"`
	FalseNegatives int            `json:"false_negatives"`
	Precision      mathutil.Float `json:"precision"`
	Recall         mathutil.Float `json:"recall"`
	F1             mathutil.Float `json:"f1"`
	ToleranceSec   float64        `json:"tolerance_sec"`
}

// Compare greedily matches each detected peak to its nearest unmatched
// reference peak within the tolerance window. Matched pairs are true
// positives, unmatched detections false positives, unmatched references
// false negatives.
func Compare(detected, reference []int, sampleRate, toleranceSec float64) Report {
	rep := Report{ToleranceSec: toleranceSec}
	tolSamples := toleranceSec * sampleRate

	det := append([]int(nil), detected...)
	ref := append([]int(nil), reference...)
	sort.Ints(det)
	sort.Ints(ref)

	matched := make([]bool, len(ref))
	for _, d := range det {
		best := -1
		bestDist := math.Inf(1)
		for j, r := range ref {
			if matched[j] {
				continue
			}
			dist := math.Abs(float64(d - r))
			if dist < bestDist {
				best = j
				bestDist = dist
			}
		}
		if best >= 0 && bestDist <= tolSamples {
			matched[best] = true
			rep.TruePositives++
		} else {
			rep.FalsePositives++
		}
	}
	for _, m := range matched {
		if !m {
			rep.FalseNegatives++
		}
	}

	rep.Precision = ratio(rep.TruePositives, rep.TruePositives+rep.FalsePositives)
	rep.Recall = ratio(rep.TruePositives, rep.TruePositives+rep.FalseNegatives)
	p, r := float64(rep.Precision), float64(rep.Recall)
	if p+r > 0 {
		rep.F1 = mathutil.Float(2 * p * r / (p + r))
	}
	return rep
}

func ratio(num, den int) mathutil.Float {
	if den == 0 {
		return 0
	}
	return mathutil.Float(float64(num) / float64(den))
}
