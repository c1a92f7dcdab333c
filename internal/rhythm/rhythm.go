// Package rhythm applies threshold rules to a morphology report and labels
// rhythm abnormalities. Pure rule evaluation: it never raises on borderline
// inputs, it only reports lower-confidence findings.
package rhythm

import (
	"math"

	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/config"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/morphology"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/pkg/mathutil"
)

// Category tags one kind of detected abnormality.
type Category string

const (
	CategoryBradycardia     Category = "bradycardia"
	CategoryTachycardia     Category = "tachycardia"
	CategoryIrregularRhythm Category = "irregular_rhythm"
	CategoryWideQRS         Category = "wide_qrs"
)

// Severity grades a finding.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeverityMarked   Severity = "marked"
)

// Finding is one detected abnormality with its supporting metric.
type Finding struct {
	Category   Category `json:"category"`
	Severity   Severity `json:"severity"`
	Metric     string   `json:"metric"`
	Value      float64  `json:"value"`
	Threshold  float64  `json:"threshold"`
	Confidence float64  `json:"confidence"`
}

// Classify evaluates the rule table over the report. An insufficient-data
// report produces no findings.
func Classify(rep morphology.Report, cfg config.AnalysisConfig) []Finding {
	if rep.Status != morphology.StatusOK {
		return nil
	}
	var findings []Finding

	if hr := float64(rep.MeanHeartRateBPM); rep.MeanHeartRateBPM.Defined() {
		if hr < cfg.BradycardiaBPM {
			findings = append(findings, Finding{
				Category:   CategoryBradycardia,
				Severity:   rateSeverity(cfg.BradycardiaBPM - hr),
				Metric:     "mean_heart_rate_bpm",
				Value:      hr,
				Threshold:  cfg.BradycardiaBPM,
				Confidence: borderConfidence(hr, cfg.BradycardiaBPM),
			})
		}
		if hr > cfg.TachycardiaBPM {
			findings = append(findings, Finding{
				Category:   CategoryTachycardia,
				Severity:   rateSeverity(hr - cfg.TachycardiaBPM),
				Metric:     "mean_heart_rate_bpm",
				Value:      hr,
				Threshold:  cfg.TachycardiaBPM,
				Confidence: borderConfidence(hr, cfg.TachycardiaBPM),
			})
		}
	}

	if sd := float64(rep.HRVSDSec); rep.HRVSDSec.Defined() && sd > cfg.IrregularRRSDSec {
		findings = append(findings, Finding{
			Category:   CategoryIrregularRhythm,
			Severity:   SeverityModerate,
			Metric:     "rr_interval_sd_sec",
			Value:      sd,
			Threshold:  cfg.IrregularRRSDSec,
			Confidence: borderConfidence(sd, cfg.IrregularRRSDSec),
		})
	}

	if qrs := float64(rep.QRSMedianSec); rep.QRSMedianSec.Defined() {
		switch {
		case qrs > cfg.QRSWideSec:
			findings = append(findings, Finding{
				Category:   CategoryWideQRS,
				Severity:   SeverityModerate,
				Metric:     "qrs_median_sec",
				Value:      qrs,
				Threshold:  cfg.QRSWideSec,
				Confidence: borderConfidence(qrs, cfg.QRSWideSec),
			})
		case qrs > cfg.QRSBorderlineSec:
			// Borderline conduction delay: reported, at low confidence.
			findings = append(findings, Finding{
				Category:   CategoryWideQRS,
				Severity:   SeverityMild,
				Metric:     "qrs_median_sec",
				Value:      qrs,
				Threshold:  cfg.QRSBorderlineSec,
				Confidence: 0.3,
			})
		}
	}

	return findings
}

// borderConfidence scales with distance from the threshold: values right at
// the rule boundary report near 0.5, far past it approach 1.
func borderConfidence(value, threshold float64) float64 {
	if threshold == 0 {
		return 0.5
	}
	rel := math.Abs(value-threshold) / math.Abs(threshold)
	return mathutil.Clamp(0.5+rel, 0, 1)
}

func rateSeverity(excessBPM float64) Severity {
	switch {
	case excessBPM > 40:
		return SeverityMarked
	case excessBPM > 15:
		return SeverityModerate
	default:
		return SeverityMild
	}
}
