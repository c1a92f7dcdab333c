// Package pipeline wires the digitization and analysis stages into one
// request-scoped run: raster preparation, grid calibration, trace extraction,
// signal conditioning, then the independent analyzers fanned out
// concurrently, arrhythmia classification, and optional validation against
// reference annotations. Every run works on immutable derived values; no
// stage mutates shared state.
package pipeline

import (
	"image"
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/armodel"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/complexity"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/conditioner"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/config"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/extract"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/grid"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/legend"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/morphology"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/raster"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/rhythm"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/spectral"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/validate"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/pkg/mathutil"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/pkg/wave"
)

// InputError is the only failure surfaced as an immediate rejection; every
// other failure mode lands as a flagged result.
type InputError = raster.InputError

// Pipeline runs analyses under one configuration.
type Pipeline struct {
	cfg config.AnalysisConfig
	log *slog.Logger
}

// New creates a pipeline. A nil logger disables logging.
func New(cfg config.AnalysisConfig, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{cfg: cfg, log: log}
}

// Result is the complete outcome of one analysis run. Component results are
// always structurally valid; their Status fields distinguish low confidence
// from success.
type Result struct {
	RunID        string              `json:"run_id"`
	Calibration  grid.Calibration    `json:"calibration"`
	Extraction   *extract.Result     `json:"extraction,omitempty"`
	Conditioning *conditioner.Result `json:"conditioning,omitempty"`
	Spectral     spectral.Result     `json:"spectral"`
	Complexity   complexity.Result   `json:"complexity"`
	AR           armodel.Model       `json:"ar_model"`
	Morphology   morphology.Report   `json:"morphology"`
	Findings     []rhythm.Finding    `json:"findings"`
	Validation   *validate.Report    `json:"validation,omitempty"`
}

// AnalyzeImage digitizes an ECG paper image and analyzes the extracted
// waveform. Reference peak indices are optional; nil skips validation.
// An extraction below the quality floor is reported in the result, not as an
// error: only malformed input rejects.
func (p *Pipeline) AnalyzeImage(img image.Image, reference []int) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	log := p.log.With("run_id", res.RunID)

	gray, err := raster.FromImage(img, p.cfg)
	if err != nil {
		return nil, err
	}

	res.Calibration = grid.Estimate(gray, p.cfg)
	if res.Calibration.Confidence == 0 {
		log.Warn("grid not detected, proceeding uncalibrated")
	} else {
		log.Info("grid calibration estimated",
			"confidence", res.Calibration.Confidence,
			"px_per_second", res.Calibration.PixelsPerSecond)
	}

	if p.cfg.LegendOCR {
		res.Calibration = p.readLegend(img, res.Calibration, log)
	}

	// Grid ink is whitened before binarization so the mask holds trace only.
	suppressed, err := raster.FromImage(raster.SuppressGridInk(img), p.cfg)
	if err != nil {
		return nil, err
	}
	bm, err := raster.Binarize(suppressed, p.cfg)
	if err != nil {
		return nil, err
	}

	res.Extraction = extract.Extract(bm, res.Calibration, p.cfg)
	if res.Extraction.Status != extract.StatusOK {
		log.Warn("trace extraction failed",
			"reason", res.Extraction.Reason,
			"coverage", res.Extraction.Coverage,
			"quality", res.Extraction.Quality)
		p.markInsufficient(res)
		return res, nil
	}
	log.Info("trace extracted",
		"samples", res.Extraction.Wave.Len(),
		"quality", res.Extraction.Quality,
		"calibrated", res.Extraction.Calibrated)

	p.analyzeWave(res, res.Extraction.Wave, reference, log)
	return res, nil
}

// AnalyzeMatrix digitizes a raw grayscale intensity matrix (rows of 0-255
// values), the transport-independent image input form.
func (p *Pipeline) AnalyzeMatrix(pixels [][]uint8, reference []int) (*Result, error) {
	g, err := raster.FromMatrix(pixels, p.cfg)
	if err != nil {
		return nil, err
	}
	return p.AnalyzeImage(g, reference)
}

// AnalyzeWaveform analyzes a directly imported waveform, skipping the
// digitization stages.
func (p *Pipeline) AnalyzeWaveform(samples []float64, sampleRate float64, reference []int) (*Result, error) {
	if len(samples) == 0 {
		return nil, &InputError{Reason: "empty sample sequence"}
	}
	if len(samples) > p.cfg.MaxSamples {
		return nil, &InputError{Reason: "sample sequence exceeds configured maximum"}
	}
	if sampleRate <= 0 {
		return nil, &InputError{Reason: "sample rate must be positive"}
	}
	for _, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &InputError{Reason: "sample sequence contains non-finite values"}
		}
	}

	w, err := wave.New(samples, sampleRate, wave.UnitMillivolts)
	if err != nil {
		return nil, &InputError{Reason: err.Error()}
	}

	res := &Result{RunID: uuid.NewString()}
	p.analyzeWave(res, w, reference, p.log.With("run_id", res.RunID))
	return res, nil
}

// analyzeWave conditions the waveform and fans the independent analyzers
// out on goroutines; none of them shares mutable state.
func (p *Pipeline) analyzeWave(res *Result, w *wave.Waveform, reference []int, log *slog.Logger) {
	cond := conditioner.Condition(w, p.cfg, log)
	res.Conditioning = &cond

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		res.Spectral = spectral.Analyze(cond.Wave, p.cfg)
	}()
	go func() {
		defer wg.Done()
		res.Complexity = complexity.Compute(cond.Wave)
	}()
	go func() {
		defer wg.Done()
		res.AR = armodel.Fit(cond.Wave, p.cfg)
	}()
	go func() {
		defer wg.Done()
		res.Morphology = morphology.Analyze(cond.Wave, p.cfg)
	}()
	wg.Wait()

	res.Findings = rhythm.Classify(res.Morphology, p.cfg)

	if reference != nil {
		rep := validate.Compare(res.Morphology.Peaks.Indices, reference, cond.Wave.SampleRate, p.cfg.ToleranceSec)
		res.Validation = &rep
	}

	sanitize(res)
	log.Info("analysis complete",
		"spectral", res.Spectral.Status.String(),
		"complexity", res.Complexity.Status.String(),
		"ar", res.AR.Status.String(),
		"morphology", res.Morphology.Status.String(),
		"findings", len(res.Findings))
}

// markInsufficient fills the analyzer slots of a run that never produced a
// waveform, so callers always see structurally valid component results.
func (p *Pipeline) markInsufficient(res *Result) {
	res.Spectral = spectral.Analyze(nil, p.cfg)
	res.Complexity = complexity.Compute(nil)
	res.AR = armodel.Fit(nil, p.cfg)
	res.Morphology = morphology.FromPeaks(nil, morphology.PeakSet{}, p.cfg)
	sanitize(res)
}

func (p *Pipeline) readLegend(img image.Image, cal grid.Calibration, log *slog.Logger) grid.Calibration {
	eng, err := legend.NewEngine()
	if err != nil {
		log.Warn("legend OCR unavailable", "err", err)
		return cal
	}
	defer eng.Close()
	lg, err := eng.Read(img)
	if err != nil {
		log.Warn("legend not readable", "err", err)
		return cal
	}
	log.Info("paper legend parsed", "mm_per_s", lg.MMPerSecond, "mm_per_mv", lg.MMPerMillivolt)
	return grid.ApplyLegend(cal, lg.MMPerSecond, lg.MMPerMillivolt)
}

// sanitize scrubs non-finite values from the plain float arrays; scalar
// metrics are mathutil.Float and carry their own undefined marker.
func sanitize(res *Result) {
	scrub := func(xs []float64) {
		for i, v := range xs {
			xs[i] = mathutil.SafeFloat(v)
		}
	}
	scrub(res.Spectral.Magnitudes)
	scrub(res.Morphology.RRIntervalsSec)
	scrub(res.Morphology.HeartRatesBPM)
	scrub(res.Morphology.QRSWidthsSec)
	scrub(res.AR.Coefficients)
	scrub(res.AR.PoleMagnitudes)
}
