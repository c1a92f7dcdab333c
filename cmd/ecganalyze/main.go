// Command ecganalyze runs the full digitization and analysis pipeline on an
// ECG paper image or a raw sample file and prints the result as JSON.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"strconv"
	"strings"

	_ "golang.org/x/image/tiff"

	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/config"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/pipeline"
)

func main() {
	imagePath := flag.String("image", "", "Path to ECG paper image (PNG, JPEG, or TIFF)")
	samplesPath := flag.String("samples", "", "Path to raw sample file (one value per line)")
	fs := flag.Float64("fs", 250, "Sampling rate in Hz for -samples input")
	refPath := flag.String("ref", "", "Optional reference annotation file (one sample index per line)")
	notch := flag.Float64("notch", 50, "Mains notch frequency in Hz (50 or 60)")
	useOpenCV := flag.Bool("opencv", false, "Binarize with OpenCV instead of the pure-Go strategy")
	legendOCR := flag.Bool("legend", false, "Read the printed paper legend via OCR")
	verbose := flag.Bool("v", false, "Log pipeline stages to stderr")
	flag.Parse()

	if (*imagePath == "") == (*samplesPath == "") {
		fmt.Println("Usage: ecganalyze -image <path> | -samples <path> [-fs 250] [-ref <path>] [-notch 50|60]")
		os.Exit(1)
	}

	cfg := config.FromEnv().WithNotch(*notch).WithLegendOCR(*legendOCR)
	if *useOpenCV {
		cfg = cfg.WithBinarize(config.BinarizeOpenCV)
	}

	var log *slog.Logger
	if *verbose {
		log = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	p := pipeline.New(cfg, log)

	var reference []int
	if *refPath != "" {
		ref, err := readInts(*refPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read reference annotations: %v\n", err)
			os.Exit(1)
		}
		reference = ref
	}

	var (
		res *pipeline.Result
		err error
	)
	if *imagePath != "" {
		res, err = analyzeImage(p, *imagePath, reference)
	} else {
		res, err = analyzeSamples(p, *samplesPath, *fs, reference)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Analysis rejected: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func analyzeImage(p *pipeline.Pipeline, path string, reference []int) (*pipeline.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	b := img.Bounds()
	fmt.Fprintf(os.Stderr, "Loaded %s image: %dx%d pixels\n", format, b.Dx(), b.Dy())

	return p.AnalyzeImage(img, reference)
}

func analyzeSamples(p *pipeline.Pipeline, path string, fs float64, reference []int) (*pipeline.Result, error) {
	samples, err := readFloats(path)
	if err != nil {
		return nil, fmt.Errorf("reading samples: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Loaded %d samples at %.4g Hz\n", len(samples), fs)
	return p.AnalyzeWaveform(samples, fs, reference)
}

func readFloats(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []float64
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", len(out)+1, err)
		}
		out = append(out, v)
	}
	return out, sc.Err()
}

func readInts(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []int
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		v, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", len(out)+1, err)
		}
		out = append(out, v)
	}
	return out, sc.Err()
}
