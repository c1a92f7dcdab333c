// Command ecgsynth writes synthetic ECG fixtures: either a raw sample file
// or a rendered paper raster, for exercising the analysis pipeline.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"

	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/synth"
)

func main() {
	out := flag.String("out", "ecg.txt", "Output path (.png renders a paper raster, anything else writes samples)")
	fs := flag.Float64("fs", 250, "Sampling rate in Hz")
	bpm := flag.Float64("bpm", 72, "Heart rate in beats per minute")
	seconds := flag.Float64("seconds", 10, "Record duration")
	noise := flag.Float64("noise", 0.02, "Noise amplitude")
	render := flag.Bool("render", false, "Render a paper raster instead of writing samples")
	flag.Parse()

	gen := synth.NewGenerator(*fs, *bpm, *noise)
	samples := gen.Record(*seconds)

	if *render {
		opts := synth.DefaultPaperOptions()
		// Match the raster's time base to the sampling rate: one sample per
		// pixel column at SquarePx/SecPerSquare columns per second.
		gen.SampleRate = float64(opts.SquarePx) / opts.SecPerSquare
		samples = gen.Record(*seconds)
		img := synth.RenderPaper(samples, opts)

		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", *out, err)
			os.Exit(1)
		}
		defer f.Close()
		if err := png.Encode(f, img); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode raster: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %dx%d paper raster to %s\n", img.Bounds().Dx(), img.Bounds().Dy(), *out)
		return
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", *out, err)
		os.Exit(1)
	}
	defer f.Close()
	for _, v := range samples {
		fmt.Fprintf(f, "%.6f\n", v)
	}
	fmt.Printf("Wrote %d samples (%.4g s at %.4g Hz, %.4g bpm) to %s\n",
		len(samples), *seconds, *fs, *bpm, *out)
}
