package synth

import (
	"image/color"
	"testing"
)

func TestRecordIsDeterministic(t *testing.T) {
	a := NewGenerator(250, 72, 0.02).Record(2)
	b := NewGenerator(250, 72, 0.02).Record(2)
	if len(a) != 500 {
		t.Fatalf("length = %d, want 500", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs between identical generators", i)
		}
	}
}

func TestPeakIndicesMatchRate(t *testing.T) {
	gen := NewGenerator(250, 60, 0)
	peaks := gen.PeakIndices(10)
	if len(peaks) != 10 {
		t.Fatalf("got %d peaks in 10 s at 60 bpm, want 10", len(peaks))
	}
	for i := 1; i < len(peaks); i++ {
		rr := peaks[i] - peaks[i-1]
		if rr != 250 {
			t.Errorf("RR %d = %d samples, want 250", i, rr)
		}
	}

	record := gen.Record(10)
	for i, p := range peaks {
		// The R deflection is the record's dominant bump; each annotated
		// index must sit within a couple samples of a local maximum.
		lo, hi := p-3, p+4
		best := lo
		for j := lo; j < hi; j++ {
			if record[j] > record[best] {
				best = j
			}
		}
		if record[best] < 0.5 {
			t.Errorf("peak %d: amplitude %.3f at annotated index %d", i, record[best], p)
		}
	}
}

func TestRenderPaperGeometry(t *testing.T) {
	opts := DefaultPaperOptions()
	samples := make([]float64, 100)
	img := RenderPaper(samples, opts)

	b := img.Bounds()
	if b.Dx() != 100 || b.Dy() != opts.HeightPx {
		t.Fatalf("bounds = %v", b)
	}

	// Grid column at a pitch multiple, away from the trace rows.
	if img.RGBAAt(10, 5) != (color.RGBA{R: 240, G: 128, B: 128, A: 255}) {
		t.Errorf("grid pixel = %v", img.RGBAAt(10, 5))
	}
	// Paper background between grid lines.
	if c := img.RGBAAt(5, 5); c.R != 255 || c.G != 255 || c.B != 255 {
		t.Errorf("background pixel = %v", c)
	}
	// Flat zero trace runs along the vertical midline.
	mid := opts.HeightPx / 2
	if img.RGBAAt(55, mid) != (color.RGBA{R: 16, G: 16, B: 16, A: 255}) {
		t.Errorf("trace pixel = %v", img.RGBAAt(55, mid))
	}
}
