package pipeline

import (
	"image"
	"sync"
)

// BatchItem is one independent analysis request: either an image or a raw
// waveform, with optional reference annotations.
type BatchItem struct {
	ID         string
	Image      image.Image
	Samples    []float64
	SampleRate float64
	Reference  []int
}

// BatchOutcome pairs an item ID with its result or rejection.
type BatchOutcome struct {
	ID     string
	Result *Result
	Err    error
}

// AnalyzeBatch runs the items concurrently. Items share no state, so the
// fan-out is purely a throughput optimization; outcomes keep input order.
func (p *Pipeline) AnalyzeBatch(items []BatchItem) []BatchOutcome {
	outcomes := make([]BatchOutcome, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item BatchItem) {
			defer wg.Done()
			outcomes[i] = BatchOutcome{ID: item.ID}
			if item.Image != nil {
				outcomes[i].Result, outcomes[i].Err = p.AnalyzeImage(item.Image, item.Reference)
				return
			}
			outcomes[i].Result, outcomes[i].Err = p.AnalyzeWaveform(item.Samples, item.SampleRate, item.Reference)
		}(i, item)
	}
	wg.Wait()
	return outcomes
}

// ReferenceFromSeconds converts annotation timestamps in seconds to sample
// indices at the given rate.
func ReferenceFromSeconds(seconds []float64, sampleRate float64) []int {
	out := make([]int, len(seconds))
	for i, s := range seconds {
		out[i] = int(s*sampleRate + 0.5)
	}
	return out
}
