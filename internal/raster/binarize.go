package raster

import (
	"image"

	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/config"
)

// Binarize runs the configured binarization strategy. Both strategies honor
// the same Bitmap contract, so the extractor never knows which produced it.
func Binarize(g *image.Gray, cfg config.AnalysisConfig) (*Bitmap, error) {
	switch cfg.Binarize {
	case config.BinarizeOpenCV:
		return BinarizeOpenCV(g, 2)
	default:
		return BinarizePure(g), nil
	}
}
