//go:build gocv
// +build gocv

package vision

import (
	"gocv.io/x/gocv"

	"stenosis-api/internal/domain/entity"
	apperrors "stenosis-api/pkg/errors"
)

type ShapeExtractor struct{}

func NewShapeExtractor() *ShapeExtractor {
	return &ShapeExtractor{}
}

// Extract находит 8-связные области через ConnectedComponentsWithStats.
func (e *ShapeExtractor) Extract(mask entity.Mask) ([]entity.Shape, error) {
	if len(mask.Pix) != mask.Width*mask.Height {
		return nil, apperrors.NewValidationError("mask size mismatch")
	}
	if len(mask.Pix) == 0 {
		return nil, nil
	}

	src, err := gocv.NewMatFromBytes(mask.Height, mask.Width, gocv.MatTypeCV8U, mask.Pix)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	bin := gocv.NewMat()
	defer bin.Close()
	gocv.Threshold(src, &bin, 0, 255, gocv.ThresholdBinary)

	labels := gocv.NewMat()
	defer labels.Close()
	stats := gocv.NewMat()
	defer stats.Close()
	centroids := gocv.NewMat()
	defer centroids.Close()

	n := gocv.ConnectedComponentsWithStats(bin, &labels, &stats, &centroids)

	// метка 0 это фон
	shapes := make([]entity.Shape, 0, max(n-1, 0))
	for i := 1; i < n; i++ {
		shapes = append(shapes, entity.Shape{
			Area:      float64(stats.GetIntAt(i, int(gocv.CCStatArea))),
			CentroidX: centroids.GetDoubleAt(i, 0),
		})
	}
	return shapes, nil
}
