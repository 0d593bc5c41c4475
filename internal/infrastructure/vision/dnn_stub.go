//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"

	"stenosis-api/internal/domain/entity"
)

var errNoGoCV = errors.New("gocv build tag is not enabled")

type DNNSegmenter struct{}

// LoadONNXSegmenter возвращает ошибку, если сборка без тега gocv.
func LoadONNXSegmenter(path string, width, height int, layout string) (*DNNSegmenter, error) {
	_ = path
	_, _ = width, height
	_ = layout
	return nil, errNoGoCV
}

func (s *DNNSegmenter) Info() entity.ModelInfo {
	return entity.ModelInfo{Backend: "onnx"}
}

// Segment возвращает ошибку, если сборка без тега gocv.
func (s *DNNSegmenter) Segment(ctx context.Context, frame entity.Frame) (entity.ProbabilityMap, error) {
	_ = ctx
	_ = frame
	return entity.ProbabilityMap{}, errNoGoCV
}

func (s *DNNSegmenter) Close() error {
	return nil
}
