//go:build gocv
// +build gocv

package vision

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"gocv.io/x/gocv"

	"stenosis-api/internal/domain/entity"
	apperrors "stenosis-api/pkg/errors"
)

// DNNSegmenter U-Net в формате ONNX, исполняемая OpenCV DNN.
type DNNSegmenter struct {
	mu     sync.Mutex // cv::dnn::Net не потокобезопасна
	net    gocv.Net
	info   entity.ModelInfo
	layout string
}

// LoadONNXSegmenter загружает модель из файла. layout: nhwc или nchw.
func LoadONNXSegmenter(path string, width, height int, layout string) (*DNNSegmenter, error) {
	net := gocv.ReadNetFromONNX(path)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load onnx model %s", path)
	}

	return &DNNSegmenter{
		net: net,
		info: entity.ModelInfo{
			Name:        path,
			Backend:     "onnx",
			InputWidth:  width,
			InputHeight: height,
		},
		layout: layout,
	}, nil
}

func (s *DNNSegmenter) Info() entity.ModelInfo {
	return s.info
}

func (s *DNNSegmenter) Segment(ctx context.Context, frame entity.Frame) (entity.ProbabilityMap, error) {
	if err := ctx.Err(); err != nil {
		return entity.ProbabilityMap{}, err
	}
	if frame.Width != s.info.InputWidth || frame.Height != s.info.InputHeight {
		return entity.ProbabilityMap{}, apperrors.NewValidationError("frame size does not match model input").
			WithContext("width", frame.Width).
			WithContext("height", frame.Height)
	}

	sizes := []int{1, frame.Height, frame.Width, 1}
	if s.layout == "nchw" {
		sizes = []int{1, 1, frame.Height, frame.Width}
	}

	buf := make([]byte, 4*len(frame.Pix))
	for i, v := range frame.Pix {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}

	blob, err := gocv.NewMatWithSizesFromBytes(sizes, gocv.MatTypeCV32F, buf)
	if err != nil {
		return entity.ProbabilityMap{}, apperrors.WrapInternalError(err, "failed to build input blob")
	}
	defer blob.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.net.SetInput(blob, "")
	out := s.net.Forward("")
	defer out.Close()

	data, err := out.DataPtrFloat32()
	if err != nil {
		return entity.ProbabilityMap{}, apperrors.WrapInternalError(err, "failed to read model output")
	}
	if len(data) != len(frame.Pix) {
		return entity.ProbabilityMap{}, apperrors.NewInternalError("unexpected model output size").
			WithContext("expected", len(frame.Pix)).
			WithContext("actual", len(data))
	}

	pix := make([]float32, len(data))
	copy(pix, data)
	return entity.ProbabilityMap{Width: frame.Width, Height: frame.Height, Pix: pix}, nil
}

// Close освобождает сеть.
func (s *DNNSegmenter) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.net.Close()
}
