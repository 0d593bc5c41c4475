package entity

import "image"

// FrameAnalysis результат обработки одного кадра.
type FrameAnalysis struct {
	Areas  SideAreas
	Shapes []Shape
	Mask   Mask
}

// BatchAnalysis результат обработки набора кадров.
type BatchAnalysis struct {
	Frames   []FrameAnalysis
	Stenosis StenosisResult
}

// NewBatchAnalysis агрегирует кадры в оценку стеноза.
func NewBatchAnalysis(frames []FrameAnalysis) *BatchAnalysis {
	b := &BatchAnalysis{Frames: frames}
	b.Stenosis = EstimateStenosis(b.AreasLeft(), b.AreasRight())
	return b
}

func (b *BatchAnalysis) AreasLeft() []float64 {
	areas := make([]float64, len(b.Frames))
	for i, f := range b.Frames {
		areas[i] = f.Areas.Left
	}
	return areas
}

func (b *BatchAnalysis) AreasRight() []float64 {
	areas := make([]float64, len(b.Frames))
	for i, f := range b.Frames {
		areas[i] = f.Areas.Right
	}
	return areas
}

// SeriesWindow окно срезов DICOM вокруг центра, границы включительно.
type SeriesWindow struct {
	Center int
	Start  int
	End    int
	Total  int
	Slices []*image.Gray
}

// SeriesAnalysis результат по окну срезов.
type SeriesAnalysis struct {
	*BatchAnalysis
	Center int
	Start  int
	End    int
}

// ModelInfo описание загруженной модели.
type ModelInfo struct {
	Name        string
	Backend     string
	Version     string
	InputWidth  int
	InputHeight int
}
