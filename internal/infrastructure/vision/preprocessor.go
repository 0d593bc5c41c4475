package vision

import (
	"image"

	"stenosis-api/internal/domain/entity"
	apperrors "stenosis-api/pkg/errors"
)

// Preprocessor приводит изображение к входу модели:
// полутон, билинейное масштабирование, CLAHE, нормализация в [0,1].
type Preprocessor struct {
	Width     int
	Height    int
	ClipLimit float64
	TileGrid  int
}

// NewPreprocessor создаёт препроцессор с размером входа модели и параметрами CLAHE.
func NewPreprocessor(width, height int, clipLimit float64, tileGrid int) *Preprocessor {
	return &Preprocessor{
		Width:     width,
		Height:    height,
		ClipLimit: clipLimit,
		TileGrid:  tileGrid,
	}
}

func (p *Preprocessor) Preprocess(img image.Image) (entity.Frame, error) {
	if img == nil || img.Bounds().Empty() {
		return entity.Frame{}, apperrors.NewDecodeError("empty image")
	}

	equalized, err := p.equalize(img)
	if err != nil {
		return entity.Frame{}, err
	}

	frame := entity.NewFrame(p.Width, p.Height)
	for y := 0; y < p.Height; y++ {
		row := equalized[y*p.Width : (y+1)*p.Width]
		for x, v := range row {
			frame.Pix[y*p.Width+x] = float32(v) / 255
		}
	}
	return frame, nil
}
