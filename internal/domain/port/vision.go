package port

import (
	"image"

	"stenosis-api/internal/domain/entity"
)

// ImageDecoder декодирует присланные байты в изображение.
type ImageDecoder interface {
	Decode(data []byte) (image.Image, error)
}

// Preprocessor приводит изображение к входу модели.
type Preprocessor interface {
	// Preprocess переводит в полутон, масштабирует, нормализует и выравнивает контраст
	Preprocess(img image.Image) (entity.Frame, error)
}

// ShapeExtractor находит связные области маски.
type ShapeExtractor interface {
	Extract(mask entity.Mask) ([]entity.Shape, error)
}

// MaskEncoder кодирует маску в изображение для ответа.
type MaskEncoder interface {
	Encode(mask entity.Mask) ([]byte, error)
}
