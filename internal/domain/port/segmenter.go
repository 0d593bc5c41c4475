package port

import (
	"context"

	"stenosis-api/internal/domain/entity"
)

// Segmenter интерфейс модели сегментации
type Segmenter interface {
	// Segment возвращает вероятности принадлежности пикселей сосуду
	Segment(ctx context.Context, frame entity.Frame) (entity.ProbabilityMap, error)

	// Info описывает загруженную модель
	Info() entity.ModelInfo
}
