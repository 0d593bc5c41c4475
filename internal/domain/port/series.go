package port

import (
	"context"

	"stenosis-api/internal/domain/entity"
)

// SeriesReader читает окно срезов DICOM-серии.
type SeriesReader interface {
	ReadWindow(ctx context.Context, dir string, center int) (*entity.SeriesWindow, error)
}
