package dicom

import (
	"context"
	"image"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"stenosis-api/internal/domain/entity"
	"stenosis-api/internal/domain/port"
	apperrors "stenosis-api/pkg/errors"
)

const sliceExt = ".dcm"

// FileLister перечисляет файлы каталога в порядке имён.
type FileLister interface {
	List(ctx context.Context, dir, ext string) ([]string, error)
}

// SeriesReader читает окно срезов вокруг центрального.
type SeriesReader struct {
	files   FileLister
	radius  int
	workers int
	logger  *slog.Logger

	decode func(path string) (*image.Gray, error)
}

func NewSeriesReader(files FileLister, radius, workers int, logger *slog.Logger) *SeriesReader {
	return &SeriesReader{
		files:   files,
		radius:  radius,
		workers: max(workers, 1),
		logger:  logger,
		decode:  ReadSlice,
	}
}

// Window границы окна [start, end] включительно, обрезанные по серии.
func Window(center, radius, total int) (start, end int) {
	return max(0, center-radius), min(total-1, center+radius)
}

func (r *SeriesReader) ReadWindow(ctx context.Context, dir string, center int) (*entity.SeriesWindow, error) {
	files, err := r.files.List(ctx, dir, sliceExt)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, apperrors.NewNotFoundError("dicom files").WithContext("dir", dir)
	}

	total := len(files)
	if center < 0 || center >= total {
		return nil, apperrors.NewValidationError("center slice is out of range").
			WithContext("center_slice", center).
			WithContext("total_slices", total)
	}

	start, end := Window(center, r.radius, total)
	slices := make([]*image.Gray, end-start+1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := start; i <= end; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := r.decode(files[i])
			if err != nil {
				return apperrors.WrapDecodeError(err, "failed to read dicom slice").
					WithContext("file", files[i]).
					WithContext("slice", i)
			}
			slices[i-start] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logger.Debug("DICOM window read",
		"dir", dir,
		"center", center,
		"start", start,
		"end", end,
		"total", total,
	)

	return &entity.SeriesWindow{
		Center: center,
		Start:  start,
		End:    end,
		Total:  total,
		Slices: slices,
	}, nil
}

var _ port.SeriesReader = (*SeriesReader)(nil)
