package app

import (
	"context"
	"image"
	"log/slog"
	"time"

	"stenosis-api/internal/domain/entity"
	"stenosis-api/internal/domain/port"
	apperrors "stenosis-api/pkg/errors"
)

// AnalysisOptions параметры постобработки маски.
type AnalysisOptions struct {
	Threshold float64
	Assign    entity.AssignOptions
}

// AnalysisService прогоняет кадры через модель и оценивает стеноз.
type AnalysisService struct {
	decoder   port.ImageDecoder
	pre       port.Preprocessor
	model     port.Segmenter // nil, если модель не загрузилась
	extractor port.ShapeExtractor
	series    port.SeriesReader
	opts      AnalysisOptions
	logger    *slog.Logger
}

// NewAnalysisService создаёт сервис анализа. model может быть nil.
func NewAnalysisService(
	decoder port.ImageDecoder,
	pre port.Preprocessor,
	model port.Segmenter,
	extractor port.ShapeExtractor,
	series port.SeriesReader,
	opts AnalysisOptions,
	logger *slog.Logger,
) *AnalysisService {
	return &AnalysisService{
		decoder:   decoder,
		pre:       pre,
		model:     model,
		extractor: extractor,
		series:    series,
		opts:      opts,
		logger:    logger,
	}
}

func (s *AnalysisService) ModelLoaded() bool {
	return s.model != nil
}

// ModelInfo возвращает описание модели; false, если модель не загружена.
func (s *AnalysisService) ModelInfo() (entity.ModelInfo, bool) {
	if s.model == nil {
		return entity.ModelInfo{}, false
	}
	return s.model.Info(), true
}

// AnalyzeFrame сегментирует один кадр и назначает площади сторонам.
func (s *AnalysisService) AnalyzeFrame(ctx context.Context, img image.Image) (*entity.FrameAnalysis, error) {
	if s.model == nil {
		return nil, apperrors.ErrModelNotLoaded
	}

	frame, err := s.pre.Preprocess(img)
	if err != nil {
		return nil, err
	}

	probs, err := s.model.Segment(ctx, frame)
	if err != nil {
		if apperrors.TypeOf(err) == apperrors.ErrorTypeInternal {
			return nil, apperrors.WrapInternalError(err, "segmentation failed")
		}
		return nil, err
	}

	mask := probs.Binarize(s.opts.Threshold)
	shapes, err := s.extractor.Extract(mask)
	if err != nil {
		return nil, apperrors.WrapInternalError(err, "shape extraction failed")
	}

	areas, err := entity.AssignSides(shapes, s.opts.Assign)
	if err != nil {
		return nil, err
	}

	return &entity.FrameAnalysis{
		Areas:  areas,
		Shapes: shapes,
		Mask:   mask,
	}, nil
}

// ProcessSingle анализирует одно изображение без агрегации.
func (s *AnalysisService) ProcessSingle(ctx context.Context, data []byte) (*entity.FrameAnalysis, error) {
	if s.model == nil {
		return nil, apperrors.ErrModelNotLoaded
	}

	img, err := s.decoder.Decode(data)
	if err != nil {
		return nil, err
	}
	return s.AnalyzeFrame(ctx, img)
}

// DetectStenosis анализирует набор изображений и агрегирует стеноз.
// Ошибка на любом изображении прерывает весь набор.
func (s *AnalysisService) DetectStenosis(ctx context.Context, images [][]byte) (*entity.BatchAnalysis, error) {
	if s.model == nil {
		return nil, apperrors.ErrModelNotLoaded
	}
	if len(images) == 0 {
		return nil, apperrors.NewValidationError("no images provided")
	}

	decoded := make([]image.Image, len(images))
	for i, data := range images {
		img, err := s.decoder.Decode(data)
		if err != nil {
			return nil, apperrors.WrapDecodeError(err, "failed to decode image").WithContext("index", i)
		}
		decoded[i] = img
	}

	return s.analyzeAll(ctx, decoded)
}

// DetectFromCenter анализирует окно DICOM-срезов вокруг center.
func (s *AnalysisService) DetectFromCenter(ctx context.Context, dir string, center int) (*entity.SeriesAnalysis, error) {
	if s.model == nil {
		return nil, apperrors.ErrModelNotLoaded
	}

	window, err := s.series.ReadWindow(ctx, dir, center)
	if err != nil {
		return nil, err
	}

	images := make([]image.Image, len(window.Slices))
	for i, sl := range window.Slices {
		images[i] = sl
	}

	batch, err := s.analyzeAll(ctx, images)
	if err != nil {
		return nil, err
	}

	return &entity.SeriesAnalysis{
		BatchAnalysis: batch,
		Center:        window.Center,
		Start:         window.Start,
		End:           window.End,
	}, nil
}

func (s *AnalysisService) analyzeAll(ctx context.Context, images []image.Image) (*entity.BatchAnalysis, error) {
	start := time.Now()

	frames := make([]entity.FrameAnalysis, len(images))
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fa, err := s.AnalyzeFrame(ctx, img)
		if err != nil {
			if appErr, ok := err.(*apperrors.AppError); ok && appErr != apperrors.ErrModelNotLoaded {
				return nil, apperrors.Wrap(appErr, appErr.Type, "frame analysis failed").WithContext("frame", i)
			}
			return nil, err
		}
		frames[i] = *fa
	}

	batch := entity.NewBatchAnalysis(frames)
	s.logger.Info("Stenosis estimated",
		"frames", len(frames),
		"left_percent", batch.Stenosis.LeftPercent,
		"right_percent", batch.Stenosis.RightPercent,
		"vessel_detected", batch.Stenosis.VesselDetected,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return batch, nil
}
