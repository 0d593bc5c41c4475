package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"stenosis-api/config"
	app "stenosis-api/internal/application"
	"stenosis-api/internal/domain/entity"
	"stenosis-api/internal/domain/port"
	"stenosis-api/internal/infrastructure/dicom"
	"stenosis-api/internal/infrastructure/inference"
	"stenosis-api/internal/infrastructure/metrics"
	"stenosis-api/internal/infrastructure/storage"
	"stenosis-api/internal/infrastructure/vision"
)

type Container struct {
	Config          *config.Config
	Logger          *slog.Logger
	Metrics         *metrics.Metrics // nil, если метрики выключены
	MaskEncoder     port.MaskEncoder
	AnalysisService *app.AnalysisService

	closers []io.Closer
}

// ModelLoader загружает модель по конфигурации.
type ModelLoader func(ctx context.Context, cfg *config.Config) (port.Segmenter, io.Closer, error)

// New собирает сервисы. Ошибка загрузки модели не фатальна:
// сервис стартует без модели, а анализ отвечает ModelNotLoaded.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, load ModelLoader) *Container {
	logger.Info("Initializing container")

	c := &Container{
		Config:      cfg,
		Logger:      logger,
		MaskEncoder: vision.NewPNGEncoder(),
	}
	if cfg.Metrics.Enabled {
		c.Metrics = metrics.New()
	}

	var model port.Segmenter
	seg, closer, err := load(ctx, cfg)
	if err != nil {
		logger.Error("Failed to load model",
			"backend", cfg.Model.Backend,
			"error", err,
		)
	} else {
		model = seg
		if closer != nil {
			c.closers = append(c.closers, closer)
		}
		if c.Metrics != nil {
			model = c.Metrics.Instrument(seg)
			c.Metrics.ModelLoaded.Store(true)
		}
		info := seg.Info()
		logger.Info("Model loaded",
			"name", info.Name,
			"backend", info.Backend,
			"version", info.Version,
			"input", fmt.Sprintf("%dx%d", info.InputWidth, info.InputHeight),
			"class_weight", cfg.Model.ClassWeight,
		)
	}

	files := storage.NewLocalDirectory(cfg.DICOM.Root, logger)
	series := dicom.NewSeriesReader(files, cfg.DICOM.WindowRadius, cfg.DICOM.Workers, logger)

	c.AnalysisService = app.NewAnalysisService(
		vision.NewDecoder(),
		vision.NewPreprocessor(cfg.Image.Width, cfg.Image.Height, cfg.Image.CLAHEClipLimit, cfg.Image.CLAHETileGrid),
		model,
		vision.NewShapeExtractor(),
		series,
		app.AnalysisOptions{
			Threshold: cfg.Model.Threshold,
			Assign: entity.AssignOptions{
				MinArea: float64(cfg.Analysis.MinShapeArea),
				Strict:  cfg.Analysis.AssignmentPolicy == config.PolicyStrict,
			},
		},
		logger,
	)

	logger.Info("Container initialized successfully")
	return c
}

// LoadModel загружает модель выбранного бэкенда.
func LoadModel(ctx context.Context, cfg *config.Config) (port.Segmenter, io.Closer, error) {
	switch cfg.Model.Backend {
	case config.BackendRemote:
		client := inference.NewServingClient(
			cfg.Model.URL,
			cfg.Model.Name,
			cfg.Image.Width,
			cfg.Image.Height,
			time.Duration(cfg.Model.TimeoutSec)*time.Second,
		)
		if err := client.Ping(ctx); err != nil {
			return nil, nil, err
		}
		return client, nil, nil
	case config.BackendONNX:
		seg, err := vision.LoadONNXSegmenter(cfg.Model.Path, cfg.Image.Width, cfg.Image.Height, cfg.Model.InputLayout)
		if err != nil {
			return nil, nil, err
		}
		return seg, seg, nil
	default:
		return nil, nil, fmt.Errorf("unknown model backend %q", cfg.Model.Backend)
	}
}

// Close освобождает ресурсы модели.
func (c *Container) Close() error {
	var errs []error
	for _, cl := range c.closers {
		errs = append(errs, cl.Close())
	}
	return errors.Join(errs...)
}
