package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	apperrors "stenosis-api/pkg/errors"
)

const (
	BackendRemote = "remote"
	BackendONNX   = "onnx"

	PolicyStrict   = "strict"
	PolicyLeftmost = "leftmost"
)

type Config struct {
	HTTP     HTTPConfig
	Image    ImageConfig
	Model    ModelConfig
	Analysis AnalysisConfig
	DICOM    DICOMConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
}

type HTTPConfig struct {
	Port        int
	GinMode     string
	CORSOrigins []string
	MaxUploadMB int
}

type ImageConfig struct {
	Width          int
	Height         int
	CLAHEClipLimit float64
	CLAHETileGrid  int
}

type ModelConfig struct {
	Backend     string
	URL         string
	Name        string
	Path        string
	InputLayout string
	TimeoutSec  int
	ClassWeight float64 // вес класса при обучении, на инференс не влияет
	Threshold   float64
}

type AnalysisConfig struct {
	MinShapeArea     int
	AssignmentPolicy string
}

type DICOMConfig struct {
	Root         string
	WindowRadius int
	Workers      int
}

type LoggingConfig struct {
	Level  string
	Format string
}

type MetricsConfig struct {
	Enabled bool
}

// Load читает конфигурацию из env-файла (если есть) и переменных окружения.
func Load() (*Config, error) {
	// Файл необязателен, переменные окружения имеют приоритет
	_ = godotenv.Load(getEnv("CONFIG_FILE", ".env"))

	p := &parser{}
	cfg := &Config{
		HTTP: HTTPConfig{
			Port:        p.getInt("HTTP_PORT", 5000),
			GinMode:     getEnv("GIN_MODE", "release"),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
			MaxUploadMB: p.getInt("MAX_UPLOAD_MB", 50),
		},
		Image: ImageConfig{
			Width:          p.getInt("IMAGE_WIDTH", 256),
			Height:         p.getInt("IMAGE_HEIGHT", 256),
			CLAHEClipLimit: p.getFloat("CLAHE_CLIP_LIMIT", 2.0),
			CLAHETileGrid:  p.getInt("CLAHE_TILE_GRID", 8),
		},
		Model: ModelConfig{
			Backend:     strings.ToLower(getEnv("MODEL_BACKEND", BackendRemote)),
			URL:         strings.TrimRight(getEnv("MODEL_URL", "http://localhost:8501"), "/"),
			Name:        getEnv("MODEL_NAME", "carotid_unet"),
			Path:        getEnv("MODEL_PATH", "carotide_detector_v2.onnx"),
			InputLayout: strings.ToLower(getEnv("MODEL_INPUT_LAYOUT", "nhwc")),
			TimeoutSec:  p.getInt("MODEL_TIMEOUT_SEC", 30),
			ClassWeight: p.getFloat("MODEL_CLASS_WEIGHT", 10),
			Threshold:   p.getFloat("MODEL_THRESHOLD", 0.5),
		},
		Analysis: AnalysisConfig{
			MinShapeArea:     p.getInt("MIN_SHAPE_AREA", 10),
			AssignmentPolicy: strings.ToLower(getEnv("ASSIGNMENT_POLICY", PolicyStrict)),
		},
		DICOM: DICOMConfig{
			Root:         getEnv("DICOM_ROOT", ""),
			WindowRadius: p.getInt("DICOM_WINDOW_RADIUS", 30),
			Workers:      p.getInt("DICOM_WORKERS", 4),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
		},
		Metrics: MetricsConfig{
			Enabled: p.getBool("METRICS_ENABLED", true),
		},
	}

	if err := errors.Join(p.errs...); err != nil {
		return nil, apperrors.WrapConfigurationError(err, "invalid environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет диапазоны значений.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.HTTP.Port > 0 && c.HTTP.Port < 65536, "HTTP_PORT out of range: %d", c.HTTP.Port)
	check(c.HTTP.MaxUploadMB > 0, "MAX_UPLOAD_MB must be positive")
	check(c.Image.Width > 0 && c.Image.Height > 0, "image size must be positive: %dx%d", c.Image.Width, c.Image.Height)
	check(c.Image.CLAHEClipLimit > 0, "CLAHE_CLIP_LIMIT must be positive")
	check(c.Image.CLAHETileGrid > 0, "CLAHE_TILE_GRID must be positive")
	check(c.Model.Backend == BackendRemote || c.Model.Backend == BackendONNX, "unknown MODEL_BACKEND %q", c.Model.Backend)
	check(c.Model.InputLayout == "nhwc" || c.Model.InputLayout == "nchw", "unknown MODEL_INPUT_LAYOUT %q", c.Model.InputLayout)
	check(c.Model.TimeoutSec > 0, "MODEL_TIMEOUT_SEC must be positive")
	check(c.Model.Threshold > 0 && c.Model.Threshold < 1, "MODEL_THRESHOLD must be in (0,1): %v", c.Model.Threshold)
	check(c.Analysis.MinShapeArea >= 0, "MIN_SHAPE_AREA must not be negative")
	check(c.Analysis.AssignmentPolicy == PolicyStrict || c.Analysis.AssignmentPolicy == PolicyLeftmost,
		"unknown ASSIGNMENT_POLICY %q", c.Analysis.AssignmentPolicy)
	check(c.DICOM.WindowRadius >= 0, "DICOM_WINDOW_RADIUS must not be negative")
	check(c.DICOM.Workers > 0, "DICOM_WORKERS must be positive")

	if err := errors.Join(errs...); err != nil {
		return apperrors.WrapConfigurationError(err, "invalid configuration")
	}
	return nil
}

// Addr адрес для http.Server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTP.Port)
}

type parser struct {
	errs []error
}

func (p *parser) getInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return defaultVal
	}
	return n
}

func (p *parser) getFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return defaultVal
	}
	return f
}

func (p *parser) getBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return defaultVal
	}
	return b
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
