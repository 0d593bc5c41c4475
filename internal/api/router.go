package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"stenosis-api/internal/infrastructure/metrics"
)

type RouterOptions struct {
	CORSOrigins  []string
	MaxBodyBytes int64
	Metrics      *metrics.Metrics // nil отключает /metrics
	Logger       *slog.Logger
}

// NewRouter настраивает gin: middleware и маршруты /api.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = opts.MaxBodyBytes

	router.Use(
		recovery(opts.Logger),
		requestID(),
		accessLog(opts.Logger),
		cors(opts.CORSOrigins),
	)
	if opts.Metrics != nil {
		router.Use(observe(opts.Metrics))
	}
	router.Use(bodyLimit(opts.MaxBodyBytes))

	api := router.Group("/api")
	{
		api.GET("/health", h.Health)
		api.POST("/detect-stenosis", h.DetectStenosis)
		api.POST("/process-single", h.ProcessSingle)
		api.POST("/detect-stenosis-center", h.DetectFromCenter)
	}

	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	return router
}
