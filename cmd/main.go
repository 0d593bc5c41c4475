package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"stenosis-api/config"
	"stenosis-api/internal/api"
	"stenosis-api/internal/container"
	"stenosis-api/pkg/logger"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	appLogger.Info("Starting stenosis API",
		"version", version,
		"port", cfg.HTTP.Port,
		"model_backend", cfg.Model.Backend,
		"assignment_policy", cfg.Analysis.AssignmentPolicy,
	)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	// Модель загружается один раз до старта сервера
	loadCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Model.TimeoutSec)*time.Second)
	cnt := container.New(loadCtx, cfg, appLogger, container.LoadModel)
	cancel()
	defer func() {
		if err := cnt.Close(); err != nil {
			appLogger.Error("Error closing container", "error", err)
		}
	}()

	gin.SetMode(cfg.HTTP.GinMode)
	handler := api.NewHandler(cnt.AnalysisService, cnt.MaskEncoder, version, appLogger)
	router := api.NewRouter(handler, api.RouterOptions{
		CORSOrigins:  cfg.HTTP.CORSOrigins,
		MaxBodyBytes: int64(cfg.HTTP.MaxUploadMB) << 20,
		Metrics:      cnt.Metrics,
		Logger:       appLogger,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server error", "error", err)
			done <- syscall.SIGTERM
		}
	}()

	<-done
	appLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown error", "error", err)
	}
	appLogger.Info("Server stopped")
}
