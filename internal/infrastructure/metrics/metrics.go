package metrics

import (
	"context"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stenosis-api/internal/domain/entity"
	"stenosis-api/internal/domain/port"
)

// Metrics метрики сервиса на собственном реестре.
type Metrics struct {
	FramesAnalysed atomic.Uint64
	ModelLoaded    atomic.Bool

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	inferenceLatency prometheus.Histogram
	inferenceErrors  prometheus.Counter

	registry *prometheus.Registry
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stenosis_http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stenosis_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		inferenceLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stenosis_inference_duration_seconds",
			Help:    "Segmentation model latency per frame",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		inferenceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stenosis_inference_errors_total",
			Help: "Failed segmentation calls",
		}),
	}

	m.registry.MustRegister(m.httpRequests, m.httpDuration, m.inferenceLatency, m.inferenceErrors)

	m.registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "stenosis_frames_analysed_total",
			Help: "Total frames passed through the segmentation pipeline",
		},
		func() float64 { return float64(m.FramesAnalysed.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "stenosis_model_loaded",
			Help: "1 if the segmentation model is loaded",
		},
		func() float64 {
			if m.ModelLoaded.Load() {
				return 1
			}
			return 0
		},
	))

	return m
}

// ObserveRequest учитывает завершённый HTTP-запрос.
func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Handler возвращает HTTP-обработчик для /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry нужен тестам.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// InstrumentedSegmenter добавляет к модели метрики задержки и ошибок.
type InstrumentedSegmenter struct {
	next    port.Segmenter
	metrics *Metrics
}

func (m *Metrics) Instrument(next port.Segmenter) *InstrumentedSegmenter {
	return &InstrumentedSegmenter{next: next, metrics: m}
}

func (s *InstrumentedSegmenter) Segment(ctx context.Context, frame entity.Frame) (entity.ProbabilityMap, error) {
	start := time.Now()
	probs, err := s.next.Segment(ctx, frame)
	s.metrics.inferenceLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.inferenceErrors.Inc()
		return probs, err
	}
	s.metrics.FramesAnalysed.Add(1)
	return probs, nil
}

func (s *InstrumentedSegmenter) Info() entity.ModelInfo {
	return s.next.Info()
}

var _ port.Segmenter = (*InstrumentedSegmenter)(nil)
