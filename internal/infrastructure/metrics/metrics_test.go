package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"stenosis-api/internal/domain/entity"
)

type stubSegmenter struct {
	err error
}

func (s stubSegmenter) Segment(ctx context.Context, frame entity.Frame) (entity.ProbabilityMap, error) {
	if s.err != nil {
		return entity.ProbabilityMap{}, s.err
	}
	return entity.ProbabilityMap{Width: frame.Width, Height: frame.Height, Pix: make([]float32, len(frame.Pix))}, nil
}

func (s stubSegmenter) Info() entity.ModelInfo {
	return entity.ModelInfo{Name: "stub"}
}

func TestInstrumentedSegmenter(t *testing.T) {
	m := New()

	ok := m.Instrument(stubSegmenter{})
	_, err := ok.Segment(context.Background(), entity.NewFrame(2, 2))
	require.NoError(t, err)
	require.Equal(t, "stub", ok.Info().Name)

	failing := m.Instrument(stubSegmenter{err: errors.New("boom")})
	_, err = failing.Segment(context.Background(), entity.NewFrame(2, 2))
	require.Error(t, err)

	require.Equal(t, uint64(1), m.FramesAnalysed.Load())
	require.Equal(t, 1.0, testutil.ToFloat64(m.inferenceErrors))
}

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest("/api/health", http.MethodGet, 200, 5*time.Millisecond)
	m.ObserveRequest("/api/health", http.MethodGet, 200, 5*time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/health", "GET", "200")))
}

func TestHandlerExposesModelGauge(t *testing.T) {
	m := New()
	m.ModelLoaded.Store(true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "stenosis_model_loaded 1"))
}

func TestHandlerExposesFramesCounter(t *testing.T) {
	m := New()
	m.FramesAnalysed.Add(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	require.Contains(t, body, "# TYPE stenosis_frames_analysed_total counter")
	require.Contains(t, body, "stenosis_frames_analysed_total 3")
}
