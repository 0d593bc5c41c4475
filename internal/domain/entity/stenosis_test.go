package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEstimateStenosisZeroMax(t *testing.T) {
	res := EstimateStenosis([]float64{0, 0, 0}, []float64{120, 80})
	require.Equal(t, 0.0, res.LeftPercent)
	require.Equal(t, 0.0, res.RightPercent)
	require.False(t, res.VesselDetected)

	res = EstimateStenosis([]float64{50}, []float64{0})
	require.Equal(t, StenosisResult{}, res)
}

func TestEstimateStenosisEmpty(t *testing.T) {
	require.Equal(t, StenosisResult{}, EstimateStenosis(nil, []float64{10}))
	require.Equal(t, StenosisResult{}, EstimateStenosis([]float64{10}, nil))
}

func TestEstimateStenosisIdenticalAreas(t *testing.T) {
	res := EstimateStenosis([]float64{400, 400, 400}, []float64{90, 90})
	require.Equal(t, 0.0, res.LeftPercent)
	require.Equal(t, 0.0, res.RightPercent)
	require.True(t, res.VesselDetected)
}

func TestEstimateStenosisQuarterArea(t *testing.T) {
	// одна площадь A_max и одна A_max/4: (0 + 50) / 2
	res := EstimateStenosis([]float64{400, 100}, []float64{400})
	require.InDelta(t, 25.0, res.LeftPercent, 1e-9)
	require.Equal(t, 0.0, res.RightPercent)

	res = EstimateStenosis([]float64{100, 400, 100, 100}, []float64{36, 9})
	require.InDelta(t, 37.5, res.LeftPercent, 1e-9)
	require.InDelta(t, 25.0, res.RightPercent, 1e-9)
}

func TestStenosisRounded(t *testing.T) {
	res := StenosisResult{LeftPercent: 33.33333, RightPercent: 12.005001, VesselDetected: true}.Rounded()
	require.Equal(t, 33.33, res.LeftPercent)
	require.Equal(t, 12.01, res.RightPercent)
	require.True(t, res.VesselDetected)
}

func TestClassifySeverity(t *testing.T) {
	cases := []struct {
		percent float64
		want    Severity
	}{
		{0, SeverityMild},
		{29.99, SeverityMild},
		{30, SeverityModerate},
		{49.9, SeverityModerate},
		{50, SeveritySignificant},
		{69.99, SeveritySignificant},
		{70, SeveritySevere},
		{100, SeveritySevere},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ClassifySeverity(tc.percent), "percent=%v", tc.percent)
	}

	require.Equal(t, SeverityModerate, StenosisResult{LeftPercent: 10, RightPercent: 42}.Severity())
}

func TestNewBatchAnalysis(t *testing.T) {
	batch := NewBatchAnalysis([]FrameAnalysis{
		{Areas: SideAreas{Left: 400, Right: 100}},
		{Areas: SideAreas{Left: 100, Right: 100}},
	})
	require.Equal(t, []float64{400, 100}, batch.AreasLeft())
	require.Equal(t, []float64{100, 100}, batch.AreasRight())
	require.InDelta(t, 25.0, batch.Stenosis.LeftPercent, 1e-9)
	require.Equal(t, 0.0, batch.Stenosis.RightPercent)
}
