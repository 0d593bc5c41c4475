package entity

import "math"

// StenosisResult процент сужения для каждой стороны.
type StenosisResult struct {
	LeftPercent  float64
	RightPercent float64
	// VesselDetected false, когда максимум площади хотя бы одной стороны нулевой:
	// тогда 0% означает «сосуд не найден», а не «сужения нет».
	VesselDetected bool
}

// EstimateStenosis оценивает стеноз по последовательностям площадей.
// Для каждой площади a: 1 - sqrt(a / A_max), где A_max наибольшая площадь стороны;
// результат есть среднее по кадрам в процентах.
func EstimateStenosis(left, right []float64) StenosisResult {
	if len(left) == 0 || len(right) == 0 {
		return StenosisResult{}
	}

	leftMax, rightMax := maxOf(left), maxOf(right)
	if leftMax == 0 || rightMax == 0 {
		return StenosisResult{}
	}

	return StenosisResult{
		LeftPercent:    meanNarrowing(left, leftMax) * 100,
		RightPercent:   meanNarrowing(right, rightMax) * 100,
		VesselDetected: true,
	}
}

// Rounded округляет проценты до сотых.
func (r StenosisResult) Rounded() StenosisResult {
	r.LeftPercent = round2(r.LeftPercent)
	r.RightPercent = round2(r.RightPercent)
	return r
}

// Severity степень по худшей стороне.
func (r StenosisResult) Severity() Severity {
	return ClassifySeverity(math.Max(r.LeftPercent, r.RightPercent))
}

func meanNarrowing(areas []float64, max float64) float64 {
	sum := 0.0
	for _, a := range areas {
		sum += 1 - math.Sqrt(a/max)
	}
	return sum / float64(len(areas))
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Severity клиническая градация стеноза.
type Severity string

const (
	SeverityMild        Severity = "mild"
	SeverityModerate    Severity = "moderate"
	SeveritySignificant Severity = "significant"
	SeveritySevere      Severity = "severe"
)

func ClassifySeverity(percent float64) Severity {
	switch {
	case percent < 30:
		return SeverityMild
	case percent < 50:
		return SeverityModerate
	case percent < 70:
		return SeveritySignificant
	default:
		return SeveritySevere
	}
}
