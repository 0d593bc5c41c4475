package entity

import (
	"sort"

	apperrors "stenosis-api/pkg/errors"
)

// Shape связная область маски (сечение сосуда).
type Shape struct {
	Area      float64 // площадь в пикселях
	CentroidX float64 // горизонтальный центр масс
}

// SideAreas площади левого и правого сосуда на одном кадре.
type SideAreas struct {
	Left  float64
	Right float64
}

// AssignOptions правила назначения сторон.
type AssignOptions struct {
	MinArea float64 // области меньше считаются шумом
	Strict  bool    // больше двух областей считается ошибкой
}

// SortByCentroid упорядочивает области слева направо. Сортировка стабильная.
func SortByCentroid(shapes []Shape) []Shape {
	sorted := make([]Shape, len(shapes))
	copy(sorted, shapes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CentroidX < sorted[j].CentroidX
	})
	return sorted
}

// AssignSides назначает две самые левые значимые области левому и правому сосуду.
// Одна область даёт (area, 0), ни одной даёт (0, 0).
func AssignSides(shapes []Shape, opts AssignOptions) (SideAreas, error) {
	significant := make([]Shape, 0, len(shapes))
	for _, s := range shapes {
		if s.Area > 0 && s.Area >= opts.MinArea {
			significant = append(significant, s)
		}
	}

	if opts.Strict && len(significant) > 2 {
		return SideAreas{}, apperrors.NewAmbiguousSegmentationError(len(significant))
	}

	sorted := SortByCentroid(significant)
	switch {
	case len(sorted) >= 2:
		return SideAreas{Left: sorted[0].Area, Right: sorted[1].Area}, nil
	case len(sorted) == 1:
		return SideAreas{Left: sorted[0].Area}, nil
	default:
		return SideAreas{}, nil
	}
}
