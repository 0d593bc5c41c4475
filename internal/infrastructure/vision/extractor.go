//go:build !gocv
// +build !gocv

package vision

import (
	"stenosis-api/internal/domain/entity"
	apperrors "stenosis-api/pkg/errors"
)

// ShapeExtractor выделяет 8-связные области маски.
type ShapeExtractor struct{}

func NewShapeExtractor() *ShapeExtractor {
	return &ShapeExtractor{}
}

// Extract размечает маску в два прохода (union-find) и возвращает
// площадь и горизонтальный центр масс каждой области в порядке обхода.
func (e *ShapeExtractor) Extract(mask entity.Mask) ([]entity.Shape, error) {
	w, h := mask.Width, mask.Height
	if w < 0 || h < 0 || len(mask.Pix) != w*h {
		return nil, apperrors.NewValidationError("mask size mismatch").
			WithContext("width", w).
			WithContext("height", h).
			WithContext("pixels", len(mask.Pix))
	}

	labels := make([]int32, w*h)
	uf := newUnionFind()

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if mask.Pix[i] == 0 {
				continue
			}

			var label int32
			// уже размеченные соседи: W, NW, N, NE
			for _, n := range [4][2]int{{x - 1, y}, {x - 1, y - 1}, {x, y - 1}, {x + 1, y - 1}} {
				nx, ny := n[0], n[1]
				if nx < 0 || ny < 0 || nx >= w {
					continue
				}
				nl := labels[ny*w+nx]
				if nl == 0 {
					continue
				}
				if label == 0 {
					label = uf.find(nl)
				} else {
					label = uf.union(label, nl)
				}
			}
			if label == 0 {
				label = uf.add()
			}
			labels[i] = label
		}
	}

	type acc struct {
		area int
		sumX int
	}
	index := make(map[int32]int)
	accs := make([]acc, 0)
	for i, l := range labels {
		if l == 0 {
			continue
		}
		root := uf.find(l)
		k, ok := index[root]
		if !ok {
			k = len(accs)
			index[root] = k
			accs = append(accs, acc{})
		}
		accs[k].area++
		accs[k].sumX += i % w
	}

	shapes := make([]entity.Shape, len(accs))
	for k, a := range accs {
		shapes[k] = entity.Shape{
			Area:      float64(a.area),
			CentroidX: float64(a.sumX) / float64(a.area),
		}
	}
	return shapes, nil
}

type unionFind struct {
	parent []int32
}

func newUnionFind() *unionFind {
	// метка 0 зарезервирована под фон
	return &unionFind{parent: []int32{0}}
}

func (u *unionFind) add() int32 {
	l := int32(len(u.parent))
	u.parent = append(u.parent, l)
	return l
}

func (u *unionFind) find(l int32) int32 {
	for u.parent[l] != l {
		u.parent[l] = u.parent[u.parent[l]]
		l = u.parent[l]
	}
	return l
}

func (u *unionFind) union(a, b int32) int32 {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return ra
	}
	if rb < ra {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	return ra
}
