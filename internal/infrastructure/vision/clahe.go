//go:build !gocv
// +build !gocv

package vision

import (
	"image"
	"math"
)

const histBins = 256

// applyCLAHE выравнивает гистограмму по тайлам с ограничением контраста.
// Поведение совпадает с cv::CLAHE: сетка ровно grid x grid тайлов,
// изображение некратного размера дополняется снизу и справа отражением
// BORDER_REFLECT_101, LUT соседних тайлов интерполируются билинейно.
func applyCLAHE(src *image.Gray, clipLimit float64, grid int) *image.Gray {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}
	grid = max(grid, 1)

	ext := src
	if w%grid != 0 || h%grid != 0 {
		// как в OpenCV: отступ считается по обеим осям, кратная ось получает целый тайл
		ext = padReflect101(src, w+grid-w%grid, h+grid-h%grid)
	}
	extW, extH := ext.Bounds().Dx(), ext.Bounds().Dy()
	tileW, tileH := extW/grid, extH/grid
	tiles := grid

	luts := make([][histBins]uint8, tiles*tiles)
	for ty := 0; ty < tiles; ty++ {
		for tx := 0; tx < tiles; tx++ {
			x0, y0 := tx*tileW, ty*tileH

			var hist [histBins]int
			for y := y0; y < y0+tileH; y++ {
				for _, v := range ext.Pix[y*ext.Stride+x0 : y*ext.Stride+x0+tileW] {
					hist[v]++
				}
			}
			luts[ty*tiles+tx] = tileLUT(hist, tileW*tileH, clipLimit)
		}
	}

	invW, invH := 1/float64(tileW), 1/float64(tileH)
	for y := 0; y < h; y++ {
		fy := float64(y)*invH - 0.5
		ty1 := int(math.Floor(fy))
		ya := fy - float64(ty1)
		ty2 := min(ty1+1, tiles-1)
		ty1 = max(ty1, 0)

		for x := 0; x < w; x++ {
			fx := float64(x)*invW - 0.5
			tx1 := int(math.Floor(fx))
			xa := fx - float64(tx1)
			tx2 := min(tx1+1, tiles-1)
			tx1 = max(tx1, 0)

			v := src.Pix[y*src.Stride+x]
			top := float64(luts[ty1*tiles+tx1][v])*(1-xa) + float64(luts[ty1*tiles+tx2][v])*xa
			bottom := float64(luts[ty2*tiles+tx1][v])*(1-xa) + float64(luts[ty2*tiles+tx2][v])*xa
			dst.Pix[y*dst.Stride+x] = clampUint8(top*(1-ya) + bottom*ya)
		}
	}
	return dst
}

// padReflect101 дополняет изображение до w x h снизу и справа зеркально без повтора края (dcb|abcd|cba).
func padReflect101(src *image.Gray, w, h int) *image.Gray {
	sw, sh := src.Bounds().Dx(), src.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := src.Pix[reflect101(y, sh)*src.Stride:]
		for x := 0; x < w; x++ {
			out.Pix[y*out.Stride+x] = row[reflect101(x, sw)]
		}
	}
	return out
}

func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i %= period
	if i >= n {
		i = period - i
	}
	return i
}

// tileLUT строит таблицу преобразования для одного тайла.
func tileLUT(hist [histBins]int, area int, clipLimit float64) [histBins]uint8 {
	clipped := 0
	if clipLimit > 0 {
		limit := max(int(clipLimit*float64(area)/histBins), 1)
		for i := range hist {
			if hist[i] > limit {
				clipped += hist[i] - limit
				hist[i] = limit
			}
		}
	}

	bonus := clipped / histBins
	residual := clipped - bonus*histBins
	for i := range hist {
		hist[i] += bonus
	}
	if residual > 0 {
		step := max(histBins/residual, 1)
		for i := 0; i < histBins && residual > 0; i += step {
			hist[i]++
			residual--
		}
	}

	var lut [histBins]uint8
	scale := 255 / float64(area)
	sum := 0
	for i, n := range hist {
		sum += n
		lut[i] = clampUint8(float64(sum) * scale)
	}
	return lut
}

func clampUint8(v float64) uint8 {
	v = math.Round(v)
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}
