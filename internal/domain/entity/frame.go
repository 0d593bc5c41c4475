package entity

import "image"

// Frame нормализованное полутоновое изображение, значения в [0,1].
type Frame struct {
	Width  int
	Height int
	Pix    []float32 // построчно, len = Width*Height
}

// NewFrame создаёт пустой кадр заданного размера.
func NewFrame(width, height int) Frame {
	return Frame{Width: width, Height: height, Pix: make([]float32, width*height)}
}

func (f Frame) At(x, y int) float32 {
	return f.Pix[y*f.Width+x]
}

// ProbabilityMap выход сигмоиды модели, той же формы, что и кадр.
type ProbabilityMap struct {
	Width  int
	Height int
	Pix    []float32
}

// Binarize переводит вероятности в маску: 1 там, где p > threshold.
func (p ProbabilityMap) Binarize(threshold float64) Mask {
	mask := NewMask(p.Width, p.Height)
	for i, v := range p.Pix {
		if float64(v) > threshold {
			mask.Pix[i] = 1
		}
	}
	return mask
}

// Mask бинарная маска, 1 означает пиксель сосуда.
type Mask struct {
	Width  int
	Height int
	Pix    []uint8
}

func NewMask(width, height int) Mask {
	return Mask{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

func (m Mask) At(x, y int) uint8 {
	return m.Pix[y*m.Width+x]
}

func (m Mask) Set(x, y int, v uint8) {
	m.Pix[y*m.Width+x] = v
}

// Foreground возвращает число пикселей сосуда.
func (m Mask) Foreground() int {
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// Image возвращает маску как 8-битное изображение (0 / 255).
func (m Mask) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+m.Width]
		for x := range row {
			if m.Pix[y*m.Width+x] != 0 {
				row[x] = 255
			}
		}
	}
	return img
}
