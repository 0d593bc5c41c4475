//go:build !gocv
// +build !gocv

package vision

import (
	"image"

	"golang.org/x/image/draw"
)

// equalize возвращает выровненные по контрасту пиксели размера Width x Height.
func (p *Preprocessor) equalize(img image.Image) ([]uint8, error) {
	gray := toGray(img)

	resized := image.NewGray(image.Rect(0, 0, p.Width, p.Height))
	draw.BiLinear.Scale(resized, resized.Bounds(), gray, gray.Bounds(), draw.Src, nil)

	return applyCLAHE(resized, p.ClipLimit, p.TileGrid).Pix, nil
}
