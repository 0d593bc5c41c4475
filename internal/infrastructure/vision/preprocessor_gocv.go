//go:build gocv
// +build gocv

package vision

import (
	"errors"
	"image"

	"gocv.io/x/gocv"
)

func (p *Preprocessor) equalize(img image.Image) ([]uint8, error) {
	mat, err := imageToGrayMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(mat, &resized, image.Pt(p.Width, p.Height), 0, 0, gocv.InterpolationLinear)

	clahe := gocv.NewCLAHEWithParams(p.ClipLimit, image.Pt(p.TileGrid, p.TileGrid))
	defer clahe.Close()

	equalized := gocv.NewMat()
	defer equalized.Close()
	clahe.Apply(resized, &equalized)

	if equalized.Empty() {
		return nil, errors.New("clahe produced empty image")
	}
	return equalized.ToBytes(), nil
}

func imageToGrayMat(img image.Image) (gocv.Mat, error) {
	if gray, ok := img.(*image.Gray); ok {
		return gocv.ImageGrayToMatGray(gray)
	}

	bgr, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer bgr.Close()

	gray := gocv.NewMat()
	gocv.CvtColor(bgr, &gray, gocv.ColorBGRToGray)
	return gray, nil
}
