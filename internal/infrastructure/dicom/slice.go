package dicom

import (
	"errors"
	"fmt"
	"image"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
	"golang.org/x/image/draw"
)

// ReadSlice читает первый кадр пиксельных данных среза как 8-битный полутон.
// Нативные данные нормализуются по min/max среза.
// Парсер паникует на повреждённых заголовках, паника возвращается как ошибка.
func ReadSlice(path string) (img *image.Gray, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			img, err = nil, fmt.Errorf("parse %s: %v", path, rec)
		}
	}()

	ds, err := dicom.ParseFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	el, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil, fmt.Errorf("pixel data: %w", err)
	}

	info := dicom.MustGetPixelDataInfo(el.Value)
	if len(info.Frames) == 0 {
		return nil, errors.New("no frames in pixel data")
	}

	fr := info.Frames[0]
	if fr.Encapsulated {
		decoded, err := fr.GetImage()
		if err != nil {
			return nil, fmt.Errorf("decode encapsulated frame: %w", err)
		}
		return grayFrom(decoded), nil
	}

	return normalize(fr.NativeData.Rows, fr.NativeData.Cols, fr.NativeData.Data)
}

// normalize растягивает значения пикселей в [0,255]; постоянный срез даёт нули.
// Для многоканальных пикселей берётся среднее по каналам.
func normalize(rows, cols int, data [][]int) (*image.Gray, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", cols, rows)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("pixel count %d does not match %dx%d", len(data), cols, rows)
	}

	values := make([]int, len(data))
	lo, hi := 0, 0
	for i, px := range data {
		if len(px) == 0 {
			return nil, fmt.Errorf("empty pixel at %d", i)
		}
		sum := 0
		for _, s := range px {
			sum += s
		}
		v := sum / len(px)
		values[i] = v
		if i == 0 || v < lo {
			lo = v
		}
		if i == 0 || v > hi {
			hi = v
		}
	}

	img := image.NewGray(image.Rect(0, 0, cols, rows))
	if hi == lo {
		return img, nil
	}
	span := float64(hi - lo)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			img.Pix[y*img.Stride+x] = uint8(float64(values[y*cols+x]-lo)*255/span + 0.5)
		}
	}
	return img, nil
}

func grayFrom(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}
