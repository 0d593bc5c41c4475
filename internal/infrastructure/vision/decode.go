package vision

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	apperrors "stenosis-api/pkg/errors"
)

// maxPixels защита от слишком больших изображений.
const maxPixels = 8192 * 8192

// Decoder декодирует PNG, JPEG, GIF, BMP, TIFF и WebP.
type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode возвращает ошибку декодирования, если байты не являются изображением.
func (d *Decoder) Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, apperrors.NewDecodeError("empty image payload")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.WrapDecodeError(err, "input is not a valid image")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, apperrors.NewDecodeError("empty image").WithContext("format", format)
	}
	if cfg.Width*cfg.Height > maxPixels {
		return nil, apperrors.NewDecodeError("image is too large").
			WithContext("width", cfg.Width).
			WithContext("height", cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.WrapDecodeError(err, "input is not a valid image").WithContext("format", format)
	}
	return img, nil
}
