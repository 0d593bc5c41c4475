package vision

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"stenosis-api/internal/domain/entity"
	apperrors "stenosis-api/pkg/errors"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecoder_Decode(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 12, 7))
	src.Set(3, 4, color.RGBA{R: 200, A: 255})

	img, err := NewDecoder().Decode(encodePNG(t, src))
	require.NoError(t, err)
	require.Equal(t, 12, img.Bounds().Dx())
	require.Equal(t, 7, img.Bounds().Dy())
}

func TestDecoder_Empty(t *testing.T) {
	_, err := NewDecoder().Decode(nil)
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrorTypeDecode))
}

func TestDecoder_Garbage(t *testing.T) {
	_, err := NewDecoder().Decode([]byte("definitely not an image"))
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrorTypeDecode))
}

func TestPNGEncoder_Encode(t *testing.T) {
	mask := entity.NewMask(4, 3)
	mask.Set(1, 1, 1)

	data, err := NewPNGEncoder().Encode(mask)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())

	r, _, _, _ := img.At(1, 1).RGBA()
	require.Equal(t, uint32(0xffff), r)
	r, _, _, _ = img.At(0, 0).RGBA()
	require.Equal(t, uint32(0), r)
}

func TestToGray_ShiftedBounds(t *testing.T) {
	src := image.NewGray(image.Rect(5, 5, 9, 8))
	src.SetGray(5, 5, color.Gray{Y: 77})

	gray := toGray(src)
	require.Equal(t, image.Rect(0, 0, 4, 3), gray.Bounds())
	require.Equal(t, uint8(77), gray.GrayAt(0, 0).Y)
}
