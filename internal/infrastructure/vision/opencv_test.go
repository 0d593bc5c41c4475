//go:build gocv
// +build gocv

package vision

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"stenosis-api/internal/domain/entity"
)

func TestImageToGrayMat_Gray(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 3))
	src.SetGray(2, 1, color.Gray{Y: 77})

	mat, err := imageToGrayMat(src)
	require.NoError(t, err)
	defer mat.Close()

	require.Equal(t, 3, mat.Rows())
	require.Equal(t, 4, mat.Cols())
	require.Equal(t, 1, mat.Channels())
	require.Equal(t, uint8(77), mat.GetUCharAt(1, 2))
}

func TestImageToGrayMat_RGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}

	mat, err := imageToGrayMat(src)
	require.NoError(t, err)
	defer mat.Close()

	require.Equal(t, 1, mat.Channels())
	require.Equal(t, gocv.MatTypeCV8U, mat.Type())
	require.InDelta(t, 200, int(mat.GetUCharAt(3, 3)), 1)
}

func TestOpenCVEqualize_ShapeAndRange(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 50, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 50; x++ {
			src.Pix[y*src.Stride+x] = uint8(100 + x/5)
		}
	}

	p := NewPreprocessor(32, 16, 40, 1)
	out, err := p.equalize(src)
	require.NoError(t, err)
	require.Len(t, out, 32*16)

	lo, hi := out[0], out[0]
	for _, v := range out {
		lo, hi = min(lo, v), max(hi, v)
	}
	require.Greater(t, int(hi)-int(lo), 10)
}

func TestOpenCVExtractor_StatsMatchRectangles(t *testing.T) {
	mask := entity.NewMask(30, 12)
	fillRect(mask, 20, 1, 26, 4) // 6x3, центр x=22.5
	fillRect(mask, 2, 5, 5, 10)  // 3x5, центр x=3

	shapes, err := NewShapeExtractor().Extract(mask)
	require.NoError(t, err)
	require.Len(t, shapes, 2)

	sorted := entity.SortByCentroid(shapes)
	require.Equal(t, 15.0, sorted[0].Area)
	require.InDelta(t, 3.0, sorted[0].CentroidX, 1e-9)
	require.Equal(t, 18.0, sorted[1].Area)
	require.InDelta(t, 22.5, sorted[1].CentroidX, 1e-9)
}
