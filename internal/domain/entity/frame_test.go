package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBinarizeIsStrict(t *testing.T) {
	p := ProbabilityMap{Width: 3, Height: 1, Pix: []float32{0.49, 0.5, 0.51}}
	mask := p.Binarize(0.5)
	require.Equal(t, []uint8{0, 0, 1}, mask.Pix)
	require.Equal(t, 1, mask.Foreground())
}

func TestMaskImage(t *testing.T) {
	mask := NewMask(4, 2)
	mask.Set(1, 0, 1)
	mask.Set(3, 1, 1)

	img := mask.Image()
	require.Equal(t, 4, img.Bounds().Dx())
	require.Equal(t, 2, img.Bounds().Dy())
	require.Equal(t, uint8(255), img.GrayAt(1, 0).Y)
	require.Equal(t, uint8(255), img.GrayAt(3, 1).Y)
	require.Equal(t, uint8(0), img.GrayAt(0, 0).Y)
	require.Equal(t, uint8(1), mask.At(3, 1))
}

func TestNewFrame(t *testing.T) {
	f := NewFrame(5, 3)
	require.Len(t, f.Pix, 15)
	f.Pix[2*5+4] = 0.25
	require.Equal(t, float32(0.25), f.At(4, 2))
}
