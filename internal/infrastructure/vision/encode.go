package vision

import (
	"bytes"
	"image/png"

	"stenosis-api/internal/domain/entity"
)

// PNGEncoder кодирует маску в PNG (0 / 255).
type PNGEncoder struct {
	enc png.Encoder
}

func NewPNGEncoder() *PNGEncoder {
	return &PNGEncoder{enc: png.Encoder{CompressionLevel: png.BestSpeed}}
}

func (e *PNGEncoder) Encode(mask entity.Mask) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.enc.Encode(&buf, mask.Image()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
