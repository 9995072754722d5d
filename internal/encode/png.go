package encode

import (
	"bytes"
	"image"
	"image/png"
)

// PNGEncoder writes lossless PNG. It is the default output and the only
// format the sprite pipeline accepts for its sheet inputs, so texture
// extraction must go through it whenever sc files are cut afterwards.
// BestSpeed keeps large sheet batches quick; the level only affects file
// size, never the decoded pixels.
type PNGEncoder struct{}

func (e *PNGEncoder) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *PNGEncoder) Format() string        { return "png" }
func (e *PNGEncoder) FileExtension() string { return ".png" }
