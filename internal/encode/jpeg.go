package encode

import (
	"bytes"
	"image"
	"image/jpeg"
)

// JPEGEncoder writes lossy JPEG. The format has no alpha channel, so it
// only suits ripping opaque texture sheets for inspection; sheets meant
// to feed the sprite compositor must stay PNG.
type JPEGEncoder struct {
	Quality int // 1-100, default 85
}

func (e *JPEGEncoder) Encode(img image.Image) ([]byte, error) {
	quality := e.Quality
	if quality <= 0 {
		quality = 85
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *JPEGEncoder) Format() string        { return "jpeg" }
func (e *JPEGEncoder) FileExtension() string { return ".jpg" }
