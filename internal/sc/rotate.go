package sc

import (
	"image"
	"math"
)

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func roundf32(v float32) float32 {
	return float32(math.Round(float64(v)))
}

// rotateUncropped returns a new image containing the whole input rotated
// by theta radians and centered, sized to fully contain the rotated
// rectangle. Pixels outside the input are transparent. Sampling is
// nearest-neighbor; the math is single-precision to match the region
// extents computed during parsing.
func rotateUncropped(img *image.NRGBA, theta float32) *image.NRGBA {
	w := float32(img.Bounds().Dx())
	h := float32(img.Bounds().Dy())

	sin := float32(math.Sin(float64(theta)))
	cos := float32(math.Cos(float64(theta)))

	newW := int(w*abs32(cos) + h*abs32(sin))
	newH := int(h*abs32(cos) + w*abs32(sin))

	cx, cy := w/2, h/2
	newCx, newCy := float32(newW/2), float32(newH/2)

	if newW == 0 {
		newW = newH
	}

	out := image.NewNRGBA(image.Rect(0, 0, newW, newH))

	// Center-to-center inverse mapping: each output pixel samples the
	// input at its pre-rotation position.
	for y := 0; y < newH; y++ {
		for x := 0; x < newW; x++ {
			dx := float32(x) - newCx
			dy := float32(y) - newCy
			sx := cos*dx - sin*dy + cx
			sy := sin*dx + cos*dy + cy

			px := int(roundf32(sx))
			py := int(roundf32(sy))
			if px < 0 || py < 0 || px >= int(w) || py >= int(h) {
				continue
			}

			srcOff := img.PixOffset(px, py)
			dstOff := out.PixOffset(x, y)
			copy(out.Pix[dstOff:dstOff+4], img.Pix[srcOff:srcOff+4])
		}
	}

	return out
}

// flipHorizontal mirrors the image around its vertical axis in place.
func flipHorizontal(img *image.NRGBA) {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	var tmp [4]uint8
	for y := 0; y < h; y++ {
		for x := 0; x < w/2; x++ {
			a := img.PixOffset(x, y)
			b := img.PixOffset(w-1-x, y)
			copy(tmp[:], img.Pix[a:a+4])
			copy(img.Pix[a:a+4], img.Pix[b:b+4])
			copy(img.Pix[b:b+4], tmp[:])
		}
	}
}
