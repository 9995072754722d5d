package sc

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/Rohan200220/sc-extract/internal/encode"
	"github.com/Rohan200220/sc-extract/internal/errs"
)

// writeShapes runs the geometry pass, then composites every sprite onto
// its own canvas and writes it out. Sprites build in parallel; regions
// within one sprite composite serially in index order, which keeps the
// output deterministic without locking the canvas.
func writeShapes(sprites []spriteItem, sheets []sheetItem, sheetImages []*image.NRGBA, shapeCount int, fileName, outDir string) error {
	global := computeGeometry(sprites, shapeCount)

	// Zero-pad sprite indices to the digit count of the sprite total.
	digits := len(strconv.Itoa(shapeCount))
	enc := &encode.PNGEncoder{}

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for x := 0; x < shapeCount && x < len(sprites); x++ {
		x := x
		g.Go(func() error {
			canvas := image.NewNRGBA(image.Rect(0, 0, global.width, global.height))

			sp := &sprites[x]
			for y := 0; y < sp.totalRegions; y++ {
				compositeRegion(canvas, &sp.regions[y], sheets, sheetImages, global)
			}

			out, err := enc.Encode(canvas)
			if err != nil {
				return fmt.Errorf("%w: unable to save image: %v", errs.ErrIO, err)
			}
			name := fmt.Sprintf("%s_sprite_%0*d.png", fileName, digits, x)
			if err := os.WriteFile(filepath.Join(outDir, name), out, 0o644); err != nil {
				return fmt.Errorf("%w: unable to save image: %v", errs.ErrIO, err)
			}
			return nil
		})
	}

	return g.Wait()
}

// compositeRegion cuts one region out of its sheet and pastes it onto the
// sprite canvas: mask the polygon, crop to the opaque bounds, mirror and
// rotate as inferred, then raw-copy at the shared pivot.
func compositeRegion(canvas *image.NRGBA, reg *region, sheets []sheetItem, sheetImages []*image.NRGBA, global spriteGlobal) {
	poly := reg.sheetPoints
	if len(poly) == 0 || poly[0] == poly[len(poly)-1] {
		// Degenerate polygon, nothing to cut.
		return
	}
	if reg.sheetID >= len(sheets) || reg.sheetID >= len(sheetImages) {
		return
	}
	sheet := sheets[reg.sheetID]

	mask := image.NewGray(image.Rect(0, 0, sheet.width, sheet.height))
	fillConvexPolygon(mask, poly)

	bx1, by1, bx2, by2 := maskBBox(mask)
	w, h := bx2-bx1, by2-by1
	if w <= 0 || h <= 0 {
		return
	}

	// The crop of the sheet image is clamped to its actual dimensions,
	// which can be smaller than the declared mask size for low-res
	// sheets.
	src := sheetImages[reg.sheetID]
	rangeW := min(w, src.Bounds().Dx()-bx1)
	rangeH := min(h, src.Bounds().Dy()-by1)

	buf := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < rangeH; y++ {
		for x := 0; x < rangeW; x++ {
			if mask.GrayAt(bx1+x, by1+y).Y == 0 {
				continue
			}
			blendPixel(buf, x, y, src.NRGBAAt(bx1+x, by1+y))
		}
	}

	if reg.mirroring == 1 {
		flipHorizontal(buf)
	}

	out := buf
	if reg.rotation != 0 && reg.rotation != 360 {
		out = rotateUncropped(buf, float32(reg.rotation)*(math.Pi/180))
	}

	pasteLeft := global.zeroX - reg.regionZeroX
	pasteTop := global.zeroY - reg.regionZeroY
	ow := out.Bounds().Dx()
	oh := out.Bounds().Dy()
	if pasteLeft < 0 || pasteTop < 0 ||
		pasteLeft+ow > canvas.Bounds().Dx() || pasteTop+oh > canvas.Bounds().Dy() {
		log.Printf("there was an error processing a portion of the image")
		return
	}

	for y := 0; y < oh; y++ {
		srcOff := out.PixOffset(0, y)
		dstOff := canvas.PixOffset(pasteLeft, pasteTop+y)
		copy(canvas.Pix[dstOff:dstOff+ow*4], out.Pix[srcOff:srcOff+ow*4])
	}
}

// maskBBox returns the bounds of the mask's opaque pixels as a half-open
// rectangle (x1, y1, x2, y2). The extrema start at -1 and the first
// opaque pixel claims them; the closing +1 on the max side makes the
// rectangle directly usable as a crop.
func maskBBox(mask *image.Gray) (int, int, int, int) {
	b := mask.Bounds()

	bounds := [4]int{-1, -1, -1, -1}
	additions := [4]int{1, 1, 1, 1}

	for y := 0; y < b.Dy(); y++ {
		row := mask.PixOffset(0, y)
		for x := 0; x < b.Dx(); x++ {
			if mask.Pix[row+x] == 0 {
				continue
			}
			if bounds[0] > x || bounds[0] < 0 {
				if bounds[0] < x && bounds[0] < 0 {
					additions[0] = 0
				}
				bounds[0] = x
			}
			if bounds[2] < x || bounds[2] < 0 {
				if bounds[2] > x && bounds[2] < 0 {
					additions[2] = 0
				}
				bounds[2] = x
			}
			if bounds[1] > y || bounds[1] < 0 {
				if bounds[1] < y && bounds[1] < 0 {
					additions[1] = 0
				}
				bounds[1] = y
			}
			if bounds[3] < y || bounds[3] < 0 {
				if bounds[3] > y && bounds[3] < 0 {
					additions[3] = 0
				}
				bounds[3] = y
			}
		}
	}

	if bounds[0] < 0 {
		return 0, 0, 0, 0
	}
	return bounds[0] + additions[0], bounds[1] + additions[1],
		bounds[2] + additions[2], bounds[3] + additions[3]
}

// blendPixel source-over blends src onto the destination pixel in
// straight (non-premultiplied) space.
func blendPixel(dst *image.NRGBA, x, y int, src color.NRGBA) {
	if src.A == 0 {
		return
	}
	if src.A == 255 {
		dst.SetNRGBA(x, y, src)
		return
	}

	bg := dst.NRGBAAt(x, y)
	fgA := float32(src.A) / 255
	bgA := float32(bg.A) / 255
	outA := bgA + fgA - bgA*fgA
	if outA == 0 {
		dst.SetNRGBA(x, y, color.NRGBA{})
		return
	}

	blend := func(f, b uint8) uint8 {
		v := (float32(f)*fgA + float32(b)*bgA*(1-fgA)) / outA
		return uint8(v)
	}
	dst.SetNRGBA(x, y, color.NRGBA{
		R: blend(src.R, bg.R),
		G: blend(src.G, bg.G),
		B: blend(src.B, bg.B),
		A: uint8(outA*255 + 0.5),
	})
}
