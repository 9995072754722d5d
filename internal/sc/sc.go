// Package sc parses sprite-description binaries and composites the
// sprites they describe out of previously extracted texture sheets.
//
// An sc file references one or more sheet images and defines sprites as
// sets of polygonal regions sampled from those sheets. The file does not
// store region orientation; it is inferred from the polygon winding and
// point ordering (see geometry.go).
package sc

import (
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"
	"strings"

	"github.com/Rohan200220/sc-extract/internal/encode"
	"github.com/Rohan200220/sc-extract/internal/errs"
	"github.com/Rohan200220/sc-extract/internal/stream"
)

// Data block tags of the sc container.
const (
	tagTexture    = 0x01
	tagTextureAlt = 0x18
	tagSkip1E     = 0x1e
	tagSkip1A     = 0x1a
	tagShape      = 0x12
	tagMatrix     = 0x08
	tagAnimation  = 0x0c
	subTagRegion  = 0x16
)

type point struct {
	x, y int32
}

// sheetItem carries the dimensions a texture sheet declares inside the sc
// file. They can differ from the actual image dimensions when only
// low-resolution sheets were shipped.
type sheetItem struct {
	width  int
	height int
}

// region is one polygonal piece of a sheet contributing to a sprite.
type region struct {
	sheetID   int
	numPoints int
	rotation  int
	mirroring int

	// shapePoints are design-space coordinates (y grows upward);
	// sheetPoints are texel coordinates into the sheet.
	shapePoints []point
	sheetPoints []point

	// Post-rotation extent of the region in sprite space.
	spriteWidth  int
	spriteHeight int

	// Offset of the design origin within the region's bounding box.
	regionZeroX int
	regionZeroY int

	// Shape-space extrema. top tracks the maximum y and bottom the
	// minimum: y grows upward in shape space. The sentinels make the
	// first point always win.
	top    int32
	left   int32
	bottom int32
	right  int32
}

type spriteItem struct {
	id           int
	totalRegions int
	regions      []region
}

// spriteGlobal holds the per-file canvas dimensions and pivot. All
// sprites of one file share it so they agree on where design (0,0) lands.
type spriteGlobal struct {
	width  int
	height int
	zeroX  int
	zeroY  int
}

// Process parses raw (already unwrapped) sc data, loads the referenced
// sheet images from pngDir and writes one composited PNG per sprite into
// outDir.
//
// The sheet images must have been extracted beforehand and follow the
// texture naming scheme: <fileName>_tex.png, <fileName>_tex_.png and so
// on. parallelize only controls the per-file progress output; sprites are
// always composited in parallel.
func Process(data []byte, fileName, outDir, pngDir string, parallelize bool) error {
	if !parallelize {
		fmt.Printf("\nProcessing %s image(s)...\n", fileName)
	}

	r := stream.NewReader(data)

	shapeCount := int(r.ReadU16())
	r.ReadU16() // animation count
	totalTextures := int(r.ReadU16())
	r.ReadU16() // text field count
	r.ReadU16() // matrix count
	r.ReadU16() // color transform count

	sheets := make([]sheetItem, totalTextures)
	sprites := make([]spriteItem, shapeCount)

	sheetImages := make([]*image.NRGBA, 0, totalTextures)
	for x := 0; x < totalTextures; x++ {
		path := filepath.Join(pngDir, fmt.Sprintf("%s_tex%s.png", fileName, strings.Repeat("_", x)))
		raw, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%w: expected extracted png image %q for file", errs.ErrOther, path)
			}
			return fmt.Errorf("%w: unable to open image %s: %v", errs.ErrIO, path, err)
		}
		img, err := encode.DecodeImage(raw, "png")
		if err != nil {
			return fmt.Errorf("%w: unable to open image %s: %v", errs.ErrIO, path, err)
		}
		sheetImages = append(sheetImages, toNRGBA(img))
	}

	r.ReadBytes(5)

	exportCount := int(r.ReadU16())
	for i := 0; i < exportCount; i++ {
		r.ReadU16()
	}
	for i := 0; i < exportCount; i++ {
		n := int(r.ReadU8())
		r.ReadString(n)
	}

	useLowRes := false
	offsetSheet := 0
	offsetShape := 0

	for r.Len() > 0 {
		tag := r.ReadU8()
		size := r.ReadU32()

		switch tag {
		case tagTexture, tagTextureAlt:
			r.ReadU8() // pixel type
			w := int(r.ReadU16())
			h := int(r.ReadU16())
			if offsetSheet < len(sheets) {
				sheets[offsetSheet].width = w
				sheets[offsetSheet].height = h

				// Low-res sheets are detected only when BOTH
				// dimensions differ from the declared ones.
				img := sheetImages[offsetSheet]
				if img.Bounds().Dx() != w && img.Bounds().Dy() != h {
					useLowRes = true
				}
			}
			offsetSheet++

		case tagSkip1E, tagSkip1A:

		case tagShape:
			if offsetShape >= len(sprites) {
				r.ReadBytes(int(size))
				continue
			}
			readShape(r, &sprites[offsetShape], sheets, useLowRes)
			offsetShape++

		case tagMatrix:
			for i := 0; i < 6; i++ {
				r.ReadI32()
			}

		case tagAnimation:
			readAnimation(r)

		default:
			r.ReadBytes(int(size))
		}
	}

	return writeShapes(sprites, sheets, sheetImages, shapeCount, fileName, outDir)
}

// readShape parses one sprite block: its id, region count and the region
// polygons. Region slots whose sub-tag is unrecognized are left with
// their sentinels; the compositor skips them.
func readShape(r *stream.Reader, sp *spriteItem, sheets []sheetItem, useLowRes bool) {
	divider := 1
	if useLowRes {
		divider = 2
	}

	sp.id = int(r.ReadU16())
	sp.totalRegions = int(r.ReadU16())
	r.ReadU16()

	sp.regions = make([]region, sp.totalRegions)
	for i := range sp.regions {
		sp.regions[i] = region{top: -32767, left: 32767, bottom: 32767, right: -32767}
	}

	for y := 0; y < sp.totalRegions; y++ {
		subTag := r.ReadU8()
		if subTag != subTagRegion {
			continue
		}
		r.ReadU32() // region block size

		reg := &sp.regions[y]
		reg.sheetID = int(r.ReadU8())
		reg.numPoints = int(r.ReadU8())

		reg.shapePoints = make([]point, reg.numPoints)
		reg.sheetPoints = make([]point, reg.numPoints)

		for z := range reg.shapePoints {
			reg.shapePoints[z].x = r.ReadI32()
			reg.shapePoints[z].y = r.ReadI32()
		}

		var sheetW, sheetH int
		if reg.sheetID < len(sheets) {
			sheetW = sheets[reg.sheetID].width
			sheetH = sheets[reg.sheetID].height
		}
		for z := range reg.sheetPoints {
			reg.sheetPoints[z].x = scaleSheetCoord(r.ReadU16(), sheetW, divider)
			reg.sheetPoints[z].y = scaleSheetCoord(r.ReadU16(), sheetH, divider)
		}
	}

	r.ReadBytes(5)
}

// scaleSheetCoord maps a raw 16-bit coordinate onto sheet texels: the raw
// value spans the sheet dimension over the full u16 range, and low-res
// sheets halve the result. The arithmetic is single-precision to match
// the files' producer.
func scaleSheetCoord(raw uint16, dim, divider int) int32 {
	v := float32(raw) * float32(dim) / 65535.0
	return int32(roundf32(v) / float32(divider))
}

// readAnimation consumes an animation block. The payload is discarded,
// but its byte discipline keeps the outer parser aligned.
func readAnimation(r *stream.Reader) {
	r.ReadU16() // clip id
	r.ReadU8()  // fps
	r.ReadU16() // frame count

	cnt1 := int(r.ReadI32())
	for i := 0; i < cnt1; i++ {
		r.ReadU16()
		r.ReadU16()
		r.ReadU16()
	}

	cnt2 := int(r.ReadI16())
	for i := 0; i < cnt2; i++ {
		r.ReadI16()
	}
	for i := 0; i < cnt2; i++ {
		r.ReadU8()
	}
	for i := 0; i < cnt2; i++ {
		n := int(r.ReadU8())
		if n < 255 {
			r.ReadString(n)
		}
	}
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
