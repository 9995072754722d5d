package sc

import "math"

// ord is the outcome of a ternary point comparison used by the
// orientation inference.
type ord int

const (
	ordSame ord = iota
	ordLess
	ordMore
)

func cmpOrd(a, b int32) ord {
	switch {
	case a > b:
		return ordMore
	case a < b:
		return ordLess
	default:
		return ordSame
	}
}

// computeGeometry runs the per-region geometry pass and sizes the shared
// canvas: shape and sheet bounding boxes, orientation inference, region
// extents and zero points, and finally the global maxima that every
// sprite's canvas must enclose. The extra 2 per dimension leaves a
// one-pixel border for the mask outline.
func computeGeometry(sprites []spriteItem, shapeCount int) spriteGlobal {
	var maxLeft, maxRight, maxAbove, maxBelow int

	for si := 0; si < shapeCount && si < len(sprites); si++ {
		sp := &sprites[si]
		for y := 0; y < sp.totalRegions; y++ {
			reg := &sp.regions[y]
			if reg.numPoints == 0 {
				// Slot left empty during parse; contributes nothing.
				continue
			}

			regionMinX, regionMaxX := int32(32676), int32(-32676)
			regionMinY, regionMaxY := int32(32676), int32(-32676)

			for z := 0; z < reg.numPoints; z++ {
				sx := reg.shapePoints[z].x
				sy := reg.shapePoints[z].y
				if sy > reg.top {
					reg.top = sy
				}
				if sx < reg.left {
					reg.left = sx
				}
				if sy < reg.bottom {
					reg.bottom = sy
				}
				if sx > reg.right {
					reg.right = sx
				}

				tx := reg.sheetPoints[z].x
				ty := reg.sheetPoints[z].y
				if tx < regionMinX {
					regionMinX = tx
				}
				if tx > regionMaxX {
					regionMaxX = tx
				}
				if ty < regionMinY {
					regionMinY = ty
				}
				if ty > regionMaxY {
					regionMaxY = ty
				}
			}

			regionRotation(reg)

			if reg.rotation == 90 || reg.rotation == 270 {
				reg.spriteWidth = int(regionMaxY - regionMinY)
				reg.spriteHeight = int(regionMaxX - regionMinX)
			} else {
				reg.spriteWidth = int(regionMaxX - regionMinX)
				reg.spriteHeight = int(regionMaxY - regionMinY)
			}

			reg.regionZeroX = zeroOffset(reg.left, reg.spriteWidth, reg.right-reg.left)
			reg.regionZeroY = zeroOffset(reg.bottom, reg.spriteHeight, reg.top-reg.bottom)

			// The higher the zero point, the more pixels are needed to
			// the left/top; the larger the remainder, the more to the
			// right/bottom.
			if reg.regionZeroX > maxLeft {
				maxLeft = reg.regionZeroX
			}
			if reg.regionZeroY > maxAbove {
				maxAbove = reg.regionZeroY
			}
			if d := reg.spriteWidth - reg.regionZeroX; d > maxRight {
				maxRight = d
			}
			if d := reg.spriteHeight - reg.regionZeroY; d > maxBelow {
				maxBelow = d
			}
		}
	}

	return spriteGlobal{
		width:  maxLeft + maxRight + 2,
		height: maxAbove + maxBelow + 2,
		zeroX:  maxLeft,
		zeroY:  maxAbove,
	}
}

// zeroOffset projects the design origin into the region's extent.
func zeroOffset(bound int32, extent int, span int32) int {
	if span == 0 {
		return 0
	}
	return int(math.Round(math.Abs(float64(bound) * float64(extent) / float64(span))))
}

// regionRotation infers the orientation the file does not store. The
// signed polygon areas in sheet and shape space decide mirroring; the
// relative position of the second point to the first in both spaces
// selects the rotation.
func regionRotation(reg *region) {
	var sumSheet, sumShape int64
	n := reg.numPoints
	for z := 0; z < n; z++ {
		nz := (z + 1) % n
		sumSheet += int64(reg.sheetPoints[nz].x-reg.sheetPoints[z].x) *
			int64(reg.sheetPoints[nz].y+reg.sheetPoints[z].y)
		sumShape += int64(reg.shapePoints[nz].x-reg.shapePoints[z].x) *
			int64(reg.shapePoints[nz].y+reg.shapePoints[z].y)
	}

	sheetOrientation := 1
	if sumSheet < 0 {
		sheetOrientation = -1
	}
	shapeOrientation := 1
	if sumShape < 0 {
		shapeOrientation = -1
	}

	if shapeOrientation == sheetOrientation {
		reg.mirroring = 0
	} else {
		reg.mirroring = 1
	}

	if reg.mirroring == 1 {
		for z := range reg.shapePoints {
			reg.shapePoints[z].x *= -1
		}
	}

	if n < 2 {
		return
	}

	// px, qx say where point 1 sits relative to point 0 in x; py, qy the
	// same in y. The sheet y comparison is inverted because sheet y grows
	// downward while shape y grows upward.
	px := cmpOrd(reg.sheetPoints[1].x, reg.sheetPoints[0].x)

	var py ord
	switch cmpOrd(reg.sheetPoints[1].y, reg.sheetPoints[0].y) {
	case ordMore:
		py = ordLess
	case ordLess:
		py = ordMore
	default:
		py = ordSame
	}

	qx := cmpOrd(reg.shapePoints[1].x, reg.shapePoints[0].x)
	qy := cmpOrd(reg.shapePoints[1].y, reg.shapePoints[0].y)

	var rotation int
	switch {
	case px == qx && py == qy:
		rotation = 0
	case px == ordSame:
		if px == qy {
			if py == qx {
				rotation = 90
			} else {
				rotation = 270
			}
		} else {
			rotation = 180
		}
	case py == ordSame:
		if py == qx {
			if px == qy {
				rotation = 270
			} else {
				rotation = 90
			}
		} else {
			rotation = 180
		}
	case px != qx && py != qy:
		rotation = 180
	case px == py:
		if px != qx {
			rotation = 270
		} else if py != qy {
			rotation = 90
		}
	case px != py:
		if px != qx {
			rotation = 90
		} else if py != qy {
			rotation = 270
		}
	}

	if sheetOrientation == -1 && (rotation == 90 || rotation == 270) {
		rotation = (rotation + 180) % 360
	}

	reg.rotation = rotation
}
