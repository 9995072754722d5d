package sc

import (
	"image"
	"math"
)

// fillConvexPolygon rasterizes a convex polygon into the mask with value
// 255: a scanline fill between the outermost edge intersections of every
// row, plus the polygon outline itself so boundary pixels are never lost
// to rounding.
func fillConvexPolygon(mask *image.Gray, pts []point) {
	if len(pts) == 0 {
		return
	}

	b := mask.Bounds()

	minY, maxY := pts[0].y, pts[0].y
	for _, p := range pts[1:] {
		if p.y < minY {
			minY = p.y
		}
		if p.y > maxY {
			maxY = p.y
		}
	}
	if minY < 0 {
		minY = 0
	}
	if maxY > int32(b.Dy()-1) {
		maxY = int32(b.Dy() - 1)
	}

	for y := minY; y <= maxY; y++ {
		minX, maxX := math.MaxFloat64, -math.MaxFloat64
		hit := false
		for i := range pts {
			p0 := pts[i]
			p1 := pts[(i+1)%len(pts)]
			if p0.y == p1.y {
				continue
			}
			lo, hi := p0.y, p1.y
			if lo > hi {
				lo, hi = hi, lo
			}
			if y < lo || y > hi {
				continue
			}
			x := float64(p0.x) + float64(y-p0.y)*float64(p1.x-p0.x)/float64(p1.y-p0.y)
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			hit = true
		}
		if !hit {
			continue
		}

		x0 := int(math.Round(minX))
		x1 := int(math.Round(maxX))
		if x0 < 0 {
			x0 = 0
		}
		if x1 > b.Dx()-1 {
			x1 = b.Dx() - 1
		}
		row := mask.PixOffset(x0, int(y))
		for x := x0; x <= x1; x++ {
			mask.Pix[row] = 255
			row++
		}
	}

	for i := range pts {
		drawLine(mask, pts[i], pts[(i+1)%len(pts)])
	}
}

// drawLine sets the pixels of a straight segment (Bresenham), skipping
// anything outside the mask.
func drawLine(mask *image.Gray, p0, p1 point) {
	b := mask.Bounds()

	x0, y0 := int(p0.x), int(p0.y)
	x1, y1 := int(p1.x), int(p1.y)

	dx := x1 - x0
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y0
	if dy < 0 {
		dy = -dy
	}
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}

	err := dx - dy
	for {
		if x0 >= 0 && x0 < b.Dx() && y0 >= 0 && y0 < b.Dy() {
			mask.Pix[mask.PixOffset(x0, y0)] = 255
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}
