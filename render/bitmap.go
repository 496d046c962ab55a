// seehuhn.de/go/vectorize - approximate images with evolving polygons
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package render

import (
	"image"
)

// Bitmap is a trimmed gene stamp, positioned on the full canvas.
// An empty Rect means the gene does not cover any pixel.
type Bitmap struct {
	Rect image.Rectangle
	Pix  []uint32 // Rect.Dx() * Rect.Dy() pixels, row-major
}

// Empty reports whether the bitmap has no pixels.
func (b *Bitmap) Empty() bool {
	return b.Rect.Empty()
}

// Blit composites the bitmap onto dst.
func (b *Bitmap) Blit(dst *Canvas) {
	r := b.Rect.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	w := b.Rect.Dx()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		src := b.Pix[(y-b.Rect.Min.Y)*w+(r.Min.X-b.Rect.Min.X):]
		row := dst.Pix[y*dst.Width+r.Min.X : y*dst.Width+r.Max.X]
		for i, s := range src[:len(row)] {
			if s != 0 {
				row[i] = Over(row[i], s)
			}
		}
	}
}

// Trim returns the smallest rectangle containing all pixels of c with
// non-zero alpha. The second result is false if there are no such pixels.
func Trim(c *Canvas) (image.Rectangle, bool) {
	return trimRegion(c, c.Bounds())
}

// trimRegion is like Trim, but only looks at pixels inside region.
func trimRegion(c *Canvas, region image.Rectangle) (image.Rectangle, bool) {
	region = region.Intersect(c.Bounds())
	minX, minY := region.Max.X, region.Max.Y
	maxX, maxY := -1, -1
	for y := region.Min.Y; y < region.Max.Y; y++ {
		row := c.Pix[y*c.Width : (y+1)*c.Width]
		for x := region.Min.X; x < region.Max.X; x++ {
			if row[x]>>24 == 0 {
				continue
			}
			minX = min(minX, x)
			maxX = max(maxX, x)
			minY = min(minY, y)
			maxY = y
		}
	}
	if maxX < 0 {
		return image.Rectangle{}, false
	}
	// convert inclusive maxima to exclusive bounds
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// Crop copies the pixels inside r into a new bitmap.
func Crop(c *Canvas, r image.Rectangle) *Bitmap {
	r = r.Intersect(c.Bounds())
	bm := &Bitmap{Rect: r, Pix: make([]uint32, 0, r.Dx()*r.Dy())}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		bm.Pix = append(bm.Pix, c.Pix[y*c.Width+r.Min.X:y*c.Width+r.Max.X]...)
	}
	return bm
}
