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
	"fmt"
	"image"
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/vectorize/genome"
	"seehuhn.de/go/vectorize/raster"
)

// fillRule is used for all gene polygons.
const fillRule = raster.EvenOdd

// Renderer paints genomes by rasterizing every gene.
//
// A Renderer owns a rasterizer and scratch buffers and is not safe for
// concurrent use. Each worker goroutine uses its own Renderer.
type Renderer struct {
	width, height int
	ras           *raster.Rasterizer
	ctm           matrix.Matrix
	scratch       *Canvas
}

// New returns a renderer for canvases of the given size.
func New(width, height int) *Renderer {
	return newRenderer(width, height, matrix.Identity)
}

// NewScaled returns a renderer which paints genomes designed for a
// width x height canvas at a different resolution. The output canvas is
// the scaled size, rounded up.
func NewScaled(width, height int, scale float64) *Renderer {
	if !(scale > 0) || math.IsInf(scale, 0) {
		panic(fmt.Sprintf("render: invalid scale %g", scale))
	}
	w := int(math.Ceil(float64(width) * scale))
	h := int(math.Ceil(float64(height) * scale))
	return newRenderer(w, h, matrix.Scale(scale, scale))
}

func newRenderer(width, height int, ctm matrix.Matrix) *Renderer {
	clip := rect.Rect{URx: float64(width), URy: float64(height)}
	ras := raster.NewRasterizer(clip)
	ras.CTM = ctm
	return &Renderer{
		width:  width,
		height: height,
		ras:    ras,
		ctm:    ctm,
	}
}

// Size returns the canvas size the renderer paints into.
func (r *Renderer) Size() (width, height int) {
	return r.width, r.height
}

// NewCanvas allocates a canvas of the renderer's size.
func (r *Renderer) NewCanvas() *Canvas {
	return NewCanvas(r.width, r.height)
}

func (r *Renderer) checkCanvas(dst *Canvas) {
	if dst.Width != r.width || dst.Height != r.height {
		panic(fmt.Sprintf("render: canvas is %dx%d, renderer is %dx%d",
			dst.Width, dst.Height, r.width, r.height))
	}
}

// Render paints g into dst, replacing its previous content.
func (r *Renderer) Render(g *genome.Genome, dst *Canvas) {
	r.checkCanvas(dst)
	dst.Fill(g.Background)
	for _, gene := range g.All() {
		r.Paint(gene, dst)
	}
}

// Paint composites a single gene onto dst.
func (r *Renderer) Paint(gene *genome.Gene, dst *Canvas) {
	col := gene.Color()
	if col.A == 0 {
		return
	}
	r.ras.FillEvenOdd(gene.Outline(), func(y, xMin int, coverage []float32) {
		row := dst.Pix[y*dst.Width+xMin : y*dst.Width+xMin+len(coverage)]
		for i, c := range coverage {
			if s := stampPixel(col, c); s != 0 {
				row[i] = Over(row[i], s)
			}
		}
	})
}

// Stamp rasterizes gene onto a transparent scratch canvas and returns the
// pixels inside their tight bounding box.
func (r *Renderer) Stamp(gene *genome.Gene) *Bitmap {
	if r.scratch == nil {
		r.scratch = r.NewCanvas()
	}
	scratch := r.scratch

	col := gene.Color()
	touched := image.Rectangle{}
	if col.A != 0 {
		r.ras.Fill(gene.Outline(), fillRule, func(y, xMin int, coverage []float32) {
			row := scratch.Pix[y*scratch.Width+xMin : y*scratch.Width+xMin+len(coverage)]
			for i, c := range coverage {
				row[i] = stampPixel(col, c)
			}
			touched = touched.Union(image.Rect(xMin, y, xMin+len(coverage), y+1))
		})
	}

	bbox, ok := trimRegion(scratch, touched)
	if !ok {
		clearRegion(scratch, touched)
		return &Bitmap{}
	}
	bm := Crop(scratch, bbox)
	clearRegion(scratch, touched)
	return bm
}

func clearRegion(c *Canvas, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		clear(c.Pix[y*c.Width+r.Min.X : y*c.Width+r.Max.X])
	}
}
