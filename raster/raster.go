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

// Package raster converts closed paths into anti-aliased pixel coverage.
//
// A [Rasterizer] computes, for every pixel, the fraction of its area inside
// the path. Coverage is delivered row by row to a callback, trimmed to the
// non-zero part of the row, so that callers can composite directly into
// their own pixel format.
package raster

import (
	"cmp"
	"math"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// EmitFunc receives the coverage of row y, starting at column xMin.
// The coverage slice is only valid during the call.
type EmitFunc func(y, xMin int, coverage []float32)

// FillRule selects how the interior of self-overlapping paths is defined.
type FillRule int

const (
	NonZero FillRule = iota
	EvenOdd
)

// edge is a line segment in device coordinates.
type edge struct {
	x0, y0 float64
	x1, y1 float64
	dxdy   float64 // (x1-x0)/(y1-y0)
}

// Rasterizer turns paths into coverage values. Internal buffers grow as
// needed and are reused, so that a long-lived Rasterizer does not allocate
// in steady state.
//
// A Rasterizer is not safe for concurrent use.
type Rasterizer struct {
	// CTM maps user space to device space. It must be non-singular.
	CTM matrix.Matrix

	// Clip restricts output to this device-space rectangle.
	// Its coordinates must be integers.
	Clip rect.Rect

	// Flatness is the curve flattening tolerance in device pixels.
	Flatness float64

	// smallPathThreshold is the largest bounding box area, in pixels, which
	// is rasterized with full 2D buffers. Larger paths use an active edge
	// list and one row of buffers.
	smallPathThreshold int

	cover       []float32 // signed vertical coverage change, reused as output
	area        []float32 // signed area within the pixel
	edges       []edge
	activeIdx   []int
	rowHasEdges []bool

	bboxEmpty          bool
	bboxXMin, bboxXMax float64
	bboxYMin, bboxYMax float64
}

// NewRasterizer returns a Rasterizer for the given clip rectangle with an
// identity transformation.
func NewRasterizer(clip rect.Rect) *Rasterizer {
	return &Rasterizer{
		CTM:                matrix.Identity,
		Clip:               clip,
		Flatness:           defaultFlatness,
		smallPathThreshold: smallPathThreshold,
	}
}

// Reset restores the default transformation and flatness and sets a new clip
// rectangle. Buffer capacity is kept.
func (r *Rasterizer) Reset(clip rect.Rect) {
	r.CTM = matrix.Identity
	r.Clip = clip
	r.Flatness = defaultFlatness
	r.edges = r.edges[:0]
	r.activeIdx = r.activeIdx[:0]
}

// Fill fills p with the given rule.
func (r *Rasterizer) Fill(p path.Path, rule FillRule, emit EmitFunc) {
	xMin, xMax, yMin, yMax, ok := r.collectEdges(p)
	if !ok {
		return
	}
	if (xMax-xMin)*(yMax-yMin) < r.smallPathThreshold {
		r.fillSmall(xMin, xMax, yMin, yMax, rule, emit)
	} else {
		r.fillLarge(xMin, xMax, yMin, yMax, rule, emit)
	}
}

// FillNonZero fills p using the nonzero winding rule.
func (r *Rasterizer) FillNonZero(p path.Path, emit EmitFunc) {
	r.Fill(p, NonZero, emit)
}

// FillEvenOdd fills p using the even-odd rule.
func (r *Rasterizer) FillEvenOdd(p path.Path, emit EmitFunc) {
	r.Fill(p, EvenOdd, emit)
}

// collectEdges flattens p into device-space edges. Open subpaths are
// closed implicitly. The returned box is clamped to the clip rectangle.
func (r *Rasterizer) collectEdges(p path.Path) (xMin, xMax, yMin, yMax int, ok bool) {
	r.edges = r.edges[:0]
	r.bboxEmpty = true

	var current, start vec.Vec2
	open := false
	for cmd, pts := range p {
		switch cmd {
		case path.CmdMoveTo:
			if open && current != start {
				r.addEdge(current, start)
			}
			current = pts[0]
			start = current
			open = true
		case path.CmdLineTo:
			r.addEdge(current, pts[0])
			current = pts[0]
		case path.CmdQuadTo:
			r.flattenQuadratic(current, pts[0], pts[1])
			current = pts[1]
		case path.CmdCubeTo:
			r.flattenCubic(current, pts[0], pts[1], pts[2])
			current = pts[2]
		case path.CmdClose:
			if current != start {
				r.addEdge(current, start)
			}
			current = start
			open = false
		}
	}
	if open && current != start {
		r.addEdge(current, start)
	}

	if len(r.edges) == 0 {
		return 0, 0, 0, 0, false
	}

	xMin = max(int(math.Floor(r.bboxXMin)), int(r.Clip.LLx))
	xMax = min(int(math.Floor(r.bboxXMax))+1, int(r.Clip.URx))
	yMin = max(int(math.Floor(r.bboxYMin)), int(r.Clip.LLy))
	yMax = min(int(math.Floor(r.bboxYMax))+1, int(r.Clip.URy))
	if xMin >= xMax || yMin >= yMax {
		return 0, 0, 0, 0, false
	}
	return xMin, xMax, yMin, yMax, true
}

// addEdge transforms a user-space segment to device space and records it.
func (r *Rasterizer) addEdge(p0, p1 vec.Vec2) {
	m := r.CTM
	x0 := m[0]*p0.X + m[2]*p0.Y + m[4]
	y0 := m[1]*p0.X + m[3]*p0.Y + m[5]
	x1 := m[0]*p1.X + m[2]*p1.Y + m[4]
	y1 := m[1]*p1.X + m[3]*p1.Y + m[5]

	dy := y1 - y0
	if dy > -horizontalEdgeThreshold && dy < horizontalEdgeThreshold {
		return
	}
	r.edges = append(r.edges, edge{x0: x0, y0: y0, x1: x1, y1: y1, dxdy: (x1 - x0) / dy})

	if r.bboxEmpty {
		r.bboxXMin, r.bboxXMax = min(x0, x1), max(x0, x1)
		r.bboxYMin, r.bboxYMax = min(y0, y1), max(y0, y1)
		r.bboxEmpty = false
		return
	}
	r.bboxXMin = min(r.bboxXMin, x0, x1)
	r.bboxXMax = max(r.bboxXMax, x0, x1)
	r.bboxYMin = min(r.bboxYMin, y0, y1)
	r.bboxYMax = max(r.bboxYMax, y0, y1)
}

// deviceLength returns the device-space length of the user-space vector v,
// ignoring translation.
func (r *Rasterizer) deviceLength(v vec.Vec2) float64 {
	m := r.CTM
	return vec.Vec2{X: m[0]*v.X + m[2]*v.Y, Y: m[1]*v.X + m[3]*v.Y}.Length()
}

func (r *Rasterizer) flattenQuadratic(p0, p1, p2 vec.Vec2) {
	// the maximal deviation from the chord is |p0 - 2p1 + p2| / 4
	dev := r.deviceLength(p0.Sub(p1.Mul(2)).Add(p2).Mul(0.25))
	n := 1
	if dev > r.Flatness {
		n = int(math.Ceil(math.Sqrt(dev / r.Flatness)))
	}
	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s := 1 - t
		pt := p0.Mul(s * s).Add(p1.Mul(2 * s * t)).Add(p2.Mul(t * t))
		r.addEdge(prev, pt)
		prev = pt
	}
}

func (r *Rasterizer) flattenCubic(p0, p1, p2, p3 vec.Vec2) {
	// Wang's formula
	d := max(r.deviceLength(p0.Sub(p1.Mul(2)).Add(p2)), r.deviceLength(p1.Sub(p2.Mul(2)).Add(p3)))
	n := 1
	if d > 0 {
		if f := math.Sqrt(3 * d / (4 * r.Flatness)); f > 1 {
			n = int(math.Ceil(f))
		}
	}
	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s := 1 - t
		pt := p0.Mul(s * s * s).Add(p1.Mul(3 * s * s * t)).Add(p2.Mul(3 * s * t * t)).Add(p3.Mul(t * t * t))
		r.addEdge(prev, pt)
		prev = pt
	}
}

// Coverage model: for every pixel the rasterizer accumulates two values.
// cover is the signed vertical extent of all edge pieces inside the pixel
// column, area is cover weighted by the distance of the piece from the
// right pixel border. Integrating a row from left to right,
//
//	coverage[i] = accum + area[i];  accum += cover[i]
//
// gives the signed area of the path within each pixel.

// accumulateEdge adds the contribution of e to row y. cover and area are
// indexed by x - bboxXMin. Pieces left of the box are folded into the first
// pixel; pieces right of the box do not affect the row.
func accumulateEdge(e *edge, y int, cover, area []float32, bboxXMin, bboxXMax int) {
	yTop := max(float64(y), min(e.y0, e.y1))
	yBot := min(float64(y+1), max(e.y0, e.y1))
	if yBot <= yTop {
		return
	}

	sign := float32(1)
	if e.y1 < e.y0 {
		sign = -1
	}

	xTop := e.x0 + e.dxdy*(yTop-e.y0)
	xBot := e.x0 + e.dxdy*(yBot-e.y0)
	pixLeft := int(math.Floor(min(xTop, xBot)))
	pixRight := int(math.Floor(max(xTop, xBot)))

	if pixRight < bboxXMin {
		v := sign * float32(yBot-yTop)
		cover[0] += v
		area[0] += v
		return
	}
	if pixLeft >= bboxXMax {
		return
	}

	if pixLeft == pixRight {
		addPiece(e, yTop, yBot, sign, pixLeft, cover, area, bboxXMin, bboxXMax)
		return
	}

	// the edge crosses several pixel columns: split it at column borders
	dydx := 1 / e.dxdy
	for pix := pixLeft; pix <= pixRight; pix++ {
		ya := e.y0 + dydx*(float64(pix)-e.x0)
		yb := e.y0 + dydx*(float64(pix+1)-e.x0)
		segTop := max(min(ya, yb), yTop)
		segBot := min(max(ya, yb), yBot)
		if segBot <= segTop {
			continue
		}
		addPiece(e, segTop, segBot, sign, pix, cover, area, bboxXMin, bboxXMax)
	}
}

// addPiece adds the part of e between yTop and yBot, which lies inside
// pixel column pix.
func addPiece(e *edge, yTop, yBot float64, sign float32, pix int, cover, area []float32, bboxXMin, bboxXMax int) {
	v := sign * float32(yBot-yTop)
	if pix < bboxXMin {
		cover[0] += v
		area[0] += v
		return
	}
	if pix >= bboxXMax {
		return
	}
	xMid := e.x0 + e.dxdy*((yTop+yBot)/2-e.y0)
	frac := xMid - float64(pix)
	idx := pix - bboxXMin
	cover[idx] += v
	area[idx] += v * float32(1-frac)
}

// integrate converts accumulated cover and area values of one row into
// coverage, in place in cover.
func integrate(cover, area []float32, rule FillRule) {
	var accum float32
	for i := range cover {
		raw := accum + area[i]
		accum += cover[i]
		if raw < 0 {
			raw = -raw
		}
		if rule == EvenOdd {
			m := raw - 2*float32(int(raw/2))
			raw = 1 - abs32(1-m)
		} else if raw > 1 {
			raw = 1
		}
		cover[i] = raw
	}
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// trimZeros returns the non-zero part of a row and its offset.
// The result is nil if the row is all zero.
func trimZeros(coverage []float32) ([]float32, int) {
	lo := 0
	for lo < len(coverage) && coverage[lo] == 0 {
		lo++
	}
	if lo == len(coverage) {
		return nil, 0
	}
	hi := len(coverage) - 1
	for hi > lo && coverage[hi] == 0 {
		hi--
	}
	return coverage[lo : hi+1], lo
}

// fillSmall rasterizes the whole bounding box at once, using 2D buffers.
func (r *Rasterizer) fillSmall(xMin, xMax, yMin, yMax int, rule FillRule, emit EmitFunc) {
	width := xMax - xMin
	height := yMax - yMin
	size := width * height

	r.cover = slices.Grow(r.cover[:0], size)[:size]
	r.area = slices.Grow(r.area[:0], size)[:size]
	r.rowHasEdges = slices.Grow(r.rowHasEdges[:0], height)[:height]
	clear(r.cover)
	clear(r.area)
	clear(r.rowHasEdges)

	for i := range r.edges {
		e := &r.edges[i]
		y0 := max(int(math.Floor(min(e.y0, e.y1))), yMin)
		y1 := min(int(math.Floor(max(e.y0, e.y1)))+1, yMax)
		for y := y0; y < y1; y++ {
			row := y - yMin
			off := row * width
			accumulateEdge(e, y, r.cover[off:off+width], r.area[off:off+width], xMin, xMax)
			r.rowHasEdges[row] = true
		}
	}

	for row := range height {
		if !r.rowHasEdges[row] {
			continue
		}
		off := row * width
		coverage := r.cover[off : off+width]
		integrate(coverage, r.area[off:off+width], rule)
		if trimmed, lo := trimZeros(coverage); trimmed != nil {
			emit(yMin+row, xMin+lo, trimmed)
		}
	}
}

// fillLarge rasterizes one row at a time, keeping a list of the edges which
// intersect the current row.
func (r *Rasterizer) fillLarge(xMin, xMax, yMin, yMax int, rule FillRule, emit EmitFunc) {
	width := xMax - xMin
	r.cover = slices.Grow(r.cover[:0], width)[:width]
	r.area = slices.Grow(r.area[:0], width)[:width]

	slices.SortFunc(r.edges, func(a, b edge) int {
		return cmp.Compare(min(a.y0, a.y1), min(b.y0, b.y1))
	})

	r.activeIdx = r.activeIdx[:0]
	next := 0
	for y := yMin; y < yMax; y++ {
		top := float64(y)
		bot := float64(y + 1)

		for next < len(r.edges) && min(r.edges[next].y0, r.edges[next].y1) < bot {
			r.activeIdx = append(r.activeIdx, next)
			next++
		}
		if len(r.activeIdx) == 0 {
			continue
		}

		clear(r.cover)
		clear(r.area)
		touched := false
		for i := 0; i < len(r.activeIdx); {
			e := &r.edges[r.activeIdx[i]]
			if max(e.y0, e.y1) <= top {
				last := len(r.activeIdx) - 1
				r.activeIdx[i] = r.activeIdx[last]
				r.activeIdx = r.activeIdx[:last]
				continue
			}
			if min(e.y0, e.y1) < bot {
				accumulateEdge(e, y, r.cover, r.area, xMin, xMax)
				touched = true
			}
			i++
		}
		if !touched {
			continue
		}

		integrate(r.cover, r.area, rule)
		if trimmed, lo := trimZeros(r.cover); trimmed != nil {
			emit(y, xMin+lo, trimmed)
		}
	}
}

const (
	// defaultFlatness is the curve flattening tolerance in device pixels.
	defaultFlatness = 0.25

	// horizontalEdgeThreshold is the smallest vertical extent of an edge
	// which can contribute coverage.
	horizontalEdgeThreshold = 1e-10

	// smallPathThreshold is the default bounding box area (in pixels) up to
	// which 2D buffers are used.
	smallPathThreshold = 65536
)
