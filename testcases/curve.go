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

package testcases

import (
	"math"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// kappa is the control point distance for a cubic quarter circle.
const kappa = 0.5522847498307936

var curveCases = []TestCase{
	{
		Name:   "circle",
		Path:   circle(32, 32, 25),
		Width:  64,
		Height: 64,
		Rule:   NonZero,
		Area:   math.Pi * 25 * 25,
	},
	{
		Name:   "quadratic",
		Path:   quadratic(10, 50, 32, 10, 54, 50),
		Width:  64,
		Height: 64,
		Rule:   NonZero,
		// area between a parabola and its chord is 2/3 of the triangle
		Area: 2.0 / 3.0 * shoelace(10, 50, 32, 10, 54, 50),
	},
}

// circle builds a counter-clockwise circle from four cubic segments.
func circle(cx, cy, r float64) path.Path {
	return func(yield func(path.Command, []vec.Vec2) bool) {
		k := kappa * r
		if !yield(path.CmdMoveTo, []vec.Vec2{{X: cx + r, Y: cy}}) {
			return
		}
		segs := [4][3]vec.Vec2{
			{{X: cx + r, Y: cy + k}, {X: cx + k, Y: cy + r}, {X: cx, Y: cy + r}},
			{{X: cx - k, Y: cy + r}, {X: cx - r, Y: cy + k}, {X: cx - r, Y: cy}},
			{{X: cx - r, Y: cy - k}, {X: cx - k, Y: cy - r}, {X: cx, Y: cy - r}},
			{{X: cx + k, Y: cy - r}, {X: cx + r, Y: cy - k}, {X: cx + r, Y: cy}},
		}
		for _, s := range segs {
			if !yield(path.CmdCubeTo, s[:]) {
				return
			}
		}
		yield(path.CmdClose, nil)
	}
}

// quadratic builds the region between a quadratic curve and its chord.
func quadratic(x0, y0, x1, y1, x2, y2 float64) path.Path {
	return func(yield func(path.Command, []vec.Vec2) bool) {
		if !yield(path.CmdMoveTo, []vec.Vec2{{X: x0, Y: y0}}) {
			return
		}
		if !yield(path.CmdQuadTo, []vec.Vec2{{X: x1, Y: y1}, {X: x2, Y: y2}}) {
			return
		}
		yield(path.CmdClose, nil)
	}
}
