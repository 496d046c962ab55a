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
)

var fillCases = []TestCase{
	{
		Name:   "gene_square",
		Path:   polygon(0, 0, 10, 0, 10, 10, 0, 10),
		Width:  20,
		Height: 20,
		Rule:   EvenOdd,
		Area:   100,
		Convex: true,
	},
	{
		Name:   "triangle_nonzero",
		Path:   polygon(10, 50, 32, 10, 54, 50),
		Width:  64,
		Height: 64,
		Rule:   NonZero,
		Area:   shoelace(10, 50, 32, 10, 54, 50),
		Convex: true,
	},
	{
		Name:   "triangle_evenodd",
		Path:   polygon(10, 50, 54, 50, 32, 10),
		Width:  64,
		Height: 64,
		Rule:   EvenOdd,
		Area:   shoelace(10, 50, 54, 50, 32, 10),
		Convex: true,
	},
	{
		Name:   "thin_sliver",
		Path:   polygon(2, 30, 62, 31, 2, 32),
		Width:  64,
		Height: 64,
		Rule:   EvenOdd,
		Area:   shoelace(2, 30, 62, 31, 2, 32),
		Convex: true,
	},
	{
		Name:   "arrow_concave",
		Path:   polygon(8, 24, 36, 24, 36, 8, 58, 32, 36, 56, 36, 40, 8, 40),
		Width:  64,
		Height: 64,
		Rule:   EvenOdd,
		Area:   shoelace(8, 24, 36, 24, 36, 8, 58, 32, 36, 56, 36, 40, 8, 40),
	},
	{
		Name:   "star_nonzero",
		Path:   star(32, 32, 25),
		Width:  64,
		Height: 64,
		Rule:   NonZero,
	},
	{
		Name:   "star_evenodd",
		Path:   star(32, 32, 25),
		Width:  64,
		Height: 64,
		Rule:   EvenOdd,
	},
	{
		Name:   "clipped_triangle",
		Path:   polygon(-20, -10, 40, 5, 10, 50),
		Width:  32,
		Height: 32,
		Rule:   EvenOdd,
	},
}

// starCoords returns the vertices of a self-intersecting five-pointed star.
func starCoords(cx, cy, r float64) []float64 {
	var coords []float64
	for _, k := range []int{0, 2, 4, 1, 3} {
		angle := float64(k)*2*math.Pi/5 - math.Pi/2
		coords = append(coords, cx+r*math.Cos(angle), cy+r*math.Sin(angle))
	}
	return coords
}

func star(cx, cy, r float64) path.Path {
	return polygon(starCoords(cx, cy, r)...)
}
