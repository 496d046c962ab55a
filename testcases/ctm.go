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
	"seehuhn.de/go/geom/matrix"
)

// ctmCases render genes at a different scale, as used for previews.
var ctmCases = []TestCase{
	{
		Name:   "scale_2x",
		Path:   polygon(0, 0, 20, 0, 20, 20, 0, 20),
		Width:  128,
		Height: 128,
		Rule:   EvenOdd,
		CTM:    matrix.Scale(2, 2).Translate(24, 24),
		Area:   40 * 40,
		Convex: true,
	},
	{
		Name:   "scale_half",
		Path:   polygon(0, 0, 80, 0, 80, 80, 0, 80),
		Width:  64,
		Height: 64,
		Rule:   EvenOdd,
		CTM:    matrix.Scale(0.5, 0.5).Translate(12, 12),
		Area:   40 * 40,
		Convex: true,
	},
	{
		Name:   "scale_triangle_3x",
		Path:   polygon(2, 2, 18, 4, 8, 19),
		Width:  64,
		Height: 64,
		Rule:   NonZero,
		CTM:    matrix.Scale(3, 3),
		Area:   9 * shoelace(2, 2, 18, 4, 8, 19),
		Convex: true,
	},
}
