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

// largeCases have bounding boxes above 65536 pixels, so that the
// rasterizer uses its active edge list.
var largeCases = []TestCase{
	{
		Name:   "large_rectangle",
		Path:   polygon(50, 50, 462, 50, 462, 462, 50, 462),
		Width:  512,
		Height: 512,
		Rule:   NonZero,
		Area:   412 * 412,
		Convex: true,
	},
	{
		Name:   "large_diamond",
		Path:   polygon(256, 76, 436, 256, 256, 436, 76, 256),
		Width:  512,
		Height: 512,
		Rule:   EvenOdd,
		Area:   2 * 180 * 180,
		Convex: true,
	},
	{
		Name: "large_ring_evenodd",
		Path: concat(
			polygon(56, 56, 456, 56, 456, 456, 56, 456),
			polygon(156, 156, 356, 156, 356, 356, 156, 356),
		),
		Width:  512,
		Height: 512,
		Rule:   EvenOdd,
		Area:   400*400 - 200*200,
	},
	{
		Name: "large_nested_nonzero",
		Path: concat(
			polygon(56, 56, 456, 56, 456, 456, 56, 456),
			polygon(156, 156, 356, 156, 356, 356, 156, 356),
		),
		Width:  512,
		Height: 512,
		Rule:   NonZero,
		Area:   400 * 400,
	},
}
