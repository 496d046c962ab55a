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

// Package testcases defines polygon fill cases shared by the rasterizer and
// renderer tests and benchmarks.
package testcases

import (
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// TestCase is a single fill test.
type TestCase struct {
	Name   string        // lowercase a-z, 0-9 and _ only
	Path   path.Path     // the geometry to fill
	Width  int           // canvas width in pixels
	Height int           // canvas height in pixels
	Rule   FillRule      // fill rule
	CTM    matrix.Matrix // zero value means identity

	// Area is the exact area of the filled region in device space,
	// or 0 if it is not known in closed form.
	Area float64

	// Convex is set for simple convex polygons. Such shapes must give the
	// same result under every fill rule and every rasterizer.
	Convex bool
}

// FillRule specifies how the interior of a path is determined.
type FillRule int

const (
	NonZero FillRule = iota
	EvenOdd
)

// polygon builds a closed path through the given points, given as
// alternating x and y values.
func polygon(coords ...float64) path.Path {
	return func(yield func(path.Command, []vec.Vec2) bool) {
		var buf [1]vec.Vec2
		for i := 0; i+1 < len(coords); i += 2 {
			buf[0] = vec.Vec2{X: coords[i], Y: coords[i+1]}
			cmd := path.CmdLineTo
			if i == 0 {
				cmd = path.CmdMoveTo
			}
			if !yield(cmd, buf[:]) {
				return
			}
		}
		yield(path.CmdClose, nil)
	}
}

// concat joins several paths into one.
func concat(paths ...path.Path) path.Path {
	return func(yield func(path.Command, []vec.Vec2) bool) {
		for _, p := range paths {
			for cmd, pts := range p {
				if !yield(cmd, pts) {
					return
				}
			}
		}
	}
}

// shoelace returns the absolute area of a simple polygon.
func shoelace(coords ...float64) float64 {
	n := len(coords) / 2
	sum := 0.0
	for i := range n {
		j := (i + 1) % n
		sum += coords[2*i]*coords[2*j+1] - coords[2*j]*coords[2*i+1]
	}
	if sum < 0 {
		sum = -sum
	}
	return sum / 2
}
