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

package raster

import (
	"fmt"
	"image"
	"math"
	"testing"

	"golang.org/x/image/vector"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// benchPolygon returns a gene-like hexagon of the given radius.
func benchPolygon(cx, cy, radius float64) []vec.Vec2 {
	pts := make([]vec.Vec2, 6)
	for i := range pts {
		angle := float64(i) * math.Pi / 3
		r := radius * (0.7 + 0.3*float64(i%2))
		pts[i] = vec.Vec2{X: cx + r*math.Cos(angle), Y: cy + r*math.Sin(angle)}
	}
	return pts
}

func polygonPath(pts []vec.Vec2) path.Path {
	return func(yield func(path.Command, []vec.Vec2) bool) {
		for i := range pts {
			cmd := path.CmdLineTo
			if i == 0 {
				cmd = path.CmdMoveTo
			}
			if !yield(cmd, pts[i:i+1]) {
				return
			}
		}
		yield(path.CmdClose, nil)
	}
}

var benchSizes = []int{20, 200, 1000}

// BenchmarkRasterizerPolygon measures our rasterizer on a gene-sized shape.
func BenchmarkRasterizerPolygon(b *testing.B) {
	for _, size := range benchSizes {
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			clip := rect.Rect{URx: float64(size), URy: float64(size)}
			r := NewRasterizer(clip)
			dst := image.NewAlpha(image.Rect(0, 0, size, size))
			p := polygonPath(benchPolygon(float64(size)/2, float64(size)/2, float64(size)*0.4))

			b.ReportAllocs()
			for b.Loop() {
				r.Reset(clip)
				r.FillEvenOdd(p, func(y, xMin int, coverage []float32) {
					row := dst.Pix[y*dst.Stride+xMin:]
					for i, c := range coverage {
						row[i] = uint8(c * 255)
					}
				})
			}
		})
	}
}

// BenchmarkVectorPolygon measures golang.org/x/image/vector on the same shape.
func BenchmarkVectorPolygon(b *testing.B) {
	for _, size := range benchSizes {
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			z := vector.NewRasterizer(size, size)
			dst := image.NewAlpha(image.Rect(0, 0, size, size))
			pts := benchPolygon(float64(size)/2, float64(size)/2, float64(size)*0.4)

			b.ReportAllocs()
			for b.Loop() {
				z.Reset(size, size)
				z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
				for _, pt := range pts[1:] {
					z.LineTo(float32(pt.X), float32(pt.Y))
				}
				z.ClosePath()
				z.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
			}
		})
	}
}
