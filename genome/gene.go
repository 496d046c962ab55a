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

package genome

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"image"
	"slices"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// Limits for gene geometry.
const (
	// MinVertices is the smallest number of vertices of a gene polygon.
	MinVertices = 3

	// MaxVertices is the largest number of vertices which the binary
	// format can represent.
	MaxVertices = 255

	// MaxCoordinate bounds the absolute value of vertex coordinates at
	// construction time. The binary format is narrower (int16); see
	// [ErrCoordinate].
	MaxCoordinate = 1 << 24
)

// ErrInvalidGene is returned (wrapped) when gene construction fails.
var ErrInvalidGene = errors.New("invalid gene")

// Gene is an immutable closed polygon with a fill color.
//
// The vertex order defines the winding of the polygon. Two genes are equal
// if their coordinates and colors are equal; the cache and the renderers
// use pointer identity instead.
type Gene struct {
	xs, ys []int32
	color  Color
	hash   uint64
}

// NewGene returns a gene with the given vertices and color.
// The coordinate slices are copied.
func NewGene(xs, ys []int, c Color) (*Gene, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d x coordinates but %d y coordinates",
			ErrInvalidGene, len(xs), len(ys))
	}
	if err := checkVertexCount(len(xs)); err != nil {
		return nil, err
	}
	gx := make([]int32, len(xs))
	gy := make([]int32, len(ys))
	for i := range xs {
		if !validCoordinate(xs[i]) || !validCoordinate(ys[i]) {
			return nil, fmt.Errorf("%w: vertex %d (%d, %d) out of range",
				ErrInvalidGene, i, xs[i], ys[i])
		}
		gx[i] = int32(xs[i])
		gy[i] = int32(ys[i])
	}
	return newGene(gx, gy, c), nil
}

// MustGene is like NewGene but panics on error.
// It is intended for tests and fixed shapes.
func MustGene(xs, ys []int, c Color) *Gene {
	g, err := NewGene(xs, ys, c)
	if err != nil {
		panic(err)
	}
	return g
}

// newGene takes ownership of xs and ys, which must already be valid.
func newGene(xs, ys []int32, c Color) *Gene {
	g := &Gene{xs: xs, ys: ys, color: c}
	g.hash = g.computeHash()
	return g
}

func checkVertexCount(n int) error {
	if n < MinVertices {
		return fmt.Errorf("%w: %d vertices, need at least %d", ErrInvalidGene, n, MinVertices)
	}
	if n > MaxVertices {
		return fmt.Errorf("%w: %d vertices, at most %d allowed", ErrInvalidGene, n, MaxVertices)
	}
	return nil
}

func validCoordinate(v int) bool {
	return v >= -MaxCoordinate && v <= MaxCoordinate
}

func (g *Gene) computeHash() uint64 {
	buf := make([]byte, 0, 4+8*len(g.xs))
	buf = binary.BigEndian.AppendUint32(buf, g.color.Packed())
	for i := range g.xs {
		buf = binary.BigEndian.AppendUint32(buf, uint32(g.xs[i]))
		buf = binary.BigEndian.AppendUint32(buf, uint32(g.ys[i]))
	}
	h := fnv.New64a()
	_, _ = h.Write(buf) // fnv.Write never returns an error
	return h.Sum64()
}

// Len returns the number of vertices.
func (g *Gene) Len() int {
	return len(g.xs)
}

// Point returns the coordinates of vertex i.
func (g *Gene) Point(i int) (x, y int) {
	return int(g.xs[i]), int(g.ys[i])
}

// Points returns copies of the x and y coordinates.
func (g *Gene) Points() (xs, ys []int) {
	xs = make([]int, len(g.xs))
	ys = make([]int, len(g.ys))
	for i := range g.xs {
		xs[i] = int(g.xs[i])
		ys[i] = int(g.ys[i])
	}
	return xs, ys
}

// Color returns the fill color.
func (g *Gene) Color() Color {
	return g.color
}

// Hash returns a structural hash of the gene.
// Equal genes have equal hashes.
func (g *Gene) Hash() uint64 {
	return g.hash
}

// Equal reports whether g and other have the same vertices and color.
func (g *Gene) Equal(other *Gene) bool {
	if g == other {
		return true
	}
	if g == nil || other == nil {
		return false
	}
	return g.hash == other.hash &&
		g.color == other.color &&
		slices.Equal(g.xs, other.xs) &&
		slices.Equal(g.ys, other.ys)
}

// Bounds returns the smallest integer rectangle containing all vertices.
// Max is exclusive.
func (g *Gene) Bounds() image.Rectangle {
	r := image.Rectangle{
		Min: image.Point{X: int(g.xs[0]), Y: int(g.ys[0])},
		Max: image.Point{X: int(g.xs[0]), Y: int(g.ys[0])},
	}
	for i := 1; i < len(g.xs); i++ {
		r.Min.X = min(r.Min.X, int(g.xs[i]))
		r.Min.Y = min(r.Min.Y, int(g.ys[i]))
		r.Max.X = max(r.Max.X, int(g.xs[i]))
		r.Max.Y = max(r.Max.Y, int(g.ys[i]))
	}
	r.Max.X++
	r.Max.Y++
	return r
}

// Outline returns the polygon as a closed path.
func (g *Gene) Outline() path.Path {
	return func(yield func(path.Command, []vec.Vec2) bool) {
		var buf [1]vec.Vec2
		for i := range g.xs {
			buf[0] = vec.Vec2{X: float64(g.xs[i]), Y: float64(g.ys[i])}
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

// WithPoint returns a copy of g with vertex i moved to (x, y).
func (g *Gene) WithPoint(i, x, y int) (*Gene, error) {
	if !validCoordinate(x) || !validCoordinate(y) {
		return nil, fmt.Errorf("%w: vertex (%d, %d) out of range", ErrInvalidGene, x, y)
	}
	xs := slices.Clone(g.xs)
	ys := slices.Clone(g.ys)
	xs[i] = int32(x)
	ys[i] = int32(y)
	return newGene(xs, ys, g.color), nil
}

// WithAppended returns a copy of g with an extra vertex at the end.
func (g *Gene) WithAppended(x, y int) (*Gene, error) {
	if err := checkVertexCount(len(g.xs) + 1); err != nil {
		return nil, err
	}
	if !validCoordinate(x) || !validCoordinate(y) {
		return nil, fmt.Errorf("%w: vertex (%d, %d) out of range", ErrInvalidGene, x, y)
	}
	xs := append(slices.Clone(g.xs), int32(x))
	ys := append(slices.Clone(g.ys), int32(y))
	return newGene(xs, ys, g.color), nil
}

// WithSwapped returns a copy of g with vertices i and j exchanged.
func (g *Gene) WithSwapped(i, j int) *Gene {
	xs := slices.Clone(g.xs)
	ys := slices.Clone(g.ys)
	xs[i], xs[j] = xs[j], xs[i]
	ys[i], ys[j] = ys[j], ys[i]
	return newGene(xs, ys, g.color)
}

// WithColor returns a gene with the same vertices and a new color.
// The vertex storage is shared, since neither gene can modify it.
func (g *Gene) WithColor(c Color) *Gene {
	return newGene(g.xs, g.ys, c)
}
