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

package mutate

import (
	"errors"
	"fmt"
	"math"

	"seehuhn.de/go/vectorize/genome"
)

// Constraints decide whether genes and genomes are acceptable.
// A nil Constraints value accepts everything.
type Constraints interface {
	AcceptGene(g *genome.Gene) bool
	AcceptGenome(g *genome.Genome) bool
}

// geneLimiter is implemented by constraints which cap the number of genes.
type geneLimiter interface {
	MaxGenes() int
}

func acceptGene(c Constraints, g *genome.Gene) bool {
	return c == nil || c.AcceptGene(g)
}

func acceptGenome(c Constraints, g *genome.Genome) bool {
	return c == nil || c.AcceptGenome(g)
}

// maxGenes returns the largest gene count c allows, or -1 if there is no
// limit.
func maxGenes(c Constraints) int {
	if l, ok := c.(geneLimiter); ok {
		return l.MaxGenes()
	}
	return -1
}

// All accepts values which are accepted by every member.
type All []Constraints

// AcceptGene implements [Constraints].
func (a All) AcceptGene(g *genome.Gene) bool {
	for _, c := range a {
		if !acceptGene(c, g) {
			return false
		}
	}
	return true
}

// AcceptGenome implements [Constraints].
func (a All) AcceptGenome(g *genome.Genome) bool {
	for _, c := range a {
		if !acceptGenome(c, g) {
			return false
		}
	}
	return true
}

// MaxGenes returns the tightest gene limit of the members.
func (a All) MaxGenes() int {
	limit := -1
	for _, c := range a {
		if l := maxGenes(c); l >= 0 && (limit < 0 || l < limit) {
			limit = l
		}
	}
	return limit
}

// Bounds requires all vertices to lie inside the canvas, extended by
// Margin pixels on every side.
type Bounds struct {
	Width, Height int
	Margin        int
}

// AcceptGene implements [Constraints].
func (b Bounds) AcceptGene(g *genome.Gene) bool {
	for i := range g.Len() {
		x, y := g.Point(i)
		if x < -b.Margin || x > b.Width+b.Margin ||
			y < -b.Margin || y > b.Height+b.Margin {
			return false
		}
	}
	return true
}

// AcceptGenome implements [Constraints].
func (b Bounds) AcceptGenome(*genome.Genome) bool { return true }

// check verifies that every accepted vertex fits the 16-bit genome
// encoding.
func (b Bounds) check() error {
	if b.Margin < 0 {
		return fmt.Errorf("negative margin %d", b.Margin)
	}
	if max(b.Width, b.Height)+b.Margin > math.MaxInt16 {
		return fmt.Errorf("canvas %dx%d with margin %d exceeds 16-bit coordinates",
			b.Width, b.Height, b.Margin)
	}
	return nil
}

// checkBounds checks all Bounds constraints within c.
func checkBounds(c Constraints) error {
	switch c := c.(type) {
	case Bounds:
		return c.check()
	case All:
		var errs []error
		for _, m := range c {
			errs = append(errs, checkBounds(m))
		}
		return errors.Join(errs...)
	}
	return nil
}

// Simple rejects self-intersecting polygons.
type Simple struct{}

// AcceptGene implements [Constraints].
func (Simple) AcceptGene(g *genome.Gene) bool {
	n := g.Len()
	for i := range n {
		a, b := edge(g, i)
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // adjacent via the closing edge
			}
			c, d := edge(g, j)
			if segmentsIntersect(a, b, c, d) {
				return false
			}
		}
	}
	return true
}

// AcceptGenome implements [Constraints].
func (Simple) AcceptGenome(*genome.Genome) bool { return true }

type point struct{ x, y int64 }

func edge(g *genome.Gene, i int) (point, point) {
	x0, y0 := g.Point(i)
	x1, y1 := g.Point((i + 1) % g.Len())
	return point{int64(x0), int64(y0)}, point{int64(x1), int64(y1)}
}

func orientation(a, b, c point) int64 {
	v := (b.x-a.x)*(c.y-a.y) - (b.y-a.y)*(c.x-a.x)
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// onSegment reports whether c, known to be collinear with a and b, lies
// within their bounding box.
func onSegment(a, b, c point) bool {
	return min(a.x, b.x) <= c.x && c.x <= max(a.x, b.x) &&
		min(a.y, b.y) <= c.y && c.y <= max(a.y, b.y)
}

func segmentsIntersect(a, b, c, d point) bool {
	o1 := orientation(a, b, c)
	o2 := orientation(a, b, d)
	o3 := orientation(c, d, a)
	o4 := orientation(c, d, b)
	if o1 != o2 && o3 != o4 {
		return true
	}
	return o1 == 0 && onSegment(a, b, c) ||
		o2 == 0 && onSegment(a, b, d) ||
		o3 == 0 && onSegment(c, d, a) ||
		o4 == 0 && onSegment(c, d, b)
}

// MinArea rejects polygons whose enclosed area (by the shoelace formula)
// is smaller than the given number of pixels.
type MinArea float64

// AcceptGene implements [Constraints].
func (m MinArea) AcceptGene(g *genome.Gene) bool {
	return Area(g) >= float64(m)
}

// AcceptGenome implements [Constraints].
func (MinArea) AcceptGenome(*genome.Genome) bool { return true }

// Area returns the absolute signed area of the polygon.
func Area(g *genome.Gene) float64 {
	var sum int64
	n := g.Len()
	for i := range n {
		a, b := edge(g, i)
		sum += a.x*b.y - b.x*a.y
	}
	return math.Abs(float64(sum)) / 2
}

// GeneLimit caps the number of genes in a genome.
type GeneLimit int

// AcceptGene implements [Constraints].
func (GeneLimit) AcceptGene(*genome.Gene) bool { return true }

// AcceptGenome implements [Constraints].
func (l GeneLimit) AcceptGenome(g *genome.Genome) bool {
	return g.Len() <= int(l)
}

// MaxGenes returns the limit.
func (l GeneLimit) MaxGenes() int {
	return int(l)
}
