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
	"fmt"
	"math/rand"

	"seehuhn.de/go/vectorize/genome"
	"seehuhn.de/go/vectorize/random"
)

// Perturbation ranges of the gene operators.
const (
	moveRadius  = 10
	addRadius   = 25
	colorRadius = 25
	darkMin     = 0.5
	darkMax     = 0.99
)

// GeneMutator derives a new gene from g.
// If the mutation cannot be applied, or its result is rejected by c,
// g itself is returned.
type GeneMutator interface {
	MutateGene(r *rand.Rand, c Constraints, g *genome.Gene) *genome.Gene
}

// GeneOp enumerates the built-in gene operators.
type GeneOp int

// These are the built-in gene operators.
const (
	MovePoint      GeneOp = iota // move one vertex by up to 10 pixels per axis
	AddPoint                     // append a vertex near the closing edge
	SwapPoints                   // exchange two vertices
	RecolorChannel               // change red, green or blue by up to 25
	RecolorAlpha                 // change alpha by up to 25
	Darker                       // scale the color towards black
	Brighter                     // scale the color towards white
)

// AllGeneOps lists the built-in gene operators.
var AllGeneOps = []GeneOp{
	MovePoint, AddPoint, SwapPoints,
	RecolorChannel, RecolorAlpha, Darker, Brighter,
}

var geneOpNames = []string{
	"move-point", "add-point", "swap-points",
	"recolor-channel", "recolor-alpha", "darker", "brighter",
}

func (op GeneOp) String() string {
	if op >= 0 && int(op) < len(geneOpNames) {
		return geneOpNames[op]
	}
	return fmt.Sprintf("GeneOp(%d)", int(op))
}

// ParseGeneOp returns the operator with the given name.
func ParseGeneOp(name string) (GeneOp, error) {
	for i, n := range geneOpNames {
		if n == name {
			return GeneOp(i), nil
		}
	}
	return 0, fmt.Errorf("unknown gene operator %q", name)
}

// MutateGene implements [GeneMutator].
func (op GeneOp) MutateGene(r *rand.Rand, c Constraints, g *genome.Gene) *genome.Gene {
	var res *genome.Gene
	var err error
	switch op {
	case MovePoint:
		i := r.Intn(g.Len())
		x, y := g.Point(i)
		x += random.Range(r, -moveRadius, moveRadius)
		y += random.Range(r, -moveRadius, moveRadius)
		res, err = g.WithPoint(i, x, y)
	case AddPoint:
		x0, y0 := g.Point(0)
		x1, y1 := g.Point(g.Len() - 1)
		x := (x0+x1)/2 + random.Range(r, -addRadius, addRadius)
		y := (y0+y1)/2 + random.Range(r, -addRadius, addRadius)
		res, err = g.WithAppended(x, y)
	case SwapPoints:
		i, j := random.Pair(r, g.Len())
		res = g.WithSwapped(i, j)
	case RecolorChannel:
		col := g.Color()
		delta := random.Range(r, -colorRadius, colorRadius)
		switch r.Intn(3) {
		case 0:
			col.R = shift(col.R, delta)
		case 1:
			col.G = shift(col.G, delta)
		default:
			col.B = shift(col.B, delta)
		}
		res = g.WithColor(col)
	case RecolorAlpha:
		col := g.Color()
		col.A = shift(col.A, random.Range(r, -colorRadius, colorRadius))
		res = g.WithColor(col)
	case Darker:
		f := random.Float(r, darkMin, darkMax)
		res = g.WithColor(scaleRGB(g.Color(), f))
	case Brighter:
		f := random.Float(r, darkMin, darkMax)
		res = g.WithColor(scaleRGB(g.Color(), 1/f))
	default:
		panic(fmt.Sprintf("mutate: invalid gene operator %d", int(op)))
	}
	if err != nil || !acceptGene(c, res) {
		return g
	}
	return res
}

func shift(v uint8, delta int) uint8 {
	return uint8(min(max(int(v)+delta, 0), 255))
}

func scaleRGB(col genome.Color, f float64) genome.Color {
	scale := func(v uint8) uint8 {
		return uint8(min(float64(v)*f+0.5, 255))
	}
	col.R = scale(col.R)
	col.G = scale(col.G)
	col.B = scale(col.B)
	return col
}
