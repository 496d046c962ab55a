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
	"errors"
	"iter"
	"math"
	"slices"
)

// ErrNoGenes is returned when a genome would have no genes.
var ErrNoGenes = errors.New("genome needs at least one gene")

// Genome is an ordered list of genes painted over a background color.
//
// The gene list never changes after construction. Fitness and the run
// counters are stamped by whoever owns the genome before it is shared:
// workers set Fitness, the vectorizer sets the counters when it accepts the
// genome as the new best.
type Genome struct {
	Background Color
	genes      []*Gene

	// Fitness is the error against the target image, lower is better.
	// It is NaN until the genome has been scored.
	Fitness float64

	Improvements uint32 // accepted improvements when this genome was accepted
	Generated    uint32 // genomes generated when this genome was accepted
	Mutations    uint32 // submitted mutations when this genome was accepted
}

// New returns a genome with the given background and genes.
// The gene slice is copied.
func New(bg Color, genes []*Gene) (*Genome, error) {
	if len(genes) == 0 {
		return nil, ErrNoGenes
	}
	if slices.Contains(genes, nil) {
		return nil, errors.New("genome contains a nil gene")
	}
	return newGenome(bg, slices.Clone(genes)), nil
}

func newGenome(bg Color, genes []*Gene) *Genome {
	return &Genome{
		Background: bg,
		genes:      genes,
		Fitness:    math.NaN(),
	}
}

// WithGenes returns an unscored genome with the background of g and the
// given genes. The gene slice is copied.
func (g *Genome) WithGenes(genes []*Gene) (*Genome, error) {
	return New(g.Background, genes)
}

// Len returns the number of genes.
func (g *Genome) Len() int {
	return len(g.genes)
}

// Gene returns gene i.
func (g *Genome) Gene(i int) *Gene {
	return g.genes[i]
}

// Genes returns a copy of the gene list.
func (g *Genome) Genes() []*Gene {
	return slices.Clone(g.genes)
}

// All iterates over the genes in painting order.
func (g *Genome) All() iter.Seq2[int, *Gene] {
	return func(yield func(int, *Gene) bool) {
		for i, gene := range g.genes {
			if !yield(i, gene) {
				return
			}
		}
	}
}

// Equal reports whether g and other have the same background and
// structurally equal genes in the same order. Fitness and counters are
// ignored.
func (g *Genome) Equal(other *Genome) bool {
	if g == other {
		return true
	}
	if g == nil || other == nil {
		return false
	}
	return g.Background == other.Background &&
		slices.EqualFunc(g.genes, other.genes, (*Gene).Equal)
}

// IsScored reports whether the fitness has been set.
func (g *Genome) IsScored() bool {
	return !math.IsNaN(g.Fitness)
}
