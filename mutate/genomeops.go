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
	"slices"

	"seehuhn.de/go/vectorize/genome"
)

// GenomeMutator derives a new genome from g.
// If the mutation cannot be applied, g itself is returned.
type GenomeMutator interface {
	MutateGenome(r *rand.Rand, cfg *Config, g *genome.Genome) *genome.Genome
}

// GenomeOp enumerates the built-in genome operators.
type GenomeOp int

// These are the built-in genome operators.
const (
	AddGene    GenomeOp = iota // append a random gene
	RemoveGene                 // remove one gene
	SwapGenes                  // exchange the painting order of two genes
)

// AllGenomeOps lists the built-in genome operators.
var AllGenomeOps = []GenomeOp{AddGene, RemoveGene, SwapGenes}

func (op GenomeOp) String() string {
	switch op {
	case AddGene:
		return "add-gene"
	case RemoveGene:
		return "remove-gene"
	case SwapGenes:
		return "swap-genes"
	}
	return fmt.Sprintf("GenomeOp(%d)", int(op))
}

// Applicable reports whether op can change g at all.
// Remove and swap need two genes, add needs room below the gene limit.
func (op GenomeOp) Applicable(cfg *Config, g *genome.Genome) bool {
	switch op {
	case AddGene:
		limit := maxGenes(cfg.constraints)
		return limit < 0 || g.Len() < limit
	case RemoveGene, SwapGenes:
		return g.Len() > 1
	}
	return false
}

// MutateGenome implements [GenomeMutator].
func (op GenomeOp) MutateGenome(r *rand.Rand, cfg *Config, g *genome.Genome) *genome.Genome {
	n := g.Len()
	var genes []*genome.Gene
	switch op {
	case AddGene:
		gene := newGene(r, cfg)
		if !acceptGene(cfg.constraints, gene) {
			return g
		}
		genes = append(g.Genes(), gene)
	case RemoveGene:
		if n < 2 {
			return g
		}
		i := cfg.genomeSelector.Select(r, n)
		genes = slices.Delete(g.Genes(), i, i+1)
	case SwapGenes:
		if n < 2 {
			return g
		}
		i := cfg.genomeSelector.Select(r, n)
		j := cfg.genomeSelector.Select(r, n-1)
		if j >= i {
			j++
		}
		genes = g.Genes()
		genes[i], genes[j] = genes[j], genes[i]
	default:
		panic(fmt.Sprintf("mutate: invalid genome operator %d", int(op)))
	}

	res, err := g.WithGenes(genes)
	if err != nil || !acceptGenome(cfg.constraints, res) {
		return g
	}
	return res
}
