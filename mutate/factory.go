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
	"math/rand"

	"seehuhn.de/go/vectorize/genome"
	"seehuhn.de/go/vectorize/random"
)

// Factory creates random genes and genomes.
type Factory struct {
	cfg *Config
}

// NewFactory returns a factory for the canvas described by cfg.
func NewFactory(cfg *Config) *Factory {
	return &Factory{cfg: cfg}
}

// NewGenome returns an unscored genome with a random number of random
// genes over a transparent background.
func (f *Factory) NewGenome(r *rand.Rand) *genome.Genome {
	cfg := f.cfg
	n := random.Range(r, cfg.minGenes, cfg.maxGenes)
	if limit := maxGenes(cfg.constraints); limit > 0 {
		n = min(n, limit)
	}
	genes := make([]*genome.Gene, n)
	for i := range genes {
		genes[i] = newGene(r, cfg)
	}
	g, err := genome.New(genome.Transparent, genes)
	if err != nil {
		panic(err) // n >= 1 and no gene is nil
	}
	return g
}

// NewGene returns a random gene.
func (f *Factory) NewGene(r *rand.Rand) *genome.Gene {
	return newGene(r, f.cfg)
}

// newGene places a small random polygon somewhere on the canvas.
// Candidates rejected by the gene constraints are drawn again, up to the
// retry bound; the last candidate is returned in any case.
func newGene(r *rand.Rand, cfg *Config) *genome.Gene {
	spread := max(max(cfg.width, cfg.height)/8, 2)
	var gene *genome.Gene
	for range cfg.retries {
		n := random.Range(r, cfg.minVertices, cfg.maxVertices)
		cx := random.Range(r, 0, cfg.width)
		cy := random.Range(r, 0, cfg.height)
		xs := make([]int, n)
		ys := make([]int, n)
		for i := range n {
			xs[i] = min(max(cx+random.Range(r, -spread, spread), 0), cfg.width)
			ys[i] = min(max(cy+random.Range(r, -spread, spread), 0), cfg.height)
		}
		col := genome.Color{
			A: uint8(random.Range(r, 30, 225)),
			R: uint8(r.Intn(256)),
			G: uint8(r.Intn(256)),
			B: uint8(r.Intn(256)),
		}
		gene = genome.MustGene(xs, ys, col)
		if acceptGene(cfg.constraints, gene) {
			break
		}
	}
	return gene
}
