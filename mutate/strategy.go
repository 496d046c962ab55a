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

// Strategy turns the current best genome into a new candidate.
// A Strategy is safe for concurrent use if every goroutine passes its own
// random stream.
type Strategy struct {
	cfg *Config
}

// NewStrategy returns a mutation strategy driven by cfg.
func NewStrategy(cfg *Config) *Strategy {
	return &Strategy{cfg: cfg}
}

// Config returns the configuration of the strategy.
func (s *Strategy) Config() *Config {
	return s.cfg
}

// Mutate applies one or more mutation steps to g.
//
// Each step is either a gene-level mutation of one gene, or a genome-level
// mutation. The result is a new unscored genome, or g itself if no
// operator could change it within the configured number of attempts.
func (s *Strategy) Mutate(r *rand.Rand, g *genome.Genome) *genome.Genome {
	cfg := s.cfg
	cur := g
	repeats := random.Range(r, cfg.minRepeats, cfg.maxRepeats)
	for range repeats {
		if random.Coin(r, cfg.geneProbability) {
			cur = s.mutateGene(r, cur)
		} else {
			cur = s.mutateGenome(r, cur)
		}
	}
	return cur
}

// pickGeneOp chooses an operator by nested coin flips.
func (s *Strategy) pickGeneOp(r *rand.Rand) GeneMutator {
	cfg := s.cfg
	switch {
	case random.Coin(r, cfg.importantProbability):
		return cfg.important.Pick(r)
	case random.Coin(r, cfg.colorProbability):
		return cfg.color.Pick(r)
	default:
		return cfg.defaultGroup.Pick(r)
	}
}

func (s *Strategy) mutateGene(r *rand.Rand, g *genome.Genome) *genome.Genome {
	cfg := s.cfg
	i := cfg.geneSelector.Select(r, g.Len())
	old := g.Gene(i)
	for range cfg.retries {
		gene := s.pickGeneOp(r).MutateGene(r, cfg.constraints, old)
		if gene == old || gene.Equal(old) {
			continue
		}
		genes := g.Genes()
		genes[i] = gene
		res, err := g.WithGenes(genes)
		if err != nil || !acceptGenome(cfg.constraints, res) {
			continue
		}
		return res
	}
	return g
}

// applicable is implemented by genome operators which can tell in advance
// that they would not change a genome.
type applicable interface {
	Applicable(cfg *Config, g *genome.Genome) bool
}

func (s *Strategy) mutateGenome(r *rand.Rand, g *genome.Genome) *genome.Genome {
	cfg := s.cfg
	pool := make([]GenomeMutator, 0, len(cfg.genomeOps))
	for _, op := range cfg.genomeOps {
		if a, ok := op.(applicable); ok && !a.Applicable(cfg, g) {
			continue
		}
		pool = append(pool, op)
	}
	if len(pool) == 0 {
		return g
	}
	for range cfg.retries {
		op := pool[r.Intn(len(pool))]
		if res := op.MutateGenome(r, cfg, g); res != g && !res.Equal(g) {
			return res
		}
	}
	return g
}
