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
	"seehuhn.de/go/vectorize/random"
)

// Config holds the parameters of the mutation strategy and the random
// genome factory. A Config is created once by [NewConfig] or
// [DefaultConfig] and never changes afterwards, so it can be shared
// between goroutines.
type Config struct {
	width, height int

	geneProbability      float64
	importantProbability float64
	colorProbability     float64
	minRepeats           int
	maxRepeats           int

	important    *random.Table[GeneMutator]
	color        *random.Table[GeneMutator]
	defaultGroup *random.Table[GeneMutator]
	genomeOps    []GenomeMutator

	geneSelector   random.Selector
	genomeSelector random.Selector
	constraints    Constraints

	minGenes, maxGenes       int
	minVertices, maxVertices int
	retries                  int
}

// Option modifies a Config under construction.
type Option func(*Config)

// WithProbabilities sets the probability of a gene-level (instead of a
// genome-level) mutation, of choosing an important gene operator, and of
// choosing a color operator when no important one was chosen.
func WithProbabilities(gene, important, color float64) Option {
	return func(c *Config) {
		c.geneProbability = gene
		c.importantProbability = important
		c.colorProbability = color
	}
}

// WithRepeats sets the range of mutation steps per call.
func WithRepeats(lo, hi int) Option {
	return func(c *Config) {
		c.minRepeats, c.maxRepeats = lo, hi
	}
}

// WithGeneGroups sets the three gene operator groups.
// Operators are picked uniformly within a group.
func WithGeneGroups(important, color, other []GeneMutator) Option {
	return func(c *Config) {
		c.important = groupTable(important)
		c.color = groupTable(color)
		c.defaultGroup = groupTable(other)
	}
}

// WithGenomeOps sets the genome operators.
func WithGenomeOps(ops ...GenomeMutator) Option {
	return func(c *Config) {
		c.genomeOps = append([]GenomeMutator(nil), ops...)
	}
}

// WithSelectors sets how genes are chosen for gene-level mutation and for
// genome operators.
func WithSelectors(geneSel, genomeSel random.Selector) Option {
	return func(c *Config) {
		c.geneSelector = geneSel
		c.genomeSelector = genomeSel
	}
}

// WithConstraints replaces the default constraints. A nil value disables
// all checks.
func WithConstraints(cons Constraints) Option {
	return func(c *Config) {
		c.constraints = cons
	}
}

// WithInitialGenes sets the size range of random genomes.
func WithInitialGenes(lo, hi int) Option {
	return func(c *Config) {
		c.minGenes, c.maxGenes = lo, hi
	}
}

// WithVertices sets the vertex count range of random genes.
func WithVertices(lo, hi int) Option {
	return func(c *Config) {
		c.minVertices, c.maxVertices = lo, hi
	}
}

// WithRetries bounds the attempts to find an operator which changes the
// genome.
func WithRetries(n int) Option {
	return func(c *Config) {
		c.retries = n
	}
}

func groupTable(ops []GeneMutator) *random.Table[GeneMutator] {
	if len(ops) == 0 {
		return nil
	}
	return random.NewTable(ops, nil)
}

func geneMutators(ops ...GeneOp) []GeneMutator {
	res := make([]GeneMutator, len(ops))
	for i, op := range ops {
		res[i] = op
	}
	return res
}

// NewConfig returns a configuration for a width x height canvas.
// Options are applied on top of the defaults.
func NewConfig(width, height int, opts ...Option) (*Config, error) {
	if width <= 0 || height <= 0 || width > math.MaxInt16 || height > math.MaxInt16 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	c := &Config{
		width:  width,
		height: height,

		geneProbability:      0.95,
		importantProbability: 0.75,
		colorProbability:     0.75,
		minRepeats:           1,
		maxRepeats:           2,

		geneSelector:   random.Uniform{},
		genomeSelector: random.Uniform{},
		constraints:    Bounds{Width: width, Height: height},

		minGenes:    10,
		maxGenes:    20,
		minVertices: genome.MinVertices,
		maxVertices: 5,
		retries:     20,
	}
	WithGeneGroups(
		geneMutators(MovePoint),
		geneMutators(RecolorChannel, RecolorAlpha, Darker, Brighter),
		geneMutators(AllGeneOps...),
	)(c)
	genomeOps := make([]GenomeMutator, len(AllGenomeOps))
	for i, op := range AllGenomeOps {
		genomeOps[i] = op
	}
	c.genomeOps = genomeOps

	for _, opt := range opts {
		opt(c)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultConfig returns the default configuration for a width x height
// canvas. It panics if the size is not positive.
func DefaultConfig(width, height int) *Config {
	c, err := NewConfig(width, height)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Config) validate() error {
	var errs []error
	for _, p := range []float64{c.geneProbability, c.importantProbability, c.colorProbability} {
		if !(p >= 0 && p <= 1) {
			errs = append(errs, fmt.Errorf("probability %g outside [0, 1]", p))
		}
	}
	if c.minRepeats < 1 || c.maxRepeats < c.minRepeats {
		errs = append(errs, fmt.Errorf("invalid repeat range [%d, %d]", c.minRepeats, c.maxRepeats))
	}
	if c.important == nil || c.color == nil || c.defaultGroup == nil {
		errs = append(errs, errors.New("empty gene operator group"))
	}
	if len(c.genomeOps) == 0 {
		errs = append(errs, errors.New("no genome operators"))
	}
	if c.geneSelector == nil || c.genomeSelector == nil {
		errs = append(errs, errors.New("missing selector"))
	}
	if c.minGenes < 1 || c.maxGenes < c.minGenes {
		errs = append(errs, fmt.Errorf("invalid initial gene range [%d, %d]", c.minGenes, c.maxGenes))
	}
	if c.minVertices < genome.MinVertices || c.maxVertices > genome.MaxVertices ||
		c.maxVertices < c.minVertices {
		errs = append(errs, fmt.Errorf("invalid vertex range [%d, %d]", c.minVertices, c.maxVertices))
	}
	if c.retries < 1 {
		errs = append(errs, fmt.Errorf("invalid retry bound %d", c.retries))
	}
	if err := checkBounds(c.constraints); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Size returns the canvas size.
func (c *Config) Size() (width, height int) {
	return c.width, c.height
}

// Constraints returns the configured constraints.
func (c *Config) Constraints() Constraints {
	return c.constraints
}

// Retries returns the bound on attempts to find a changing operator.
func (c *Config) Retries() int {
	return c.retries
}
