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

// Package config reads the YAML configuration of a vectorizer run.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"seehuhn.de/go/vectorize/fitness"
	"seehuhn.de/go/vectorize/mutate"
	"seehuhn.de/go/vectorize/polycache"
	"seehuhn.de/go/vectorize/random"
)

// Config holds the full run configuration.
type Config struct {
	Target     string `yaml:"target"`
	Importance string `yaml:"importance"`
	DBPath     string `yaml:"db_path"`
	MaxSize    int    `yaml:"max_size"`
	Threads    int    `yaml:"threads"`
	Seed       int64  `yaml:"seed"` // 0 picks a seed from the clock
	Listen     string `yaml:"listen"`

	ReportInterval time.Duration `yaml:"report_interval"`
	StopTimeout    time.Duration `yaml:"stop_timeout"`

	Log      LogConfig      `yaml:"log"`
	Fitness  FitnessConfig  `yaml:"fitness"`
	Mutation MutationConfig `yaml:"mutation"`
	Cache    CacheConfig    `yaml:"cache"`
}

// LogConfig selects the log output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// FitnessConfig holds the channel weights of the fitness function.
type FitnessConfig struct {
	Alpha float64 `yaml:"alpha"`
	Red   float64 `yaml:"red"`
	Green float64 `yaml:"green"`
	Blue  float64 `yaml:"blue"`
}

// MutationConfig holds the parameters of the mutation strategy.
type MutationConfig struct {
	GeneProbability      float64 `yaml:"gene_probability"`
	ImportantProbability float64 `yaml:"important_probability"`
	ColorProbability     float64 `yaml:"color_probability"`
	MinRepeats           int     `yaml:"min_repeats"`
	MaxRepeats           int     `yaml:"max_repeats"`
	MinGenes             int     `yaml:"min_genes"`
	MaxGenes             int     `yaml:"max_genes"`
	MinVertices          int     `yaml:"min_vertices"`
	MaxVertices          int     `yaml:"max_vertices"`
	Retries              int     `yaml:"retries"`

	GeneSelector   SelectorConfig `yaml:"gene_selector"`
	GenomeSelector SelectorConfig `yaml:"genome_selector"`

	Margin    int     `yaml:"margin"`     // allowed distance of vertices outside the canvas
	GeneLimit int     `yaml:"gene_limit"` // 0 means unlimited
	Simple    bool    `yaml:"simple"`     // reject self-intersecting polygons
	MinArea   float64 `yaml:"min_area"`
}

// SelectorConfig describes an index selector.
type SelectorConfig struct {
	Kind   string  `yaml:"kind"` // uniform | gaussian
	Mean   float64 `yaml:"mean"`
	StdDev float64 `yaml:"stddev"`
}

// CacheConfig holds the polygon cache timings.
type CacheConfig struct {
	QueueSize    int           `yaml:"queue_size"`
	PollInterval time.Duration `yaml:"poll_interval"`
	PromoteAge   time.Duration `yaml:"promote_age"`
	TouchWindow  time.Duration `yaml:"touch_window"`
	EvictAge     time.Duration `yaml:"evict_age"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DBPath:         "vectorize.db",
		MaxSize:        200,
		Threads:        runtime.NumCPU(),
		ReportInterval: 10 * time.Second,
		StopTimeout:    10 * time.Second,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Fitness: FitnessConfig{Alpha: 1, Red: 1, Green: 1, Blue: 1},
		Mutation: MutationConfig{
			GeneProbability:      0.95,
			ImportantProbability: 0.75,
			ColorProbability:     0.75,
			MinRepeats:           1,
			MaxRepeats:           2,
			MinGenes:             10,
			MaxGenes:             20,
			MinVertices:          3,
			MaxVertices:          5,
			Retries:              20,
			GeneSelector:         SelectorConfig{Kind: "uniform"},
			GenomeSelector:       SelectorConfig{Kind: "uniform"},
		},
		Cache: CacheConfig{
			QueueSize:    64,
			PollInterval: 500 * time.Millisecond,
			PromoteAge:   5 * time.Second,
			TouchWindow:  time.Second,
			EvictAge:     5 * time.Second,
		},
	}
}

// Load reads a YAML file on top of the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that the values are usable.
func (c *Config) Validate() error {
	var errs []error
	if c.MaxSize < 0 || c.MaxSize > 1<<15-1 {
		errs = append(errs, fmt.Errorf("max_size %d out of range", c.MaxSize))
	}
	if c.Threads < 0 {
		errs = append(errs, errors.New("threads must be >= 0"))
	}
	if c.ReportInterval <= 0 {
		errs = append(errs, errors.New("report_interval must be > 0"))
	}
	if c.StopTimeout <= 0 {
		errs = append(errs, errors.New("stop_timeout must be > 0"))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unsupported log format %q (use text or json)", c.Log.Format))
	}
	if err := c.Fitness.Weights().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("fitness: %w", err))
	}
	for name, s := range map[string]SelectorConfig{
		"gene_selector":   c.Mutation.GeneSelector,
		"genome_selector": c.Mutation.GenomeSelector,
	} {
		if _, err := s.Selector(); err != nil {
			errs = append(errs, fmt.Errorf("mutation.%s: %w", name, err))
		}
	}
	if c.Mutation.Margin < 0 {
		errs = append(errs, errors.New("mutation.margin must be >= 0"))
	} else if c.MaxSize > 0 && c.MaxSize+c.Mutation.Margin > math.MaxInt16 {
		errs = append(errs, fmt.Errorf("mutation.margin %d too large for max_size %d", c.Mutation.Margin, c.MaxSize))
	}
	if c.Mutation.GeneLimit < 0 {
		errs = append(errs, errors.New("mutation.gene_limit must be >= 0"))
	}
	if c.Cache.QueueSize <= 0 {
		errs = append(errs, errors.New("cache.queue_size must be > 0"))
	}
	for name, d := range map[string]time.Duration{
		"poll_interval": c.Cache.PollInterval,
		"promote_age":   c.Cache.PromoteAge,
		"touch_window":  c.Cache.TouchWindow,
		"evict_age":     c.Cache.EvictAge,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("cache.%s must be > 0", name))
		}
	}
	return errors.Join(errs...)
}

// SlogLevel returns the configured log level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", l.Level, err)
	}
	return level, nil
}

// Weights returns the fitness channel weights.
func (f FitnessConfig) Weights() fitness.Weights {
	return fitness.Weights{A: f.Alpha, R: f.Red, G: f.Green, B: f.Blue}
}

// Selector returns the described selector.
func (s SelectorConfig) Selector() (random.Selector, error) {
	switch s.Kind {
	case "", "uniform":
		return random.Uniform{}, nil
	case "gaussian":
		if !(s.StdDev > 0) {
			return nil, fmt.Errorf("gaussian selector needs stddev > 0")
		}
		return random.Gaussian{Mean: s.Mean, StdDev: s.StdDev}, nil
	}
	return nil, fmt.Errorf("unknown selector kind %q", s.Kind)
}

// MutationConfig builds the mutation configuration for a canvas of the
// given size.
func (c *Config) MutationConfig(width, height int) (*mutate.Config, error) {
	m := c.Mutation
	geneSel, err := m.GeneSelector.Selector()
	if err != nil {
		return nil, err
	}
	genomeSel, err := m.GenomeSelector.Selector()
	if err != nil {
		return nil, err
	}

	cons := mutate.All{mutate.Bounds{Width: width, Height: height, Margin: m.Margin}}
	if m.Simple {
		cons = append(cons, mutate.Simple{})
	}
	if m.MinArea > 0 {
		cons = append(cons, mutate.MinArea(m.MinArea))
	}
	if m.GeneLimit > 0 {
		cons = append(cons, mutate.GeneLimit(m.GeneLimit))
	}

	return mutate.NewConfig(width, height,
		mutate.WithProbabilities(m.GeneProbability, m.ImportantProbability, m.ColorProbability),
		mutate.WithRepeats(m.MinRepeats, m.MaxRepeats),
		mutate.WithInitialGenes(m.MinGenes, m.MaxGenes),
		mutate.WithVertices(m.MinVertices, m.MaxVertices),
		mutate.WithRetries(m.Retries),
		mutate.WithSelectors(geneSel, genomeSel),
		mutate.WithConstraints(cons),
	)
}

// CacheOptions returns the polygon cache options.
func (c *Config) CacheOptions(logger *slog.Logger) polycache.Options {
	return polycache.Options{
		QueueSize:    c.Cache.QueueSize,
		PollInterval: c.Cache.PollInterval,
		PromoteAge:   c.Cache.PromoteAge,
		TouchWindow:  c.Cache.TouchWindow,
		EvictAge:     c.Cache.EvictAge,
		StopTimeout:  c.StopTimeout,
		Logger:       logger,
	}
}
