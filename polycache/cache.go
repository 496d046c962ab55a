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

// Package polycache keeps rasterized gene stamps so that workers do not
// need to rasterize every polygon of every candidate.
//
// Entries live in two tiers. New stamps go to the temp tier. A temp entry
// which is old enough and still in use moves to the stable tier, and
// stable entries which are no longer used are evicted. All tier changes
// are made by a single maintenance goroutine, while any number of
// goroutines may look up entries concurrently.
package polycache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"seehuhn.de/go/vectorize/genome"
	"seehuhn.de/go/vectorize/render"
)

// ErrRunning is returned by Start if the maintenance goroutine is
// already running.
var ErrRunning = errors.New("polygon cache already running")

// Options configure a Cache. The zero value selects the defaults.
type Options struct {
	// QueueSize is the number of genomes which can wait for processing.
	QueueSize int

	// PollInterval is how long the maintenance goroutine waits for queued
	// genomes before it ages the tiers anyway.
	PollInterval time.Duration

	// PromoteAge is the minimum age of a temp entry before it can move to
	// the stable tier.
	PromoteAge time.Duration

	// TouchWindow is how recently a temp entry must have been used to be
	// promoted.
	TouchWindow time.Duration

	// EvictAge is how long an entry may go unused before it is removed.
	EvictAge time.Duration

	// StopTimeout bounds the wait for the maintenance goroutine in Stop.
	StopTimeout time.Duration

	Logger *slog.Logger

	// Now returns the current time. It is replaced in tests.
	Now func() time.Time
}

// DefaultOptions returns the default cache options.
func DefaultOptions() Options {
	return Options{
		QueueSize:    64,
		PollInterval: 500 * time.Millisecond,
		PromoteAge:   5 * time.Second,
		TouchWindow:  time.Second,
		EvictAge:     5 * time.Second,
		StopTimeout:  5 * time.Second,
	}
}

func (o *Options) fillDefaults() {
	def := DefaultOptions()
	if o.QueueSize <= 0 {
		o.QueueSize = def.QueueSize
	}
	if o.PollInterval <= 0 {
		o.PollInterval = def.PollInterval
	}
	if o.PromoteAge <= 0 {
		o.PromoteAge = def.PromoteAge
	}
	if o.TouchWindow <= 0 {
		o.TouchWindow = def.TouchWindow
	}
	if o.EvictAge <= 0 {
		o.EvictAge = def.EvictAge
	}
	if o.StopTimeout <= 0 {
		o.StopTimeout = def.StopTimeout
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Stats describe the cache activity since it was created.
type Stats struct {
	Hits, Misses uint64 // lookups
	Stamped      uint64 // genes rasterized by the maintenance goroutine
	Promoted     uint64
	Evicted      uint64
	Dropped      uint64 // genomes not queued because the queue was full
	Temp, Stable int    // current tier sizes
}

// Cache is a concurrent two-tier store of gene stamps.
type Cache struct {
	opts     Options
	log      *slog.Logger
	renderer *render.Renderer // only used by the maintenance goroutine

	temp, stable *tier
	queue        chan *genome.Genome

	hits, misses      atomic.Uint64
	stamped, promoted atomic.Uint64
	evicted, dropped  atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New returns an idle cache for genes painted on a width x height canvas.
func New(width, height int, opts Options) *Cache {
	opts.fillDefaults()
	return &Cache{
		opts:     opts,
		log:      opts.Logger,
		renderer: render.New(width, height),
		temp:     newTier(),
		stable:   newTier(),
		queue:    make(chan *genome.Genome, opts.QueueSize),
	}
}

// Offer queues g for processing by the maintenance goroutine.
// It never blocks; if the queue is full, g is dropped and Offer returns
// false.
func (c *Cache) Offer(g *genome.Genome) bool {
	if g == nil {
		return false
	}
	select {
	case c.queue <- g:
		return true
	default:
		c.dropped.Add(1)
		return false
	}
}

// Lookup returns the stamp of gene, if it is cached, and marks the entry
// as used. It implements [render.BitmapSource].
func (c *Cache) Lookup(gene *genome.Gene) (*render.Bitmap, bool) {
	e, ok := c.get(gene)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	e.touch(c.opts.Now())
	return e.Bitmap, true
}

func (c *Cache) get(gene *genome.Gene) (*Entry, bool) {
	if e, ok := c.temp.get(gene); ok {
		return e, true
	}
	return c.stable.get(gene)
}

// put adds a stamp for gene to the temp tier, unless the gene is already
// cached. Only the maintenance goroutine inserts; workers paint misses
// themselves.
func (c *Cache) put(gene *genome.Gene, bm *render.Bitmap, now time.Time) bool {
	if _, ok := c.stable.get(gene); ok {
		return false
	}
	_, stored := c.temp.putIfAbsent(gene, newEntry(bm, now))
	return stored
}

// Size returns the number of cached genes.
func (c *Cache) Size() int {
	return c.temp.len() + c.stable.len()
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Stamped:  c.stamped.Load(),
		Promoted: c.promoted.Load(),
		Evicted:  c.evicted.Load(),
		Dropped:  c.dropped.Load(),
		Temp:     c.temp.len(),
		Stable:   c.stable.len(),
	}
}

// Start launches the maintenance goroutine. It runs until ctx is
// cancelled or Stop is called.
func (c *Cache) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return ErrRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done
	go c.run(ctx, done)
	return nil
}

// Stop ends the maintenance goroutine, waiting at most
// Options.StopTimeout for it, and then empties both tiers and the queue.
// Stop is a no-op if the cache is not running.
func (c *Cache) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()
	if cancel == nil {
		return
	}

	cancel()
	select {
	case <-done:
	case <-time.After(c.opts.StopTimeout):
		c.log.Warn("polygon cache did not stop in time", "timeout", c.opts.StopTimeout)
	}

	c.temp.clear()
	c.stable.clear()
	c.drain(nil)
	c.log.Debug("polygon cache stopped")
}

func (c *Cache) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	c.log.Debug("polygon cache started", "poll", c.opts.PollInterval)

	timer := time.NewTimer(c.opts.PollInterval)
	defer timer.Stop()
	for {
		var batch []*genome.Genome
		select {
		case <-ctx.Done():
			return
		case g := <-c.queue:
			batch = c.drain(append(batch, g))
		case <-timer.C:
		}
		timer.Reset(c.opts.PollInterval)

		c.process(batch)
		c.age(c.opts.Now())
	}
}

// drain appends all currently queued genomes to batch.
func (c *Cache) drain(batch []*genome.Genome) []*genome.Genome {
	for {
		select {
		case g := <-c.queue:
			batch = append(batch, g)
		default:
			return batch
		}
	}
}

// process stamps all genes of the batch which are not cached yet, and
// touches those which are.
func (c *Cache) process(batch []*genome.Genome) {
	now := c.opts.Now()
	for _, g := range batch {
		for _, gene := range g.All() {
			if e, ok := c.get(gene); ok {
				e.touch(now)
				continue
			}
			if c.put(gene, c.renderer.Stamp(gene), now) {
				c.stamped.Add(1)
			}
		}
	}
}

// age promotes and evicts entries. Only the maintenance goroutine moves
// entries between tiers.
func (c *Cache) age(now time.Time) {
	o := &c.opts
	idle := func(e *Entry) time.Duration { return now.Sub(e.Touched()) }

	promote := c.temp.collect(func(e *Entry) bool {
		return now.Sub(e.Created) >= o.PromoteAge && idle(e) <= o.TouchWindow
	})
	for _, gene := range promote {
		if e, ok := c.temp.get(gene); ok {
			c.stable.putIfAbsent(gene, e)
			c.temp.delete(gene)
		}
	}

	evictStable := c.stable.collect(func(e *Entry) bool {
		return idle(e) >= o.EvictAge
	})
	for _, gene := range evictStable {
		c.stable.delete(gene)
	}

	// temp entries which were never used again
	evictTemp := c.temp.collect(func(e *Entry) bool {
		return idle(e) >= o.EvictAge
	})
	for _, gene := range evictTemp {
		c.temp.delete(gene)
	}

	c.promoted.Add(uint64(len(promote)))
	evicted := len(evictStable) + len(evictTemp)
	c.evicted.Add(uint64(evicted))
	if len(promote) > 0 || evicted > 0 {
		c.log.Debug("polygon cache aged",
			"promoted", len(promote),
			"evicted", evicted,
			"temp", c.temp.len(),
			"stable", c.stable.len())
	}
}

// Started starts the maintenance goroutine and queues the initial best
// genome, if any.
func (c *Cache) Started(best *genome.Genome) {
	if err := c.Start(context.Background()); err != nil {
		c.log.Warn("polygon cache not started", "error", err)
	}
	c.Offer(best)
}

// Improvement queues the new best genome.
func (c *Cache) Improvement(best *genome.Genome) {
	c.Offer(best)
}

// Stopping does nothing. The cache keeps serving lookups until the
// workers are gone.
func (c *Cache) Stopping() {}

// Stopped stops the maintenance goroutine and empties the cache.
func (c *Cache) Stopped() {
	c.Stop()
}
