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

package vectorize

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"seehuhn.de/go/vectorize/fitness"
	"seehuhn.de/go/vectorize/genome"
	"seehuhn.de/go/vectorize/polycache"
)

// Lifecycle errors.
var (
	ErrNotStopped = errors.New("vectorizer is not stopped")
	ErrNotReady   = errors.New("vectorizer is not fully configured")
)

// State is the lifecycle state of a [Vectorizer].
type State int32

// These are the lifecycle states.
const (
	Stopped State = iota
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// GenomeFactory creates the initial genome when there is no best genome
// yet.
type GenomeFactory interface {
	NewGenome(r *rand.Rand) *genome.Genome
}

// MutationStrategy derives a new candidate from the current best genome.
// It must not modify g, and may return g itself if it cannot change it.
type MutationStrategy interface {
	Mutate(r *rand.Rand, g *genome.Genome) *genome.Genome
}

// GenomeStore persists accepted genomes.
type GenomeStore interface {
	InsertGenome(ctx context.Context, improvements uint32, fitness float64, data []byte) error
}

// Counters are the run statistics of a vectorizer.
type Counters struct {
	Generated    uint32 // candidates produced by the workers
	Mutations    uint32 // candidates submitted
	Improvements uint32 // candidates accepted
}

const (
	defaultStopTimeout = 10 * time.Second
	storageQueueSize   = 256
)

// Vectorizer evolves a genome towards a target image.
//
// Collaborators are configured while the vectorizer is stopped. Start
// launches the workers, the storage goroutine and the polygon cache; Stop
// ends them. Submit, Best, Counters, TickRate and CacheSize can be called
// at any time from any goroutine.
type Vectorizer struct {
	mu          sync.Mutex // serializes configuration and state changes
	state       atomic.Int32
	session     *Session
	factory     GenomeFactory
	strategy    MutationStrategy
	store       GenomeStore
	fitness     *fitness.Function
	cacheOpts   polycache.Options
	listeners   []Listener
	stopTimeout time.Duration

	// submitMu guards best-genome transitions, and the fields below which
	// are swapped by Start and Stop.
	submitMu   sync.Mutex
	active     []Listener
	storeQueue chan *genome.Genome

	best         atomic.Pointer[genome.Genome]
	cache        atomic.Pointer[polycache.Cache]
	generated    atomic.Uint32
	mutations    atomic.Uint32
	improvements atomic.Uint32
	ticks        tickMeter

	cancel      context.CancelFunc
	workers     sync.WaitGroup
	storageDone chan struct{}
}

// New returns a stopped vectorizer without collaborators.
func New() *Vectorizer {
	return &Vectorizer{
		cacheOpts:   polycache.DefaultOptions(),
		stopTimeout: defaultStopTimeout,
	}
}

// State returns the current lifecycle state.
func (v *Vectorizer) State() State {
	return State(v.state.Load())
}

// configure runs set if the vectorizer is stopped.
func (v *Vectorizer) configure(set func()) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.State() != Stopped {
		return ErrNotStopped
	}
	set()
	return nil
}

// SetSession sets the target image and run parameters.
func (v *Vectorizer) SetSession(s *Session) error {
	return v.configure(func() { v.session = s })
}

// SetGenomeFactory sets the source of the initial genome.
func (v *Vectorizer) SetGenomeFactory(f GenomeFactory) error {
	return v.configure(func() { v.factory = f })
}

// SetMutationStrategy sets how candidates are derived from the best
// genome.
func (v *Vectorizer) SetMutationStrategy(s MutationStrategy) error {
	return v.configure(func() { v.strategy = s })
}

// SetStore sets where accepted genomes are persisted. A nil store
// disables persistence.
func (v *Vectorizer) SetStore(s GenomeStore) error {
	return v.configure(func() { v.store = s })
}

// SetFitness sets the fitness function. By default all channels have the
// same weight.
func (v *Vectorizer) SetFitness(f *fitness.Function) error {
	return v.configure(func() { v.fitness = f })
}

// SetCacheOptions sets the options of the polygon cache created by Start.
func (v *Vectorizer) SetCacheOptions(opts polycache.Options) error {
	return v.configure(func() { v.cacheOpts = opts })
}

// SetStopTimeout bounds each wait in Stop.
func (v *Vectorizer) SetStopTimeout(d time.Duration) error {
	return v.configure(func() { v.stopTimeout = d })
}

// AddListener registers l for lifecycle notifications.
func (v *Vectorizer) AddListener(l Listener) error {
	return v.configure(func() { v.listeners = append(v.listeners, l) })
}

// Restore installs g as the best genome, for example to resume a stored
// run. The run counters continue from those stored in g.
func (v *Vectorizer) Restore(g *genome.Genome) error {
	return v.configure(func() {
		v.submitMu.Lock()
		defer v.submitMu.Unlock()
		v.best.Store(g)
		if g != nil {
			v.improvements.Store(g.Improvements)
			v.generated.Store(g.Generated)
			v.mutations.Store(g.Mutations)
		}
	})
}

// Start launches the polygon cache, the storage goroutine and the
// workers.
func (v *Vectorizer) Start() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.State() != Stopped {
		return ErrNotStopped
	}
	if v.session == nil || v.factory == nil || v.strategy == nil {
		return ErrNotReady
	}
	s := v.session
	fit := v.fitness
	if fit == nil {
		fit = fitness.Default()
	}
	log := Logger()

	v.ticks.Reset(time.Now())

	cacheOpts := v.cacheOpts
	if cacheOpts.Logger == nil {
		cacheOpts.Logger = log.With("component", "polycache")
	}
	cache := polycache.New(s.Width, s.Height, cacheOpts)
	v.cache.Store(cache)

	var queue chan *genome.Genome
	if v.store != nil {
		queue = make(chan *genome.Genome, storageQueueSize)
	}
	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel

	listeners := append([]Listener{cache}, v.listeners...)
	v.submitMu.Lock()
	v.active = listeners
	v.storeQueue = queue
	v.submitMu.Unlock()

	v.state.Store(int32(Running))
	best := v.best.Load()
	for _, l := range listeners {
		l.Started(best)
	}

	if queue != nil {
		v.storageDone = make(chan struct{})
		go storeLoop(ctx, v.store, queue, v.stopTimeout, v.storageDone)
	}
	for i := range s.Threads {
		v.workers.Add(1)
		w := newWorker(v, i, cache, fit)
		go func() {
			defer v.workers.Done()
			w.run(ctx)
		}()
	}

	log.Info("vectorizer started",
		"threads", s.Threads,
		"seed", s.Seed,
		"size", fmt.Sprintf("%dx%d", s.Width, s.Height),
		"resumed", best != nil)
	return nil
}

// Stop ends all goroutines started by Start. It waits a bounded time for
// each group to finish, and logs if they do not. Stop is a no-op unless
// the vectorizer is running.
func (v *Vectorizer) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.state.CompareAndSwap(int32(Running), int32(Stopping)) {
		return
	}
	log := Logger()
	log.Info("vectorizer stopping")

	v.submitMu.Lock()
	listeners := v.active
	v.submitMu.Unlock()
	for _, l := range listeners {
		l.Stopping()
	}

	v.cancel()
	if !waitTimeout(v.workers.Wait, v.stopTimeout) {
		log.Warn("workers did not stop in time", "timeout", v.stopTimeout)
	}
	if v.storageDone != nil {
		done := v.storageDone
		if !waitTimeout(func() { <-done }, v.stopTimeout) {
			log.Warn("storage did not finish in time", "timeout", v.stopTimeout)
		}
	}

	for _, l := range listeners {
		l.Stopped()
	}

	v.submitMu.Lock()
	v.active = nil
	v.storeQueue = nil
	v.submitMu.Unlock()
	v.cache.Store(nil)
	v.cancel = nil
	v.storageDone = nil

	v.state.Store(int32(Stopped))
	c := v.Counters()
	log.Info("vectorizer stopped",
		"generated", c.Generated,
		"mutations", c.Mutations,
		"improvements", c.Improvements)
}

func waitTimeout(wait func(), d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wait()
		close(done)
	}()
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-done:
		return true
	case <-t.C:
		return false
	}
}

// Submit offers candidate as the new best genome and returns the best
// genome after the decision.
//
// A nil candidate, or the current best itself, leaves everything
// unchanged; Submit(nil) is the way to read the best genome through the
// submission lock. Any other candidate counts as a mutation. It is
// accepted if there is no best genome yet or if its fitness is strictly
// better. An accepted candidate is stamped with the run counters, queued
// for storage and announced to the listeners.
func (v *Vectorizer) Submit(candidate *genome.Genome) *genome.Genome {
	v.submitMu.Lock()
	defer v.submitMu.Unlock()

	best := v.best.Load()
	if candidate == nil || candidate == best {
		return best
	}
	mutations := v.mutations.Add(1)
	if best != nil && !fitness.IsImprovement(best.Fitness, candidate.Fitness) {
		return best
	}

	candidate.Improvements = v.improvements.Add(1)
	candidate.Mutations = mutations
	candidate.Generated = v.generated.Load()
	v.best.Store(candidate)

	if v.storeQueue != nil {
		select {
		case v.storeQueue <- candidate:
		default:
			Logger().Warn("storage queue full, genome not stored",
				"improvements", candidate.Improvements)
		}
	}
	for _, l := range v.active {
		l.Improvement(candidate)
	}
	return candidate
}

// Best returns the best genome found so far, or nil.
// The result must not be modified.
func (v *Vectorizer) Best() *genome.Genome {
	return v.best.Load()
}

// Counters returns the current run counters.
func (v *Vectorizer) Counters() Counters {
	return Counters{
		Generated:    v.generated.Load(),
		Mutations:    v.mutations.Load(),
		Improvements: v.improvements.Load(),
	}
}

// TickRate returns the average number of worker iterations per second
// since the last start.
func (v *Vectorizer) TickRate() float64 {
	return v.ticks.Rate(time.Now())
}

// CacheSize returns the number of genes in the polygon cache, or 0 if the
// vectorizer is not running.
func (v *Vectorizer) CacheSize() int {
	if c := v.cache.Load(); c != nil {
		return c.Size()
	}
	return 0
}

// CacheStats returns the polygon cache statistics, if the cache exists.
func (v *Vectorizer) CacheStats() (polycache.Stats, bool) {
	if c := v.cache.Load(); c != nil {
		return c.Stats(), true
	}
	return polycache.Stats{}, false
}
