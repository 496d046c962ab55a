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
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"seehuhn.de/go/vectorize/genome"
	"seehuhn.de/go/vectorize/mutate"
)

type memStore struct {
	mu      sync.Mutex
	fitness []float64
	data    [][]byte
	fail    bool
}

func (s *memStore) InsertGenome(_ context.Context, _ uint32, fitness float64, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("disk full")
	}
	s.fitness = append(s.fitness, fitness)
	s.data = append(s.data, data)
	return nil
}

func (s *memStore) stored() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float64(nil), s.fitness...)
}

func testSession(t *testing.T, threads int) *Session {
	t.Helper()
	const w, h = 16, 12
	target := make([]uint32, w*h)
	for i := range target {
		if i%w < w/2 {
			target[i] = 0xff2060a0
		} else {
			target[i] = 0xffe0c020
		}
	}
	s, err := NewSession(w, h, target, nil, threads, 1)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func newTestVectorizer(t *testing.T, threads int) *Vectorizer {
	t.Helper()
	s := testSession(t, threads)
	cfg := mutate.DefaultConfig(s.Width, s.Height)
	v := New()
	for _, err := range []error{
		v.SetSession(s),
		v.SetGenomeFactory(mutate.NewFactory(cfg)),
		v.SetMutationStrategy(mutate.NewStrategy(cfg)),
		v.SetStopTimeout(5 * time.Second),
	} {
		if err != nil {
			t.Fatal(err)
		}
	}
	return v
}

func scored(t *testing.T, fitness float64) *genome.Genome {
	t.Helper()
	gene := genome.MustGene([]int{0, 4, 0}, []int{0, 0, 4}, genome.Color{A: 255})
	g, err := genome.New(genome.Transparent, []*genome.Gene{gene})
	if err != nil {
		t.Fatal(err)
	}
	g.Fitness = fitness
	return g
}

func TestLifecycle(t *testing.T) {
	v := New()
	if err := v.Start(); err != ErrNotReady {
		t.Fatalf("Start without collaborators: %v", err)
	}
	v.Stop() // no-op while stopped

	v = newTestVectorizer(t, 0)
	if err := v.Start(); err != nil {
		t.Fatal(err)
	}
	if v.State() != Running {
		t.Fatalf("state %s", v.State())
	}
	if err := v.Start(); err != ErrNotStopped {
		t.Errorf("double start: %v", err)
	}
	if err := v.SetSession(testSession(t, 1)); err != ErrNotStopped {
		t.Errorf("SetSession while running: %v", err)
	}
	if err := v.AddListener(ListenerFuncs{}); err != ErrNotStopped {
		t.Errorf("AddListener while running: %v", err)
	}
	if err := v.Restore(nil); err != ErrNotStopped {
		t.Errorf("Restore while running: %v", err)
	}
	v.Stop()
	if v.State() != Stopped {
		t.Fatalf("state after Stop: %s", v.State())
	}
	v.Stop()

	// a stopped vectorizer can be started again
	if err := v.Start(); err != nil {
		t.Fatal(err)
	}
	v.Stop()
}

func TestFirstSubmission(t *testing.T) {
	v := newTestVectorizer(t, 0)
	var started, improvements, stopping, stopped atomic.Int32
	err := v.AddListener(ListenerFuncs{
		OnStarted: func(best *genome.Genome) {
			if best != nil {
				t.Error("fresh vectorizer started with a best genome")
			}
			started.Add(1)
		},
		OnImprovement: func(*genome.Genome) { improvements.Add(1) },
		OnStopping:    func() { stopping.Add(1) },
		OnStopped:     func() { stopped.Add(1) },
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := v.Start(); err != nil {
		t.Fatal(err)
	}

	if best := v.Submit(nil); best != nil {
		t.Fatalf("Submit(nil) on a fresh vectorizer: %v", best)
	}

	a := scored(t, 42)
	if best := v.Submit(a); best != a {
		t.Fatal("first genome not accepted")
	}
	if n := improvements.Load(); n != 1 {
		t.Errorf("%d improvement notifications, want 1", n)
	}
	if a.Improvements != 1 || a.Mutations != 1 {
		t.Errorf("counters not stamped: %d improvements, %d mutations", a.Improvements, a.Mutations)
	}

	// resubmitting the best genome changes nothing
	v.Submit(a)
	if n := improvements.Load(); n != 1 {
		t.Errorf("%d improvement notifications after resubmission", n)
	}
	if c := v.Counters(); c.Mutations != 1 || c.Improvements != 1 {
		t.Errorf("counters %+v", c)
	}

	// equal fitness is not an improvement
	if best := v.Submit(scored(t, 42)); best != a {
		t.Error("genome with equal fitness accepted")
	}
	if c := v.Counters(); c.Mutations != 2 || c.Improvements != 1 {
		t.Errorf("counters %+v", c)
	}

	v.Stop()
	if started.Load() != 1 || stopping.Load() != 1 || stopped.Load() != 1 {
		t.Errorf("lifecycle notifications: %d started, %d stopping, %d stopped",
			started.Load(), stopping.Load(), stopped.Load())
	}
}

func TestConcurrentSubmit(t *testing.T) {
	for range 100 {
		v := newTestVectorizer(t, 0)
		var notified atomic.Int32
		v.AddListener(ListenerFuncs{
			OnImprovement: func(*genome.Genome) { notified.Add(1) },
		})
		v.Submit(scored(t, 10))

		var wg sync.WaitGroup
		for _, f := range []float64{5, 3} {
			g := scored(t, f)
			wg.Go(func() { v.Submit(g) })
		}
		wg.Wait()

		if f := v.Best().Fitness; f != 3 {
			t.Fatalf("final best %g, want 3", f)
		}
		c := v.Counters()
		if c.Improvements != uint32(notified.Load()) {
			t.Fatalf("%d improvements but %d notifications", c.Improvements, notified.Load())
		}
		if c.Improvements < 2 || c.Improvements > 3 || c.Mutations != 3 {
			t.Fatalf("counters %+v", c)
		}
	}
}

func TestRun(t *testing.T) {
	v := newTestVectorizer(t, 4)
	store := &memStore{}
	if err := v.SetStore(store); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var seen []float64
	v.AddListener(ListenerFuncs{
		OnImprovement: func(best *genome.Genome) {
			mu.Lock()
			seen = append(seen, best.Fitness)
			mu.Unlock()
		},
	})

	if err := v.Start(); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(20 * time.Second)
	for v.Counters().Improvements < 5 {
		if time.Now().After(deadline) {
			t.Fatal("no progress")
		}
		time.Sleep(5 * time.Millisecond)
	}
	v.Stop()

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(seen); i++ {
		if !(seen[i] < seen[i-1]) {
			t.Fatalf("improvement %d: fitness %g after %g", i, seen[i], seen[i-1])
		}
	}

	stored := store.stored()
	if len(stored) == 0 || len(stored) > len(seen) {
		t.Fatalf("%d genomes stored for %d improvements", len(stored), len(seen))
	}
	for i := 1; i < len(stored); i++ {
		if !(stored[i] < stored[i-1]) {
			t.Fatalf("stored genome %d has fitness %g after %g", i, stored[i], stored[i-1])
		}
	}
	last, err := genome.UnmarshalGenome(store.data[len(store.data)-1])
	if err != nil {
		t.Fatal(err)
	}
	if last.Fitness != stored[len(stored)-1] {
		t.Errorf("stored genome has fitness %g, recorded %g", last.Fitness, stored[len(stored)-1])
	}

	c := v.Counters()
	if c.Generated < c.Mutations || c.Mutations < c.Improvements {
		t.Errorf("inconsistent counters %+v", c)
	}
	if v.CacheSize() != 0 {
		t.Errorf("cache not released after Stop")
	}
}

// flakyStrategy panics on every other call.
type flakyStrategy struct {
	inner MutationStrategy
	calls atomic.Int64
}

func (s *flakyStrategy) Mutate(r *rand.Rand, g *genome.Genome) *genome.Genome {
	if s.calls.Add(1)%2 == 0 {
		panic("mutation failed")
	}
	return s.inner.Mutate(r, g)
}

// stuckStrategy blocks every call until release is closed.
type stuckStrategy struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *stuckStrategy) Mutate(r *rand.Rand, g *genome.Genome) *genome.Genome {
	s.once.Do(func() { close(s.entered) })
	<-s.release
	return g
}

func TestStopTimeout(t *testing.T) {
	v := newTestVectorizer(t, 1)
	stuck := &stuckStrategy{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	defer close(stuck.release)
	for _, err := range []error{
		v.SetMutationStrategy(stuck),
		v.SetStopTimeout(50 * time.Millisecond),
		v.Restore(scored(t, 1000)),
	} {
		if err != nil {
			t.Fatal(err)
		}
	}

	if err := v.Start(); err != nil {
		t.Fatal(err)
	}
	select {
	case <-stuck.entered:
	case <-time.After(10 * time.Second):
		t.Fatal("worker never called the strategy")
	}

	start := time.Now()
	v.Stop()
	if d := time.Since(start); d > 5*time.Second {
		t.Errorf("Stop took %v", d)
	}
	if v.State() != Stopped {
		t.Errorf("state %v after Stop", v.State())
	}
}

func TestWorkerPanics(t *testing.T) {
	v := newTestVectorizer(t, 2)
	cfg := mutate.DefaultConfig(16, 12)
	flaky := &flakyStrategy{inner: mutate.NewStrategy(cfg)}
	if err := v.SetMutationStrategy(flaky); err != nil {
		t.Fatal(err)
	}
	store := &memStore{fail: true}
	v.SetStore(store)

	if err := v.Start(); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(20 * time.Second)
	for flaky.calls.Load() < 100 || v.Counters().Improvements < 2 {
		if time.Now().After(deadline) {
			t.Fatal("workers stopped making progress")
		}
		time.Sleep(5 * time.Millisecond)
	}
	v.Stop()
	if v.Best() == nil {
		t.Error("best genome lost after storage failures")
	}
}

func TestRestore(t *testing.T) {
	v := newTestVectorizer(t, 0)
	g := scored(t, 7)
	g.Improvements, g.Generated, g.Mutations = 3, 40, 20
	if err := v.Restore(g); err != nil {
		t.Fatal(err)
	}
	var startedWith *genome.Genome
	v.AddListener(ListenerFuncs{OnStarted: func(best *genome.Genome) { startedWith = best }})
	if err := v.Start(); err != nil {
		t.Fatal(err)
	}
	defer v.Stop()
	if startedWith != g {
		t.Error("Started did not receive the restored genome")
	}
	if c := v.Counters(); c != (Counters{Generated: 40, Mutations: 20, Improvements: 3}) {
		t.Errorf("counters %+v", c)
	}
	next := scored(t, 6)
	v.Submit(next)
	if next.Improvements != 4 || next.Mutations != 21 {
		t.Errorf("counters not continued: %d, %d", next.Improvements, next.Mutations)
	}
}

func TestNewSession(t *testing.T) {
	target := make([]uint32, 6)
	if _, err := NewSession(3, 2, target[:5], nil, 1, 0); err == nil {
		t.Error("short target accepted")
	}
	if _, err := NewSession(3, 2, target, make([]uint8, 5), 1, 0); err == nil {
		t.Error("short importance map accepted")
	}
	if _, err := NewSession(3, 2, target, nil, -1, 0); err == nil {
		t.Error("negative thread count accepted")
	}
	s, err := NewSession(3, 2, target, nil, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range s.Importance {
		if v != 255 {
			t.Fatalf("default importance %d", v)
		}
	}
}

func TestTickMeter(t *testing.T) {
	var m tickMeter
	if m.Rate(time.Now()) != 0 {
		t.Error("rate before reset")
	}
	start := time.Unix(1000, 0)
	m.Reset(start)
	for range 50 {
		m.Tick()
	}
	if r := m.Rate(start.Add(2 * time.Second)); r != 25 {
		t.Errorf("rate %g, want 25", r)
	}
}
