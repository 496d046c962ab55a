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

package polycache

import (
	"context"
	"image"
	"sync"
	"testing"
	"time"

	"seehuhn.de/go/vectorize/genome"
	"seehuhn.de/go/vectorize/render"
)

// clock is a manually advanced time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testGenome(t *testing.T) *genome.Genome {
	t.Helper()
	red := genome.Color{A: 255, R: 255}
	blue := genome.Color{A: 128, B: 255}
	g, err := genome.New(genome.Transparent, []*genome.Gene{
		genome.MustGene([]int{0, 10, 10, 0}, []int{0, 0, 10, 10}, red),
		genome.MustGene([]int{5, 15, 5}, []int{5, 5, 15}, blue),
	})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestProcess(t *testing.T) {
	clk := newClock()
	c := New(20, 20, Options{Now: clk.Now})
	g := testGenome(t)

	c.process([]*genome.Genome{g, g})
	if c.Size() != 2 {
		t.Fatalf("cache holds %d genes, want 2", c.Size())
	}
	if s := c.Stats(); s.Stamped != 2 || s.Temp != 2 || s.Stable != 0 {
		t.Fatalf("stats %+v", s)
	}

	bm, ok := c.Lookup(g.Gene(0))
	if !ok {
		t.Fatal("square not cached")
	}
	if want := image.Rect(0, 0, 10, 10); bm.Rect != want {
		t.Errorf("square stamp covers %v, want %v", bm.Rect, want)
	}
	other := genome.MustGene([]int{0, 1, 1}, []int{0, 0, 1}, genome.Color{A: 1})
	if _, ok := c.Lookup(other); ok {
		t.Error("unknown gene found")
	}
	if s := c.Stats(); s.Hits != 1 || s.Misses != 1 {
		t.Errorf("%d hits, %d misses", s.Hits, s.Misses)
	}
}

func TestPromoteAndEvict(t *testing.T) {
	clk := newClock()
	c := New(20, 20, Options{Now: clk.Now})
	g := testGenome(t)
	used, unused := g.Gene(0), g.Gene(1)
	c.process([]*genome.Genome{g})

	// young entries stay in the temp tier
	clk.Advance(4 * time.Second)
	c.Lookup(used)
	c.age(clk.Now())
	if s := c.Stats(); s.Temp != 2 || s.Stable != 0 {
		t.Fatalf("after 4s: %+v", s)
	}

	// old enough and touched within the last second
	clk.Advance(1500 * time.Millisecond)
	c.Lookup(used)
	clk.Advance(500 * time.Millisecond)
	c.age(clk.Now())
	if _, ok := c.stable.get(used); !ok {
		t.Fatal("used entry not promoted")
	}
	if _, ok := c.temp.get(used); ok {
		t.Fatal("promoted entry still in temp tier")
	}
	// the unused entry has been idle for 6s
	if _, ok := c.temp.get(unused); ok {
		t.Error("idle temp entry not evicted")
	}

	// stable entries survive short idle periods
	clk.Advance(4 * time.Second)
	c.age(clk.Now())
	if _, ok := c.stable.get(used); !ok {
		t.Fatal("stable entry evicted too early")
	}

	clk.Advance(time.Second)
	c.age(clk.Now())
	if c.Size() != 0 {
		t.Errorf("stable entry idle for 5s not evicted, size %d", c.Size())
	}
	if s := c.Stats(); s.Promoted != 1 || s.Evicted != 2 {
		t.Errorf("stats %+v", s)
	}
}

func TestStaleTouchBlocksPromotion(t *testing.T) {
	clk := newClock()
	c := New(20, 20, Options{Now: clk.Now, EvictAge: time.Hour})
	g := testGenome(t)
	c.process([]*genome.Genome{g})

	clk.Advance(10 * time.Second)
	c.age(clk.Now())
	if s := c.Stats(); s.Stable != 0 || s.Temp != 2 {
		t.Errorf("entries without recent use promoted: %+v", s)
	}
}

func TestInsertIfAbsent(t *testing.T) {
	c := New(20, 20, Options{})
	gene := testGenome(t).Gene(0)
	first := &render.Bitmap{Rect: image.Rect(0, 0, 1, 1), Pix: []uint32{1}}
	if !c.put(gene, first, time.Now()) {
		t.Fatal("insert into empty cache failed")
	}
	if c.put(gene, &render.Bitmap{}, time.Now()) {
		t.Error("second insert replaced the entry")
	}
	if bm, _ := c.Lookup(gene); bm != first {
		t.Error("Lookup returned the wrong bitmap")
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New(32, 32, Options{})
	g := testGenome(t)
	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			for range 200 {
				for _, gene := range g.All() {
					if _, ok := c.Lookup(gene); !ok {
						c.put(gene, &render.Bitmap{}, time.Now())
					}
				}
			}
		})
	}
	for range 50 {
		c.process([]*genome.Genome{g})
		c.age(time.Now())
	}
	wg.Wait()
	if c.Size() > 2 {
		t.Errorf("cache holds %d entries for 2 genes", c.Size())
	}
}

func TestStartStop(t *testing.T) {
	c := New(20, 20, Options{PollInterval: 5 * time.Millisecond})
	g := testGenome(t)

	c.Started(g)
	if err := c.Start(context.Background()); err != ErrRunning {
		t.Errorf("second Start: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for c.Size() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("maintenance goroutine did not stamp the genome")
		}
		time.Sleep(time.Millisecond)
	}

	c.Stopped()
	if c.Size() != 0 {
		t.Errorf("%d entries left after Stop", c.Size())
	}
	c.Stop() // no-op

	// the cache can be restarted
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	c.Stop()
}

func TestOfferFull(t *testing.T) {
	c := New(20, 20, Options{QueueSize: 1})
	g := testGenome(t)
	if !c.Offer(g) {
		t.Fatal("first offer rejected")
	}
	if c.Offer(g) {
		t.Error("offer to a full queue accepted")
	}
	if c.Offer(nil) {
		t.Error("nil genome accepted")
	}
	if s := c.Stats(); s.Dropped != 1 {
		t.Errorf("%d dropped", s.Dropped)
	}
}
