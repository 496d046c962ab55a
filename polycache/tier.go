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
	"sync"
	"sync/atomic"
	"time"

	"seehuhn.de/go/vectorize/genome"
	"seehuhn.de/go/vectorize/render"
)

// numShards must be a power of two.
const (
	numShards = 16
	shardMask = numShards - 1
)

// Entry is a cached gene stamp.
//
// Bitmap and Created are set once when the entry is made. Only the touch
// time changes afterwards.
type Entry struct {
	Bitmap  *render.Bitmap
	Created time.Time
	touched atomic.Int64 // unix nanoseconds
}

func newEntry(bm *render.Bitmap, now time.Time) *Entry {
	e := &Entry{Bitmap: bm, Created: now}
	e.touched.Store(now.UnixNano())
	return e
}

// Touched returns the time of the last lookup.
func (e *Entry) Touched() time.Time {
	return time.Unix(0, e.touched.Load())
}

func (e *Entry) touch(now time.Time) {
	e.touched.Store(now.UnixNano())
}

// tier is a sharded concurrent map from gene identity to entries.
type tier struct {
	shards [numShards]shard
	size   atomic.Int64
}

type shard struct {
	mu      sync.RWMutex
	entries map[*genome.Gene]*Entry
}

func newTier() *tier {
	t := &tier{}
	for i := range t.shards {
		t.shards[i].entries = make(map[*genome.Gene]*Entry)
	}
	return t
}

func (t *tier) shard(g *genome.Gene) *shard {
	return &t.shards[g.Hash()&shardMask]
}

func (t *tier) get(g *genome.Gene) (*Entry, bool) {
	s := t.shard(g)
	s.mu.RLock()
	e, ok := s.entries[g]
	s.mu.RUnlock()
	return e, ok
}

// putIfAbsent stores e unless g already has an entry. It returns the entry
// now in the tier and whether e was stored.
func (t *tier) putIfAbsent(g *genome.Gene, e *Entry) (*Entry, bool) {
	s := t.shard(g)
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.entries[g]; ok {
		return old, false
	}
	s.entries[g] = e
	t.size.Add(1)
	return e, true
}

func (t *tier) delete(g *genome.Gene) {
	s := t.shard(g)
	s.mu.Lock()
	if _, ok := s.entries[g]; ok {
		delete(s.entries, g)
		t.size.Add(-1)
	}
	s.mu.Unlock()
}

// collect returns the genes whose entries satisfy pred.
// Each shard is read-locked while it is scanned.
func (t *tier) collect(pred func(*Entry) bool) []*genome.Gene {
	var res []*genome.Gene
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.RLock()
		for g, e := range s.entries {
			if pred(e) {
				res = append(res, g)
			}
		}
		s.mu.RUnlock()
	}
	return res
}

func (t *tier) len() int {
	return int(t.size.Load())
}

func (t *tier) clear() {
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.Lock()
		t.size.Add(-int64(len(s.entries)))
		clear(s.entries)
		s.mu.Unlock()
	}
}
