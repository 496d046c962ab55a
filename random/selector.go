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

package random

import (
	"math"
	"math/rand"
)

// Selector chooses an index in [0, n). n is always positive.
type Selector interface {
	Select(r *rand.Rand, n int) int
}

// Uniform selects every index with the same probability.
type Uniform struct{}

// Select implements [Selector].
func (Uniform) Select(r *rand.Rand, n int) int {
	return r.Intn(n)
}

// Gaussian prefers indices near a relative position.
//
// Mean is the preferred position as a fraction of the index range: 0 is the
// first index, 1 the last. StdDev is the spread in the same unit. Samples
// outside the range are clamped to the nearest end.
type Gaussian struct {
	Mean   float64
	StdDev float64
}

// Select implements [Selector].
func (s Gaussian) Select(r *rand.Rand, n int) int {
	if n == 1 {
		return 0
	}
	pos := (s.Mean + s.StdDev*r.NormFloat64()) * float64(n-1)
	i := int(math.Round(pos))
	return min(max(i, 0), n-1)
}

// Table is a weighted choice between a fixed set of values.
// A Table is immutable and can be shared between goroutines.
type Table[T any] struct {
	items []T
	cum   []float64
}

// NewTable returns a table which picks items[i] with probability
// proportional to weights[i]. If weights is nil, all items are equally
// likely. Negative weights count as zero.
func NewTable[T any](items []T, weights []float64) *Table[T] {
	if len(items) == 0 {
		panic("random: empty table")
	}
	if weights != nil && len(weights) != len(items) {
		panic("random: table weights do not match items")
	}
	t := &Table[T]{
		items: append([]T(nil), items...),
		cum:   make([]float64, len(items)),
	}
	total := 0.0
	for i := range items {
		w := 1.0
		if weights != nil {
			w = max(weights[i], 0)
		}
		total += w
		t.cum[i] = total
	}
	if total <= 0 {
		panic("random: table weights sum to zero")
	}
	return t
}

// Pick returns a random table entry.
func (t *Table[T]) Pick(r *rand.Rand) T {
	x := r.Float64() * t.cum[len(t.cum)-1]
	lo, hi := 0, len(t.cum)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if t.cum[mid] > x {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return t.items[lo]
}

// Items returns a copy of the table entries.
func (t *Table[T]) Items() []T {
	return append([]T(nil), t.items...)
}

// Len returns the number of entries.
func (t *Table[T]) Len() int {
	return len(t.items)
}
