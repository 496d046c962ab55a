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

// Package random provides the reproducible random streams used by the
// evolver, together with helpers which choose indices, ranges and table
// entries.
//
// All stochastic code receives its *rand.Rand explicitly. A stream is
// determined by its seed, so runs can be repeated exactly when only one
// goroutine draws from each stream.
package random

import (
	"math/rand"

	"github.com/seehuhn/mt19937"
)

// New returns a Mersenne-Twister random stream seeded with seed.
// The result is not safe for concurrent use.
func New(seed int64) *rand.Rand {
	src := mt19937.New()
	src.Seed(seed)
	return rand.New(src)
}

// Derive returns the seed of the i-th sub-stream of seed.
// It is used to give every worker its own reproducible stream.
func Derive(seed int64, i int) int64 {
	// splitmix64 finalizer
	z := uint64(seed) + uint64(i+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	return int64(z)
}

// Range returns a uniformly distributed integer in [lo, hi].
func Range(r *rand.Rand, lo, hi int) int {
	if hi < lo {
		panic("random: empty range")
	}
	return lo + r.Intn(hi-lo+1)
}

// Float returns a uniformly distributed float64 in [lo, hi).
func Float(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// Coin returns true with probability p.
func Coin(r *rand.Rand, p float64) bool {
	return r.Float64() < p
}

// Pair returns two distinct uniformly chosen indices in [0, n).
// n must be at least 2.
func Pair(r *rand.Rand, n int) (int, int) {
	i := r.Intn(n)
	j := r.Intn(n - 1)
	if j >= i {
		j++
	}
	return i, j
}
