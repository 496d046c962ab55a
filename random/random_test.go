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
	"testing"
)

func TestSeedReproducible(t *testing.T) {
	a := New(42)
	b := New(42)
	c := New(43)
	same := true
	for range 100 {
		x, y, z := a.Int63(), b.Int63(), c.Int63()
		if x != y {
			t.Fatal("equal seeds gave different streams")
		}
		if x != z {
			same = false
		}
	}
	if same {
		t.Error("different seeds gave the same stream")
	}
}

func TestDerive(t *testing.T) {
	seen := map[int64]bool{}
	for i := range 64 {
		s := Derive(7, i)
		if seen[s] {
			t.Fatalf("Derive(7, %d) repeats an earlier seed", i)
		}
		seen[s] = true
		if s != Derive(7, i) {
			t.Fatal("Derive is not deterministic")
		}
	}
}

func TestRange(t *testing.T) {
	r := New(1)
	hit := map[int]bool{}
	for range 2000 {
		v := Range(r, -10, 10)
		if v < -10 || v > 10 {
			t.Fatalf("Range(-10, 10) = %d", v)
		}
		hit[v] = true
	}
	if len(hit) != 21 {
		t.Errorf("only %d of 21 values seen", len(hit))
	}
}

func TestPair(t *testing.T) {
	r := New(2)
	for range 1000 {
		i, j := Pair(r, 3)
		if i == j || i < 0 || j < 0 || i >= 3 || j >= 3 {
			t.Fatalf("Pair(3) = %d, %d", i, j)
		}
	}
}

func TestSelectors(t *testing.T) {
	r := New(3)
	selectors := map[string]Selector{
		"uniform":  Uniform{},
		"gaussian": Gaussian{Mean: 1, StdDev: 0.25},
	}
	for name, s := range selectors {
		t.Run(name, func(t *testing.T) {
			for _, n := range []int{1, 2, 17} {
				for range 500 {
					i := s.Select(r, n)
					if i < 0 || i >= n {
						t.Fatalf("Select(%d) = %d", n, i)
					}
				}
			}
		})
	}
}

func TestGaussianBias(t *testing.T) {
	r := New(4)
	s := Gaussian{Mean: 1, StdDev: 0.2}
	upper := 0
	const n, trials = 100, 4000
	for range trials {
		if s.Select(r, n) >= n/2 {
			upper++
		}
	}
	if upper < trials*9/10 {
		t.Errorf("only %d of %d samples in the upper half", upper, trials)
	}
}

func TestTable(t *testing.T) {
	r := New(5)
	tab := NewTable([]string{"a", "b", "c"}, []float64{1, 0, 3})
	counts := map[string]int{}
	for range 4000 {
		counts[tab.Pick(r)]++
	}
	if counts["b"] != 0 {
		t.Errorf("zero-weight entry picked %d times", counts["b"])
	}
	if counts["c"] < 2*counts["a"] {
		t.Errorf("weights not respected: %v", counts)
	}
}
