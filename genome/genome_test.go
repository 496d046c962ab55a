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

package genome

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"testing"
)

func square(x, y, size int, c Color) *Gene {
	return MustGene(
		[]int{x, x + size, x + size, x},
		[]int{y, y, y + size, y + size},
		c)
}

func randomGene(r *rand.Rand) *Gene {
	n := MinVertices + r.Intn(6)
	xs := make([]int, n)
	ys := make([]int, n)
	for i := range n {
		xs[i] = r.Intn(1<<16) - 1<<15
		ys[i] = r.Intn(1<<16) - 1<<15
	}
	c := Unpack(r.Uint32())
	return MustGene(xs, ys, c)
}

func TestNewGeneValidation(t *testing.T) {
	red := Color{A: 255, R: 255}
	cases := []struct {
		name   string
		xs, ys []int
	}{
		{"too_few", []int{0, 1}, []int{0, 1}},
		{"mismatched", []int{0, 1, 2}, []int{0, 1}},
		{"out_of_range", []int{0, MaxCoordinate + 1, 2}, []int{0, 1, 2}},
		{"too_many", make([]int, MaxVertices+1), make([]int, MaxVertices+1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewGene(tc.xs, tc.ys, red)
			if !errors.Is(err, ErrInvalidGene) {
				t.Errorf("got %v, want ErrInvalidGene", err)
			}
		})
	}
}

func TestGeneImmutable(t *testing.T) {
	xs := []int{0, 10, 10}
	ys := []int{0, 0, 10}
	g := MustGene(xs, ys, Color{A: 1})
	xs[0] = 99

	if x, _ := g.Point(0); x != 0 {
		t.Errorf("gene shares caller storage: x = %d", x)
	}
	px, _ := g.Points()
	px[1] = 99
	if x, _ := g.Point(1); x != 10 {
		t.Errorf("Points exposes internal storage: x = %d", x)
	}

	moved, err := g.WithPoint(2, 5, 5)
	if err != nil {
		t.Fatal(err)
	}
	if x, y := g.Point(2); x != 10 || y != 10 {
		t.Errorf("WithPoint modified the original: (%d, %d)", x, y)
	}
	if x, y := moved.Point(2); x != 5 || y != 5 {
		t.Errorf("WithPoint: got (%d, %d)", x, y)
	}
}

func TestGeneEqual(t *testing.T) {
	c := Color{A: 200, R: 1, G: 2, B: 3}
	a := square(0, 0, 10, c)
	b := square(0, 0, 10, c)
	if a == b {
		t.Fatal("expected distinct pointers")
	}
	if !a.Equal(b) || a.Hash() != b.Hash() {
		t.Error("structurally equal genes compare unequal")
	}
	if a.Equal(a.WithColor(Color{A: 200, R: 1, G: 2, B: 4})) {
		t.Error("genes with different colors compare equal")
	}
	if a.Equal(a.WithSwapped(0, 1)) {
		t.Error("genes with different vertex order compare equal")
	}
	if a.Equal(nil) {
		t.Error("gene equals nil")
	}
}

func TestGeneBounds(t *testing.T) {
	g := MustGene([]int{3, -2, 7}, []int{1, 4, -5}, Color{})
	b := g.Bounds()
	if b.Min.X != -2 || b.Min.Y != -5 || b.Max.X != 8 || b.Max.Y != 5 {
		t.Errorf("unexpected bounds %v", b)
	}
}

func TestGeneRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for range 200 {
		g := randomGene(r)
		data, err := g.MarshalBinary()
		if err != nil {
			t.Fatal(err)
		}
		g2, err := UnmarshalGene(data)
		if err != nil {
			t.Fatal(err)
		}
		if !g.Equal(g2) {
			t.Fatalf("round trip changed the gene")
		}
		data2, err := g2.MarshalBinary()
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(data, data2) {
			t.Fatalf("re-encoding differs")
		}
	}
}

func TestGeneEncodingErrors(t *testing.T) {
	g := MustGene([]int{0, 40000, 0}, []int{0, 0, 10}, Color{A: 255})
	if _, err := g.MarshalBinary(); !errors.Is(err, ErrCoordinate) {
		t.Errorf("got %v, want ErrCoordinate", err)
	}

	prefix := []byte{1, 2, 3}
	buf, err := g.AppendBinary(prefix)
	if !errors.Is(err, ErrCoordinate) {
		t.Errorf("got %v, want ErrCoordinate", err)
	}
	if !bytes.Equal(buf, prefix) {
		t.Errorf("failed append left %v, want %v", buf, prefix)
	}

	good, err := square(0, 0, 5, Color{A: 9}).MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}

	bad := bytes.Clone(good)
	bad[0] = FormatVersion + 1
	if _, err := UnmarshalGene(bad); !errors.Is(err, ErrVersion) {
		t.Errorf("got %v, want ErrVersion", err)
	}

	bad = bytes.Clone(good)
	bad[5] = 2
	if _, err := UnmarshalGene(bad); !errors.Is(err, ErrVertexCount) {
		t.Errorf("got %v, want ErrVertexCount", err)
	}

	if _, err := UnmarshalGene(good[:len(good)-1]); !errors.Is(err, ErrTruncated) {
		t.Errorf("got %v, want ErrTruncated", err)
	}
}

func TestGenomeRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	fitnesses := []float64{0, 1.5, 1e12, math.NaN(), math.Inf(1)}
	for i, fitness := range fitnesses {
		genes := make([]*Gene, 1+r.Intn(30))
		for j := range genes {
			genes[j] = randomGene(r)
		}
		bg := Transparent
		if i%2 == 1 {
			bg = Color{A: 255, R: 10, G: 20, B: 30}
		}
		g, err := New(bg, genes)
		if err != nil {
			t.Fatal(err)
		}
		g.Fitness = fitness
		g.Improvements = uint32(i * 7)
		g.Generated = uint32(i * 1000)
		g.Mutations = uint32(i * 900)

		data, err := g.MarshalBinary()
		if err != nil {
			t.Fatal(err)
		}
		g2, err := UnmarshalGenome(data)
		if err != nil {
			t.Fatal(err)
		}
		if !g.Equal(g2) {
			t.Errorf("case %d: genes or background changed", i)
		}
		if math.Float64bits(g.Fitness) != math.Float64bits(g2.Fitness) ||
			g.Improvements != g2.Improvements ||
			g.Generated != g2.Generated ||
			g.Mutations != g2.Mutations {
			t.Errorf("case %d: counters changed", i)
		}
		data2, err := g2.MarshalBinary()
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(data, data2) {
			t.Errorf("case %d: re-encoding differs", i)
		}
	}
}

func TestGenomeDecodeErrors(t *testing.T) {
	g, err := New(Transparent, []*Gene{square(1, 1, 3, Color{A: 5})})
	if err != nil {
		t.Fatal(err)
	}
	good, err := g.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}

	bad := bytes.Clone(good)
	bad[0] = 0
	if _, err := UnmarshalGenome(bad); !errors.Is(err, ErrVersion) {
		t.Errorf("got %v, want ErrVersion", err)
	}

	bad = bytes.Clone(good)
	copy(bad[25:29], []byte{0, 0, 0, 0})
	if _, err := UnmarshalGenome(bad); !errors.Is(err, ErrGeneCount) {
		t.Errorf("got %v, want ErrGeneCount", err)
	}

	bad = bytes.Clone(good)
	copy(bad[25:29], []byte{0, 0, 1, 0})
	if _, err := UnmarshalGenome(bad); !errors.Is(err, ErrGeneCount) {
		t.Errorf("got %v, want ErrGeneCount", err)
	}

	if _, err := UnmarshalGenome(append(bytes.Clone(good), 0)); err == nil {
		t.Error("trailing data accepted")
	}
}

func TestNewGenomeEmpty(t *testing.T) {
	if _, err := New(Transparent, nil); !errors.Is(err, ErrNoGenes) {
		t.Errorf("got %v, want ErrNoGenes", err)
	}
}

func FuzzGenomeDecode(f *testing.F) {
	g, _ := New(Color{A: 255}, []*Gene{square(0, 0, 4, Color{A: 128, G: 255})})
	seed, _ := g.MarshalBinary()
	f.Add(seed)
	f.Add([]byte{FormatVersion})

	f.Fuzz(func(t *testing.T, data []byte) {
		g, err := UnmarshalGenome(data)
		if err != nil {
			return
		}
		again, err := g.MarshalBinary()
		if err != nil {
			t.Fatalf("decoded genome does not encode: %v", err)
		}
		if !bytes.Equal(data, again) {
			t.Fatal("re-encoding differs from input")
		}
	})
}
