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

package raster

import (
	"fmt"
	"image"
	"maps"
	"math"
	"slices"
	"strings"
	"testing"

	"golang.org/x/image/vector"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/vectorize/testcases"
)

// approaches forces one of the two accumulation strategies.
var approaches = []struct {
	name      string
	threshold int
}{
	{"A", 1 << 30}, // always 2D buffers
	{"B", 0},       // always active edge list
}

// renderCase rasterizes a test case into a row-major coverage buffer.
func renderCase(t testing.TB, tc testcases.TestCase, threshold int) []float32 {
	t.Helper()
	w, h := tc.Width, tc.Height
	r := NewRasterizer(rect.Rect{URx: float64(w), URy: float64(h)})
	r.smallPathThreshold = threshold
	if tc.CTM != (matrix.Matrix{}) {
		r.CTM = tc.CTM
	}

	buf := make([]float32, w*h)
	rule := NonZero
	if tc.Rule == testcases.EvenOdd {
		rule = EvenOdd
	}
	r.Fill(tc.Path, rule, func(y, xMin int, coverage []float32) {
		if y < 0 || y >= h || xMin < 0 || xMin+len(coverage) > w {
			t.Errorf("row %d [%d, %d) outside the %dx%d clip", y, xMin, xMin+len(coverage), w, h)
			return
		}
		for i, c := range coverage {
			if c < 0 || c > 1 {
				t.Errorf("coverage %g at (%d, %d) out of range", c, xMin+i, y)
			}
			buf[y*w+xMin+i] += c
		}
	})
	return buf
}

func allCases() []struct {
	name string
	tc   testcases.TestCase
} {
	var res []struct {
		name string
		tc   testcases.TestCase
	}
	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			res = append(res, struct {
				name string
				tc   testcases.TestCase
			}{category + "_" + tc.Name, tc})
		}
	}
	return res
}

func TestArea(t *testing.T) {
	for _, c := range allCases() {
		if c.tc.Area == 0 {
			continue
		}
		for _, approach := range approaches {
			t.Run(c.name+"_"+approach.name, func(t *testing.T) {
				buf := renderCase(t, c.tc, approach.threshold)
				total := 0.0
				for _, v := range buf {
					total += float64(v)
				}
				tol := 1e-3 * c.tc.Area
				if strings.HasPrefix(c.name, "curve_") {
					tol = 0.02 * c.tc.Area // flattening error
				}
				if math.Abs(total-c.tc.Area) > tol {
					t.Errorf("covered area %.3f, want %.3f", total, c.tc.Area)
				}
			})
		}
	}
}

func TestApproachesAgree(t *testing.T) {
	for _, c := range allCases() {
		t.Run(c.name, func(t *testing.T) {
			a := renderCase(t, c.tc, approaches[0].threshold)
			b := renderCase(t, c.tc, approaches[1].threshold)
			for i := range a {
				if math.Abs(float64(a[i]-b[i])) > 1e-4 {
					t.Fatalf("pixel (%d, %d): A=%g B=%g",
						i%c.tc.Width, i/c.tc.Width, a[i], b[i])
				}
			}
		})
	}
}

// TestAgainstVector compares convex shapes with golang.org/x/image/vector.
func TestAgainstVector(t *testing.T) {
	for _, c := range allCases() {
		if !c.tc.Convex || c.tc.CTM != (matrix.Matrix{}) {
			continue
		}
		t.Run(c.name, func(t *testing.T) {
			w, h := c.tc.Width, c.tc.Height
			ours := renderCase(t, c.tc, smallPathThreshold)
			actual := make([]byte, w*h)
			for i, v := range ours {
				actual[i] = byte(math.Round(float64(v) * 255))
			}
			expected := rasterizeVector(c.tc.Path, w, h)
			if err := compareCoverage(expected, actual, w, h); err != nil {
				t.Error(err)
			}
		})
	}
}

func rasterizeVector(p path.Path, w, h int) []byte {
	z := vector.NewRasterizer(w, h)
	for cmd, pts := range p {
		switch cmd {
		case path.CmdMoveTo:
			z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
		case path.CmdLineTo:
			z.LineTo(float32(pts[0].X), float32(pts[0].Y))
		case path.CmdQuadTo:
			z.QuadTo(float32(pts[0].X), float32(pts[0].Y), float32(pts[1].X), float32(pts[1].Y))
		case path.CmdCubeTo:
			z.CubeTo(float32(pts[0].X), float32(pts[0].Y), float32(pts[1].X), float32(pts[1].Y),
				float32(pts[2].X), float32(pts[2].Y))
		case path.CmdClose:
			z.ClosePath()
		}
	}
	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	return dst.Pix
}

func compareCoverage(expected, actual []byte, w, h int) error {
	const tolerance = 2
	const maxDiffPercent = 1

	diffCount := 0
	for i := range w * h {
		d := int(expected[i]) - int(actual[i])
		if d < -tolerance || d > tolerance {
			diffCount++
		}
	}
	if maxAllowed := w * h * maxDiffPercent / 100; diffCount > maxAllowed {
		return fmt.Errorf("%d pixels differ by >%d (max allowed: %d)", diffCount, tolerance, maxAllowed)
	}
	return nil
}

func TestGeneSquareExact(t *testing.T) {
	tc := testcases.All["fill"][0]
	if tc.Name != "gene_square" {
		t.Fatalf("unexpected first fill case %q", tc.Name)
	}
	buf := renderCase(t, tc, smallPathThreshold)
	for y := range tc.Height {
		for x := range tc.Width {
			want := float32(0)
			if x < 10 && y < 10 {
				want = 1
			}
			if got := buf[y*tc.Width+x]; got != want {
				t.Fatalf("coverage at (%d, %d) is %g, want %g", x, y, got, want)
			}
		}
	}
}

func TestFillRules(t *testing.T) {
	var nonZero, evenOdd testcases.TestCase
	for _, tc := range testcases.All["fill"] {
		switch tc.Name {
		case "star_nonzero":
			nonZero = tc
		case "star_evenodd":
			evenOdd = tc
		}
	}
	center := 32*64 + 32
	if v := renderCase(t, nonZero, smallPathThreshold)[center]; v < 0.99 {
		t.Errorf("nonzero star center coverage %g, want 1", v)
	}
	if v := renderCase(t, evenOdd, smallPathThreshold)[center]; v > 0.01 {
		t.Errorf("even-odd star center coverage %g, want 0", v)
	}
}

func TestEmptyPath(t *testing.T) {
	r := NewRasterizer(rect.Rect{URx: 10, URy: 10})
	called := false
	emit := func(int, int, []float32) { called = true }

	var empty path.Path = func(yield func(path.Command, []vec.Vec2) bool) {}
	r.FillNonZero(empty, emit)
	if called {
		t.Error("empty path produced output")
	}
}

func TestReset(t *testing.T) {
	r := NewRasterizer(rect.Rect{URx: 10, URy: 10})
	r.CTM = matrix.Scale(2, 2)
	r.Flatness = 3
	r.Reset(rect.Rect{URx: 5, URy: 5})
	if r.CTM != matrix.Identity || r.Flatness != defaultFlatness || r.Clip.URx != 5 {
		t.Errorf("Reset left state behind: %+v", r)
	}
}
