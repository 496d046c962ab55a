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

package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"seehuhn.de/go/vectorize"
	"seehuhn.de/go/vectorize/config"
	"seehuhn.de/go/vectorize/genome"
	"seehuhn.de/go/vectorize/store"
	"seehuhn.de/go/vectorize/target"
)

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	data, err := target.EncodePNG(img)
	if err != nil {
		t.Fatal(err)
	}
	name := filepath.Join(t.TempDir(), "target.png")
	if err := os.WriteFile(name, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return name
}

func storeGenome(t *testing.T, db *store.Store, improvements uint32, fitness float64) {
	t.Helper()
	gene := genome.MustGene([]int{0, 4, 4}, []int{0, 0, 4}, genome.Color{A: 255, G: 255})
	g, err := genome.New(genome.Color{A: 255}, []*genome.Gene{gene})
	if err != nil {
		t.Fatal(err)
	}
	g.Fitness = fitness
	g.Improvements = improvements
	data, err := g.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if err := db.InsertGenome(context.Background(), improvements, fitness, data); err != nil {
		t.Fatal(err)
	}
}

func TestLoadImages(t *testing.T) {
	ctx := context.Background()
	db := store.OpenMemory(t)

	cfg := config.Default()
	_, _, err := loadImages(ctx, db, cfg)
	if err == nil {
		t.Fatal("empty database without target accepted")
	}

	cfg.Target = writePNG(t, 40, 20)
	cfg.Importance = writePNG(t, 10, 10)
	cfg.MaxSize = 20
	img, imp, err := loadImages(ctx, db, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
		t.Errorf("target size %v", b)
	}
	if b := imp.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
		t.Errorf("importance size %v", b)
	}

	// A later run without images resumes from the stored ones.
	cfg.Target = ""
	cfg.Importance = ""
	img2, imp2, err := loadImages(ctx, db, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if img2.Bounds().Size() != img.Bounds().Size() || imp2 == nil {
		t.Error("stored images not restored")
	}
	_, _, pix1 := target.Pixels(img)
	_, _, pix2 := target.Pixels(img2)
	if !bytes.Equal(u32bytes(pix1), u32bytes(pix2)) {
		t.Error("stored target differs")
	}
}

func u32bytes(pix []uint32) []byte {
	res := make([]byte, 0, 4*len(pix))
	for _, p := range pix {
		res = append(res, byte(p>>24), byte(p>>16), byte(p>>8), byte(p))
	}
	return res
}

func TestInfoAndRender(t *testing.T) {
	ctx := context.Background()
	db := store.OpenMemory(t)

	var buf bytes.Buffer
	if err := printInfo(ctx, &buf, db); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "genomes:      0") {
		t.Errorf("empty info:\n%s", buf.String())
	}

	cfg := config.Default()
	cfg.Target = writePNG(t, 8, 6)
	if _, _, err := loadImages(ctx, db, cfg); err != nil {
		t.Fatal(err)
	}
	storeGenome(t, db, 1, 500)
	storeGenome(t, db, 2, 300)

	buf.Reset()
	if err := printInfo(ctx, &buf, db); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"genomes:      2", "fitness:      300", "improvements: 2", "genes:        1 (3 vertices)"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("info lacks %q:\n%s", want, buf.String())
		}
	}

	data, err := renderBest(ctx, db, 2)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 12 {
		t.Errorf("rendered size %v", b)
	}
	if _, g, _, _ := img.At(7, 1).RGBA(); g != 0xffff {
		t.Errorf("gene pixel green %04x", g)
	}
}

func TestFitnessPlot(t *testing.T) {
	if _, err := fitnessPlot(nil); !errors.Is(err, errNoHistory) {
		t.Errorf("empty history: %v", err)
	}

	history := []store.HistoryPoint{
		{Run: "a", Improvements: 1, Fitness: math.NaN()},
		{Run: "a", Improvements: 2, Fitness: 900},
		{Run: "a", Improvements: 3, Fitness: 700},
		{Run: "b", Improvements: 4, Fitness: 600},
		{Run: "b", Improvements: 5, Fitness: 400},
	}
	p, err := fitnessPlot(history)
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "fitness.png")
	if err := p.Save(200, 150, out); err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(out); err != nil || fi.Size() == 0 {
		t.Errorf("plot not written: %v", err)
	}
}

func TestSetupLogging(t *testing.T) {
	defaultLogger := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(defaultLogger)
		vectorize.SetLogger(nil)
	})

	var buf bytes.Buffer
	logger, err := setupLogging(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "k", 1)
	if s := buf.String(); strings.Contains(s, "hidden") || !strings.Contains(s, `"msg":"shown"`) {
		t.Errorf("log output %q", s)
	}

	if _, err := setupLogging(config.LogConfig{Level: "info", Format: "xml"}, &buf); err == nil {
		t.Error("unknown format accepted")
	}
}
