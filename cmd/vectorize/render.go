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
	"context"
	"fmt"
	"os"

	"seehuhn.de/go/vectorize/render"
	"seehuhn.de/go/vectorize/store"
	"seehuhn.de/go/vectorize/target"
)

func cmdRender(ctx context.Context, args []string) error {
	fs := newFlagSet("render")
	dbPath := fs.String("db", "vectorize.db", "path to the SQLite database")
	out := fs.String("o", "best.png", "output file")
	scale := fs.Float64("scale", 1, "scale factor relative to the target size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !(*scale > 0) {
		return fmt.Errorf("invalid scale %g", *scale)
	}

	db, err := store.Open(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	data, err := renderBest(ctx, db, *scale)
	if err != nil {
		return err
	}
	return os.WriteFile(*out, data, 0o644)
}

// renderBest renders the latest stored genome at the size of the stored
// target image times scale, and returns it in PNG format.
func renderBest(ctx context.Context, db *store.Store, scale float64) ([]byte, error) {
	img, err := storedImage(ctx, db, tagTarget)
	if err != nil {
		return nil, err
	}
	best, err := db.QueryLatestGenome(ctx)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	r := render.NewScaled(b.Dx(), b.Dy(), scale)
	canvas := r.NewCanvas()
	r.Render(best, canvas)
	return target.EncodePNG(canvas.Image())
}
