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
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"seehuhn.de/go/vectorize/store"
)

func cmdInfo(ctx context.Context, args []string) error {
	fs := newFlagSet("info")
	dbPath := fs.String("db", "vectorize.db", "path to the SQLite database")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := store.Open(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	return printInfo(ctx, os.Stdout, db)
}

func printInfo(ctx context.Context, w io.Writer, db *store.Store) error {
	img, err := db.QueryImage(ctx, tagTarget)
	switch {
	case errors.Is(err, store.ErrNotFound):
		fmt.Fprintln(w, "target:       none")
	case err != nil:
		return err
	default:
		fmt.Fprintf(w, "target:       %s (stored %s)\n", img.Source, img.Created.Format("2006-01-02 15:04:05"))
	}

	n, err := db.QueryNumberOfGenomes(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "genomes:      %d\n", n)
	if n == 0 {
		return nil
	}

	best, err := db.QueryLatestGenome(ctx)
	if err != nil {
		return err
	}
	vertices := 0
	for _, gene := range best.All() {
		vertices += gene.Len()
	}
	fitness := "unscored"
	if !math.IsNaN(best.Fitness) {
		fitness = fmt.Sprintf("%.0f", best.Fitness)
	}
	fmt.Fprintf(w, "fitness:      %s\n", fitness)
	fmt.Fprintf(w, "genes:        %d (%d vertices)\n", best.Len(), vertices)
	fmt.Fprintf(w, "improvements: %d\n", best.Improvements)
	fmt.Fprintf(w, "mutations:    %d\n", best.Mutations)
	fmt.Fprintf(w, "generated:    %d\n", best.Generated)
	return nil
}
