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
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"seehuhn.de/go/vectorize/store"
)

func cmdPlot(ctx context.Context, args []string) error {
	fs := newFlagSet("plot")
	dbPath := fs.String("db", "vectorize.db", "path to the SQLite database")
	out := fs.String("o", "fitness.png", "output file; the extension selects the format")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := store.Open(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	history, err := db.QueryHistory(ctx)
	if err != nil {
		return err
	}
	p, err := fitnessPlot(history)
	if err != nil {
		return err
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, *out)
}

var errNoHistory = errors.New("no scored genomes stored")

// fitnessPlot draws the fitness of the stored genomes against the
// number of improvements, one line per run.
func fitnessPlot(history []store.HistoryPoint) (*plot.Plot, error) {
	var runs []string
	points := make(map[string]plotter.XYs)
	for _, h := range history {
		if math.IsNaN(h.Fitness) {
			continue
		}
		if _, seen := points[h.Run]; !seen {
			runs = append(runs, h.Run)
		}
		points[h.Run] = append(points[h.Run], plotter.XY{
			X: float64(h.Improvements),
			Y: h.Fitness,
		})
	}
	if len(runs) == 0 {
		return nil, errNoHistory
	}

	p := plot.New()
	p.Title.Text = "Fitness"
	p.X.Label.Text = "Improvements"
	p.Y.Label.Text = "Distance to target"
	for i, run := range runs {
		line, err := plotter.NewLine(points[run])
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", run, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		if len(runs) > 1 {
			p.Legend.Add(fmt.Sprintf("run %d", i+1), line)
		}
	}
	p.Legend.Top = true
	return p, nil
}
