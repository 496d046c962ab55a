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
	"fmt"
	"image"
	"log/slog"
	"os"
	"sync"
	"time"

	"seehuhn.de/go/vectorize"
	"seehuhn.de/go/vectorize/config"
	"seehuhn.de/go/vectorize/fitness"
	"seehuhn.de/go/vectorize/genome"
	"seehuhn.de/go/vectorize/mutate"
	"seehuhn.de/go/vectorize/render"
	"seehuhn.de/go/vectorize/status"
	"seehuhn.de/go/vectorize/store"
	"seehuhn.de/go/vectorize/target"
)

func cmdRun(ctx context.Context, args []string) error {
	fs := newFlagSet("run")
	configPath := fs.String("config", "", "path to the YAML configuration")
	targetPath := fs.String("target", "", "target image (overrides the configuration)")
	importancePath := fs.String("importance", "", "importance map (overrides the configuration)")
	dbPath := fs.String("db", "", "path to the SQLite database (overrides the configuration)")
	listen := fs.String("listen", "", "address of the status server (overrides the configuration)")
	threads := fs.Int("threads", -1, "number of worker goroutines (overrides the configuration)")
	seed := fs.Int64("seed", 0, "random seed (overrides the configuration)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *targetPath != "" {
		cfg.Target = *targetPath
	}
	if *importancePath != "" {
		cfg.Importance = *importancePath
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *threads >= 0 {
		cfg.Threads = *threads
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := setupLogging(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.DBPath, store.WithMkdirAll())
	if err != nil {
		return err
	}
	defer db.Close()

	img, imp, err := loadImages(ctx, db, cfg)
	if err != nil {
		return err
	}
	w, h, pix := target.Pixels(img)
	var importance []uint8
	if imp != nil {
		importance = target.Importance(imp, w, h)
	}

	runSeed := cfg.Seed
	if runSeed == 0 {
		runSeed = time.Now().UnixNano()
	}
	session, err := vectorize.NewSession(w, h, pix, importance, cfg.Threads, runSeed)
	if err != nil {
		return err
	}
	mcfg, err := cfg.MutationConfig(w, h)
	if err != nil {
		return err
	}
	fit, err := fitness.New(cfg.Fitness.Weights())
	if err != nil {
		return err
	}

	v := vectorize.New()
	err = errors.Join(
		v.SetSession(session),
		v.SetGenomeFactory(mutate.NewFactory(mcfg)),
		v.SetMutationStrategy(mutate.NewStrategy(mcfg)),
		v.SetFitness(fit),
		v.SetStore(db),
		v.SetCacheOptions(cfg.CacheOptions(logger.With("component", "polycache"))),
		v.SetStopTimeout(cfg.StopTimeout),
		v.AddListener(vectorize.ListenerFuncs{
			OnImprovement: func(best *genome.Genome) {
				logger.Debug("improvement",
					"fitness", best.Fitness,
					"improvements", best.Improvements,
					"genes", best.Len())
			},
		}),
	)
	if err != nil {
		return err
	}

	best, err := db.QueryLatestGenome(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		logger.Info("starting a new run", "width", w, "height", h, "seed", runSeed)
	case err != nil:
		return err
	default:
		// The stored fitness may come from different weights.
		canvas := render.NewCanvas(w, h)
		render.New(w, h).Render(best, canvas)
		best.Fitness = fit.Evaluate(canvas.Pix, session.Target, session.Importance)
		if err := v.Restore(best); err != nil {
			return err
		}
		logger.Info("resuming run",
			"width", w, "height", h, "seed", runSeed,
			"improvements", best.Improvements, "genes", best.Len(),
			"fitness", best.Fitness)
	}

	if err := v.Start(); err != nil {
		return err
	}
	logger.Info("vectorizer started", "threads", cfg.Threads, "run", db.RunID())

	var wg sync.WaitGroup
	if cfg.Listen != "" {
		srv := status.New(v, w, h, logger.With("component", "status"))
		wg.Go(func() {
			if err := srv.ListenAndServe(ctx, cfg.Listen); err != nil {
				logger.Error("status server failed", "error", err)
			}
		})
	}

	report(ctx, logger, v, cfg.ReportInterval)

	logger.Info("stopping")
	v.Stop()
	wg.Wait()
	return nil
}

// report logs the progress of v until ctx is cancelled.
func report(ctx context.Context, logger *slog.Logger, v *vectorize.Vectorizer, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		c := v.Counters()
		args := []any{
			"generated", c.Generated,
			"mutations", c.Mutations,
			"improvements", c.Improvements,
			"rate", fmt.Sprintf("%.1f/s", v.TickRate()),
			"cache", v.CacheSize(),
		}
		if best := v.Best(); best != nil {
			args = append(args, "fitness", best.Fitness, "genes", best.Len())
		}
		logger.Info("progress", args...)
	}
}

// loadImages returns the target image and the optional importance map.
// Images given in the configuration are scaled, stored and returned;
// otherwise the images of an earlier run are read from the database.
func loadImages(ctx context.Context, db *store.Store, cfg *config.Config) (img, imp image.Image, err error) {
	if cfg.Target == "" {
		img, err = storedImage(ctx, db, tagTarget)
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, fmt.Errorf("no target image given and none stored in %s", cfg.DBPath)
		} else if err != nil {
			return nil, nil, err
		}
		imp, err = storedImage(ctx, db, tagImportance)
		if errors.Is(err, store.ErrNotFound) {
			return img, nil, nil
		}
		return img, imp, err
	}

	src, err := target.Load(cfg.Target)
	if err != nil {
		return nil, nil, err
	}
	scaled := target.Fit(src, cfg.MaxSize)
	if err := saveImage(ctx, db, tagTarget, cfg.Target, scaled); err != nil {
		return nil, nil, err
	}
	img = scaled

	if cfg.Importance != "" {
		src, err := target.Load(cfg.Importance)
		if err != nil {
			return nil, nil, err
		}
		b := scaled.Bounds()
		scaledImp := target.Scale(src, b.Dx(), b.Dy())
		if err := saveImage(ctx, db, tagImportance, cfg.Importance, scaledImp); err != nil {
			return nil, nil, err
		}
		imp = scaledImp
	}
	return img, imp, nil
}

func saveImage(ctx context.Context, db *store.Store, tag, source string, img image.Image) error {
	data, err := target.EncodePNG(img)
	if err != nil {
		return fmt.Errorf("encode %s image: %w", tag, err)
	}
	return db.InsertImage(ctx, tag, source, data)
}

func storedImage(ctx context.Context, db *store.Store, tag string) (image.Image, error) {
	rec, err := db.QueryImage(ctx, tag)
	if err != nil {
		return nil, err
	}
	img, _, err := target.Decode(bytes.NewReader(rec.Data))
	if err != nil {
		return nil, fmt.Errorf("stored %s image: %w", tag, err)
	}
	return img, nil
}
