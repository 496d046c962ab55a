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

package vectorize

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime/debug"
	"time"

	"seehuhn.de/go/vectorize/fitness"
	"seehuhn.de/go/vectorize/genome"
	"seehuhn.de/go/vectorize/polycache"
	"seehuhn.de/go/vectorize/random"
	"seehuhn.de/go/vectorize/render"
)

// worker holds the per-goroutine state of the mutate-render-score loop.
type worker struct {
	v        *Vectorizer
	id       int
	rng      *rand.Rand
	renderer *render.Cached
	canvas   *render.Canvas
	fit      *fitness.Function
	session  *Session
	factory  GenomeFactory
	strategy MutationStrategy
	log      *slog.Logger
}

func newWorker(v *Vectorizer, id int, cache *polycache.Cache, fit *fitness.Function) *worker {
	s := v.session
	r := render.NewCached(s.Width, s.Height, cache)
	return &worker{
		v:        v,
		id:       id,
		rng:      random.New(random.Derive(s.Seed, id)),
		renderer: r,
		canvas:   r.NewCanvas(),
		fit:      fit,
		session:  s,
		factory:  v.factory,
		strategy: v.strategy,
		log:      Logger().With("worker", id),
	}
}

// run repeats iterations until ctx is cancelled. Cancellation is checked
// once per iteration.
func (w *worker) run(ctx context.Context) {
	w.log.Debug("worker started")
	for ctx.Err() == nil {
		w.step()
	}
	w.log.Debug("worker stopped")
}

// step performs one iteration. A panic abandons the iteration but not the
// worker.
func (w *worker) step() {
	defer func() {
		if p := recover(); p != nil {
			w.log.Error("worker iteration failed",
				"panic", fmt.Sprint(p),
				"stack", string(debug.Stack()))
		}
	}()

	best := w.v.Best()
	var candidate *genome.Genome
	if best == nil {
		candidate = w.factory.NewGenome(w.rng)
	} else {
		candidate = w.strategy.Mutate(w.rng, best)
	}
	if candidate == nil || candidate == best {
		return
	}
	w.v.generated.Add(1)

	w.renderer.Render(candidate, w.canvas)
	candidate.Fitness = w.fit.Evaluate(w.canvas.Pix, w.session.Target, w.session.Importance)
	w.v.Submit(candidate)
	w.v.ticks.Tick()
}

// storeLoop persists accepted genomes until ctx is cancelled, and then
// stores whatever is still queued.
func storeLoop(ctx context.Context, store GenomeStore, queue <-chan *genome.Genome, timeout time.Duration, done chan<- struct{}) {
	defer close(done)
	log := Logger().With("component", "storage")
	storeCtx := context.WithoutCancel(ctx)
	persist := func(g *genome.Genome) {
		data, err := g.MarshalBinary()
		if err != nil {
			log.Error("cannot encode genome", "improvements", g.Improvements, "error", err)
			return
		}
		ctx, cancel := context.WithTimeout(storeCtx, timeout)
		defer cancel()
		start := time.Now()
		if err := store.InsertGenome(ctx, g.Improvements, g.Fitness, data); err != nil {
			log.Error("cannot store genome", "improvements", g.Improvements, "error", err)
			return
		}
		log.Debug("genome stored",
			"improvements", g.Improvements,
			"fitness", g.Fitness,
			"bytes", len(data),
			"took", time.Since(start))
	}

	for {
		select {
		case g := <-queue:
			persist(g)
		case <-ctx.Done():
			for {
				select {
				case g := <-queue:
					persist(g)
				default:
					return
				}
			}
		}
	}
}
