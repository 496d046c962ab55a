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

// Package status serves the progress of a running vectorizer over HTTP.
//
// Endpoints:
//
//	GET /status     JSON summary of the run
//	GET /best.png   the best genome, rendered; ?scale=s changes the size
//	GET /best.bin   the best genome in binary form
package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"seehuhn.de/go/vectorize"
	"seehuhn.de/go/vectorize/genome"
	"seehuhn.de/go/vectorize/polycache"
	"seehuhn.de/go/vectorize/render"
)

// maxScale bounds the preview scale factor.
const maxScale = 8

// Source provides the state of a run. It is implemented by
// *vectorize.Vectorizer.
type Source interface {
	State() vectorize.State
	Best() *genome.Genome
	Counters() vectorize.Counters
	TickRate() float64
	CacheStats() (polycache.Stats, bool)
}

// Server is the HTTP status endpoint of a run.
type Server struct {
	src           Source
	width, height int
	logger        *slog.Logger
	router        *chi.Mux
}

// New returns a status server for genomes painted on a width x height
// canvas.
func New(src Source, width, height int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		src:    src,
		width:  width,
		height: height,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Get("/status", s.handleStatus)
	r.Get("/best.png", s.handleBestPNG)
	r.Get("/best.bin", s.handleBestBinary)
	s.router = r
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("status server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("status server: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("status server shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("status server: %w", err)
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"took", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// Report is the JSON body of /status.
type Report struct {
	State        string      `json:"state"`
	Width        int         `json:"width"`
	Height       int         `json:"height"`
	Generated    uint32      `json:"generated"`
	Mutations    uint32      `json:"mutations"`
	Improvements uint32      `json:"improvements"`
	TickRate     float64     `json:"tick_rate"`
	Best         *BestReport `json:"best,omitempty"`
	Cache        *CacheStats `json:"cache,omitempty"`
}

// BestReport summarises the best genome.
type BestReport struct {
	Fitness      *float64 `json:"fitness"` // null if unscored
	Genes        int      `json:"genes"`
	Vertices     int      `json:"vertices"`
	Improvements uint32   `json:"improvements"`
	Background   string   `json:"background"`
}

// CacheStats is the JSON form of the polygon cache statistics.
type CacheStats struct {
	Hits     uint64 `json:"hits"`
	Misses   uint64 `json:"misses"`
	Stamped  uint64 `json:"stamped"`
	Promoted uint64 `json:"promoted"`
	Evicted  uint64 `json:"evicted"`
	Dropped  uint64 `json:"dropped"`
	Temp     int    `json:"temp"`
	Stable   int    `json:"stable"`
}

func (s *Server) report() *Report {
	c := s.src.Counters()
	rep := &Report{
		State:        s.src.State().String(),
		Width:        s.width,
		Height:       s.height,
		Generated:    c.Generated,
		Mutations:    c.Mutations,
		Improvements: c.Improvements,
		TickRate:     s.src.TickRate(),
	}
	if best := s.src.Best(); best != nil {
		b := &BestReport{
			Genes:        best.Len(),
			Improvements: best.Improvements,
			Background:   fmt.Sprintf("#%08x", best.Background.Packed()),
		}
		if !math.IsNaN(best.Fitness) && !math.IsInf(best.Fitness, 0) {
			f := best.Fitness
			b.Fitness = &f
		}
		for _, gene := range best.All() {
			b.Vertices += gene.Len()
		}
		rep.Best = b
	}
	if st, ok := s.src.CacheStats(); ok {
		rep.Cache = &CacheStats{
			Hits:     st.Hits,
			Misses:   st.Misses,
			Stamped:  st.Stamped,
			Promoted: st.Promoted,
			Evicted:  st.Evicted,
			Dropped:  st.Dropped,
			Temp:     st.Temp,
			Stable:   st.Stable,
		}
	}
	return rep
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.report()); err != nil {
		s.logger.Warn("cannot write status", "error", err)
	}
}

func (s *Server) handleBestPNG(w http.ResponseWriter, r *http.Request) {
	best := s.src.Best()
	if best == nil {
		http.Error(w, "no genome yet", http.StatusNotFound)
		return
	}

	scale := 1.0
	if v := r.URL.Query().Get("scale"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || !(f > 0 && f <= maxScale) {
			http.Error(w, fmt.Sprintf("invalid scale %q", v), http.StatusBadRequest)
			return
		}
		scale = f
	}

	var renderer *render.Renderer
	if scale == 1 {
		renderer = render.New(s.width, s.height)
	} else {
		renderer = render.NewScaled(s.width, s.height, scale)
	}
	canvas := renderer.NewCanvas()
	renderer.Render(best, canvas)

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, canvas.Image()); err != nil {
		s.logger.Warn("cannot write preview", "error", err)
	}
}

func (s *Server) handleBestBinary(w http.ResponseWriter, r *http.Request) {
	best := s.src.Best()
	if best == nil {
		http.Error(w, "no genome yet", http.StatusNotFound)
		return
	}
	data, err := best.MarshalBinary()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}
