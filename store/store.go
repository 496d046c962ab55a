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

// Package store persists images and genomes in an SQLite database.
//
// Every operation runs inside a transaction. Transactions are carried in
// the context: an operation called with a context returned by
// [Store.Begin] joins that transaction, and nested Begin calls only
// increase a depth counter.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"seehuhn.de/go/vectorize/genome"
)

// ErrNotFound is returned when a queried row does not exist.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS images (
	tag     TEXT PRIMARY KEY,
	source  TEXT NOT NULL,
	data    BLOB NOT NULL,
	created INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS genomes (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run          TEXT NOT NULL,
	improvements INTEGER NOT NULL,
	fitness      REAL,
	data         BLOB NOT NULL,
	created      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS genomes_run ON genomes(run);
`

type config struct {
	busyTimeout int
	synchronous string
	mkdirAll    bool
}

// Option customises Open.
type Option func(*config)

// WithBusyTimeout sets PRAGMA busy_timeout in milliseconds. Default: 10000.
func WithBusyTimeout(ms int) Option { return func(c *config) { c.busyTimeout = ms } }

// WithSynchronous sets PRAGMA synchronous. Default: "NORMAL".
func WithSynchronous(mode string) Option { return func(c *config) { c.synchronous = mode } }

// WithMkdirAll creates the parent directories of the database file.
func WithMkdirAll() Option { return func(c *config) { c.mkdirAll = true } }

// Store is an SQLite database of images and genomes.
// A Store is safe for concurrent use.
type Store struct {
	db  *sql.DB
	run uuid.UUID
}

// Open opens or creates the database at path. Genomes inserted through
// the returned Store are tagged with a fresh run id.
func Open(path string, opts ...Option) (*Store, error) {
	cfg := config{busyTimeout: 10_000, synchronous: "NORMAL"}
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.mkdirAll && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if path == ":memory:" {
		// every connection to ":memory:" is a separate database
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.busyTimeout),
		fmt.Sprintf("PRAGMA synchronous = %s", cfg.synchronous),
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}

	return &Store{
		db:  db,
		run: uuid.Must(uuid.NewV7()),
	}, nil
}

// OpenMemory opens an in-memory database for testing. The database is
// closed when the test ends.
func OpenMemory(t testing.TB) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("store.OpenMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RunID identifies the genomes inserted through s.
func (s *Store) RunID() uuid.UUID {
	return s.run
}

// InsertImage stores an encoded image under tag, replacing any previous
// image with the same tag.
func (s *Store) InsertImage(ctx context.Context, tag, source string, data []byte) error {
	return s.Do(ctx, func(ctx context.Context) error {
		_, err := s.tx(ctx).ExecContext(ctx, `
			INSERT INTO images (tag, source, data, created) VALUES (?, ?, ?, ?)
			ON CONFLICT(tag) DO UPDATE SET
				source = excluded.source,
				data = excluded.data,
				created = excluded.created`,
			tag, source, data, time.Now().UnixNano())
		if err != nil {
			return fmt.Errorf("store: insert image %q: %w", tag, err)
		}
		return nil
	})
}

// Image is a stored image.
type Image struct {
	Tag     string
	Source  string
	Data    []byte
	Created time.Time
}

// QueryImage returns the image stored under tag, or ErrNotFound.
func (s *Store) QueryImage(ctx context.Context, tag string) (*Image, error) {
	var img *Image
	err := s.Do(ctx, func(ctx context.Context) error {
		var created int64
		res := &Image{Tag: tag}
		err := s.tx(ctx).QueryRowContext(ctx,
			`SELECT source, data, created FROM images WHERE tag = ?`, tag).
			Scan(&res.Source, &res.Data, &created)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("store: image %q: %w", tag, ErrNotFound)
		} else if err != nil {
			return fmt.Errorf("store: query image %q: %w", tag, err)
		}
		res.Created = time.Unix(0, created)
		img = res
		return nil
	})
	return img, err
}

// InsertGenome stores an encoded genome. It implements the storage
// interface of the vectorizer.
func (s *Store) InsertGenome(ctx context.Context, improvements uint32, fitness float64, data []byte) error {
	return s.Do(ctx, func(ctx context.Context) error {
		_, err := s.tx(ctx).ExecContext(ctx, `
			INSERT INTO genomes (run, improvements, fitness, data, created)
			VALUES (?, ?, ?, ?, ?)`,
			s.run.String(), improvements, nullFloat(fitness), data, time.Now().UnixNano())
		if err != nil {
			return fmt.Errorf("store: insert genome: %w", err)
		}
		return nil
	})
}

// QueryLatestGenome decodes the most recently inserted genome of any run,
// or returns ErrNotFound.
func (s *Store) QueryLatestGenome(ctx context.Context) (*genome.Genome, error) {
	var g *genome.Genome
	err := s.Do(ctx, func(ctx context.Context) error {
		var data []byte
		err := s.tx(ctx).QueryRowContext(ctx,
			`SELECT data FROM genomes ORDER BY id DESC LIMIT 1`).Scan(&data)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("store: latest genome: %w", ErrNotFound)
		} else if err != nil {
			return fmt.Errorf("store: query latest genome: %w", err)
		}
		g, err = genome.UnmarshalGenome(data)
		if err != nil {
			return fmt.Errorf("store: latest genome: %w", err)
		}
		return nil
	})
	return g, err
}

// QueryNumberOfGenomes returns the number of stored genomes.
func (s *Store) QueryNumberOfGenomes(ctx context.Context) (int, error) {
	var n int
	err := s.Do(ctx, func(ctx context.Context) error {
		err := s.tx(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM genomes`).Scan(&n)
		if err != nil {
			return fmt.Errorf("store: count genomes: %w", err)
		}
		return nil
	})
	return n, err
}

// HistoryPoint summarises one stored genome.
type HistoryPoint struct {
	Run          string
	Improvements uint32
	Fitness      float64 // NaN if the genome was unscored
	Created      time.Time
}

// QueryHistory returns all stored genomes in insertion order.
func (s *Store) QueryHistory(ctx context.Context) ([]HistoryPoint, error) {
	var res []HistoryPoint
	err := s.Do(ctx, func(ctx context.Context) error {
		rows, err := s.tx(ctx).QueryContext(ctx,
			`SELECT run, improvements, fitness, created FROM genomes ORDER BY id`)
		if err != nil {
			return fmt.Errorf("store: query history: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var p HistoryPoint
			var fitness sql.NullFloat64
			var created int64
			if err := rows.Scan(&p.Run, &p.Improvements, &fitness, &created); err != nil {
				return fmt.Errorf("store: scan history: %w", err)
			}
			p.Fitness = fromNull(fitness)
			p.Created = time.Unix(0, created)
			res = append(res, p)
		}
		return rows.Err()
	})
	return res, err
}
