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

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrRolledBack is returned by Commit when an inner transaction level was
// rolled back, so that the whole transaction was discarded.
var ErrRolledBack = errors.New("transaction rolled back")

// ErrNoTransaction is returned by Commit and Rollback if the context does
// not carry a transaction of the store.
var ErrNoTransaction = errors.New("no transaction in context")

type txKey struct{}

// txState is shared by all nesting levels of one transaction. It must
// only be used by one goroutine at a time.
type txState struct {
	store    *Store
	tx       *sql.Tx
	depth    int
	rollback bool
}

func (s *Store) state(ctx context.Context) (*txState, bool) {
	st, ok := ctx.Value(txKey{}).(*txState)
	if !ok || st.store != s || st.depth == 0 {
		return nil, false
	}
	return st, true
}

// tx returns the transaction carried by ctx. It panics if there is none,
// since all queries run inside Do.
func (s *Store) tx(ctx context.Context) *sql.Tx {
	st, ok := s.state(ctx)
	if !ok {
		panic("store: query outside of a transaction")
	}
	return st.tx
}

// Begin starts a transaction, or joins the one carried by ctx. The
// returned context carries the transaction and must be passed to Commit
// or Rollback exactly once.
func (s *Store) Begin(ctx context.Context) (context.Context, error) {
	if st, ok := s.state(ctx); ok {
		st.depth++
		return ctx, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ctx, fmt.Errorf("store: begin: %w", err)
	}
	st := &txState{store: s, tx: tx, depth: 1}
	return context.WithValue(ctx, txKey{}, st), nil
}

// Commit ends one nesting level. Only the outermost level commits the
// transaction to the database.
func (s *Store) Commit(ctx context.Context) error {
	st, ok := s.state(ctx)
	if !ok {
		return ErrNoTransaction
	}
	st.depth--
	if st.depth > 0 {
		return nil
	}
	if st.rollback {
		_ = st.tx.Rollback()
		return ErrRolledBack
	}
	if err := st.tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// Rollback ends one nesting level and marks the whole transaction for
// rollback. The database transaction is rolled back when the outermost
// level ends.
func (s *Store) Rollback(ctx context.Context) error {
	st, ok := s.state(ctx)
	if !ok {
		return ErrNoTransaction
	}
	st.rollback = true
	st.depth--
	if st.depth > 0 {
		return nil
	}
	if err := st.tx.Rollback(); err != nil {
		return fmt.Errorf("store: rollback: %w", err)
	}
	return nil
}

const maxRetries = 3

// Do runs fn inside a transaction. The transaction level is committed if
// fn returns nil, and rolled back if fn fails or panics. An outermost
// transaction which fails because the database is busy is retried up to
// three times.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, nested := s.state(ctx); nested {
		return s.doOnce(ctx, fn)
	}
	var err error
	for i := range maxRetries {
		err = s.doOnce(ctx, fn)
		if !isBusy(err) {
			return err
		}
		if err := sleepCtx(ctx, time.Duration(100*(i+1))*time.Millisecond); err != nil {
			return fmt.Errorf("store: context cancelled during retry: %w", err)
		}
	}
	return err
}

func (s *Store) doOnce(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	ctx, err = s.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = s.Rollback(ctx)
			panic(p)
		}
	}()
	if err := fn(ctx); err != nil {
		if rbErr := s.Rollback(ctx); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return s.Commit(ctx)
}

// isBusy reports whether err indicates an SQLite BUSY condition.
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SQLite cannot store NaN, so unscored fitness values become NULL.
func nullFloat(x float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: x, Valid: !math.IsNaN(x)}
}

func fromNull(x sql.NullFloat64) float64 {
	if !x.Valid {
		return math.NaN()
	}
	return x.Float64
}
