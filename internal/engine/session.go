// Package engine runs projection queries against CSV files with an
// embedded, in-memory DuckDB instance and writes the result as Parquet.
//
// Every file gets its own Session. A Session owns a private in-memory
// database, so nothing (catalog, buffers, temp state) survives from one file
// to the next and peak memory stays bounded by a single file's working set.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// Registers the "duckdb" database/sql driver.
	_ "github.com/duckdb/duckdb-go/v2"

	"flightprep/internal/dataset"
)

// Options tune a session. Zero values keep DuckDB defaults.
type Options struct {
	// Threads caps DuckDB worker threads for the session.
	Threads int
	// MemoryLimit is passed to DuckDB verbatim, e.g. "2GB".
	MemoryLimit string
}

// Session is a short-lived, isolated query engine handle.
type Session struct {
	db *sql.DB
}

// Open starts a fresh in-memory database and applies opts.
func Open(ctx context.Context, opts Options) (*Session, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("duckdb: open: %w", err)
	}
	// One connection keeps session settings and the in-memory catalog together.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("duckdb: ping: %w", err)
	}

	s := &Session{db: db}
	if err := s.apply(ctx, opts); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) apply(ctx context.Context, opts Options) error {
	if opts.Threads > 0 {
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("SET threads = %d", opts.Threads)); err != nil {
			return fmt.Errorf("duckdb: set threads: %w", err)
		}
	}
	if m := strings.TrimSpace(opts.MemoryLimit); m != "" {
		if _, err := s.db.ExecContext(ctx, "SET memory_limit = "+dataset.QuoteString(m)); err != nil {
			return fmt.Errorf("duckdb: set memory_limit: %w", err)
		}
	}
	return nil
}

// Close releases the database and everything it holds.
func (s *Session) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// WithSession opens a session, hands it to fn and always closes it,
// regardless of how fn returns. A close error is reported only when fn
// itself succeeded.
func WithSession(ctx context.Context, opts Options, fn func(*Session) error) (err error) {
	s, err := Open(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("duckdb: close: %w", cerr)
		}
	}()
	return fn(s)
}
