// Package store keeps list items in a SQLite database and exposes them as a
// paged, mutation-reporting content source.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/rshade/virtlist/internal/layout"
	"github.com/rshade/virtlist/internal/source"
)

// schemaVersion is bumped whenever the items table changes shape.
const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS items (
    position INTEGER PRIMARY KEY,  -- zero-based list index
    label    TEXT NOT NULL,
    height   REAL NOT NULL DEFAULT 1
);
`

// DefaultPageSize is the number of rows fetched per page.
const DefaultPageSize = 256

// defaultMaxPages bounds the page cache.
const defaultMaxPages = 8

// ErrInvalidHeight is returned for negative or non-finite item heights.
// A zero height is stored as 1, the column default.
var ErrInvalidHeight = errors.New("store: invalid item height")

// ErrOutOfRange is returned when a write addresses positions outside the list.
var ErrOutOfRange = errors.New("store: position out of range")

// Item is one stored row.
type Item struct {
	Label  string
	Height float64
}

type options struct {
	logger   zerolog.Logger
	pageSize int
	maxPages int
}

// Option configures a Store.
type Option func(*options)

// WithLogger sets the logger used for query failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMaxPages sets how many pages the read cache holds.
func WithMaxPages(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxPages = n
		}
	}
}

// WithPageSize sets how many rows one page read fetches.
func WithPageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// Store is a SQLite-backed list. Reads go through an LRU page cache; writes
// renumber positions in a transaction and notify subscribers. A Store is safe
// for concurrent use; writes are serialized.
type Store struct {
	source.Notifier

	db    *sql.DB
	path  string
	opts  options
	pages *lru.Cache[int, []Item]

	// writeMu serializes Seed, Insert and Delete from range check to notify.
	writeMu sync.Mutex

	mu     sync.Mutex
	length int
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	o := options{
		logger:   zerolog.Nop(),
		pageSize: DefaultPageSize,
		maxPages: defaultMaxPages,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = o.logger.With().Str("component", "store").Logger()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to store %s: %w", path, err)
	}
	if _, err = db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	if err = checkSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	pages, err := lru.New[int, []Item](o.maxPages)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating page cache: %w", err)
	}

	s := &Store{
		db:    db,
		path:  path,
		opts:  o,
		pages: pages,
	}
	if err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&s.length); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("counting items: %w", err)
	}

	o.logger.Debug().Str("path", path).Int("length", s.length).Msg("store opened")
	return s, nil
}

func checkSchema(ctx context.Context, db *sql.DB) error {
	var version int
	err := db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err = db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("recording schema version: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("reading schema version: %w", err)
	case version != schemaVersion:
		return fmt.Errorf("store schema version %d, want %d", version, schemaVersion)
	}
	return nil
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Len returns the number of items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.length
}

// At returns the item at index. Read failures are logged and yield the zero
// Item, since list hosts cannot act on them mid-render.
func (s *Store) At(index int) Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= s.length {
		return Item{}
	}
	number := index / s.opts.pageSize
	items, ok := s.pages.Get(number)
	if !ok {
		var err error
		items, err = s.loadPage(number)
		if err != nil {
			s.opts.logger.Warn().Err(err).Int("index", index).Msg("reading item page")
			return Item{}
		}
		s.pages.Add(number, items)
	}

	offset := index - number*s.opts.pageSize
	if offset >= len(items) {
		return Item{}
	}
	return items[offset]
}

// HeightFunc returns the stored heights as a layout height function.
func (s *Store) HeightFunc() layout.HeightFunc {
	return func(index int) float64 {
		return s.At(index).Height
	}
}

// Seed replaces every stored item with items.
func (s *Store) Seed(ctx context.Context, items []Item) error {
	items, err := normalize(items)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var removed int
	err = s.write(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&removed); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM items"); err != nil {
			return err
		}
		return insertRows(ctx, tx, 0, items)
	})
	if err != nil {
		return fmt.Errorf("seeding store: %w", err)
	}

	s.applyLength(func(int) int { return len(items) })
	s.Notify(source.Mutation{Start: 0, Removed: removed, Added: len(items)})
	return nil
}

// Insert places items before index. index may equal Len to append.
func (s *Store) Insert(ctx context.Context, index int, items ...Item) error {
	if len(items) == 0 {
		return nil
	}
	items, err := normalize(items)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if n := s.Len(); index < 0 || index > n {
		return fmt.Errorf("%w: insert at %d, length %d", ErrOutOfRange, index, n)
	}

	err = s.write(ctx, func(tx *sql.Tx) error {
		if err := shift(ctx, tx, index, len(items)); err != nil {
			return err
		}
		return insertRows(ctx, tx, index, items)
	})
	if err != nil {
		return fmt.Errorf("inserting into store: %w", err)
	}

	s.applyLength(func(n int) int { return n + len(items) })
	s.Notify(source.Mutation{Start: index, Added: len(items)})
	return nil
}

// Delete removes count items starting at index.
func (s *Store) Delete(ctx context.Context, index, count int) error {
	if count == 0 {
		return nil
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if n := s.Len(); index < 0 || count < 0 || index+count > n {
		return fmt.Errorf("%w: delete [%d,%d), length %d", ErrOutOfRange, index, index+count, n)
	}

	err := s.write(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM items WHERE position >= ? AND position < ?", index, index+count); err != nil {
			return err
		}
		return shift(ctx, tx, index+count, -count)
	})
	if err != nil {
		return fmt.Errorf("deleting from store: %w", err)
	}

	s.applyLength(func(n int) int { return n - count })
	s.Notify(source.Mutation{Start: index, Removed: count})
	return nil
}

func (s *Store) write(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// applyLength replaces the length with next(length) and drops every cached
// page, under one lock.
func (s *Store) applyLength(next func(n int) int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.length = next(s.length)
	s.pages.Purge()
}

func (s *Store) loadPage(number int) ([]Item, error) {
	from := number * s.opts.pageSize
	rows, err := s.db.Query(
		"SELECT label, height FROM items WHERE position >= ? AND position < ? ORDER BY position",
		from, from+s.opts.pageSize,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Item, 0, s.opts.pageSize)
	for rows.Next() {
		var it Item
		if err = rows.Scan(&it.Label, &it.Height); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// shift moves every position at or after from by delta. Positions are
// negated first so the primary key never collides mid-update.
func shift(ctx context.Context, tx *sql.Tx, from, delta int) error {
	if _, err := tx.ExecContext(ctx,
		"UPDATE items SET position = -(position + ?) - 1 WHERE position >= ?", delta, from); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, "UPDATE items SET position = -position - 1 WHERE position < 0")
	return err
}

func insertRows(ctx context.Context, tx *sql.Tx, start int, items []Item) error {
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO items (position, label, height) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, it := range items {
		if _, err = stmt.ExecContext(ctx, start+i, it.Label, it.Height); err != nil {
			return err
		}
	}
	return nil
}

// normalize rejects invalid heights and returns a copy with zero heights set
// to 1.
func normalize(items []Item) ([]Item, error) {
	out := make([]Item, len(items))
	for i, it := range items {
		if it.Height < 0 || math.IsNaN(it.Height) || math.IsInf(it.Height, 0) {
			return nil, fmt.Errorf("%w: item %d has height %v", ErrInvalidHeight, i, it.Height)
		}
		if it.Height == 0 {
			it.Height = 1
		}
		out[i] = it
	}
	return out, nil
}
