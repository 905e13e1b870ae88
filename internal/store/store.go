// Package store keeps a durable journal of a ledger in SQLite: the initial
// section costs and every accepted update in arrival order. Replaying the
// journal rebuilds the ledger.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/Sumatoshi-tech/roadsplit/pkg/ledger"
)

const schemaVersion = 1

// Sentinel errors.
var (
	// ErrNotInitialized indicates a journal with no sections recorded yet.
	ErrNotInitialized = errors.New("journal is not initialized")
	// ErrAlreadyInitialized indicates Init on a journal that already has sections.
	ErrAlreadyInitialized = errors.New("journal is already initialized")
	// ErrCorruptJournal indicates journal rows that do not replay into a valid ledger.
	ErrCorruptJournal = errors.New("corrupt journal")
)

var pragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = FULL",
	"PRAGMA busy_timeout = 5000",
}

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);
INSERT INTO schema_version (version) VALUES (1);

CREATE TABLE IF NOT EXISTS sections (
	idx          INTEGER PRIMARY KEY,
	initial_cost INTEGER NOT NULL CHECK (initial_cost > 0)
);

CREATE TABLE IF NOT EXISTS updates (
	seq     INTEGER PRIMARY KEY AUTOINCREMENT,
	section INTEGER NOT NULL REFERENCES sections(idx),
	day     INTEGER NOT NULL UNIQUE,
	cost    INTEGER NOT NULL CHECK (cost > 0)
);
`

// Store is a SQLite-backed ledger journal.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens or creates the journal at path.
func Open(ctx context.Context, path string) (*Store, error) {
	err := os.MkdirAll(filepath.Dir(path), 0o700)
	if err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	// A single connection serializes writers and keeps pragmas in effect.
	db.SetMaxOpenConns(1)

	for _, pragma := range pragmas {
		_, err = db.ExecContext(ctx, pragma)
		if err != nil {
			db.Close()

			return nil, fmt.Errorf("set %q: %w", pragma, err)
		}
	}

	s := &Store{db: db, path: path}

	err = s.initSchema(ctx)
	if err != nil {
		db.Close()

		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}

// Path returns the journal file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var version int

	err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		_, err = s.db.ExecContext(ctx, schema)
		if err != nil {
			return fmt.Errorf("create schema: %w", err)
		}

		return nil
	}

	if version > schemaVersion {
		return fmt.Errorf("journal schema version %d is newer than supported version %d", version, schemaVersion)
	}

	return nil
}

// Initialized reports whether the journal holds its section costs.
func (s *Store) Initialized(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.countSections(ctx, s.db)
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) countSections(ctx context.Context, q queryer) (int, error) {
	var n int

	err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM sections").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count sections: %w", err)
	}

	return n, nil
}

// Init records the initial section costs. It fails on a journal that is
// already initialized.
func (s *Store) Init(ctx context.Context, initialCosts []int64) error {
	_, err := ledger.New(initialCosts)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin init: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit.

	n, err := s.countSections(ctx, tx)
	if err != nil {
		return err
	}

	if n > 0 {
		return ErrAlreadyInitialized
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO sections (idx, initial_cost) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("prepare section insert: %w", err)
	}
	defer stmt.Close()

	for idx, cost := range initialCosts {
		_, err = stmt.ExecContext(ctx, idx, cost)
		if err != nil {
			return fmt.Errorf("insert section %d: %w", idx, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("commit init: %w", err)
	}

	return nil
}

// Append records an accepted update. Callers validate the update against the
// ledger first; the journal only enforces what its schema can.
func (s *Store) Append(ctx context.Context, section int, day, cost int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO updates (section, day, cost) VALUES (?, ?, ?)", section, day, cost)
	if err != nil {
		return fmt.Errorf("insert update: %w", err)
	}

	return nil
}

// Load replays the journal into a new ledger.
func (s *Store) Load(ctx context.Context) (*ledger.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	costs, err := s.loadSections(ctx)
	if err != nil {
		return nil, err
	}

	if len(costs) == 0 {
		return nil, ErrNotInitialized
	}

	l, err := ledger.New(costs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptJournal, err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT seq, section, day, cost FROM updates ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("query updates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			seq, day, cost int64
			section        int
		)

		err = rows.Scan(&seq, &section, &day, &cost)
		if err != nil {
			return nil, fmt.Errorf("scan update: %w", err)
		}

		err = l.Append(section, day, cost)
		if err != nil {
			return nil, fmt.Errorf("%w: update %d: %w", ErrCorruptJournal, seq, err)
		}
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("read updates: %w", err)
	}

	return l, nil
}

func (s *Store) loadSections(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT idx, initial_cost FROM sections ORDER BY idx")
	if err != nil {
		return nil, fmt.Errorf("query sections: %w", err)
	}
	defer rows.Close()

	var costs []int64

	for rows.Next() {
		var (
			idx  int
			cost int64
		)

		err = rows.Scan(&idx, &cost)
		if err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}

		if idx != len(costs) {
			return nil, fmt.Errorf("%w: section index %d, want %d", ErrCorruptJournal, idx, len(costs))
		}

		costs = append(costs, cost)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("read sections: %w", err)
	}

	return costs, nil
}

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
