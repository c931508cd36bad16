package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a content row or attempt does not exist.
var ErrNotFound = errors.New("not found")

// Store owns the database handle and hands out repositories.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
	seq *sequenceCounter
}

// pragmas are applied on every pooled connection through the DSN so that
// foreign keys and the busy timeout hold regardless of which connection
// database/sql picks.
var pragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"foreign_keys(1)",
	"synchronous(NORMAL)",
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies the connection pragmas and runs auto-migration.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	if err := migrate(context.Background(), drv); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, drv: drv, seq: seq}, nil
}

func migrate(ctx context.Context, drv *entsql.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	return m.Create(ctx, Tables...)
}

// withPragmas appends the connection pragmas and the time format to dsn.
func withPragmas(dsn string) string {
	params := url.Values{}
	for _, p := range pragmas {
		params.Add("_pragma", p)
	}
	params.Set("_time_format", "sqlite")
	// Transactions take the write lock on BEGIN so a read inside one never
	// has to be upgraded against a concurrent writer.
	params.Set("_txlock", "immediate")

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + params.Encode()
}

// querier is the part of *sql.DB and *sql.Tx the repositories use.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// atomic runs fn in a transaction on q. When q already is a transaction fn
// joins it.
func atomic(ctx context.Context, q querier, fn func(q querier) error) error {
	db, ok := q.(*sql.DB)
	if !ok {
		return fn(q)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Tx hands out repositories bound to one transaction. It is only valid
// inside the function passed to InTx.
type Tx struct {
	tx  *sql.Tx
	seq *sequenceCounter
}

// InTx runs fn in one transaction and commits when fn returns nil. Every
// write fn makes must go through the repositories of tx: the transaction
// holds the database write lock until it ends.
func (s *Store) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	return atomic(ctx, s.db, func(q querier) error {
		return fn(&Tx{tx: q.(*sql.Tx), seq: s.seq})
	})
}

func (t *Tx) ContentRepo() ContentRepo           { return &contentRepo{db: t.tx} }
func (t *Tx) ProgressRepo() ProgressRepo         { return &progressRepo{db: t.tx} }
func (t *Tx) AttemptRepo() AttemptRepo           { return &attemptRepo{db: t.tx} }
func (t *Tx) SubscriptionRepo() SubscriptionRepo { return &subscriptionRepo{db: t.tx} }
func (t *Tx) EventRepo() EventRepo               { return &eventRepo{db: t.tx, seq: t.seq} }

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// ContentRepo returns the course content repository.
func (s *Store) ContentRepo() ContentRepo {
	return &contentRepo{db: s.db}
}

// ProgressRepo returns the per-user progress repository.
func (s *Store) ProgressRepo() ProgressRepo {
	return &progressRepo{db: s.db}
}

// AttemptRepo returns the drill attempt repository.
func (s *Store) AttemptRepo() AttemptRepo {
	return &attemptRepo{db: s.db}
}

// SubscriptionRepo returns the subscription repository.
func (s *Store) SubscriptionRepo() SubscriptionRepo {
	return &subscriptionRepo{db: s.db}
}

// EventRepo returns the append-only event log.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db, seq: s.seq}
}

// builder returns an SQL builder for the SQLite dialect.
func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// DefaultDBPath resolves the database file path in priority order:
// 1. DRILLZ_DB environment variable
// 2. $XDG_DATA_HOME/drillz/drillz.db
// 3. ~/.local/share/drillz/drillz.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("DRILLZ_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "drillz", "drillz.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of a database file.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
