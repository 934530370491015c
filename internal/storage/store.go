// Package storage provides read-only sessions over the converted ledger store.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/config"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/observability"
)

// ErrNoStore indicates the configured store does not exist. Store.Open never
// returns it; callers see an empty session instead. It is exposed for
// entrypoints that want to warn about a missing database up front.
var ErrNoStore = errors.New("ledger store not found")

// Row is one result row keyed by column name. NULL columns read as "".
type Row map[string]string

// Session is a short-lived read-only connection to the store.
type Session interface {
	Select(ctx context.Context, query string, args ...interface{}) ([]Row, error)
	Close() error
}

// Store opens sessions. Each question gets its own session.
type Store interface {
	Open(ctx context.Context) (Session, error)
}

// SQLStore opens database/sql sessions against SQLite or Postgres.
type SQLStore struct {
	driver string
	dsn    string
	logger *observability.Logger
}

// NewSQLStore creates a store for the given database/sql driver name
// ("sqlite3" or "postgres") and DSN.
func NewSQLStore(driver, dsn string, logger *observability.Logger) *SQLStore {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &SQLStore{driver: driver, dsn: dsn, logger: logger}
}

// NewStoreFromConfig maps the configured database onto a SQLStore.
func NewStoreFromConfig(cfg *config.Config, logger *observability.Logger) (*SQLStore, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		return NewSQLStore("sqlite3", cfg.DatabaseDSN(), logger), nil
	case "postgres":
		return NewSQLStore("postgres", cfg.DatabaseDSN(), logger), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

// Check reports ErrNoStore when the SQLite file is missing.
func (s *SQLStore) Check() error {
	if s.missing() {
		return fmt.Errorf("%w: %s", ErrNoStore, s.dsn)
	}
	return nil
}

// Open connects to the store. A missing SQLite file yields an empty session
// so every read degrades to "no rows" rather than failing.
func (s *SQLStore) Open(ctx context.Context) (Session, error) {
	if s.missing() {
		s.logger.Debug().Str("dsn", s.dsn).Msg("Ledger store missing, using empty session")
		return emptySession{}, nil
	}

	db, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &dbSession{db: db}, nil
}

func (s *SQLStore) missing() bool {
	if s.driver != "sqlite3" || s.dsn == ":memory:" || strings.HasPrefix(s.dsn, "file:") {
		return false
	}
	_, err := os.Stat(s.dsn)
	return errors.Is(err, os.ErrNotExist)
}

type dbSession struct {
	db *sql.DB
}

func (s *dbSession) Select(ctx context.Context, query string, args ...interface{}) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Row
	values := make([]sql.NullString, len(cols))
	dest := make([]interface{}, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = values[i].String
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *dbSession) Close() error {
	return s.db.Close()
}

type emptySession struct{}

func (emptySession) Select(context.Context, string, ...interface{}) ([]Row, error) {
	return nil, nil
}

func (emptySession) Close() error { return nil }

// Args accumulates positional query arguments and hands out their
// placeholders. Placeholders must be requested in the order they appear in
// the SQL text.
type Args struct {
	values []interface{}
}

// Add appends v and returns its placeholder.
func (a *Args) Add(v interface{}) string {
	a.values = append(a.values, v)
	return "$" + strconv.Itoa(len(a.values))
}

// In appends every value and returns a comma separated placeholder list for
// an IN (...) clause.
func (a *Args) In(vals []string) string {
	ph := make([]string, len(vals))
	for i, v := range vals {
		ph[i] = a.Add(v)
	}
	return strings.Join(ph, ", ")
}

// Values returns the accumulated arguments.
func (a *Args) Values() []interface{} {
	return a.values
}
