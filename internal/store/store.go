package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/carebook-io/carebook/internal/database"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("record not found")

// Store handles all database operations
type Store struct {
	db      *sql.DB
	dialect string
}

// New creates a new store instance
func New(db *database.DB) *Store {
	return &Store{db: db.DB, dialect: db.Dialect}
}

// rebind adapts a ?-placeholder query to the store's dialect.
func (s *Store) rebind(query string) string {
	return database.Rebind(s.dialect, query)
}

type scanner interface {
	Scan(dest ...any) error
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func now() time.Time {
	return time.Now().UTC()
}

// notFound maps sql.ErrNoRows onto ErrNotFound and leaves other errors as is.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
