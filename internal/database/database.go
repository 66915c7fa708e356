package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/carebook-io/carebook/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"
)

// Supported values of database.type.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
	DialectPgx      = "pgx"
)

// DB wraps the connection pool together with the SQL dialect it speaks.
type DB struct {
	*sql.DB
	Dialect string
}

// Open connects to the configured database, verifies the connection and
// applies any pending migrations.
func Open(ctx context.Context, cfg *config.Config) (*DB, error) {
	log.Printf("[DB] Opening %s database", cfg.Database.Type)

	var (
		conn *sql.DB
		err  error
	)
	switch cfg.Database.Type {
	case DialectSQLite, "":
		conn, err = openSQLite(cfg.Database.Path)
	case DialectPostgres:
		conn, err = sql.Open("postgres", cfg.Database.DSN)
	case DialectPgx:
		conn, err = openPgx(cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}
	if err != nil {
		return nil, err
	}

	dialect := cfg.Database.Type
	if dialect == "" {
		dialect = DialectSQLite
	}

	if dialect == DialectSQLite {
		// A single writer avoids "database is locked" errors.
		conn.SetMaxOpenConns(1)
	} else {
		if cfg.Database.MaxOpenConns > 0 {
			conn.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		}
		if cfg.Database.MaxIdleConns > 0 {
			conn.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		}
		if cfg.Database.ConnMaxLifetime > 0 {
			conn.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := RunMigrations(ctx, conn, dialect); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Printf("[DB] Database ready (%s)", dialect)
	return &DB{DB: conn, Dialect: dialect}, nil
}

func openSQLite(path string) (*sql.DB, error) {
	if path != ":memory:" {
		dataDir := filepath.Dir(path)
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	return db, nil
}

func openPgx(dsn string) (*sql.DB, error) {
	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database DSN: %w", err)
	}
	return stdlib.OpenDB(*connConfig), nil
}

// Rebind rewrites ? placeholders into the $n form postgres expects. Queries
// in this module never contain a literal question mark.
func Rebind(dialect, query string) string {
	if dialect == DialectSQLite || dialect == "" {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
