// Command dbcheck opens the configured database, applies pending
// migrations and reports the schema state. It is meant for deployment
// checks where starting the full API is not wanted.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"time"

	"github.com/carebook-io/carebook/internal/config"
	"github.com/carebook-io/carebook/internal/database"
)

var tables = []string{"users", "personal_access_tokens", "appointments", "doctors"}

func main() {
	configPath := flag.String("config", "app.yml", "Path to configuration file")
	envPath := flag.String("env", ".env", "Path to an optional .env file")
	flag.Parse()

	if err := config.LoadDotEnv(*envPath); err != nil {
		log.Fatalf("Failed to load %s: %v", *envPath, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, *configPath, os.Stdout); err != nil {
		log.Fatalf("Database check failed: %v", err)
	}
}

func run(ctx context.Context, configPath string, out io.Writer) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(out, "Database: %s\n", db.Dialect)

	applied, err := database.AppliedMigrations(ctx, db.DB)
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	versions := make([]int, 0, len(applied))
	for v := range applied {
		versions = append(versions, v)
	}
	sort.Ints(versions)
	fmt.Fprintf(out, "Applied migrations: %v\n", versions)

	for _, table := range tables {
		var count int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			return fmt.Errorf("count %s: %w", table, err)
		}
		fmt.Fprintf(out, "%-24s %d rows\n", table, count)
	}
	return nil
}
