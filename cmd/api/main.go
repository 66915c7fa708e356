package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/carebook-io/carebook/internal/api"
	"github.com/carebook-io/carebook/internal/config"
	"github.com/carebook-io/carebook/internal/database"
	"github.com/carebook-io/carebook/internal/store"
)

const version = "0.1.0"

// initializeAPI loads configuration, opens the database and wires the API.
// The caller owns the returned database handle.
func initializeAPI(ctx context.Context, configPath string) (*api.Api, *database.DB, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	db, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	a, err := api.NewApi(*cfg, store.New(db))
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	return a, db, nil
}

func main() {
	configPath := flag.String("config", "app.yml", "Path to configuration file")
	envPath := flag.String("env", ".env", "Path to an optional .env file")
	flag.Parse()

	if err := config.LoadDotEnv(*envPath); err != nil {
		log.Fatalf("Failed to load %s: %v", *envPath, err)
	}

	log.Printf("Starting Carebook API v%s with config: %s", version, *configPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, db, err := initializeAPI(ctx, *configPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := a.Serve(ctx); err != nil {
		log.Printf("API server stopped: %v", err)
		return
	}
	log.Printf("API server stopped")
}
