package main

import (
	"context"
	"log"
	"time"

	"github.com/api-sage/bank-one-one/src/internal/adapter/repository/postgres"
	"github.com/api-sage/bank-one-one/src/internal/adapter/repository/sqlite"
	"github.com/api-sage/bank-one-one/src/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		store, err := postgres.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("open postgres store: %v", err)
		}
		defer store.Close()

		if err := postgres.RunMigrations(ctx, store.DB()); err != nil {
			log.Fatalf("run migrations: %v", err)
		}
	case config.StoreDriverSQLite:
		// Opening the store applies its migrations.
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			log.Fatalf("open sqlite store: %v", err)
		}
		defer store.Close()
	default:
		log.Printf("store driver %q has no migrations", cfg.StoreDriver)
		return
	}

	log.Println("migrations completed successfully")
}
