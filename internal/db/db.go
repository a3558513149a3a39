// Package db opens the task store selected by configuration.
package db

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"todo/internal/config"
	"todo/pkg/store"
)

// Connect opens a PostgreSQL pool. An empty url falls back to DATABASE_URL.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		return nil, fmt.Errorf("no database url configured")
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// Open connects the configured store, ensures its table exists and wraps it
// in a Bus. The returned func releases the connection.
func Open(ctx context.Context, cfg config.StoreConfig) (*store.Bus, func(), error) {
	var (
		s       store.Store
		closeFn = func() {}
	)
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect: %w", err)
		}
		s, closeFn = store.NewPgStore(pool), pool.Close
	case config.DriverSQLite, "":
		lite, err := store.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		s = lite
		closeFn = func() {
			if err := lite.Close(); err != nil {
				log.Printf("db: close sqlite: %v", err)
			}
		}
	case config.DriverMemory:
		s = store.NewMemStore()
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}

	if err := s.EnsureTable(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("ensure tasks table: %w", err)
	}
	return store.NewBus(s), closeFn, nil
}
