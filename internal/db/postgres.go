package db

import (
	"context"
	"fmt"
	"time"

	"ecoreport/pkg/types"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	schemaName  = "ecoreport"
	pingTimeout = 5 * time.Second
)

// Connect opens the pool and verifies it with a ping. Repositories qualify
// their tables with the schema; search_path covers ad-hoc SQL such as the
// migration file.
func Connect(ctx context.Context, config *types.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	runtime := poolConfig.ConnConfig.RuntimeParams
	if _, ok := runtime["search_path"]; !ok {
		runtime["search_path"] = schemaName
	}
	if _, ok := runtime["application_name"]; !ok {
		runtime["application_name"] = "ecoreport"
	}

	if config.DatabaseMaxConns > 0 {
		poolConfig.MaxConns = config.DatabaseMaxConns
	}
	poolConfig.MaxConnIdleTime = 15 * time.Minute
	poolConfig.MaxConnLifetime = 45 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
