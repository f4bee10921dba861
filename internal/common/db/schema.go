package db

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the users and posts tables when they are missing.
// Every statement is idempotent, so running it on each start is safe.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	start := time.Now()
	_, err := pool.Exec(ctx, schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	MeasureQueryDuration("ensure schema", start)
	return nil
}
