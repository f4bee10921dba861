package db

import (
	"context"
	"fmt"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/bloglist/backend/internal/common/constants"
	"github.com/AlibekovAA/bloglist/backend/internal/observability/metrics"
)

// TxManager runs a unit of work in one transaction. The post repository
// uses it to keep posts.owner_id and users.post_ids in step.
type TxManager interface {
	WithTx(ctx context.Context, operation string, fn func(context.Context, pgx.Tx) error) error
}

type PgTxManager struct {
	pool    *pgxpool.Pool
	options pgx.TxOptions
}

func NewPgTxManager(pool *pgxpool.Pool) *PgTxManager {
	return &PgTxManager{pool: pool, options: pgx.TxOptions{IsoLevel: pgx.ReadCommitted}}
}

// WithTx commits when fn returns nil and rolls back on error or panic.
// Every outcome is counted in db_transactions_total.
func (m *PgTxManager) WithTx(ctx context.Context, operation string, fn func(context.Context, pgx.Tx) error) (err error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	outcome := "commit"
	defer func() {
		metrics.DBTransactionsTotal.WithLabelValues(operation, outcome).Inc()
	}()

	tx, err := m.pool.BeginTx(ctx, m.options)
	if err != nil {
		outcome = "begin_failed"
		return fmt.Errorf("%s: begin: %w", operation, err)
	}

	defer func() {
		if p := recover(); p != nil {
			outcome = "rollback"
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		outcome = "rollback"
		_ = tx.Rollback(ctx)
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		outcome = "commit_failed"
		return fmt.Errorf("%s: commit: %w", operation, err)
	}
	return nil
}
