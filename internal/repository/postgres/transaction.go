package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"arbor/internal/domain/repositories"
)

// TransactionManager implements repositories.TransactionManager on a pgx pool
type TransactionManager struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(pool *pgxpool.Pool, logger *slog.Logger) repositories.TransactionManager {
	return &TransactionManager{pool: pool, logger: logger}
}

// ExecTx executes fn within a transaction. If ctx already carries one, fn joins it.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn, opts ...repositories.TxOption) error {
	if GetTx(ctx) != nil {
		return fn(ctx)
	}

	options := repositories.ApplyTxOptions(opts...)
	tx, err := tm.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: isoLevel(options.Isolation)})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	// Safe even if commit succeeds
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			tm.logger.Warn("rollback failed", "error", err)
		}
	}()

	if err := fn(SetTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func isoLevel(level repositories.IsolationLevel) pgx.TxIsoLevel {
	switch level {
	case repositories.Serializable:
		return pgx.Serializable
	default:
		return pgx.ReadCommitted
	}
}
