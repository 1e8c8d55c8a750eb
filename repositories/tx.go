package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/utils"
)

// TxRunner runs a unit of work in a serializable transaction and re-runs the
// whole unit when Postgres reports a serialization failure or deadlock.
type TxRunner struct {
	db     *pgxpool.Pool
	policy utils.RetryPolicy
	logger *zap.Logger
}

func NewTxRunner(db *pgxpool.Pool, policy utils.RetryPolicy, logger *zap.Logger) *TxRunner {
	return &TxRunner{db: db, policy: policy, logger: logger}
}

func (r *TxRunner) Run(ctx context.Context, unit string, fn func(tx pgx.Tx) error) error {
	return r.retry(ctx, unit, func() error {
		return pgx.BeginTxFunc(ctx, r.db, pgx.TxOptions{IsoLevel: pgx.Serializable}, fn)
	})
}

// retry counts every re-run of attempt under unit and reports exhaustion as
// ErrTxAborted.
func (r *TxRunner) retry(ctx context.Context, unit string, attempt func() error) error {
	err := utils.Retry(ctx, r.policy, isRetryable, func(n int) error {
		if n > 1 {
			txRetries.WithLabelValues(unit).Inc()
			r.logger.Debug("retrying transaction", zap.String("unit", unit), zap.Int("attempt", n))
		}
		return attempt()
	})
	if errors.Is(err, utils.ErrRetriesExhausted) {
		return fmt.Errorf("%s: %w: %w", unit, ErrTxAborted, err)
	}
	return err
}
