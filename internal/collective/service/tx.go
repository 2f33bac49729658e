package service

import (
	"context"
	"errors"
	"time"

	dErrors "opencollective/pkg/domain-errors"
	txcontext "opencollective/pkg/platform/tx"
)

const defaultMemoryTxTimeout = 5 * time.Second

// MemoryTx serializes units of work against the in-memory stores and undoes
// their writes when the unit fails. Store reads outside the unit wait until it
// commits or rolls back.
type MemoryTx struct {
	timeout time.Duration
}

func NewMemoryTx() *MemoryTx {
	return &MemoryTx{timeout: defaultMemoryTxTimeout}
}

func (t *MemoryTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	txCtx, journal, release := txcontext.Begin(ctx)
	defer release()
	if err := fn(txCtx); err != nil {
		journal.Rollback()
		if errors.Is(err, context.DeadlineExceeded) {
			return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction timed out")
		}
		return err
	}
	if err := ctx.Err(); err != nil {
		journal.Rollback()
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction timed out")
	}
	return nil
}
