package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/stargazer/internal/platform/logger"
	"github.com/phrazzld/stargazer/internal/redact"
)

// SQLSTATE codes for transactions that lost to a concurrent writer.
const (
	serializationFailureCode = "40001"
	deadlockDetectedCode     = "40P01"
)

// TxFn is the body of a transaction. Returning an error rolls it back.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction runs fn inside a transaction and commits when it returns
// nil. A failed or panicking fn is rolled back.
//
// Errors from the driver carrying a serialization failure or deadlock
// SQLSTATE wrap ErrConflict, so a compare-and-swap caller can reload and
// retry. Begin, commit and rollback failures wrap ErrTransactionFailed.
// Any other error from fn is returned unchanged.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) error {
	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", redact.Attr("error", err))
		return fmt.Errorf("%w: begin: %w", ErrTransactionFailed, err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to roll back transaction after panic",
					redact.Attr("error", rbErr),
					slog.Any("panic", p))
			}
			// ALLOW-PANIC: Propagating caught panic from transaction
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		err = classifyTxError(err)
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error("failed to roll back transaction",
				redact.Attr("rollback_error", rbErr),
				redact.Attr("error", err))
			return fmt.Errorf("%w: rollback: %v (original error: %w)", ErrTransactionFailed, rbErr, err)
		}
		if IsConflictError(err) {
			log.Debug("rolled back transaction on write conflict")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		if classified := classifyTxError(err); IsConflictError(classified) {
			log.Debug("commit lost to a concurrent transaction", redact.Attr("error", err))
			return classified
		}
		log.Error("failed to commit transaction", redact.Attr("error", err))
		return fmt.Errorf("%w: commit: %w", ErrTransactionFailed, err)
	}
	return nil
}

// classifyTxError wraps ErrConflict around driver errors whose SQLSTATE
// reports a lost race. pgconn.PgError satisfies the SQLState interface.
func classifyTxError(err error) error {
	if IsConflictError(err) {
		return err
	}
	var stateErr interface{ SQLState() string }
	if !errors.As(err, &stateErr) {
		return err
	}
	switch stateErr.SQLState() {
	case serializationFailureCode, deadlockDetectedCode:
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}
