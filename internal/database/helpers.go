package database

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/lib/pq"
)

// getContext creates a context with timeout
func getContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back on error. A serialization or deadlock failure is retried once.
func WithTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	err := runTx(db, fn)
	if err != nil && isRetryable(err) {
		slog.Warn("retrying transaction after transient failure", "error", err)
		err = runTx(db, fn)
	}
	return err
}

func runTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("Failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

// isRetryable reports whether the error is a transient serialization or
// deadlock failure worth one retry.
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// 40001 serialization_failure, 40P01 deadlock_detected
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return strings.Contains(err.Error(), "connection reset by peer")
}
