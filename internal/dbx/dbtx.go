// Package dbx holds the small database/sql seam the local stores share.
package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DBTX is what a repository needs from its handle. *sql.DB and *sql.Tx both
// satisfy it, so the same repository code runs inside and outside a
// transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxStarter is implemented by *sql.DB.
type TxStarter interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// WithTx runs fn in a fresh transaction. It commits when fn returns nil and
// rolls back when fn fails or panics; a panic is re-raised after rollback.
// Begin and commit failures are wrapped, fn's own error is returned as is.
func WithTx(ctx context.Context, db TxStarter, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) && err != nil {
			err = errors.Join(err, fmt.Errorf("rollback tx: %w", rbErr))
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

// InTx runs fn inside a new transaction when h can start one, or directly on
// h when h is already transactional (a *sql.Tx handed down by WithTx).
// Nested metadata updates therefore join the outer transaction.
func InTx(ctx context.Context, h DBTX, fn func(ctx context.Context, tx DBTX) error) error {
	if starter, ok := h.(TxStarter); ok {
		return WithTx(ctx, starter, nil, fn)
	}
	return fn(ctx, h)
}

// IsNoRows reports whether err means the row is absent.
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
