// Package repository holds the generic transaction and query helpers every
// domain repository builds on.
package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// Querier is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Executor is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Scanner is the common surface of *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// ScanFunc reads one row into a T. Each domain package defines its own.
type ScanFunc[T any] func(Scanner) (T, error)

var readOnly = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// WithTx runs fn in a read-write transaction. The transaction commits only
// when fn returns a nil error.
func WithTx[T any](ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) (T, error)) (T, error) {
	return inTx(ctx, db, nil, fn)
}

// RunTx is WithTx for callers with no result.
func RunTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	_, err := inTx(ctx, db, nil, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, fn(tx)
	})
	return err
}

// WithReadTx runs fn in a read-only repeatable-read transaction, so every
// SELECT inside it sees the same snapshot.
func WithReadTx[T any](ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) (T, error)) (T, error) {
	return inTx(ctx, db, readOnly, fn)
}

// inTx always defers Rollback; after a successful Commit it is a no-op.
func inTx[T any](ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(tx *sql.Tx) (T, error)) (T, error) {
	var zero T

	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return zero, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	result, err := fn(tx)
	if err != nil {
		return zero, err
	}
	if err := tx.Commit(); err != nil {
		return zero, fmt.Errorf("commit: %w", err)
	}
	return result, nil
}

// QueryOne scans the first row. A missing row surfaces as sql.ErrNoRows.
func QueryOne[T any](ctx context.Context, q Querier, query string, args []any, scan ScanFunc[T]) (T, error) {
	return scan(q.QueryRowContext(ctx, query, args...))
}

// QueryMany scans every row. The result is never nil, so it encodes as [].
func QueryMany[T any](ctx context.Context, q Querier, query string, args []any, scan ScanFunc[T]) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	return results, rows.Err()
}

// QueryScalar reads a single column from a single row.
func QueryScalar[T any](ctx context.Context, q Querier, query string, args ...any) (T, error) {
	var v T
	err := q.QueryRowContext(ctx, query, args...).Scan(&v)
	return v, err
}

// ExecCount runs a statement and reports how many rows it touched.
func ExecCount(ctx context.Context, e Executor, query string, args ...any) (int64, error) {
	res, err := e.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ExecExpectOne runs a statement that must touch a row. It returns
// sql.ErrNoRows when none matched, so MapError turns it into a not-found.
func ExecExpectOne(ctx context.Context, e Executor, query string, args ...any) error {
	n, err := ExecCount(ctx, e, query, args...)
	if err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return err
}
