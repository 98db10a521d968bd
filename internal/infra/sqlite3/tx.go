package sqlite3

import (
	"context"
	"database/sql"
	"fmt"
)

type (
	TxFunc    = func(*sql.Tx) error
	TxManager = func(ctx context.Context, fn TxFunc) error
)

// WithTx оборачивает fn в транзакцию: commit при nil, rollback при ошибке или панике.
func WithTx(db *DB, txOpts *sql.TxOptions) TxManager {
	return func(ctx context.Context, fn TxFunc) error {
		tx, err := db.BeginTx(ctx, txOpts)
		if err != nil {
			return fmt.Errorf("db begin transaction: %w", err)
		}
		defer func() {
			if p := recover(); p != nil {
				_ = tx.Rollback() // Ignore rollback error during panic
				panic(p)
			}
		}()

		if err := fn(tx); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("db transaction error: %v, rollback error: %w", err, rbErr)
			}
			return fmt.Errorf("db transaction error: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("db commit transaction: %w", err)
		}

		return nil
	}
}
