package postgres

import (
	"context"
	"errors"
	"fmt"
	"supplyStore/domain"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type txKey struct{}

// TxManager runs business operations inside one database transaction.
// Repositories pick the active transaction up from the context.
type TxManager struct {
	DB          *gorm.DB
	lockTimeout time.Duration
}

func NewTxManager(db *gorm.DB, lockTimeout time.Duration) *TxManager {
	return &TxManager{
		DB:          db,
		lockTimeout: lockTimeout,
	}
}

// WithinTransaction commits when fn returns nil and rolls back otherwise.
// Nested calls join the outer transaction.
func (m *TxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return storageError(err, "begin transaction")
	}

	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	err := m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if m.lockTimeout > 0 && tx.Dialector.Name() == "postgres" {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", m.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}

		return fn(context.WithValue(ctx, txKey{}, tx))
	})

	return storageError(err, "commit transaction")
}

// conn returns the transaction bound to ctx, or the base handle.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

// Postgres SQLSTATE codes that mean "try again later".
var retryableCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
	"57014": true, // query_canceled (statement/lock timeout)
}

const uniqueViolation = "23505"

func isRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return retryableCodes[pgErr.Code]
	}

	return false
}

// storageError keeps typed business errors as they are, turns contention and
// timeouts into domain Unavailable errors, and wraps everything else.
func storageError(err error, op string) error {
	if err == nil {
		return nil
	}

	var derr *domain.Error
	if errors.As(err, &derr) {
		return err
	}

	if isRetryable(err) {
		return domain.Unavailable(err, "storage is busy, please retry")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &domain.Error{Kind: domain.KindConflict, Message: "resource already exists", Err: err}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &domain.Error{Kind: domain.KindConflict, Message: "resource already exists", Err: err}
	}

	return fmt.Errorf("failed to %s: %w", op, err)
}
