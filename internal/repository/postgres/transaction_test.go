package postgres

import (
	"context"
	"errors"
	"supplyStore/domain"
	"supplyStore/pkg/database/databasetest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestWithinTransactionCommitsAndRollsBack(t *testing.T) {
	db := databasetest.New(t)
	tm := NewTxManager(db, time.Second)
	users := NewUserRepository(db)

	err := tm.WithinTransaction(bg, func(ctx context.Context) error {
		return users.Create(ctx, &domain.User{Name: "a", Email: "a@example.com", Password: "x", Role: domain.RoleCustomer})
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, countRows(t, db, &domain.User{}))

	boom := errors.New("boom")
	err = tm.WithinTransaction(bg, func(ctx context.Context) error {
		if err := users.Create(ctx, &domain.User{Name: "b", Email: "b@example.com", Password: "x", Role: domain.RoleCustomer}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.EqualValues(t, 1, countRows(t, db, &domain.User{}))
}

func TestWithinTransactionKeepsDomainErrors(t *testing.T) {
	db := databasetest.New(t)
	tm := NewTxManager(db, 0)

	err := tm.WithinTransaction(bg, func(ctx context.Context) error {
		return domain.Invariantf("insufficient balance")
	})
	require.ErrorIs(t, err, domain.ErrInvariant)
	require.Equal(t, "insufficient balance", err.Error())
}

func TestWithinTransactionNested(t *testing.T) {
	db := databasetest.New(t)
	tm := NewTxManager(db, 0)
	users := NewUserRepository(db)

	err := tm.WithinTransaction(bg, func(ctx context.Context) error {
		return tm.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := users.Create(ctx, &domain.User{Name: "n", Email: "n@example.com", Password: "x", Role: domain.RoleCustomer}); err != nil {
				return err
			}
			return domain.Conflictf("abort")
		})
	})
	require.ErrorIs(t, err, domain.ErrConflict)
	require.EqualValues(t, 0, countRows(t, db, &domain.User{}))
}

func TestWithinTransactionExpiredContextIsUnavailable(t *testing.T) {
	db := databasetest.New(t)
	tm := NewTxManager(db, 0)

	ctx, cancel := context.WithDeadline(bg, time.Now().Add(-time.Second))
	defer cancel()

	called := false
	err := tm.WithinTransaction(ctx, func(ctx context.Context) error {
		called = true
		return nil
	})
	require.False(t, called)
	require.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestStorageErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind domain.ErrorKind
	}{
		{"deadlock", &pgconn.PgError{Code: "40P01"}, domain.KindUnavailable},
		{"serialization", &pgconn.PgError{Code: "40001"}, domain.KindUnavailable},
		{"lock timeout", &pgconn.PgError{Code: "55P03"}, domain.KindUnavailable},
		{"unique violation", &pgconn.PgError{Code: "23505"}, domain.KindConflict},
		{"deadline", context.DeadlineExceeded, domain.KindUnavailable},
		{"other", errors.New("disk full"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := storageError(tt.err, "do thing")
			require.Error(t, err)
			require.Equal(t, tt.kind, domain.KindOf(err))
			require.ErrorIs(t, err, tt.err)
		})
	}

	require.NoError(t, storageError(nil, "noop"))
}
