package postgres

import (
	"supplyStore/domain"
	"supplyStore/pkg/database/databasetest"
	"supplyStore/pkg/pagination"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserRepositoryBalanceUpdates(t *testing.T) {
	db := databasetest.New(t)
	repo := NewUserRepository(db)

	a := seedUser(t, db, "a@example.com", 50)

	ok, err := repo.DebitBalance(bg, a.ID, 30)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.DebitBalance(bg, a.ID, 21)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = repo.DebitBalance(bg, 999, 1)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = repo.CreditBalance(bg, a.ID, 5)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := repo.FindByID(bg, a.ID)
	require.NoError(t, err)
	require.EqualValues(t, 25, got.Balance)
}

func TestUserRepositoryLockByIDs(t *testing.T) {
	db := databasetest.New(t)
	repo := NewUserRepository(db)

	b := seedUser(t, db, "b@example.com", 1)
	a := seedUser(t, db, "a@example.com", 2)

	users, err := repo.LockByIDs(bg, []uint64{a.ID, b.ID, 404})
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Less(t, users[0].ID, users[1].ID)

	_, err = repo.FindByEmail(bg, "nobody@example.com")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLedgerRepositoryFindByAccount(t *testing.T) {
	db := databasetest.New(t)
	repo := NewLedgerRepository(db)

	for _, e := range []domain.Transaction{
		{FromID: 1, ToID: 2, Amount: 10},
		{FromID: 2, ToID: 3, Amount: 5},
		{FromID: 3, ToID: 1, Amount: 1},
	} {
		entry := e
		require.NoError(t, repo.Create(bg, &entry))
	}

	entries, total, err := repo.FindByAccount(bg, 1, pagination.Params{})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, entries, 2)
	require.EqualValues(t, 1, entries[0].Amount)
}
