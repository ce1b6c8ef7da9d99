package postgres

import (
	"supplyStore/domain"
	"supplyStore/pkg/database/databasetest"
	"supplyStore/pkg/pagination"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestProductRepositoryFindByIDs(t *testing.T) {
	db := databasetest.New(t)
	repo := NewProductRepository(db)

	a := seedProduct(t, db, "apple", "1.50", 10, domain.ProductStatusActive)
	b := seedProduct(t, db, "banana", "2.00", 5, domain.ProductStatusActive)

	products, err := repo.FindByIDs(bg, []uint64{a.ID, b.ID, 999})
	require.NoError(t, err)
	require.Len(t, products, 2)

	empty, err := repo.FindByIDs(bg, nil)
	require.NoError(t, err)
	require.Empty(t, empty)

	_, err = repo.FindByID(bg, 999)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductRepositoryDecrementStock(t *testing.T) {
	db := databasetest.New(t)
	repo := NewProductRepository(db)

	a := seedProduct(t, db, "apple", "1.50", 10, domain.ProductStatusActive)
	b := seedProduct(t, db, "banana", "2.00", 2, domain.ProductStatusActive)

	t.Run("all rows covered", func(t *testing.T) {
		n, err := repo.DecrementStock(bg, []domain.StockDelta{{ProductID: a.ID, Qty: 4}, {ProductID: b.ID, Qty: 2}})
		require.NoError(t, err)
		require.EqualValues(t, 2, n)
		require.EqualValues(t, 6, stockOf(t, db, a.ID))
		require.EqualValues(t, 0, stockOf(t, db, b.ID))
	})

	t.Run("short row is left unchanged", func(t *testing.T) {
		n, err := repo.DecrementStock(bg, []domain.StockDelta{{ProductID: a.ID, Qty: 1}, {ProductID: b.ID, Qty: 1}})
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
		require.EqualValues(t, 5, stockOf(t, db, a.ID))
		require.EqualValues(t, 0, stockOf(t, db, b.ID))
	})

	t.Run("increment", func(t *testing.T) {
		n, err := repo.IncrementStock(bg, []domain.StockDelta{{ProductID: b.ID, Qty: 3}})
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
		require.EqualValues(t, 3, stockOf(t, db, b.ID))
	})

	t.Run("empty", func(t *testing.T) {
		n, err := repo.DecrementStock(bg, nil)
		require.NoError(t, err)
		require.Zero(t, n)
	})
}

func TestProductRepositoryFindAllFilters(t *testing.T) {
	db := databasetest.New(t)
	repo := NewProductRepository(db)

	seedProduct(t, db, "a", "5.00", 1, domain.ProductStatusActive)
	seedProduct(t, db, "b", "15.00", 30, domain.ProductStatusActive)
	seedProduct(t, db, "c", "25.00", 20, domain.ProductStatusDraft)

	minPrice := decimal.NewFromInt(10)
	products, total, err := repo.FindAll(bg, domain.ProductFilter{
		MinPrice: &minPrice,
		Sort:     domain.ProductSortStock,
		Order:    "desc",
	})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Equal(t, []string{"b", "c"}, []string{products[0].Name, products[1].Name})

	products, total, err = repo.FindAll(bg, domain.ProductFilter{Page: pagination.Params{Page: 2, Limit: 2}})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, products, 1)
	require.Equal(t, "c", products[0].Name)
}
