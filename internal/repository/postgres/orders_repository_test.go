package postgres

import (
	"supplyStore/domain"
	"supplyStore/pkg/database/databasetest"
	"supplyStore/pkg/pagination"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func createOrder(t *testing.T, repo *OrdersRepository, userID uint64, status domain.OrderStatus) domain.Order {
	t.Helper()

	addr := domain.ShippingAddress{RecipientName: "R", Street: "S", City: "C", Province: "P", PostalCode: "12345", Country: "ID", Phone: "+6281"}
	require.NoError(t, repo.CreateShippingAddress(bg, &addr))

	now := time.Now()
	order := domain.Order{
		UserID:            userID,
		ShippingAddressID: addr.ID,
		PaymentMethod:     domain.PaymentMethodCash,
		Status:            status,
		TotalAmount:       decimal.RequireFromString("30.00"),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, repo.CreateOrder(bg, &order))

	items := []domain.OrderItem{
		{OrderID: order.ID, ProductID: 1, ProductName: "p1", ProductPrice: decimal.NewFromInt(10), Qty: 2, Subtotal: decimal.NewFromInt(20)},
		{OrderID: order.ID, ProductID: 2, ProductName: "p2", ProductPrice: decimal.NewFromInt(5), Qty: 2, Subtotal: decimal.NewFromInt(10)},
	}
	require.NoError(t, repo.CreateOrderItems(bg, items))
	require.NotZero(t, items[0].ID)

	return order
}

func TestOrdersRepositoryFindByIDLoadsItemsAndAddress(t *testing.T) {
	db := databasetest.New(t)
	repo := NewOrdersRepository(db)

	created := createOrder(t, repo, 7, domain.OrderStatusPending)

	order, err := repo.FindByID(bg, created.ID)
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	require.Equal(t, "p1", order.Items[0].ProductName)
	require.Equal(t, "12345", order.ShippingAddress.PostalCode)
	require.True(t, order.TotalAmount.Equal(decimal.NewFromInt(30)))

	_, err = repo.FindByIDForUpdate(bg, 404)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrdersRepositoryFindAllFilters(t *testing.T) {
	db := databasetest.New(t)
	repo := NewOrdersRepository(db)

	createOrder(t, repo, 1, domain.OrderStatusPending)
	createOrder(t, repo, 1, domain.OrderStatusCompleted)
	last := createOrder(t, repo, 2, domain.OrderStatusPending)

	orders, total, err := repo.FindAll(bg, domain.OrderFilter{Status: domain.OrderStatusPending})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Equal(t, last.ID, orders[0].ID)
	require.Len(t, orders[0].Items, 2)

	orders, total, err = repo.FindAll(bg, domain.OrderFilter{UserID: 1, Page: pagination.Params{Page: 1, Limit: 1}})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, orders, 1)
}

func TestOrdersRepositoryDelete(t *testing.T) {
	db := databasetest.New(t)
	repo := NewOrdersRepository(db)

	order := createOrder(t, repo, 1, domain.OrderStatusPending)

	require.NoError(t, repo.DeleteOrderItems(bg, order.ID))
	require.NoError(t, repo.Delete(bg, order.ID))
	require.NoError(t, repo.DeleteShippingAddress(bg, order.ShippingAddressID))

	require.EqualValues(t, 0, countRows(t, db, &domain.Order{}))
	require.EqualValues(t, 0, countRows(t, db, &domain.OrderItem{}))
	require.EqualValues(t, 0, countRows(t, db, &domain.ShippingAddress{}))

	require.ErrorIs(t, repo.Delete(bg, order.ID), domain.ErrNotFound)
}
