package postgres

import (
	"context"
	"supplyStore/domain"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedProduct(t *testing.T, db *gorm.DB, name string, price string, stock int64, status domain.ProductStatus) domain.Product {
	t.Helper()

	p := domain.Product{
		Name:   name,
		Slug:   name,
		Price:  decimal.RequireFromString(price),
		Stock:  stock,
		Status: status,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func stockOf(t *testing.T, db *gorm.DB, id uint64) int64 {
	t.Helper()

	var p domain.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.Stock
}

func seedUser(t *testing.T, db *gorm.DB, email string, balance int64) domain.User {
	t.Helper()

	u := domain.User{Name: email, Email: email, Password: "x", Balance: balance, Role: domain.RoleCustomer}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

var bg = context.Background()
