package supplier_test

import (
	"context"
	"supplyStore/business/supplier"
	"supplyStore/domain"
	"supplyStore/internal/repository/postgres"
	"supplyStore/pkg/database/databasetest"
	"supplyStore/pkg/pagination"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupplierService(t *testing.T) {
	ctx := context.Background()
	svc := supplier.NewSupplierService(postgres.NewSupplierRepository(databasetest.New(t)), validator.New())

	created, err := svc.CreateSupplier(ctx, &domain.Supplier{Name: "  Tani Makmur ", Email: "tani@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Tani Makmur", created.Name)

	_, err = svc.CreateSupplier(ctx, &domain.Supplier{Name: "Other", Email: "tani@example.com"})
	require.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.CreateSupplier(ctx, &domain.Supplier{Name: "", Email: "x@example.com"})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CreateSupplier(ctx, &domain.Supplier{Name: "x", Email: "nope"})
	require.ErrorIs(t, err, domain.ErrValidation)

	got, err := svc.GetSupplier(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "tani@example.com", got.Email)

	_, err = svc.GetSupplier(ctx, 99)
	require.ErrorIs(t, err, domain.ErrNotFound)

	list, total, err := svc.ListSuppliers(ctx, pagination.Params{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)
}
