package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"supplyStore/domain"
	"time"

	"gorm.io/gorm"
)

type ProductRepository struct {
	DB *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{
		DB: db,
	}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := conn(ctx, r.DB).Create(product).Error; err != nil {
		return storageError(err, "create product")
	}

	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint64) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("context error: %w", err)
	}

	var product domain.Product

	err := conn(ctx, r.DB).First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, domain.NotFoundf("product %d not found", id)
		}
		return domain.Product{}, storageError(err, "find product")
	}

	return product, nil
}

// FindByIDs resolves a set of products in a single query. Missing ids are
// simply absent from the result.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	var products []domain.Product
	if err := conn(ctx, r.DB).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, storageError(err, "find products")
	}

	return products, nil
}

func (r *ProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("context error: %w", err)
	}

	scope := func(db *gorm.DB) *gorm.DB {
		if filter.MinPrice != nil {
			db = db.Where("price >= ?", *filter.MinPrice)
		}
		if filter.MaxPrice != nil {
			db = db.Where("price <= ?", *filter.MaxPrice)
		}
		if filter.MinStock != nil {
			db = db.Where("stock >= ?", *filter.MinStock)
		}
		if filter.MaxStock != nil {
			db = db.Where("stock <= ?", *filter.MaxStock)
		}
		return db
	}

	var total int64
	if err := conn(ctx, r.DB).Model(&domain.Product{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, storageError(err, "count products")
	}

	order := "id asc"
	if filter.Sort == domain.ProductSortPrice || filter.Sort == domain.ProductSortStock {
		direction := "asc"
		if filter.Order == "desc" {
			direction = "desc"
		}
		order = fmt.Sprintf("%s %s, id asc", filter.Sort, direction)
	}

	page := filter.Page.Normalize()

	var products []domain.Product
	err := conn(ctx, r.DB).Scopes(scope).
		Order(order).
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, storageError(err, "find products")
	}

	return products, total, nil
}

// Update writes only the columns set in patch. Stock is left alone unless
// patch.Stock is set, so concurrent order decrements are never overwritten.
func (r *ProductRepository) Update(ctx context.Context, id uint64, patch domain.ProductPatch) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	updateData := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if patch.Name != nil {
		updateData["name"] = *patch.Name
	}
	if patch.Description != nil {
		updateData["description"] = *patch.Description
	}
	if patch.Price != nil {
		updateData["price"] = *patch.Price
	}
	if patch.Stock != nil {
		updateData["stock"] = *patch.Stock
	}
	if patch.Status != nil {
		updateData["status"] = *patch.Status
	}

	result := conn(ctx, r.DB).Model(&domain.Product{}).Where("id = ?", id).Updates(updateData)
	if result.Error != nil {
		return storageError(result.Error, "update product")
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundf("product %d not found", id)
	}

	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := conn(ctx, r.DB).Delete(&domain.Product{}, id)
	if result.Error != nil {
		return storageError(result.Error, "delete product")
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundf("product %d not found", id)
	}

	return nil
}

// DecrementStock subtracts every delta in one statement, only for rows whose
// stock still covers the delta. The returned count is the number of products
// actually decremented; callers compare it with len(deltas).
func (r *ProductRepository) DecrementStock(ctx context.Context, deltas []domain.StockDelta) (int64, error) {
	return r.applyStockDeltas(ctx, deltas, `
		WITH updates (id, qty) AS (VALUES %s)
		UPDATE products
		SET stock = products.stock - updates.qty, updated_at = ?
		FROM updates
		WHERE products.id = updates.id AND products.stock >= updates.qty`)
}

// IncrementStock returns quantities to stock, used when an order gives its
// items back.
func (r *ProductRepository) IncrementStock(ctx context.Context, deltas []domain.StockDelta) (int64, error) {
	return r.applyStockDeltas(ctx, deltas, `
		WITH updates (id, qty) AS (VALUES %s)
		UPDATE products
		SET stock = products.stock + updates.qty, updated_at = ?
		FROM updates
		WHERE products.id = updates.id`)
}

func (r *ProductRepository) applyStockDeltas(ctx context.Context, deltas []domain.StockDelta, query string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	if len(deltas) == 0 {
		return 0, nil
	}

	// stable order keeps row locks acquired in the same sequence across requests
	sorted := make([]domain.StockDelta, len(deltas))
	copy(sorted, deltas)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	values := make([]string, 0, len(sorted))
	args := make([]interface{}, 0, len(sorted)*2+1)
	for _, d := range sorted {
		values = append(values, "(CAST(? AS BIGINT), CAST(? AS BIGINT))")
		args = append(args, int64(d.ProductID), d.Qty)
	}
	args = append(args, time.Now())

	result := conn(ctx, r.DB).Exec(fmt.Sprintf(query, strings.Join(values, ", ")), args...)
	if result.Error != nil {
		return 0, storageError(result.Error, "update product stock")
	}

	return result.RowsAffected, nil
}
