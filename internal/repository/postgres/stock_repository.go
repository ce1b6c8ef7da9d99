package postgres

import (
	"context"
	"fmt"
	"supplyStore/domain"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockRepository struct {
	DB *gorm.DB
}

func NewStockRepository(db *gorm.DB) *StockRepository {
	return &StockRepository{
		DB: db,
	}
}

// SetQuantities writes every (product, supplier) qty in one statement.
// Quantities replace whatever was stored; rows that do not exist yet are created.
func (r *StockRepository) SetQuantities(ctx context.Context, stocks []domain.Stock) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if len(stocks) == 0 {
		return nil
	}

	now := time.Now()
	for i := range stocks {
		stocks[i].UpdatedAt = now
	}

	err := conn(ctx, r.DB).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "supplier_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"qty", "updated_at"}),
	}).Omit(clause.Associations).Create(&stocks).Error
	if err != nil {
		return storageError(err, "update supplier stock")
	}

	return nil
}

func (r *StockRepository) FindByProduct(ctx context.Context, productID uint64) ([]domain.Stock, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var stocks []domain.Stock
	if err := conn(ctx, r.DB).Preload("Supplier").Where("product_id = ?", productID).Order("supplier_id asc").Find(&stocks).Error; err != nil {
		return nil, storageError(err, "find product stock")
	}

	return stocks, nil
}

func (r *StockRepository) FindBySupplier(ctx context.Context, supplierID uint64) ([]domain.Stock, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var stocks []domain.Stock
	if err := conn(ctx, r.DB).Preload("Product").Where("supplier_id = ?", supplierID).Order("product_id asc").Find(&stocks).Error; err != nil {
		return nil, storageError(err, "find supplier stock")
	}

	return stocks, nil
}
