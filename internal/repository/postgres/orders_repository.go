package postgres

import (
	"context"
	"errors"
	"fmt"
	"supplyStore/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrdersRepository struct {
	DB *gorm.DB
}

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{
		DB: db,
	}
}

func (r *OrdersRepository) CreateShippingAddress(ctx context.Context, addr *domain.ShippingAddress) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	// always a fresh row, addresses are never shared between orders
	addr.ID = 0
	if err := conn(ctx, r.DB).Create(addr).Error; err != nil {
		return storageError(err, "create shipping address")
	}

	return nil
}

func (r *OrdersRepository) DeleteShippingAddress(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := conn(ctx, r.DB).Delete(&domain.ShippingAddress{}, id).Error; err != nil {
		return storageError(err, "delete shipping address")
	}

	return nil
}

// CreateOrder inserts the order row only. Items are written separately with
// CreateOrderItems so the caller controls the snapshot values.
func (r *OrdersRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := conn(ctx, r.DB).Omit(clause.Associations).Create(order).Error; err != nil {
		return storageError(err, "create order")
	}

	return nil
}

// CreateOrderItems bulk inserts items and fills their generated ids.
func (r *OrdersRepository) CreateOrderItems(ctx context.Context, items []domain.OrderItem) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	if err := conn(ctx, r.DB).Create(&items).Error; err != nil {
		return storageError(err, "create order items")
	}

	return nil
}

func (r *OrdersRepository) DeleteOrderItems(ctx context.Context, orderID uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := conn(ctx, r.DB).Where("order_id = ?", orderID).Delete(&domain.OrderItem{}).Error; err != nil {
		return storageError(err, "delete order items")
	}

	return nil
}

func (r *OrdersRepository) FindByID(ctx context.Context, id uint64) (domain.Order, error) {
	return r.findByID(ctx, id, false)
}

// FindByIDForUpdate loads the order and locks its row until the surrounding
// transaction ends.
func (r *OrdersRepository) FindByIDForUpdate(ctx context.Context, id uint64) (domain.Order, error) {
	return r.findByID(ctx, id, true)
}

func (r *OrdersRepository) findByID(ctx context.Context, id uint64, lock bool) (domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return domain.Order{}, fmt.Errorf("context error: %w", err)
	}

	db := conn(ctx, r.DB)
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var order domain.Order
	err := db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id asc")
	}).Preload("ShippingAddress").First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Order{}, domain.NotFoundf("order %d not found", id)
		}
		return domain.Order{}, storageError(err, "find order")
	}

	return order, nil
}

func (r *OrdersRepository) FindAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("context error: %w", err)
	}

	scope := func(db *gorm.DB) *gorm.DB {
		if filter.UserID != 0 {
			db = db.Where("user_id = ?", filter.UserID)
		}
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		if filter.PaymentMethod != "" {
			db = db.Where("payment_method = ?", filter.PaymentMethod)
		}
		return db
	}

	var total int64
	if err := conn(ctx, r.DB).Model(&domain.Order{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, storageError(err, "count orders")
	}

	page := filter.Page.Normalize()

	var orders []domain.Order
	err := conn(ctx, r.DB).Scopes(scope).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		}).
		Preload("ShippingAddress").
		Order("id desc").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, storageError(err, "find orders")
	}

	return orders, total, nil
}

// Update writes the mutable order columns. Items and address rows are
// managed by their own methods.
func (r *OrdersRepository) Update(ctx context.Context, order *domain.Order) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	updateData := map[string]interface{}{
		"shipping_address_id": order.ShippingAddressID,
		"payment_method":      order.PaymentMethod,
		"status":              order.Status,
		"total_amount":        order.TotalAmount,
		"updated_at":          order.UpdatedAt,
	}

	result := conn(ctx, r.DB).Model(&domain.Order{}).Where("id = ?", order.ID).Updates(updateData)
	if result.Error != nil {
		return storageError(result.Error, "update order")
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundf("order %d not found", order.ID)
	}

	return nil
}

func (r *OrdersRepository) Delete(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := conn(ctx, r.DB).Delete(&domain.Order{}, id)
	if result.Error != nil {
		return storageError(result.Error, "delete order")
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundf("order %d not found", id)
	}

	return nil
}
