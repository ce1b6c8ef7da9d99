package domain

import (
	"supplyStore/pkg/pagination"
	"time"

	"github.com/shopspring/decimal"
)

// CREATE TABLE public.products (
//     id          BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
//     name        TEXT NOT NULL,
//     slug        TEXT NOT NULL UNIQUE,
//     description TEXT,
//     price       NUMERIC(12,2) NOT NULL,
//     stock       BIGINT NOT NULL,
//     status      VARCHAR(16) NOT NULL,
//     created_at  TIMESTAMPTZ,
//     updated_at  TIMESTAMPTZ
// );

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusInactive ProductStatus = "INACTIVE"
	ProductStatusDraft    ProductStatus = "DRAFT"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusActive, ProductStatusInactive, ProductStatusDraft:
		return true
	}
	return false
}

type Product struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"column:name;type:text;not null" json:"name"`
	Slug        string          `gorm:"column:slug;uniqueIndex;not null" json:"slug"`
	Description string          `gorm:"column:description;type:text" json:"description"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	Stock       int64           `gorm:"column:stock;not null" json:"stock"`
	Status      ProductStatus   `gorm:"column:status;type:varchar(16);not null" json:"status"`
	CreatedAt   time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// ProductPatch carries the fields of a partial product update; nil means keep.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int64
	Status      *ProductStatus
}

const (
	ProductSortPrice = "price"
	ProductSortStock = "stock"
)

type ProductFilter struct {
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	MinStock *int64
	MaxStock *int64
	Sort     string
	Order    string
	Page     pagination.Params
}

func (f ProductFilter) Validate() error {
	if f.MinPrice != nil && f.MinPrice.IsNegative() {
		return Validationf("min_price cannot be negative")
	}
	if f.MaxPrice != nil && f.MaxPrice.IsNegative() {
		return Validationf("max_price cannot be negative")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return Validationf("min_price cannot be greater than max_price")
	}
	if f.MinStock != nil && *f.MinStock < 0 {
		return Validationf("min_stock cannot be negative")
	}
	if f.MaxStock != nil && *f.MaxStock < 0 {
		return Validationf("max_stock cannot be negative")
	}
	if f.MinStock != nil && f.MaxStock != nil && *f.MinStock > *f.MaxStock {
		return Validationf("min_stock cannot be greater than max_stock")
	}
	switch f.Sort {
	case "", ProductSortPrice, ProductSortStock:
	default:
		return Validationf("sort must be one of price, stock")
	}
	switch f.Order {
	case "", "asc", "desc":
	default:
		return Validationf("order must be one of asc, desc")
	}
	return nil
}

// StockDelta is a per-product quantity change applied to products.stock.
type StockDelta struct {
	ProductID uint64
	Qty       int64
}
