package domain

import "time"

type Supplier struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Email     string    `gorm:"column:email;uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Supplier) TableName() string {
	return "suppliers"
}

// Stock is how much of a product a given supplier can provide.
type Stock struct {
	ProductID  uint64    `gorm:"column:product_id;primaryKey;autoIncrement:false" json:"productId"`
	SupplierID uint64    `gorm:"column:supplier_id;primaryKey;autoIncrement:false" json:"supplierId"`
	Qty        int64     `gorm:"column:qty;not null" json:"qty"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updatedAt"`
	Product    *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
	Supplier   *Supplier `gorm:"foreignKey:SupplierID;constraint:OnDelete:CASCADE" json:"supplier,omitempty"`
}

func (Stock) TableName() string {
	return "stocks"
}

type StockUpdate struct {
	SupplierID uint64 `json:"supplierId"`
	Qty        int64  `json:"qty"`
}
