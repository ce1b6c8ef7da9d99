package domain

import (
	"supplyStore/pkg/pagination"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash       PaymentMethod = "CASH"
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentMethodPaypal     PaymentMethod = "PAYPAL"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCreditCard, PaymentMethodPaypal:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusCompleted, OrderStatusCancelled},
}

// CanTransitionTo reports whether an order in status s may move to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ShippingAddress rows are never patched: an update inserts a new row and
// removes the old one.
type ShippingAddress struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	RecipientName string `gorm:"column:recipient_name;not null" json:"recipient_name"`
	Street        string `gorm:"column:street;not null" json:"street"`
	City          string `gorm:"column:city;not null" json:"city"`
	Province      string `gorm:"column:province;not null" json:"province"`
	PostalCode    string `gorm:"column:postal_code;not null" json:"postal_code"`
	Country       string `gorm:"column:country;not null" json:"country"`
	Phone         string `gorm:"column:phone;not null" json:"phone"`
}

func (ShippingAddress) TableName() string {
	return "shipping_addresses"
}

type Order struct {
	ID                uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            uint64          `gorm:"column:user_id;index" json:"user_id"`
	ShippingAddressID uint64          `gorm:"column:shipping_address_id;not null" json:"shipping_address_id"`
	ShippingAddress   ShippingAddress `gorm:"foreignKey:ShippingAddressID" json:"shipping_address"`
	PaymentMethod     PaymentMethod   `gorm:"column:payment_method;type:varchar(16);not null" json:"payment_method"`
	Status            OrderStatus     `gorm:"column:status;type:varchar(16);not null;index" json:"status"`
	TotalAmount       decimal.Decimal `gorm:"column:total_amount;type:numeric;not null" json:"total_amount"`
	Items             []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt         time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is a snapshot of the product at order time. ProductName and
// ProductPrice are copied and never re-read from products.
type OrderItem struct {
	ID           uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID      uint64          `gorm:"column:order_id;not null;index" json:"order_id"`
	ProductID    uint64          `gorm:"column:product_id;not null" json:"product_id"`
	ProductName  string          `gorm:"column:product_name;not null" json:"product_name"`
	ProductPrice decimal.Decimal `gorm:"column:product_price;type:numeric(12,2);not null" json:"product_price"`
	Qty          int64           `gorm:"column:qty;not null" json:"qty"`
	Subtotal     decimal.Decimal `gorm:"column:subtotal;type:numeric;not null" json:"subtotal"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

type OrderItemInput struct {
	ProductID uint64
	Qty       int64
}

type PlaceOrderInput struct {
	UserID          uint64
	Items           []OrderItemInput
	ShippingAddress ShippingAddress
	PaymentMethod   PaymentMethod
}

// OrderPatch describes UpdateOrder. A nil Items slice leaves items untouched,
// a non-nil one replaces them wholesale.
type OrderPatch struct {
	Items           []OrderItemInput
	ShippingAddress *ShippingAddress
	PaymentMethod   *PaymentMethod
}

type OrderFilter struct {
	UserID        uint64
	Status        OrderStatus
	PaymentMethod PaymentMethod
	Page          pagination.Params
}

func (f OrderFilter) Validate() error {
	if f.Status != "" && !f.Status.Valid() {
		return Validationf("invalid order status %q", f.Status)
	}
	if f.PaymentMethod != "" && !f.PaymentMethod.Valid() {
		return Validationf("invalid payment method %q", f.PaymentMethod)
	}
	return nil
}
