package orders

import (
	"context"
	"math"
	"supplyStore/domain"
	"supplyStore/pkg/config"
	"supplyStore/pkg/logger"
	"supplyStore/pkg/metrics"
	"time"

	"github.com/shopspring/decimal"
)

// OrdersRepository contract interface
type OrdersRepository interface {
	CreateShippingAddress(ctx context.Context, addr *domain.ShippingAddress) error
	DeleteShippingAddress(ctx context.Context, id uint64) error
	CreateOrder(ctx context.Context, order *domain.Order) error
	CreateOrderItems(ctx context.Context, items []domain.OrderItem) error
	DeleteOrderItems(ctx context.Context, orderID uint64) error
	FindByID(ctx context.Context, id uint64) (domain.Order, error)
	FindByIDForUpdate(ctx context.Context, id uint64) (domain.Order, error)
	FindAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error)
	Update(ctx context.Context, order *domain.Order) error
	Delete(ctx context.Context, id uint64) error
}

// ProductStockRepository is the slice of the product store the order engine needs.
type ProductStockRepository interface {
	FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error)
	DecrementStock(ctx context.Context, deltas []domain.StockDelta) (int64, error)
	IncrementStock(ctx context.Context, deltas []domain.StockDelta) (int64, error)
}

// Transactor runs fn atomically; repositories called with the ctx passed to
// fn take part in the same transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type OrdersService struct {
	orderRepo     OrdersRepository
	productsRepo  ProductStockRepository
	tx            Transactor
	restockPolicy string
	now           func() time.Time
}

func NewOrdersService(orderRepo OrdersRepository, productsRepo ProductStockRepository, tx Transactor, restockPolicy string) *OrdersService {
	if restockPolicy == "" {
		restockPolicy = config.RestockNone
	}

	return &OrdersService{
		orderRepo:     orderRepo,
		productsRepo:  productsRepo,
		tx:            tx,
		restockPolicy: restockPolicy,
		now:           time.Now,
	}
}

func (s *OrdersService) restores() bool {
	return s.restockPolicy == config.RestockRestore
}

// PlaceOrder validates the cart against a snapshot of the products, then
// writes address, order, items and the stock decrement in one transaction.
// The decrement is conditional per product; if any product no longer has
// enough stock at commit time the whole order is rolled back.
func (s *OrdersService) PlaceOrder(ctx context.Context, input domain.PlaceOrderInput) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when placing order")
		return nil, err
	}

	order, err := s.placeOrder(ctx, input)
	if err != nil {
		metrics.OrderFailures.WithLabelValues(metrics.Outcome(err)).Inc()
		logger.Error("Failed to place order", "error", err)
		return nil, err
	}

	metrics.OrdersPlaced.Inc()
	logger.Info("order placed", "order_id", order.ID, "total_amount", order.TotalAmount.StringFixed(2))

	return order, nil
}

func (s *OrdersService) placeOrder(ctx context.Context, input domain.PlaceOrderInput) (*domain.Order, error) {
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}

	if !input.PaymentMethod.Valid() {
		return nil, domain.Validationf("invalid payment method %q", input.PaymentMethod)
	}

	// fast fail on the pre-transaction snapshot, no rows are written yet
	items, total, err := s.buildItems(ctx, input.Items, true)
	if err != nil {
		return nil, err
	}

	now := s.now()
	addr := input.ShippingAddress
	order := domain.Order{
		UserID:        input.UserID,
		PaymentMethod: input.PaymentMethod,
		Status:        domain.OrderStatusPending,
		TotalAmount:   total,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.orderRepo.CreateShippingAddress(ctx, &addr); err != nil {
			return err
		}

		order.ShippingAddressID = addr.ID
		if err := s.orderRepo.CreateOrder(ctx, &order); err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := s.orderRepo.CreateOrderItems(ctx, items); err != nil {
			return err
		}

		return s.decrementStock(ctx, input.Items)
	})
	if err != nil {
		return nil, err
	}

	order.ShippingAddress = addr
	order.Items = items
	order.TotalAmount = order.TotalAmount.Round(2)

	return &order, nil
}

// UpdateOrder applies patch to a PENDING order. Items are replaced
// wholesale and the address is swapped for a new row.
func (s *OrdersService) UpdateOrder(ctx context.Context, id uint64, patch domain.OrderPatch) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when updating order")
		return nil, err
	}

	if patch.Items != nil {
		if err := validateItems(patch.Items); err != nil {
			return nil, err
		}
	}

	if patch.PaymentMethod != nil && !patch.PaymentMethod.Valid() {
		return nil, domain.Validationf("invalid payment method %q", *patch.PaymentMethod)
	}

	var order domain.Order
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orderRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if order.Status != domain.OrderStatusPending {
			return domain.Conflictf("order %d is %s, only PENDING orders can be updated", id, order.Status)
		}

		if patch.Items != nil {
			if s.restores() {
				if err := s.restock(ctx, order.Items); err != nil {
					return err
				}
			}

			items, total, err := s.buildItems(ctx, patch.Items, s.restores())
			if err != nil {
				return err
			}

			if err := s.orderRepo.DeleteOrderItems(ctx, order.ID); err != nil {
				return err
			}

			for i := range items {
				items[i].OrderID = order.ID
			}
			if err := s.orderRepo.CreateOrderItems(ctx, items); err != nil {
				return err
			}

			if s.restores() {
				if err := s.decrementStock(ctx, patch.Items); err != nil {
					return err
				}
			}

			order.Items = items
			order.TotalAmount = total
		}

		oldAddressID := order.ShippingAddressID
		if patch.ShippingAddress != nil {
			addr := *patch.ShippingAddress
			if err := s.orderRepo.CreateShippingAddress(ctx, &addr); err != nil {
				return err
			}
			order.ShippingAddressID = addr.ID
			order.ShippingAddress = addr
		}

		if patch.PaymentMethod != nil {
			order.PaymentMethod = *patch.PaymentMethod
		}

		order.UpdatedAt = s.now()
		if err := s.orderRepo.Update(ctx, &order); err != nil {
			return err
		}

		// the old address is dropped only once nothing references it
		if patch.ShippingAddress != nil {
			return s.orderRepo.DeleteShippingAddress(ctx, oldAddressID)
		}

		return nil
	})
	if err != nil {
		metrics.OrderFailures.WithLabelValues(metrics.Outcome(err)).Inc()
		logger.Error("Failed to update order", "order_id", id, "error", err)
		return nil, err
	}

	order.TotalAmount = order.TotalAmount.Round(2)
	logger.Info("order updated", "order_id", id)

	return &order, nil
}

// UpdateOrderStatus moves an order along its lifecycle. Under the restore
// policy cancelling returns the items to stock.
func (s *OrdersService) UpdateOrderStatus(ctx context.Context, id uint64, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, domain.Validationf("invalid order status %q", status)
	}

	var order domain.Order
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orderRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if !order.Status.CanTransitionTo(status) {
			return domain.Conflictf("order %d cannot move from %s to %s", id, order.Status, status)
		}

		if status == domain.OrderStatusCancelled && s.restores() {
			if err := s.restock(ctx, order.Items); err != nil {
				return err
			}
		}

		order.Status = status
		order.UpdatedAt = s.now()
		return s.orderRepo.Update(ctx, &order)
	})
	if err != nil {
		logger.Error("Failed to update order status", "order_id", id, "error", err)
		return nil, err
	}

	order.TotalAmount = order.TotalAmount.Round(2)
	logger.Info("order status updated", "order_id", id, "status", status)

	return &order, nil
}

func (s *OrdersService) GetOrder(ctx context.Context, id uint64) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("Failed to get order", "order_id", id, "error", err)
		return nil, err
	}

	order.TotalAmount = order.TotalAmount.Round(2)
	return &order, nil
}

func (s *OrdersService) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}

	orders, total, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		logger.Error("Failed to list orders", "error", err)
		return nil, 0, err
	}

	for i := range orders {
		orders[i].TotalAmount = orders[i].TotalAmount.Round(2)
	}

	return orders, total, nil
}

// DeleteOrder removes the order with its items and address. Stock is only
// given back under the restore policy and only for orders that were not
// already completed or cancelled.
func (s *OrdersService) DeleteOrder(ctx context.Context, id uint64) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		order, err := s.orderRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if s.restores() && (order.Status == domain.OrderStatusPending || order.Status == domain.OrderStatusProcessing) {
			if err := s.restock(ctx, order.Items); err != nil {
				return err
			}
		}

		if err := s.orderRepo.DeleteOrderItems(ctx, order.ID); err != nil {
			return err
		}

		if err := s.orderRepo.Delete(ctx, order.ID); err != nil {
			return err
		}

		return s.orderRepo.DeleteShippingAddress(ctx, order.ShippingAddressID)
	})
	if err != nil {
		logger.Error("Failed to delete order", "order_id", id, "error", err)
		return err
	}

	logger.Info("order deleted", "order_id", id)

	return nil
}

func validateItems(items []domain.OrderItemInput) error {
	if len(items) == 0 {
		return domain.Validationf("order must contain at least one item")
	}

	total := make(map[uint64]int64, len(items))
	for _, item := range items {
		if item.Qty < 1 {
			return domain.Validationf("qty for product %d must be at least 1", item.ProductID)
		}
		// no stock level can cover a combined qty beyond int64
		if item.Qty > math.MaxInt64-total[item.ProductID] {
			return domain.Invariantf("insufficient stock for product %d", item.ProductID)
		}
		total[item.ProductID] += item.Qty
	}

	return nil
}

// buildItems resolves all products with one lookup and snapshots name and
// price into order items, in input order. checkStock compares the requested
// quantity with the stock seen by this read.
func (s *OrdersService) buildItems(ctx context.Context, inputs []domain.OrderItemInput, checkStock bool) ([]domain.OrderItem, decimal.Decimal, error) {
	ids := make([]uint64, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.ProductID)
	}

	products, err := s.productsRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, err
	}

	byID := make(map[uint64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	requested := aggregate(inputs)
	items := make([]domain.OrderItem, 0, len(inputs))
	total := decimal.Zero

	for _, in := range inputs {
		p, ok := byID[in.ProductID]
		if !ok {
			return nil, decimal.Zero, domain.NotFoundf("product %d not found", in.ProductID)
		}

		if p.Status != domain.ProductStatusActive {
			return nil, decimal.Zero, domain.Invariantf("product %d is not active", p.ID)
		}

		if checkStock && requested[p.ID] > p.Stock {
			return nil, decimal.Zero, domain.Invariantf("insufficient stock for product %d", p.ID)
		}

		subtotal := p.Price.Mul(decimal.NewFromInt(in.Qty))
		total = total.Add(subtotal)

		items = append(items, domain.OrderItem{
			ProductID:    p.ID,
			ProductName:  p.Name,
			ProductPrice: p.Price,
			Qty:          in.Qty,
			Subtotal:     subtotal,
		})
	}

	return items, total, nil
}

// decrementStock applies the conditional bulk decrement and fails with
// Invariant when fewer products than requested were decremented, which
// aborts the surrounding transaction.
func (s *OrdersService) decrementStock(ctx context.Context, inputs []domain.OrderItemInput) error {
	deltas := toDeltas(aggregate(inputs))

	affected, err := s.productsRepo.DecrementStock(ctx, deltas)
	if err != nil {
		return err
	}

	if affected != int64(len(deltas)) {
		logger.Warn("stock changed before commit", "expected", len(deltas), "decremented", affected)
		return domain.Invariantf("insufficient stock: %d of %d products could not be reserved", int64(len(deltas))-affected, len(deltas))
	}

	return nil
}

func (s *OrdersService) restock(ctx context.Context, items []domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	qty := make(map[uint64]int64, len(items))
	for _, item := range items {
		qty[item.ProductID] += item.Qty
	}

	// products deleted since the order was placed are skipped
	_, err := s.productsRepo.IncrementStock(ctx, toDeltas(qty))
	return err
}

// aggregate sums quantities per product so repeated lines count once.
// Callers run validateItems first, which rules out overflow.
func aggregate(inputs []domain.OrderItemInput) map[uint64]int64 {
	qty := make(map[uint64]int64, len(inputs))
	for _, in := range inputs {
		qty[in.ProductID] += in.Qty
	}
	return qty
}

func toDeltas(qty map[uint64]int64) []domain.StockDelta {
	deltas := make([]domain.StockDelta, 0, len(qty))
	for id, q := range qty {
		deltas = append(deltas, domain.StockDelta{ProductID: id, Qty: q})
	}
	return deltas
}
