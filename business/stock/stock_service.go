package stock

import (
	"context"
	"fmt"
	"strings"
	"supplyStore/domain"
	"supplyStore/pkg/logger"
	"supplyStore/pkg/metrics"
)

// StockRepository contract interface
type StockRepository interface {
	SetQuantities(ctx context.Context, stocks []domain.Stock) error
	FindByProduct(ctx context.Context, productID uint64) ([]domain.Stock, error)
	FindBySupplier(ctx context.Context, supplierID uint64) ([]domain.Stock, error)
}

type SupplierRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.Supplier, error)
	MissingIDs(ctx context.Context, ids []uint64) ([]uint64, error)
}

type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type StockService struct {
	stockRepo    StockRepository
	supplierRepo SupplierRepository
	productRepo  ProductRepository
	tx           Transactor
}

func NewStockService(stockRepo StockRepository, supplierRepo SupplierRepository, productRepo ProductRepository, tx Transactor) *StockService {
	return &StockService{
		stockRepo:    stockRepo,
		supplierRepo: supplierRepo,
		productRepo:  productRepo,
		tx:           tx,
	}
}

// BatchUpdateStock replaces the on-hand qty of productID for every listed
// supplier. Either all updates are stored or none.
func (s *StockService) BatchUpdateStock(ctx context.Context, productID uint64, updates []domain.StockUpdate) ([]domain.Stock, error) {
	stocks, err := s.batchUpdate(ctx, productID, updates)
	metrics.StockBatchUpdates.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		logger.Error("Failed to update supplier stock", "product_id", productID, "error", err)
		return nil, err
	}

	logger.Info("supplier stock updated", "product_id", productID, "suppliers", len(stocks))

	return stocks, nil
}

func (s *StockService) batchUpdate(ctx context.Context, productID uint64, updates []domain.StockUpdate) ([]domain.Stock, error) {
	if err := validateUpdates(updates); err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(updates))
	stocks := make([]domain.Stock, 0, len(updates))
	for _, u := range updates {
		ids = append(ids, u.SupplierID)
		stocks = append(stocks, domain.Stock{
			ProductID:  productID,
			SupplierID: u.SupplierID,
			Qty:        u.Qty,
		})
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
			return err
		}

		missing, err := s.supplierRepo.MissingIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return domain.NotFoundf("suppliers not found: %s", joinIDs(missing))
		}

		return s.stockRepo.SetQuantities(ctx, stocks)
	})
	if err != nil {
		return nil, err
	}

	return stocks, nil
}

func (s *StockService) ListByProduct(ctx context.Context, productID uint64) ([]domain.Stock, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	return s.stockRepo.FindByProduct(ctx, productID)
}

func (s *StockService) ListBySupplier(ctx context.Context, supplierID uint64) ([]domain.Stock, error) {
	if _, err := s.supplierRepo.FindByID(ctx, supplierID); err != nil {
		return nil, err
	}

	return s.stockRepo.FindBySupplier(ctx, supplierID)
}

func validateUpdates(updates []domain.StockUpdate) error {
	if len(updates) == 0 {
		return domain.Validationf("updates must contain at least one supplier")
	}

	seen := make(map[uint64]bool, len(updates))
	var problems []string
	for _, u := range updates {
		if u.SupplierID == 0 {
			problems = append(problems, "supplierId must be greater than 0")
			continue
		}
		if u.Qty < 0 {
			problems = append(problems, fmt.Sprintf("qty for supplierId %d cannot be negative", u.SupplierID))
		}
		if seen[u.SupplierID] {
			problems = append(problems, fmt.Sprintf("supplierId %d is duplicated", u.SupplierID))
		}
		seen[u.SupplierID] = true
	}

	if len(problems) > 0 {
		return domain.Validationf("%s", strings.Join(problems, "; "))
	}

	return nil
}

func joinIDs(ids []uint64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d", id))
	}
	return strings.Join(parts, ", ")
}
