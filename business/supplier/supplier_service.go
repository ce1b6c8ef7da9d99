package supplier

import (
	"context"
	"strings"
	"supplyStore/domain"
	"supplyStore/pkg/logger"
	"supplyStore/pkg/pagination"
	"time"

	"github.com/go-playground/validator/v10"
)

// SupplierRepository contract interface
type SupplierRepository interface {
	Create(ctx context.Context, supplier *domain.Supplier) error
	FindByID(ctx context.Context, id uint64) (domain.Supplier, error)
	FindAll(ctx context.Context, page pagination.Params) ([]domain.Supplier, int64, error)
}

type supplierService struct {
	supplierRepo SupplierRepository
	validate     *validator.Validate
}

func NewSupplierService(supplierRepo SupplierRepository, validate *validator.Validate) *supplierService {
	return &supplierService{
		supplierRepo: supplierRepo,
		validate:     validate,
	}
}

func (s *supplierService) CreateSupplier(ctx context.Context, supplier *domain.Supplier) (*domain.Supplier, error) {
	supplier.Name = strings.TrimSpace(supplier.Name)
	if supplier.Name == "" {
		return nil, domain.Validationf("supplier name is required")
	}

	if err := s.validate.Var(supplier.Email, "required,email"); err != nil {
		return nil, domain.Validationf("invalid email format")
	}

	supplier.CreatedAt = time.Now()
	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		logger.Error("Failed to create supplier", err)
		return nil, err
	}

	logger.Info("supplier created", "supplier_id", supplier.ID)

	return supplier, nil
}

func (s *supplierService) GetSupplier(ctx context.Context, id uint64) (*domain.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("Failed to get supplier", err)
		return nil, err
	}

	return &supplier, nil
}

func (s *supplierService) ListSuppliers(ctx context.Context, page pagination.Params) ([]domain.Supplier, int64, error) {
	return s.supplierRepo.FindAll(ctx, page)
}
