package product

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"supplyStore/domain"
	"supplyStore/pkg/logger"
	"time"
)

// ProductRepository contract interface
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
	FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error)
	Update(ctx context.Context, id uint64, patch domain.ProductPatch) error
	Delete(ctx context.Context, id uint64) error
}

type productService struct {
	productRepo ProductRepository
}

func NewProductService(productRepo ProductRepository) *productService {
	return &productService{
		productRepo: productRepo,
	}
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	return strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

func (s *productService) GetAllProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get all product")
		return nil, 0, fmt.Errorf("context error: %w", err)
	}

	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}

	products, total, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		logger.Error("Failed to find all product", err)
		return nil, 0, err
	}

	return products, total, nil
}

func (s *productService) GetProductByID(ctx context.Context, id uint64) (*domain.Product, error) {
	if id == 0 {
		return nil, domain.Validationf("invalid product id")
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("failed to find product by id", err)
		return nil, err
	}

	return &product, nil
}

func (s *productService) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when create product")
		return nil, fmt.Errorf("context error: %w", err)
	}

	if err := validateProduct(product); err != nil {
		logger.Error("Invalid product data", err)
		return nil, err
	}

	if product.Status == "" {
		product.Status = domain.ProductStatusDraft
	}

	product.Slug = slugify(product.Name)
	if product.Slug == "" {
		return nil, domain.Validationf("product name must contain letters or digits")
	}

	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := s.productRepo.Create(ctx, product); err != nil {
		logger.Error("failed to create new product", err)
		return nil, err
	}

	logger.Info("product created successfully", "product_id", product.ID)

	return product, nil
}

// UpdateProduct applies a partial update. Only patched columns are written,
// and existing order items keep the name and price they were placed with.
func (s *productService) UpdateProduct(ctx context.Context, id uint64, patch domain.ProductPatch) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when updating product")
		return nil, fmt.Errorf("context error: %w", err)
	}

	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("product not found", err)
		return nil, err
	}

	// validate the merged result, but write the patch only
	merged := existing
	if patch.Name != nil {
		merged.Name = *patch.Name
	}
	if patch.Description != nil {
		merged.Description = *patch.Description
	}
	if patch.Price != nil {
		merged.Price = *patch.Price
	}
	if patch.Stock != nil {
		merged.Stock = *patch.Stock
	}
	if patch.Status != nil {
		merged.Status = *patch.Status
	}

	if err := validateProduct(&merged); err != nil {
		logger.Error("Invalid product data", err)
		return nil, err
	}

	if err := s.productRepo.Update(ctx, id, patch); err != nil {
		logger.Error("failed to update product", err)
		return nil, err
	}

	updated, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("failed to reload product", err)
		return nil, err
	}

	logger.Info("product updated success", "product_id", id)

	return &updated, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uint64) error {
	if id == 0 {
		return domain.Validationf("invalid product id")
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete product", err)
		return err
	}

	logger.Info("product deleted success", "product_id", id)

	return nil
}

func validateProduct(product *domain.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return domain.Validationf("product name is required")
	}

	if product.Price.IsNegative() {
		return domain.Validationf("price cannot be negative")
	}

	if product.Stock < 0 {
		return domain.Validationf("stock cannot be negative")
	}

	if product.Status != "" && !product.Status.Valid() {
		return domain.Validationf("invalid product status %q", product.Status)
	}

	return nil
}
