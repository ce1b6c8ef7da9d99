package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"supplyStore/domain"
	"supplyStore/pkg/pagination"

	"gorm.io/gorm"
)

type SupplierRepository struct {
	DB *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{
		DB: db,
	}
}

func (r *SupplierRepository) Create(ctx context.Context, supplier *domain.Supplier) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := conn(ctx, r.DB).Create(supplier).Error; err != nil {
		return storageError(err, "create supplier")
	}

	return nil
}

func (r *SupplierRepository) FindByID(ctx context.Context, id uint64) (domain.Supplier, error) {
	if err := ctx.Err(); err != nil {
		return domain.Supplier{}, fmt.Errorf("context error: %w", err)
	}

	var supplier domain.Supplier

	err := conn(ctx, r.DB).First(&supplier, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Supplier{}, domain.NotFoundf("supplier %d not found", id)
		}
		return domain.Supplier{}, storageError(err, "find supplier")
	}

	return supplier, nil
}

func (r *SupplierRepository) FindAll(ctx context.Context, page pagination.Params) ([]domain.Supplier, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("context error: %w", err)
	}

	var total int64
	if err := conn(ctx, r.DB).Model(&domain.Supplier{}).Count(&total).Error; err != nil {
		return nil, 0, storageError(err, "count suppliers")
	}

	page = page.Normalize()

	var suppliers []domain.Supplier
	err := conn(ctx, r.DB).Order("id asc").Offset(page.Offset()).Limit(page.Limit).Find(&suppliers).Error
	if err != nil {
		return nil, 0, storageError(err, "find suppliers")
	}

	return suppliers, total, nil
}

// MissingIDs returns, in ascending order, every id in ids that has no
// supplier row. One query regardless of len(ids).
func (r *SupplierRepository) MissingIDs(ctx context.Context, ids []uint64) ([]uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if len(ids) == 0 {
		return nil, nil
	}

	var found []uint64
	if err := conn(ctx, r.DB).Model(&domain.Supplier{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, storageError(err, "check suppliers")
	}

	exists := make(map[uint64]bool, len(found))
	for _, id := range found {
		exists[id] = true
	}

	var missing []uint64
	for _, id := range ids {
		if !exists[id] {
			missing = append(missing, id)
			exists[id] = true
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })

	return missing, nil
}
