package postgres

import (
	"context"
	"fmt"
	"supplyStore/domain"
	"supplyStore/pkg/pagination"

	"gorm.io/gorm"
)

// LedgerRepository stores point transfer entries. The table is append-only,
// so there are no update or delete methods.
type LedgerRepository struct {
	DB *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{
		DB: db,
	}
}

func (r *LedgerRepository) Create(ctx context.Context, entry *domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := conn(ctx, r.DB).Create(entry).Error; err != nil {
		return storageError(err, "create ledger entry")
	}

	return nil
}

// FindByAccount lists entries sent or received by accountID, newest first.
func (r *LedgerRepository) FindByAccount(ctx context.Context, accountID uint64, page pagination.Params) ([]domain.Transaction, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("context error: %w", err)
	}

	scope := func(db *gorm.DB) *gorm.DB {
		return db.Where("from_id = ? OR to_id = ?", accountID, accountID)
	}

	var total int64
	if err := conn(ctx, r.DB).Model(&domain.Transaction{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, storageError(err, "count ledger entries")
	}

	page = page.Normalize()

	var entries []domain.Transaction
	err := conn(ctx, r.DB).Scopes(scope).
		Order("created_at desc, id desc").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, storageError(err, "find ledger entries")
	}

	return entries, total, nil
}
