package postgres

import (
	"context"
	"errors"
	"fmt"
	"supplyStore/domain"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		DB: db,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := conn(ctx, r.DB).Create(user).Error; err != nil {
		return storageError(err, "create user")
	}

	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (domain.User, error) {
	var user domain.User

	err := conn(ctx, r.DB).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.NotFoundf("user %d not found", id)
		}
		return domain.User{}, storageError(err, "find user")
	}

	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	var user domain.User

	err := conn(ctx, r.DB).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.NotFoundf("user not found")
		}
		return domain.User{}, storageError(err, "find user")
	}

	return user, nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	var users []domain.User

	if err := conn(ctx, r.DB).Order("id asc").Find(&users).Error; err != nil {
		return nil, storageError(err, "find users")
	}

	return users, nil
}

// LockByIDs loads the given accounts with row locks, always in id order so
// two transfers between the same pair cannot deadlock each other.
func (r *UserRepository) LockByIDs(ctx context.Context, ids []uint64) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var users []domain.User
	err := conn(ctx, r.DB).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id asc").
		Find(&users).Error
	if err != nil {
		return nil, storageError(err, "lock accounts")
	}

	return users, nil
}

// DebitBalance subtracts amount only when the balance covers it. It returns
// false when no row qualified, either because the account is missing or the
// balance is too low.
func (r *UserRepository) DebitBalance(ctx context.Context, id uint64, amount int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context error: %w", err)
	}

	result := conn(ctx, r.DB).Model(&domain.User{}).
		Where("id = ? AND balance >= ?", id, amount).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance - ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, storageError(result.Error, "debit balance")
	}

	return result.RowsAffected == 1, nil
}

func (r *UserRepository) CreditBalance(ctx context.Context, id uint64, amount int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context error: %w", err)
	}

	result := conn(ctx, r.DB).Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance + ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, storageError(result.Error, "credit balance")
	}

	return result.RowsAffected == 1, nil
}
