package ledger

import (
	"context"
	"supplyStore/domain"
	"supplyStore/pkg/logger"
	"supplyStore/pkg/metrics"
	"supplyStore/pkg/pagination"
	"time"
)

// AccountRepository contract interface
type AccountRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.User, error)
	LockByIDs(ctx context.Context, ids []uint64) ([]domain.User, error)
	DebitBalance(ctx context.Context, id uint64, amount int64) (bool, error)
	CreditBalance(ctx context.Context, id uint64, amount int64) (bool, error)
}

// LedgerRepository contract interface
type LedgerRepository interface {
	Create(ctx context.Context, entry *domain.Transaction) error
	FindByAccount(ctx context.Context, accountID uint64, page pagination.Params) ([]domain.Transaction, int64, error)
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type LedgerService struct {
	accountRepo AccountRepository
	ledgerRepo  LedgerRepository
	tx          Transactor
	now         func() time.Time
}

func NewLedgerService(accountRepo AccountRepository, ledgerRepo LedgerRepository, tx Transactor) *LedgerService {
	return &LedgerService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		tx:          tx,
		now:         time.Now,
	}
}

// Transfer moves amount points from one account to another and appends a
// ledger entry. Balances and the entry commit together or not at all.
func (s *LedgerService) Transfer(ctx context.Context, fromID, toID uint64, amount int64) (*domain.Transaction, error) {
	entry, err := s.transfer(ctx, fromID, toID, amount)
	metrics.PointTransfers.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		logger.Error("Failed to transfer points", "from_id", fromID, "to_id", toID, "amount", amount, "error", err)
		return nil, err
	}

	metrics.PointTransferAmount.Add(float64(amount))
	logger.Info("points transferred", "transaction_id", entry.ID, "from_id", fromID, "to_id", toID, "amount", amount)

	return entry, nil
}

func (s *LedgerService) transfer(ctx context.Context, fromID, toID uint64, amount int64) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, domain.Validationf("amount must be a positive integer")
	}

	if fromID == toID {
		return nil, domain.Invariantf("cannot transfer points to yourself")
	}

	// courtesy pre-check; the transaction below re-checks under lock
	if _, err := s.accountRepo.FindByID(ctx, toID); err != nil {
		return nil, err
	}

	entry := domain.Transaction{
		FromID: fromID,
		ToID:   toID,
		Amount: amount,
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		accounts, err := s.accountRepo.LockByIDs(ctx, []uint64{fromID, toID})
		if err != nil {
			return err
		}

		found := make(map[uint64]bool, len(accounts))
		for _, a := range accounts {
			found[a.ID] = true
		}
		if !found[fromID] {
			return domain.NotFoundf("user %d not found", fromID)
		}
		if !found[toID] {
			return domain.NotFoundf("user %d not found", toID)
		}

		debited, err := s.accountRepo.DebitBalance(ctx, fromID, amount)
		if err != nil {
			return err
		}
		if !debited {
			return domain.Invariantf("insufficient balance")
		}

		credited, err := s.accountRepo.CreditBalance(ctx, toID, amount)
		if err != nil {
			return err
		}
		if !credited {
			return domain.NotFoundf("user %d not found", toID)
		}

		entry.CreatedAt = s.now()
		return s.ledgerRepo.Create(ctx, &entry)
	})
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

func (s *LedgerService) ListTransactions(ctx context.Context, accountID uint64, page pagination.Params) ([]domain.Transaction, int64, error) {
	entries, total, err := s.ledgerRepo.FindByAccount(ctx, accountID, page)
	if err != nil {
		logger.Error("Failed to list transactions", "account_id", accountID, "error", err)
		return nil, 0, err
	}

	return entries, total, nil
}
