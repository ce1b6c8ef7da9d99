package rest

import (
	"context"
	"net/http"
	"supplyStore/domain"
	"supplyStore/pkg/logger"
	"supplyStore/pkg/pagination"
	jsonres "supplyStore/pkg/response"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type LedgerService interface {
	Transfer(ctx context.Context, fromID, toID uint64, amount int64) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, accountID uint64, page pagination.Params) ([]domain.Transaction, int64, error)
}

type LedgerHandler struct {
	ledgerService LedgerService
	validator     *validator.Validate
	timeout       time.Duration
}

func NewLedgerHandler(ledgerService LedgerService, timeout time.Duration) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
		validator:     validator.New(),
		timeout:       timeout,
	}
}

type TransferRequest struct {
	ToID   uint64 `json:"toId" validate:"required,gt=0"`
	Amount int64  `json:"amount" validate:"required,gt=0"`
}

// TransferPoints sends points from the authenticated account to toId.
func (h *LedgerHandler) TransferPoints(c echo.Context) error {
	fromID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, jsonres.Error("UNAUTHORIZED", "unauthorized", nil))
	}

	var req TransferRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate transfer request", err)
		return badRequest(c, "validation failed", validationDetails(err))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	entry, err := h.ledgerService.Transfer(ctx, fromID, req.ToID, req.Amount)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, jsonres.OK("Transfer point successful", entry))
}

func (h *LedgerHandler) ListTransactions(c echo.Context) error {
	accountID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, jsonres.Error("UNAUTHORIZED", "unauthorized", nil))
	}

	page := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	entries, total, err := h.ledgerService.ListTransactions(ctx, accountID, page)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, jsonres.Paginated("successfully get transactions", entries, pagination.NewMetadata(page, total)))
}
