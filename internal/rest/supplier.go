package rest

import (
	"context"
	"net/http"
	"supplyStore/domain"
	"supplyStore/pkg/logger"
	"supplyStore/pkg/pagination"
	jsonres "supplyStore/pkg/response"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type SupplierService interface {
	CreateSupplier(ctx context.Context, supplier *domain.Supplier) (*domain.Supplier, error)
	GetSupplier(ctx context.Context, id uint64) (*domain.Supplier, error)
	ListSuppliers(ctx context.Context, page pagination.Params) ([]domain.Supplier, int64, error)
}

type StockService interface {
	BatchUpdateStock(ctx context.Context, productID uint64, updates []domain.StockUpdate) ([]domain.Stock, error)
	ListByProduct(ctx context.Context, productID uint64) ([]domain.Stock, error)
	ListBySupplier(ctx context.Context, supplierID uint64) ([]domain.Stock, error)
}

type SupplierHandler struct {
	supplierService SupplierService
	stockService    StockService
	validator       *validator.Validate
	timeout         time.Duration
}

func NewSupplierHandler(supplierService SupplierService, stockService StockService, timeout time.Duration) *SupplierHandler {
	return &SupplierHandler{
		supplierService: supplierService,
		stockService:    stockService,
		validator:       validator.New(),
		timeout:         timeout,
	}
}

type CreateSupplierRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email"`
}

type UpdateStockItemRequest struct {
	SupplierID uint64 `json:"supplierId" validate:"required,gt=0"`
	Qty        int64  `json:"qty" validate:"gte=0"`
}

type UpdateStockRequest struct {
	Updates []UpdateStockItemRequest `json:"updates" validate:"required,min=1,dive"`
}

func (h *SupplierHandler) CreateSupplier(c echo.Context) error {
	var req CreateSupplierRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate supplier request", err)
		return badRequest(c, "validation failed", validationDetails(err))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	supplier, err := h.supplierService.CreateSupplier(ctx, &domain.Supplier{Name: req.Name, Email: req.Email})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(supplier))
}

func (h *SupplierHandler) GetSupplier(c echo.Context) error {
	supplierID, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	supplier, err := h.supplierService.GetSupplier(ctx, supplierID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(supplier))
}

func (h *SupplierHandler) ListSuppliers(c echo.Context) error {
	page := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	suppliers, total, err := h.supplierService.ListSuppliers(ctx, page)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, jsonres.Paginated("successfully get suppliers", suppliers, pagination.NewMetadata(page, total)))
}

func (h *SupplierHandler) ListSupplierStock(c echo.Context) error {
	supplierID, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	stocks, err := h.stockService.ListBySupplier(ctx, supplierID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, jsonres.OK("successfully get supplier stock", stocks))
}

func (h *SupplierHandler) ListProductStock(c echo.Context) error {
	productID, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	stocks, err := h.stockService.ListByProduct(ctx, productID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, jsonres.OK("successfully get product stock", stocks))
}

// UpdateProductStock sets the qty each listed supplier holds for the product.
func (h *SupplierHandler) UpdateProductStock(c echo.Context) error {
	productID, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	var req UpdateStockRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate stock request", err)
		return badRequest(c, "validation failed", validationDetails(err))
	}

	updates := make([]domain.StockUpdate, 0, len(req.Updates))
	for _, u := range req.Updates {
		updates = append(updates, domain.StockUpdate{SupplierID: u.SupplierID, Qty: u.Qty})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	stocks, err := h.stockService.BatchUpdateStock(ctx, productID, updates)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, jsonres.OK("Stock updated successfully", stocks))
}
