package rest

import (
	"context"
	"net/http"
	"strconv"
	"supplyStore/domain"
	"supplyStore/pkg/logger"
	"supplyStore/pkg/pagination"
	jsonres "supplyStore/pkg/response"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ProductService interface {
	GetAllProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error)
	GetProductByID(ctx context.Context, id uint64) (*domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uint64, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uint64) error
}

type ProductHandler struct {
	productService ProductService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewProductHandler(productService ProductService, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      validator.New(),
		timeout:        timeout,
	}
}

type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description" validate:"max=2000"`
	Price       decimal.Decimal `json:"price"`
	Stock       int64           `json:"stock" validate:"gte=0"`
	Status      string          `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE DRAFT"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int64           `json:"stock" validate:"omitempty,gte=0"`
	Status      *string          `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE DRAFT"`
}

// productFilter reads min_price, max_price, min_stock, max_stock, sort,
// order, page and limit from the query string.
func productFilter(c echo.Context) (domain.ProductFilter, error) {
	filter := domain.ProductFilter{
		Sort:  c.QueryParam("sort"),
		Order: c.QueryParam("order"),
		Page:  pageParams(c),
	}

	for name, dst := range map[string]**decimal.Decimal{
		"min_price": &filter.MinPrice,
		"max_price": &filter.MaxPrice,
	} {
		if raw := c.QueryParam(name); raw != "" {
			v, err := decimal.NewFromString(raw)
			if err != nil {
				return filter, domain.Validationf("%s must be a number", name)
			}
			*dst = &v
		}
	}

	for name, dst := range map[string]**int64{
		"min_stock": &filter.MinStock,
		"max_stock": &filter.MaxStock,
	} {
		if raw := c.QueryParam(name); raw != "" {
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return filter, domain.Validationf("%s must be an integer", name)
			}
			*dst = &v
		}
	}

	return filter, nil
}

func (h *ProductHandler) GetAllProducts(c echo.Context) error {
	filter, err := productFilter(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, total, err := h.productService.GetAllProducts(ctx, filter)
	if err != nil {
		logger.Error("Failed to find all Product", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, jsonres.Paginated("successfully get all products", products, pagination.NewMetadata(filter.Page, total)))
}

func (h *ProductHandler) GetProductByID(c echo.Context) error {
	productID, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	product, err := h.productService.GetProductByID(ctx, productID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(product))
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req CreateProductRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return badRequest(c, "invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate product request", err)
		return badRequest(c, "validation failed", validationDetails(err))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	newProduct, err := h.productService.CreateProduct(ctx, &domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Status:      domain.ProductStatus(req.Status),
	})
	if err != nil {
		logger.Error("Failed to create Product", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(newProduct))
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	productID, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	var req UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return badRequest(c, "invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate product request", err)
		return badRequest(c, "validation failed", validationDetails(err))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	patch := domain.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	}
	if req.Status != nil {
		status := domain.ProductStatus(*req.Status)
		patch.Status = &status
	}

	updated, err := h.productService.UpdateProduct(ctx, productID, patch)
	if err != nil {
		logger.Error("Failed to update Product", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(updated))
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	productID, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.productService.DeleteProduct(ctx, productID); err != nil {
		logger.Error("Failed to delete Product", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":    "product successfully deleted",
		"product_id": productID,
	})
}
