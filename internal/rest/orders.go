package rest

import (
	"context"
	"errors"
	"fmt"
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

type (
	OrdersHandler struct {
		validate      *validator.Validate
		ordersService OrdersService
		timeout       time.Duration
	}

	OrdersService interface {
		PlaceOrder(ctx context.Context, input domain.PlaceOrderInput) (*domain.Order, error)
		UpdateOrder(ctx context.Context, id uint64, patch domain.OrderPatch) (*domain.Order, error)
		UpdateOrderStatus(ctx context.Context, id uint64, status domain.OrderStatus) (*domain.Order, error)
		GetOrder(ctx context.Context, id uint64) (*domain.Order, error)
		ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error)
		DeleteOrder(ctx context.Context, id uint64) error
	}

	OrderItemInput struct {
		ProductID uint64 `json:"product_id" validate:"required,gt=0"`
		Qty       int64  `json:"qty" validate:"required,gte=1,max=1000000"`
	}

	ShippingAddressInput struct {
		RecipientName string `json:"recipient_name" validate:"required,max=100"`
		Street        string `json:"street" validate:"required,max=255"`
		City          string `json:"city" validate:"required,max=100"`
		Province      string `json:"province" validate:"required,max=100"`
		PostalCode    string `json:"postal_code" validate:"required,numeric,min=4,max=10"`
		Country       string `json:"country" validate:"required,max=100"`
		Phone         string `json:"phone" validate:"required,e164"`
	}

	CreateOrderInput struct {
		Items           []OrderItemInput     `json:"items" validate:"required,min=1,dive"`
		ShippingAddress ShippingAddressInput `json:"shipping_address" validate:"required"`
		PaymentMethod   string               `json:"payment_method" validate:"required,oneof=CASH CREDIT_CARD PAYPAL"`
	}

	UpdateOrderInput struct {
		Items           []OrderItemInput      `json:"items" validate:"omitempty,min=1,dive"`
		ShippingAddress *ShippingAddressInput `json:"shipping_address" validate:"omitempty"`
		PaymentMethod   *string               `json:"payment_method" validate:"omitempty,oneof=CASH CREDIT_CARD PAYPAL"`
	}

	UpdateOrderStatusInput struct {
		Status string `json:"status" validate:"required,oneof=PENDING PROCESSING COMPLETED CANCELLED"`
	}
)

func NewOrdersHandler(ordersService OrdersService, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		validate:      validator.New(),
		ordersService: ordersService,
		timeout:       timeout,
	}
}

func (in ShippingAddressInput) toDomain() domain.ShippingAddress {
	return domain.ShippingAddress{
		RecipientName: in.RecipientName,
		Street:        in.Street,
		City:          in.City,
		Province:      in.Province,
		PostalCode:    in.PostalCode,
		Country:       in.Country,
		Phone:         in.Phone,
	}
}

func toItemInputs(items []OrderItemInput) []domain.OrderItemInput {
	out := make([]domain.OrderItemInput, 0, len(items))
	for _, item := range items {
		out = append(out, domain.OrderItemInput{ProductID: item.ProductID, Qty: item.Qty})
	}
	return out
}

func (h *OrdersHandler) CreateOrder(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, jsonres.Error("UNAUTHORIZED", "unauthorized", nil))
	}

	var request CreateOrderInput
	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return badRequest(c, "invalid request body", nil)
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate order request", err)
		return badRequest(c, "validation failed", validationDetails(err))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.PlaceOrder(ctx, domain.PlaceOrderInput{
		UserID:          userID,
		Items:           toItemInputs(request.Items),
		ShippingAddress: request.ShippingAddress.toDomain(),
		PaymentMethod:   domain.PaymentMethod(request.PaymentMethod),
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(order))
}

func (h *OrdersHandler) GetAllOrders(c echo.Context) error {
	filter := domain.OrderFilter{
		Status:        domain.OrderStatus(c.QueryParam("status")),
		PaymentMethod: domain.PaymentMethod(c.QueryParam("payment_method")),
		Page:          pageParams(c),
	}

	// customers only see their own orders
	if role, _ := c.Get("role").(string); role != domain.RoleAdmin {
		userID, _ := currentUserID(c)
		filter.UserID = userID
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	orders, total, err := h.ordersService.ListOrders(ctx, filter)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, jsonres.Paginated("successfully get orders", orders, pagination.NewMetadata(filter.Page, total)))
}

func (h *OrdersHandler) GetOrderByID(c echo.Context) error {
	orderID, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.GetOrder(ctx, orderID)
	if err != nil {
		return writeError(c, err)
	}

	if !h.canAccess(c, order) {
		return writeError(c, domain.NotFoundf("order %d not found", orderID))
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}

func (h *OrdersHandler) UpdateOrder(c echo.Context) error {
	orderID, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	var request UpdateOrderInput
	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return badRequest(c, "invalid request body", nil)
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate order update", err)
		return badRequest(c, "validation failed", validationDetails(err))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.checkOwner(ctx, c, orderID); err != nil {
		return writeError(c, err)
	}

	var patch domain.OrderPatch
	if request.Items != nil {
		patch.Items = toItemInputs(request.Items)
	}
	if request.ShippingAddress != nil {
		addr := request.ShippingAddress.toDomain()
		patch.ShippingAddress = &addr
	}
	if request.PaymentMethod != nil {
		method := domain.PaymentMethod(*request.PaymentMethod)
		patch.PaymentMethod = &method
	}

	order, err := h.ordersService.UpdateOrder(ctx, orderID, patch)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}

func (h *OrdersHandler) UpdateOrderStatus(c echo.Context) error {
	orderID, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	var request UpdateOrderStatusInput
	if err := c.Bind(&request); err != nil {
		return badRequest(c, "invalid request body", nil)
	}

	if err := h.validate.Struct(&request); err != nil {
		return badRequest(c, "validation failed", validationDetails(err))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.UpdateOrderStatus(ctx, orderID, domain.OrderStatus(request.Status))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}

func (h *OrdersHandler) DeleteOrder(c echo.Context) error {
	orderID, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.checkOwner(ctx, c, orderID); err != nil {
		return writeError(c, err)
	}

	if err := h.ordersService.DeleteOrder(ctx, orderID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Order deleted successfully"))
}

func (h *OrdersHandler) canAccess(c echo.Context, order *domain.Order) bool {
	if role, _ := c.Get("role").(string); role == domain.RoleAdmin {
		return true
	}
	userID, _ := currentUserID(c)
	return order.UserID == userID
}

// checkOwner hides orders of other customers behind NotFound.
func (h *OrdersHandler) checkOwner(ctx context.Context, c echo.Context, orderID uint64) error {
	if role, _ := c.Get("role").(string); role == domain.RoleAdmin {
		return nil
	}

	order, err := h.ordersService.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !h.canAccess(c, order) {
		return domain.NotFoundf("order %d not found", orderID)
	}

	return nil
}

// validationDetails flattens validator errors into "field: rule" strings.
func validationDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			details = append(details, fmt.Sprintf("%s: %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		details = append(details, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
	}

	return details
}
