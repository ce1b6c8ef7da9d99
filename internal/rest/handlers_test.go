package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"supplyStore/domain"
	"supplyStore/pkg/pagination"
	jsonres "supplyStore/pkg/response"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	fromID, toID uint64
	amount       int64
	err          error
}

func (f *fakeLedger) Transfer(_ context.Context, fromID, toID uint64, amount int64) (*domain.Transaction, error) {
	f.fromID, f.toID, f.amount = fromID, toID, amount
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Transaction{ID: 1, FromID: fromID, ToID: toID, Amount: amount}, nil
}

func (f *fakeLedger) ListTransactions(context.Context, uint64, pagination.Params) ([]domain.Transaction, int64, error) {
	return nil, 0, nil
}

type fakeOrders struct {
	OrdersService
	order  domain.Order
	err    error
	placed domain.PlaceOrderInput
	filter domain.OrderFilter
}

func (f *fakeOrders) PlaceOrder(_ context.Context, in domain.PlaceOrderInput) (*domain.Order, error) {
	f.placed = in
	if f.err != nil {
		return nil, f.err
	}
	return &f.order, nil
}

func (f *fakeOrders) GetOrder(_ context.Context, id uint64) (*domain.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &f.order, nil
}

func (f *fakeOrders) ListOrders(_ context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	f.filter = filter
	return []domain.Order{f.order}, 1, nil
}

func (f *fakeOrders) DeleteOrder(context.Context, uint64) error {
	return f.err
}

func newContext(method, target, body string, userID uint64, role string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user_id", userID)
		c.Set("role", role)
	}
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) jsonres.Envelope {
	t.Helper()

	var env jsonres.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestWriteErrorStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.NotFoundf("order 1 not found"), http.StatusNotFound, "NOT_FOUND"},
		{domain.Invariantf("insufficient stock"), http.StatusUnprocessableEntity, "INVARIANT"},
		{domain.Validationf("bad"), http.StatusBadRequest, "VALIDATION"},
		{domain.Conflictf("taken"), http.StatusConflict, "CONFLICT"},
		{domain.Unavailable(errors.New("deadlock"), "storage is busy, please retry"), http.StatusServiceUnavailable, "UNAVAILABLE"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			c, rec := newContext(http.MethodGet, "/", "", 0, "")
			require.NoError(t, writeError(c, tc.err))

			assert.Equal(t, tc.status, rec.Code)
			env := decode(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tc.code, env.Code)
			assert.NotContains(t, env.Message, "connection refused")
		})
	}

	c, rec := newContext(http.MethodGet, "/", "", 0, "")
	require.NoError(t, writeError(c, domain.Unavailable(errors.New("x"), "busy")))
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestTransferPointsUsesAuthenticatedSender(t *testing.T) {
	svc := &fakeLedger{}
	h := NewLedgerHandler(svc, time.Second)

	c, rec := newContext(http.MethodPost, "/transactions", `{"toId":2,"amount":30}`, 7, domain.RoleCustomer)
	require.NoError(t, h.TransferPoints(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.EqualValues(t, 7, svc.fromID)
	assert.EqualValues(t, 2, svc.toID)
	assert.EqualValues(t, 30, svc.amount)
}

func TestTransferPointsRejectsBadInput(t *testing.T) {
	svc := &fakeLedger{}
	h := NewLedgerHandler(svc, time.Second)

	c, rec := newContext(http.MethodPost, "/transactions", `{"toId":2,"amount":0}`, 7, domain.RoleCustomer)
	require.NoError(t, h.TransferPoints(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, svc.toID)

	svc.err = domain.Invariantf("insufficient balance")
	c, rec = newContext(http.MethodPost, "/transactions", `{"toId":2,"amount":100}`, 7, domain.RoleCustomer)
	require.NoError(t, h.TransferPoints(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "insufficient balance", decode(t, rec).Message)
}

const orderBody = `{
	"items": [{"product_id": 1, "qty": 3}],
	"shipping_address": {
		"recipient_name": "Budi",
		"street": "Jl. Sudirman 1",
		"city": "Jakarta",
		"province": "DKI Jakarta",
		"postal_code": "10220",
		"country": "Indonesia",
		"phone": "+628123456789"
	},
	"payment_method": "CASH"
}`

func TestCreateOrder(t *testing.T) {
	svc := &fakeOrders{order: domain.Order{ID: 9, UserID: 5}}
	h := NewOrdersHandler(svc, time.Second)

	c, rec := newContext(http.MethodPost, "/orders", orderBody, 5, domain.RoleCustomer)
	require.NoError(t, h.CreateOrder(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.EqualValues(t, 5, svc.placed.UserID)
	require.Len(t, svc.placed.Items, 1)
	assert.EqualValues(t, 3, svc.placed.Items[0].Qty)

	svc.err = domain.Invariantf("insufficient stock for product 1")
	c, rec = newContext(http.MethodPost, "/orders", orderBody, 5, domain.RoleCustomer)
	require.NoError(t, h.CreateOrder(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	c, rec = newContext(http.MethodPost, "/orders", `{"items":[],"payment_method":"CASH"}`, 5, domain.RoleCustomer)
	require.NoError(t, h.CreateOrder(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.placed = domain.PlaceOrderInput{}
	hugeQty := strings.Replace(orderBody, `"qty": 3`, `"qty": 4611686018427387904`, 1)
	c, rec = newContext(http.MethodPost, "/orders", hugeQty, 5, domain.RoleCustomer)
	require.NoError(t, h.CreateOrder(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.placed.Items)
}

func TestOrdersAreScopedToOwner(t *testing.T) {
	svc := &fakeOrders{order: domain.Order{ID: 9, UserID: 5}}
	h := NewOrdersHandler(svc, time.Second)

	c, _ := newContext(http.MethodGet, "/orders", "", 6, domain.RoleCustomer)
	require.NoError(t, h.GetAllOrders(c))
	assert.EqualValues(t, 6, svc.filter.UserID)

	c, _ = newContext(http.MethodGet, "/orders", "", 1, domain.RoleAdmin)
	require.NoError(t, h.GetAllOrders(c))
	assert.Zero(t, svc.filter.UserID)

	c, rec := newContext(http.MethodGet, "/orders/9", "", 6, domain.RoleCustomer)
	c.SetParamNames("id")
	c.SetParamValues("9")
	require.NoError(t, h.GetOrderByID(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = newContext(http.MethodDelete, "/orders/9", "", 6, domain.RoleCustomer)
	c.SetParamNames("id")
	c.SetParamValues("9")
	require.NoError(t, h.DeleteOrder(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = newContext(http.MethodGet, "/orders/9", "", 5, domain.RoleCustomer)
	c.SetParamNames("id")
	c.SetParamValues("9")
	require.NoError(t, h.GetOrderByID(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestParseID(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/", "", 0, "")
	c.SetParamNames("id")
	c.SetParamValues("abc")

	_, err := parseID(c, "id")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestPageParamsClampsHugePage(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/orders?page=99999999999999999999999&limit=50", "", 0, "")

	page := pageParams(c)
	assert.Equal(t, pagination.MaxPage, page.Page)
	assert.Equal(t, 50, page.Limit)
	assert.Positive(t, page.Offset())
}
