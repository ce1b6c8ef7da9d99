package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"supplyStore/pkg/utils"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSessions map[string]string

func (s staticSessions) ValidateTokenFromRedis(_ context.Context, token string) (string, error) {
	id, ok := s[token]
	if !ok {
		return "", errors.New("session not found")
	}
	return id, nil
}

func serve(t *testing.T, mw []echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	require.NoError(t, h(c))

	return rec, c
}

func TestAuthMiddleware(t *testing.T) {
	tokens := utils.NewTokenManager("secret", time.Hour)
	token, _, err := tokens.GenerateJWT("42", "customer")
	require.NoError(t, err)

	t.Run("missing header", func(t *testing.T) {
		rec, _ := serve(t, []echo.MiddlewareFunc{AuthMiddleware(tokens, nil)}, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		rec, _ := serve(t, []echo.MiddlewareFunc{AuthMiddleware(tokens, nil)}, "Basic abc")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("foreign signature", func(t *testing.T) {
		other, _, err := utils.NewTokenManager("other", time.Hour).GenerateJWT("42", "customer")
		require.NoError(t, err)

		rec, _ := serve(t, []echo.MiddlewareFunc{AuthMiddleware(tokens, nil)}, "Bearer "+other)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		rec, c := serve(t, []echo.MiddlewareFunc{AuthMiddleware(tokens, nil)}, "Bearer "+token)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.EqualValues(t, 42, c.Get("user_id"))
		assert.Equal(t, "customer", c.Get("role"))
	})

	t.Run("revoked session", func(t *testing.T) {
		rec, _ := serve(t, []echo.MiddlewareFunc{AuthMiddleware(tokens, staticSessions{})}, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("live session", func(t *testing.T) {
		rec, _ := serve(t, []echo.MiddlewareFunc{AuthMiddleware(tokens, staticSessions{token: "42"})}, "Bearer "+token)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestAdminOnly(t *testing.T) {
	tokens := utils.NewTokenManager("secret", time.Hour)
	customer, _, err := tokens.GenerateJWT("1", "customer")
	require.NoError(t, err)
	admin, _, err := tokens.GenerateJWT("2", "admin")
	require.NoError(t, err)

	chain := []echo.MiddlewareFunc{AuthMiddleware(tokens, nil), AdminOnly()}

	rec, _ := serve(t, chain, "Bearer "+customer)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = serve(t, chain, "Bearer "+admin)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestErrorHandler(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ErrorHandler(echo.ErrNotFound, c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"NOT_FOUND"`)

	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	ErrorHandler(errors.New("boom"), c)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}
