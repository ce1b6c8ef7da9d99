package rest

import (
	"net/http"
	"strconv"
	"supplyStore/domain"
	"supplyStore/pkg/pagination"
	jsonres "supplyStore/pkg/response"

	"github.com/labstack/echo/v4"
)

// statusFor maps a business error kind to its HTTP status.
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvariant:
		return http.StatusUnprocessableEntity
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err in the error envelope. Untyped errors never leak
// their text to the client.
func writeError(c echo.Context, err error) error {
	kind := domain.KindOf(err)
	status := statusFor(kind)

	if kind == "" {
		return c.JSON(status, jsonres.Error("INTERNAL_ERROR", "internal server error", nil))
	}

	if kind == domain.KindUnavailable {
		c.Response().Header().Set("Retry-After", "1")
	}

	return c.JSON(status, jsonres.Error(string(kind), domain.MessageOf(err), nil))
}

func badRequest(c echo.Context, message string, details any) error {
	return c.JSON(http.StatusBadRequest, jsonres.Error("BAD_REQUEST", message, details))
}

func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, domain.Validationf("invalid %s", name)
	}
	return id, nil
}

// pageParams reads ?page=&limit=. Missing or malformed values fall back to
// the defaults applied by pagination.Params.Normalize.
func pageParams(c echo.Context) pagination.Params {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return pagination.Params{Page: page, Limit: limit}.Normalize()
}

func currentUserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get("user_id").(uint64)
	return id, ok
}
