package rest

import (
	"context"
	"errors"
	"net/http"
	"supplyStore/domain"
	"supplyStore/pkg/logger"
	jsonres "supplyStore/pkg/response"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type UserService interface {
	Register(ctx context.Context, user *domain.User) (domain.User, error)
	Login(ctx context.Context, email, password, ipAddress, userAgent string) (string, domain.User, error)
	Logout(ctx context.Context, userID uint64, token string) error
	GetUserByID(ctx context.Context, id uint64) (domain.User, error)
	GetAllUsers(ctx context.Context) ([]domain.User, error)
}

type UserHandler struct {
	userService UserService
	validator   *validator.Validate
	timeout     time.Duration
}

func NewUserHandler(userService UserService, timeout time.Duration) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator.New(),
		timeout:     timeout,
	}
}

type UserRegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Balance  int64  `json:"balance" validate:"gte=0"`
}

type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *UserHandler) Register(c echo.Context) error {
	var reqUser UserRegisterRequest

	if err := c.Bind(&reqUser); err != nil {
		logger.Error("Invalid request body", err)
		return badRequest(c, "invalid request body", nil)
	}

	if err := h.validator.Struct(&reqUser); err != nil {
		logger.Error("Failed to validation user register", err)
		return badRequest(c, "validation failed", validationDetails(err))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	user, err := h.userService.Register(ctx, &domain.User{
		Name:     reqUser.Name,
		Email:    reqUser.Email,
		Password: reqUser.Password,
		Balance:  reqUser.Balance,
	})
	if err != nil {
		logger.Error("Failed to register user", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, jsonres.OK("Registration successful", user))
}

func (h *UserHandler) Login(c echo.Context) error {
	var reqUser UserLoginRequest

	if err := c.Bind(&reqUser); err != nil {
		logger.Error("Failed to bind request", err)
		return badRequest(c, "invalid request body", nil)
	}

	if err := h.validator.Struct(&reqUser); err != nil {
		logger.Error("Failed to validate user login", err)
		return badRequest(c, "validation failed", validationDetails(err))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	token, user, err := h.userService.Login(ctx, reqUser.Email, reqUser.Password, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		logger.Error("Failed to login with user", err)
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, jsonres.Error("UNAUTHORIZED", err.Error(), nil))
		}
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, jsonres.OK("Login successful", map[string]interface{}{
		"token": token,
		"user":  user,
	}))
}

// Logout revokes the token that authenticated this request
func (h *UserHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	userID, ok := currentUserID(c)
	if !ok {
		logger.Error("Failed to get user_id from context")
		return c.JSON(http.StatusUnauthorized, jsonres.Error("UNAUTHORIZED", "unauthorized", nil))
	}

	token, ok := c.Get("token").(string)
	if !ok {
		logger.Error("Failed to get token from context")
		return c.JSON(http.StatusUnauthorized, jsonres.Error("UNAUTHORIZED", "unauthorized", nil))
	}

	if err := h.userService.Logout(ctx, userID, token); err != nil {
		logger.Error("Failed to logout user", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, jsonres.OK("Logout successful", nil))
}

// Me returns the authenticated account, including its point balance
func (h *UserHandler) Me(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, jsonres.Error("UNAUTHORIZED", "unauthorized", nil))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	user, err := h.userService.GetUserByID(ctx, userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, jsonres.OK("User retrieved successfully", user))
}

// GetAllUsers handles getting all users
func (h *UserHandler) GetAllUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	users, err := h.userService.GetAllUsers(ctx)
	if err != nil {
		logger.Error("Failed to get all users", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, jsonres.OK("Users retrieved successfully", users))
}
