package user

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"supplyStore/domain"
	"supplyStore/pkg/logger"
	"supplyStore/pkg/utils"
	"time"

	"github.com/go-playground/validator/v10"
)

// UserRepository contract interface
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint64) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
}

// SessionRepository contract interface. Optional: without it tokens are
// only checked by signature and expiry.
type SessionRepository interface {
	StoreSession(ctx context.Context, token string, session domain.Session, ttl time.Duration) error
	ValidateSession(ctx context.Context, token string) (string, error)
	DeleteSession(ctx context.Context, token string) error
}

type userService struct {
	userRepo    UserRepository
	sessionRepo SessionRepository
	tokens      *utils.TokenManager
	validate    *validator.Validate
	adminEmails map[string]bool
}

func NewUserService(
	userRepo UserRepository,
	sessionRepo SessionRepository,
	tokens *utils.TokenManager,
	validate *validator.Validate,
	adminEmails []string,
) *userService {
	admins := make(map[string]bool, len(adminEmails))
	for _, email := range adminEmails {
		admins[strings.ToLower(email)] = true
	}

	return &userService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		tokens:      tokens,
		validate:    validate,
		adminEmails: admins,
	}
}

// Register creates an account with an optional opening balance. Addresses
// listed in APP_ADMIN_EMAILS are registered as admins.
func (s *userService) Register(ctx context.Context, user *domain.User) (domain.User, error) {
	if err := s.validate.Var(user.Email, "required,email"); err != nil {
		logger.Error("Invalid email format", err)
		return domain.User{}, domain.Validationf("invalid email format")
	}

	if err := s.validate.Var(user.Password, "required,min=6"); err != nil {
		logger.Error("Invalid user password", err)
		return domain.User{}, domain.Validationf("password must be at least 6 characters")
	}

	if user.Balance < 0 {
		return domain.User{}, domain.Validationf("balance cannot be negative")
	}

	// Check if email already exists
	if _, err := s.userRepo.FindByEmail(ctx, user.Email); err == nil {
		logger.Error("Email already exists")
		return domain.User{}, domain.Conflictf("email already exists")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, err
	}

	passwordHash, err := utils.HashPassword(user.Password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return domain.User{}, errors.New("failed to hash password")
	}

	role := domain.RoleCustomer
	if s.adminEmails[strings.ToLower(user.Email)] {
		role = domain.RoleAdmin
	}

	now := time.Now()
	newUser := domain.User{
		Name:      user.Name,
		Email:     user.Email,
		Password:  string(passwordHash),
		Balance:   user.Balance,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, &newUser); err != nil {
		logger.Error("Failed to create new user", err)
		return domain.User{}, err
	}

	newUser.Password = ""
	return newUser, nil
}

func (s *userService) Login(ctx context.Context, email, password, ipAddress, userAgent string) (string, domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		logger.Error("Invalid user credentials", err)
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.User{}, domain.ErrInvalidCredentials
		}
		return "", domain.User{}, err
	}

	if !utils.CheckPassword(password, user.Password) {
		logger.Error("User password incorrect", "user_id", user.ID)
		return "", domain.User{}, domain.ErrInvalidCredentials
	}

	userIDStr := strconv.FormatUint(user.ID, 10)
	token, expiresAt, err := s.tokens.GenerateJWT(userIDStr, user.Role)
	if err != nil {
		logger.Error("Failed to generated token", err)
		return "", domain.User{}, errors.New("failed to generate token")
	}

	if s.sessionRepo != nil {
		session := domain.Session{
			UserID:    userIDStr,
			Role:      user.Role,
			IssuedAt:  time.Now(),
			ExpiresAt: expiresAt,
			IPAddress: ipAddress,
			UserAgent: userAgent,
		}
		if err := s.sessionRepo.StoreSession(ctx, token, session, time.Until(expiresAt)); err != nil {
			logger.Error("Failed to store session", err)
			return "", domain.User{}, errors.New("failed to store session")
		}
	}

	user.Password = ""
	return token, user, nil
}

// ValidateTokenFromRedis is used by the auth middleware when sessions are enabled.
func (s *userService) ValidateTokenFromRedis(ctx context.Context, token string) (string, error) {
	if s.sessionRepo == nil {
		return "", errors.New("sessions are disabled")
	}

	return s.sessionRepo.ValidateSession(ctx, token)
}

func (s *userService) Logout(ctx context.Context, userID uint64, token string) error {
	if s.sessionRepo == nil {
		logger.Info("logout without session store", "user_id", userID)
		return nil
	}

	if err := s.sessionRepo.DeleteSession(ctx, token); err != nil {
		logger.Error("Failed to delete session", err)
		return err
	}

	logger.Info("user logged out", "user_id", userID)
	return nil
}

// GetUserByID retrieves a user by ID, balance included
func (s *userService) GetUserByID(ctx context.Context, id uint64) (domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("Failed to get user by ID", err)
		return domain.User{}, err
	}

	user.Password = ""
	return user, nil
}

// GetAllUsers retrieves all users
func (s *userService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to get all users", err)
		return nil, err
	}

	for i := range users {
		users[i].Password = ""
	}

	return users, nil
}
