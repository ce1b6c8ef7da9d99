package user_test

import (
	"context"
	"errors"
	"supplyStore/business/user"
	"supplyStore/domain"
	"supplyStore/internal/repository/postgres"
	"supplyStore/pkg/database/databasetest"
	"supplyStore/pkg/utils"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySessions struct {
	sessions map[string]domain.Session
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: map[string]domain.Session{}}
}

func (m *memorySessions) StoreSession(_ context.Context, token string, session domain.Session, _ time.Duration) error {
	m.sessions[token] = session
	return nil
}

func (m *memorySessions) ValidateSession(_ context.Context, token string) (string, error) {
	s, ok := m.sessions[token]
	if !ok {
		return "", errors.New("session not found")
	}
	return s.UserID, nil
}

func (m *memorySessions) DeleteSession(_ context.Context, token string) error {
	delete(m.sessions, token)
	return nil
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	sessions := newMemorySessions()
	tokens := utils.NewTokenManager("secret", time.Hour)
	svc := user.NewUserService(postgres.NewUserRepository(databasetest.New(t)), sessions, tokens, validator.New(), []string{"Boss@Example.com"})

	customer, err := svc.Register(ctx, &domain.User{Name: "Ani", Email: "ani@example.com", Password: "secret1", Balance: 50})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, customer.Role)
	assert.EqualValues(t, 50, customer.Balance)
	assert.Empty(t, customer.Password)

	admin, err := svc.Register(ctx, &domain.User{Name: "Boss", Email: "boss@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	_, err = svc.Register(ctx, &domain.User{Name: "Ani", Email: "ani@example.com", Password: "secret1"})
	require.ErrorIs(t, err, domain.ErrConflict)

	_, _, err = svc.Login(ctx, "ani@example.com", "wrong-password", "127.0.0.1", "test")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "secret1", "127.0.0.1", "test")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	token, logged, err := svc.Login(ctx, "ani@example.com", "secret1", "127.0.0.1", "test")
	require.NoError(t, err)
	assert.Equal(t, customer.ID, logged.ID)

	claims, err := tokens.ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, claims.Role)

	userID, err := svc.ValidateTokenFromRedis(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, userID)

	require.NoError(t, svc.Logout(ctx, customer.ID, token))
	_, err = svc.ValidateTokenFromRedis(ctx, token)
	require.Error(t, err)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := user.NewUserService(postgres.NewUserRepository(databasetest.New(t)), nil, utils.NewTokenManager("secret", time.Hour), validator.New(), nil)

	for name, u := range map[string]domain.User{
		"bad email":        {Email: "not-an-email", Password: "secret1"},
		"short password":   {Email: "a@example.com", Password: "123"},
		"negative balance": {Email: "a@example.com", Password: "secret1", Balance: -1},
	} {
		t.Run(name, func(t *testing.T) {
			u := u
			_, err := svc.Register(ctx, &u)
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}
