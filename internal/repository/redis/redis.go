package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"supplyStore/domain"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found or expired")

// SessionRepository keeps one key per live token so logout can revoke a
// token before its JWT expiry.
type SessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{
		client: client,
	}
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:token:%s", token)
}

func (r *SessionRepository) StoreSession(ctx context.Context, token string, session domain.Session, ttl time.Duration) error {
	jsonData, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKey(token), jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session in Redis: %w", err)
	}

	return nil
}

// ValidateSession returns the user id bound to token.
func (r *SessionRepository) ValidateSession(ctx context.Context, token string) (string, error) {
	val, err := r.client.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("failed to get session from Redis: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return "", fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return session.UserID, nil
}

func (r *SessionRepository) DeleteSession(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}
