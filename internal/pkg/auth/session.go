package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when a session id is unknown or expired
var ErrSessionNotFound = errors.New("session not found")

// SessionStore records live sessions so tokens can be revoked before expiry
type SessionStore interface {
	Create(ctx context.Context, sessionID string, studentID int64, ttl time.Duration) error
	Lookup(ctx context.Context, sessionID string) (int64, error)
	Revoke(ctx context.Context, sessionID string) error
}

const sessionKeyPrefix = "session:"

// RedisSessionStore keeps sessions as keys with a TTL equal to the token lifetime
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore creates a session store over an existing client
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

// Create stores the session owner
func (s *RedisSessionStore) Create(ctx context.Context, sessionID string, studentID int64, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionKey(sessionID), studentID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Lookup returns the student that owns a live session
func (s *RedisSessionStore) Lookup(ctx context.Context, sessionID string) (int64, error) {
	value, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrSessionNotFound
		}
		return 0, fmt.Errorf("failed to read session: %w", err)
	}

	studentID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session value: %w", err)
	}
	return studentID, nil
}

// Revoke deletes a session. Revoking an unknown session is not an error.
func (s *RedisSessionStore) Revoke(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
