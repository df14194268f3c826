package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kindcoach/kindcoach-api/internal/domain/entities"
)

// SessionStore tracks active login sessions by token hash. Sessions slide:
// each authenticated request refreshes the TTL.
type SessionStore interface {
	Set(ctx context.Context, tokenHash, username string, ttl time.Duration) error
	Get(ctx context.Context, tokenHash string) (string, error)
	Refresh(ctx context.Context, tokenHash string, ttl time.Duration) error
	Delete(ctx context.Context, tokenHash string) error
}

// NewRedisClient creates and pings a Redis client
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// RedisSessionStore is the Redis-backed session store
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore creates a Redis-backed session store
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(tokenHash string) string {
	return "session:" + tokenHash
}

// Set stores a session with the given TTL
func (s *RedisSessionStore) Set(ctx context.Context, tokenHash, username string, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionKey(tokenHash), username, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Get returns the username of an active session
func (s *RedisSessionStore) Get(ctx context.Context, tokenHash string) (string, error) {
	username, err := s.client.Get(ctx, sessionKey(tokenHash)).Result()
	if errors.Is(err, redis.Nil) {
		return "", entities.ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	return username, nil
}

// Refresh extends an active session's TTL
func (s *RedisSessionStore) Refresh(ctx context.Context, tokenHash string, ttl time.Duration) error {
	ok, err := s.client.Expire(ctx, sessionKey(tokenHash), ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to refresh session: %w", err)
	}
	if !ok {
		return entities.ErrSessionNotFound
	}
	return nil
}

// Delete removes a session
func (s *RedisSessionStore) Delete(ctx context.Context, tokenHash string) error {
	if err := s.client.Del(ctx, sessionKey(tokenHash)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
