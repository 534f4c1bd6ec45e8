package sentinel

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shipprint/backend/internal/domain/printing"
)

const defaultRedisKeyPrefix = "shipprint:sentinel:"

// RedisStore implements SentinelStore using Redis.
// Markers can be shared by several hosts printing to different queues.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	// TTL expires markers; zero keeps them until removed
	TTL time.Duration
}

// NewRedisStore creates a Redis-backed store and checks the connection
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreWithClient(client, cfg.KeyPrefix, cfg.TTL), nil
}

// NewRedisStoreWithClient creates a store with an existing Redis client
func NewRedisStoreWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = defaultRedisKeyPrefix
	}
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Has implements printing.SentinelStore
func (s *RedisStore) Has(ctx context.Context, key string) (bool, error) {
	if err := printing.ValidateKey(key); err != nil {
		return false, err
	}
	exists, err := s.client.Exists(ctx, s.keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check sentinel: %w", err)
	}
	return exists > 0, nil
}

// Put implements printing.SentinelStore. SET is atomic.
func (s *RedisStore) Put(ctx context.Context, key string, content []byte) error {
	if err := printing.ValidateKey(key); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.keyPrefix+key, content, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write sentinel: %w", err)
	}
	return nil
}

// Remove implements printing.SentinelStore
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := printing.ValidateKey(key); err != nil {
		return err
	}
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to remove sentinel: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Client returns the underlying Redis client (for testing/monitoring)
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

var _ printing.SentinelStore = (*RedisStore)(nil)
