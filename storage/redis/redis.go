// Package redis provides a Redis-based implementation of the storage.Storage interface
// using Redis for namespaced key-value storage with TTL support.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/redis/go-redis/v9"

	"github.com/ggoodman/autofill-go/storage"
)

// Config contains configuration options for the Redis storage. Defaults can
// be loaded from the environment with ConfigFromEnv.
type Config struct {
	// Client is the Redis client instance. When nil, one is created from Addr and DB.
	Client *redis.Client

	// Addr like "localhost:6379". ENV: AUTOFILL_REDIS_ADDR
	Addr string `env:"AUTOFILL_REDIS_ADDR,default=localhost:6379"`

	// DB selects the logical database. ENV: AUTOFILL_REDIS_DB
	DB int `env:"AUTOFILL_REDIS_DB,default=0"`

	// KeyPrefix is the prefix for all Redis keys. ENV: AUTOFILL_REDIS_KEY_PREFIX
	KeyPrefix string `env:"AUTOFILL_REDIS_KEY_PREFIX,default=autofill:storage:"`
}

// ConfigFromEnv populates a Config using envdecode.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode redis config: %w", err)
	}
	return cfg, nil
}

// Storage implements the storage.Storage interface using Redis
type Storage struct {
	client    *redis.Client
	keyPrefix string
}

// storedItem represents the structure stored in Redis
type storedItem struct {
	Data      []byte     `json:"data"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// New creates a new Redis-based storage instance. When the config carries no
// client, one is dialled and pinged.
func New(ctx context.Context, config Config) (*Storage, error) {
	client := config.Client
	if client == nil {
		addr := config.Addr
		if addr == "" {
			addr = "localhost:6379"
		}
		client = redis.NewClient(&redis.Options{Addr: addr, DB: config.DB})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
	}

	if config.KeyPrefix == "" {
		config.KeyPrefix = "autofill:storage:"
	}

	return &Storage{
		client:    client,
		keyPrefix: config.KeyPrefix,
	}, nil
}

// NewFromEnv builds a Storage from ConfigFromEnv.
func NewFromEnv(ctx context.Context) (*Storage, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return New(ctx, cfg)
}

// Get retrieves data for a specific key within the given namespace
func (s *Storage) Get(ctx context.Context, key string, opts ...storage.Option) (*storage.Item, error) {
	options := storage.Apply(opts...)
	if err := options.Validate(); err != nil {
		return nil, err
	}
	redisKey := s.buildKey(options.Namespace, key)

	raw, err := s.client.Get(ctx, redisKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get key %s: %w", redisKey, err)
	}

	var item storedItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored data: %w", err)
	}

	out := &storage.Item{
		Data:      item.Data,
		CreatedAt: item.CreatedAt,
		ExpiresAt: item.ExpiresAt,
	}

	// Redis expiry has millisecond precision; the stored deadline is authoritative.
	if out.IsExpired() {
		s.client.Del(ctx, redisKey)
		return nil, nil
	}

	return out, nil
}

// Set stores data for a specific key within the given namespace
func (s *Storage) Set(ctx context.Context, key string, data []byte, opts ...storage.Option) error {
	options := storage.Apply(opts...)
	if err := options.Validate(); err != nil {
		return err
	}
	redisKey := s.buildKey(options.Namespace, key)

	now := time.Now()
	item := storedItem{
		Data:      data,
		CreatedAt: now,
	}

	var redisTTL time.Duration
	if options.TTL != nil {
		expiresAt := now.Add(*options.TTL)
		item.ExpiresAt = &expiresAt
		redisTTL = *options.TTL
	}

	itemData, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal storage item: %w", err)
	}

	if err := s.client.Set(ctx, redisKey, itemData, redisTTL).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", redisKey, err)
	}

	return nil
}

// Delete removes data within the given namespace. Deleting a client
// namespace also removes the sessions below it.
func (s *Storage) Delete(ctx context.Context, opts ...storage.Option) error {
	options := storage.Apply(opts...)
	if err := options.Validate(); err != nil {
		return err
	}

	if options.Key != nil {
		redisKey := s.buildKey(options.Namespace, *options.Key)
		if err := s.client.Del(ctx, redisKey).Err(); err != nil {
			return fmt.Errorf("failed to delete key %s: %w", redisKey, err)
		}
		return nil
	}

	pattern := escapeGlob(s.namespacePrefix(options.Namespace)) + "*"
	keys, err := s.scanKeys(ctx, pattern)
	if err != nil {
		return fmt.Errorf("failed to scan keys for pattern %s: %w", pattern, err)
	}
	if len(keys) > 0 {
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete keys: %w", err)
		}
	}
	return nil
}

// Close closes the storage backend and releases resources
func (s *Storage) Close() error {
	return s.client.Close()
}

func (s *Storage) buildKey(namespace storage.Namespace, key string) string {
	return s.keyPrefix + storage.Key(namespace, key)
}

func (s *Storage) namespacePrefix(namespace storage.Namespace) string {
	return s.keyPrefix + storage.NamespacePrefix(namespace)
}

// scanKeys uses Redis SCAN to find all keys matching a pattern
func (s *Storage) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		batch, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}

var globReplacer = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// escapeGlob quotes the characters SCAN MATCH treats as wildcards.
func escapeGlob(s string) string { return globReplacer.Replace(s) }

// Compile-time interface check
var _ storage.Storage = (*Storage)(nil)
