package redis

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ggoodman/autofill-go/storage"
	"github.com/ggoodman/autofill-go/storage/storagetest"
)

func TestRedisStorage(t *testing.T) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}

	// Skip test if Redis is not available
	probe := redis.NewClient(&redis.Options{Addr: cfg.Addr, DB: 2})
	ctx := context.Background()
	if err := probe.Ping(ctx).Err(); err != nil {
		_ = probe.Close()
		t.Skipf("Redis not available: %v", err)
	}
	_ = probe.Close()

	storagetest.RunStorageTests(t, func(t *testing.T) storage.Storage {
		// Use separate DB and a unique prefix so subtests never see each other's keys
		client := redis.NewClient(&redis.Options{Addr: cfg.Addr, DB: 2})
		prefix := "autofill-test:" + uuid.NewString() + ":"
		t.Cleanup(func() {
			c := redis.NewClient(&redis.Options{Addr: cfg.Addr, DB: 2})
			defer c.Close()
			keys, _ := c.Keys(context.Background(), prefix+"*").Result()
			if len(keys) > 0 {
				c.Del(context.Background(), keys...)
			}
		})
		s, err := New(ctx, Config{Client: client, KeyPrefix: prefix})
		if err != nil {
			t.Fatalf("Failed to create Redis storage: %v", err)
		}
		return s
	})
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("AUTOFILL_REDIS_ADDR", "")
	t.Setenv("AUTOFILL_REDIS_KEY_PREFIX", "")
	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if cfg.Addr != "localhost:6379" || cfg.KeyPrefix != "autofill:storage:" || cfg.DB != 0 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("AUTOFILL_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("AUTOFILL_REDIS_DB", "3")
	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if cfg.Addr != "redis.internal:6380" || cfg.DB != 3 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestEscapeGlob(t *testing.T) {
	if got := escapeGlob(`a*b?[c]\`); got != `a\*b\?\[c\]\\` {
		t.Fatalf("escapeGlob = %q", got)
	}
}
