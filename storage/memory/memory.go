// Package memory provides an in-memory implementation of the storage interface
// using github.com/hashicorp/golang-lru/v2 for bounded caching with TTL support.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ggoodman/autofill-go/storage"
)

// DefaultSweepInterval is how often expired items are purged when no
// interval is configured.
const DefaultSweepInterval = time.Minute

// Storage implements the storage.Storage interface using in-memory storage
type Storage struct {
	mu    sync.RWMutex
	cache *lru.Cache[string, *storage.Item]

	sweepEvery time.Duration
	stop       chan struct{}
	done       chan struct{}
	closeOnce  sync.Once
}

// Option configures a memory Storage.
type Option func(*Storage)

// WithSweepInterval sets how often expired items are purged in the background.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Storage) {
		if d > 0 {
			s.sweepEvery = d
		}
	}
}

// New creates a new in-memory storage holding at most maxItems entries. The
// least recently used entry is evicted when the limit is reached.
func New(maxItems int, opts ...Option) (*Storage, error) {
	cache, err := lru.New[string, *storage.Item](maxItems)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}

	s := &Storage{
		cache:      cache,
		sweepEvery: DefaultSweepInterval,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}

	// Start background cleanup of expired items
	go s.cleanupExpired()

	return s, nil
}

// Get retrieves data for a specific key within the given namespace
func (s *Storage) Get(ctx context.Context, key string, opts ...storage.Option) (*storage.Item, error) {
	options := storage.Apply(opts...)
	if err := options.Validate(); err != nil {
		return nil, err
	}
	storageKey := storage.Key(options.Namespace, key)

	s.mu.RLock()
	item, exists := s.cache.Get(storageKey)
	s.mu.RUnlock()

	if !exists {
		return nil, nil
	}

	if item.IsExpired() {
		s.mu.Lock()
		s.cache.Remove(storageKey)
		s.mu.Unlock()
		return nil, nil
	}

	out := *item
	out.Data = append([]byte(nil), item.Data...)
	return &out, nil
}

// Set stores data for a specific key within the given namespace
func (s *Storage) Set(ctx context.Context, key string, data []byte, opts ...storage.Option) error {
	options := storage.Apply(opts...)
	if err := options.Validate(); err != nil {
		return err
	}
	storageKey := storage.Key(options.Namespace, key)

	now := time.Now()
	item := &storage.Item{
		Data:      append([]byte(nil), data...),
		CreatedAt: now,
	}
	if options.TTL != nil {
		expiresAt := now.Add(*options.TTL)
		item.ExpiresAt = &expiresAt
	}

	s.mu.Lock()
	s.cache.Add(storageKey, item)
	s.mu.Unlock()

	return nil
}

// Delete removes data within the given namespace. Deleting a client
// namespace also removes the sessions below it.
func (s *Storage) Delete(ctx context.Context, opts ...storage.Option) error {
	options := storage.Apply(opts...)
	if err := options.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if options.Key != nil {
		s.cache.Remove(storage.Key(options.Namespace, *options.Key))
		return nil
	}
	prefix := storage.NamespacePrefix(options.Namespace)
	for _, k := range s.cache.Keys() {
		if strings.HasPrefix(k, prefix) {
			s.cache.Remove(k)
		}
	}
	return nil
}

// Close stops the background sweeper and drops all data.
func (s *Storage) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
		<-s.done
		s.mu.Lock()
		s.cache.Purge()
		s.mu.Unlock()
	})
	return nil
}

// Len reports the number of stored items, including expired ones not yet swept.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache.Len()
}

func (s *Storage) cleanupExpired() {
	defer close(s.done)
	t := time.NewTicker(s.sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			s.sweep()
		}
	}
}

func (s *Storage) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.cache.Keys() {
		if item, ok := s.cache.Peek(k); ok && item.IsExpired() {
			s.cache.Remove(k)
		}
	}
}

// Compile-time interface check
var _ storage.Storage = (*Storage)(nil)
