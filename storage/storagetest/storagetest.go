// Package storagetest provides a conformance suite that every storage.Storage
// implementation is expected to pass.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ggoodman/autofill-go/storage"
)

// Factory creates a new, empty Storage for one subtest. The suite closes it.
type Factory func(t *testing.T) storage.Storage

// RunStorageTests runs the complete Storage test suite against the provided factory.
func RunStorageTests(t *testing.T, factory Factory) {
	t.Run("SetAndGet", func(t *testing.T) { testSetAndGet(t, factory) })
	t.Run("GetNonExistent", func(t *testing.T) { testGetNonExistent(t, factory) })
	t.Run("Overwrite", func(t *testing.T) { testOverwrite(t, factory) })
	t.Run("TTL", func(t *testing.T) { testTTL(t, factory) })
	t.Run("Namespaces", func(t *testing.T) { testNamespaces(t, factory) })
	t.Run("DeleteKey", func(t *testing.T) { testDeleteKey(t, factory) })
	t.Run("DeleteSessionNamespace", func(t *testing.T) { testDeleteSessionNamespace(t, factory) })
	t.Run("DeleteClientNamespace", func(t *testing.T) { testDeleteClientNamespace(t, factory) })
	t.Run("SeparatorsInIDs", func(t *testing.T) { testSeparatorsInIDs(t, factory) })
	t.Run("InvalidOptions", func(t *testing.T) { testInvalidOptions(t, factory) })
}

func open(t *testing.T, factory Factory) storage.Storage {
	t.Helper()
	s := factory(t)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustGet(t *testing.T, s storage.Storage, key string, opts ...storage.Option) *storage.Item {
	t.Helper()
	item, err := s.Get(context.Background(), key, opts...)
	if err != nil {
		t.Fatalf("Get(%q) failed: %v", key, err)
	}
	return item
}

func mustSet(t *testing.T, s storage.Storage, key string, data string, opts ...storage.Option) {
	t.Helper()
	if err := s.Set(context.Background(), key, []byte(data), opts...); err != nil {
		t.Fatalf("Set(%q) failed: %v", key, err)
	}
}

func testSetAndGet(t *testing.T, factory Factory) {
	s := open(t, factory)

	mustSet(t, s, "test-key", "test data")
	item := mustGet(t, s, "test-key")
	if item == nil {
		t.Fatal("Expected item to exist, got nil")
	}
	if string(item.Data) != "test data" {
		t.Fatalf("Expected data %q, got %q", "test data", item.Data)
	}
	if item.CreatedAt.IsZero() {
		t.Fatal("CreatedAt should not be zero")
	}
	if item.ExpiresAt != nil {
		t.Fatal("ExpiresAt should be nil for data without TTL")
	}
}

func testGetNonExistent(t *testing.T, factory Factory) {
	s := open(t, factory)
	if item := mustGet(t, s, "non-existent-key"); item != nil {
		t.Fatal("Expected nil for non-existent key, got item")
	}
}

func testOverwrite(t *testing.T, factory Factory) {
	s := open(t, factory)
	mustSet(t, s, "k", "one")
	mustSet(t, s, "k", "two")
	if item := mustGet(t, s, "k"); item == nil || string(item.Data) != "two" {
		t.Fatalf("Expected overwritten value, got %v", item)
	}
}

func testTTL(t *testing.T, factory Factory) {
	s := open(t, factory)
	ttl := 100 * time.Millisecond

	mustSet(t, s, "ttl-key", "ttl data", storage.WithTTL(ttl))
	item := mustGet(t, s, "ttl-key")
	if item == nil {
		t.Fatal("Expected item to exist, got nil")
	}
	if item.ExpiresAt == nil {
		t.Fatal("ExpiresAt should not be nil for data with TTL")
	}

	time.Sleep(ttl + 50*time.Millisecond)

	if item := mustGet(t, s, "ttl-key"); item != nil {
		t.Fatal("Expected nil for expired data, got item")
	}
}

func testNamespaces(t *testing.T, factory Factory) {
	s := open(t, factory)
	key := "namespace-key"

	mustSet(t, s, key, "global data")
	mustSet(t, s, key, "client data", storage.WithClient("client1"))
	mustSet(t, s, key, "session data", storage.WithSession("client1", "session1"))

	cases := []struct {
		opts []storage.Option
		want string
	}{
		{nil, "global data"},
		{[]storage.Option{storage.WithClient("client1")}, "client data"},
		{[]storage.Option{storage.WithSession("client1", "session1")}, "session data"},
	}
	for _, tc := range cases {
		item := mustGet(t, s, key, tc.opts...)
		if item == nil || string(item.Data) != tc.want {
			t.Fatalf("Expected %q, got %v", tc.want, item)
		}
	}

	if item := mustGet(t, s, key, storage.WithClient("client2")); item != nil {
		t.Fatal("Expected nil for different client")
	}
	if item := mustGet(t, s, key, storage.WithSession("client1", "session2")); item != nil {
		t.Fatal("Expected nil for different session")
	}
}

func testDeleteKey(t *testing.T, factory Factory) {
	s := open(t, factory)
	ns := storage.WithSession("c", "s")
	mustSet(t, s, "a", "1", ns)
	mustSet(t, s, "b", "2", ns)

	if err := s.Delete(context.Background(), ns, storage.WithKey("a")); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if item := mustGet(t, s, "a", ns); item != nil {
		t.Fatal("Expected deleted key to be gone")
	}
	if item := mustGet(t, s, "b", ns); item == nil {
		t.Fatal("Expected sibling key to remain")
	}
}

func testDeleteSessionNamespace(t *testing.T, factory Factory) {
	s := open(t, factory)
	mustSet(t, s, "a", "1", storage.WithSession("c", "s1"))
	mustSet(t, s, "b", "2", storage.WithSession("c", "s1"))
	mustSet(t, s, "a", "3", storage.WithSession("c", "s2"))
	mustSet(t, s, "a", "4", storage.WithClient("c"))

	if err := s.Delete(context.Background(), storage.WithSession("c", "s1")); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if mustGet(t, s, "a", storage.WithSession("c", "s1")) != nil || mustGet(t, s, "b", storage.WithSession("c", "s1")) != nil {
		t.Fatal("Expected session namespace to be empty")
	}
	if mustGet(t, s, "a", storage.WithSession("c", "s2")) == nil {
		t.Fatal("Expected other session to remain")
	}
	if mustGet(t, s, "a", storage.WithClient("c")) == nil {
		t.Fatal("Expected client data to remain")
	}
}

func testDeleteClientNamespace(t *testing.T, factory Factory) {
	s := open(t, factory)
	mustSet(t, s, "a", "1", storage.WithClient("c*"))
	mustSet(t, s, "a", "2", storage.WithSession("c*", "s1"))
	mustSet(t, s, "a", "3", storage.WithClient("cx"))
	mustSet(t, s, "a", "4")

	if err := s.Delete(context.Background(), storage.WithClient("c*")); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if mustGet(t, s, "a", storage.WithClient("c*")) != nil {
		t.Fatal("Expected client data to be gone")
	}
	if mustGet(t, s, "a", storage.WithSession("c*", "s1")) != nil {
		t.Fatal("Expected client sessions to be gone")
	}
	if mustGet(t, s, "a", storage.WithClient("cx")) == nil {
		t.Fatal("Wildcard characters in ids must not widen the delete")
	}
	if mustGet(t, s, "a") == nil {
		t.Fatal("Expected global data to remain")
	}
}

func testSeparatorsInIDs(t *testing.T, factory Factory) {
	s := open(t, factory)
	ctx := context.Background()
	victim := storage.WithSession("c:session:s", "x")
	mustSet(t, s, "a", "victim", victim)
	mustSet(t, s, "a", "sibling", storage.WithClient("c:x"))

	if err := s.Delete(ctx, storage.WithSession("c", "s:session:x")); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete(ctx, storage.WithClient("c")); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if item := mustGet(t, s, "a", victim); item == nil || string(item.Data) != "victim" {
		t.Fatalf("Deleting another namespace removed session data, got %v", item)
	}
	if item := mustGet(t, s, "a", storage.WithClient("c:x")); item == nil {
		t.Fatal("Deleting client c removed data of client c:x")
	}
	if item := mustGet(t, s, "a", storage.WithSession("c", "s:session:x")); item != nil {
		t.Fatal("Ids containing separators must not alias another namespace")
	}
}

func testInvalidOptions(t *testing.T, factory Factory) {
	s := open(t, factory)
	ctx := context.Background()
	if err := s.Set(ctx, "k", nil, storage.WithTTL(0)); !errors.Is(err, storage.ErrInvalidOptions) {
		t.Fatalf("Expected ErrInvalidOptions for zero TTL, got %v", err)
	}
	if _, err := s.Get(ctx, "k", storage.WithSession("c", "")); !errors.Is(err, storage.ErrInvalidOptions) {
		t.Fatalf("Expected ErrInvalidOptions for empty session, got %v", err)
	}
	if err := s.Delete(ctx, storage.WithClient("")); !errors.Is(err, storage.ErrInvalidOptions) {
		t.Fatalf("Expected ErrInvalidOptions for empty client, got %v", err)
	}
}
