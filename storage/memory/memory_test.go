package memory

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/ggoodman/autofill-go/storage"
	"github.com/ggoodman/autofill-go/storage/storagetest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMemoryStorage(t *testing.T) {
	storagetest.RunStorageTests(t, func(t *testing.T) storage.Storage {
		s, err := New(100)
		if err != nil {
			t.Fatalf("New() failed: %v", err)
		}
		return s
	})
}

func TestNew_InvalidSize(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for zero capacity")
	}
}

func TestEviction(t *testing.T) {
	s, err := New(2)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		if err := s.Set(ctx, k, []byte(k)); err != nil {
			t.Fatalf("Set(%q) failed: %v", k, err)
		}
	}
	if item, _ := s.Get(ctx, "a"); item != nil {
		t.Fatal("expected least recently used item to be evicted")
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", s.Len())
	}
}

func TestSweeperRemovesExpired(t *testing.T) {
	s, err := New(10, WithSweepInterval(10*time.Millisecond))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Close()

	if err := s.Set(context.Background(), "k", []byte("v"), storage.WithTTL(5*time.Millisecond)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for s.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("expired item was never swept")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s, err := New(10)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	data := []byte("abc")
	_ = s.Set(ctx, "k", data)
	data[0] = 'x'
	item, _ := s.Get(ctx, "k")
	item.Data[1] = 'y'
	again, _ := s.Get(ctx, "k")
	if string(again.Data) != "abc" {
		t.Fatalf("stored data was aliased: %q", again.Data)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	s, err := New(10)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}
