package memory

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_SetGetDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Set(ctx, "a", []byte("1"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	v, ok, err := s.Get(ctx, "a")
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if string(v) != "1" {
		t.Errorf("expected 1, got %s", v)
	}

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	// Deleting again is fine
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}

	_, ok, _ = s.Get(ctx, "a")
	if ok {
		t.Error("expected key to be gone")
	}
}

func TestMemoryStore_TTL(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	base := time.Now()
	s.now = func() time.Time { return base }

	if err := s.Set(ctx, "a", []byte("1"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, ok, _ := s.Get(ctx, "a"); !ok {
		t.Fatal("expected value before expiry")
	}

	s.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, ok, _ := s.Get(ctx, "a"); ok {
		t.Error("expected value to expire")
	}
	if s.Len() != 0 {
		t.Error("expected expired entry to be dropped")
	}
}

func TestMemoryStore_CopiesValue(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	buf := []byte("abc")
	_ = s.Set(ctx, "a", buf, 0)
	buf[0] = 'x'

	v, _, _ := s.Get(ctx, "a")
	if string(v) != "abc" {
		t.Errorf("stored value was mutated: %s", v)
	}
}
