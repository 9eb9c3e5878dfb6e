package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/TAKIS21345/techsteps-sub005/internal/infra/storage"
	"github.com/TAKIS21345/techsteps-sub005/internal/infra/storage/memory"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestAdapter_JSONRoundTrip(t *testing.T) {
	store := memory.NewMemoryStore()
	adapter := storage.NewAdapter(store)
	ctx := context.Background()

	in := payload{Name: "hello", Count: 42}
	if err := adapter.SetJSON(ctx, "k", in); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}

	var out payload
	ok, err := adapter.GetJSON(ctx, "k", &out)
	if err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if !ok {
		t.Fatal("expected value to be present")
	}
	if out != in {
		t.Errorf("round trip mismatch: got %+v, want %+v", out, in)
	}
}

func TestAdapter_MalformedIsAbsent(t *testing.T) {
	store := memory.NewMemoryStore()
	adapter := storage.NewAdapter(store)
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("{not json"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var out payload
	ok, err := adapter.GetJSON(ctx, "k", &out)
	if err != nil {
		t.Fatalf("GetJSON returned error for malformed data: %v", err)
	}
	if ok {
		t.Error("malformed data should be treated as absent")
	}

	// The bad entry should have been deleted
	if store.Len() != 0 {
		t.Error("expected malformed entry to be removed")
	}
}

func TestAdapter_TimedExpiry(t *testing.T) {
	store := memory.NewMemoryStore()
	adapter := storage.NewAdapter(store)
	ctx := context.Background()

	if err := adapter.SetTimed(ctx, "k", payload{Name: "fresh"}); err != nil {
		t.Fatalf("SetTimed failed: %v", err)
	}

	var out payload
	ok, err := adapter.GetTimed(ctx, "k", time.Hour, &out)
	if err != nil {
		t.Fatalf("GetTimed failed: %v", err)
	}
	if !ok || out.Name != "fresh" {
		t.Fatalf("expected fresh value, got ok=%v %+v", ok, out)
	}

	// A zero max age makes everything stale
	ok, err = adapter.GetTimed(ctx, "k", 0, &out)
	if err != nil {
		t.Fatalf("GetTimed failed: %v", err)
	}
	if ok {
		t.Error("expected stale value to be treated as absent")
	}
	if store.Len() != 0 {
		t.Error("expected stale entry to be deleted")
	}
}

func TestAdapter_GetMissing(t *testing.T) {
	adapter := storage.NewAdapter(memory.NewMemoryStore())

	var out payload
	ok, err := adapter.GetJSON(context.Background(), "missing", &out)
	if err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if ok {
		t.Error("expected missing key to report absent")
	}
}
