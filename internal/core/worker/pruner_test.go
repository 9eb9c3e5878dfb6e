package worker

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeExpiryStore struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeExpiryStore) PruneExpired(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return 1, nil
}

func (f *fakeExpiryStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestPruner_RunsOnStartAndInterval(t *testing.T) {
	store := &fakeExpiryStore{}
	p := NewPruner(store, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Start(ctx)
		close(done)
	}()

	deadline := time.After(time.Second)
	for store.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 2 prune calls, got %d", store.count())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pruner did not stop on context cancel")
	}
}

func TestPruner_DefaultInterval(t *testing.T) {
	p := NewPruner(&fakeExpiryStore{}, 0)
	if p.interval != time.Hour {
		t.Errorf("expected default interval 1h, got %v", p.interval)
	}
}
