package strategy

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/TAKIS21345/techsteps-sub005/internal/core/domain"
	"github.com/TAKIS21345/techsteps-sub005/internal/infra/connectivity"
)

func matchAll(err error) bool { return true }

func recordingStrategy(name string, priority int, result bool, log *[]string, mu *sync.Mutex) Strategy {
	return Strategy{
		Name:     name,
		Priority: priority,
		Matches:  matchAll,
		Recover: func(ctx context.Context, err error, ectx *domain.ErrorContext) (bool, error) {
			mu.Lock()
			*log = append(*log, name)
			mu.Unlock()
			return result, nil
		},
	}
}

func TestRegistry_PriorityOrderShortCircuits(t *testing.T) {
	r := NewRegistry(Config{})
	var log []string
	var mu sync.Mutex

	// Registered out of order on purpose
	r.Register(recordingStrategy("second", 2, true, &log, &mu))
	r.Register(recordingStrategy("first", 1, true, &log, &mu))

	ok := r.Attempt(context.Background(), errors.New("boom"), domain.NewErrorContext("/home"))
	if !ok {
		t.Fatal("expected recovery to succeed")
	}
	if len(log) != 1 || log[0] != "first" {
		t.Errorf("expected only priority-1 handler to run, got %v", log)
	}
}

func TestRegistry_FallthroughOnDecline(t *testing.T) {
	r := NewRegistry(Config{})
	var log []string
	var mu sync.Mutex

	r.Register(recordingStrategy("first", 1, false, &log, &mu))
	r.Register(recordingStrategy("second", 2, true, &log, &mu))

	ok := r.Attempt(context.Background(), errors.New("boom"), domain.NewErrorContext("/home"))
	if !ok {
		t.Fatal("expected second strategy to succeed")
	}
	if len(log) != 2 || log[0] != "first" || log[1] != "second" {
		t.Errorf("expected fallthrough order, got %v", log)
	}
}

func TestRegistry_FallthroughOnError(t *testing.T) {
	r := NewRegistry(Config{})
	var log []string
	var mu sync.Mutex

	r.Register(Strategy{
		Name:     "broken",
		Priority: 1,
		Matches:  matchAll,
		Recover: func(ctx context.Context, err error, ectx *domain.ErrorContext) (bool, error) {
			return false, errors.New("handler blew up")
		},
	})
	r.Register(recordingStrategy("second", 2, true, &log, &mu))

	ok := r.Attempt(context.Background(), errors.New("boom"), domain.NewErrorContext("/home"))
	if !ok {
		t.Fatal("expected second strategy to succeed after first errored")
	}
}

func TestRegistry_PanicCountsAsFailure(t *testing.T) {
	r := NewRegistry(Config{})
	r.Register(Strategy{
		Name:     "panicky",
		Priority: 1,
		Matches:  matchAll,
		Recover: func(ctx context.Context, err error, ectx *domain.ErrorContext) (bool, error) {
			panic("oops")
		},
	})

	ok := r.Attempt(context.Background(), errors.New("boom"), domain.NewErrorContext("/home"))
	if ok {
		t.Error("expected attempt to fail")
	}
}

func TestRegistry_NoMatchReturnsFalse(t *testing.T) {
	r := NewRegistry(Config{})
	r.Register(Strategy{
		Name:     "never",
		Priority: 1,
		Matches:  func(err error) bool { return false },
		Recover: func(ctx context.Context, err error, ectx *domain.ErrorContext) (bool, error) {
			t.Error("handler should not run")
			return true, nil
		},
	})

	if r.Attempt(context.Background(), errors.New("boom"), domain.NewErrorContext("/home")) {
		t.Error("expected attempt to fail with no matching strategy")
	}
}

func TestRegistry_HandlerTimeout(t *testing.T) {
	r := NewRegistry(Config{HandlerTimeout: 20 * time.Millisecond})
	var log []string
	var mu sync.Mutex

	r.Register(Strategy{
		Name:     "hanging",
		Priority: 1,
		Matches:  matchAll,
		Recover: func(ctx context.Context, err error, ectx *domain.ErrorContext) (bool, error) {
			<-ctx.Done() // Simulates a hung collaborator honoring ctx
			return false, ctx.Err()
		},
	})
	r.Register(recordingStrategy("fallback", 2, true, &log, &mu))

	start := time.Now()
	ok := r.Attempt(context.Background(), errors.New("boom"), domain.NewErrorContext("/home"))
	if !ok {
		t.Fatal("expected fallback to succeed after timeout")
	}
	if time.Since(start) > time.Second {
		t.Error("timeout did not bound the hanging handler")
	}
}

func TestRegistry_StableTieOrder(t *testing.T) {
	r := NewRegistry(Config{})
	var log []string
	var mu sync.Mutex

	r.Register(recordingStrategy("a", 1, false, &log, &mu))
	r.Register(recordingStrategy("b", 1, false, &log, &mu))
	r.Register(recordingStrategy("c", 1, false, &log, &mu))

	r.Attempt(context.Background(), errors.New("boom"), domain.NewErrorContext("/home"))
	if len(log) != 3 || log[0] != "a" || log[1] != "b" || log[2] != "c" {
		t.Errorf("expected insertion order for equal priorities, got %v", log)
	}
}

// =============================================================================
// Default strategies
// =============================================================================

func TestNetworkRetry_WaitsForOnline(t *testing.T) {
	monitor := connectivity.NewMonitor(connectivity.Config{})
	monitor.SetOnline(false)

	r := NewRegistry(Config{})
	r.Register(NetworkRetry(monitor))

	done := make(chan bool, 1)
	go func() {
		done <- r.Attempt(context.Background(),
			domain.E(domain.KindNetwork, "connection dropped"),
			domain.NewErrorContext("/chat"))
	}()

	select {
	case <-done:
		t.Fatal("recovery finished while offline")
	case <-time.After(30 * time.Millisecond):
	}

	monitor.SetOnline(true)
	select {
	case ok := <-done:
		if !ok {
			t.Error("expected network recovery to succeed once online")
		}
	case <-time.After(time.Second):
		t.Fatal("recovery did not finish after reconnect")
	}
}

func TestAuthRefresh(t *testing.T) {
	authErr := domain.E(domain.KindAuth, "401 from api")
	ectx := domain.NewErrorContext("/settings")

	// Successful refresh recovers
	r := NewRegistry(Config{})
	r.Register(AuthRefresh(func(ctx context.Context) error { return nil }, nil))
	if !r.Attempt(context.Background(), authErr, ectx) {
		t.Error("expected successful refresh to recover")
	}

	// Failed refresh invokes the callback and fails
	redirected := false
	r2 := NewRegistry(Config{})
	r2.Register(AuthRefresh(
		func(ctx context.Context) error { return errors.New("refresh rejected") },
		func() { redirected = true },
	))
	if r2.Attempt(context.Background(), authErr, ectx) {
		t.Error("expected failed refresh to report failure")
	}
	if !redirected {
		t.Error("expected auth-required callback to fire")
	}
}

func TestResourceCleanup_AlwaysSucceeds(t *testing.T) {
	cleaned := false
	r := NewRegistry(Config{})
	r.Register(ResourceCleanup(
		func() { cleaned = true },
		func() { panic("bad cleaner") }, // Must not break the strategy
	))

	ok := r.Attempt(context.Background(),
		domain.E(domain.KindResource, "high memory usage"),
		domain.NewErrorContext("/chat"))
	if !ok {
		t.Error("cleanup strategy must always succeed")
	}
	if !cleaned {
		t.Error("cleaner did not run")
	}
}
