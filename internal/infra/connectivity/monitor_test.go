package connectivity

import (
	"context"
	"testing"
	"time"
)

func TestMonitor_EdgeEvents(t *testing.T) {
	m := NewMonitor(Config{})
	ch := m.Subscribe()

	// Starts online; setting online again is not a transition
	m.SetOnline(true)
	select {
	case s := <-ch:
		t.Fatalf("unexpected event %v for no-op transition", s)
	default:
	}

	m.SetOnline(false)
	select {
	case s := <-ch:
		if s != StateOffline {
			t.Errorf("expected offline, got %v", s)
		}
	case <-time.After(time.Second):
		t.Fatal("no offline event")
	}

	m.SetOnline(true)
	select {
	case s := <-ch:
		if s != StateOnline {
			t.Errorf("expected online, got %v", s)
		}
	case <-time.After(time.Second):
		t.Fatal("no online event")
	}
}

func TestMonitor_WaitOnline(t *testing.T) {
	m := NewMonitor(Config{})

	// Already online: returns immediately
	if err := m.WaitOnline(context.Background()); err != nil {
		t.Fatalf("WaitOnline failed: %v", err)
	}

	m.SetOnline(false)

	done := make(chan error, 1)
	go func() {
		done <- m.WaitOnline(context.Background())
	}()

	select {
	case <-done:
		t.Fatal("WaitOnline returned while offline")
	case <-time.After(50 * time.Millisecond):
	}

	m.SetOnline(true)
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WaitOnline failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitOnline did not wake up")
	}
}

func TestMonitor_WaitOnlineCancel(t *testing.T) {
	m := NewMonitor(Config{})
	m.SetOnline(false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- m.WaitOnline(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		if err == nil {
			t.Error("expected context error")
		}
	case <-time.After(time.Second):
		t.Fatal("WaitOnline did not observe cancellation")
	}
}

func TestMonitor_ProbeDrivesState(t *testing.T) {
	m := NewMonitor(Config{Interval: 10 * time.Millisecond})

	var fail bool
	m.probe = func(ctx context.Context) error {
		if fail {
			return context.DeadlineExceeded
		}
		return nil
	}

	fail = true
	m.check(context.Background())
	if m.Online() {
		t.Error("expected offline after failed probe")
	}

	fail = false
	m.check(context.Background())
	if !m.Online() {
		t.Error("expected online after successful probe")
	}
}
