// Package connectivity tracks whether the network is reachable and fans
// out online/offline transitions to subscribers.
package connectivity

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"
)

// State is the connectivity state seen by subscribers.
type State int

const (
	StateOffline State = iota
	StateOnline
)

func (s State) String() string {
	if s == StateOnline {
		return "online"
	}
	return "offline"
}

// Prober checks reachability. A nil error means online.
type Prober func(ctx context.Context) error

// Config holds monitor settings.
type Config struct {
	ProbeAddr string // host:port dialed to check reachability
	Interval  time.Duration
	Timeout   time.Duration
}

// Monitor probes the network periodically and emits edge-triggered state
// changes. Embedding applications without network probes can drive it via
// SetOnline.
type Monitor struct {
	cfg   Config
	probe Prober

	mu      sync.Mutex
	online  bool
	subs    []chan State
	waiters []chan struct{}
}

// NewMonitor creates a monitor. It starts optimistic (online) and the first
// probe corrects the state if needed.
func NewMonitor(cfg Config) *Monitor {
	if cfg.ProbeAddr == "" {
		cfg.ProbeAddr = "1.1.1.1:443"
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}

	m := &Monitor{cfg: cfg, online: true}
	m.probe = m.dialProbe
	return m
}

func (m *Monitor) dialProbe(ctx context.Context) error {
	d := net.Dialer{}
	conn, err := d.DialContext(ctx, "tcp", m.cfg.ProbeAddr)
	if err != nil {
		return err
	}
	return conn.Close()
}

// Start runs the probe loop until ctx is cancelled.
func (m *Monitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	m.check(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.check(ctx)
		}
	}
}

func (m *Monitor) check(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()
	m.SetOnline(m.probe(probeCtx) == nil)
}

// Online reports the current state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline forces the state, firing transition events on edges only.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online

	state := StateOffline
	if online {
		state = StateOnline
	}

	subs := make([]chan State, len(m.subs))
	copy(subs, m.subs)

	var waiters []chan struct{}
	if online {
		waiters = m.waiters
		m.waiters = nil
	}
	m.mu.Unlock()

	slog.Info("Connectivity changed", "state", state.String())

	for _, ch := range subs {
		select {
		case ch <- state:
		default: // Slow subscriber, drop rather than block the monitor
		}
	}
	for _, w := range waiters {
		close(w)
	}
}

// Subscribe returns a channel receiving state transitions. The channel is
// buffered; transitions are dropped for subscribers that do not keep up.
func (m *Monitor) Subscribe() <-chan State {
	ch := make(chan State, 4)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch
}

// WaitOnline blocks until the state is online or ctx is cancelled. Returns
// immediately when already online.
func (m *Monitor) WaitOnline(ctx context.Context) error {
	m.mu.Lock()
	if m.online {
		m.mu.Unlock()
		return nil
	}
	w := make(chan struct{})
	m.waiters = append(m.waiters, w)
	m.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-w:
		return nil
	}
}
