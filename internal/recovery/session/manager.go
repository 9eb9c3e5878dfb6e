// Package session captures and restores in-progress user interaction state.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/TAKIS21345/techsteps-sub005/internal/core/domain"
	"github.com/TAKIS21345/techsteps-sub005/internal/infra/storage"
	"github.com/TAKIS21345/techsteps-sub005/internal/recovery/metrics"
)

// StateProvider supplies the current interaction state. Implemented by the
// UI layer, keeping the manager decoupled from any rendering technology.
// Form identifiers follow the convention: an explicit form ID when present,
// otherwise a positional "form_<index>" fallback.
type StateProvider interface {
	CurrentPage() string
	CaptureFormState() map[string]map[string]string
	ApplyFormState(forms map[string]map[string]string)
	ScrollOffset() int
	ScrollTo(offset int)
}

// NopProvider is a StateProvider that captures nothing, for headless
// embeddings and tests.
type NopProvider struct{}

func (NopProvider) CurrentPage() string                             { return "" }
func (NopProvider) CaptureFormState() map[string]map[string]string  { return nil }
func (NopProvider) ApplyFormState(map[string]map[string]string)     {}
func (NopProvider) ScrollOffset() int                               { return 0 }
func (NopProvider) ScrollTo(int)                                    {}

// Snapshotter captures and restores an opaque sub-snapshot, e.g. tutorial
// progress or conversation context. Snapshot may return nil with no error
// when there is nothing to capture.
type Snapshotter interface {
	Snapshot() (json.RawMessage, error)
	Restore(ctx context.Context, data json.RawMessage) error
}

// Config holds session manager settings.
type Config struct {
	SaveInterval time.Duration
	MaxAge       time.Duration
	UserID       string
}

// Manager periodically snapshots interaction state and can restore it while
// still fresh.
type Manager struct {
	cfg          Config
	store        *storage.Adapter
	provider     StateProvider
	tutorial     Snapshotter
	conversation Snapshotter

	mu      sync.Mutex
	current *domain.SessionData
	now     func() time.Time
}

// NewManager creates a session manager. tutorial and conversation may be nil.
func NewManager(
	cfg Config,
	store *storage.Adapter,
	provider StateProvider,
	tutorial Snapshotter,
	conversation Snapshotter,
) *Manager {
	if cfg.SaveInterval <= 0 {
		cfg.SaveInterval = 30 * time.Second
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = time.Hour
	}
	if provider == nil {
		provider = NopProvider{}
	}
	return &Manager{
		cfg:          cfg,
		store:        store,
		provider:     provider,
		tutorial:     tutorial,
		conversation: conversation,
		now:          time.Now,
	}
}

// Save captures the current interaction state and persists it. Sub-snapshot
// failures are logged and leave that field empty rather than aborting the
// save.
func (m *Manager) Save(ctx context.Context) error {
	data := &domain.SessionData{
		UserID:         m.cfg.UserID,
		CurrentPage:    m.provider.CurrentPage(),
		FormData:       m.provider.CaptureFormState(),
		ScrollPosition: m.provider.ScrollOffset(),
		Timestamp:      m.now().UnixMilli(),
	}

	if m.tutorial != nil {
		if snap, err := m.tutorial.Snapshot(); err != nil {
			slog.Warn("Tutorial snapshot failed", "error", err)
		} else {
			data.TutorialProgress = snap
		}
	}
	if m.conversation != nil {
		if snap, err := m.conversation.Snapshot(); err != nil {
			slog.Warn("Conversation snapshot failed", "error", err)
		} else {
			data.ConversationContext = snap
		}
	}

	if err := m.store.SetJSON(ctx, storage.SessionKey, data); err != nil {
		return err
	}

	m.mu.Lock()
	m.current = data
	m.mu.Unlock()

	metrics.SessionSaves.Inc()
	return nil
}

// Load reads the persisted session. Absent or malformed data yields nil
// without an error; storage failures are logged and also yield nil.
func (m *Manager) Load(ctx context.Context) *domain.SessionData {
	var data domain.SessionData
	ok, err := m.store.GetJSON(ctx, storage.SessionKey, &data)
	if err != nil {
		slog.Warn("Failed to load session", "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	m.mu.Lock()
	m.current = &data
	m.mu.Unlock()
	return &data
}

// Restore replays the loaded session onto the state provider. Returns false
// when there is no session, the session is stale (clearing it as a side
// effect), or a sub-snapshot restorer fails.
func (m *Manager) Restore(ctx context.Context) bool {
	m.mu.Lock()
	data := m.current
	m.mu.Unlock()

	if data == nil {
		data = m.Load(ctx)
	}
	if data == nil {
		metrics.SessionRestores.WithLabelValues("absent").Inc()
		return false
	}

	if data.Age(m.now()) > m.cfg.MaxAge {
		slog.Info("Discarding stale session", "age", data.Age(m.now()))
		_ = m.Clear(ctx)
		metrics.SessionRestores.WithLabelValues("stale").Inc()
		return false
	}

	m.provider.ApplyFormState(data.FormData)
	m.provider.ScrollTo(data.ScrollPosition)

	if m.tutorial != nil && len(data.TutorialProgress) > 0 {
		if err := m.tutorial.Restore(ctx, data.TutorialProgress); err != nil {
			slog.Warn("Tutorial restore failed", "error", err)
			metrics.SessionRestores.WithLabelValues("failed").Inc()
			return false
		}
	}
	if m.conversation != nil && len(data.ConversationContext) > 0 {
		if err := m.conversation.Restore(ctx, data.ConversationContext); err != nil {
			slog.Warn("Conversation restore failed", "error", err)
			metrics.SessionRestores.WithLabelValues("failed").Inc()
			return false
		}
	}

	metrics.SessionRestores.WithLabelValues("success").Inc()
	return true
}

// Clear deletes the persisted session and the in-memory copy. Idempotent.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	return m.store.Delete(ctx, storage.SessionKey)
}

// Start runs the periodic save loop until ctx is cancelled, then performs a
// final best-effort flush.
func (m *Manager) Start(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.SaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := m.Save(flushCtx); err != nil {
				slog.Warn("Final session flush failed", "error", err)
			}
			cancel()
			return
		case <-ticker.C:
			if err := m.Save(ctx); err != nil {
				slog.Warn("Periodic session save failed", "error", err)
			}
		}
	}
}
