// Package progress stores named progress records with a fixed freshness
// window, e.g. partially completed onboarding steps.
package progress

import (
	"context"
	"time"

	"github.com/TAKIS21345/techsteps-sub005/internal/infra/storage"
)

// MaxAge is how long a progress record stays valid.
const MaxAge = 24 * time.Hour

// Store persists named progress records through the storage adapter.
type Store struct {
	adapter *storage.Adapter
}

// NewStore creates a progress store.
func NewStore(adapter *storage.Adapter) *Store {
	return &Store{adapter: adapter}
}

// Save writes a progress record under the given name.
func (s *Store) Save(ctx context.Context, name string, data any) error {
	return s.adapter.SetTimed(ctx, storage.ProgressKey(name), data)
}

// Load reads a progress record into out. Records older than MaxAge are
// treated as absent and removed.
func (s *Store) Load(ctx context.Context, name string, out any) (bool, error) {
	return s.adapter.GetTimed(ctx, storage.ProgressKey(name), MaxAge, out)
}

// Clear removes a progress record.
func (s *Store) Clear(ctx context.Context, name string) error {
	return s.adapter.Delete(ctx, storage.ProgressKey(name))
}
