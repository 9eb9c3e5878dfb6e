package storage

import (
	"context"
	"time"
)

// Well-known keys. All persisted state lives under these.
const (
	SessionKey = "techsteps:session"
	QueueKey   = "techsteps:action_queue"

	progressPrefix = "techsteps:progress:"
)

// ProgressKey builds the storage key for a named progress record.
func ProgressKey(name string) string {
	return progressPrefix + name
}

// Store is a string key-value store. A zero ttl means no expiry.
type Store interface {
	// Get retrieves a value. The second return is false when the key is
	// absent or expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value, replacing any previous one.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the underlying connection.
	Close() error
}
