package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// Adapter layers JSON encoding and timestamped expiry records over a Store.
// Decode failures are treated as absent data: logged as warnings, never
// propagated as fatal.
type Adapter struct {
	store Store
	now   func() time.Time
}

// NewAdapter wraps a store.
func NewAdapter(store Store) *Adapter {
	return &Adapter{store: store, now: time.Now}
}

// SetJSON marshals v and stores it under key.
func (a *Adapter) SetJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := a.store.Set(ctx, key, data, 0); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

// GetJSON loads and decodes the value at key into out. Returns false when
// the key is absent or the stored blob is malformed.
func (a *Adapter) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	data, ok, err := a.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		slog.Warn("Discarding malformed stored value", "key", key, "error", err)
		_ = a.store.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

// Delete removes the value at key.
func (a *Adapter) Delete(ctx context.Context, key string) error {
	return a.store.Delete(ctx, key)
}

// timedRecord is the on-disk shape of an expiring entry.
type timedRecord struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"` // epoch ms
}

// SetTimed stores v wrapped in a {data, timestamp} record.
func (a *Adapter) SetTimed(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	rec := timedRecord{Data: data, Timestamp: a.now().UnixMilli()}
	return a.SetJSON(ctx, key, rec)
}

// GetTimed loads a timed record, treating entries older than maxAge as
// absent and deleting them proactively.
func (a *Adapter) GetTimed(ctx context.Context, key string, maxAge time.Duration, out any) (bool, error) {
	var rec timedRecord
	ok, err := a.GetJSON(ctx, key, &rec)
	if err != nil || !ok {
		return false, err
	}

	age := a.now().Sub(time.UnixMilli(rec.Timestamp))
	if age > maxAge {
		slog.Debug("Expiring stored value", "key", key, "age", age)
		_ = a.store.Delete(ctx, key)
		return false, nil
	}

	if err := json.Unmarshal(rec.Data, out); err != nil {
		slog.Warn("Discarding malformed timed value", "key", key, "error", err)
		_ = a.store.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}
