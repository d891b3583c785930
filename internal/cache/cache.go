// Package cache provides a persisted TTL cache over a store table. An
// entry is valid while now < timestamp+ttl; expired entries are deleted
// lazily on read and swept periodically in the background.
package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/phihung0131/vocabulary-extension/internal/store"
)

// Entry is the persisted shape of a cached value.
type Entry struct {
	// Value is the cached payload, JSON-encoded.
	Value json.RawMessage `json:"value"`
	// Timestamp is when the entry was written.
	Timestamp time.Time `json:"timestamp"`
	// TTL is how long the entry stays valid after Timestamp.
	TTL time.Duration `json:"ttl"`
}

// expired reports whether the entry is stale at time now.
func (e Entry) expired(now time.Time) bool {
	return !now.Before(e.Timestamp.Add(e.TTL))
}

// Cache is a named TTL cache over one store table.
type Cache struct {
	store      store.Store
	table      store.Table
	defaultTTL time.Duration

	// now is swapped out in tests.
	now func() time.Time
}

// New constructs a Cache over the given table with a default TTL applied
// when Put is called with ttl <= 0.
func New(s store.Store, table store.Table, defaultTTL time.Duration) *Cache {
	return &Cache{store: s, table: table, defaultTTL: defaultTTL, now: time.Now}
}

// Get decodes the cached value under key into out and reports whether a
// valid entry was found. An expired entry is deleted and treated as
// absent. Underlying store failures propagate.
func (c *Cache) Get(key string, out any) (bool, error) {
	raw, err := c.store.Get(c.table, key)
	if err != nil {
		if err == store.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		// Unreadable entry: drop it and report a miss.
		_ = c.store.Delete(c.table, key)
		return false, nil
	}
	if entry.expired(c.now()) {
		if err := c.store.Delete(c.table, key); err != nil {
			return false, err
		}
		return false, nil
	}
	if err := json.Unmarshal(entry.Value, out); err != nil {
		return false, fmt.Errorf("decode cached value for %q: %w", key, err)
	}
	return true, nil
}

// Put stores value under key with the given ttl (the cache default if
// ttl <= 0) and a fresh timestamp.
func (c *Cache) Put(key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value for %q: %w", key, err)
	}
	entry := Entry{Value: encoded, Timestamp: c.now(), TTL: ttl}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry for %q: %w", key, err)
	}
	return c.store.Put(c.table, key, raw)
}

// GetOrCompute returns the cached value for key, or invokes compute, stores
// its result with ttl, and returns it. The read-compute-write sequence is
// not atomic: concurrent callers for the same key may both compute, and the
// later write wins. compute errors propagate without touching the cache.
func GetOrCompute[T any](c *Cache, key string, ttl time.Duration, compute func() (T, error)) (T, error) {
	var cached T
	found, err := c.Get(key, &cached)
	if err != nil {
		return cached, err
	}
	if found {
		return cached, nil
	}

	value, err := compute()
	if err != nil {
		return value, err
	}
	if err := c.Put(key, value, ttl); err != nil {
		return value, err
	}
	return value, nil
}

// Invalidate removes the entry under key immediately.
func (c *Cache) Invalidate(key string) error {
	return c.store.Delete(c.table, key)
}

// Clear removes every entry in the cache's table.
func (c *Cache) Clear() error {
	var keys []string
	err := c.store.ForEach(c.table, func(key string, _ []byte) error {
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := c.store.Delete(c.table, key); err != nil {
			return err
		}
	}
	return nil
}

// SweepExpired deletes every expired or unreadable entry and returns how
// many were removed. Purely space reclamation; reads stay correct without
// it because Get checks expiry itself.
func (c *Cache) SweepExpired() (int, error) {
	now := c.now()
	var stale []string
	err := c.store.ForEach(c.table, func(key string, value []byte) error {
		var entry Entry
		if err := json.Unmarshal(value, &entry); err != nil {
			stale = append(stale, key)
			return nil
		}
		if entry.expired(now) {
			stale = append(stale, key)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, key := range stale {
		if err := c.store.Delete(c.table, key); err != nil {
			return 0, err
		}
	}
	return len(stale), nil
}
