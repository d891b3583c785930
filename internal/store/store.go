// Package store provides the local persistent key/value store used by the
// vocabulary client. State is grouped into logical tables (one bbolt bucket
// per table); access is key-scoped with last-write-wins semantics and no
// multi-key transactions. The store is constructed explicitly and injected
// into each component so tests can substitute an in-memory implementation.
package store

import "errors"

// Table names the logical tables of the client store.
type Table string

const (
	// TableWordCache holds word-existence cache entries.
	TableWordCache Table = "wordCache"
	// TableCollocationCache holds generated-collocation cache entries.
	TableCollocationCache Table = "collocationCache"
	// TableQueue holds pending word submissions, keyed by word.
	TableQueue Table = "queue"
	// TableSyncQueue holds unconfirmed remote mutations, keyed by ID.
	TableSyncQueue Table = "syncQueue"
	// TableSecrets holds encrypted secrets, keyed by secure_<name>.
	TableSecrets Table = "secrets"
)

// Tables lists every logical table, in bucket-creation order.
var Tables = []Table{
	TableWordCache,
	TableCollocationCache,
	TableQueue,
	TableSyncQueue,
	TableSecrets,
}

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("store: key not found")

// Store abstracts the persistent key/value store. Implementations must
// guarantee atomicity per single-key write and nothing more.
type Store interface {
	// Get returns the value stored under key in table, or ErrNotFound.
	Get(table Table, key string) ([]byte, error)
	// Put stores value under key in table, overwriting any prior value.
	Put(table Table, key string, value []byte) error
	// Delete removes key from table. Deleting an absent key is a no-op.
	Delete(table Table, key string) error
	// ForEach calls fn for every key/value pair in table. Returning an
	// error from fn stops the iteration and is returned to the caller.
	ForEach(table Table, fn func(key string, value []byte) error) error
	// Close releases the underlying resources. Close is idempotent.
	Close() error
}
