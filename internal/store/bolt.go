package store

import (
	"fmt"
	"sync"
	"time"

	"go.etcd.io/bbolt"
)

// BoltStore is the file-backed Store implementation used in production.
type BoltStore struct {
	db *bbolt.DB

	mu     sync.Mutex
	closed bool
}

// OpenBolt opens (creating if necessary) the bbolt database at path and
// ensures every logical table's bucket exists.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, table := range Tables {
			if _, err := tx.CreateBucketIfNotExists([]byte(table)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Get returns the value stored under key in table, or ErrNotFound.
func (s *BoltStore) Get(table Table, key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(table))
		if bucket == nil {
			return ErrNotFound
		}
		val := bucket.Get([]byte(key))
		if val == nil {
			return ErrNotFound
		}
		// val is only valid inside the transaction.
		value = append([]byte(nil), val...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Put stores value under key in table, overwriting any prior value.
func (s *BoltStore) Put(table Table, key string, value []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(table))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(key), value)
	})
}

// Delete removes key from table. Deleting an absent key is a no-op.
func (s *BoltStore) Delete(table Table, key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(table))
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(key))
	})
}

// ForEach calls fn for every key/value pair in table.
func (s *BoltStore) ForEach(table Table, fn func(key string, value []byte) error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(table))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			return fn(string(k), append([]byte(nil), v...))
		})
	})
}

// Close closes the underlying database. Close is idempotent.
func (s *BoltStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
