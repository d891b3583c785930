package queue

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/phihung0131/vocabulary-extension/internal/models"
	"github.com/phihung0131/vocabulary-extension/internal/store"
)

// DefaultMaxRetries is the attempt budget for a queued remote mutation.
const DefaultMaxRetries = 3

// SyncQueue persists remote mutations that have not been confirmed by the
// server. Only the data shape and its accessors live here; nothing in the
// client currently drains the table.
type SyncQueue struct {
	store store.Store

	now func() time.Time
}

// NewSyncQueue constructs a SyncQueue over the given backing store.
func NewSyncQueue(s store.Store) *SyncQueue {
	return &SyncQueue{store: s, now: time.Now}
}

// Enqueue records a remote mutation and returns its generated ID.
func (q *SyncQueue) Enqueue(action models.SyncAction, payload []byte) (string, error) {
	item := models.SyncQueueItem{
		ID:         uuid.NewString(),
		Action:     action,
		Payload:    payload,
		Timestamp:  q.now(),
		MaxRetries: DefaultMaxRetries,
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return "", err
	}
	if err := q.store.Put(store.TableSyncQueue, item.ID, raw); err != nil {
		return "", err
	}
	return item.ID, nil
}

// List returns every queued mutation, oldest first.
func (q *SyncQueue) List() ([]models.SyncQueueItem, error) {
	var items []models.SyncQueueItem
	err := q.store.ForEach(store.TableSyncQueue, func(_ string, value []byte) error {
		var item models.SyncQueueItem
		if err := json.Unmarshal(value, &item); err != nil {
			return err
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Timestamp.Before(items[j].Timestamp) })
	return items, nil
}

// RecordAttempt increments the retry count for the mutation with the given
// ID. Once the count reaches MaxRetries the item is abandoned (removed).
// It reports whether the item is still queued afterwards.
func (q *SyncQueue) RecordAttempt(id string) (bool, error) {
	raw, err := q.store.Get(store.TableSyncQueue, id)
	if err != nil {
		if err == store.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	var item models.SyncQueueItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return false, err
	}
	item.Retries++
	if item.Retries >= item.MaxRetries {
		return false, q.store.Delete(store.TableSyncQueue, id)
	}
	updated, err := json.Marshal(item)
	if err != nil {
		return false, err
	}
	return true, q.store.Put(store.TableSyncQueue, id, updated)
}

// Remove deletes the mutation with the given ID.
func (q *SyncQueue) Remove(id string) error {
	return q.store.Delete(store.TableSyncQueue, id)
}
