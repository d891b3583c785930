// Package queue persists collected words awaiting submission. Items are
// keyed by the sanitized word, so re-adding a word is an overwrite rather
// than a duplicate.
package queue

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/phihung0131/vocabulary-extension/internal/models"
	"github.com/phihung0131/vocabulary-extension/internal/store"
)

// Queue manages the pending-word table of the client store.
type Queue struct {
	store store.Store

	now func() time.Time
}

// New constructs a Queue over the given backing store.
func New(s store.Store) *Queue {
	return &Queue{store: s, now: time.Now}
}

// Add enqueues word as pending. Adding a word that is already queued
// overwrites the existing item and resets it to pending.
func (q *Queue) Add(word string) error {
	item := models.QueueItem{
		Word:    word,
		AddedAt: q.now(),
		Status:  models.StatusPending,
	}
	return q.put(item)
}

// Get returns the queued item for word, or nil if word is not queued.
func (q *Queue) Get(word string) (*models.QueueItem, error) {
	raw, err := q.store.Get(store.TableQueue, word)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	var item models.QueueItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns every queued item, oldest first.
func (q *Queue) List() ([]models.QueueItem, error) {
	var items []models.QueueItem
	err := q.store.ForEach(store.TableQueue, func(_ string, value []byte) error {
		var item models.QueueItem
		if err := json.Unmarshal(value, &item); err != nil {
			return err
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].AddedAt.Before(items[j].AddedAt) })
	return items, nil
}

// SetStatus updates the status of the queued word. A failure message is
// recorded for StatusFailed and cleared otherwise. Updating a word that is
// not queued is a no-op.
func (q *Queue) SetStatus(word string, status models.QueueStatus, errMsg string) error {
	item, err := q.Get(word)
	if err != nil || item == nil {
		return err
	}
	item.Status = status
	if status == models.StatusFailed {
		item.Error = errMsg
	} else {
		item.Error = ""
	}
	return q.put(*item)
}

// Remove deletes the queued word. Removing an absent word is a no-op.
func (q *Queue) Remove(word string) error {
	return q.store.Delete(store.TableQueue, word)
}

func (q *Queue) put(item models.QueueItem) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return q.store.Put(store.TableQueue, item.Word, raw)
}
