// Package models defines the core data structures shared by the
// vocabulary client and server.
package models

import "time"

// Collocation is a single AI-generated collocation for a collected word,
// stored on the server and cached on the client.
type Collocation struct {
	// ID is the unique identifier for the collocation.
	ID string `json:"id,omitempty"`
	// Word is the base word the collocation was generated for.
	Word string `json:"word"`
	// Collocation is the collocation phrase itself.
	Collocation string `json:"collocation"`
	// IPA is the phonetic transcription, if the generator provided one.
	IPA string `json:"ipa,omitempty"`
	// Meaning is a short gloss of the collocation.
	Meaning string `json:"meaning,omitempty"`
	// Synonyms lists alternative phrasings.
	Synonyms []string `json:"synonyms,omitempty"`
	// Version is the server-side version timestamp for concurrency control.
	Version int64 `json:"version,omitempty"`
	// Deleted marks the collocation as soft-deleted on the server.
	Deleted bool `json:"deleted,omitempty"`
}

// QueueStatus is the lifecycle state of a queued word.
type QueueStatus string

const (
	// StatusPending means the word is waiting to be submitted.
	StatusPending QueueStatus = "pending"
	// StatusProcessing means a submission attempt is in flight.
	StatusProcessing QueueStatus = "processing"
	// StatusCompleted means the word was submitted successfully.
	StatusCompleted QueueStatus = "completed"
	// StatusFailed means the last submission attempt failed.
	StatusFailed QueueStatus = "failed"
)

// QueueItem is a collected word awaiting submission to the server.
// Items are keyed by the sanitized word, so adding a duplicate word
// overwrites the existing item rather than creating a second one.
type QueueItem struct {
	// Word is the sanitized word text (also the storage key).
	Word string `json:"word"`
	// AddedAt is when the user collected the word.
	AddedAt time.Time `json:"addedAt"`
	// Status is the current submission state.
	Status QueueStatus `json:"status"`
	// Error holds the last submission error message, if Status is failed.
	Error string `json:"error,omitempty"`
}

// SyncAction is the kind of remote mutation a SyncQueueItem represents.
type SyncAction string

const (
	// SyncAdd records a not-yet-confirmed remote insert.
	SyncAdd SyncAction = "add"
	// SyncDelete records a not-yet-confirmed remote delete.
	SyncDelete SyncAction = "delete"
	// SyncUpdate records a not-yet-confirmed remote update.
	SyncUpdate SyncAction = "update"
)

// SyncQueueItem is a buffered remote mutation that has not been confirmed
// by the server. Items carry their own retry bookkeeping and are abandoned
// once Retries reaches MaxRetries.
type SyncQueueItem struct {
	// ID is a unique identifier for the queued mutation.
	ID string `json:"id"`
	// Action is the kind of mutation.
	Action SyncAction `json:"action"`
	// Payload is the JSON-encoded mutation body.
	Payload []byte `json:"payload"`
	// Timestamp is when the mutation was queued.
	Timestamp time.Time `json:"timestamp"`
	// Retries counts failed submission attempts so far.
	Retries int `json:"retries"`
	// MaxRetries is the attempt budget before the item is abandoned.
	MaxRetries int `json:"maxRetries"`
}
