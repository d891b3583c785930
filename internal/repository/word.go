// Package repository provides persistence implementations for the word
// server using a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/phihung0131/vocabulary-extension/internal/models"
)

// PostgresWordRepository implements word and collocation persistence
// against a PostgreSQL database.
type PostgresWordRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresWordRepository creates a new PostgresWordRepository using the
// provided *sql.DB. db must be a valid connection to a PostgreSQL instance.
func NewPostgresWordRepository(db *sql.DB) *PostgresWordRepository {
	return &PostgresWordRepository{DB: db}
}

// WordExists reports whether any live collocation is stored for word.
//
//	ctx:  context for cancellation and deadlines
//	word: the sanitized word to look up
func (r *PostgresWordRepository) WordExists(ctx context.Context, word string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM collocations WHERE word = $1 AND deleted = false)
	`, word).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("WordExists failed: %w", err)
	}
	return exists, nil
}

// InsertCollocations stores the given collocations within a transaction,
// skipping any phrase already present for its word, and returns how many
// rows were inserted.
func (r *PostgresWordRepository) InsertCollocations(ctx context.Context, collocations []models.Collocation) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	version := time.Now().Unix()
	for _, c := range collocations {
		id := c.ID
		if id == "" {
			id = uuid.NewString()
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO collocations (id, word, collocation, ipa, meaning, synonyms, version, deleted)
			VALUES ($1, $2, $3, $4, $5, $6, $7, false)
			ON CONFLICT (word, collocation) DO NOTHING
		`, id, c.Word, c.Collocation, c.IPA, c.Meaning, pq.Array(c.Synonyms), version)
		if err != nil {
			return 0, fmt.Errorf("insert collocation: %w", err)
		}
		if rows, _ := res.RowsAffected(); rows > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return inserted, nil
}

// GetCollocations fetches every live collocation, ordered by word.
func (r *PostgresWordRepository) GetCollocations(ctx context.Context) ([]models.Collocation, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, word, collocation, ipa, meaning, synonyms, version
		  FROM collocations WHERE deleted = false ORDER BY word, collocation
	`)
	if err != nil {
		return nil, fmt.Errorf("GetCollocations: %w", err)
	}
	defer rows.Close()

	var collocations []models.Collocation
	for rows.Next() {
		var c models.Collocation
		if err := rows.Scan(&c.ID, &c.Word, &c.Collocation, &c.IPA, &c.Meaning, pq.Array(&c.Synonyms), &c.Version); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		collocations = append(collocations, c)
	}
	return collocations, rows.Err()
}

// DeleteAll soft-deletes every live collocation and returns the count.
// Rows are purged later by the soft-delete cleaner.
func (r *PostgresWordRepository) DeleteAll(ctx context.Context) (int, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE collocations SET deleted = true, version = $1 WHERE deleted = false
	`, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("DeleteAll failed: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(rows), nil
}
