package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS collocations (
    id TEXT PRIMARY KEY,
    word TEXT NOT NULL,
    collocation TEXT NOT NULL,
    ipa TEXT,
    meaning TEXT,
    synonyms TEXT[],
    version BIGINT NOT NULL,
    deleted BOOLEAN NOT NULL DEFAULT FALSE,
    UNIQUE (word, collocation)
);

CREATE INDEX IF NOT EXISTS collocations_word_idx ON collocations (word);
`

// InitPostgres opens a PostgreSQL connection for the given DSN, verifies
// it, and ensures the schema exists.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}
