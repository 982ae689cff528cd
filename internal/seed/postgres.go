package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/terra-clan/vocab-trainer/internal/models"
)

// PostgresTarget bulk-loads words into PostgreSQL with COPY
type PostgresTarget struct {
	db *sql.DB
}

// NewPostgresTarget opens a database/sql connection through lib/pq
func NewPostgresTarget(ctx context.Context, dsn string) (*PostgresTarget, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresTarget{db: db}, nil
}

// CountWords returns the catalog size
func (t *PostgresTarget) CountWords(ctx context.Context) (int, error) {
	var count int
	if err := t.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM words`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count words: %w", err)
	}
	return count, nil
}

// InsertWords streams words into the words table in one COPY
func (t *PostgresTarget) InsertWords(ctx context.Context, words []*models.Word) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("words",
		"id", "english", "russian", "category", "difficulty", "phonetic", "example", "created_at",
	))
	if err != nil {
		return fmt.Errorf("failed to prepare copy: %w", err)
	}

	for _, w := range words {
		if _, err := stmt.ExecContext(ctx,
			w.ID, w.English, w.Russian, w.Category, w.Difficulty, w.Phonetic, w.Example, w.CreatedAt,
		); err != nil {
			stmt.Close()
			return fmt.Errorf("failed to copy word %q: %w", w.English, err)
		}
	}

	// an empty Exec flushes the COPY buffer
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("failed to flush copy: %w", err)
	}

	if err := stmt.Close(); err != nil {
		return fmt.Errorf("failed to close copy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit words: %w", err)
	}

	return nil
}

// Close closes the connection
func (t *PostgresTarget) Close() error {
	return t.db.Close()
}
