package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/terra-clan/vocab-trainer/internal/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS words (
    id          TEXT PRIMARY KEY,
    english     TEXT NOT NULL,
    russian     TEXT NOT NULL,
    category    TEXT NOT NULL,
    difficulty  INTEGER NOT NULL DEFAULT 1 CHECK (difficulty BETWEEN 1 AND 3),
    phonetic    TEXT,
    example     TEXT,
    created_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_words_category ON words (category);

CREATE TABLE IF NOT EXISTS progress (
    id               TEXT PRIMARY KEY,
    word_id          TEXT NOT NULL REFERENCES words (id) ON DELETE CASCADE,
    user_id          TEXT NOT NULL,
    correct_count    INTEGER NOT NULL DEFAULT 0 CHECK (correct_count >= 0),
    incorrect_count  INTEGER NOT NULL DEFAULT 0 CHECK (incorrect_count >= 0),
    mastery_level    INTEGER NOT NULL DEFAULT 0 CHECK (mastery_level BETWEEN 0 AND 3),
    last_studied     DATETIME NOT NULL,
    UNIQUE (word_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_progress_user ON progress (user_id);

CREATE TABLE IF NOT EXISTS study_sessions (
    id                 TEXT PRIMARY KEY,
    user_id            TEXT NOT NULL,
    session_type       TEXT NOT NULL,
    words_studied      INTEGER NOT NULL DEFAULT 0,
    correct_answers    INTEGER NOT NULL DEFAULT 0,
    incorrect_answers  INTEGER NOT NULL DEFAULT 0,
    category           TEXT NOT NULL DEFAULT '',
    duration_seconds   INTEGER NOT NULL DEFAULT 0,
    created_at         DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_study_sessions_user ON study_sessions (user_id);
`

// SQLiteRepository implements Repository using an embedded SQLite file.
// All access goes through a single connection, so transactions are serialized.
type SQLiteRepository struct {
	db *sqlx.DB
}

// NewSQLiteRepository opens (or creates) the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func NewSQLiteRepository(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Ping checks database connectivity
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

const insertWordSQL = `
	INSERT INTO words (id, english, russian, category, difficulty, phonetic, example, created_at)
	VALUES (:id, :english, :russian, :category, :difficulty, :phonetic, :example, :created_at)
`

// CreateWord inserts a new catalog word
func (r *SQLiteRepository) CreateWord(ctx context.Context, w *models.Word) error {
	if _, err := r.db.NamedExecContext(ctx, insertWordSQL, w); err != nil {
		return fmt.Errorf("failed to create word: %w", err)
	}
	return nil
}

// InsertWords stores a batch of words in one transaction
func (r *SQLiteRepository) InsertWords(ctx context.Context, words []*models.Word) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, insertWordSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, w := range words {
		if _, err := stmt.ExecContext(ctx, w); err != nil {
			return fmt.Errorf("failed to insert word %q: %w", w.English, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit words: %w", err)
	}

	return nil
}

// GetWord retrieves a word by ID
func (r *SQLiteRepository) GetWord(ctx context.Context, id string) (*models.Word, error) {
	var w models.Word
	err := r.db.GetContext(ctx, &w, `SELECT `+wordColumns+` FROM words WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get word: %w", err)
	}

	return &w, nil
}

// ListWords returns words matching filter
func (r *SQLiteRepository) ListWords(ctx context.Context, filter models.WordFilter) ([]*models.Word, error) {
	query := `SELECT ` + wordColumns + ` FROM words WHERE 1=1`
	args := make([]interface{}, 0)

	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}

	if filter.Difficulty > 0 {
		query += " AND difficulty = ?"
		args = append(args, filter.Difficulty)
	}

	query += " ORDER BY created_at, english"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	var words []*models.Word
	if err := r.db.SelectContext(ctx, &words, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list words: %w", err)
	}

	return words, nil
}

// ListCategories returns the distinct word categories
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := r.db.SelectContext(ctx, &categories, `SELECT DISTINCT category FROM words ORDER BY category`); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, nil
}

// CountWords returns the catalog size
func (r *SQLiteRepository) CountWords(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM words`); err != nil {
		return 0, fmt.Errorf("failed to count words: %w", err)
	}

	return count, nil
}

// GetProgress retrieves the progress record for a (word, user) pair
func (r *SQLiteRepository) GetProgress(ctx context.Context, wordID, userID string) (*models.ProgressRecord, error) {
	return sqliteGetProgress(ctx, r.db, wordID, userID)
}

// UpsertProgress inserts or replaces the record keyed by (word_id, user_id)
func (r *SQLiteRepository) UpsertProgress(ctx context.Context, p *models.ProgressRecord) error {
	return sqliteUpsertProgress(ctx, r.db, p)
}

// UpdateProgress runs fn inside a transaction. The pool holds one connection,
// so no other statement can interleave with the read-modify-write.
func (r *SQLiteRepository) UpdateProgress(ctx context.Context, wordID, userID string, fn ProgressUpdateFunc) (*models.ProgressRecord, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	prior, err := sqliteGetProgress(ctx, tx, wordID, userID)
	if err != nil {
		return nil, err
	}

	next, err := fn(prior)
	if err != nil {
		return nil, err
	}

	if err := sqliteUpsertProgress(ctx, tx, next); err != nil {
		return nil, err
	}

	stored, err := sqliteGetProgress(ctx, tx, next.WordID, next.UserID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit progress update: %w", err)
	}

	return stored, nil
}

// ListProgressByUser returns all progress records of a user
func (r *SQLiteRepository) ListProgressByUser(ctx context.Context, userID string) ([]*models.ProgressRecord, error) {
	query := `SELECT ` + progressColumns + ` FROM progress WHERE user_id = ? ORDER BY last_studied DESC`

	var records []*models.ProgressRecord
	if err := r.db.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}

	return records, nil
}

// CreateSession stores a study session summary
func (r *SQLiteRepository) CreateSession(ctx context.Context, s *models.StudySession) error {
	query := `
		INSERT INTO study_sessions (` + sessionColumns + `)
		VALUES (:id, :user_id, :session_type, :words_studied, :correct_answers, :incorrect_answers, :category, :duration_seconds, :created_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// ListSessionsByUser returns the session log of a user
func (r *SQLiteRepository) ListSessionsByUser(ctx context.Context, userID string) ([]*models.StudySession, error) {
	query := `SELECT ` + sessionColumns + ` FROM study_sessions WHERE user_id = ? ORDER BY created_at DESC`

	var sessions []*models.StudySession
	if err := r.db.SelectContext(ctx, &sessions, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return sessions, nil
}

func sqliteGetProgress(ctx context.Context, q sqlx.QueryerContext, wordID, userID string) (*models.ProgressRecord, error) {
	query := `SELECT ` + progressColumns + ` FROM progress WHERE word_id = ? AND user_id = ?`

	var p models.ProgressRecord
	if err := sqlx.GetContext(ctx, q, &p, query, wordID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	return &p, nil
}

func sqliteUpsertProgress(ctx context.Context, q sqlx.ExtContext, p *models.ProgressRecord) error {
	query := `
		INSERT INTO progress (` + progressColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (word_id, user_id) DO UPDATE
		SET correct_count = excluded.correct_count,
		    incorrect_count = excluded.incorrect_count,
		    mastery_level = excluded.mastery_level,
		    last_studied = excluded.last_studied
	`

	_, err := q.ExecContext(ctx, query,
		p.ID,
		p.WordID,
		p.UserID,
		p.CorrectCount,
		p.IncorrectCount,
		int(p.MasteryLevel),
		p.LastStudied,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert progress: %w", err)
	}

	return nil
}
