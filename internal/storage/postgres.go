package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terra-clan/vocab-trainer/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// querier is satisfied by both the pool and a transaction
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const (
	wordColumns     = `id, english, russian, category, difficulty, phonetic, example, created_at`
	progressColumns = `id, word_id, user_id, correct_count, incorrect_count, mastery_level, last_studied`
	sessionColumns  = `id, user_id, session_type, words_studied, correct_answers, incorrect_answers, category, duration_seconds, created_at`
)

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 25
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 2
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// CreateWord inserts a new catalog word
func (r *PostgresRepository) CreateWord(ctx context.Context, w *models.Word) error {
	query := `
		INSERT INTO words (` + wordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		w.ID,
		w.English,
		w.Russian,
		w.Category,
		w.Difficulty,
		w.Phonetic,
		w.Example,
		w.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create word: %w", err)
	}

	return nil
}

// GetWord retrieves a word by ID
func (r *PostgresRepository) GetWord(ctx context.Context, id string) (*models.Word, error) {
	var w models.Word
	err := pgxscan.Get(ctx, r.pool, &w, `SELECT `+wordColumns+` FROM words WHERE id = $1`, id)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get word: %w", err)
	}

	return &w, nil
}

// ListWords returns words matching filter
func (r *PostgresRepository) ListWords(ctx context.Context, filter models.WordFilter) ([]*models.Word, error) {
	query := `SELECT ` + wordColumns + ` FROM words WHERE 1=1`
	args := make([]interface{}, 0)
	argNum := 1

	if filter.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argNum)
		args = append(args, filter.Category)
		argNum++
	}

	if filter.Difficulty > 0 {
		query += fmt.Sprintf(" AND difficulty = $%d", argNum)
		args = append(args, filter.Difficulty)
		argNum++
	}

	query += " ORDER BY created_at, english"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
	}

	var words []*models.Word
	if err := pgxscan.Select(ctx, r.pool, &words, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list words: %w", err)
	}

	return words, nil
}

// ListCategories returns the distinct word categories
func (r *PostgresRepository) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := pgxscan.Select(ctx, r.pool, &categories, `SELECT DISTINCT category FROM words ORDER BY category`); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, nil
}

// CountWords returns the catalog size
func (r *PostgresRepository) CountWords(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM words`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count words: %w", err)
	}

	return count, nil
}

// GetProgress retrieves the progress record for a (word, user) pair
func (r *PostgresRepository) GetProgress(ctx context.Context, wordID, userID string) (*models.ProgressRecord, error) {
	return getProgress(ctx, r.pool, wordID, userID)
}

// UpsertProgress inserts or replaces the record keyed by (word_id, user_id)
func (r *PostgresRepository) UpsertProgress(ctx context.Context, p *models.ProgressRecord) error {
	return upsertProgress(ctx, r.pool, p)
}

// UpdateProgress runs fn under a transaction-scoped advisory lock on the key, so
// concurrent answers for the same pair are applied one after another.
func (r *PostgresRepository) UpdateProgress(ctx context.Context, wordID, userID string, fn ProgressUpdateFunc) (*models.ProgressRecord, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// the row may not exist yet, so SELECT ... FOR UPDATE is not enough
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1 || ':' || $2))`, wordID, userID); err != nil {
		return nil, fmt.Errorf("failed to lock progress key: %w", err)
	}

	prior, err := getProgress(ctx, tx, wordID, userID)
	if err != nil {
		return nil, err
	}

	next, err := fn(prior)
	if err != nil {
		return nil, err
	}

	if err := upsertProgress(ctx, tx, next); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit progress update: %w", err)
	}

	return next, nil
}

// ListProgressByUser returns all progress records of a user
func (r *PostgresRepository) ListProgressByUser(ctx context.Context, userID string) ([]*models.ProgressRecord, error) {
	query := `SELECT ` + progressColumns + ` FROM progress WHERE user_id = $1 ORDER BY last_studied DESC`

	var records []*models.ProgressRecord
	if err := pgxscan.Select(ctx, r.pool, &records, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}

	return records, nil
}

// CreateSession stores a study session summary
func (r *PostgresRepository) CreateSession(ctx context.Context, s *models.StudySession) error {
	query := `
		INSERT INTO study_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.UserID,
		string(s.SessionType),
		s.WordsStudied,
		s.CorrectAnswers,
		s.IncorrectAnswers,
		s.Category,
		s.DurationSeconds,
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// ListSessionsByUser returns the session log of a user
func (r *PostgresRepository) ListSessionsByUser(ctx context.Context, userID string) ([]*models.StudySession, error) {
	query := `SELECT ` + sessionColumns + ` FROM study_sessions WHERE user_id = $1 ORDER BY created_at DESC`

	var sessions []*models.StudySession
	if err := pgxscan.Select(ctx, r.pool, &sessions, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return sessions, nil
}

func getProgress(ctx context.Context, q querier, wordID, userID string) (*models.ProgressRecord, error) {
	query := `SELECT ` + progressColumns + ` FROM progress WHERE word_id = $1 AND user_id = $2`

	var p models.ProgressRecord
	if err := pgxscan.Get(ctx, q, &p, query, wordID, userID); err != nil {
		if pgxscan.NotFound(err) || errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	return &p, nil
}

func upsertProgress(ctx context.Context, q querier, p *models.ProgressRecord) error {
	query := `
		INSERT INTO progress (` + progressColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (word_id, user_id) DO UPDATE
		SET correct_count = EXCLUDED.correct_count,
		    incorrect_count = EXCLUDED.incorrect_count,
		    mastery_level = EXCLUDED.mastery_level,
		    last_studied = EXCLUDED.last_studied
	`

	_, err := q.Exec(ctx, query,
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
