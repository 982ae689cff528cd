package storage

import (
	"context"

	"github.com/terra-clan/vocab-trainer/internal/models"
)

// ProgressUpdateFunc computes the next progress record from the stored one.
// prior is nil when no record exists for the key yet.
type ProgressUpdateFunc func(prior *models.ProgressRecord) (*models.ProgressRecord, error)

// Repository defines the interface for vocabulary persistence.
// Lookups of missing rows return nil, nil.
type Repository interface {
	// Words
	CreateWord(ctx context.Context, w *models.Word) error
	GetWord(ctx context.Context, id string) (*models.Word, error)
	ListWords(ctx context.Context, filter models.WordFilter) ([]*models.Word, error)
	ListCategories(ctx context.Context) ([]string, error)
	CountWords(ctx context.Context) (int, error)

	// Progress
	GetProgress(ctx context.Context, wordID, userID string) (*models.ProgressRecord, error)
	UpsertProgress(ctx context.Context, p *models.ProgressRecord) error
	ListProgressByUser(ctx context.Context, userID string) ([]*models.ProgressRecord, error)

	// UpdateProgress reads the record for (wordID, userID), passes it to fn and stores
	// the result, holding exclusive access to the key for the whole cycle.
	UpdateProgress(ctx context.Context, wordID, userID string, fn ProgressUpdateFunc) (*models.ProgressRecord, error)

	// Sessions
	CreateSession(ctx context.Context, s *models.StudySession) error
	ListSessionsByUser(ctx context.Context, userID string) ([]*models.StudySession, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}
