package trainer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/vocab-trainer/internal/models"
	"github.com/terra-clan/vocab-trainer/internal/storage"
	"github.com/terra-clan/vocab-trainer/internal/study"
)

// Common errors
var (
	ErrWordNotFound = errors.New("word not found")
	ErrUserRequired = fmt.Errorf("%w: user id is required", study.ErrInvalidArgument)
)

// Manager defines the interface for vocabulary study operations
type Manager interface {
	ListWords(ctx context.Context, filter models.WordFilter) ([]*models.Word, error)
	Categories(ctx context.Context) ([]string, error)
	RandomWords(ctx context.Context, category string, count int) ([]*models.Word, error)
	CreateWord(ctx context.Context, req models.CreateWordRequest) (*models.Word, error)
	GetWord(ctx context.Context, id string) (*models.Word, error)
	GenerateQuiz(ctx context.Context, category string, count int) ([]models.QuizQuestion, error)
	RecordAnswer(ctx context.Context, userID, wordID string, correct bool) (*models.ProgressRecord, error)
	Progress(ctx context.Context, userID string) ([]*models.ProgressRecord, error)
	Stats(ctx context.Context, userID string) (models.Stats, error)
	CreateSession(ctx context.Context, userID string, req models.CreateSessionRequest) (*models.StudySession, error)
	ListSessions(ctx context.Context, userID string) ([]*models.StudySession, error)
	Ping(ctx context.Context) error
}

// Catalog serves word listings, either from the store or from a cache in front of it
type Catalog interface {
	ListWords(ctx context.Context, filter models.WordFilter) ([]*models.Word, error)
	ListCategories(ctx context.Context) ([]string, error)
}

// Cache is a Catalog whose entries must be dropped after catalog writes
type Cache interface {
	Catalog
	Invalidate(ctx context.Context) error
}

// Options holds study defaults and limits
type Options struct {
	CatalogLimit     int
	DefaultQuizCount int
	MaxQuizCount     int
	FlashcardCount   int

	// Random drives quiz and flashcard sampling; nil means the global source
	Random study.Random
	// Now stamps answers and sessions; nil means time.Now in UTC
	Now func() time.Time
}

// DefaultOptions returns the stock limits
func DefaultOptions() Options {
	return Options{
		CatalogLimit:     1000,
		DefaultQuizCount: 5,
		MaxQuizCount:     50,
		FlashcardCount:   10,
	}
}

// Service implements Manager on top of a repository
type Service struct {
	repo      storage.Repository
	catalog   Catalog
	cache     Cache
	generator *study.Generator
	rnd       study.Random
	opts      Options
	now       func() time.Time
}

// NewService creates a new Service. cache may be nil.
func NewService(repo storage.Repository, cache Cache, opts Options) *Service {
	defaults := DefaultOptions()
	if opts.CatalogLimit <= 0 {
		opts.CatalogLimit = defaults.CatalogLimit
	}
	if opts.DefaultQuizCount <= 0 {
		opts.DefaultQuizCount = defaults.DefaultQuizCount
	}
	if opts.MaxQuizCount <= 0 {
		opts.MaxQuizCount = defaults.MaxQuizCount
	}
	if opts.FlashcardCount <= 0 {
		opts.FlashcardCount = defaults.FlashcardCount
	}

	rnd := opts.Random
	if rnd == nil {
		rnd = study.NewGlobalRandom()
	}

	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	var catalog Catalog = repo
	if cache != nil {
		catalog = cache
	}

	return &Service{
		repo:      repo,
		catalog:   catalog,
		cache:     cache,
		generator: study.NewGenerator(rnd),
		rnd:       rnd,
		opts:      opts,
		now:       now,
	}
}

// Options returns the effective limits
func (s *Service) Options() Options {
	return s.opts
}

// Ping checks if the service is operational
func (s *Service) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// ListWords returns catalog words matching filter, capped at the catalog limit
func (s *Service) ListWords(ctx context.Context, filter models.WordFilter) ([]*models.Word, error) {
	if filter.Limit <= 0 || filter.Limit > s.opts.CatalogLimit {
		filter.Limit = s.opts.CatalogLimit
	}

	words, err := s.catalog.ListWords(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list words: %w", err)
	}
	if words == nil {
		words = []*models.Word{}
	}

	return words, nil
}

// Categories returns the distinct catalog categories
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if categories == nil {
		categories = []string{}
	}

	return categories, nil
}

// RandomWords returns up to count random words for flashcards.
// When the category holds no more than count words, all of them are returned in catalog order.
func (s *Service) RandomWords(ctx context.Context, category string, count int) ([]*models.Word, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: count must not be negative, got %d", study.ErrInvalidArgument, count)
	}
	if count == 0 {
		count = s.opts.FlashcardCount
	}

	words, err := s.ListWords(ctx, models.WordFilter{Category: category})
	if err != nil {
		return nil, err
	}

	if len(words) <= count {
		return words, nil
	}

	// partial Fisher-Yates over a copy; the catalog slice may be shared with a cache
	pool := make([]*models.Word, len(words))
	copy(pool, words)
	for i := 0; i < count; i++ {
		j := i + s.rnd.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	return pool[:count], nil
}

// CreateWord adds a word to the catalog
func (s *Service) CreateWord(ctx context.Context, req models.CreateWordRequest) (*models.Word, error) {
	w := &models.Word{
		ID:         uuid.New().String(),
		English:    strings.TrimSpace(req.English),
		Russian:    strings.TrimSpace(req.Russian),
		Category:   strings.ToLower(strings.TrimSpace(req.Category)),
		Difficulty: req.Difficulty,
		Phonetic:   req.Phonetic,
		Example:    req.Example,
		CreatedAt:  s.now(),
	}
	if w.Difficulty == 0 {
		w.Difficulty = models.DifficultyEasy
	}

	if w.English == "" || w.Russian == "" || w.Category == "" {
		return nil, fmt.Errorf("%w: english, russian and category are required", study.ErrInvalidArgument)
	}
	if w.Difficulty < models.DifficultyEasy || w.Difficulty > models.DifficultyHard {
		return nil, fmt.Errorf("%w: difficulty must be between %d and %d", study.ErrInvalidArgument,
			models.DifficultyEasy, models.DifficultyHard)
	}

	if err := s.repo.CreateWord(ctx, w); err != nil {
		return nil, fmt.Errorf("failed to create word: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			slog.Warn("failed to invalidate catalog cache", "error", err)
		}
	}

	slog.Info("word created",
		"id", w.ID,
		"english", w.English,
		"category", w.Category,
	)

	return w, nil
}

// GetWord retrieves a catalog word
func (s *Service) GetWord(ctx context.Context, id string) (*models.Word, error) {
	w, err := s.repo.GetWord(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get word: %w", err)
	}
	if w == nil {
		return nil, ErrWordNotFound
	}

	return w, nil
}

// GenerateQuiz builds count multiple-choice questions from the words of category
// (all categories when empty). count 0 falls back to the default quiz size.
func (s *Service) GenerateQuiz(ctx context.Context, category string, count int) ([]models.QuizQuestion, error) {
	if count == 0 {
		count = s.opts.DefaultQuizCount
	}
	if count > s.opts.MaxQuizCount {
		return nil, fmt.Errorf("%w: at most %d questions per quiz, got %d",
			study.ErrInvalidArgument, s.opts.MaxQuizCount, count)
	}

	words, err := s.ListWords(ctx, models.WordFilter{Category: category})
	if err != nil {
		return nil, err
	}

	questions, err := s.generator.Generate(words, count)
	if err != nil {
		return nil, err
	}

	slog.Debug("quiz generated",
		"category", category,
		"questions", len(questions),
		"pool", len(words),
	)

	return questions, nil
}

// RecordAnswer applies one answer to the user's progress on a word
func (s *Service) RecordAnswer(ctx context.Context, userID, wordID string, correct bool) (*models.ProgressRecord, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	if wordID == "" {
		return nil, fmt.Errorf("%w: word id is required", study.ErrInvalidArgument)
	}

	if _, err := s.GetWord(ctx, wordID); err != nil {
		return nil, err
	}

	answer := study.Answer{
		WordID:  wordID,
		UserID:  userID,
		Correct: correct,
		At:      s.now(),
	}

	rec, err := s.repo.UpdateProgress(ctx, wordID, userID, func(prior *models.ProgressRecord) (*models.ProgressRecord, error) {
		return study.Apply(prior, answer)
	})
	if err != nil {
		if errors.Is(err, study.ErrInvalidArgument) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}

	slog.Debug("answer recorded",
		"user", userID,
		"word", wordID,
		"correct", correct,
		"mastery_level", rec.MasteryLevel.String(),
	)

	return rec, nil
}

// Progress returns all progress records of a user
func (s *Service) Progress(ctx context.Context, userID string) ([]*models.ProgressRecord, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}

	records, err := s.repo.ListProgressByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	if records == nil {
		records = []*models.ProgressRecord{}
	}

	return records, nil
}

// Stats summarizes a user's progress and sessions
func (s *Service) Stats(ctx context.Context, userID string) (models.Stats, error) {
	if userID == "" {
		return models.Stats{}, ErrUserRequired
	}

	progress, err := s.repo.ListProgressByUser(ctx, userID)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to list progress: %w", err)
	}

	sessions, err := s.repo.ListSessionsByUser(ctx, userID)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to list sessions: %w", err)
	}

	return study.Summarize(progress, sessions), nil
}

// CreateSession logs a completed study session
func (s *Service) CreateSession(ctx context.Context, userID string, req models.CreateSessionRequest) (*models.StudySession, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}

	switch req.SessionType {
	case models.SessionFlashcards, models.SessionQuiz:
	default:
		return nil, fmt.Errorf("%w: unknown session type %q", study.ErrInvalidArgument, req.SessionType)
	}

	sess := &models.StudySession{
		ID:               uuid.New().String(),
		UserID:           userID,
		SessionType:      req.SessionType,
		WordsStudied:     req.WordsStudied,
		CorrectAnswers:   req.CorrectAnswers,
		IncorrectAnswers: req.IncorrectAnswers,
		Category:         req.Category,
		DurationSeconds:  req.DurationSeconds,
		CreatedAt:        s.now(),
	}

	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("study session logged",
		"id", sess.ID,
		"user", userID,
		"type", sess.SessionType,
		"words", sess.WordsStudied,
	)

	return sess, nil
}

// ListSessions returns the session log of a user
func (s *Service) ListSessions(ctx context.Context, userID string) ([]*models.StudySession, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}

	sessions, err := s.repo.ListSessionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	if sessions == nil {
		sessions = []*models.StudySession{}
	}

	return sessions, nil
}
