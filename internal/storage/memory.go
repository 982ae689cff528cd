package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/terra-clan/vocab-trainer/internal/models"
)

// MemoryRepository implements Repository in process memory.
// Used for local runs and tests; all data is lost on exit.
type MemoryRepository struct {
	mu       sync.RWMutex
	words    map[string]*models.Word
	order    []string
	progress map[progressKey]*models.ProgressRecord
	sessions []*models.StudySession
}

type progressKey struct {
	wordID string
	userID string
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		words:    make(map[string]*models.Word),
		progress: make(map[progressKey]*models.ProgressRecord),
	}
}

// Ping always succeeds
func (r *MemoryRepository) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (r *MemoryRepository) Close() error {
	return nil
}

// CreateWord stores a word; duplicate IDs are rejected
func (r *MemoryRepository) CreateWord(ctx context.Context, w *models.Word) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertWord(w)
}

// InsertWords stores a batch of words atomically
func (r *MemoryRepository) InsertWords(ctx context.Context, words []*models.Word) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, w := range words {
		if _, exists := r.words[w.ID]; exists {
			return fmt.Errorf("failed to insert words: duplicate word id %s", w.ID)
		}
	}

	for _, w := range words {
		if err := r.insertWord(w); err != nil {
			return err
		}
	}

	return nil
}

func (r *MemoryRepository) insertWord(w *models.Word) error {
	if _, exists := r.words[w.ID]; exists {
		return fmt.Errorf("failed to create word: duplicate word id %s", w.ID)
	}

	cp := *w
	r.words[w.ID] = &cp
	r.order = append(r.order, w.ID)
	return nil
}

// GetWord retrieves a word by ID
func (r *MemoryRepository) GetWord(ctx context.Context, id string) (*models.Word, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.words[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

// ListWords returns words matching filter in insertion order
func (r *MemoryRepository) ListWords(ctx context.Context, filter models.WordFilter) ([]*models.Word, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var words []*models.Word
	for _, id := range r.order {
		w := r.words[id]
		if filter.Category != "" && w.Category != filter.Category {
			continue
		}
		if filter.Difficulty > 0 && w.Difficulty != filter.Difficulty {
			continue
		}

		cp := *w
		words = append(words, &cp)

		if filter.Limit > 0 && len(words) >= filter.Limit {
			break
		}
	}

	return words, nil
}

// ListCategories returns the distinct categories in sorted order
func (r *MemoryRepository) ListCategories(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	categories := make([]string, 0)
	for _, w := range r.words {
		if !seen[w.Category] {
			seen[w.Category] = true
			categories = append(categories, w.Category)
		}
	}
	sort.Strings(categories)

	return categories, nil
}

// CountWords returns the catalog size
func (r *MemoryRepository) CountWords(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.words), nil
}

// GetProgress retrieves the progress record for a (word, user) pair
func (r *MemoryRepository) GetProgress(ctx context.Context, wordID, userID string) (*models.ProgressRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.progress[progressKey{wordID: wordID, userID: userID}]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// UpsertProgress inserts or replaces the record keyed by (word_id, user_id)
func (r *MemoryRepository) UpsertProgress(ctx context.Context, p *models.ProgressRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.putProgress(p)
	return nil
}

// putProgress keeps the ID of an existing record, like the SQL upserts do
func (r *MemoryRepository) putProgress(p *models.ProgressRecord) {
	key := progressKey{wordID: p.WordID, userID: p.UserID}
	cp := *p
	if existing, ok := r.progress[key]; ok {
		cp.ID = existing.ID
	}
	r.progress[key] = &cp
}

// UpdateProgress applies fn to the stored record under the write lock
func (r *MemoryRepository) UpdateProgress(ctx context.Context, wordID, userID string, fn ProgressUpdateFunc) (*models.ProgressRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var prior *models.ProgressRecord
	if p, ok := r.progress[progressKey{wordID: wordID, userID: userID}]; ok {
		cp := *p
		prior = &cp
	}

	next, err := fn(prior)
	if err != nil {
		return nil, err
	}

	r.putProgress(next)
	out := *r.progress[progressKey{wordID: next.WordID, userID: next.UserID}]
	return &out, nil
}

// ListProgressByUser returns all progress records of a user, most recent first
func (r *MemoryRepository) ListProgressByUser(ctx context.Context, userID string) ([]*models.ProgressRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*models.ProgressRecord, 0)
	for key, p := range r.progress {
		if key.userID == userID {
			cp := *p
			records = append(records, &cp)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].LastStudied.After(records[j].LastStudied)
	})

	return records, nil
}

// CreateSession stores a study session summary
func (r *MemoryRepository) CreateSession(ctx context.Context, s *models.StudySession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *s
	r.sessions = append(r.sessions, &cp)
	return nil
}

// ListSessionsByUser returns the session log of a user, most recent first
func (r *MemoryRepository) ListSessionsByUser(ctx context.Context, userID string) ([]*models.StudySession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]*models.StudySession, 0)
	for i := len(r.sessions) - 1; i >= 0; i-- {
		if r.sessions[i].UserID == userID {
			cp := *r.sessions[i]
			sessions = append(sessions, &cp)
		}
	}

	return sessions, nil
}
