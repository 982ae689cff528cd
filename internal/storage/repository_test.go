package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/vocab-trainer/internal/models"
)

// wordStore is what both embedded repositories offer on top of Repository
type wordStore interface {
	Repository
	InsertWords(ctx context.Context, words []*models.Word) error
}

func repositories(t *testing.T) map[string]wordStore {
	t.Helper()

	sqliteRepo, err := NewSQLiteRepository(context.Background(), filepath.Join(t.TempDir(), "vocab.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqliteRepo.Close() })

	return map[string]wordStore{
		"memory": NewMemoryRepository(),
		"sqlite": sqliteRepo,
	}
}

func testWord(id, english, russian, category string, difficulty int, created time.Time) *models.Word {
	return &models.Word{
		ID:         id,
		English:    english,
		Russian:    russian,
		Category:   category,
		Difficulty: difficulty,
		CreatedAt:  created,
	}
}

func seedWords(t *testing.T, repo wordStore) {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	phonetic := "/ˈmʌð.ər/"

	mother := testWord("w1", "mother", "мама", "family", 1, base)
	mother.Phonetic = &phonetic

	require.NoError(t, repo.InsertWords(context.Background(), []*models.Word{
		mother,
		testWord("w2", "father", "папа", "family", 1, base.Add(time.Second)),
		testWord("w3", "bread", "хлеб", "food", 1, base.Add(2*time.Second)),
		testWord("w4", "airport", "аэропорт", "travel", 2, base.Add(3*time.Second)),
		testWord("w5", "salary", "зарплата", "work", 3, base.Add(4*time.Second)),
	}))
}

func TestRepository_Words(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedWords(t, repo)

			count, err := repo.CountWords(ctx)
			require.NoError(t, err)
			assert.Equal(t, 5, count)

			w, err := repo.GetWord(ctx, "w1")
			require.NoError(t, err)
			require.NotNil(t, w)
			assert.Equal(t, "mother", w.English)
			assert.Equal(t, "мама", w.Russian)
			assert.Equal(t, "/ˈmʌð.ər/", w.PhoneticText())
			assert.Nil(t, w.Example)

			missing, err := repo.GetWord(ctx, "nope")
			require.NoError(t, err)
			assert.Nil(t, missing)

			all, err := repo.ListWords(ctx, models.WordFilter{})
			require.NoError(t, err)
			require.Len(t, all, 5)
			assert.Equal(t, "mother", all[0].English)
			assert.Equal(t, "salary", all[4].English)

			family, err := repo.ListWords(ctx, models.WordFilter{Category: "family"})
			require.NoError(t, err)
			assert.Len(t, family, 2)

			hard, err := repo.ListWords(ctx, models.WordFilter{Difficulty: 3})
			require.NoError(t, err)
			require.Len(t, hard, 1)
			assert.Equal(t, "salary", hard[0].English)

			limited, err := repo.ListWords(ctx, models.WordFilter{Limit: 3})
			require.NoError(t, err)
			assert.Len(t, limited, 3)

			categories, err := repo.ListCategories(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"family", "food", "travel", "work"}, categories)
		})
	}
}

func TestRepository_CreateWordDuplicate(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			w := testWord("dup", "work", "работа", "work", 1, time.Now().UTC())

			require.NoError(t, repo.CreateWord(ctx, w))
			assert.Error(t, repo.CreateWord(ctx, w))
		})
	}
}

func TestRepository_InsertWordsIsAtomic(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Now().UTC()

			err := repo.InsertWords(ctx, []*models.Word{
				testWord("a", "one", "один", "basic", 1, now),
				testWord("a", "two", "два", "basic", 1, now),
			})
			require.Error(t, err)

			count, err := repo.CountWords(ctx)
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}
}

func TestRepository_UpdateProgress(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedWords(t, repo)
			studied := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

			rec, err := repo.UpdateProgress(ctx, "w3", "alice", func(prior *models.ProgressRecord) (*models.ProgressRecord, error) {
				assert.Nil(t, prior)
				return &models.ProgressRecord{
					ID:           "p1",
					WordID:       "w3",
					UserID:       "alice",
					CorrectCount: 1,
					MasteryLevel: models.MasteryLearning,
					LastStudied:  studied,
				}, nil
			})
			require.NoError(t, err)
			assert.Equal(t, 1, rec.CorrectCount)

			rec, err = repo.UpdateProgress(ctx, "w3", "alice", func(prior *models.ProgressRecord) (*models.ProgressRecord, error) {
				require.NotNil(t, prior)
				next := *prior
				next.IncorrectCount++
				next.LastStudied = studied.Add(time.Minute)
				return &next, nil
			})
			require.NoError(t, err)
			assert.Equal(t, "p1", rec.ID)
			assert.Equal(t, 1, rec.CorrectCount)
			assert.Equal(t, 1, rec.IncorrectCount)

			stored, err := repo.GetProgress(ctx, "w3", "alice")
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, models.MasteryLearning, stored.MasteryLevel)
			assert.True(t, stored.LastStudied.Equal(studied.Add(time.Minute)))

			other, err := repo.GetProgress(ctx, "w3", "bob")
			require.NoError(t, err)
			assert.Nil(t, other)
		})
	}
}

func TestRepository_UpdateProgressErrorLeavesRecord(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedWords(t, repo)

			_, err := repo.UpdateProgress(ctx, "w1", "alice", func(prior *models.ProgressRecord) (*models.ProgressRecord, error) {
				return nil, fmt.Errorf("boom")
			})
			require.EqualError(t, err, "boom")

			rec, err := repo.GetProgress(ctx, "w1", "alice")
			require.NoError(t, err)
			assert.Nil(t, rec)
		})
	}
}

func TestRepository_ConcurrentUpdatesAreSerialized(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedWords(t, repo)

			const workers = 20
			var wg sync.WaitGroup
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := repo.UpdateProgress(ctx, "w2", "alice", func(prior *models.ProgressRecord) (*models.ProgressRecord, error) {
						if prior == nil {
							return &models.ProgressRecord{
								ID:           "p-w2",
								WordID:       "w2",
								UserID:       "alice",
								CorrectCount: 1,
								LastStudied:  time.Now().UTC(),
							}, nil
						}
						next := *prior
						next.CorrectCount++
						return &next, nil
					})
					assert.NoError(t, err)
				}()
			}
			wg.Wait()

			rec, err := repo.GetProgress(ctx, "w2", "alice")
			require.NoError(t, err)
			require.NotNil(t, rec)
			assert.Equal(t, workers, rec.CorrectCount)
		})
	}
}

func TestRepository_UpsertAndListProgress(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedWords(t, repo)
			base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

			require.NoError(t, repo.UpsertProgress(ctx, &models.ProgressRecord{
				ID: "p1", WordID: "w1", UserID: "alice", CorrectCount: 1, LastStudied: base,
			}))
			require.NoError(t, repo.UpsertProgress(ctx, &models.ProgressRecord{
				ID: "p2", WordID: "w2", UserID: "alice", IncorrectCount: 1, LastStudied: base.Add(time.Hour),
			}))
			require.NoError(t, repo.UpsertProgress(ctx, &models.ProgressRecord{
				ID: "p3", WordID: "w1", UserID: "bob", CorrectCount: 2, LastStudied: base,
			}))
			// same key, new counters: replaces in place
			require.NoError(t, repo.UpsertProgress(ctx, &models.ProgressRecord{
				ID: "p1", WordID: "w1", UserID: "alice", CorrectCount: 2, LastStudied: base.Add(2 * time.Hour),
			}))

			records, err := repo.ListProgressByUser(ctx, "alice")
			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.Equal(t, "w1", records[0].WordID)
			assert.Equal(t, 2, records[0].CorrectCount)
			assert.Equal(t, "w2", records[1].WordID)

			none, err := repo.ListProgressByUser(ctx, "carol")
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestRepository_Sessions(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

			require.NoError(t, repo.CreateSession(ctx, &models.StudySession{
				ID: "s1", UserID: "alice", SessionType: models.SessionFlashcards,
				WordsStudied: 10, CorrectAnswers: 7, IncorrectAnswers: 3, Category: "food",
				DurationSeconds: 120, CreatedAt: base,
			}))
			require.NoError(t, repo.CreateSession(ctx, &models.StudySession{
				ID: "s2", UserID: "alice", SessionType: models.SessionQuiz,
				WordsStudied: 5, CorrectAnswers: 5, CreatedAt: base.Add(time.Hour),
			}))
			require.NoError(t, repo.CreateSession(ctx, &models.StudySession{
				ID: "s3", UserID: "bob", SessionType: models.SessionQuiz, CreatedAt: base,
			}))

			sessions, err := repo.ListSessionsByUser(ctx, "alice")
			require.NoError(t, err)
			require.Len(t, sessions, 2)
			assert.Equal(t, "s2", sessions[0].ID)
			assert.Equal(t, models.SessionQuiz, sessions[0].SessionType)
			assert.Equal(t, "food", sessions[1].Category)
			assert.Equal(t, 120, sessions[1].DurationSeconds)
		})
	}
}

func TestRepository_Ping(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, repo.Ping(context.Background()))
		})
	}
}

func TestListMigrations(t *testing.T) {
	names, err := listMigrations(Migrations())
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "001_init.sql", names[0])
}
