package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/vocab-trainer/internal/config"
	"github.com/terra-clan/vocab-trainer/internal/models"
	"github.com/terra-clan/vocab-trainer/internal/seed"
	"github.com/terra-clan/vocab-trainer/internal/services"
	"github.com/terra-clan/vocab-trainer/internal/storage"
	"github.com/terra-clan/vocab-trainer/internal/study"
	"github.com/terra-clan/vocab-trainer/internal/trainer"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

func newTestServer(t *testing.T, registry *services.Registry) (*httptest.Server, *storage.MemoryRepository) {
	t.Helper()

	repo := storage.NewMemoryRepository()
	words, err := seed.Default()
	require.NoError(t, err)
	_, err = seed.Run(context.Background(), repo, words)
	require.NoError(t, err)

	svc := trainer.NewService(repo, nil, trainer.Options{Random: study.NewSeededRandom(7)})
	srv := NewServer(config.ServerConfig{Host: "127.0.0.1", Port: 8080, RequestTimeout: 5 * time.Second}, svc, registry)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, repo
}

func do(t *testing.T, method, url, userID, body string) (int, envelope) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set(UserIDHeader, userID)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func findWord(t *testing.T, baseURL, english string) models.Word {
	t.Helper()
	status, env := do(t, http.MethodGet, baseURL+"/api/v1/words", "", "")
	require.Equal(t, http.StatusOK, status)

	var data struct {
		Words []models.Word `json:"words"`
	}
	decodeData(t, env, &data)
	for _, w := range data.Words {
		if w.English == english {
			return w
		}
	}
	t.Fatalf("word %q not found", english)
	return models.Word{}
}

func TestHealthAndRoot(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	status, env := do(t, http.MethodGet, ts.URL+"/health", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	status, env = do(t, http.MethodGet, ts.URL+"/api/v1/", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "English Learning API")
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func TestReady(t *testing.T) {
	registry := services.NewRegistry()
	registry.Register("database", services.NewPingProvider("memory", stubPinger{}))
	ts, _ := newTestServer(t, registry)

	status, env := do(t, http.MethodGet, ts.URL+"/ready", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"database":"ok"`)

	registry.Register("cache", services.NewPingProvider("redis", stubPinger{err: errors.New("down")}))
	status, env = do(t, http.MethodGet, ts.URL+"/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "not_ready", env.Error.Code)
}

func TestWords(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	status, env := do(t, http.MethodGet, ts.URL+"/api/v1/words?category=work&difficulty=2", "", "")
	require.Equal(t, http.StatusOK, status)
	var list struct {
		Words []models.Word `json:"words"`
		Total int           `json:"total"`
	}
	decodeData(t, env, &list)
	assert.Equal(t, 2, list.Total)
	for _, w := range list.Words {
		assert.Equal(t, "work", w.Category)
		assert.Equal(t, 2, w.Difficulty)
	}

	status, env = do(t, http.MethodGet, ts.URL+"/api/v1/words?difficulty=hard", "", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", env.Error.Code)

	status, env = do(t, http.MethodGet, ts.URL+"/api/v1/words/categories", "", "")
	require.Equal(t, http.StatusOK, status)
	var cats struct {
		Categories []string `json:"categories"`
	}
	decodeData(t, env, &cats)
	assert.ElementsMatch(t, []string{"basic", "family", "food", "travel", "work"}, cats.Categories)

	status, env = do(t, http.MethodGet, ts.URL+"/api/v1/words/random?count=3", "", "")
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &list)
	assert.Len(t, list.Words, 3)

	hello := findWord(t, ts.URL, "hello")
	status, env = do(t, http.MethodGet, ts.URL+"/api/v1/words/"+hello.ID, "", "")
	require.Equal(t, http.StatusOK, status)
	var got models.Word
	decodeData(t, env, &got)
	assert.Equal(t, "привет", got.Russian)

	status, env = do(t, http.MethodGet, ts.URL+"/api/v1/words/unknown", "", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "word_not_found", env.Error.Code)
}

func TestCreateWord(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	status, env := do(t, http.MethodPost, ts.URL+"/api/v1/words", "",
		`{"english":"cat","russian":"кошка","category":"animals","difficulty":1}`)
	require.Equal(t, http.StatusCreated, status)
	var w models.Word
	decodeData(t, env, &w)
	assert.NotEmpty(t, w.ID)
	assert.Equal(t, "animals", w.Category)

	status, env = do(t, http.MethodPost, ts.URL+"/api/v1/words", "", `{"english":"cat"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", env.Error.Code)
	assert.Contains(t, env.Error.Message, "russian is required")

	status, _ = do(t, http.MethodPost, ts.URL+"/api/v1/words", "", `{"english":"cat","russian":"кошка","category":"animals","difficulty":5}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = do(t, http.MethodPost, ts.URL+"/api/v1/words", "", `not json`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_request", env.Error.Code)
}

func TestMultipleChoiceQuiz(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	status, env := do(t, http.MethodGet, ts.URL+"/api/v1/quiz/multiple-choice?category=food&count=5", "", "")
	require.Equal(t, http.StatusOK, status)

	var data struct {
		Questions []struct {
			ID      string `json:"id"`
			English string `json:"english"`
			Options []struct {
				Text    string `json:"text"`
				Correct bool   `json:"correct"`
			} `json:"options"`
		} `json:"questions"`
	}
	decodeData(t, env, &data)
	require.Len(t, data.Questions, 5)
	for _, q := range data.Questions {
		require.Len(t, q.Options, 4)
		correct := 0
		for _, o := range q.Options {
			if o.Correct {
				correct++
			}
		}
		assert.Equal(t, 1, correct)
	}

	status, env = do(t, http.MethodGet, ts.URL+"/api/v1/quiz/multiple-choice", "", "")
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &data)
	assert.Len(t, data.Questions, 5)

	status, env = do(t, http.MethodGet, ts.URL+"/api/v1/quiz/multiple-choice?category=food&count=6", "", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "insufficient_data", env.Error.Code)

	status, env = do(t, http.MethodGet, ts.URL+"/api/v1/quiz/multiple-choice?count=-1", "", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", env.Error.Code)

	status, _ = do(t, http.MethodGet, ts.URL+"/api/v1/quiz/multiple-choice?count=five", "", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestProgressFoodScenario(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	breakfast := findWord(t, ts.URL, "breakfast")
	update := ts.URL + "/api/v1/progress/update?word_id=" + breakfast.ID

	var data struct {
		Progress models.ProgressRecord `json:"progress"`
	}
	for i := 0; i < 3; i++ {
		status, env := do(t, http.MethodPost, update+"&is_correct=true", "alice", "")
		require.Equal(t, http.StatusOK, status)
		decodeData(t, env, &data)
	}
	assert.Equal(t, models.MasteryMastered, data.Progress.MasteryLevel)

	status, env := do(t, http.MethodPost, ts.URL+"/api/v1/progress/update", "alice",
		`{"word_id":"`+breakfast.ID+`","is_correct":false}`)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &data)
	assert.Equal(t, 3, data.Progress.CorrectCount)
	assert.Equal(t, 1, data.Progress.IncorrectCount)
	assert.Equal(t, models.MasteryFamiliar, data.Progress.MasteryLevel)

	status, env = do(t, http.MethodGet, ts.URL+"/api/v1/progress/stats", "alice", "")
	require.Equal(t, http.StatusOK, status)
	var stats models.Stats
	decodeData(t, env, &stats)
	assert.Equal(t, 1, stats.TotalWordsStudied)
	assert.Equal(t, 1, stats.FamiliarWords)
	assert.Equal(t, 75.0, stats.Accuracy)

	status, env = do(t, http.MethodGet, ts.URL+"/api/v1/progress?user_id=alice", "", "")
	require.Equal(t, http.StatusOK, status)
	var list struct {
		Progress []models.ProgressRecord `json:"progress"`
		Total    int                     `json:"total"`
	}
	decodeData(t, env, &list)
	assert.Equal(t, 1, list.Total)
}

func TestProgressErrors(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	hello := findWord(t, ts.URL, "hello")

	status, env := do(t, http.MethodPost, ts.URL+"/api/v1/progress/update?word_id="+hello.ID+"&is_correct=true", "", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "user_required", env.Error.Code)

	status, env = do(t, http.MethodPost, ts.URL+"/api/v1/progress/update?word_id=nope&is_correct=true", "alice", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "word_not_found", env.Error.Code)

	status, _ = do(t, http.MethodPost, ts.URL+"/api/v1/progress/update?word_id="+hello.ID+"&is_correct=maybe", "alice", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = do(t, http.MethodPost, ts.URL+"/api/v1/progress/update", "alice", `{"word_id":"`+hello.ID+`"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Error.Message, "is_correct is required")

	status, _ = do(t, http.MethodGet, ts.URL+"/api/v1/progress/stats", "", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSessions(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	status, env := do(t, http.MethodPost, ts.URL+"/api/v1/sessions", "bob",
		`{"session_type":"flashcards","words_studied":10,"correct_answers":8,"incorrect_answers":2,"category":"travel","duration_seconds":95}`)
	require.Equal(t, http.StatusCreated, status)
	var sess models.StudySession
	decodeData(t, env, &sess)
	assert.Equal(t, "bob", sess.UserID)
	assert.Equal(t, models.SessionFlashcards, sess.SessionType)

	status, env = do(t, http.MethodPost, ts.URL+"/api/v1/sessions", "bob", `{"session_type":"exam"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Error.Message, "session_type must be one of")

	status, env = do(t, http.MethodGet, ts.URL+"/api/v1/sessions", "bob", "")
	require.Equal(t, http.StatusOK, status)
	var list struct {
		Sessions []models.StudySession `json:"sessions"`
		Total    int                   `json:"total"`
	}
	decodeData(t, env, &list)
	assert.Equal(t, 1, list.Total)

	status, env = do(t, http.MethodGet, ts.URL+"/api/v1/progress/stats", "bob", "")
	require.Equal(t, http.StatusOK, status)
	var stats models.Stats
	decodeData(t, env, &stats)
	assert.Equal(t, 1, stats.TotalSessions)
}

func TestCORS(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/v1/progress/stats", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	req.Header.Set("Access-Control-Request-Headers", UserIDHeader)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.NotEmpty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}
