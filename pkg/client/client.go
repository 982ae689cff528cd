package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/terra-clan/vocab-trainer/internal/models"
)

// Client is a Go SDK for the vocab-trainer API
type Client struct {
	baseURL    string
	userID     string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new client acting on behalf of userID.
// userID may be empty for catalog-only use.
func NewClient(baseURL, userID string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		userID:  userID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is returned for non-2xx responses
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s - %s", e.StatusCode, e.Code, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// WordQuery contains catalog filters
type WordQuery struct {
	Category   string
	Difficulty int
}

// ListWords retrieves catalog words
func (c *Client) ListWords(ctx context.Context, q WordQuery) ([]*models.Word, error) {
	params := url.Values{}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.Difficulty > 0 {
		params.Set("difficulty", strconv.Itoa(q.Difficulty))
	}

	var data struct {
		Words []*models.Word `json:"words"`
	}
	if err := c.call(ctx, http.MethodGet, withQuery("/api/v1/words", params), nil, &data); err != nil {
		return nil, err
	}

	return data.Words, nil
}

// Categories retrieves the distinct catalog categories
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var data struct {
		Categories []string `json:"categories"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/words/categories", nil, &data); err != nil {
		return nil, err
	}

	return data.Categories, nil
}

// RandomWords retrieves words for a flashcard round; count 0 uses the server default
func (c *Client) RandomWords(ctx context.Context, category string, count int) ([]*models.Word, error) {
	params := url.Values{}
	if category != "" {
		params.Set("category", category)
	}
	if count > 0 {
		params.Set("count", strconv.Itoa(count))
	}

	var data struct {
		Words []*models.Word `json:"words"`
	}
	if err := c.call(ctx, http.MethodGet, withQuery("/api/v1/words/random", params), nil, &data); err != nil {
		return nil, err
	}

	return data.Words, nil
}

// CreateWord adds a word to the catalog
func (c *Client) CreateWord(ctx context.Context, req models.CreateWordRequest) (*models.Word, error) {
	var word models.Word
	if err := c.call(ctx, http.MethodPost, "/api/v1/words", req, &word); err != nil {
		return nil, err
	}

	return &word, nil
}

// GetWord retrieves a word by ID
func (c *Client) GetWord(ctx context.Context, id string) (*models.Word, error) {
	var word models.Word
	if err := c.call(ctx, http.MethodGet, "/api/v1/words/"+url.PathEscape(id), nil, &word); err != nil {
		return nil, err
	}

	return &word, nil
}

// MultipleChoiceQuiz requests count questions; count 0 uses the server default
func (c *Client) MultipleChoiceQuiz(ctx context.Context, category string, count int) ([]models.QuizQuestion, error) {
	params := url.Values{}
	if category != "" {
		params.Set("category", category)
	}
	if count > 0 {
		params.Set("count", strconv.Itoa(count))
	}

	var data struct {
		Questions []models.QuizQuestion `json:"questions"`
	}
	if err := c.call(ctx, http.MethodGet, withQuery("/api/v1/quiz/multiple-choice", params), nil, &data); err != nil {
		return nil, err
	}

	return data.Questions, nil
}

// UpdateProgress records one answer for a word
func (c *Client) UpdateProgress(ctx context.Context, wordID string, correct bool) (*models.ProgressRecord, error) {
	req := models.UpdateProgressRequest{WordID: wordID, IsCorrect: &correct}

	var data struct {
		Progress *models.ProgressRecord `json:"progress"`
	}
	if err := c.call(ctx, http.MethodPost, "/api/v1/progress/update", req, &data); err != nil {
		return nil, err
	}

	return data.Progress, nil
}

// Progress retrieves the caller's progress records
func (c *Client) Progress(ctx context.Context) ([]*models.ProgressRecord, error) {
	var data struct {
		Progress []*models.ProgressRecord `json:"progress"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/progress", nil, &data); err != nil {
		return nil, err
	}

	return data.Progress, nil
}

// Stats retrieves the caller's study summary
func (c *Client) Stats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	if err := c.call(ctx, http.MethodGet, "/api/v1/progress/stats", nil, &stats); err != nil {
		return nil, err
	}

	return &stats, nil
}

// CreateSession logs a completed study session
func (c *Client) CreateSession(ctx context.Context, req models.CreateSessionRequest) (*models.StudySession, error) {
	var session models.StudySession
	if err := c.call(ctx, http.MethodPost, "/api/v1/sessions", req, &session); err != nil {
		return nil, err
	}

	return &session, nil
}

// ListSessions retrieves the caller's session log
func (c *Client) ListSessions(ctx context.Context) ([]*models.StudySession, error) {
	var data struct {
		Sessions []*models.StudySession `json:"sessions"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/sessions", nil, &data); err != nil {
		return nil, err
	}

	return data.Sessions, nil
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/health", nil, nil)
}

// Ready checks if the service and its dependencies are ready
func (c *Client) Ready(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/ready", nil, nil)
}

// call performs a request and decodes the envelope data into dst
func (c *Client) call(ctx context.Context, method, path string, in, dst interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	resp, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	if dst == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(resp, &env); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if err := json.Unmarshal(env.Data, dst); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	return nil
}

// doRequest performs an HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
		var env envelope
		if json.Unmarshal(respBody, &env) == nil && env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return nil, apiErr
	}

	return respBody, nil
}

func withQuery(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}
