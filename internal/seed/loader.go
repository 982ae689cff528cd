// Package seed loads word lists and fills an empty catalog.
package seed

import (
	"bytes"
	_ "embed"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/terra-clan/vocab-trainer/internal/models"
)

//go:embed words.yaml
var defaultWords []byte

// Target is a word store that can be seeded
type Target interface {
	CountWords(ctx context.Context) (int, error)
	InsertWords(ctx context.Context, words []*models.Word) error
}

type wordFile struct {
	Words []*models.Word `yaml:"words"`
}

var validate = validator.New()

// Default returns the built-in sample catalog
func Default() ([]*models.Word, error) {
	return Parse(defaultWords)
}

// LoadFile reads a word list from a YAML file
func LoadFile(path string) ([]*models.Word, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a YAML word list and prepares it for insertion
func Parse(data []byte) ([]*models.Word, error) {
	var file wordFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return Prepare(file.Words, time.Now().UTC())
}

// Prepare trims and validates words, applies the default difficulty and
// assigns fresh IDs. CreatedAt values increase in list order starting at now,
// so catalog listings keep the source order.
func Prepare(words []*models.Word, now time.Time) ([]*models.Word, error) {
	prepared := make([]*models.Word, 0, len(words))

	for i, w := range words {
		if w == nil {
			continue
		}

		word := *w
		word.English = strings.TrimSpace(word.English)
		word.Russian = strings.TrimSpace(word.Russian)
		word.Category = strings.ToLower(strings.TrimSpace(word.Category))
		if word.Difficulty == 0 {
			word.Difficulty = models.DifficultyEasy
		}
		word.Phonetic = nonEmpty(word.Phonetic)
		word.Example = nonEmpty(word.Example)

		req := models.CreateWordRequest{
			English:    word.English,
			Russian:    word.Russian,
			Category:   word.Category,
			Difficulty: word.Difficulty,
		}
		if err := validate.Struct(req); err != nil {
			return nil, fmt.Errorf("invalid word #%d (%q): %w", i+1, word.English, err)
		}

		word.ID = uuid.New().String()
		word.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		prepared = append(prepared, &word)
	}

	return prepared, nil
}

// Run inserts words into target when it holds no words yet.
// It reports how many words were inserted.
func Run(ctx context.Context, target Target, words []*models.Word) (int, error) {
	count, err := target.CountWords(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count words: %w", err)
	}

	if count > 0 {
		slog.Debug("catalog already populated, skipping seed", "count", count)
		return 0, nil
	}

	if len(words) == 0 {
		return 0, errors.New("no words to seed")
	}

	if err := target.InsertWords(ctx, words); err != nil {
		return 0, fmt.Errorf("failed to seed words: %w", err)
	}

	slog.Info("catalog seeded", "count", len(words))
	return len(words), nil
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
