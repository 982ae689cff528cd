package study

import (
	"fmt"

	"github.com/terra-clan/vocab-trainer/internal/models"
)

const (
	// OptionsPerQuestion is the number of answer choices in every question
	OptionsPerQuestion = 4

	distractorsPerQuestion = OptionsPerQuestion - 1
)

// Generator builds multiple-choice quizzes from a filtered word set
type Generator struct {
	rnd Random
}

// NewGenerator creates a quiz generator. A nil rnd uses the global random source.
func NewGenerator(rnd Random) *Generator {
	if rnd == nil {
		rnd = globalRandom{}
	}
	return &Generator{rnd: rnd}
}

// Generate draws count distinct prompt words from words and builds one question per word.
// Each question carries the prompt's translation and three translations of other words
// from the same set, in shuffled order.
func (g *Generator) Generate(words []*models.Word, count int) ([]models.QuizQuestion, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: question count must not be negative, got %d", ErrInvalidArgument, count)
	}

	if len(words) < count {
		return nil, fmt.Errorf("%w: need %d words for quiz, have %d", ErrInsufficientData, count, len(words))
	}

	if count == 0 {
		return []models.QuizQuestion{}, nil
	}

	if len(words) < OptionsPerQuestion {
		return nil, fmt.Errorf("%w: need at least %d words to build answer options, have %d",
			ErrInsufficientData, OptionsPerQuestion, len(words))
	}

	questions := make([]models.QuizQuestion, 0, count)
	for _, idx := range g.sample(len(words), count) {
		q, err := g.buildQuestion(words, words[idx])
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}

	return questions, nil
}

// buildQuestion picks distractors for word and shuffles the options
func (g *Generator) buildQuestion(words []*models.Word, word *models.Word) (models.QuizQuestion, error) {
	pool := make([]*models.Word, 0, len(words)-1)
	for _, w := range words {
		if w.ID != word.ID {
			pool = append(pool, w)
		}
	}

	if len(pool) < distractorsPerQuestion {
		return models.QuizQuestion{}, fmt.Errorf("%w: word %s has %d distractor candidates, need %d",
			ErrInsufficientData, word.ID, len(pool), distractorsPerQuestion)
	}

	options := make([]models.QuizOption, 0, OptionsPerQuestion)
	options = append(options, models.QuizOption{Text: word.Russian, Correct: true, WordID: word.ID})
	for _, idx := range g.sample(len(pool), distractorsPerQuestion) {
		options = append(options, models.QuizOption{Text: pool[idx].Russian, WordID: pool[idx].ID})
	}

	g.rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return models.QuizQuestion{
		ID:       word.ID,
		English:  word.English,
		Phonetic: word.Phonetic,
		Options:  options,
	}, nil
}

// sample returns k distinct indices drawn uniformly from [0, n) (partial Fisher-Yates)
func (g *Generator) sample(n, k int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	for i := 0; i < k; i++ {
		j := i + g.rnd.IntN(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}

	return idx[:k]
}
