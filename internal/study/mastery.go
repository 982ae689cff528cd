package study

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/vocab-trainer/internal/models"
)

// Classification thresholds. Accuracies are compared as integer percentages
// so 4/5 and 3/5 land exactly on the boundaries.
const (
	minClassifiedAnswers = 3
	masteredPercent      = 80
	familiarPercent      = 60
)

// Answer is one answer event for a word
type Answer struct {
	WordID  string
	UserID  string
	Correct bool
	At      time.Time
}

// LevelFor derives the mastery level from the answer counters alone
func LevelFor(correct, incorrect int) models.MasteryLevel {
	total := correct + incorrect
	if total < minClassifiedAnswers {
		return models.MasteryLearning
	}

	switch {
	case correct*100 >= total*masteredPercent:
		return models.MasteryMastered
	case correct*100 >= total*familiarPercent:
		return models.MasteryFamiliar
	default:
		return models.MasteryLearning
	}
}

// Apply returns the progress record that results from applying answer to prior.
// prior may be nil for the first answer of a (word, user) pair; it is never modified.
// Levels are recomputed from the counters on every call, so they can go down.
func Apply(prior *models.ProgressRecord, answer Answer) (*models.ProgressRecord, error) {
	if answer.WordID == "" {
		return nil, fmt.Errorf("%w: word id is required", ErrInvalidArgument)
	}
	if answer.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}

	if prior == nil {
		rec := &models.ProgressRecord{
			ID:           uuid.New().String(),
			WordID:       answer.WordID,
			UserID:       answer.UserID,
			MasteryLevel: models.MasteryLearning,
			LastStudied:  answer.At,
		}
		if answer.Correct {
			rec.CorrectCount = 1
		} else {
			rec.IncorrectCount = 1
		}
		return rec, nil
	}

	if prior.WordID != answer.WordID || prior.UserID != answer.UserID {
		return nil, fmt.Errorf("%w: progress record %s/%s does not match answer %s/%s",
			ErrInvalidArgument, prior.WordID, prior.UserID, answer.WordID, answer.UserID)
	}

	rec := *prior
	if answer.Correct {
		rec.CorrectCount++
	} else {
		rec.IncorrectCount++
	}
	rec.MasteryLevel = LevelFor(rec.CorrectCount, rec.IncorrectCount)
	rec.LastStudied = answer.At

	return &rec, nil
}
