package models

import "time"

// MasteryLevel is the learning stage of one word for one user
type MasteryLevel int

const (
	MasteryNew      MasteryLevel = 0
	MasteryLearning MasteryLevel = 1
	MasteryFamiliar MasteryLevel = 2
	MasteryMastered MasteryLevel = 3
)

// String returns the stage name
func (l MasteryLevel) String() string {
	switch l {
	case MasteryNew:
		return "new"
	case MasteryLearning:
		return "learning"
	case MasteryFamiliar:
		return "familiar"
	case MasteryMastered:
		return "mastered"
	default:
		return "unknown"
	}
}

// ProgressRecord tracks a user's answers for a single word.
// At most one record exists per (WordID, UserID).
type ProgressRecord struct {
	ID             string       `json:"id" db:"id"`
	WordID         string       `json:"word_id" db:"word_id"`
	UserID         string       `json:"user_id" db:"user_id"`
	CorrectCount   int          `json:"correct_count" db:"correct_count"`
	IncorrectCount int          `json:"incorrect_count" db:"incorrect_count"`
	MasteryLevel   MasteryLevel `json:"mastery_level" db:"mastery_level"`
	LastStudied    time.Time    `json:"last_studied" db:"last_studied"`
}

// Total returns the number of recorded answers
func (p *ProgressRecord) Total() int {
	return p.CorrectCount + p.IncorrectCount
}

// Accuracy returns the share of correct answers in [0, 1] (0 when nothing recorded)
func (p *ProgressRecord) Accuracy() float64 {
	total := p.Total()
	if total == 0 {
		return 0
	}
	return float64(p.CorrectCount) / float64(total)
}

// UpdateProgressRequest represents an answer submission body
type UpdateProgressRequest struct {
	WordID    string `json:"word_id" validate:"required"`
	IsCorrect *bool  `json:"is_correct" validate:"required"`
}
