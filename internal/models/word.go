package models

import "time"

// Difficulty bounds for catalog words (1=easy, 2=medium, 3=hard)
const (
	DifficultyEasy   = 1
	DifficultyMedium = 2
	DifficultyHard   = 3
)

// Word represents a bilingual catalog entry
type Word struct {
	ID         string    `json:"id" db:"id" yaml:"-"`
	English    string    `json:"english" db:"english" yaml:"english"`
	Russian    string    `json:"russian" db:"russian" yaml:"russian"`
	Category   string    `json:"category" db:"category" yaml:"category"`
	Difficulty int       `json:"difficulty" db:"difficulty" yaml:"difficulty"`
	Phonetic   *string   `json:"phonetic" db:"phonetic" yaml:"phonetic,omitempty"`
	Example    *string   `json:"example" db:"example" yaml:"example,omitempty"`
	CreatedAt  time.Time `json:"created_at" db:"created_at" yaml:"-"`
}

// PhoneticText returns the phonetic transcription or an empty string
func (w *Word) PhoneticText() string {
	if w.Phonetic == nil {
		return ""
	}
	return *w.Phonetic
}

// CreateWordRequest represents a catalog insert request
type CreateWordRequest struct {
	English    string  `json:"english" validate:"required"`
	Russian    string  `json:"russian" validate:"required"`
	Category   string  `json:"category" validate:"required"`
	Difficulty int     `json:"difficulty" validate:"omitempty,min=1,max=3"`
	Phonetic   *string `json:"phonetic,omitempty"`
	Example    *string `json:"example,omitempty"`
}

// WordFilter contains filters for catalog queries.
// Zero values mean "no constraint".
type WordFilter struct {
	Category   string
	Difficulty int
	Limit      int
}
