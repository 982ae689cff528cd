package models

import "time"

// SessionType identifies the study mode of a session
type SessionType string

const (
	SessionFlashcards SessionType = "flashcards"
	SessionQuiz       SessionType = "quiz"
)

// StudySession is a summary of one completed study session
type StudySession struct {
	ID               string      `json:"id" db:"id"`
	UserID           string      `json:"user_id" db:"user_id"`
	SessionType      SessionType `json:"session_type" db:"session_type"`
	WordsStudied     int         `json:"words_studied" db:"words_studied"`
	CorrectAnswers   int         `json:"correct_answers" db:"correct_answers"`
	IncorrectAnswers int         `json:"incorrect_answers" db:"incorrect_answers"`
	Category         string      `json:"category" db:"category"`
	DurationSeconds  int         `json:"duration_seconds" db:"duration_seconds"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
}

// CreateSessionRequest represents a session log request
type CreateSessionRequest struct {
	SessionType      SessionType `json:"session_type" validate:"required,oneof=flashcards quiz"`
	WordsStudied     int         `json:"words_studied" validate:"gte=0"`
	CorrectAnswers   int         `json:"correct_answers" validate:"gte=0"`
	IncorrectAnswers int         `json:"incorrect_answers" validate:"gte=0"`
	Category         string      `json:"category"`
	DurationSeconds  int         `json:"duration_seconds" validate:"gte=0"`
}
