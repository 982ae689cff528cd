package models

// QuizOption is one answer choice of a multiple-choice question
type QuizOption struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`

	// WordID is the catalog word the option text was taken from
	WordID string `json:"-"`
}

// QuizQuestion is a generated multiple-choice question. Never persisted.
type QuizQuestion struct {
	ID       string       `json:"id"`
	English  string       `json:"english"`
	Phonetic *string      `json:"phonetic"`
	Options  []QuizOption `json:"options"`
}
