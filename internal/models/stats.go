package models

// Stats is the aggregate study summary of one user
type Stats struct {
	TotalWordsStudied int     `json:"total_words_studied"`
	MasteredWords     int     `json:"mastered_words"`
	FamiliarWords     int     `json:"familiar_words"`
	LearningWords     int     `json:"learning_words"`
	Accuracy          float64 `json:"accuracy"`
	TotalSessions     int     `json:"total_sessions"`
	TotalCorrect      int     `json:"total_correct"`
	TotalIncorrect    int     `json:"total_incorrect"`
}
