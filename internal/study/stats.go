package study

import (
	"math"

	"github.com/terra-clan/vocab-trainer/internal/models"
)

// Summarize aggregates a user's progress records and session log
func Summarize(progress []*models.ProgressRecord, sessions []*models.StudySession) models.Stats {
	var stats models.Stats

	for _, p := range progress {
		if p == nil {
			continue
		}

		stats.TotalWordsStudied++
		stats.TotalCorrect += p.CorrectCount
		stats.TotalIncorrect += p.IncorrectCount

		switch p.MasteryLevel {
		case models.MasteryMastered:
			stats.MasteredWords++
		case models.MasteryFamiliar:
			stats.FamiliarWords++
		case models.MasteryLearning:
			stats.LearningWords++
		}
	}

	if answered := stats.TotalCorrect + stats.TotalIncorrect; answered > 0 {
		// percentage rounded to one decimal place
		stats.Accuracy = math.Round(float64(stats.TotalCorrect)*1000/float64(answered)) / 10
	}

	stats.TotalSessions = len(sessions)

	return stats
}
