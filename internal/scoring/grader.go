// internal/scoring/grader.go
package scoring

import (
	"strings"

	"github.com/shrimpsizemoose/qcm/internal/models"
)

// NormalizeLetter upper-cases a submitted option and maps anything outside
// A-D to models.NoAnswer. Surrounding whitespace is not stripped.
func NormalizeLetter(submitted string) string {
	letter := strings.ToUpper(submitted)
	for _, l := range models.Letters {
		if letter == l {
			return letter
		}
	}
	return models.NoAnswer
}

// GradeQuestion builds the response for one question of attempt attemptID.
func GradeQuestion(attemptID int64, q *models.Question, submitted string) models.Response {
	selected := NormalizeLetter(submitted)
	return models.Response{
		AttemptID:  attemptID,
		QuestionID: q.ID,
		Selected:   selected,
		IsCorrect:  selected == q.Answer,
	}
}

// Percentage truncates: 2 of 3 is 66.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return correct * 100 / total
}
