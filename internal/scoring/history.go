package scoring

import "github.com/shrimpsizemoose/qcm/internal/models"

// BestPerChapter keeps, per chapter, the first attempt in scan order with
// the highest score. A later attempt replaces the kept one only when its
// score is strictly greater.
func BestPerChapter(attempts []models.RankedAttempt) map[int]models.RankedAttempt {
	best := make(map[int]models.RankedAttempt)
	for _, a := range attempts {
		kept, ok := best[a.Chapter]
		if !ok || a.Score > kept.Score {
			best[a.Chapter] = a
		}
	}
	return best
}
