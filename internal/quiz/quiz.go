package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/qcm/internal/metrics"
	"github.com/shrimpsizemoose/qcm/internal/models"
	"github.com/shrimpsizemoose/qcm/internal/scoring"
	"github.com/shrimpsizemoose/qcm/internal/store"
)

var (
	ErrInvalidChapter        = errors.New("invalid chapter")
	ErrNoQuestionsForChapter = errors.New("no questions for chapter")
	ErrAttemptNotFound       = errors.New("attempt not found")
)

// Store is the part of store.QuizStore the quiz flow uses.
type Store interface {
	ListQuestions(ctx context.Context, chapter int) ([]models.Question, error)
	WithAttemptTx(ctx context.Context, fn func(store.AttemptWriter) error) error
	ListAttempts(ctx context.Context, studentID int64) ([]models.RankedAttempt, error)
	GetAttempt(ctx context.Context, attemptID, studentID int64) (*models.Attempt, error)
	ListResponseDetails(ctx context.Context, attemptID int64) ([]models.ResponseDetail, error)
}

type Service struct {
	store    Store
	chapters int
	now      func() time.Time
}

func NewService(s Store, chapters int) *Service {
	return &Service{
		store:    s,
		chapters: chapters,
		now:      time.Now,
	}
}

type AttemptResult struct {
	AttemptID int64
	Chapter   int
	Score     int
	Correct   int
	Total     int
}

type History struct {
	BestPerChapter map[int]models.RankedAttempt
	Attempts       []models.RankedAttempt
}

type ResultDetail struct {
	Attempt   models.Attempt
	Responses []models.ResponseDetail
	Tier      scoring.Tier
}

func (s *Service) Chapters() int {
	return s.chapters
}

func (s *Service) validChapter(chapter int) bool {
	return chapter >= 1 && chapter <= s.chapters
}

// Questions returns the chapter's questions in insertion order.
func (s *Service) Questions(ctx context.Context, chapter int) ([]models.Question, error) {
	if !s.validChapter(chapter) {
		return nil, ErrInvalidChapter
	}
	questions, err := s.store.ListQuestions(ctx, chapter)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestionsForChapter
	}
	return questions, nil
}

// Submit grades answers (question id -> submitted letter) against the
// chapter's key and records the attempt with its responses in one
// transaction. Questions missing from answers count as unanswered.
func (s *Service) Submit(ctx context.Context, studentID int64, chapter int, answers map[int64]string) (*AttemptResult, error) {
	questions, err := s.store.ListQuestions(ctx, chapter)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestionsForChapter
	}

	result := &AttemptResult{Chapter: chapter, Total: len(questions)}

	err = s.store.WithAttemptTx(ctx, func(w store.AttemptWriter) error {
		attemptID, err := w.CreateAttempt(ctx, &models.Attempt{
			StudentID:      studentID,
			Chapter:        chapter,
			TotalQuestions: len(questions),
			SubmittedAt:    s.now(),
		})
		if err != nil {
			return err
		}
		result.AttemptID = attemptID

		correct := 0
		for i := range questions {
			response := scoring.GradeQuestion(attemptID, &questions[i], answers[questions[i].ID])
			if response.IsCorrect {
				correct++
			}
			inserted, err := w.InsertResponse(ctx, &response)
			if err != nil {
				return err
			}
			if !inserted {
				logger.Debug.Printf("Duplicate response for attempt %d question %d ignored", attemptID, response.QuestionID)
			}
		}

		result.Correct = correct
		result.Score = scoring.Percentage(correct, len(questions))
		return w.SetAttemptScore(ctx, attemptID, result.Score)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record attempt: %w", err)
	}

	metrics.QuizSubmissionsTotal.WithLabelValues(fmt.Sprint(chapter)).Inc()
	metrics.QuizScoreHistogram.WithLabelValues(fmt.Sprint(chapter)).Observe(float64(result.Score))

	logger.Info.Printf("Student %d scored %d on chapter %d (attempt %d)", studentID, result.Score, chapter, result.AttemptID)
	return result, nil
}

// History lists every attempt of the student, by chapter then most recent
// first, together with the best attempt per chapter.
func (s *Service) History(ctx context.Context, studentID int64) (*History, error) {
	attempts, err := s.store.ListAttempts(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return &History{
		BestPerChapter: scoring.BestPerChapter(attempts),
		Attempts:       attempts,
	}, nil
}

// Result returns the review of an attempt owned by studentID. Attempts of
// other students are reported as ErrAttemptNotFound.
func (s *Service) Result(ctx context.Context, studentID, attemptID int64) (*ResultDetail, error) {
	attempt, err := s.store.GetAttempt(ctx, attemptID, studentID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, ErrAttemptNotFound
	}

	responses, err := s.store.ListResponseDetails(ctx, attempt.ID)
	if err != nil {
		return nil, err
	}

	return &ResultDetail{
		Attempt:   *attempt,
		Responses: responses,
		Tier:      scoring.Encouragement(attempt.Score),
	}, nil
}
