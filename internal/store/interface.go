package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/qcm/internal/models"
)

//go:embed migrations/*.sql
var Migrations embed.FS

type QuizStore interface {
	Close() error
	Ping(ctx context.Context) error
	ApplyMigrations() error

	CreateStudent(ctx context.Context, email, passwordHash string, createdAt time.Time) (int64, error)
	GetStudentByEmail(ctx context.Context, email string) (*models.Student, error)

	SeedChapter(ctx context.Context, chapter int, questions []models.Question) (bool, error)
	ListQuestions(ctx context.Context, chapter int) ([]models.Question, error)

	WithAttemptTx(ctx context.Context, fn func(AttemptWriter) error) error
	ListAttempts(ctx context.Context, studentID int64) ([]models.RankedAttempt, error)
	GetAttempt(ctx context.Context, attemptID, studentID int64) (*models.Attempt, error)
	ListResponseDetails(ctx context.Context, attemptID int64) ([]models.ResponseDetail, error)
}

// AttemptWriter is the write side of a quiz submission. All calls share one
// transaction.
type AttemptWriter interface {
	CreateAttempt(ctx context.Context, attempt *models.Attempt) (int64, error)
	// InsertResponse reports false when a response for the same
	// (attempt, question) pair already exists.
	InsertResponse(ctx context.Context, response *models.Response) (bool, error)
	SetAttemptScore(ctx context.Context, attemptID int64, score int) error
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

func (s *BaseStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// ApplyMigrations applies SQL migrations from fsys in file name order,
// translating dialect if needed
func (s *BaseStore) ApplyMigrations(fsys fs.FS, translateSQL func(string) string) error {
	files, err := fs.Glob(fsys, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := fs.ReadFile(fsys, file)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		logger.Debug.Printf("Applying migration: %s", file)
		for _, stmt := range strings.Split(sql, ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if _, err := s.DB.Exec(stmt); err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", file, err)
			}
		}
	}

	return nil
}

func (s *BaseStore) CreateStudent(ctx context.Context, email, passwordHash string, createdAt time.Time) (int64, error) {
	var id int64
	query := s.Converter(`
		INSERT INTO students (email, password_hash, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (email) DO NOTHING
		RETURNING id
	`)
	err := s.DB.GetContext(ctx, &id, query, email, passwordHash, createdAt.UTC().Truncate(time.Second))
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrDuplicate
	}
	if err != nil {
		return 0, fmt.Errorf("failed to create student: %w", err)
	}
	return id, nil
}

func (s *BaseStore) GetStudentByEmail(ctx context.Context, email string) (*models.Student, error) {
	var student models.Student
	query := s.Converter(`
		SELECT id, email, password_hash, created_at
		FROM students
		WHERE email = ?
	`)
	err := s.DB.GetContext(ctx, &student, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &student, nil
}

// SeedChapter inserts questions for chapter unless the chapter already has
// at least one question. It reports whether anything was inserted.
func (s *BaseStore) SeedChapter(ctx context.Context, chapter int, questions []models.Question) (bool, error) {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	var existing int
	err = tx.GetContext(ctx, &existing, tx.Rebind(`SELECT COUNT(*) FROM questions WHERE chapter = ?`), chapter)
	if err != nil {
		return false, fmt.Errorf("failed to count chapter %d questions: %w", chapter, err)
	}
	if existing > 0 {
		return false, nil
	}

	for i := range questions {
		q := questions[i]
		q.Chapter = chapter
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO questions (chapter, prompt, option_a, option_b, option_c, option_d, answer, points)
			VALUES (:chapter, :prompt, :option_a, :option_b, :option_c, :option_d, :answer, :points)
		`, &q)
		if err != nil {
			return false, fmt.Errorf("failed to insert chapter %d question %d: %w", chapter, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit chapter %d seed: %w", chapter, err)
	}
	return true, nil
}

func (s *BaseStore) ListQuestions(ctx context.Context, chapter int) ([]models.Question, error) {
	var questions []models.Question
	query := s.Converter(`
		SELECT id, chapter, prompt, option_a, option_b, option_c, option_d, answer, points
		FROM questions
		WHERE chapter = ?
		ORDER BY id
	`)
	if err := s.DB.SelectContext(ctx, &questions, query, chapter); err != nil {
		return nil, fmt.Errorf("failed to list chapter %d questions: %w", chapter, err)
	}
	return questions, nil
}

func (s *BaseStore) WithAttemptTx(ctx context.Context, fn func(AttemptWriter) error) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin attempt transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&attemptTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit attempt: %w", err)
	}
	return nil
}

func (s *BaseStore) ListAttempts(ctx context.Context, studentID int64) ([]models.RankedAttempt, error) {
	var attempts []models.RankedAttempt
	query := s.Converter(`
		SELECT
			id,
			student_id,
			chapter,
			score,
			total_questions,
			submitted_at,
			ROW_NUMBER() OVER (
				PARTITION BY chapter
				ORDER BY score DESC, submitted_at DESC, id DESC
			) AS chapter_rank
		FROM attempts
		WHERE student_id = ?
		ORDER BY chapter, submitted_at DESC, id DESC
	`)
	if err := s.DB.SelectContext(ctx, &attempts, query, studentID); err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return attempts, nil
}

func (s *BaseStore) GetAttempt(ctx context.Context, attemptID, studentID int64) (*models.Attempt, error) {
	var attempt models.Attempt
	query := s.Converter(`
		SELECT id, student_id, chapter, score, total_questions, submitted_at
		FROM attempts
		WHERE id = ?
		AND student_id = ?
	`)
	err := s.DB.GetContext(ctx, &attempt, query, attemptID, studentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return &attempt, nil
}

func (s *BaseStore) ListResponseDetails(ctx context.Context, attemptID int64) ([]models.ResponseDetail, error) {
	var details []models.ResponseDetail
	query := s.Converter(`
		SELECT
			r.question_id,
			r.selected,
			r.is_correct,
			q.prompt,
			q.option_a,
			q.option_b,
			q.option_c,
			q.option_d,
			q.answer
		FROM responses r
		JOIN questions q ON q.id = r.question_id
		WHERE r.attempt_id = ?
		ORDER BY q.id
	`)
	if err := s.DB.SelectContext(ctx, &details, query, attemptID); err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	return details, nil
}

type attemptTx struct {
	tx *sqlx.Tx
}

func (t *attemptTx) CreateAttempt(ctx context.Context, attempt *models.Attempt) (int64, error) {
	var id int64
	query := t.tx.Rebind(`
		INSERT INTO attempts (student_id, chapter, score, total_questions, submitted_at)
		VALUES (?, ?, 0, ?, ?)
		RETURNING id
	`)
	err := t.tx.GetContext(ctx, &id, query,
		attempt.StudentID,
		attempt.Chapter,
		attempt.TotalQuestions,
		attempt.SubmittedAt.UTC().Truncate(time.Second),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create attempt: %w", err)
	}
	return id, nil
}

func (t *attemptTx) InsertResponse(ctx context.Context, response *models.Response) (bool, error) {
	res, err := t.tx.NamedExecContext(ctx, `
		INSERT INTO responses (attempt_id, question_id, selected, is_correct)
		VALUES (:attempt_id, :question_id, :selected, :is_correct)
		ON CONFLICT (attempt_id, question_id) DO NOTHING
	`, response)
	if err != nil {
		return false, fmt.Errorf("failed to insert response: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read inserted rows: %w", err)
	}
	return n > 0, nil
}

func (t *attemptTx) SetAttemptScore(ctx context.Context, attemptID int64, score int) error {
	_, err := t.tx.ExecContext(ctx, t.tx.Rebind(`UPDATE attempts SET score = ? WHERE id = ?`), score, attemptID)
	if err != nil {
		return fmt.Errorf("failed to update attempt score: %w", err)
	}
	return nil
}
