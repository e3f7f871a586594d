package models

import "time"

type Attempt struct {
	ID             int64     `db:"id" json:"id"`
	StudentID      int64     `db:"student_id" json:"student_id"`
	Chapter        int       `db:"chapter" json:"chapter"`
	Score          int       `db:"score" json:"score"`
	TotalQuestions int       `db:"total_questions" json:"total_questions"`
	SubmittedAt    time.Time `db:"submitted_at" json:"submitted_at"`
}

// RankedAttempt is an attempt tagged with its position inside its chapter,
// ordered by score then recency.
type RankedAttempt struct {
	Attempt
	Rank int `db:"chapter_rank" json:"rank"`
}

type Response struct {
	ID         int64  `db:"id" json:"id"`
	AttemptID  int64  `db:"attempt_id" json:"attempt_id"`
	QuestionID int64  `db:"question_id" json:"question_id"`
	Selected   string `db:"selected" json:"selected"`
	IsCorrect  bool   `db:"is_correct" json:"is_correct"`
}

// ResponseDetail joins a response with the question it answers.
type ResponseDetail struct {
	QuestionID int64  `db:"question_id" json:"question_id"`
	Selected   string `db:"selected" json:"selected"`
	IsCorrect  bool   `db:"is_correct" json:"is_correct"`
	Prompt     string `db:"prompt" json:"prompt"`
	OptionA    string `db:"option_a" json:"option_a"`
	OptionB    string `db:"option_b" json:"option_b"`
	OptionC    string `db:"option_c" json:"option_c"`
	OptionD    string `db:"option_d" json:"option_d"`
	Answer     string `db:"answer" json:"answer"`
}

func (d *ResponseDetail) Option(letter string) string {
	q := Question{OptionA: d.OptionA, OptionB: d.OptionB, OptionC: d.OptionC, OptionD: d.OptionD}
	return q.Option(letter)
}
