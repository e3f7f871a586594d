package models

import (
	"github.com/go-playground/validator/v10"
)

// NoAnswer is recorded for unanswered or invalid selections. It never equals
// a real answer key.
const NoAnswer = "X"

var Letters = []string{"A", "B", "C", "D"}

type Question struct {
	ID      int64  `db:"id" json:"id"`
	Chapter int    `db:"chapter" json:"chapter" validate:"min=1"`
	Prompt  string `db:"prompt" json:"prompt" toml:"prompt" validate:"required"`
	OptionA string `db:"option_a" json:"option_a" toml:"a" validate:"required"`
	OptionB string `db:"option_b" json:"option_b" toml:"b" validate:"required"`
	OptionC string `db:"option_c" json:"option_c" toml:"c" validate:"required"`
	OptionD string `db:"option_d" json:"option_d" toml:"d" validate:"required"`
	Answer  string `db:"answer" json:"-" toml:"answer" validate:"required,oneof=A B C D"`
	Points  int    `db:"points" json:"points" toml:"points" validate:"min=0"`
}

// Option returns the text of the option labelled by letter, or "" for
// anything outside A-D.
func (q *Question) Option(letter string) string {
	switch letter {
	case "A":
		return q.OptionA
	case "B":
		return q.OptionB
	case "C":
		return q.OptionC
	case "D":
		return q.OptionD
	}
	return ""
}

func (q *Question) Validate() error {
	validate := validator.New()
	return validate.Struct(q)
}
