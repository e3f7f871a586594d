package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

type Student struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email" validate:"required,email,max=254"`
	PasswordHash string    `db:"password_hash" json:"-" validate:"required"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

func (s *Student) Validate() error {
	validate := validator.New()
	return validate.Struct(s)
}
