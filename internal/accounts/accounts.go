package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/qcm/internal/auth"
	"github.com/shrimpsizemoose/qcm/internal/models"
	"github.com/shrimpsizemoose/qcm/internal/store"
)

var (
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrInvalidRegistration = errors.New("invalid registration")
)

// StudentStore is the part of the quiz store the credential store needs.
type StudentStore interface {
	CreateStudent(ctx context.Context, email, passwordHash string, createdAt time.Time) (int64, error)
	GetStudentByEmail(ctx context.Context, email string) (*models.Student, error)
}

type Accounts struct {
	store    StudentStore
	validate *validator.Validate
	now      func() time.Time
}

func New(store StudentStore) *Accounts {
	return &Accounts{
		store:    store,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Register creates a student account. confirm must equal password.
func (a *Accounts) Register(ctx context.Context, email, password, confirm string) (int64, error) {
	email = strings.TrimSpace(email)
	if password != confirm {
		return 0, ErrPasswordMismatch
	}
	if err := a.validate.Var(email, "required,email,max=254"); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidRegistration, err)
	}

	existing, err := a.store.GetStudentByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, ErrDuplicateEmail
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := a.store.CreateStudent(ctx, email, hash, a.now())
	if errors.Is(err, store.ErrDuplicate) {
		return 0, ErrDuplicateEmail
	}
	if err != nil {
		return 0, err
	}

	logger.Info.Printf("Registered student %d", id)
	return id, nil
}

// Authenticate returns the student matching email and password. Unknown
// emails and wrong passwords fail the same way.
func (a *Accounts) Authenticate(ctx context.Context, email, password string) (*models.Student, error) {
	student, err := a.store.GetStudentByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if student == nil || !auth.VerifyPassword(password, student.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return student, nil
}
