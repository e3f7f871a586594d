package questionbank

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/qcm/internal/models"
)

const DefaultPoints = 10

//go:embed bank.toml
var embeddedBank []byte

type Chapter struct {
	Number    int               `toml:"number" validate:"min=1"`
	Title     string            `toml:"title" validate:"required"`
	Summary   string            `toml:"summary"`
	Questions []models.Question `toml:"questions" validate:"min=1,dive"`
}

type Bank struct {
	Chapters []Chapter `toml:"chapters" validate:"min=1,dive"`
}

// Seeder is the part of the quiz store that seeding writes to.
type Seeder interface {
	SeedChapter(ctx context.Context, chapter int, questions []models.Question) (bool, error)
}

// Default returns the bank compiled into the binary.
func Default() (*Bank, error) {
	return Parse(embeddedBank)
}

// Load reads a bank from a TOML file on disk.
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Bank, error) {
	var bank Bank
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&bank); err != nil {
		return nil, fmt.Errorf("failed to decode question bank: %w", err)
	}

	seen := make(map[int]bool)
	for i := range bank.Chapters {
		ch := &bank.Chapters[i]
		if seen[ch.Number] {
			return nil, fmt.Errorf("chapter %d defined twice", ch.Number)
		}
		seen[ch.Number] = true

		for j := range ch.Questions {
			q := &ch.Questions[j]
			q.Chapter = ch.Number
			if q.Points == 0 {
				q.Points = DefaultPoints
			}
		}
	}

	if err := validator.New().Struct(&bank); err != nil {
		return nil, fmt.Errorf("invalid question bank: %w", err)
	}
	return &bank, nil
}

func (b *Bank) Chapter(number int) (*Chapter, bool) {
	for i := range b.Chapters {
		if b.Chapters[i].Number == number {
			return &b.Chapters[i], true
		}
	}
	return nil, false
}

// SeedAll seeds every chapter that has no questions yet. Running it again is
// a no-op. It returns the chapters that were actually inserted.
func (b *Bank) SeedAll(ctx context.Context, s Seeder) ([]int, error) {
	var seeded []int
	for _, ch := range b.Chapters {
		inserted, err := s.SeedChapter(ctx, ch.Number, ch.Questions)
		if err != nil {
			return seeded, fmt.Errorf("failed to seed chapter %d: %w", ch.Number, err)
		}
		if inserted {
			logger.Info.Printf("Seeded chapter %d with %d questions", ch.Number, len(ch.Questions))
			seeded = append(seeded, ch.Number)
		} else {
			logger.Debug.Printf("Chapter %d already seeded", ch.Number)
		}
	}
	return seeded, nil
}
