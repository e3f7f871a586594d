package app

import (
	"context"
	"fmt"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/qcm/internal/accounts"
	"github.com/shrimpsizemoose/qcm/internal/mailer"
	"github.com/shrimpsizemoose/qcm/internal/questionbank"
	"github.com/shrimpsizemoose/qcm/internal/quiz"
	"github.com/shrimpsizemoose/qcm/internal/session"
	"github.com/shrimpsizemoose/qcm/internal/store"
)

type Service struct {
	Config   *Config
	Store    store.QuizStore
	Bank     *questionbank.Bank
	Sessions session.Manager
	Mailer   mailer.Sender
	Accounts *accounts.Accounts
	Quiz     *quiz.Service
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewServiceFromConfig(context.Background(), config)
}

func NewServiceFromConfig(ctx context.Context, config *Config) (*Service, error) {
	bank, err := questionbank.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load question bank: %w", err)
	}

	st, err := NewStore(config.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	sessions, err := NewSessionManager(ctx, config)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to init sessions: %w", err)
	}

	return &Service{
		Config:   config,
		Store:    st,
		Bank:     bank,
		Sessions: sessions,
		Mailer:   NewMailer(config),
		Accounts: accounts.New(st),
		Quiz:     quiz.NewService(st, config.Quiz.Chapters),
	}, nil
}

func NewSessionManager(ctx context.Context, config *Config) (session.Manager, error) {
	if config.Session.RedisURL != "" {
		logger.Info.Println("Using redis session store")
		return session.NewRedisManager(ctx, config.Session.RedisURL, config.SessionTTL())
	}
	return session.NewJWTManager(config.Session.Secret, config.Session.Issuer, config.SessionTTL())
}

func NewMailer(config *Config) mailer.Sender {
	if config.SMTP.Host == "" {
		logger.Info.Println("SMTP host not configured, contact form is disabled")
		return mailer.DisabledSender{}
	}
	return mailer.NewSMTPSender(mailer.Config{
		Host:     config.SMTP.Host,
		Port:     config.SMTP.Port,
		Username: config.SMTP.Username,
		Password: config.SMTP.Password,
		From:     config.SMTP.From,
		To:       config.SMTP.To,
		SSL:      config.SMTP.SSL,
		Timeout:  config.SMTPTimeout(),
	})
}

// Initialize applies migrations and seeds the question bank. Both steps are
// idempotent.
func (s *Service) Initialize(ctx context.Context) error {
	if err := s.Store.ApplyMigrations(); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	if _, err := s.Bank.SeedAll(ctx, s.Store); err != nil {
		return err
	}
	return nil
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Sessions.Close(); err != nil {
		errs = append(errs, fmt.Errorf("sessions: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
