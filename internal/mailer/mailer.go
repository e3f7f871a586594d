package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"
	"github.com/wneessen/go-mail"

	"github.com/shrimpsizemoose/qcm/internal/models"
)

const subjectPrefix = "[Contact Site Python]"

// ErrDeliveryFailure hides transport details from callers.
var ErrDeliveryFailure = errors.New("contact message could not be delivered")

type Sender interface {
	SendContact(ctx context.Context, msg *models.ContactMessage) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
	SSL      bool
	Timeout  time.Duration
}

// Compose returns the subject and plain text body forwarded for msg.
func Compose(msg *models.ContactMessage) (string, string) {
	subject := fmt.Sprintf("%s %s", subjectPrefix, msg.Subject)
	body := fmt.Sprintf("De: %s <%s>\nSujet: %s\n\n%s", msg.Name, msg.Email, msg.Subject, msg.Message)
	return subject, body
}

type SMTPSender struct {
	config Config
}

func NewSMTPSender(config Config) *SMTPSender {
	return &SMTPSender{config: config}
}

func (s *SMTPSender) buildMessage(msg *models.ContactMessage) (*mail.Msg, error) {
	subject, body := Compose(msg)

	m := mail.NewMsg()
	if err := m.From(s.config.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(s.config.To); err != nil {
		return nil, fmt.Errorf("invalid to address: %w", err)
	}
	if err := m.ReplyTo(msg.Email); err != nil {
		return nil, fmt.Errorf("invalid reply-to address: %w", err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, body)
	return m, nil
}

func (s *SMTPSender) SendContact(ctx context.Context, msg *models.ContactMessage) error {
	m, err := s.buildMessage(msg)
	if err != nil {
		logger.Error.Printf("Failed to build contact message: %v", err)
		return ErrDeliveryFailure
	}

	opts := []mail.Option{mail.WithPort(s.config.Port)}
	if s.config.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.config.Timeout))
	}
	if s.config.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.config.Username),
			mail.WithPassword(s.config.Password),
		)
	}
	if s.config.SSL {
		opts = append(opts, mail.WithSSL())
	}

	client, err := mail.NewClient(s.config.Host, opts...)
	if err != nil {
		logger.Error.Printf("Failed to create smtp client: %v", err)
		return ErrDeliveryFailure
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		logger.Error.Printf("Failed to send contact message: %v", err)
		return ErrDeliveryFailure
	}
	return nil
}

// DisabledSender is used when no SMTP host is configured. Every message is
// refused so callers never report a delivery that did not happen.
type DisabledSender struct{}

func (DisabledSender) SendContact(_ context.Context, msg *models.ContactMessage) error {
	subject, _ := Compose(msg)
	logger.Error.Printf("SMTP not configured, contact message from %s not delivered: %s", msg.Email, subject)
	return ErrDeliveryFailure
}
