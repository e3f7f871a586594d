package mailer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/qcm/internal/models"
)

func contactMessage() *models.ContactMessage {
	return &models.ContactMessage{
		Name:    "Alice",
		Email:   "alice@example.com",
		Subject: "Chapitre 3",
		Message: "Merci pour le cours.",
	}
}

func TestCompose(t *testing.T) {
	subject, body := Compose(contactMessage())
	assert.Equal(t, "[Contact Site Python] Chapitre 3", subject)
	assert.Equal(t, "De: Alice <alice@example.com>\nSujet: Chapitre 3\n\nMerci pour le cours.", body)
}

func TestSMTPSenderFailureIsOpaque(t *testing.T) {
	s := NewSMTPSender(Config{
		Host:    "127.0.0.1",
		Port:    1,
		From:    "site@example.com",
		To:      "prof@example.com",
		Timeout: time.Second,
	})

	err := s.SendContact(context.Background(), contactMessage())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeliveryFailure)
	assert.Equal(t, ErrDeliveryFailure.Error(), err.Error())
}

func TestSMTPSenderRejectsBadReplyTo(t *testing.T) {
	s := NewSMTPSender(Config{Host: "127.0.0.1", Port: 1, From: "site@example.com", To: "prof@example.com"})
	msg := contactMessage()
	msg.Email = "not an address"

	err := s.SendContact(context.Background(), msg)
	assert.ErrorIs(t, err, ErrDeliveryFailure)
}

func TestDisabledSender(t *testing.T) {
	err := DisabledSender{}.SendContact(context.Background(), contactMessage())
	assert.ErrorIs(t, err, ErrDeliveryFailure)
}
