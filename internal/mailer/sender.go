// Package mailer sends shopping lists by email: to the log, over SMTP or
// through the Resend API.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/fdg312/meal-planner/internal/config"
)

var ErrInvalidRecipient = errors.New("invalid recipient address")

// Attachment is a file sent along with the message body.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a plain-text email with optional attachments.
type Message struct {
	To          string
	Subject     string
	Text        string
	Attachments []Attachment
}

// recipient returns the bare address of msg.To.
func (m Message) recipient() (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(m.To))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidRecipient, m.To)
	}
	return addr.Address, nil
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSenderFromConfig выбирает отправителя по EMAIL_SENDER_MODE.
func NewSenderFromConfig(cfg *config.Config, logger *zap.Logger) (Sender, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	mode := strings.ToLower(strings.TrimSpace(cfg.EmailSenderMode))
	switch mode {
	case "", config.EmailSenderLocal:
		return NewLocalSender(logger), nil
	case config.EmailSenderSMTP:
		smtpCfg, err := smtpConfigFrom(cfg)
		if err != nil {
			return nil, err
		}
		return NewSMTPSender(smtpCfg), nil
	case config.EmailSenderResend:
		if strings.TrimSpace(cfg.ResendAPIKey) == "" {
			return nil, errors.New("RESEND_API_KEY is required for EMAIL_SENDER_MODE=resend")
		}
		return NewResendSender(ResendConfig{APIKey: cfg.ResendAPIKey, From: cfg.ResendFrom}), nil
	default:
		return nil, fmt.Errorf("unsupported EMAIL_SENDER_MODE=%q", mode)
	}
}

func smtpConfigFrom(cfg *config.Config) (SMTPConfig, error) {
	var missing []string
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		missing = append(missing, "SMTP_HOST")
	}
	if cfg.SMTPPort <= 0 {
		missing = append(missing, "SMTP_PORT")
	}
	if strings.TrimSpace(cfg.SMTPFrom) == "" {
		missing = append(missing, "SMTP_FROM")
	}
	if strings.TrimSpace(cfg.SMTPUsername) != "" && cfg.SMTPPassword == "" {
		missing = append(missing, "SMTP_PASSWORD")
	}
	if len(missing) > 0 {
		return SMTPConfig{}, fmt.Errorf("EMAIL_SENDER_MODE=smtp requires %s", strings.Join(missing, ", "))
	}
	return SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		UseTLS:   cfg.SMTPUseTLS,
	}, nil
}
