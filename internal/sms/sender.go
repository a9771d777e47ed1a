package sms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fdg312/meal-planner/internal/config"
)

// Message is a single text message. To is an E.164 number.
type Message struct {
	To   string
	Text string
}

// Sender delivers text messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSenderFromConfig builds sms sender based on config.
func NewSenderFromConfig(cfg *config.Config, logger *zap.Logger) (Sender, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	mode := strings.ToLower(strings.TrimSpace(cfg.SMSSenderMode))
	if mode == "" {
		mode = config.SMSSenderLocal
	}

	switch mode {
	case config.SMSSenderLocal:
		return NewLocalSender(logger), nil
	case config.SMSSenderHTTP:
		if strings.TrimSpace(cfg.SMSGatewayURL) == "" {
			return nil, errors.New("SMS_GATEWAY_URL is required for SMS_SENDER_MODE=http")
		}
		return NewGatewaySender(GatewayConfig{
			URL:   cfg.SMSGatewayURL,
			Token: cfg.SMSGatewayToken,
			From:  cfg.SMSFrom,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported SMS_SENDER_MODE=%q", mode)
	}
}
