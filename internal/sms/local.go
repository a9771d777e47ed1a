package sms

import (
	"context"

	"go.uber.org/zap"
)

// LocalSender logs messages instead of sending them.
type LocalSender struct {
	logger *zap.Logger
}

func NewLocalSender(logger *zap.Logger) *LocalSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalSender{logger: logger.Named("sms.local")}
}

func (s *LocalSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Info("sms", zap.String("to", msg.To), zap.Int("chars", len([]rune(msg.Text))), zap.String("text", msg.Text))
	return nil
}
