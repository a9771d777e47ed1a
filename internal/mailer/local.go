package mailer

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// LocalSender logs messages instead of sending them. Used in dev.
type LocalSender struct {
	logger *zap.Logger
}

func NewLocalSender(logger *zap.Logger) *LocalSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalSender{logger: logger.Named("mailer.local")}
}

func (s *LocalSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	to, err := msg.recipient()
	if err != nil {
		return err
	}

	files := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		files = append(files, a.Filename)
	}

	s.logger.Info("email",
		zap.String("to", to),
		zap.String("subject", msg.Subject),
		zap.Int("lines", strings.Count(msg.Text, "\n")),
		zap.Strings("attachments", files),
		zap.String("body", msg.Text),
	)
	return nil
}
