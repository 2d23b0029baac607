package mail

import (
	"context"

	domainMail "aspire-wishlist/internal/domain/mail"
	"aspire-wishlist/internal/logger"

	"go.uber.org/zap"
)

// LogSender renders messages and logs them instead of delivering. Used when
// no SMTP host is configured.
type LogSender struct {
	renderer *Renderer
	log      *zap.Logger
}

func NewLogSender(renderer *Renderer) *LogSender {
	return &LogSender{renderer: renderer, log: logger.Named("mail")}
}

func (s *LogSender) Send(_ context.Context, msg domainMail.Message) error {
	body, err := s.renderer.Render(msg.Template, msg.Data)
	if err != nil {
		return err
	}

	fields := []zap.Field{
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("template", string(msg.Template)),
		zap.Int("body_bytes", len(body)),
	}
	if link, ok := msg.Data["Link"].(string); ok {
		fields = append(fields, zap.String("link", link))
	}
	s.log.Info("Email not delivered, SMTP is not configured", fields...)
	return nil
}
