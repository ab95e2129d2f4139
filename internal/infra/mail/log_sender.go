package mail

import (
	"context"
	"log/slog"

	"procure/internal/domain/service"
)

type logSender struct {
	logger *slog.Logger
}

// NewLogSender creates a mail sender that only logs outbound messages.
// Intended for local development where no mail provider is configured.
func NewLogSender(logger *slog.Logger) service.MailSender {
	return &logSender{logger: logger}
}

func (s *logSender) SendPasswordReset(ctx context.Context, email, resetURL string) error {
	s.logger.InfoContext(ctx, "mail not configured, logging password reset email",
		slog.String("to", email),
		slog.String("resetUrl", resetURL),
	)

	return nil
}

func (s *logSender) SendAccountApproved(ctx context.Context, email, name string) error {
	s.logger.InfoContext(ctx, "mail not configured, logging account approved email",
		slog.String("to", email),
		slog.String("name", name),
	)

	return nil
}

func (s *logSender) SendAccountRejected(ctx context.Context, email, name, reason string) error {
	s.logger.InfoContext(ctx, "mail not configured, logging account rejected email",
		slog.String("to", email),
		slog.String("name", name),
		slog.String("reason", reason),
	)

	return nil
}
