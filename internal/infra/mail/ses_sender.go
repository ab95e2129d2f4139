package mail

import (
	"context"
	"fmt"
	"log/slog"

	appconfig "procure/config"
	"procure/internal/domain/service"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/pkg/errors"
)

type sesSender struct {
	client    *ses.Client
	fromName  string
	fromEmail string
	logger    *slog.Logger
}

// NewSESSender creates a mail sender backed by Amazon SES.
func NewSESSender(ctx context.Context, cfg *appconfig.MailConfig, logger *slog.Logger) (service.MailSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.SES.Region))
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}

	return &sesSender{
		client:    ses.NewFromConfig(awsCfg),
		fromName:  cfg.FromName,
		fromEmail: cfg.FromEmail,
		logger:    logger,
	}, nil
}

func (s *sesSender) SendPasswordReset(ctx context.Context, email, resetURL string) error {
	return s.send(ctx, passwordResetMessage(email, resetURL))
}

func (s *sesSender) SendAccountApproved(ctx context.Context, email, name string) error {
	return s.send(ctx, accountApprovedMessage(email, name))
}

func (s *sesSender) SendAccountRejected(ctx context.Context, email, name, reason string) error {
	return s.send(ctx, accountRejectedMessage(email, name, reason))
}

func (s *sesSender) send(ctx context.Context, msg message) error {
	input := &ses.SendEmailInput{
		Source: aws.String(fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(msg.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data:    aws.String(msg.HTML),
					Charset: aws.String("UTF-8"),
				},
				Text: &types.Content{
					Data:    aws.String(msg.Text),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		s.logger.ErrorContext(ctx, "ses send failed", slog.String("subject", msg.Subject), slog.Any("error", err))

		return errors.Wrap(err, "ses send email")
	}

	return nil
}
