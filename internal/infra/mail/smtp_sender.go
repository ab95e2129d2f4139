package mail

import (
	"context"
	"fmt"

	appconfig "procure/config"
	"procure/internal/domain/service"

	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"
)

type smtpSender struct {
	dialer    *gomail.Dialer
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a mail sender that delivers through an SMTP relay.
func NewSMTPSender(cfg *appconfig.MailConfig) (service.MailSender, error) {
	if cfg.SMTP.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.SMTP.Port == 0 {
		return nil, errors.New("smtp port is required")
	}

	return &smtpSender{
		dialer:    gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password),
		fromName:  cfg.FromName,
		fromEmail: cfg.FromEmail,
	}, nil
}

func (s *smtpSender) SendPasswordReset(_ context.Context, email, resetURL string) error {
	return s.send(passwordResetMessage(email, resetURL))
}

func (s *smtpSender) SendAccountApproved(_ context.Context, email, name string) error {
	return s.send(accountApprovedMessage(email, name))
}

func (s *smtpSender) SendAccountRejected(_ context.Context, email, name, reason string) error {
	return s.send(accountRejectedMessage(email, name, reason))
}

func (s *smtpSender) send(msg message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail))
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)
	m.AddAlternative("text/plain", msg.Text)

	if err := s.dialer.DialAndSend(m); err != nil {
		return errors.Wrap(err, "smtp send email")
	}

	return nil
}
