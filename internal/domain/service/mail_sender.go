package service

import "context"

// MailSender delivers the account-lifecycle notifications. Implementations
// return an error on delivery failure; they never panic past the caller.
// The auth engine treats a reset-mail failure as the only mail error that
// changes an operation's outcome.
type MailSender interface {
	// SendPasswordReset mails the one-time reset link.
	SendPasswordReset(ctx context.Context, email, resetURL string) error

	// SendAccountApproved notifies an account holder their registration was approved.
	SendAccountApproved(ctx context.Context, email, name string) error

	// SendAccountRejected notifies an account holder their registration was
	// declined, with an optional reason.
	SendAccountRejected(ctx context.Context, email, name, reason string) error
}
