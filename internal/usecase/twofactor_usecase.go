// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"github.com/google/uuid"
)

// EnrollmentOutput carries everything the client needs to finish pairing an
// authenticator app. Nothing is persisted until Confirm succeeds.
type EnrollmentOutput struct {
	Secret      string
	OTPAuthURL  string
	QRCodePNG   []byte
	BackupCodes []string
}

// TwoFactorUsecase manages authenticator enrollment for an account.
type TwoFactorUsecase interface {
	// Begin generates a fresh secret, provisioning URI, QR image and backup
	// codes for the account. Calling it again discards the previous draft.
	Begin(ctx context.Context, userID uuid.UUID) (*EnrollmentOutput, error)

	// Confirm verifies a first authenticator code against the draft secret
	// and, on success, persists the enrollment and flags the account.
	Confirm(ctx context.Context, userID uuid.UUID, secret string, backupCodes []string, code string) error

	// Disable removes the enrollment and clears the account flag.
	Disable(ctx context.Context, userID uuid.UUID) error
}
