package repository

import (
	"context"

	"procure/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrEnrollmentNotFound is returned when an account has no two-factor enrollment.
var ErrEnrollmentNotFound = errors.New("two-factor enrollment not found")

// TwoFactorRepository persists the per-account second-factor material.
type TwoFactorRepository interface {
	// FindByUserID retrieves the enrollment for an account.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.TwoFactorEnrollment, error)

	// Save stores or replaces the enrollment for an account. Also used to
	// persist the shrinking backup-code set after a code is consumed.
	Save(ctx context.Context, enrollment *entity.TwoFactorEnrollment) error

	// Delete removes the enrollment entirely (disabling two-factor).
	Delete(ctx context.Context, userID uuid.UUID) error
}
