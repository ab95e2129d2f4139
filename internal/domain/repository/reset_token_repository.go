package repository

import (
	"context"

	"procure/internal/domain/entity"

	"github.com/pkg/errors"
)

// ErrResetTokenNotFound is returned when a token is absent, already consumed,
// or evicted. Callers must not distinguish these cases toward the user.
var ErrResetTokenNotFound = errors.New("reset token not found")

// ResetTokenRepository stores outstanding password-reset tokens keyed by
// their opaque value. Several live tokens per account are permitted.
type ResetTokenRepository interface {
	// Create stores a freshly generated token.
	Create(ctx context.Context, token *entity.ResetToken) error

	// FindByToken retrieves a token record by its opaque value.
	FindByToken(ctx context.Context, token string) (*entity.ResetToken, error)

	// Delete removes a token unconditionally. Used both for one-time
	// consumption after a password write and for lazy expiry eviction.
	Delete(ctx context.Context, token string) error
}
