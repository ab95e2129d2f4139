// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"procure/internal/domain/entity"

	"github.com/google/uuid"
)

// SessionUsecase manages the single active session slot.
type SessionUsecase interface {
	// Create issues a fresh session for the account, replacing any session
	// already in the slot, and returns the opaque session ID.
	Create(ctx context.Context, userID uuid.UUID, email string) (string, error)

	// Peek returns the live session without extending it. An empty or
	// expired slot yields (nil, nil); expired sessions are evicted as a
	// side effect.
	Peek(ctx context.Context) (*entity.Session, error)

	// Validate returns the live session, extending its sliding expiry.
	// Empty and expired slots behave as in Peek.
	Validate(ctx context.Context) (*entity.Session, error)

	// Refresh extends the live session without returning it. Reports false
	// when the slot is empty or expired.
	Refresh(ctx context.Context) (bool, error)

	// Clear empties the slot unconditionally.
	Clear(ctx context.Context) error
}
