package repository

import (
	"context"

	"procure/internal/domain/entity"

	"github.com/pkg/errors"
)

// ErrSessionNotFound is returned when the session slot is empty.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository persists the single active session slot. There is exactly
// one session per deployment; Put replaces whatever was there before.
// Expiry is judged by the caller, not the store.
type SessionRepository interface {
	// Get returns the session currently occupying the slot.
	Get(ctx context.Context) (*entity.Session, error)

	// Put stores a session, wholesale replacing any previous one.
	Put(ctx context.Context, session *entity.Session) error

	// Delete empties the slot. Deleting an empty slot is not an error.
	Delete(ctx context.Context) error
}

// SessionMirror is an optional remote copy of the session slot, written
// best-effort alongside the authoritative local record.
type SessionMirror interface {
	// Save writes or replaces the session record remotely, keyed by its ID.
	Save(ctx context.Context, session *entity.Session) error

	// Remove deletes the remote record for the given session ID.
	Remove(ctx context.Context, sessionID string) error
}
