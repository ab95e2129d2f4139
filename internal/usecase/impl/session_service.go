// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"
	"time"

	"procure/config"
	deliverycontext "procure/internal/delivery/context"
	"procure/internal/domain/entity"
	"procure/internal/domain/repository"
	"procure/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// sessionService implements the SessionUsecase interface over the single
// session slot with sliding expiry.
type sessionService struct {
	sessions repository.SessionRepository
	duration time.Duration
	logger   *slog.Logger

	now func() time.Time
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(
	sessions repository.SessionRepository,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.SessionUsecase {
	return &sessionService{
		sessions: sessions,
		duration: cfg.Auth.SessionDuration,
		logger:   logger,
		now:      time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Create issues a fresh session, wholesale replacing whatever occupied the
// slot before. Logging in as a second identity evicts the first.
func (srv *sessionService) Create(ctx context.Context, userID uuid.UUID, email string) (string, error) {
	now := srv.now()
	session := &entity.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Email:     email,
		IssuedAt:  now,
		ExpiresAt: now.Add(srv.duration),
	}

	if err := srv.sessions.Put(ctx, session); err != nil {
		return "", errors.Wrap(err, "store session")
	}
	srv.log(ctx).Info("Session created", slog.Any("user_id", userID))

	return session.ID, nil
}

// Peek returns the live session without extending it. An empty slot is not
// an error; an expired session is evicted and reported as absent.
func (srv *sessionService) Peek(ctx context.Context) (*entity.Session, error) {
	session, err := srv.sessions.Get(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, nil
		}

		return nil, errors.Wrap(err, "load session")
	}

	if session.ExpiredAt(srv.now()) {
		srv.log(ctx).Info("Session expired, evicting", slog.Any("user_id", session.UserID))
		if err := srv.sessions.Delete(ctx); err != nil {
			return nil, errors.Wrap(err, "evict expired session")
		}

		return nil, nil
	}

	return session, nil
}

// Validate returns the live session and extends its sliding expiry.
func (srv *sessionService) Validate(ctx context.Context) (*entity.Session, error) {
	session, err := srv.Peek(ctx)
	if err != nil || session == nil {
		return session, err
	}

	session.ExpiresAt = srv.now().Add(srv.duration)
	if err := srv.sessions.Put(ctx, session); err != nil {
		return nil, errors.Wrap(err, "extend session")
	}

	return session, nil
}

// Refresh extends the live session and reports whether one existed.
func (srv *sessionService) Refresh(ctx context.Context) (bool, error) {
	session, err := srv.Validate(ctx)
	if err != nil {
		return false, err
	}

	return session != nil, nil
}

// Clear empties the slot. Clearing an empty slot succeeds.
func (srv *sessionService) Clear(ctx context.Context) error {
	if err := srv.sessions.Delete(ctx); err != nil {
		return errors.Wrap(err, "clear session")
	}

	return nil
}
