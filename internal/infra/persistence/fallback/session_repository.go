package fallback

import (
	"context"
	"log/slog"

	"procure/internal/domain/entity"
	"procure/internal/domain/repository"
)

type sessionRepository struct {
	local  repository.SessionRepository
	mirror repository.SessionMirror
	logger *slog.Logger
}

// NewSessionRepository wraps the local session slot with a best-effort
// remote mirror. The local slot stays authoritative for reads so session
// validation never depends on the network.
func NewSessionRepository(local repository.SessionRepository, mirror repository.SessionMirror, logger *slog.Logger) repository.SessionRepository {
	return &sessionRepository{local: local, mirror: mirror, logger: logger}
}

func (r *sessionRepository) Get(ctx context.Context) (*entity.Session, error) {
	return r.local.Get(ctx)
}

func (r *sessionRepository) Put(ctx context.Context, session *entity.Session) error {
	if err := r.local.Put(ctx, session); err != nil {
		return err
	}
	if err := r.mirror.Save(ctx, session); err != nil {
		r.logger.WarnContext(ctx, "remote session mirror write failed", slog.Any("error", err))
	}

	return nil
}

func (r *sessionRepository) Delete(ctx context.Context) error {
	session, err := r.local.Get(ctx)
	if err := r.local.Delete(ctx); err != nil {
		return err
	}
	if err == nil && session != nil {
		if err := r.mirror.Remove(ctx, session.ID); err != nil {
			r.logger.WarnContext(ctx, "remote session mirror delete failed", slog.Any("error", err))
		}
	}

	return nil
}
