package fallback

import (
	"context"
	"log/slog"

	"procure/internal/domain/entity"
	"procure/internal/domain/repository"

	"github.com/google/uuid"
)

type credentialRepository struct {
	local  repository.CredentialRepository
	remote repository.CredentialRepository
	logger *slog.Logger
}

// NewCredentialRepository composes a local and a remote credential repository.
func NewCredentialRepository(local, remote repository.CredentialRepository, logger *slog.Logger) repository.CredentialRepository {
	return &credentialRepository{local: local, remote: remote, logger: logger}
}

func (r *credentialRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Credential, error) {
	cred, err := r.remote.FindByUserID(ctx, userID)
	if err == nil {
		return cred, nil
	}
	r.logger.DebugContext(ctx, "remote credential read missed, using local store", slog.Any("error", err))

	return r.local.FindByUserID(ctx, userID)
}

func (r *credentialRepository) Upsert(ctx context.Context, cred *entity.Credential) error {
	if err := r.local.Upsert(ctx, cred); err != nil {
		return err
	}
	if err := r.remote.Upsert(ctx, cred); err != nil {
		r.logger.WarnContext(ctx, "remote credential write failed, local store remains authoritative", slog.Any("error", err))
	}

	return nil
}
