package local

import (
	"context"

	"procure/internal/domain/entity"
	"procure/internal/domain/repository"
)

type resetTokenRepository struct {
	store *Store
}

// NewResetTokenRepository creates a reset-token repository backed by the JSON file store.
func NewResetTokenRepository(store *Store) repository.ResetTokenRepository {
	return &resetTokenRepository{store: store}
}

func (r *resetTokenRepository) Create(_ context.Context, token *entity.ResetToken) error {
	return r.store.update(func(state *fileState) error {
		state.ResetTokens[token.Token] = cloneResetToken(token)

		return nil
	})
}

func (r *resetTokenRepository) FindByToken(_ context.Context, token string) (*entity.ResetToken, error) {
	var found *entity.ResetToken
	err := r.store.view(func(state *fileState) error {
		record, ok := state.ResetTokens[token]
		if !ok {
			return repository.ErrResetTokenNotFound
		}
		found = cloneResetToken(record)

		return nil
	})

	return found, err
}

func (r *resetTokenRepository) Delete(_ context.Context, token string) error {
	return r.store.update(func(state *fileState) error {
		delete(state.ResetTokens, token)

		return nil
	})
}
