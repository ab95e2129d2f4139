package local

import (
	"context"

	"procure/internal/domain/entity"
	"procure/internal/domain/repository"

	"github.com/google/uuid"
)

type credentialRepository struct {
	store *Store
}

// NewCredentialRepository creates a credential repository backed by the JSON file store.
func NewCredentialRepository(store *Store) repository.CredentialRepository {
	return &credentialRepository{store: store}
}

func (r *credentialRepository) FindByUserID(_ context.Context, userID uuid.UUID) (*entity.Credential, error) {
	var found *entity.Credential
	err := r.store.view(func(state *fileState) error {
		cred, ok := state.Credentials[userID.String()]
		if !ok {
			return repository.ErrCredentialNotFound
		}
		found = cloneCredential(cred)

		return nil
	})

	return found, err
}

func (r *credentialRepository) Upsert(_ context.Context, cred *entity.Credential) error {
	return r.store.update(func(state *fileState) error {
		state.Credentials[cred.UserID.String()] = cloneCredential(cred)

		return nil
	})
}
