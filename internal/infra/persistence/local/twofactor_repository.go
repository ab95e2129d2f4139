package local

import (
	"context"

	"procure/internal/domain/entity"
	"procure/internal/domain/repository"

	"github.com/google/uuid"
)

type twoFactorRepository struct {
	store *Store
}

// NewTwoFactorRepository creates a two-factor repository backed by the JSON file store.
func NewTwoFactorRepository(store *Store) repository.TwoFactorRepository {
	return &twoFactorRepository{store: store}
}

func (r *twoFactorRepository) FindByUserID(_ context.Context, userID uuid.UUID) (*entity.TwoFactorEnrollment, error) {
	var found *entity.TwoFactorEnrollment
	err := r.store.view(func(state *fileState) error {
		enrollment, ok := state.TwoFactor[userID.String()]
		if !ok {
			return repository.ErrEnrollmentNotFound
		}
		found = cloneEnrollment(enrollment)

		return nil
	})

	return found, err
}

func (r *twoFactorRepository) Save(_ context.Context, enrollment *entity.TwoFactorEnrollment) error {
	return r.store.update(func(state *fileState) error {
		state.TwoFactor[enrollment.UserID.String()] = cloneEnrollment(enrollment)

		return nil
	})
}

func (r *twoFactorRepository) Delete(_ context.Context, userID uuid.UUID) error {
	return r.store.update(func(state *fileState) error {
		delete(state.TwoFactor, userID.String())

		return nil
	})
}
