package local

import (
	"context"

	"procure/internal/domain/entity"
	"procure/internal/domain/repository"
)

type sessionRepository struct {
	store *Store
}

// NewSessionRepository creates a session repository backed by the JSON file store.
// It holds the single active session slot.
func NewSessionRepository(store *Store) repository.SessionRepository {
	return &sessionRepository{store: store}
}

func (r *sessionRepository) Get(_ context.Context) (*entity.Session, error) {
	var found *entity.Session
	err := r.store.view(func(state *fileState) error {
		if state.Session == nil {
			return repository.ErrSessionNotFound
		}
		found = cloneSession(state.Session)

		return nil
	})

	return found, err
}

func (r *sessionRepository) Put(_ context.Context, session *entity.Session) error {
	return r.store.update(func(state *fileState) error {
		state.Session = cloneSession(session)

		return nil
	})
}

func (r *sessionRepository) Delete(_ context.Context) error {
	return r.store.update(func(state *fileState) error {
		state.Session = nil

		return nil
	})
}
