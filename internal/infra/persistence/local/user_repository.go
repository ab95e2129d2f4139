package local

import (
	"context"
	"strings"
	"time"

	"procure/internal/domain/entity"
	"procure/internal/domain/repository"

	"github.com/google/uuid"
)

type userRepository struct {
	store *Store
}

// NewUserRepository creates a user repository backed by the JSON file store.
func NewUserRepository(store *Store) repository.UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	var found *entity.User
	err := r.store.view(func(state *fileState) error {
		for _, user := range state.Users {
			if user.ID == id && !user.Deleted {
				found = cloneUser(user)

				return nil
			}
		}

		return repository.ErrUserNotFound
	})

	return found, err
}

func (r *userRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	var found *entity.User
	err := r.store.view(func(state *fileState) error {
		for _, user := range state.Users {
			if user.Email == email && !user.Deleted {
				found = cloneUser(user)

				return nil
			}
		}

		return repository.ErrUserNotFound
	})

	return found, err
}

func (r *userRepository) FindAll(_ context.Context) ([]*entity.User, error) {
	var users []*entity.User
	err := r.store.view(func(state *fileState) error {
		for _, user := range state.Users {
			if !user.Deleted {
				users = append(users, cloneUser(user))
			}
		}

		return nil
	})

	return users, err
}

func (r *userRepository) FindPending(_ context.Context) ([]*entity.User, error) {
	var users []*entity.User
	err := r.store.view(func(state *fileState) error {
		for _, user := range state.Users {
			if !user.Deleted && user.Status == entity.StatusPending {
				users = append(users, cloneUser(user))
			}
		}

		return nil
	})

	return users, err
}

func (r *userRepository) Create(_ context.Context, user *entity.User) error {
	return r.store.update(func(state *fileState) error {
		for _, existing := range state.Users {
			if !existing.Deleted && strings.EqualFold(existing.Email, user.Email) {
				return repository.ErrDuplicateEmail
			}
		}
		state.Users = append(state.Users, cloneUser(user))

		return nil
	})
}

func (r *userRepository) Update(_ context.Context, user *entity.User) error {
	return r.store.update(func(state *fileState) error {
		for i, existing := range state.Users {
			if existing.ID == user.ID && !existing.Deleted {
				state.Users[i] = cloneUser(user)

				return nil
			}
		}

		return repository.ErrUserNotFound
	})
}

func (r *userRepository) Approve(_ context.Context, id uuid.UUID) error {
	return r.setStatus(id, entity.StatusApproved)
}

func (r *userRepository) Reject(_ context.Context, id uuid.UUID) error {
	return r.setStatus(id, entity.StatusRejected)
}

func (r *userRepository) setStatus(id uuid.UUID, status entity.Status) error {
	return r.store.update(func(state *fileState) error {
		for _, user := range state.Users {
			if user.ID == id && !user.Deleted {
				user.Status = status
				user.UpdatedAt = time.Now()

				return nil
			}
		}

		return repository.ErrUserNotFound
	})
}

func (r *userRepository) Delete(_ context.Context, id uuid.UUID) error {
	return r.store.update(func(state *fileState) error {
		for _, user := range state.Users {
			if user.ID == id && !user.Deleted {
				user.Deleted = true
				user.UpdatedAt = time.Now()

				return nil
			}
		}

		return repository.ErrUserNotFound
	})
}
