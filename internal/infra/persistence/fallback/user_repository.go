// Package fallback composes the local JSON store with the DynamoDB mirror.
// Reads prefer the remote copy and fall back to local on any error or miss.
// Writes always land locally first; remote failures are logged and tolerated
// so an outage never blocks account operations.
package fallback

import (
	"context"
	"log/slog"

	"procure/internal/domain/entity"
	"procure/internal/domain/repository"

	"github.com/google/uuid"
)

type userRepository struct {
	local  repository.UserRepository
	remote repository.UserRepository
	logger *slog.Logger
}

// NewUserRepository composes a local and a remote user repository.
func NewUserRepository(local, remote repository.UserRepository, logger *slog.Logger) repository.UserRepository {
	return &userRepository{local: local, remote: remote, logger: logger}
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := r.remote.FindByID(ctx, id)
	if err == nil {
		return r.mergeLocalFlags(ctx, user), nil
	}
	r.logMiss(ctx, "FindByID", err)

	return r.local.FindByID(ctx, id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	user, err := r.remote.FindByEmail(ctx, email)
	if err == nil {
		return r.mergeLocalFlags(ctx, user), nil
	}
	r.logMiss(ctx, "FindByEmail", err)

	return r.local.FindByEmail(ctx, email)
}

// mergeLocalFlags reconciles a remote record with its local copy. Two-factor
// enrollment may have been recorded only locally during a remote outage, so
// the flag is treated as enabled when either side says so.
func (r *userRepository) mergeLocalFlags(ctx context.Context, user *entity.User) *entity.User {
	if user == nil || user.TwoFactorEnabled {
		return user
	}
	localUser, err := r.local.FindByID(ctx, user.ID)
	if err != nil || localUser == nil {
		return user
	}
	if localUser.TwoFactorEnabled {
		user.TwoFactorEnabled = true
	}

	return user
}

func (r *userRepository) FindAll(ctx context.Context) ([]*entity.User, error) {
	users, err := r.remote.FindAll(ctx)
	if err == nil && len(users) > 0 {
		return users, nil
	}
	if err != nil {
		r.logMiss(ctx, "FindAll", err)
	}

	return r.local.FindAll(ctx)
}

func (r *userRepository) FindPending(ctx context.Context) ([]*entity.User, error) {
	users, err := r.remote.FindPending(ctx)
	if err == nil && len(users) > 0 {
		return users, nil
	}
	if err != nil {
		r.logMiss(ctx, "FindPending", err)
	}

	return r.local.FindPending(ctx)
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	if err := r.local.Create(ctx, user); err != nil {
		return err
	}
	if err := r.remote.Create(ctx, user); err != nil {
		r.logWriteFailure(ctx, "Create", err)
	}

	return nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	if err := r.local.Update(ctx, user); err != nil {
		return err
	}
	if err := r.remote.Update(ctx, user); err != nil {
		r.logWriteFailure(ctx, "Update", err)
	}

	return nil
}

func (r *userRepository) Approve(ctx context.Context, id uuid.UUID) error {
	if err := r.local.Approve(ctx, id); err != nil {
		return err
	}
	if err := r.remote.Approve(ctx, id); err != nil {
		r.logWriteFailure(ctx, "Approve", err)
	}

	return nil
}

func (r *userRepository) Reject(ctx context.Context, id uuid.UUID) error {
	if err := r.local.Reject(ctx, id); err != nil {
		return err
	}
	if err := r.remote.Reject(ctx, id); err != nil {
		r.logWriteFailure(ctx, "Reject", err)
	}

	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.local.Delete(ctx, id); err != nil {
		return err
	}
	if err := r.remote.Delete(ctx, id); err != nil {
		r.logWriteFailure(ctx, "Delete", err)
	}

	return nil
}

func (r *userRepository) logMiss(ctx context.Context, op string, err error) {
	r.logger.DebugContext(ctx, "remote user read missed, using local store",
		slog.String("operation", op),
		slog.Any("error", err),
	)
}

func (r *userRepository) logWriteFailure(ctx context.Context, op string, err error) {
	r.logger.WarnContext(ctx, "remote user write failed, local store remains authoritative",
		slog.String("operation", op),
		slog.Any("error", err),
	)
}
