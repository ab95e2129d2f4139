// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"procure/internal/domain/entity"

	"github.com/google/uuid"
)

// RegisterInput defines the data required for self-service registration.
// Registered accounts start pending and cannot log in until approved.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// CreateUserInput defines the data an admin supplies when provisioning an
// account directly. The account is approved immediately but must change its
// password on first login.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     entity.Role
}

// AccountUsecase defines admin and self-service account lifecycle operations.
type AccountUsecase interface {
	Register(ctx context.Context, input RegisterInput) (*entity.User, error)
	CreateUser(ctx context.Context, input CreateUserInput) (*entity.User, error)
	Approve(ctx context.Context, id uuid.UUID) error
	Reject(ctx context.Context, id uuid.UUID, reason string) error
	ListUsers(ctx context.Context) ([]*entity.User, error)
	ListPending(ctx context.Context) ([]*entity.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role entity.Role) error
	Remove(ctx context.Context, id uuid.UUID) error
}
