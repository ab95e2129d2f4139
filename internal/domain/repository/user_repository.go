// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"procure/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateEmail is returned when creating a user whose email is already taken.
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository defines the standard operations for account persistence.
// The application layer depends on this interface, never a concrete store.
// Implementations must treat soft-deleted accounts as absent everywhere.
type UserRepository interface {
	// FindByID retrieves a single account by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single account by its email address.
	// The comparison is exact, matching the email as stored.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindAll lists every non-deleted account.
	FindAll(ctx context.Context) ([]*entity.User, error)

	// FindPending lists non-deleted accounts still awaiting admin review.
	FindPending(ctx context.Context) ([]*entity.User, error)

	// Create persists a new account. Returns ErrDuplicateEmail when the
	// email is already registered to a live account.
	Create(ctx context.Context, user *entity.User) error

	// Update modifies an existing account.
	Update(ctx context.Context, user *entity.User) error

	// Approve transitions a pending account to approved.
	Approve(ctx context.Context, id uuid.UUID) error

	// Reject transitions a pending account to rejected.
	Reject(ctx context.Context, id uuid.UUID) error

	// Delete soft-deletes an account. The record is retained but the
	// account can never authenticate or appear in listings again.
	Delete(ctx context.Context, id uuid.UUID) error
}

// CredentialRepository persists the password material, keyed by account id.
// A credential exists if and only if its owning account does.
type CredentialRepository interface {
	// FindByUserID retrieves the stored credential for an account.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Credential, error)

	// Upsert stores or replaces the credential for an account.
	Upsert(ctx context.Context, cred *entity.Credential) error
}

// ErrCredentialNotFound is returned when an account has no stored credential.
var ErrCredentialNotFound = errors.New("credential not found")
