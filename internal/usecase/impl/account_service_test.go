package impl

import (
	"context"
	"testing"

	"procure/internal/domain/entity"
	domainerrors "procure/internal/domain/errors"
	"procure/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountService_Register(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	user, err := env.accounts.Register(ctx, usecase.RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "initial-password",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, user.Status)
	assert.Equal(t, entity.RoleUser, user.Role)
	assert.False(t, user.MustChangePassword)

	// Pending accounts cannot log in yet.
	out, err := env.auth.Login(ctx, usecase.LoginInput{Email: "alice@example.com", Password: "initial-password"})
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, domainerrors.ErrAccountPending.Message(), out.Message)
}

func TestAccountService_Register_Validation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	tests := []struct {
		name  string
		input usecase.RegisterInput
	}{
		{"missing name", usecase.RegisterInput{Email: "a@example.com", Password: "long-enough"}},
		{"bad email", usecase.RegisterInput{Name: "A", Email: "nope", Password: "long-enough"}},
		{"short password", usecase.RegisterInput{Name: "A", Email: "a@example.com", Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.accounts.Register(ctx, tt.input)
			assert.Error(t, err)
		})
	}
}

func TestAccountService_Register_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.accounts.Register(ctx, usecase.RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "initial-password"})
	require.NoError(t, err)

	_, err = env.accounts.Register(ctx, usecase.RegisterInput{Name: "Imposter", Email: "alice@example.com", Password: "other-password"})
	assert.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists)
}

func TestAccountService_ApproveFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	user, err := env.accounts.Register(ctx, usecase.RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "initial-password"})
	require.NoError(t, err)

	pending, err := env.accounts.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, env.accounts.Approve(ctx, user.ID))
	assert.Equal(t, []string{"alice@example.com"}, env.mail.approved)

	pending, err = env.accounts.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	out, err := env.auth.Login(ctx, usecase.LoginInput{Email: "alice@example.com", Password: "initial-password"})
	require.NoError(t, err)
	assert.True(t, out.Success)
}

func TestAccountService_RejectFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	user, err := env.accounts.Register(ctx, usecase.RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "initial-password"})
	require.NoError(t, err)

	require.NoError(t, env.accounts.Reject(ctx, user.ID, "Duplicate registration"))
	assert.Equal(t, []string{"alice@example.com"}, env.mail.rejected)

	out, err := env.auth.Login(ctx, usecase.LoginInput{Email: "alice@example.com", Password: "initial-password"})
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, domainerrors.ErrAccountRejected.Message(), out.Message)
}

func TestAccountService_CreateUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	user, err := env.accounts.CreateUser(ctx, usecase.CreateUserInput{
		Name:     "Bob",
		Email:    "bob@example.com",
		Password: "temp-password-1",
		Role:     entity.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, user.Status)
	assert.Equal(t, entity.RoleAdmin, user.Role)
	assert.True(t, user.MustChangePassword)

	// First login lands on the must-change gate, with no session yet.
	out, err := env.auth.Login(ctx, usecase.LoginInput{Email: "bob@example.com", Password: "temp-password-1"})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.True(t, out.MustChangePassword)

	session, err := env.sessionUC.Validate(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestAccountService_UpdateRoleAndRemove(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.seedUser(t, "alice@example.com", "correct-password")

	require.NoError(t, env.accounts.UpdateRole(ctx, user.ID, entity.RoleAdmin))

	updated, err := env.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, updated.Role)

	assert.Error(t, env.accounts.UpdateRole(ctx, user.ID, entity.Role("owner")))

	require.NoError(t, env.accounts.Remove(ctx, user.ID))

	all, err := env.accounts.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	// Removed accounts cannot authenticate even with the right password.
	out, err := env.auth.Login(ctx, usecase.LoginInput{Email: "alice@example.com", Password: "correct-password"})
	require.NoError(t, err)
	assert.False(t, out.Success)

	assert.ErrorIs(t, env.accounts.Remove(ctx, uuid.New()), domainerrors.ErrUserNotFound)
}
