package impl

import (
	"context"
	"strings"
	"testing"
	"time"

	"procure/internal/domain/entity"
	domainerrors "procure/internal/domain/errors"
	"procure/internal/domain/repository"
	"procure/internal/usecase"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Login_Success(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.seedUser(t, "alice@example.com", "correct-password")

	out, err := env.auth.Login(ctx, usecase.LoginInput{Email: "alice@example.com", Password: "correct-password"})
	require.NoError(t, err)
	assert.True(t, out.Success)
	require.NotNil(t, out.User)
	assert.Equal(t, user.ID, out.User.ID)

	session, err := env.sessionUC.Validate(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, user.ID, session.UserID)
}

func TestAuthService_Login_UnknownAndWrongPasswordIndistinguishable(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "alice@example.com", "correct-password")

	unknown, err := env.auth.Login(ctx, usecase.LoginInput{Email: "nobody@example.com", Password: "anything"})
	require.NoError(t, err)
	wrong, err := env.auth.Login(ctx, usecase.LoginInput{Email: "alice@example.com", Password: "wrong"})
	require.NoError(t, err)

	assert.False(t, unknown.Success)
	assert.False(t, wrong.Success)
	assert.Equal(t, unknown.Message, wrong.Message)
}

func TestAuthService_Login_StatusGates(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "pending@example.com", "password-123", func(u *entity.User) {
		u.Status = entity.StatusPending
	})
	env.seedUser(t, "rejected@example.com", "password-123", func(u *entity.User) {
		u.Status = entity.StatusRejected
	})

	pending, err := env.auth.Login(ctx, usecase.LoginInput{Email: "pending@example.com", Password: "password-123"})
	require.NoError(t, err)
	assert.False(t, pending.Success)
	assert.Equal(t, domainerrors.ErrAccountPending.Message(), pending.Message)

	rejected, err := env.auth.Login(ctx, usecase.LoginInput{Email: "rejected@example.com", Password: "password-123"})
	require.NoError(t, err)
	assert.False(t, rejected.Success)
	assert.Equal(t, domainerrors.ErrAccountRejected.Message(), rejected.Message)

	// The status gate fires before the password gate, even with a wrong password.
	pendingWrong, err := env.auth.Login(ctx, usecase.LoginInput{Email: "pending@example.com", Password: "wrong"})
	require.NoError(t, err)
	assert.Equal(t, domainerrors.ErrAccountPending.Message(), pendingWrong.Message)
}

func TestAuthService_Login_LegacyPlaintextMigration(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.seedUser(t, "legacy@example.com", "placeholder")

	// Overwrite with a plaintext record as stored before hashing existed.
	require.NoError(t, env.credentials.Upsert(ctx, &entity.Credential{
		UserID:       user.ID,
		PasswordHash: "legacy-password",
		UpdatedAt:    time.Now(),
	}))

	out, err := env.auth.Login(ctx, usecase.LoginInput{Email: "legacy@example.com", Password: "legacy-password"})
	require.NoError(t, err)
	assert.True(t, out.Success)

	// The record was upgraded to a real hash on the way through.
	cred, err := env.credentials.FindByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "legacy-password", cred.PasswordHash)

	// And the same password still works against the upgraded record.
	require.NoError(t, env.auth.Logout(ctx))
	again, err := env.auth.Login(ctx, usecase.LoginInput{Email: "legacy@example.com", Password: "legacy-password"})
	require.NoError(t, err)
	assert.True(t, again.Success)
}

func TestAuthService_Login_MustChangeGate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "fresh@example.com", "temp-password", func(u *entity.User) {
		u.MustChangePassword = true
	})

	out, err := env.auth.Login(ctx, usecase.LoginInput{Email: "fresh@example.com", Password: "temp-password"})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.True(t, out.MustChangePassword)
	require.NotNil(t, out.User)
	assert.Equal(t, "fresh@example.com", out.User.Email)

	// No session yet.
	session, err := env.sessionUC.Validate(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)

	// Completing the change issues the session.
	ok, err := env.auth.ChangePassword(ctx, usecase.ChangePasswordInput{
		CurrentPassword: "temp-password",
		NewPassword:     "a-much-better-password",
	})
	require.NoError(t, err)
	assert.True(t, ok)

	session, err = env.sessionUC.Validate(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)

	// The flag is cleared, so the next login goes straight through.
	require.NoError(t, env.auth.Logout(ctx))
	next, err := env.auth.Login(ctx, usecase.LoginInput{Email: "fresh@example.com", Password: "a-much-better-password"})
	require.NoError(t, err)
	assert.True(t, next.Success)
}

func TestAuthService_Login_MustChangeGateBeforeTwoFactor(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.seedUser(t, "carol@example.com", "temp-password", func(u *entity.User) {
		u.MustChangePassword = true
		u.TwoFactorEnabled = true
	})

	secret, _, err := env.auth.totp.GenerateSecret(user.Email)
	require.NoError(t, err)
	require.NoError(t, env.twoFactor.Save(ctx, &entity.TwoFactorEnrollment{
		UserID:     user.ID,
		Secret:     secret,
		EnrolledAt: time.Now(),
	}))

	// With both flags set, the password-change gate comes first.
	out, err := env.auth.Login(ctx, usecase.LoginInput{Email: "carol@example.com", Password: "temp-password"})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.True(t, out.MustChangePassword)
	assert.False(t, out.RequiresTwoFactor)

	session, err := env.sessionUC.Validate(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)

	// Completing the change routes to the two-factor gate, not a session.
	ok, err := env.auth.ChangePassword(ctx, usecase.ChangePasswordInput{
		CurrentPassword: "temp-password",
		NewPassword:     "a-much-better-password",
	})
	require.NoError(t, err)
	assert.True(t, ok)

	session, err = env.sessionUC.Validate(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	ok, err = env.auth.VerifyTwoFactor(ctx, code, false)
	require.NoError(t, err)
	assert.True(t, ok)

	session, err = env.sessionUC.Validate(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, user.ID, session.UserID)
}

func TestAuthService_ChangePassword_RequiresPendingStateOrSession(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.auth.ChangePassword(ctx, usecase.ChangePasswordInput{
		CurrentPassword: "x",
		NewPassword:     "y-long-enough",
	})
	assert.Error(t, err)
}

func TestAuthService_ChangePassword_AuthenticatedUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "alice@example.com", "correct-password")

	out, err := env.auth.Login(ctx, usecase.LoginInput{Email: "alice@example.com", Password: "correct-password"})
	require.NoError(t, err)
	require.True(t, out.Success)

	before, err := env.sessionUC.Validate(ctx)
	require.NoError(t, err)
	require.NotNil(t, before)

	// A wrong current password is rejected without an error.
	ok, err := env.auth.ChangePassword(ctx, usecase.ChangePasswordInput{
		CurrentPassword: "not-the-password",
		NewPassword:     "a-much-better-password",
	})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = env.auth.ChangePassword(ctx, usecase.ChangePasswordInput{
		CurrentPassword: "correct-password",
		NewPassword:     "a-much-better-password",
	})
	require.NoError(t, err)
	assert.True(t, ok)

	// The live session is untouched.
	after, err := env.sessionUC.Validate(ctx)
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Equal(t, before.ID, after.ID)

	// Only the new password works from here on.
	require.NoError(t, env.auth.Logout(ctx))
	old, err := env.auth.Login(ctx, usecase.LoginInput{Email: "alice@example.com", Password: "correct-password"})
	require.NoError(t, err)
	assert.False(t, old.Success)
	next, err := env.auth.Login(ctx, usecase.LoginInput{Email: "alice@example.com", Password: "a-much-better-password"})
	require.NoError(t, err)
	assert.True(t, next.Success)
}

func TestAuthService_TwoFactorGate_AuthenticatorPath(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.seedUser(t, "alice@example.com", "correct-password", func(u *entity.User) {
		u.TwoFactorEnabled = true
	})

	secret, _, err := env.auth.totp.GenerateSecret(user.Email)
	require.NoError(t, err)
	require.NoError(t, env.twoFactor.Save(ctx, &entity.TwoFactorEnrollment{
		UserID:      user.ID,
		Secret:      secret,
		BackupCodes: []string{"AAAA1111"},
		EnrolledAt:  time.Now(),
	}))

	out, err := env.auth.Login(ctx, usecase.LoginInput{Email: "alice@example.com", Password: "correct-password"})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.True(t, out.RequiresTwoFactor)
	require.NotNil(t, out.User)
	assert.Equal(t, user.ID, out.User.ID)

	// A wrong code fails without issuing a session.
	ok, err := env.auth.VerifyTwoFactor(ctx, "000000", false)
	require.NoError(t, err)
	assert.False(t, ok)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	ok, err = env.auth.VerifyTwoFactor(ctx, code, false)
	require.NoError(t, err)
	assert.True(t, ok)

	session, err := env.sessionUC.Validate(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, user.ID, session.UserID)
}

func TestAuthService_TwoFactorGate_BackupCodeSingleUse(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.seedUser(t, "alice@example.com", "correct-password", func(u *entity.User) {
		u.TwoFactorEnabled = true
	})

	secret, _, err := env.auth.totp.GenerateSecret(user.Email)
	require.NoError(t, err)
	require.NoError(t, env.twoFactor.Save(ctx, &entity.TwoFactorEnrollment{
		UserID:      user.ID,
		Secret:      secret,
		BackupCodes: []string{"AAAA1111", "BBBB2222"},
		EnrolledAt:  time.Now(),
	}))

	_, err = env.auth.Login(ctx, usecase.LoginInput{Email: "alice@example.com", Password: "correct-password"})
	require.NoError(t, err)

	// Codes are accepted case-insensitively and with surrounding space.
	ok, err := env.auth.VerifyTwoFactor(ctx, "  aaaa1111 ", true)
	require.NoError(t, err)
	assert.True(t, ok)

	// The consumed code is gone from the stored set.
	enrollment, err := env.twoFactor.FindByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"BBBB2222"}, enrollment.BackupCodes)

	// Replaying it on a later login fails.
	require.NoError(t, env.auth.Logout(ctx))
	_, err = env.auth.Login(ctx, usecase.LoginInput{Email: "alice@example.com", Password: "correct-password"})
	require.NoError(t, err)

	ok, err = env.auth.VerifyTwoFactor(ctx, "AAAA1111", true)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthService_VerifyTwoFactor_WithoutPendingLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.auth.VerifyTwoFactor(ctx, "123456", false)
	assert.ErrorIs(t, err, domainerrors.ErrTwoFactorNotPending)
}

func TestAuthService_ResetPassword_NeverDisclosesAccounts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "alice@example.com", "correct-password")

	known, err := env.auth.ResetPassword(ctx, "alice@example.com")
	require.NoError(t, err)
	unknown, err := env.auth.ResetPassword(ctx, "nobody@example.com")
	require.NoError(t, err)

	assert.True(t, known)
	assert.True(t, unknown)

	// Exactly one mail went out, for the real account.
	assert.Len(t, env.mail.resetURLs, 1)
	assert.Contains(t, env.mail.resetURLs[0], "https://procure.example.com/reset-password?token=")
}

func TestAuthService_ResetPassword_MalformedAddress(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	ok, err := env.auth.ResetPassword(ctx, "not-an-email")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, env.mail.resetURLs)
}

func TestAuthService_ResetPassword_MailFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "alice@example.com", "correct-password")
	env.mail.failReset = true

	ok, err := env.auth.ResetPassword(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthService_UpdatePassword_FullResetFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "alice@example.com", "old-password")

	ok, err := env.auth.ResetPassword(ctx, "alice@example.com")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, env.mail.resetURLs, 1)

	token := env.mail.resetURLs[0][strings.Index(env.mail.resetURLs[0], "token=")+len("token="):]

	ok, err = env.auth.UpdatePassword(ctx, usecase.UpdatePasswordInput{Token: token, NewPassword: "brand-new-password"})
	require.NoError(t, err)
	assert.True(t, ok)

	// The token is single use.
	_, err = env.auth.UpdatePassword(ctx, usecase.UpdatePasswordInput{Token: token, NewPassword: "another-password"})
	assert.ErrorIs(t, err, domainerrors.ErrResetLinkInvalid)

	// Old password dead, new password live.
	old, err := env.auth.Login(ctx, usecase.LoginInput{Email: "alice@example.com", Password: "old-password"})
	require.NoError(t, err)
	assert.False(t, old.Success)

	fresh, err := env.auth.Login(ctx, usecase.LoginInput{Email: "alice@example.com", Password: "brand-new-password"})
	require.NoError(t, err)
	assert.True(t, fresh.Success)
}

func TestAuthService_UpdatePassword_ExpiredTokenEvicted(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.seedUser(t, "alice@example.com", "old-password")

	require.NoError(t, env.resetTokens.Create(ctx, &entity.ResetToken{
		Token:     "stale-token",
		Email:     user.Email,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	_, err := env.auth.UpdatePassword(ctx, usecase.UpdatePasswordInput{Token: "stale-token", NewPassword: "brand-new-password"})
	assert.ErrorIs(t, err, domainerrors.ErrResetLinkInvalid)

	// Lazy eviction removed the record.
	_, err = env.resetTokens.FindByToken(ctx, "stale-token")
	assert.ErrorIs(t, err, repository.ErrResetTokenNotFound)
}

func TestAuthService_ValidateResetToken(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.seedUser(t, "alice@example.com", "old-password")

	// Unknown token.
	ok, err := env.auth.ValidateResetToken(ctx, "no-such-token")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, env.resetTokens.Create(ctx, &entity.ResetToken{
		Token:     "live-token",
		Email:     user.Email,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	// A live token checks out and is not consumed.
	ok, err = env.auth.ValidateResetToken(ctx, "live-token")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = env.auth.ValidateResetToken(ctx, "live-token")
	require.NoError(t, err)
	assert.True(t, ok)

	// An expired token reports invalid and is evicted.
	require.NoError(t, env.resetTokens.Create(ctx, &entity.ResetToken{
		Token:     "stale-token",
		Email:     user.Email,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	ok, err = env.auth.ValidateResetToken(ctx, "stale-token")
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = env.resetTokens.FindByToken(ctx, "stale-token")
	assert.ErrorIs(t, err, repository.ErrResetTokenNotFound)
}

func TestAuthService_CurrentUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.seedUser(t, "alice@example.com", "correct-password")

	// No session yet.
	current, err := env.auth.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	_, err = env.auth.Login(ctx, usecase.LoginInput{Email: "alice@example.com", Password: "correct-password"})
	require.NoError(t, err)

	current, err = env.auth.CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, user.ID, current.ID)

	require.NoError(t, env.auth.Logout(ctx))

	current, err = env.auth.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
}
