package impl

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	domainerrors "procure/internal/domain/errors"
	"procure/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var backupCodePattern = regexp.MustCompile(`^[0-9A-Z]{8}$`)

func TestTwoFactorService_Begin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.seedUser(t, "alice@example.com", "correct-password")

	out, err := env.enroll.Begin(ctx, user.ID)
	require.NoError(t, err)

	assert.NotEmpty(t, out.Secret)
	assert.True(t, strings.HasPrefix(out.OTPAuthURL, "otpauth://totp/"))
	assert.NotEmpty(t, out.QRCodePNG)

	require.Len(t, out.BackupCodes, 10)
	seen := map[string]bool{}
	for _, code := range out.BackupCodes {
		assert.Regexp(t, backupCodePattern, code)
		assert.False(t, seen[code], "backup codes must be unique")
		seen[code] = true
	}

	// Nothing persisted yet.
	_, err = env.twoFactor.FindByUserID(ctx, user.ID)
	assert.ErrorIs(t, err, repository.ErrEnrollmentNotFound)
}

func TestTwoFactorService_Begin_UnknownUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.enroll.Begin(ctx, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestTwoFactorService_ConfirmAndDisable(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.seedUser(t, "alice@example.com", "correct-password")

	out, err := env.enroll.Begin(ctx, user.ID)
	require.NoError(t, err)

	// A wrong first code rejects the enrollment and flags nothing.
	err = env.enroll.Confirm(ctx, user.ID, out.Secret, out.BackupCodes, "000000")
	assert.ErrorIs(t, err, domainerrors.ErrTwoFactorInvalid)

	code, err := totp.GenerateCode(out.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, env.enroll.Confirm(ctx, user.ID, out.Secret, out.BackupCodes, code))

	enrollment, err := env.twoFactor.FindByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, out.Secret, enrollment.Secret)
	assert.Equal(t, out.BackupCodes, enrollment.BackupCodes)

	updated, err := env.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, updated.TwoFactorEnabled)

	require.NoError(t, env.enroll.Disable(ctx, user.ID))

	_, err = env.twoFactor.FindByUserID(ctx, user.ID)
	assert.ErrorIs(t, err, repository.ErrEnrollmentNotFound)

	updated, err = env.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, updated.TwoFactorEnabled)
}
