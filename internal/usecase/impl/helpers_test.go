package impl

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"procure/config"
	"procure/internal/domain/entity"
	"procure/internal/domain/repository"
	"procure/internal/infra/auth"
	"procure/internal/infra/persistence/local"
	"procure/internal/infra/qrcode"
	"procure/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// recordingMail captures outbound mail instead of sending it.
type recordingMail struct {
	resetURLs []string
	approved  []string
	rejected  []string
	failReset bool
}

func (m *recordingMail) SendPasswordReset(_ context.Context, _, resetURL string) error {
	if m.failReset {
		return errors.New("mail relay down")
	}
	m.resetURLs = append(m.resetURLs, resetURL)

	return nil
}

func (m *recordingMail) SendAccountApproved(_ context.Context, email, _ string) error {
	m.approved = append(m.approved, email)

	return nil
}

func (m *recordingMail) SendAccountRejected(_ context.Context, email, _, _ string) error {
	m.rejected = append(m.rejected, email)

	return nil
}

// testEnv wires real repositories over a throwaway JSON store together with
// the real hasher and TOTP implementation.
type testEnv struct {
	cfg         *config.Config
	store       *local.Store
	users       repository.UserRepository
	credentials repository.CredentialRepository
	twoFactor   repository.TwoFactorRepository
	resetTokens repository.ResetTokenRepository
	mail        *recordingMail

	sessions  *sessionService
	auth      *authService
	enroll    *twoFactorService
	accounts  *accountService
	sessionUC usecase.SessionUsecase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := local.NewStore(filepath.Join(t.TempDir(), "procure.json"))
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.App.BaseURL = "https://procure.example.com"
	cfg.Auth = &config.AuthConfig{
		SessionDuration: 8 * time.Hour,
		ResetTokenTTL:   24 * time.Hour,
		TOTPIssuer:      "ProcurementSystem",
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mail := &recordingMail{}

	users := local.NewUserRepository(store)
	credentials := local.NewCredentialRepository(store)
	twoFactorRepo := local.NewTwoFactorRepository(store)
	resetTokens := local.NewResetTokenRepository(store)

	hasher := auth.NewPBKDF2Hasher()
	totpService := auth.NewTOTPService(cfg.Auth.TOTPIssuer)
	qrService := qrcode.NewQRCodeService(128, "M")

	sessions := NewSessionService(local.NewSessionRepository(store), cfg, logger).(*sessionService)
	authSvc := NewAuthService(
		users, credentials, twoFactorRepo, resetTokens,
		sessions, hasher, totpService, mail, cfg, logger,
	).(*authService)
	enroll := NewTwoFactorService(users, twoFactorRepo, totpService, qrService, logger).(*twoFactorService)
	accounts := NewAccountService(users, credentials, hasher, mail, logger).(*accountService)

	return &testEnv{
		cfg:         cfg,
		store:       store,
		users:       users,
		credentials: credentials,
		twoFactor:   twoFactorRepo,
		resetTokens: resetTokens,
		mail:        mail,
		sessions:    sessions,
		auth:        authSvc,
		enroll:      enroll,
		accounts:    accounts,
		sessionUC:   sessions,
	}
}

// seedUser creates an approved account with a properly hashed password.
func (env *testEnv) seedUser(t *testing.T, email, password string, mutate ...func(*entity.User)) *entity.User {
	t.Helper()

	ctx := context.Background()
	now := time.Now()
	user := &entity.User{
		ID:        uuid.New(),
		Name:      "Seeded User",
		Email:     email,
		Role:      entity.RoleUser,
		Status:    entity.StatusApproved,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, fn := range mutate {
		fn(user)
	}
	require.NoError(t, env.users.Create(ctx, user))

	blob, err := auth.NewPBKDF2Hasher().Hash(password)
	require.NoError(t, err)
	require.NoError(t, env.credentials.Upsert(ctx, &entity.Credential{
		UserID:       user.ID,
		PasswordHash: blob,
		UpdatedAt:    now,
	}))

	return user
}
