package impl

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"strings"
	"sync"
	"time"

	"procure/config"
	deliverycontext "procure/internal/delivery/context"
	"procure/internal/domain/entity"
	domainerrors "procure/internal/domain/errors"
	"procure/internal/domain/repository"
	"procure/internal/domain/service"
	"procure/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

const resetTokenBytes = 32

// authService implements the AuthUsecase interface. It owns the login state
// machine: between a correct password and an issued session a login can halt
// at the must-change gate or the two-factor gate, tracked by the in-memory
// pending markers. At most one marker is non-nil at a time.
type authService struct {
	users       repository.UserRepository
	credentials repository.CredentialRepository
	twoFactor   repository.TwoFactorRepository
	resetTokens repository.ResetTokenRepository
	sessions    usecase.SessionUsecase
	hasher      service.PasswordHasher
	totp        service.TwoFactorService
	mail        service.MailSender
	cfg         *config.Config
	logger      *slog.Logger
	validate    *validator.Validate

	mu                    sync.Mutex
	pendingTwoFactor      *entity.User
	pendingPasswordChange *entity.User

	now func() time.Time
}

// NewAuthService is the constructor for authService.
func NewAuthService(
	users repository.UserRepository,
	credentials repository.CredentialRepository,
	twoFactor repository.TwoFactorRepository,
	resetTokens repository.ResetTokenRepository,
	sessions usecase.SessionUsecase,
	hasher service.PasswordHasher,
	totp service.TwoFactorService,
	mail service.MailSender,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.AuthUsecase {
	return &authService{
		users:       users,
		credentials: credentials,
		twoFactor:   twoFactor,
		resetTokens: resetTokens,
		sessions:    sessions,
		hasher:      hasher,
		totp:        totp,
		mail:        mail,
		cfg:         cfg,
		logger:      logger,
		validate:    validator.New(),
		now:         time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Login runs the gates in order: account lookup, approval status, password,
// must-change, two-factor. Only when every gate passes is a session issued.
// Unknown accounts and wrong passwords produce the same generic message;
// pending and rejected accounts get their specific ones.
func (srv *authService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginOutput, error) {
	srv.clearPending()

	failure := &usecase.LoginOutput{Message: domainerrors.ErrInvalidCredentials.Message()}

	user, err := srv.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return failure, nil
		}

		return nil, errors.Wrap(err, "find user by email")
	}

	switch user.Status {
	case entity.StatusPending:
		return &usecase.LoginOutput{Message: domainerrors.ErrAccountPending.Message()}, nil
	case entity.StatusRejected:
		return &usecase.LoginOutput{Message: domainerrors.ErrAccountRejected.Message()}, nil
	case entity.StatusApproved:
	default:
		return failure, nil
	}

	ok, err := srv.verifyCredential(ctx, user, input.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		srv.log(ctx).Info("Login failed, bad password", slog.String("email", input.Email))

		return failure, nil
	}

	if user.MustChangePassword {
		srv.setPendingPasswordChange(user)
		srv.log(ctx).Info("Login halted at password-change gate", slog.Any("user_id", user.ID))

		return &usecase.LoginOutput{
			Success:            true,
			MustChangePassword: true,
			User:               user,
			Message:            "You must change your password before continuing.",
		}, nil
	}

	if user.TwoFactorEnabled {
		srv.setPendingTwoFactor(user)
		srv.log(ctx).Info("Login halted at two-factor gate", slog.Any("user_id", user.ID))

		return &usecase.LoginOutput{
			Success:           true,
			RequiresTwoFactor: true,
			User:              user,
			Message:           "Enter the code from your authenticator app.",
		}, nil
	}

	if _, err := srv.sessions.Create(ctx, user.ID, user.Email); err != nil {
		return nil, err
	}
	srv.log(ctx).Info("Login succeeded", slog.Any("user_id", user.ID))

	return &usecase.LoginOutput{Success: true, User: user}, nil
}

// verifyCredential checks the submitted password against the stored blob.
// Records predating hashing hold the verbatim password; a match there
// upgrades the record to a real hash before the login proceeds.
func (srv *authService) verifyCredential(ctx context.Context, user *entity.User, password string) (bool, error) {
	cred, err := srv.credentials.FindByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return false, nil
		}

		return false, errors.Wrap(err, "find credential")
	}

	if srv.hasher.Check(password, cred.PasswordHash) {
		return true, nil
	}

	// Legacy plaintext record: verbatim match, then migrate on read.
	if cred.PasswordHash == password {
		blob, err := srv.hasher.Hash(password)
		if err != nil {
			return false, errors.Wrap(err, "rehash legacy credential")
		}
		if err := srv.credentials.Upsert(ctx, &entity.Credential{
			UserID:       user.ID,
			PasswordHash: blob,
			UpdatedAt:    srv.now(),
		}); err != nil {
			return false, errors.Wrap(err, "persist migrated credential")
		}
		srv.log(ctx).Info("Migrated legacy plaintext credential", slog.Any("user_id", user.ID))

		return true, nil
	}

	return false, nil
}

// VerifyTwoFactor completes a login halted at the two-factor gate. The
// backup path consumes the matched code permanently before the session is
// issued; the authenticator path is a pure TOTP check.
func (srv *authService) VerifyTwoFactor(ctx context.Context, code string, isBackupCode bool) (bool, error) {
	user := srv.getPendingTwoFactor()
	if user == nil {
		return false, domainerrors.ErrTwoFactorNotPending
	}

	enrollment, err := srv.twoFactor.FindByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrEnrollmentNotFound) {
			return false, domainerrors.ErrTwoFactorInvalid
		}

		return false, errors.Wrap(err, "find two-factor enrollment")
	}

	if isBackupCode {
		canonical := strings.ToUpper(strings.TrimSpace(code))
		if !enrollment.ConsumeBackupCode(canonical) {
			return false, nil
		}
		if err := srv.twoFactor.Save(ctx, enrollment); err != nil {
			return false, errors.Wrap(err, "persist consumed backup code")
		}
		srv.log(ctx).Info("Backup code consumed", slog.Any("user_id", user.ID), slog.Int("remaining", len(enrollment.BackupCodes)))
	} else if !srv.totp.VerifyCode(enrollment.Secret, code) {
		return false, nil
	}

	if _, err := srv.sessions.Create(ctx, user.ID, user.Email); err != nil {
		return false, err
	}
	srv.clearPending()
	srv.log(ctx).Info("Two-factor verification succeeded", slog.Any("user_id", user.ID))

	return true, nil
}

// ChangePassword operates against the must-change gate when one is pending,
// otherwise against the currently authenticated user. Completing the gate
// resumes the login (straight to a session or on to the two-factor gate); a
// routine change for a logged-in user leaves the session alone.
func (srv *authService) ChangePassword(ctx context.Context, input usecase.ChangePasswordInput) (bool, error) {
	pending := srv.getPendingPasswordChange()

	user := pending
	if user == nil {
		current, err := srv.CurrentUser(ctx)
		if err != nil {
			return false, err
		}
		if current == nil {
			return false, domainerrors.ErrForbidden.WithDetails("no password change is in progress")
		}
		user = current
	}

	if err := srv.validate.Var(input.NewPassword, "required,min=8"); err != nil {
		return false, domainerrors.ErrValidationFailed.WithDetails("password must be at least 8 characters")
	}

	ok, err := srv.verifyCredential(ctx, user, input.CurrentPassword)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	if err := srv.writePassword(ctx, user, input.NewPassword); err != nil {
		return false, err
	}

	if pending == nil {
		return true, nil
	}

	if user.TwoFactorEnabled {
		srv.setPendingTwoFactor(user)

		return true, nil
	}

	srv.clearPending()
	if _, err := srv.sessions.Create(ctx, user.ID, user.Email); err != nil {
		return false, err
	}

	return true, nil
}

// ResetPassword requests a reset email. The return value deliberately does
// not reveal whether the address belongs to an account; only a malformed
// address or a mail delivery failure reports false.
func (srv *authService) ResetPassword(ctx context.Context, email string) (bool, error) {
	if err := srv.validate.Var(email, "required,email"); err != nil {
		return false, nil
	}

	user, err := srv.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Info("Reset requested for unknown address")

			return true, nil
		}

		return false, errors.Wrap(err, "find user by email")
	}

	token, err := generateToken()
	if err != nil {
		return false, err
	}

	record := &entity.ResetToken{
		Token:     token,
		Email:     user.Email,
		UserID:    user.ID,
		ExpiresAt: srv.now().Add(srv.cfg.Auth.ResetTokenTTL),
	}
	if err := srv.resetTokens.Create(ctx, record); err != nil {
		return false, errors.Wrap(err, "store reset token")
	}

	resetURL := strings.TrimRight(srv.cfg.App.BaseURL, "/") + "/reset-password?token=" + token
	if err := srv.mail.SendPasswordReset(ctx, user.Email, resetURL); err != nil {
		srv.log(ctx).Error("Reset mail delivery failed", slog.Any("error", err))

		return false, nil
	}
	srv.log(ctx).Info("Reset mail sent", slog.Any("user_id", user.ID))

	return true, nil
}

// ValidateResetToken checks a reset link without consuming it. Expired
// tokens are evicted here just as they are on use.
func (srv *authService) ValidateResetToken(ctx context.Context, token string) (bool, error) {
	record, err := srv.resetTokens.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrResetTokenNotFound) {
			return false, nil
		}

		return false, errors.Wrap(err, "find reset token")
	}

	if record.ExpiredAt(srv.now()) {
		if err := srv.resetTokens.Delete(ctx, record.Token); err != nil {
			return false, errors.Wrap(err, "evict expired reset token")
		}

		return false, nil
	}

	return true, nil
}

// UpdatePassword performs the password write authorized by a reset token.
// Expired tokens are evicted on lookup; a used token is consumed so the same
// link can never authorize a second write.
func (srv *authService) UpdatePassword(ctx context.Context, input usecase.UpdatePasswordInput) (bool, error) {
	record, err := srv.resetTokens.FindByToken(ctx, input.Token)
	if err != nil {
		if errors.Is(err, repository.ErrResetTokenNotFound) {
			return false, domainerrors.ErrResetLinkInvalid
		}

		return false, errors.Wrap(err, "find reset token")
	}

	if record.ExpiredAt(srv.now()) {
		if err := srv.resetTokens.Delete(ctx, record.Token); err != nil {
			return false, errors.Wrap(err, "evict expired reset token")
		}

		return false, domainerrors.ErrResetLinkInvalid
	}

	if err := srv.validate.Var(input.NewPassword, "required,min=8"); err != nil {
		return false, domainerrors.ErrValidationFailed.WithDetails("password must be at least 8 characters")
	}

	user, err := srv.users.FindByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, domainerrors.ErrResetLinkInvalid
		}

		return false, errors.Wrap(err, "find user for reset token")
	}

	if err := srv.writePassword(ctx, user, input.NewPassword); err != nil {
		return false, err
	}

	if err := srv.resetTokens.Delete(ctx, record.Token); err != nil {
		return false, errors.Wrap(err, "consume reset token")
	}
	srv.log(ctx).Info("Password reset completed", slog.Any("user_id", user.ID))

	return true, nil
}

// writePassword hashes and stores the new password and clears the
// must-change flag if it was set.
func (srv *authService) writePassword(ctx context.Context, user *entity.User, password string) error {
	blob, err := srv.hasher.Hash(password)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	if err := srv.credentials.Upsert(ctx, &entity.Credential{
		UserID:       user.ID,
		PasswordHash: blob,
		UpdatedAt:    srv.now(),
	}); err != nil {
		return errors.Wrap(err, "store credential")
	}

	if user.MustChangePassword {
		user.MustChangePassword = false
		user.UpdatedAt = srv.now()
		if err := srv.users.Update(ctx, user); err != nil {
			return errors.Wrap(err, "clear must-change flag")
		}
	}

	return nil
}

// Logout clears the session slot and abandons any half-finished login.
func (srv *authService) Logout(ctx context.Context) error {
	srv.clearPending()

	return srv.sessions.Clear(ctx)
}

// CurrentUser resolves the account owning the live session. No session means
// (nil, nil), not an error.
func (srv *authService) CurrentUser(ctx context.Context) (*entity.User, error) {
	session, err := srv.sessions.Validate(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	user, err := srv.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Account removed out from under its session; drop the session.
			if err := srv.sessions.Clear(ctx); err != nil {
				return nil, err
			}

			return nil, nil
		}

		return nil, errors.Wrap(err, "find session user")
	}

	return user, nil
}

func (srv *authService) setPendingTwoFactor(user *entity.User) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	srv.pendingTwoFactor = user
	srv.pendingPasswordChange = nil
}

func (srv *authService) setPendingPasswordChange(user *entity.User) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	srv.pendingPasswordChange = user
	srv.pendingTwoFactor = nil
}

func (srv *authService) getPendingTwoFactor() *entity.User {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	return srv.pendingTwoFactor
}

func (srv *authService) getPendingPasswordChange() *entity.User {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	return srv.pendingPasswordChange
}

func (srv *authService) clearPending() {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	srv.pendingTwoFactor = nil
	srv.pendingPasswordChange = nil
}

// generateToken returns an unguessable URL-safe token for reset links.
func generateToken() (string, error) {
	raw := make([]byte, resetTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Wrap(err, "generate reset token")
	}

	return base64.RawURLEncoding.EncodeToString(raw), nil
}
