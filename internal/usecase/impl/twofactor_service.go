package impl

import (
	"context"
	"crypto/rand"
	"log/slog"
	"time"

	deliverycontext "procure/internal/delivery/context"
	"procure/internal/domain/entity"
	domainerrors "procure/internal/domain/errors"
	"procure/internal/domain/repository"
	"procure/internal/domain/service"
	"procure/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	backupCodeCount  = 10
	backupCodeLength = 8
	// Base36 alphabet, matching the format of historically issued codes.
	backupCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// twoFactorService implements the TwoFactorUsecase interface. Begin hands the
// client a draft enrollment; nothing touches the store until Confirm proves
// the authenticator was actually paired.
type twoFactorService struct {
	users     repository.UserRepository
	twoFactor repository.TwoFactorRepository
	totp      service.TwoFactorService
	qrcode    service.QRCodeService
	logger    *slog.Logger

	now func() time.Time
}

// NewTwoFactorService is the constructor for twoFactorService.
func NewTwoFactorService(
	users repository.UserRepository,
	twoFactor repository.TwoFactorRepository,
	totp service.TwoFactorService,
	qrcode service.QRCodeService,
	logger *slog.Logger,
) usecase.TwoFactorUsecase {
	return &twoFactorService{
		users:     users,
		twoFactor: twoFactor,
		totp:      totp,
		qrcode:    qrcode,
		logger:    logger,
		now:       time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *twoFactorService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Begin generates the draft enrollment: secret, provisioning URI, QR image
// and backup codes. The client holds these until Confirm.
func (srv *twoFactorService) Begin(ctx context.Context, userID uuid.UUID) (*usecase.EnrollmentOutput, error) {
	user, err := srv.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "find user for enrollment")
	}

	secret, uri, err := srv.totp.GenerateSecret(user.Email)
	if err != nil {
		return nil, err
	}

	png, err := srv.qrcode.EncodePNG(uri)
	if err != nil {
		return nil, errors.Wrap(err, "render enrollment QR code")
	}

	codes, err := generateBackupCodes()
	if err != nil {
		return nil, err
	}
	srv.log(ctx).Info("Two-factor enrollment started", slog.Any("user_id", userID))

	return &usecase.EnrollmentOutput{
		Secret:      secret,
		OTPAuthURL:  uri,
		QRCodePNG:   png,
		BackupCodes: codes,
	}, nil
}

// Confirm verifies the first authenticator code against the draft secret and
// persists the enrollment. An invalid code leaves the account untouched.
func (srv *twoFactorService) Confirm(ctx context.Context, userID uuid.UUID, secret string, backupCodes []string, code string) error {
	user, err := srv.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domainerrors.ErrUserNotFound
		}

		return errors.Wrap(err, "find user for enrollment")
	}

	if !srv.totp.VerifyCode(secret, code) {
		return domainerrors.ErrTwoFactorInvalid
	}

	if err := srv.twoFactor.Save(ctx, &entity.TwoFactorEnrollment{
		UserID:      userID,
		Secret:      secret,
		BackupCodes: backupCodes,
		EnrolledAt:  srv.now(),
	}); err != nil {
		return errors.Wrap(err, "store enrollment")
	}

	user.TwoFactorEnabled = true
	user.UpdatedAt = srv.now()
	if err := srv.users.Update(ctx, user); err != nil {
		return errors.Wrap(err, "flag account as enrolled")
	}
	srv.log(ctx).Info("Two-factor enrollment confirmed", slog.Any("user_id", userID))

	return nil
}

// Disable removes the enrollment and clears the account flag.
func (srv *twoFactorService) Disable(ctx context.Context, userID uuid.UUID) error {
	user, err := srv.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domainerrors.ErrUserNotFound
		}

		return errors.Wrap(err, "find user for disable")
	}

	if err := srv.twoFactor.Delete(ctx, userID); err != nil {
		return errors.Wrap(err, "remove enrollment")
	}

	user.TwoFactorEnabled = false
	user.UpdatedAt = srv.now()
	if err := srv.users.Update(ctx, user); err != nil {
		return errors.Wrap(err, "clear account flag")
	}
	srv.log(ctx).Info("Two-factor disabled", slog.Any("user_id", userID))

	return nil
}

// generateBackupCodes creates the single-use fallback codes handed out at
// enrollment, already canonicalized to uppercase.
func generateBackupCodes() ([]string, error) {
	codes := make([]string, 0, backupCodeCount)
	for range backupCodeCount {
		raw := make([]byte, backupCodeLength)
		if _, err := rand.Read(raw); err != nil {
			return nil, errors.Wrap(err, "generate backup code")
		}

		code := make([]byte, backupCodeLength)
		for i, b := range raw {
			code[i] = backupCodeAlphabet[int(b)%len(backupCodeAlphabet)]
		}
		codes = append(codes, string(code))
	}

	return codes, nil
}
