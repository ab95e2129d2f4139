package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	deliverycontext "procure/internal/delivery/context"
	"procure/internal/domain/entity"
	domainerrors "procure/internal/domain/errors"
	"procure/internal/domain/repository"
	"procure/internal/domain/service"
	"procure/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// accountService implements the AccountUsecase interface: self-service
// registration plus the admin lifecycle around it.
type accountService struct {
	users       repository.UserRepository
	credentials repository.CredentialRepository
	hasher      service.PasswordHasher
	mail        service.MailSender
	logger      *slog.Logger
	validate    *validator.Validate

	now func() time.Time
}

// NewAccountService is the constructor for accountService.
func NewAccountService(
	users repository.UserRepository,
	credentials repository.CredentialRepository,
	hasher service.PasswordHasher,
	mail service.MailSender,
	logger *slog.Logger,
) usecase.AccountUsecase {
	return &accountService{
		users:       users,
		credentials: credentials,
		hasher:      hasher,
		mail:        mail,
		logger:      logger,
		validate:    validator.New(),
		now:         time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a self-service account. It starts pending and cannot log
// in until an admin approves it.
func (srv *accountService) Register(ctx context.Context, input usecase.RegisterInput) (*entity.User, error) {
	user, err := srv.createAccount(ctx, input.Name, input.Email, input.Password, entity.RoleUser, entity.StatusPending, false)
	if err != nil {
		return nil, err
	}
	srv.log(ctx).Info("Account registered, awaiting approval", slog.Any("user_id", user.ID))

	return user, nil
}

// CreateUser provisions an account directly. Admin-created accounts skip the
// approval queue but must change their password on first login.
func (srv *accountService) CreateUser(ctx context.Context, input usecase.CreateUserInput) (*entity.User, error) {
	role := input.Role
	if !role.IsValid() {
		role = entity.RoleUser
	}

	user, err := srv.createAccount(ctx, input.Name, input.Email, input.Password, role, entity.StatusApproved, true)
	if err != nil {
		return nil, err
	}
	srv.log(ctx).Info("Account provisioned by admin", slog.Any("user_id", user.ID), slog.String("role", role.String()))

	return user, nil
}

func (srv *accountService) createAccount(
	ctx context.Context,
	name, email, password string,
	role entity.Role,
	status entity.Status,
	mustChangePassword bool,
) (*entity.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("name is required")
	}
	if err := srv.validate.Var(email, "required,email"); err != nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("a valid email address is required")
	}
	if err := srv.validate.Var(password, "required,min=8"); err != nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("password must be at least 8 characters")
	}

	now := srv.now()
	user := &entity.User{
		ID:                 uuid.New(),
		Name:               name,
		Email:              email,
		Role:               role,
		Status:             status,
		MustChangePassword: mustChangePassword,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := srv.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, domainerrors.ErrUserAlreadyExists
		}

		return nil, errors.Wrap(err, "create account")
	}

	blob, err := srv.hasher.Hash(password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	if err := srv.credentials.Upsert(ctx, &entity.Credential{
		UserID:       user.ID,
		PasswordHash: blob,
		UpdatedAt:    now,
	}); err != nil {
		return nil, errors.Wrap(err, "store credential")
	}

	return user, nil
}

// Approve moves a pending account to approved and notifies the holder.
// Mail failure does not undo the approval.
func (srv *accountService) Approve(ctx context.Context, id uuid.UUID) error {
	user, err := srv.findUser(ctx, id)
	if err != nil {
		return err
	}

	if err := srv.users.Approve(ctx, id); err != nil {
		return errors.Wrap(err, "approve account")
	}

	if err := srv.mail.SendAccountApproved(ctx, user.Email, user.Name); err != nil {
		srv.log(ctx).Warn("Approval mail delivery failed", slog.Any("user_id", id), slog.Any("error", err))
	}
	srv.log(ctx).Info("Account approved", slog.Any("user_id", id))

	return nil
}

// Reject moves a pending account to rejected and notifies the holder.
// Mail failure does not undo the rejection.
func (srv *accountService) Reject(ctx context.Context, id uuid.UUID, reason string) error {
	user, err := srv.findUser(ctx, id)
	if err != nil {
		return err
	}

	if err := srv.users.Reject(ctx, id); err != nil {
		return errors.Wrap(err, "reject account")
	}

	if err := srv.mail.SendAccountRejected(ctx, user.Email, user.Name, reason); err != nil {
		srv.log(ctx).Warn("Rejection mail delivery failed", slog.Any("user_id", id), slog.Any("error", err))
	}
	srv.log(ctx).Info("Account rejected", slog.Any("user_id", id))

	return nil
}

// ListUsers lists every live account.
func (srv *accountService) ListUsers(ctx context.Context) ([]*entity.User, error) {
	users, err := srv.users.FindAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list accounts")
	}

	return users, nil
}

// ListPending lists accounts awaiting review.
func (srv *accountService) ListPending(ctx context.Context) ([]*entity.User, error) {
	users, err := srv.users.FindPending(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list pending accounts")
	}

	return users, nil
}

// UpdateRole changes an account's role.
func (srv *accountService) UpdateRole(ctx context.Context, id uuid.UUID, role entity.Role) error {
	if !role.IsValid() {
		return domainerrors.ErrValidationFailed.WithDetails("unknown role")
	}

	user, err := srv.findUser(ctx, id)
	if err != nil {
		return err
	}

	user.Role = role
	user.UpdatedAt = srv.now()
	if err := srv.users.Update(ctx, user); err != nil {
		return errors.Wrap(err, "update role")
	}
	srv.log(ctx).Info("Role updated", slog.Any("user_id", id), slog.String("role", role.String()))

	return nil
}

// Remove soft-deletes an account. The record survives for auditing but the
// account disappears from every listing and can never authenticate.
func (srv *accountService) Remove(ctx context.Context, id uuid.UUID) error {
	if err := srv.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domainerrors.ErrUserNotFound
		}

		return errors.Wrap(err, "remove account")
	}
	srv.log(ctx).Info("Account removed", slog.Any("user_id", id))

	return nil
}

func (srv *accountService) findUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := srv.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "find account")
	}

	return user, nil
}
