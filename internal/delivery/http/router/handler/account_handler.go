package handler

import (
	"log/slog"
	"net/http"

	"procure/internal/delivery/http/response"
	"procure/internal/domain/entity"
	"procure/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AccountHandler holds dependencies for account lifecycle handlers.
type AccountHandler struct {
	uc     usecase.AccountUsecase
	logger *slog.Logger
}

// NewAccountHandler is the constructor for AccountHandler, injected by Fx.
func NewAccountHandler(uc usecase.AccountUsecase, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{uc: uc, logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Register handles self-service registration. The account lands in the
// pending queue until an admin reviews it.
func (h *AccountHandler) Register(c echo.Context) error {
	var input registerRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	user, err := h.uc.Register(c.Request().Context(), usecase.RegisterInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, user,
		"Registration received. You will be notified once an admin has reviewed it.")
}

type createUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin user"`
}

// CreateUser provisions an account directly (admin only).
func (h *AccountHandler) CreateUser(c echo.Context) error {
	var input createUserRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid account input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	user, err := h.uc.CreateUser(c.Request().Context(), usecase.CreateUserInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Role:     entity.Role(input.Role),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, user, "Account created")
}

// List returns every live account (admin only).
func (h *AccountHandler) List(c echo.Context) error {
	users, err := h.uc.ListUsers(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, users, "")
}

// ListPending returns accounts awaiting review (admin only).
func (h *AccountHandler) ListPending(c echo.Context) error {
	users, err := h.uc.ListPending(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, users, "")
}

// Approve approves a pending account (admin only).
func (h *AccountHandler) Approve(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	if err := h.uc.Approve(c.Request().Context(), id); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Account approved")
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// Reject rejects a pending account (admin only).
func (h *AccountHandler) Reject(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	var input rejectRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid rejection input")
	}

	if err := h.uc.Reject(c.Request().Context(), id, input.Reason); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Account rejected")
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin user"`
}

// UpdateRole changes an account's role (admin only).
func (h *AccountHandler) UpdateRole(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	var input updateRoleRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid role input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	if err := h.uc.UpdateRole(c.Request().Context(), id, entity.Role(input.Role)); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Role updated")
}

// Remove soft-deletes an account (admin only).
func (h *AccountHandler) Remove(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	if err := h.uc.Remove(c.Request().Context(), id); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Account removed")
}

func parseUserID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid account id")
	}

	return id, nil
}
