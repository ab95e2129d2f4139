// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"

	"procure/internal/delivery/http/response"
	"procure/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthHandler holds dependencies for authentication handlers.
type AuthHandler struct {
	uc     usecase.AuthUsecase
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthUsecase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Success            bool   `json:"success"`
	MustChangePassword bool   `json:"mustChangePassword"`
	RequiresTwoFactor  bool   `json:"requiresTwoFactor"`
	SessionUser        any    `json:"user,omitempty"`
	Message            string `json:"message,omitempty"`
}

// Login handles the login request. Gate halts are 200s with flags, not
// errors: the client drives the next step from the body.
func (h *AuthHandler) Login(c echo.Context) error {
	var input loginRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	output, err := h.uc.Login(c.Request().Context(), usecase.LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	status := http.StatusOK
	if !output.Success {
		status = http.StatusUnauthorized
	}

	return c.JSON(status, loginResponse{
		Success:            output.Success,
		MustChangePassword: output.MustChangePassword,
		RequiresTwoFactor:  output.RequiresTwoFactor,
		SessionUser:        output.User,
		Message:            output.Message,
	})
}

type verifyTwoFactorRequest struct {
	Code         string `json:"code" validate:"required"`
	IsBackupCode bool   `json:"isBackupCode"`
}

// VerifyTwoFactor completes a login halted at the second-factor gate.
func (h *AuthHandler) VerifyTwoFactor(c echo.Context) error {
	var input verifyTwoFactorRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid verification input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	ok, err := h.uc.VerifyTwoFactor(c.Request().Context(), input.Code, input.IsBackupCode)
	if err != nil {
		return errors.WithStack(err)
	}
	if !ok {
		return response.Unauthorized(c, "TWO_FACTOR_INVALID", "Invalid verification code")
	}

	return response.Success(c, http.StatusOK, nil, "Verification successful")
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// ChangePassword completes a login halted at the must-change gate.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var input changePasswordRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid password change input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	ok, err := h.uc.ChangePassword(c.Request().Context(), usecase.ChangePasswordInput{
		CurrentPassword: input.CurrentPassword,
		NewPassword:     input.NewPassword,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	if !ok {
		return response.Unauthorized(c, "INVALID_CREDENTIALS", "Current password is incorrect")
	}

	return response.Success(c, http.StatusOK, nil, "Password changed")
}

type resetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPassword requests a reset email. The response never discloses
// whether the address belongs to an account.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var input resetPasswordRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid reset input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	ok, err := h.uc.ResetPassword(c.Request().Context(), input.Email)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]bool{"sent": ok},
		"If an account exists for that address, a reset link has been sent.")
}

// CheckResetToken lets the reset page report an invalid or expired link
// before the user types a new password. The token is not consumed.
func (h *AuthHandler) CheckResetToken(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return response.BindingError(c, "INVALID_INPUT", "Missing reset token")
	}

	ok, err := h.uc.ValidateResetToken(c.Request().Context(), token)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]bool{"valid": ok}, "")
}

type updatePasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// UpdatePassword performs the reset-token authorized password write.
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	var input updatePasswordRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid password input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	ok, err := h.uc.UpdatePassword(c.Request().Context(), usecase.UpdatePasswordInput{
		Token:       input.Token,
		NewPassword: input.NewPassword,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	if !ok {
		return response.BindingError(c, "RESET_FAILED", "Could not update the password")
	}

	return response.Success(c, http.StatusOK, nil, "Password updated. You can now log in.")
}

// Logout clears the session slot.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.uc.Logout(c.Request().Context()); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Logged out")
}

// Me returns the account owning the live session.
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := h.uc.CurrentUser(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}
	if user == nil {
		return response.Unauthorized(c, "SESSION_EXPIRED", "Your session has expired. Please log in again.")
	}

	return response.Success(c, http.StatusOK, user, "")
}
