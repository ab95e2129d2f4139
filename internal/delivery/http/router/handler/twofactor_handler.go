package handler

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"procure/internal/delivery/http/middleware"
	"procure/internal/delivery/http/response"
	"procure/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// TwoFactorHandler holds dependencies for enrollment handlers.
type TwoFactorHandler struct {
	uc     usecase.TwoFactorUsecase
	logger *slog.Logger
}

// NewTwoFactorHandler is the constructor for TwoFactorHandler, injected by Fx.
func NewTwoFactorHandler(uc usecase.TwoFactorUsecase, logger *slog.Logger) *TwoFactorHandler {
	return &TwoFactorHandler{uc: uc, logger: logger}
}

type enrollmentResponse struct {
	Secret      string   `json:"secret"`
	OTPAuthURL  string   `json:"otpauthUrl"`
	QRCodePNG   string   `json:"qrcodePng"` // base64-encoded image for inline display
	BackupCodes []string `json:"backupCodes"`
}

// Begin starts enrollment for the authenticated account.
func (h *TwoFactorHandler) Begin(c echo.Context) error {
	userID, ok := c.Get(middleware.KeyUserID).(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "SESSION_EXPIRED", "Your session has expired. Please log in again.")
	}

	output, err := h.uc.Begin(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, enrollmentResponse{
		Secret:      output.Secret,
		OTPAuthURL:  output.OTPAuthURL,
		QRCodePNG:   base64.StdEncoding.EncodeToString(output.QRCodePNG),
		BackupCodes: output.BackupCodes,
	}, "Scan the QR code with your authenticator app")
}

type confirmEnrollmentRequest struct {
	Secret      string   `json:"secret" validate:"required"`
	BackupCodes []string `json:"backupCodes" validate:"required"`
	Code        string   `json:"code" validate:"required"`
}

// Confirm verifies the first authenticator code and persists the enrollment.
func (h *TwoFactorHandler) Confirm(c echo.Context) error {
	userID, ok := c.Get(middleware.KeyUserID).(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "SESSION_EXPIRED", "Your session has expired. Please log in again.")
	}

	var input confirmEnrollmentRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid enrollment input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	if err := h.uc.Confirm(c.Request().Context(), userID, input.Secret, input.BackupCodes, input.Code); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Two-factor authentication enabled")
}

// Disable removes the enrollment for the authenticated account.
func (h *TwoFactorHandler) Disable(c echo.Context) error {
	userID, ok := c.Get(middleware.KeyUserID).(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "SESSION_EXPIRED", "Your session has expired. Please log in again.")
	}

	if err := h.uc.Disable(c.Request().Context(), userID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Two-factor authentication disabled")
}
