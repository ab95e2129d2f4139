package middleware

import (
	"strings"

	"procure/internal/delivery/http/response"
	"procure/internal/domain/entity"
	"procure/internal/domain/repository"
	"procure/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Context keys set by the session middleware for handlers downstream.
const (
	KeyUserID  = "userID"
	KeySession = "session"
)

// SessionMiddleware authenticates requests against the single session slot.
// The client presents its opaque session ID as a bearer token; validation
// extends the sliding expiry as a side effect.
type SessionMiddleware struct {
	sessions usecase.SessionUsecase
	users    repository.UserRepository
}

// NewSessionMiddleware is the constructor for SessionMiddleware.
func NewSessionMiddleware(sessions usecase.SessionUsecase, users repository.UserRepository) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions, users: users}
}

// Authenticate validates the presented session ID against the live slot.
func (m *SessionMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "MISSING_SESSION", "Authorization header is missing")
		}

		sessionID := strings.TrimPrefix(authHeader, "Bearer ")
		if sessionID == authHeader || sessionID == "" {
			return response.Unauthorized(c, "MISSING_SESSION", "Invalid token format, must be Bearer token")
		}

		// Match the presented ID against the slot before any refresh, so a
		// wrong token cannot extend someone else's session.
		session, err := m.sessions.Peek(c.Request().Context())
		if err != nil {
			return err
		}
		if session == nil || session.ID != sessionID {
			return response.Unauthorized(c, "SESSION_EXPIRED", "Your session has expired. Please log in again.")
		}

		session, err = m.sessions.Validate(c.Request().Context())
		if err != nil {
			return err
		}
		if session == nil {
			return response.Unauthorized(c, "SESSION_EXPIRED", "Your session has expired. Please log in again.")
		}

		c.Set(KeyUserID, session.UserID)
		c.Set(KeySession, session)

		return next(c)
	}
}

// RequireAdmin rejects requests from non-admin accounts.
// It must be used AFTER the Authenticate middleware.
func (m *SessionMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, ok := c.Get(KeyUserID).(uuid.UUID)
		if !ok {
			return response.Forbidden(c, "FORBIDDEN", "Permission denied")
		}

		user, err := m.users.FindByID(c.Request().Context(), userID)
		if err != nil {
			return response.Forbidden(c, "FORBIDDEN", "Permission denied")
		}
		if user.Role != entity.RoleAdmin {
			return response.Forbidden(c, "FORBIDDEN", "Permission denied: admin role required")
		}

		return next(c)
	}
}
