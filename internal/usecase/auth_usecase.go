// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"procure/internal/domain/entity"
)

// --- Input DTOs ---

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// ChangePasswordInput carries the forced password change submitted after a
// login that was halted by the must-change gate.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// UpdatePasswordInput carries a reset-token authorized password write.
type UpdatePasswordInput struct {
	Token       string
	NewPassword string
}

// --- Output DTOs ---

// LoginOutput describes where the login state machine landed. Success is
// true whenever the credentials checked out, including gate halts; at most
// one of MustChangePassword and RequiresTwoFactor is set, and either halt
// still withholds the session until its follow-up call completes.
type LoginOutput struct {
	Success            bool
	MustChangePassword bool
	RequiresTwoFactor  bool
	User               *entity.User
	Message            string
}

// AuthUsecase defines the interface for the login state machine and the
// password lifecycle operations around it.
type AuthUsecase interface {
	// Login runs the credential and account-state gates. It either issues a
	// session, halts at an intermediate gate, or fails with a message safe
	// to show the user.
	Login(ctx context.Context, input LoginInput) (*LoginOutput, error)

	// VerifyTwoFactor completes a login halted at the second-factor gate.
	// With isBackupCode set the code is checked against the single-use
	// backup set instead of the authenticator.
	VerifyTwoFactor(ctx context.Context, code string, isBackupCode bool) (bool, error)

	// ChangePassword completes a login halted at the must-change gate.
	ChangePassword(ctx context.Context, input ChangePasswordInput) (bool, error)

	// ResetPassword requests a reset email. It reports true even for
	// unknown addresses so account existence is never disclosed.
	ResetPassword(ctx context.Context, email string) (bool, error)

	// ValidateResetToken reports whether a reset link is still usable
	// without consuming it, so the reset page can show an invalid-link
	// state up front.
	ValidateResetToken(ctx context.Context, token string) (bool, error)

	// UpdatePassword performs the password write authorized by a live reset
	// token and consumes the token.
	UpdatePassword(ctx context.Context, input UpdatePasswordInput) (bool, error)

	// Logout clears the session slot and any half-finished login state.
	Logout(ctx context.Context) error

	// CurrentUser resolves the account owning the live session, or nil when
	// no valid session exists.
	CurrentUser(ctx context.Context) (*entity.User, error)
}
