// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Credential holds the stored password material for one account. The hash is
// an opaque, self-describing blob: base64 of a random salt concatenated with
// the derived key. Legacy records created before hashing was introduced may
// still hold the verbatim password; they are upgraded on first successful
// login.
type Credential struct {
	UserID       uuid.UUID // Links this credential to the account it belongs to.
	PasswordHash string    // base64(salt || derived key), or a legacy plaintext value.
	UpdatedAt    time.Time // Timestamp of the last password change.
}

// Session represents the single active proof of authentication for this
// deployment. There is exactly one session slot; logging in as a second
// identity replaces the first wholesale.
type Session struct {
	ID        string    // Opaque session identifier handed to the client.
	UserID    uuid.UUID // The account this session belongs to.
	Email     string    // Denormalized login identifier, kept for display and auditing.
	IssuedAt  time.Time // When the session was created.
	ExpiresAt time.Time // Sliding expiry; extended on every successful validation.
}

// ExpiredAt reports whether the session is past its expiry at the given time.
func (s *Session) ExpiredAt(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// ResetToken is a one-time, time-bounded password-reset authorization
// artifact delivered out-of-band by email. Multiple live tokens per account
// are permitted.
type ResetToken struct {
	Token     string    // Opaque unguessable value; the sole authorization artifact.
	Email     string    // The address the reset link was sent to.
	UserID    uuid.UUID // The account the token authorizes a password write for.
	ExpiresAt time.Time // Hard expiry; expired tokens are evicted lazily on lookup.
}

// ExpiredAt reports whether the token is past its expiry at the given time.
func (t *ResetToken) ExpiredAt(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// TwoFactorEnrollment holds the second-factor material for one account: the
// shared TOTP secret and the remaining single-use backup codes.
type TwoFactorEnrollment struct {
	UserID      uuid.UUID // The enrolled account.
	Secret      string    // Base32 TOTP secret shared with the authenticator app.
	BackupCodes []string  // Remaining single-use fallback codes, stored canonicalized.
	EnrolledAt  time.Time // When enrollment was confirmed.
}

// ConsumeBackupCode removes the given canonicalized code from the set and
// reports whether it was present. A consumed code can never be used again.
func (e *TwoFactorEnrollment) ConsumeBackupCode(code string) bool {
	idx := slices.Index(e.BackupCodes, code)
	if idx < 0 {
		return false
	}
	e.BackupCodes = slices.Delete(e.BackupCodes, idx, idx+1)

	return true
}
