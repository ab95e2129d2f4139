// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core entity in the system, representing a single procurement
// portal account. It carries the approval lifecycle and the flags the login
// flow gates on.
type User struct {
	ID                 uuid.UUID // The unique identifier for the account.
	Name               string    // The account holder's display name.
	Email              string    // The login identifier. Unique, compared exactly as stored.
	Role               Role      // Either "admin" or "user".
	Status             Status    // Approval lifecycle: pending, approved or rejected.
	MustChangePassword bool      // Forces a password update before a session is issued.
	TwoFactorEnabled   bool      // Whether the login flow requires a second factor.
	Deleted            bool      // Soft-delete flag. Deleted accounts never authenticate or list.
	CreatedAt          time.Time // Timestamp of when this account was created.
	UpdatedAt          time.Time // Timestamp of the last modification to this account.
}

// CanAuthenticate reports whether the account is in a state where a correct
// password may proceed through the login gates.
func (u *User) CanAuthenticate() bool {
	return !u.Deleted && u.Status == StatusApproved
}
