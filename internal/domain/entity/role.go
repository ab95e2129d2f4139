// Package entity contains the core business objects of the project.
package entity

// Role represents the type of role an account can have in the system.
type Role string

const (
	// RoleAdmin indicates an administrator who can manage accounts.
	RoleAdmin Role = "admin"
	// RoleUser indicates a regular portal user.
	RoleUser Role = "user"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

// Status represents the approval lifecycle state of an account.
type Status string

const (
	// StatusPending marks a self-registered account awaiting admin review.
	StatusPending Status = "pending"
	// StatusApproved marks an account cleared to log in.
	StatusApproved Status = "approved"
	// StatusRejected marks an account an admin declined. Terminal for login.
	StatusRejected Status = "rejected"
)

// String returns the string representation of the Status.
func (s Status) String() string {
	return string(s)
}

// IsValid checks if the Status is a valid value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}
