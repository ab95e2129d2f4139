// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// PasswordHasher defines the interface for password hashing and verification.
// This abstracts the underlying derivation (PBKDF2), keeping the domain pure.
type PasswordHasher interface {
	// Hash generates a salted hash blob from a plaintext password.
	Hash(password string) (string, error)

	// Check compares a plaintext password with a stored blob. Malformed
	// blobs fail closed: the result is false, never a panic or error.
	Check(password, blob string) bool
}
