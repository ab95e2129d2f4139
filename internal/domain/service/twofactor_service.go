package service

// TwoFactorService abstracts TOTP secret provisioning and code verification
// (RFC 6238). Verification is a pure computation over the shared secret and
// the current time.
type TwoFactorService interface {
	// GenerateSecret creates a fresh base32 secret for the given account
	// label and returns it together with the otpauth:// provisioning URI
	// authenticator apps consume.
	GenerateSecret(account string) (secret string, uri string, err error)

	// VerifyCode checks a 6-digit authenticator code against the secret.
	VerifyCode(secret, code string) bool
}
