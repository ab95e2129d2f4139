package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"procure/internal/domain/service"

	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

const (
	saltLength = 16
	keyLength  = 32
	iterations = 100000
)

type pbkdf2Hasher struct{}

// NewPBKDF2Hasher creates a password hasher backed by PBKDF2-HMAC-SHA256.
// The produced blob is base64(salt || derived key) with a fresh random salt
// per call, so hashing the same password twice yields different blobs.
func NewPBKDF2Hasher() service.PasswordHasher {
	return &pbkdf2Hasher{}
}

func (h *pbkdf2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "generate salt")
	}

	key := pbkdf2.Key([]byte(password), salt, iterations, keyLength, sha256.New)

	blob := make([]byte, 0, saltLength+keyLength)
	blob = append(blob, salt...)
	blob = append(blob, key...)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// Check reports whether password matches the stored blob. Malformed blobs
// never match.
func (h *pbkdf2Hasher) Check(password, blob string) bool {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return false
	}
	if len(raw) != saltLength+keyLength {
		return false
	}

	salt := raw[:saltLength]
	expected := raw[saltLength:]
	key := pbkdf2.Key([]byte(password), salt, iterations, keyLength, sha256.New)

	return subtle.ConstantTimeCompare(key, expected) == 1
}
