package auth

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPBKDF2Hasher_HashAndCheck(t *testing.T) {
	hasher := NewPBKDF2Hasher()

	blob, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEmpty(t, blob)

	assert.True(t, hasher.Check("correct horse battery staple", blob))
	assert.False(t, hasher.Check("wrong password", blob))
	assert.False(t, hasher.Check("", blob))
}

func TestPBKDF2Hasher_SaltedBlobsDiffer(t *testing.T) {
	hasher := NewPBKDF2Hasher()

	first, err := hasher.Hash("same password")
	require.NoError(t, err)
	second, err := hasher.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Check("same password", first))
	assert.True(t, hasher.Check("same password", second))
}

func TestPBKDF2Hasher_BlobFormat(t *testing.T) {
	hasher := NewPBKDF2Hasher()

	blob, err := hasher.Hash("secret")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(blob)
	require.NoError(t, err)
	assert.Len(t, raw, saltLength+keyLength)
}

func TestPBKDF2Hasher_CheckMalformedBlob(t *testing.T) {
	hasher := NewPBKDF2Hasher()

	tests := []struct {
		name string
		blob string
	}{
		{"Empty blob", ""},
		{"Not base64", "!!not-base64!!"},
		{"Too short", base64.StdEncoding.EncodeToString([]byte("short"))},
		{"Plaintext leftover", "hunter2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, hasher.Check("hunter2", tt.blob))
		})
	}
}
