package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTOTPService_GenerateSecret(t *testing.T) {
	service := NewTOTPService("ProcurementSystem")

	secret, uri, err := service.GenerateSecret("alice@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, secret)
	assert.True(t, strings.HasPrefix(uri, "otpauth://totp/"))
	assert.Contains(t, uri, "ProcurementSystem")
	assert.Contains(t, uri, "alice")
	assert.Contains(t, uri, "secret="+secret)
}

func TestTOTPService_GenerateSecret_DefaultIssuer(t *testing.T) {
	service := NewTOTPService("  ")

	_, uri, err := service.GenerateSecret("bob@example.com")
	require.NoError(t, err)
	assert.Contains(t, uri, "ProcurementSystem")
}

func TestTOTPService_VerifyCode(t *testing.T) {
	service := NewTOTPService("ProcurementSystem")

	secret, _, err := service.GenerateSecret("alice@example.com")
	require.NoError(t, err)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	assert.True(t, service.VerifyCode(secret, code))
	assert.True(t, service.VerifyCode(secret, "  "+code+"  "))
	assert.False(t, service.VerifyCode(secret, "000000"))
	assert.False(t, service.VerifyCode(secret, ""))
}
