package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "certichain/pkg/domain-errors"
)

func TestGenerateAndValidateRoundTrip(t *testing.T) {
	svc := NewJWTService("test-key", "certichain")

	token, err := svc.GenerateAccessToken("registrar@mit.edu", time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "registrar@mit.edu", claims.Subject)
	assert.Equal(t, "certichain", claims.Issuer)
}

func TestValidateRejectsWrongKey(t *testing.T) {
	token, err := NewJWTService("key-a", "certichain").GenerateAccessToken("x", time.Hour)
	require.NoError(t, err)

	_, err = NewJWTService("key-b", "certichain").ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewJWTService("test-key", "certichain")
	token, err := svc.GenerateAccessToken("x", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := NewJWTService("test-key", "certichain").ValidateToken("not-a-token")
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}
