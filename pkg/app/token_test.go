package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_GenerateAndParse(t *testing.T) {
	tm := NewTokenManager(TokenConfig{
		SecretKey: "test-secret",
		Expiry:    time.Hour,
	})

	token, err := tm.Generate("admin", "127.0.0.1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	entity, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", entity.Username)
	assert.Equal(t, "127.0.0.1", entity.IP)
	assert.Equal(t, DefaultTokenIssuer, entity.Issuer)
}

func TestTokenManager_ParseWithWrongKey(t *testing.T) {
	tm := NewTokenManager(TokenConfig{SecretKey: "key-a"})

	token, err := tm.Generate("admin", "")
	require.NoError(t, err)

	_, err = ParseTokenWithKey(token, "key-b")
	assert.Error(t, err)
}

func TestTokenManager_Expired(t *testing.T) {
	tm := NewTokenManager(TokenConfig{
		SecretKey: "test-secret",
		Expiry:    -time.Minute,
	})

	token, err := tm.Generate("admin", "")
	require.NoError(t, err)

	err = tm.Validate(token)
	assert.Error(t, err)
}
