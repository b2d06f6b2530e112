package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", 15*time.Minute)
	require.NoError(t, err)

	token, expiresAt, err := issuer.Issue("user-1", "alice@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, time.Minute)

	user, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestTokenIssuerRejectsExpired(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", time.Millisecond)
	require.NoError(t, err)

	token, _, err := issuer.Issue("user-1", "alice@example.com")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestTokenIssuerRejectsWrongSecret(t *testing.T) {
	issuer, err := NewTokenIssuer("secret-a", 15*time.Minute)
	require.NoError(t, err)
	other, err := NewTokenIssuer("secret-b", 15*time.Minute)
	require.NoError(t, err)

	token, _, err := issuer.Issue("user-1", "alice@example.com")
	require.NoError(t, err)

	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestTokenIssuerSharedSecretValidatesPeerTokens(t *testing.T) {
	a, err := NewTokenIssuer("shared", 15*time.Minute)
	require.NoError(t, err)
	b, err := NewTokenIssuer("shared", 15*time.Minute)
	require.NoError(t, err)

	token, _, err := a.Issue("user-1", "alice@example.com")
	require.NoError(t, err)

	user, err := b.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
}

func TestTokenIssuerRejectsGarbage(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", 15*time.Minute)
	require.NoError(t, err)

	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		_, err := issuer.Parse(input)
		assert.ErrorIs(t, err, ErrUnauthorized, "input %q", input)
	}
}

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer("", 15*time.Minute)
	assert.ErrorIs(t, err, ErrMisconfigured)
}
