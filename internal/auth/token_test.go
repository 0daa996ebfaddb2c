package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_IssueAndParse(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", 60)
	require.NoError(t, err)

	token, err := issuer.Issue("alice@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	sub, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", sub)
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	a, err := NewTokenIssuer("secret-a", 60)
	require.NoError(t, err)
	b, err := NewTokenIssuer("secret-b", 60)
	require.NoError(t, err)

	token, err := a.Issue("alice@example.com")
	require.NoError(t, err)

	_, err = b.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", -1)
	require.NoError(t, err)

	token, err := issuer.Issue("alice@example.com")
	require.NoError(t, err)

	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_Garbage(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", 60)
	require.NoError(t, err)

	_, err = issuer.Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenIssuer_EmptySecret(t *testing.T) {
	_, err := NewTokenIssuer("", 60)
	assert.Error(t, err)
}

func TestNewVerificationCode(t *testing.T) {
	code, err := NewVerificationCode()
	require.NoError(t, err)
	assert.Len(t, code, 12)

	other, err := NewVerificationCode()
	require.NoError(t, err)
	assert.NotEqual(t, code, other)
}
