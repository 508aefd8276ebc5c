package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)

	token, expiresAt, err := signer.Generate("exp-1", "gradesheets/exp-1.csv")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	exportID, relPath, _, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "exp-1", exportID)
	assert.Equal(t, "gradesheets/exp-1.csv", relPath)
}

func TestSignedURLRejectsTampered(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)

	token, _, err := signer.Generate("exp-1", "gradesheets/exp-1.csv")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token + "x")
	require.Error(t, err)
}

func TestSignedURLRejectsExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	signer.ttl = -time.Minute

	token, _, err := signer.Generate("exp-1", "gradesheets/exp-1.csv")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token)
	require.ErrorContains(t, err, "expired")
}

func TestSignedURLRejectsWrongSecret(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	other := NewSignedURLSigner("different", time.Minute)

	token, _, err := signer.Generate("exp-1", "gradesheets/exp-1.csv")
	require.NoError(t, err)

	_, _, _, err = other.Parse(token)
	require.ErrorContains(t, err, "signature")
}
