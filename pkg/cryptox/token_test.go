package cryptox

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken()
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	require.Len(t, raw, TokenBytes)

	other, err := GenerateToken()
	require.NoError(t, err)
	require.NotEqual(t, token, other)
}

func TestFingerprintToken(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		require.Equal(t, FingerprintToken("abc"), FingerprintToken("abc"))
	})

	t.Run("differs from the raw token", func(t *testing.T) {
		token, err := GenerateToken()
		require.NoError(t, err)
		require.NotEqual(t, token, FingerprintToken(token))
	})

	t.Run("distinct inputs give distinct digests", func(t *testing.T) {
		require.NotEqual(t, FingerprintToken("abc"), FingerprintToken("abd"))
	})

	t.Run("fixed length", func(t *testing.T) {
		require.Len(t, FingerprintToken(""), 43)
		require.Len(t, FingerprintToken("some-long-token-value"), 43)
	})
}
