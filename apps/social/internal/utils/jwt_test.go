package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	InitJWT("test-secret")

	t.Run("roundtrip", func(t *testing.T) {
		token, err := GenerateToken("tg:123456", time.Hour)
		require.NoError(t, err)

		claims, err := ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, "tg:123456", claims.PlatformUid)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := GenerateToken("tg:123456", -time.Minute)
		require.NoError(t, err)

		_, err = ParseToken(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseToken("not-a-token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("wrong_secret", func(t *testing.T) {
		token, err := GenerateToken("tg:123456", time.Hour)
		require.NoError(t, err)

		InitJWT("another-secret")
		defer InitJWT("test-secret")
		_, err = ParseToken(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}
