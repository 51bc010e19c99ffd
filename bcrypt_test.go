package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/go-auth"
)

func TestHashPassword(t *testing.T) {
	t.Run("rejects empty password", func(t *testing.T) {
		_, err := auth.HashPassword("")
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrNoEmptyString)
	})

	t.Run("hash verifies against the password", func(t *testing.T) {
		hash, err := auth.HashPassword("correct horse battery staple")
		require.NoError(t, err)
		require.NotEmpty(t, hash)
		assert.NotEqual(t, "correct horse battery staple", hash)

		assert.NoError(t, auth.ComparePasswordAndHash("correct horse battery staple", hash))

		err = auth.ComparePasswordAndHash("wrong password", hash)
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
	})
}

func TestComparePasswordAndHash_BadHash(t *testing.T) {
	err := auth.ComparePasswordAndHash("password", "not-a-bcrypt-hash")
	assert.Error(t, err)
}
