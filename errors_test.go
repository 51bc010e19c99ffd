package auth_test

import (
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/go-auth"
)

func TestVerifyErrorKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil error", nil, ""},
		{"expired token", auth.ErrTokenExpired, "expired"},
		{"signature mismatch", auth.ErrTokenSignature, "signature_mismatch"},
		{"malformed token", auth.ErrTokenMalformed, "malformed"},
		{"jwt library expired text", errors.New("token is expired"), "expired"},
		{"jwt library signature text", errors.New("signature is invalid"), "signature_mismatch"},
		{"jwt library malformed text", errors.New("token is malformed"), "malformed"},
		{"unrelated error", errors.New("boom"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, auth.VerifyErrorKind(tt.err))
		})
	}
}

func TestErrorPredicates(t *testing.T) {
	t.Run("expired", func(t *testing.T) {
		assert.True(t, auth.IsTokenExpiredError(auth.ErrTokenExpired))
		assert.False(t, auth.IsTokenExpiredError(auth.ErrTokenSignature))
		assert.False(t, auth.IsTokenExpiredError(nil))
	})

	t.Run("signature", func(t *testing.T) {
		assert.True(t, auth.IsSignatureError(auth.ErrTokenSignature))
		assert.False(t, auth.IsSignatureError(auth.ErrTokenExpired))
	})

	t.Run("malformed", func(t *testing.T) {
		assert.True(t, auth.IsMalformedError(auth.ErrTokenMalformed))
		assert.True(t, auth.IsMalformedError(errors.New("missing or malformed JWT")))
		assert.False(t, auth.IsMalformedError(auth.ErrTokenExpired))
	})

	t.Run("forbidden and unauthenticated stay distinct", func(t *testing.T) {
		assert.True(t, auth.IsForbiddenError(auth.ErrForbidden))
		assert.False(t, auth.IsForbiddenError(auth.ErrUnauthenticated))

		assert.True(t, auth.IsUnauthenticatedError(auth.ErrUnauthenticated))
		assert.False(t, auth.IsUnauthenticatedError(auth.ErrForbidden))
	})

	t.Run("predicates survive wrapping", func(t *testing.T) {
		wrapped := goerrors.Wrap(auth.ErrTokenExpired, goerrors.CategoryAuth, "validation failed")
		assert.True(t, auth.IsTokenExpiredError(wrapped))
	})
}

func TestErrorDefinitions(t *testing.T) {
	t.Run("ErrMissingSigningKey", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryValidation, auth.ErrMissingSigningKey.Category)

		var e *goerrors.Error
		require.True(t, goerrors.As(auth.ErrMissingSigningKey, &e))
		assert.Equal(t, "MISSING_SIGNING_KEY", e.TextCode)
	})

	t.Run("token errors carry auth category", func(t *testing.T) {
		for _, err := range []*goerrors.Error{
			auth.ErrTokenMalformed,
			auth.ErrTokenSignature,
			auth.ErrTokenExpired,
			auth.ErrUnauthenticated,
			auth.ErrInvalidToken,
		} {
			assert.Equal(t, goerrors.CategoryAuth, err.Category)
			assert.Equal(t, goerrors.CodeUnauthorized, err.Code)
		}
	})

	t.Run("ErrForbidden is authz", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryAuthz, auth.ErrForbidden.Category)
		assert.Equal(t, goerrors.CodeForbidden, auth.ErrForbidden.Code)
	})

	t.Run("credential errors never reveal which part failed", func(t *testing.T) {
		assert.Equal(t, "invalid credentials", auth.ErrMismatchedHashAndPassword.Message)
	})
}
