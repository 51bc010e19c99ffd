package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeMissingSigningKey = "MISSING_SIGNING_KEY"
	textCodeTokenMalformed    = "TOKEN_MALFORMED"
	textCodeTokenSignature    = "TOKEN_SIGNATURE_MISMATCH"
	textCodeTokenExpired      = "TOKEN_EXPIRED"
	textCodeUnauthenticated   = "UNAUTHENTICATED"
	textCodeInvalidToken      = "INVALID_TOKEN"
	textCodeForbidden         = "FORBIDDEN"
	textCodeInvalidRole       = "INVALID_ROLE"
)

// ErrMissingSigningKey is a configuration error: the process has no signing
// secret. It is surfaced at startup, never during request handling.
var ErrMissingSigningKey = goerrors.New("signing key is required and must not be empty", goerrors.CategoryValidation).
	WithTextCode(textCodeMissingSigningKey).
	WithCode(goerrors.CodeInternal)

// ErrTokenMalformed is returned when a token cannot be decoded into claims.
var ErrTokenMalformed = goerrors.New("authentication token is malformed", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenSignature is returned when the token signature does not verify,
// either tampering or a token signed with a different key.
var ErrTokenSignature = goerrors.New("authentication token signature mismatch", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenSignature).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned for tokens with a valid signature whose
// validity window has passed.
var ErrTokenExpired = goerrors.New("authentication token is expired", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnauthenticated is the boundary error for requests carrying no
// credential at all.
var ErrUnauthenticated = goerrors.New("request is not authenticated", goerrors.CategoryAuth).
	WithTextCode(textCodeUnauthenticated).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidToken is the boundary error for requests carrying a credential
// that failed verification. The verification failure kind is kept in the
// wrapped source for logging and never leaks to clients.
var ErrInvalidToken = goerrors.New("invalid authentication token", goerrors.CategoryAuth).
	WithTextCode(textCodeInvalidToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrForbidden is returned for authenticated identities whose role is not in
// the required role set. Always distinct from unauthenticated at the boundary.
var ErrForbidden = goerrors.New("insufficient role for this operation", goerrors.CategoryAuthz).
	WithTextCode(textCodeForbidden).
	WithCode(goerrors.CodeForbidden)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryAuth).
	WithTextCode("IDENTITY_NOT_FOUND").
	WithCode(goerrors.CodeUnauthorized)

// ErrMismatchedHashAndPassword is returned on credential mismatch during login
var ErrMismatchedHashAndPassword = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIALS").
	WithCode(goerrors.CodeUnauthorized)

// ErrTooManyLoginAttempts blocks logins during the cool down window
var ErrTooManyLoginAttempts = goerrors.New("too many login attempts", goerrors.CategoryAuth).
	WithTextCode("TOO_MANY_LOGIN_ATTEMPTS").
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString rejects empty required inputs, e.g. blank passwords
var ErrNoEmptyString = goerrors.New("value must not be an empty string", goerrors.CategoryBadInput).
	WithTextCode("EMPTY_STRING").
	WithCode(goerrors.CodeBadRequest)

func hasTextCode(err error, code string) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == code
	}
	return false
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return hasTextCode(err, textCodeTokenExpired) ||
		strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for malformed token errors
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return hasTextCode(err, textCodeTokenMalformed) ||
		strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsSignatureError will check for signature mismatch errors
func IsSignatureError(err error) bool {
	if err == nil {
		return false
	}
	return hasTextCode(err, textCodeTokenSignature) ||
		strings.Contains(err.Error(), "signature is invalid")
}

// IsForbiddenError will check for role denial errors
func IsForbiddenError(err error) bool {
	if err == nil {
		return false
	}
	return hasTextCode(err, textCodeForbidden)
}

// IsUnauthenticatedError matches the no-credential boundary error
func IsUnauthenticatedError(err error) bool {
	if err == nil {
		return false
	}
	return hasTextCode(err, textCodeUnauthenticated)
}

// VerifyErrorKind maps a verification failure to its audit label. The label
// goes to structured logs, never to the client response.
func VerifyErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsTokenExpiredError(err):
		return "expired"
	case IsSignatureError(err):
		return "signature_mismatch"
	case IsMalformedError(err):
		return "malformed"
	default:
		return "unknown"
	}
}
