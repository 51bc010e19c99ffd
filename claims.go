package auth

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// AuthClaims represents verified token claims with role checking helpers
type AuthClaims interface {
	Subject() string
	UserID() string
	Email() string
	Role() Role
	HasRole(role Role) bool
	IsAtLeast(minRole Role) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete claims payload embedded in session tokens.
// JSON field names (userId, email, userType) are part of the platform wire
// contract and shared with every client.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID       string `json:"userId,omitempty"`
	UserEmail string `json:"email,omitempty"`
	UserType  string `json:"userType,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)
var _ jwt.ClaimsValidator = (*JWTClaims)(nil)

// NewClaims builds a validated claims payload for the given user.
func NewClaims(userID, email string, role Role) (*JWTClaims, error) {
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: userID,
		},
		UID:       userID,
		UserEmail: email,
		UserType:  string(role),
	}

	if err := claims.Validate(); err != nil {
		return nil, err
	}

	return claims, nil
}

// Validate enforces the claims invariants: non empty user id and email, a
// recognized role, and expiry after issuance. golang-jwt invokes this during
// parsing, so a token carrying an unknown role never verifies.
func (c *JWTClaims) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.UID, validation.Required),
		validation.Field(&c.UserEmail, validation.Required, is.Email),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid claims payload").
			WithTextCode("INVALID_CLAIMS")
	}

	if _, ok := ParseRole(c.UserType); !ok {
		return goerrors.New("claims carry an unknown or invalid role", goerrors.CategoryValidation).
			WithTextCode(textCodeInvalidRole).
			WithMetadata(map[string]any{"userType": c.UserType, "userId": c.UID})
	}

	if c.RegisteredClaims.IssuedAt != nil && c.RegisteredClaims.ExpiresAt != nil {
		if !c.RegisteredClaims.ExpiresAt.Time.After(c.RegisteredClaims.IssuedAt.Time) {
			return goerrors.New("claims expiry must be after issuance", goerrors.CategoryValidation).
				WithTextCode("INVALID_CLAIMS_WINDOW")
		}
	}

	return nil
}

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID, falling back to the subject claim
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Email returns the user email
func (c *JWTClaims) Email() string {
	return c.UserEmail
}

// Role returns the platform role carried in the userType claim
func (c *JWTClaims) Role() Role {
	return Role(c.UserType)
}

// HasRole checks if the claims carry exactly the given role
func (c *JWTClaims) HasRole(role Role) bool {
	return c.Role() == role
}

// IsAtLeast checks if the claims role is at least the minimum required role
func (c *JWTClaims) IsAtLeast(minRole Role) bool {
	return c.Role().IsAtLeast(minRole)
}

// HasAnyRole reports whether the claims role is a member of the given role
// tags. Used by the route guard, which works with untyped role names to
// avoid an import cycle with this package.
func (c *JWTClaims) HasAnyRole(roles ...string) bool {
	role, ok := ParseRole(c.UserType)
	if !ok {
		return false
	}
	for _, r := range roles {
		if string(role) == r {
			return true
		}
	}
	return false
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// Equal compares the identity content of two claims, ignoring the
// issuance and expiry timestamps.
func (c *JWTClaims) Equal(other AuthClaims) bool {
	if other == nil {
		return false
	}
	return c.UserID() == other.UserID() &&
		c.Email() == other.Email() &&
		c.Role() == other.Role()
}
