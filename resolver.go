package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// CredentialSource records where a request credential was found.
type CredentialSource string

const (
	CredentialFromCookie CredentialSource = "cookie"
	CredentialFromHeader CredentialSource = "header"
	CredentialNone       CredentialSource = "none"
)

// ResolvedIdentity is the sanitized, verified projection of token claims
// handed to authorization and to route handlers. It lives for one request
// and is never persisted.
type ResolvedIdentity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   Role   `json:"userType"`
}

// NewResolvedIdentity projects verified claims into a ResolvedIdentity.
func NewResolvedIdentity(claims AuthClaims) *ResolvedIdentity {
	if claims == nil {
		return nil
	}
	return &ResolvedIdentity{
		UserID: claims.UserID(),
		Email:  claims.Email(),
		Role:   claims.Role(),
	}
}

// Resolver turns an inbound request credential into a verified identity.
// Extraction order is fixed: session cookie first, bearer header second.
type Resolver struct {
	validator  TokenValidator
	cookieName string
	authScheme string
	logger     Logger
}

// ResolverOption customizes resolver construction.
type ResolverOption func(*Resolver)

// WithResolverLogger overrides the default logger.
func WithResolverLogger(logger Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithCookieName overrides the session cookie name.
func WithCookieName(name string) ResolverOption {
	return func(r *Resolver) {
		if name != "" {
			r.cookieName = name
		}
	}
}

// WithAuthScheme overrides the Authorization header scheme.
func WithAuthScheme(scheme string) ResolverOption {
	return func(r *Resolver) {
		if scheme != "" {
			r.authScheme = scheme
		}
	}
}

// NewResolver creates a Resolver backed by the given token validator.
func NewResolver(validator TokenValidator, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		validator:  validator,
		cookieName: DefaultCookieName,
		authScheme: "Bearer",
		logger:     defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	return r
}

// Resolve extracts the request credential and verifies it. A request with
// no credential returns ErrUnauthenticated without touching the codec. Any
// verification failure collapses to ErrInvalidToken for the caller; the
// failure kind stays in the wrapped source and in the log line.
func (r *Resolver) Resolve(c router.Context) (*ResolvedIdentity, error) {
	raw, source := r.ExtractCredential(c)
	if raw == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := r.validator.Validate(raw)
	if err != nil {
		r.logger.Info(
			"credential verification failed",
			"kind", VerifyErrorKind(err),
			"source", string(source),
		)
		return nil, goerrors.Wrap(err, ErrInvalidToken.Category, ErrInvalidToken.Message).
			WithTextCode(ErrInvalidToken.TextCode).
			WithCode(ErrInvalidToken.Code)
	}

	return NewResolvedIdentity(claims), nil
}

// ExtractCredential returns the raw token and where it came from. The cookie
// wins over the header when both are present.
func (r *Resolver) ExtractCredential(c router.Context) (string, CredentialSource) {
	if token := c.Cookies(r.cookieName); token != "" {
		return token, CredentialFromCookie
	}

	header := c.GetString(router.HeaderAuthorization, "")
	if token := parseBearer(header, r.authScheme); token != "" {
		return token, CredentialFromHeader
	}

	return "", CredentialNone
}

// parseBearer extracts the token from an Authorization header value.
func parseBearer(header, authScheme string) string {
	scheme := strings.TrimSpace(authScheme)
	l := len(scheme)
	if l == 0 || len(header) <= l+1 {
		return ""
	}
	if !strings.EqualFold(header[:l], scheme) {
		return ""
	}
	return strings.TrimSpace(header[l:])
}
