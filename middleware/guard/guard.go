// Package guard wires credential resolution and role based access control
// into a request middleware. It lives in its own package so the root auth
// package can consume it without an import cycle, mirroring claims and
// validator contracts structurally.
package guard

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-router"
)

var (
	defaultTokenLookup = "cookie:campus_session,header:" + router.HeaderAuthorization

	// ErrMissingCredential marks requests that carried no credential at all.
	ErrMissingCredential = errors.New("request carries no credential")
	// ErrForbiddenRole marks authenticated requests whose role is not allowed.
	ErrForbiddenRole = errors.New("role is not permitted for this route")
)

// Claims is the verified-claims contract the guard consumes. It mirrors the
// auth package claims without importing it.
type Claims interface {
	Subject() string
	UserID() string
	Email() string
}

// RoleClaims extends Claims with untyped role membership checks.
type RoleClaims interface {
	Claims
	HasAnyRole(roles ...string) bool
}

// TokenValidator mirrors the auth package token validator.
type TokenValidator interface {
	Validate(tokenString string) (Claims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (Claims, error)

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (Claims, error) {
	return f(tokenString)
}

type Config struct {
	// Filter skips the guard entirely when it returns true.
	Filter         func(router.Context) bool
	SuccessHandler router.HandlerFunc
	ErrorHandler   router.ErrorHandler
	// TokenValidator verifies extracted credentials. Required unless
	// JWKSetURLs is configured.
	TokenValidator TokenValidator
	ContextKey     string
	// TokenLookup lists credential locations in priority order, e.g.
	// "cookie:campus_session,header:Authorization". The cookie always wins
	// when both carry a value.
	TokenLookup string
	AuthScheme  string

	// RequiredRoles lists the role tags permitted through this guard. Empty
	// means any verified identity passes.
	RequiredRoles []string

	// JWKSetURLs enables verification of externally issued tokens (e.g. a
	// hosted identity provider) via remote JWK sets.
	JWKSetURLs []string

	// ContextEnricher propagates verified claims into the standard Go
	// context for downstream handlers.
	ContextEnricher func(ctx context.Context, claims Claims) context.Context
}

// New builds the guard middleware. The chain is: extract credential,
// verify, role check, attach identity, call the wrapped handler. Each
// failure short circuits through the error handler, which must keep the
// unauthenticated and forbidden cases distinct.
func New(config ...Config) router.MiddlewareFunc {
	cfg := DefaultConfig(config...)

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return hf(ctx)
			}

			raw, err := ExtractRawToken(ctx, cfg.getExtractors())
			if err != nil || raw == "" {
				return cfg.ErrorHandler(ctx, ErrMissingCredential)
			}

			claims, err := cfg.TokenValidator.Validate(raw)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			if err := checkRoles(claims, cfg.RequiredRoles); err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			ctx.Locals(cfg.ContextKey, claims)

			if cfg.ContextEnricher != nil {
				ctx.SetContext(cfg.ContextEnricher(ctx.Context(), claims))
			}

			if cfg.SuccessHandler != nil {
				return cfg.SuccessHandler(ctx)
			}

			return hf(ctx)
		}
	}
}

// checkRoles enforces the static role set. Claims that cannot report roles
// are denied rather than waved through.
func checkRoles(claims Claims, required []string) error {
	if len(required) == 0 {
		return nil
	}

	rc, ok := claims.(RoleClaims)
	if !ok {
		return ErrForbiddenRole
	}

	if !rc.HasAnyRole(required...) {
		return ErrForbiddenRole
	}

	return nil
}

func DefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = DefaultErrorHandler
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.TokenValidator == nil {
		if len(cfg.JWKSetURLs) > 0 {
			validator, err := newJWKSValidator(cfg.JWKSetURLs)
			if err != nil {
				panic("AUTH: guard configuration: failed to build JWKS validator: " + err.Error())
			}
			cfg.TokenValidator = validator
		} else {
			panic("AUTH: guard configuration: TokenValidator or JWKSetURLs is required.")
		}
	}

	return cfg
}

// DefaultErrorHandler maps guard failures to the boundary contract:
// 401 {"error":"unauthenticated"} when no credential was presented,
// 401 {"error":"invalid_token"} when verification failed for any reason,
// 403 {"error":"forbidden"} when the role is insufficient. Verification
// detail never reaches the client.
func DefaultErrorHandler(c router.Context, err error) error {
	switch {
	case errors.Is(err, ErrMissingCredential):
		return c.JSON(router.StatusUnauthorized, map[string]string{
			"error": "unauthenticated",
		})
	case errors.Is(err, ErrForbiddenRole):
		return c.JSON(router.StatusForbidden, map[string]string{
			"error": "forbidden",
		})
	default:
		return c.JSON(router.StatusUnauthorized, map[string]string{
			"error": "invalid_token",
		})
	}
}

func (cfg *Config) getExtractors() []TokenExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

// TokenExtractor pulls a raw credential out of the request context.
type TokenExtractor func(c router.Context) (string, error)

// ExtractRawToken runs the extractors in order and returns the first hit.
func ExtractRawToken(ctx router.Context, extractors []TokenExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(ctx)
		if raw != "" && err == nil {
			return raw, nil
		}
	}

	return raw, err
}

// GetExtractors parses a token lookup definition into extractors, keeping
// the declared priority order.
func GetExtractors(tokenLookup string, authSchemes ...string) []TokenExtractor {
	extractors := make([]TokenExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 {
		authScheme = authSchemes[0]
	}

	// cookie:campus_session,header:Authorization
	rootParts := strings.Split(tokenLookup, ",")
	for _, rootPart := range rootParts {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")
		if len(parts) != 2 {
			continue
		}

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "cookie":
			extractors = append(extractors, tokenFromCookie(parts[1]))
		case "header":
			extractors = append(extractors, tokenFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, tokenFromQuery(parts[1]))
		}
	}

	return extractors
}

// tokenFromCookie returns an extractor that reads the named cookie.
func tokenFromCookie(name string) TokenExtractor {
	return func(c router.Context) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrMissingCredential
		}
		return token, nil
	}
}

// tokenFromHeader returns an extractor that reads a scheme prefixed header.
func tokenFromHeader(header string, authScheme string) TokenExtractor {
	return func(c router.Context) (string, error) {
		a := c.GetString(header, "")
		scheme := strings.TrimSpace(authScheme)
		l := len(scheme)
		if l == 0 {
			return "", ErrMissingCredential
		}
		if len(a) > l+1 && strings.EqualFold(a[:l], scheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrMissingCredential
	}
}

// tokenFromQuery returns an extractor that reads the query string.
func tokenFromQuery(param string) TokenExtractor {
	return func(c router.Context) (string, error) {
		token := c.Query(param, "")
		if token == "" {
			return "", ErrMissingCredential
		}
		return token, nil
	}
}
