package auth

import (
	"context"

	"github.com/goliatone/go-router"
)

var identityCtxKey = &contextKey{"identity"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithIdentity sets the ResolvedIdentity in the given context
func WithIdentity(ctx context.Context, identity *ResolvedIdentity) context.Context {
	return context.WithValue(ctx, identityCtxKey, identity)
}

// IdentityFromContext finds the resolved identity from the context.
func IdentityFromContext(ctx context.Context) (*ResolvedIdentity, bool) {
	raw, ok := ctx.Value(identityCtxKey).(*ResolvedIdentity)
	return raw, ok
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(ctx context.Context, claims AuthClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// GetRouterIdentity extracts the ResolvedIdentity stored in router locals by
// the route guard.
func GetRouterIdentity(ctx router.Context, key string) (*ResolvedIdentity, bool) {
	if key == "" {
		key = "user" // default key used by the guard middleware
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}

	switch v := raw.(type) {
	case *ResolvedIdentity:
		return v, true
	case AuthClaims:
		// the guard stores verified claims; project them on demand
		return NewResolvedIdentity(v), true
	default:
		return nil, false
	}
}

// HasRoleInContext reports whether the context identity carries the role.
// Convenience for handlers layering ownership checks on top of RBAC.
func HasRoleInContext(ctx context.Context, role Role) bool {
	identity, ok := IdentityFromContext(ctx)
	if !ok || identity == nil {
		return false
	}
	return identity.Role == role
}
