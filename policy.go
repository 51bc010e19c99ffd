package auth

import (
	goerrors "github.com/goliatone/go-errors"
)

// AccessRule maps an operation (or route name) to the roles permitted to
// perform it. Rules are static deployment-time data; the zero value permits
// nothing beyond authentication.
type AccessRule map[string]RoleSet

// RolesFor returns the role set guarding the operation, or nil when the
// operation only requires authentication.
func (a AccessRule) RolesFor(operation string) RoleSet {
	return a[operation]
}

// Policy decides allow or deny from a resolved identity and a required role
// set. Role is the sole authorization dimension: ownership checks are
// layered on top by individual route handlers.
type Policy struct {
	logger Logger
}

// NewPolicy creates an access policy.
func NewPolicy(logger Logger) *Policy {
	if logger == nil {
		logger = defLogger{}
	}
	return &Policy{logger: logger}
}

// Authorize returns nil when the identity may proceed. A nil identity is
// always denied as unauthenticated. An empty role set means the operation
// only requires a valid identity.
func (p *Policy) Authorize(identity *ResolvedIdentity, required RoleSet) error {
	if identity == nil {
		return ErrUnauthenticated
	}

	if len(required) == 0 {
		return nil
	}

	// Exhaustive over the closed role enum: an unrecognized role is a deny,
	// not a silent string comparison.
	switch identity.Role {
	case RoleAdmin, RoleFaculty, RoleStudent, RoleGuest:
		if required.Contains(identity.Role) {
			return nil
		}
		return p.deny(identity, required)
	default:
		p.logger.Warn("authorize rejected unknown role", "role", identity.Role.String(), "userId", identity.UserID)
		return p.deny(identity, required)
	}
}

func (p *Policy) deny(identity *ResolvedIdentity, required RoleSet) error {
	return goerrors.New(ErrForbidden.Message, ErrForbidden.Category).
		WithTextCode(ErrForbidden.TextCode).
		WithCode(ErrForbidden.Code).
		WithMetadata(map[string]any{
			"role":     identity.Role.String(),
			"required": required.String(),
		})
}
