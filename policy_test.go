package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/go-auth"
)

func TestPolicy_Authorize(t *testing.T) {
	policy := auth.NewPolicy(nil)

	identity := func(role auth.Role) *auth.ResolvedIdentity {
		return &auth.ResolvedIdentity{
			UserID: "usr-123",
			Email:  "grace@campuskit.dev",
			Role:   role,
		}
	}

	t.Run("nil identity is always denied", func(t *testing.T) {
		err := policy.Authorize(nil, auth.NewRoleSet())
		require.Error(t, err)
		assert.True(t, auth.IsUnauthenticatedError(err))

		err = policy.Authorize(nil, auth.NewRoleSet(auth.RoleAdmin))
		require.Error(t, err)
		assert.True(t, auth.IsUnauthenticatedError(err))
	})

	t.Run("empty set only requires authentication", func(t *testing.T) {
		for _, role := range auth.AllRoles() {
			assert.NoError(t, policy.Authorize(identity(role), auth.NewRoleSet()))
		}
	})

	t.Run("member of set is allowed", func(t *testing.T) {
		set := auth.NewRoleSet(auth.RoleFaculty, auth.RoleAdmin)

		assert.NoError(t, policy.Authorize(identity(auth.RoleFaculty), set))
		assert.NoError(t, policy.Authorize(identity(auth.RoleAdmin), set))
	})

	t.Run("non member is forbidden", func(t *testing.T) {
		set := auth.NewRoleSet(auth.RoleFaculty, auth.RoleAdmin)

		err := policy.Authorize(identity(auth.RoleStudent), set)
		require.Error(t, err)
		assert.True(t, auth.IsForbiddenError(err))

		err = policy.Authorize(identity(auth.RoleGuest), set)
		require.Error(t, err)
		assert.True(t, auth.IsForbiddenError(err))
	})

	t.Run("membership does not follow the hierarchy", func(t *testing.T) {
		// admin is not implicitly a member of a student only rule
		err := policy.Authorize(identity(auth.RoleAdmin), auth.NewRoleSet(auth.RoleStudent))
		require.Error(t, err)
		assert.True(t, auth.IsForbiddenError(err))
	})

	t.Run("unknown role is forbidden", func(t *testing.T) {
		err := policy.Authorize(identity(auth.Role("superuser")), auth.NewRoleSet(auth.RoleGuest))
		require.Error(t, err)
		assert.True(t, auth.IsForbiddenError(err))
	})
}

func TestAccessRule(t *testing.T) {
	rules := auth.AccessRule{
		"courses.create": auth.NewRoleSet(auth.RoleFaculty, auth.RoleAdmin),
		"users.list":     auth.NewRoleSet(auth.RoleAdmin),
	}

	assert.True(t, rules.RolesFor("courses.create").Contains(auth.RoleFaculty))
	assert.False(t, rules.RolesFor("users.list").Contains(auth.RoleFaculty))

	// unknown operations only require authentication
	assert.Empty(t, rules.RolesFor("profile.show"))
}
