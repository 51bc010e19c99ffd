package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/go-auth"
)

type testLoginPayload struct {
	Identifier      string
	Password        string
	ExtendedSession bool
}

func (p testLoginPayload) GetIdentifier() string    { return p.Identifier }
func (p testLoginPayload) GetPassword() string      { return p.Password }
func (p testLoginPayload) GetExtendedSession() bool { return p.ExtendedSession }

func newHTTPAuth(t *testing.T, provider auth.IdentityProvider) (*auth.RouteAuthenticator, *auth.Auther) {
	t.Helper()

	auther, err := auth.NewAuthenticator(provider, newTestConfig())
	require.NoError(t, err)

	httpAuth, err := auth.NewHTTPAuthenticator(auther, newTestConfig())
	require.NoError(t, err)

	return httpAuth, auther
}

func TestRouteAuthenticator_Login(t *testing.T) {
	t.Run("sets the session cookie", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("VerifyIdentity", mock.Anything, "grace@campuskit.dev", "pa55word").
			Return(newTestIdentity(auth.RoleStudent), nil)

		httpAuth, _ := newHTTPAuth(t, provider)

		ctx := router.NewMockContext()
		ctx.On("Context").Return(context.Background())
		ctx.On("Cookie", mock.MatchedBy(func(c *router.Cookie) bool {
			return c.Name == auth.DefaultCookieName &&
				c.Value != "" &&
				c.HTTPOnly &&
				c.Expires.Before(time.Now().Add(25*time.Hour))
		})).Return()

		token, err := httpAuth.Login(ctx, testLoginPayload{
			Identifier: "grace@campuskit.dev",
			Password:   "pa55word",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		ctx.AssertExpectations(t)
	})

	t.Run("remember me extends the cookie", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("VerifyIdentity", mock.Anything, "grace@campuskit.dev", "pa55word").
			Return(newTestIdentity(auth.RoleStudent), nil)

		httpAuth, _ := newHTTPAuth(t, provider)

		ctx := router.NewMockContext()
		ctx.On("Context").Return(context.Background())
		ctx.On("Cookie", mock.MatchedBy(func(c *router.Cookie) bool {
			return c.Name == auth.DefaultCookieName &&
				c.Expires.After(time.Now().Add(6*24*time.Hour))
		})).Return()

		_, err := httpAuth.Login(ctx, testLoginPayload{
			Identifier:      "grace@campuskit.dev",
			Password:        "pa55word",
			ExtendedSession: true,
		})
		require.NoError(t, err)

		ctx.AssertExpectations(t)
	})

	t.Run("failed login sets no cookie", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("VerifyIdentity", mock.Anything, "grace@campuskit.dev", "wrong").
			Return(nil, auth.ErrMismatchedHashAndPassword)

		httpAuth, _ := newHTTPAuth(t, provider)

		ctx := router.NewMockContext()
		ctx.On("Context").Return(context.Background())

		_, err := httpAuth.Login(ctx, testLoginPayload{
			Identifier: "grace@campuskit.dev",
			Password:   "wrong",
		})
		require.Error(t, err)

		ctx.AssertNotCalled(t, "Cookie", mock.Anything)
	})
}

func TestRouteAuthenticator_Logout(t *testing.T) {
	provider := &MockIdentityProvider{}
	httpAuth, _ := newHTTPAuth(t, provider)

	ctx := router.NewMockContext()
	ctx.On("Cookie", mock.MatchedBy(func(c *router.Cookie) bool {
		return c.Name == auth.DefaultCookieName &&
			c.Value == "" &&
			c.Expires.Before(time.Now())
	})).Return()

	httpAuth.Logout(ctx)

	ctx.AssertExpectations(t)
}

func TestRouteAuthenticator_ProtectedRoute(t *testing.T) {
	provider := &MockIdentityProvider{}
	httpAuth, auther := newHTTPAuth(t, provider)

	issue := func(t *testing.T, role auth.Role) string {
		t.Helper()
		token, err := auther.TokenService().Issue(newTestIdentity(role), time.Hour)
		require.NoError(t, err)
		return token
	}

	t.Run("member role passes", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.CookiesM[auth.DefaultCookieName] = issue(t, auth.RoleFaculty)
		ctx.On("Locals", "user", mock.Anything).Return(nil)
		ctx.On("Context").Return(context.Background())
		ctx.On("SetContext", mock.Anything).Return()

		handlerCalled := false
		handler := func(c router.Context) error {
			handlerCalled = true
			return nil
		}

		mw := httpAuth.ProtectedRoute(auth.RoleFaculty, auth.RoleAdmin)
		require.NoError(t, mw(handler)(ctx))
		assert.True(t, handlerCalled)
	})

	t.Run("empty role set admits any verified identity", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.CookiesM[auth.DefaultCookieName] = issue(t, auth.RoleGuest)
		ctx.On("Locals", "user", mock.Anything).Return(nil)
		ctx.On("Context").Return(context.Background())
		ctx.On("SetContext", mock.Anything).Return()

		handlerCalled := false
		mw := httpAuth.ProtectedRoute()
		require.NoError(t, mw(func(c router.Context) error {
			handlerCalled = true
			return nil
		})(ctx))
		assert.True(t, handlerCalled)
	})

	t.Run("insufficient role gets 403 forbidden", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.CookiesM[auth.DefaultCookieName] = issue(t, auth.RoleStudent)
		ctx.On("OriginalURL").Return("/admin/users")

		var payload map[string]string
		ctx.On("JSON", router.StatusForbidden, mock.Anything).Run(func(args mock.Arguments) {
			payload = args.Get(1).(map[string]string)
		}).Return(nil)

		handlerCalled := false
		mw := httpAuth.ProtectedRoute(auth.RoleAdmin)
		require.NoError(t, mw(func(c router.Context) error {
			handlerCalled = true
			return nil
		})(ctx))

		assert.False(t, handlerCalled)
		assert.Equal(t, map[string]string{"error": "forbidden"}, payload)
	})

	t.Run("missing credential gets 401 unauthenticated", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.On("GetString", "Authorization", "").Return("")
		ctx.On("OriginalURL").Return("/courses")

		var payload map[string]string
		ctx.On("JSON", router.StatusUnauthorized, mock.Anything).Run(func(args mock.Arguments) {
			payload = args.Get(1).(map[string]string)
		}).Return(nil)

		mw := httpAuth.ProtectedRoute()
		require.NoError(t, mw(func(c router.Context) error { return nil })(ctx))

		assert.Equal(t, map[string]string{"error": "unauthenticated"}, payload)
	})

	t.Run("tampered token gets 401 invalid_token", func(t *testing.T) {
		token := issue(t, auth.RoleAdmin)
		tampered := token[:len(token)-2] + "xx"

		ctx := router.NewMockContext()
		ctx.CookiesM[auth.DefaultCookieName] = tampered
		ctx.On("OriginalURL").Return("/admin/users")

		var payload map[string]string
		ctx.On("JSON", router.StatusUnauthorized, mock.Anything).Run(func(args mock.Arguments) {
			payload = args.Get(1).(map[string]string)
		}).Return(nil)

		handlerCalled := false
		mw := httpAuth.ProtectedRoute(auth.RoleAdmin)
		require.NoError(t, mw(func(c router.Context) error {
			handlerCalled = true
			return nil
		})(ctx))

		assert.False(t, handlerCalled)
		assert.Equal(t, map[string]string{"error": "invalid_token"}, payload)
	})
}

func TestGuardValidator(t *testing.T) {
	provider := &MockIdentityProvider{}
	_, auther := newHTTPAuth(t, provider)

	validator := auth.GuardValidator(auther.TokenService())

	token, err := auther.TokenService().Issue(newTestIdentity(auth.RoleFaculty), time.Hour)
	require.NoError(t, err)

	claims, err := validator.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "usr-123", claims.UserID())

	_, err = validator.Validate("not.a.token")
	assert.Error(t, err)
}

func TestContextEnricher(t *testing.T) {
	claims, err := auth.NewClaims("usr-123", "grace@campuskit.dev", auth.RoleFaculty)
	require.NoError(t, err)

	ctx := auth.ContextEnricher(context.Background(), claims)

	identity, ok := auth.IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "usr-123", identity.UserID)
	assert.Equal(t, auth.RoleFaculty, identity.Role)

	got, ok := auth.GetClaims(ctx)
	require.True(t, ok)
	assert.Equal(t, "grace@campuskit.dev", got.Email())
}

func TestRouteAuthenticator_Authorize(t *testing.T) {
	provider := &MockIdentityProvider{}
	httpAuth, _ := newHTTPAuth(t, provider)

	identity := &auth.ResolvedIdentity{UserID: "usr-1", Role: auth.RoleFaculty}

	assert.NoError(t, httpAuth.Authorize(identity, auth.NewRoleSet(auth.RoleFaculty)))

	err := httpAuth.Authorize(identity, auth.NewRoleSet(auth.RoleAdmin))
	require.Error(t, err)
	assert.True(t, auth.IsForbiddenError(err))
}
