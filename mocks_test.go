package auth_test

import (
	"context"

	"github.com/campuskit/go-auth"
	"github.com/stretchr/testify/mock"
)

// TestIdentity is a plain Identity fixture
type TestIdentity struct {
	id       string
	username string
	email    string
	role     auth.Role
}

func (t TestIdentity) ID() string       { return t.id }
func (t TestIdentity) Username() string { return t.username }
func (t TestIdentity) Email() string    { return t.email }
func (t TestIdentity) Role() auth.Role  { return t.role }

func newTestIdentity(role auth.Role) TestIdentity {
	return TestIdentity{
		id:       "usr-123",
		username: "grace",
		email:    "grace@campuskit.dev",
		role:     role,
	}
}

// testConfig implements auth.Config with fixed values
type testConfig struct {
	signingKey string
	issuer     string
	audience   []string
}

func (c testConfig) GetSigningKey() string         { return c.signingKey }
func (c testConfig) GetSigningMethod() string      { return "HS256" }
func (c testConfig) GetContextKey() string         { return "user" }
func (c testConfig) GetTokenExpiration() int       { return 24 }
func (c testConfig) GetExtendedTokenDuration() int { return 24 * 7 }
func (c testConfig) GetTokenLookup() string {
	return "cookie:" + auth.DefaultCookieName + ",header:Authorization"
}
func (c testConfig) GetAuthScheme() string { return "Bearer" }
func (c testConfig) GetCookieName() string { return auth.DefaultCookieName }
func (c testConfig) GetIssuer() string     { return c.issuer }
func (c testConfig) GetAudience() []string { return c.audience }

func newTestConfig() testConfig {
	return testConfig{signingKey: "test-signing-key"}
}

// MockIdentityProvider implements auth.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (auth.Identity, error) {
	args := m.Called(ctx, identifier, password)
	identity, _ := args.Get(0).(auth.Identity)
	return identity, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (auth.Identity, error) {
	args := m.Called(ctx, identifier)
	identity, _ := args.Get(0).(auth.Identity)
	return identity, args.Error(1)
}

// stubTracker implements auth.UserTracker with function hooks
type stubTracker struct {
	getByIdentifier func(ctx context.Context, identifier string) (*auth.User, error)
	attempted       []*auth.User
	succeeded       []*auth.User
}

func (s *stubTracker) GetByIdentifier(ctx context.Context, identifier string) (*auth.User, error) {
	return s.getByIdentifier(ctx, identifier)
}

func (s *stubTracker) TrackAttemptedLogin(ctx context.Context, user *auth.User) error {
	s.attempted = append(s.attempted, user)
	return nil
}

func (s *stubTracker) TrackSuccessfulLogin(ctx context.Context, user *auth.User) error {
	s.succeeded = append(s.succeeded, user)
	return nil
}

// captureSink records activity events
type captureSink struct {
	events []auth.ActivityEvent
}

func (c *captureSink) Record(ctx context.Context, event auth.ActivityEvent) error {
	c.events = append(c.events, event)
	return nil
}
