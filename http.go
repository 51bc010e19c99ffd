package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"

	"github.com/campuskit/go-auth/middleware/guard"
)

// RouteAuthenticator wires the resolver, the policy, and the route guard
// into the HTTP surface: cookie handling on login and logout, protected
// route middleware, and the boundary error mapping.
type RouteAuthenticator struct {
	auth                   Authenticator
	cfg                    Config
	policy                 *Policy
	cookieDuration         time.Duration
	extendedCookieDuration time.Duration
	Logger                 Logger
}

func NewHTTPAuthenticator(auther Authenticator, cfg Config) (*RouteAuthenticator, error) {
	cookieDuration := 24 * time.Hour
	if cfg.GetTokenExpiration() > 0 {
		cookieDuration = time.Duration(cfg.GetTokenExpiration()) * time.Hour
	}

	extendedCookieDuration := cookieDuration
	if cfg.GetExtendedTokenDuration() > 0 {
		extendedCookieDuration = time.Duration(cfg.GetExtendedTokenDuration()) * time.Hour
	}

	return &RouteAuthenticator{
		cfg:                    cfg,
		auth:                   auther,
		policy:                 NewPolicy(defLogger{}),
		Logger:                 defLogger{},
		cookieDuration:         cookieDuration,
		extendedCookieDuration: extendedCookieDuration,
	}, nil
}

func (a RouteAuthenticator) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

func (a RouteAuthenticator) GetExtendedCookieDuration() time.Duration {
	return a.extendedCookieDuration
}

// GuardValidator adapts a package TokenValidator to the guard contract.
func GuardValidator(validator TokenValidator) guard.TokenValidator {
	return guard.TokenValidatorFunc(func(tokenString string) (guard.Claims, error) {
		claims, err := validator.Validate(tokenString)
		if err != nil {
			return nil, err
		}
		rc, ok := claims.(guard.RoleClaims)
		if !ok {
			return nil, ErrTokenMalformed
		}
		return rc, nil
	})
}

// ContextEnricher propagates verified claims and the resolved identity into
// the standard context for downstream handlers.
func ContextEnricher(ctx context.Context, claims guard.Claims) context.Context {
	ac, ok := claims.(AuthClaims)
	if !ok {
		return ctx
	}
	return WithIdentity(WithClaimsContext(ctx, ac), NewResolvedIdentity(ac))
}

// ProtectedRoute guards a route with the given role set. An empty set means
// any verified identity passes; otherwise the identity role must be a
// member. Unauthenticated and forbidden rejections stay distinct so clients
// can tell "log in" from "you lack permission".
func (a *RouteAuthenticator) ProtectedRoute(requiredRoles ...Role) router.MiddlewareFunc {
	roles := make([]string, 0, len(requiredRoles))
	for _, r := range NewRoleSet(requiredRoles...).Roles() {
		roles = append(roles, r.String())
	}

	validator, ok := a.auth.(interface{ TokenService() TokenService })
	if !ok {
		panic("AUTH: authenticator does not expose a token service")
	}

	return guard.New(guard.Config{
		TokenValidator:  GuardValidator(validator.TokenService()),
		TokenLookup:     a.cfg.GetTokenLookup(),
		AuthScheme:      a.cfg.GetAuthScheme(),
		ContextKey:      a.cfg.GetContextKey(),
		RequiredRoles:   roles,
		ContextEnricher: ContextEnricher,
		ErrorHandler:    a.HandleAuthError,
	})
}

// HandleAuthError is the single mapping from internal failures to boundary
// responses. Failure kinds stay in the log line; clients only see the
// generic categories.
func (a *RouteAuthenticator) HandleAuthError(c router.Context, err error) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		a.Logger.Info(
			"auth rejection",
			"kind", VerifyErrorKind(err),
			"text_code", richErr.TextCode,
			"path", c.OriginalURL(),
			"details", print.MaybePrettyJSON(richErr.Metadata),
		)
	} else {
		a.Logger.Info("auth rejection", "kind", VerifyErrorKind(err), "path", c.OriginalURL())
	}

	return guard.DefaultErrorHandler(c, err)
}

// Authorize applies the access policy to an already resolved identity.
// Handlers use this for checks beyond the route level role set.
func (a *RouteAuthenticator) Authorize(identity *ResolvedIdentity, required RoleSet) error {
	return a.policy.Authorize(identity, required)
}

// Login verifies credentials, issues a token, and installs the session
// cookie. The token is also returned so API clients can use the bearer
// header instead of cookies.
func (a *RouteAuthenticator) Login(ctx router.Context, payload LoginPayload) (string, error) {
	token, err := a.auth.Login(ctx.Context(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("Login error", "error", err)
		return "", err
	}

	duration := a.cookieDuration
	if payload.GetExtendedSession() {
		duration = a.extendedCookieDuration
	}

	a.setCookieToken(ctx, token, duration)
	return token, nil
}

// Logout clears the session cookie. Tokens are stateless so there is
// nothing to revoke server side; expiry bounds the remaining validity.
func (a *RouteAuthenticator) Logout(ctx router.Context) {
	a.cookieDel(ctx, a.cfg.GetCookieName())
}

// Impersonate issues a session cookie for another user. Route wiring gates
// this behind the admin role.
func (a *RouteAuthenticator) Impersonate(c router.Context, identifier string) error {
	token, err := a.auth.Impersonate(c.Context(), identifier)
	if err != nil {
		a.Logger.Error("Impersonate authentication error", "error", err)
		return err
	}

	a.setCookieToken(c, token, a.cookieDuration)
	return nil
}

func (a *RouteAuthenticator) setCookieToken(c router.Context, val string, duration time.Duration) {
	c.Cookie(&router.Cookie{
		Name:     a.cfg.GetCookieName(),
		Value:    val,
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}
