package guard

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

// jwksValidator verifies tokens issued outside the platform (for example a
// hosted identity provider) against remote JWK sets.
type jwksValidator struct {
	keyfunc jwt.Keyfunc
}

func newJWKSValidator(jwkSetURLs []string) (TokenValidator, error) {
	opts := keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			log.Printf("failed to do a background refresh of JWK set: %s", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	}

	m := make(map[string]keyfunc.Options, len(jwkSetURLs))
	for _, url := range jwkSetURLs {
		m[url] = opts
	}

	multi, err := keyfunc.GetMultiple(m, keyfunc.MultipleOptions{
		KeySelector: keyfunc.KeySelectorFirst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get JWK set URLs: %w", err)
	}

	return &jwksValidator{keyfunc: multi.Keyfunc}, nil
}

func (v *jwksValidator) Validate(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, v.keyfunc)
	if err != nil {
		return nil, err
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("unable to decode external token claims")
	}

	return externalClaims{claims: mc}, nil
}

// externalClaims adapts provider issued map claims to the guard contract.
// Field names follow the platform wire contract with registered-claim
// fallbacks for providers that only set sub.
type externalClaims struct {
	claims jwt.MapClaims
}

var _ RoleClaims = externalClaims{}

func (e externalClaims) Subject() string {
	sub, _ := e.claims.GetSubject()
	return sub
}

func (e externalClaims) UserID() string {
	if id := e.stringClaim("userId"); id != "" {
		return id
	}
	return e.Subject()
}

func (e externalClaims) Email() string {
	return e.stringClaim("email")
}

func (e externalClaims) HasAnyRole(roles ...string) bool {
	role := e.stringClaim("userType")
	if role == "" {
		role = e.stringClaim("role")
	}
	if role == "" {
		return false
	}
	for _, r := range roles {
		if role == r {
			return true
		}
	}
	return false
}

func (e externalClaims) stringClaim(key string) string {
	if v, ok := e.claims[key].(string); ok {
		return v
	}
	return ""
}
