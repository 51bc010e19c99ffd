package auth

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Default credential lookup: session cookie first, bearer header second.
// The order is part of the resolver contract.
const defaultTokenLookup = "cookie:" + DefaultCookieName + ",header:Authorization"

// DefaultCookieName is the session cookie the platform clients use.
const DefaultCookieName = "campus_session"

// EnvConfig is the environment backed Config implementation. The signing
// key is read once at startup and never re-read during request handling.
type EnvConfig struct {
	SigningKey            string
	SigningMethod         string
	ContextKey            string
	TokenExpiration       int
	ExtendedTokenDuration int
	TokenLookup           string
	AuthScheme            string
	CookieName            string
	Issuer                string
	Audience              []string
}

var _ Config = (*EnvConfig)(nil)

// LoadConfig reads configuration from the process environment, with a best
// effort .env load for local development. A missing or empty signing key is
// a fatal configuration error, not a runtime auth failure.
func LoadConfig() (*EnvConfig, error) {
	// ignore error: a .env file is optional outside local development
	_ = godotenv.Load()

	signingKey := os.Getenv("JWT_SECRET")
	if signingKey == "" {
		signingKey = os.Getenv("SUPABASE_JWT_SECRET")
	}

	if strings.TrimSpace(signingKey) == "" {
		return nil, ErrMissingSigningKey
	}

	cfg := &EnvConfig{
		SigningKey:            signingKey,
		SigningMethod:         "HS256",
		ContextKey:            "user",
		TokenExpiration:       envInt("AUTH_TOKEN_EXPIRATION_HOURS", 24),
		ExtendedTokenDuration: envInt("AUTH_EXTENDED_TOKEN_HOURS", 24*7),
		TokenLookup:           envString("AUTH_TOKEN_LOOKUP", defaultTokenLookup),
		AuthScheme:            "Bearer",
		CookieName:            envString("AUTH_COOKIE_NAME", DefaultCookieName),
		Issuer:                envString("AUTH_ISSUER", "campuskit"),
	}

	if aud := os.Getenv("AUTH_AUDIENCE"); aud != "" {
		for _, a := range strings.Split(aud, ",") {
			if a = strings.TrimSpace(a); a != "" {
				cfg.Audience = append(cfg.Audience, a)
			}
		}
	}

	return cfg, nil
}

// MustLoadConfig is LoadConfig for program start up, where a missing secret
// should prevent the process from serving at all.
func MustLoadConfig() *EnvConfig {
	cfg, err := LoadConfig()
	if err != nil {
		panic("AUTH: " + err.Error())
	}
	return cfg
}

func (c *EnvConfig) GetSigningKey() string    { return c.SigningKey }
func (c *EnvConfig) GetSigningMethod() string { return c.SigningMethod }
func (c *EnvConfig) GetContextKey() string    { return c.ContextKey }
func (c *EnvConfig) GetTokenExpiration() int  { return c.TokenExpiration }
func (c *EnvConfig) GetTokenLookup() string   { return c.TokenLookup }
func (c *EnvConfig) GetAuthScheme() string    { return c.AuthScheme }
func (c *EnvConfig) GetCookieName() string    { return c.CookieName }
func (c *EnvConfig) GetIssuer() string        { return c.Issuer }
func (c *EnvConfig) GetAudience() []string    { return c.Audience }
func (c *EnvConfig) GetExtendedTokenDuration() int {
	return c.ExtendedTokenDuration
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
