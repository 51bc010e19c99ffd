package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// TokenServiceImpl implements the TokenService interface. Verification is a
// pure function of (token, signing key): no server side session state.
type TokenServiceImpl struct {
	signingKey []byte
	defaultTTL time.Duration
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
}

// NewTokenService creates a new TokenService instance. An empty signing key
// is rejected here so a misconfigured process fails at startup instead of
// failing every request.
func NewTokenService(signingKey []byte, defaultTTL time.Duration, issuer string, audience jwt.ClaimStrings, logger Logger) (TokenService, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}

	if logger == nil {
		logger = defLogger{}
	}

	if defaultTTL == 0 {
		defaultTTL = 24 * time.Hour
	}

	return &TokenServiceImpl{
		signingKey: signingKey,
		defaultTTL: defaultTTL,
		issuer:     issuer,
		audience:   audience,
		logger:     logger,
	}, nil
}

// NewTokenServiceFromConfig wires a TokenService from the process config.
func NewTokenServiceFromConfig(cfg Config, logger Logger) (TokenService, error) {
	return NewTokenService(
		[]byte(cfg.GetSigningKey()),
		time.Duration(cfg.GetTokenExpiration())*time.Hour,
		cfg.GetIssuer(),
		cfg.GetAudience(),
		logger,
	)
}

// Generate creates a session token with the default expiration
func (ts *TokenServiceImpl) Generate(identity Identity) (string, error) {
	return ts.Issue(identity, ts.defaultTTL)
}

// Issue creates a session token for the identity with the given TTL. The
// TTL is applied as-is: issuing an already expired token is legal and the
// result simply never verifies.
func (ts *TokenServiceImpl) Issue(identity Identity, ttl time.Duration) (string, error) {
	if identity == nil {
		return "", goerrors.New("identity must not be nil", goerrors.CategoryBadInput)
	}

	claims, err := NewClaims(identity.ID(), identity.Email(), identity.Role())
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims.RegisteredClaims.Issuer = ts.issuer
	claims.RegisteredClaims.Audience = ts.audienceCopy()
	claims.RegisteredClaims.IssuedAt = jwt.NewNumericDate(now)
	claims.RegisteredClaims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", goerrors.New("claims must not be nil", goerrors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign session token")
	}

	return signedString, nil
}

// Validate parses and validates a token string, returning structured claims.
// Signature comparison happens inside the HMAC verifier in constant time.
// Failures keep their kind (malformed, signature, expired) for audit logs;
// the HTTP boundary collapses them into a generic 401.
func (ts *TokenServiceImpl) Validate(tokenString string) (AuthClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		return nil, ts.mapParseError(err)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode or validate claims")
	return nil, ErrTokenMalformed
}

// mapParseError translates golang-jwt sentinel errors into the package
// taxonomy while preserving the original error as the source.
func (ts *TokenServiceImpl) mapParseError(err error) error {
	switch {
	case goerrors.Is(err, jwt.ErrTokenExpired):
		return goerrors.Wrap(err, ErrTokenExpired.Category, ErrTokenExpired.Message).
			WithTextCode(ErrTokenExpired.TextCode).
			WithCode(ErrTokenExpired.Code)
	case goerrors.Is(err, jwt.ErrTokenSignatureInvalid):
		return goerrors.Wrap(err, ErrTokenSignature.Category, ErrTokenSignature.Message).
			WithTextCode(ErrTokenSignature.TextCode).
			WithCode(ErrTokenSignature.Code)
	default:
		return goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode).
			WithCode(ErrTokenMalformed.Code)
	}
}

func (ts *TokenServiceImpl) audienceCopy() jwt.ClaimStrings {
	if len(ts.audience) == 0 {
		return nil
	}
	aud := make(jwt.ClaimStrings, len(ts.audience))
	copy(aud, ts.audience)
	return aud
}
