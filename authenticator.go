package auth

import (
	"context"
	"reflect"
	"time"
)

// Auther verifies stored credentials and issues session tokens. Token
// verification itself stays in the TokenService; the Auther only glues the
// identity store to issuance.
type Auther struct {
	provider     IdentityProvider
	tokenService TokenService
	tokenTTL     time.Duration
	logger       Logger
	activity     ActivitySink
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, opts Config) (*Auther, error) {
	tokenService, err := NewTokenServiceFromConfig(opts, defLogger{})
	if err != nil {
		return nil, err
	}

	return &Auther{
		provider:     provider,
		tokenService: tokenService,
		tokenTTL:     time.Duration(opts.GetTokenExpiration()) * time.Hour,
		logger:       defLogger{},
		activity:     noopActivitySink{},
	}, nil
}

// WithActivitySink sets the sink used to emit login and impersonation
// events. Sinks run best effort; a failing sink never blocks a login.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activity = normalizeActivitySink(sink)
	return s
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenService overrides the token service, e.g. to share one instance
// with the route guard.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the identifier and password against the identity store and
// issues a session token. No retries: verification is deterministic.
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		s.recordActivity(ctx, ActivityEventLoginFailure, "", map[string]any{
			"identifier": identifier,
		})
		return "", err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		return "", ErrIdentityNotFound
	}

	token, err := s.tokenService.Issue(identity, s.tokenTTL)
	if err != nil {
		return "", err
	}

	s.recordActivity(ctx, ActivityEventLoginSuccess, identity.ID(), nil)
	return token, nil
}

// Impersonate issues a token for the identified user without a password
// check. Callers gate this behind the admin role.
func (s *Auther) Impersonate(ctx context.Context, identifier string) (string, error) {
	identity, err := s.provider.FindIdentityByIdentifier(ctx, identifier)
	if err != nil {
		s.logger.Error("Impersonate find identity error", "error", err)
		return "", err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Impersonate identity is nil")
		return "", ErrIdentityNotFound
	}

	token, err := s.tokenService.Issue(identity, s.tokenTTL)
	if err != nil {
		return "", err
	}

	s.recordActivity(ctx, ActivityEventImpersonationSuccess, identity.ID(), map[string]any{
		"identifier": identifier,
	})
	return token, nil
}

func (s *Auther) recordActivity(ctx context.Context, eventType ActivityEventType, userID string, metadata map[string]any) {
	event := ActivityEvent{
		EventType:  eventType,
		UserID:     userID,
		Metadata:   metadata,
		OccurredAt: time.Now(),
	}

	if err := normalizeActivitySink(s.activity).Record(ctx, event); err != nil {
		s.logger.Warn("activity sink error", "event", string(eventType), "error", err)
	}
}

// IdentityFromToken validates a raw token and returns its sanitized
// identity projection.
func (s *Auther) IdentityFromToken(ctx context.Context, token string) (*ResolvedIdentity, error) {
	claims, err := s.tokenService.Validate(token)
	if err != nil {
		s.logger.Error("IdentityFromToken validation failed", "kind", VerifyErrorKind(err))
		return nil, err
	}

	return NewResolvedIdentity(claims), nil
}
