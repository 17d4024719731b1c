package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taxlink/partner-portal/internal/data"
	domainauth "github.com/taxlink/partner-portal/internal/domain/auth"
	apperrors "github.com/taxlink/partner-portal/internal/errors"
	"github.com/taxlink/partner-portal/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	Sessions ports.SessionStore
	Registry *SessionRegistry

	// Roles and Partners enable first-login provisioning: an authenticated
	// identity without a partner profile whose groups map to a known role is
	// provisioned with that role. Either may be nil to disable it.
	Roles    ports.RoleMapper
	Partners *PartnerService

	// SessionDuration is used when the provider does not supply a token expiry.
	SessionDuration time.Duration
	TimeProvider    data.TimeProvider
	Logger          *slog.Logger
}

// AuthService orchestrates authentication flows by coordinating the identity
// provider, the session store, and the per-session contexts.
type AuthService struct {
	provider        ports.AuthProvider
	sessions        ports.SessionStore
	registry        *SessionRegistry
	roles           ports.RoleMapper
	partners        *PartnerService
	sessionDuration time.Duration
	timeProvider    data.TimeProvider
	logger          *slog.Logger
}

var errSessionExpired = errors.New("session expired")

// IsSessionExpired reports whether err indicates an expired session.
func IsSessionExpired(err error) bool { return errors.Is(err, errSessionExpired) }

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	if opts.SessionDuration <= 0 {
		opts.SessionDuration = 8 * time.Hour
	}
	if opts.TimeProvider == nil {
		opts.TimeProvider = &data.RealTimeProvider{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &AuthService{
		provider:        opts.Provider,
		sessions:        opts.Sessions,
		registry:        opts.Registry,
		roles:           opts.Roles,
		partners:        opts.Partners,
		sessionDuration: opts.SessionDuration,
		timeProvider:    opts.TimeProvider,
		logger:          opts.Logger.With("component", "auth_service"),
	}
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an authentication flow and returns the provider auth
// URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLoginResult contains the result of completing a login flow.
type CompleteLoginResult struct {
	Session  domainauth.Session
	Snapshot SessionSnapshot
}

// CompleteLogin exchanges the authorization code for an identity, starts role
// resolution through the session registry, and persists the session. The
// stored role reflects whatever resolution produced; an unresolved role in
// the store is re-resolved on the next request.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*CompleteLoginResult, error) {
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	expiresAt := identity.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = s.timeProvider.Now().Add(s.sessionDuration)
		identity.ExpiresAt = expiresAt
	}

	s.provisionFromGroups(ctx, identity)

	session := domainauth.Session{
		ID:        uuid.NewString(),
		UserID:    identity.UserID,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Email:     identity.Email,
		Role:      domainauth.RoleUnresolved,
		ExpiresAt: expiresAt,
	}

	sc := s.registry.Attach(ctx, session, identity)
	sc.Wait()
	snap := sc.Snapshot()
	session.Role = snap.Role

	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	s.logger.Info("login completed",
		"user_id", session.UserID, "role", string(session.Role))

	return &CompleteLoginResult{Session: session, Snapshot: snap}, nil
}

// provisionFromGroups creates a partner profile on first login when the
// identity's IdP groups map to a known role. Identities whose groups map to
// nothing stay unprovisioned and resolve to an unknown role. Failures are
// logged, not fatal: login proceeds and the user lands on onboarding.
func (s *AuthService) provisionFromGroups(ctx context.Context, ident domainauth.Identity) {
	if s.roles == nil || s.partners == nil {
		return
	}
	role := s.roles.Map(ident.Groups)
	if !role.IsKnown() {
		return
	}

	if _, err := s.partners.GetProfile(ctx, ident.UserID); err == nil {
		return
	} else if !apperrors.IsNotFound(err) {
		s.logger.Warn("profile lookup before provisioning failed",
			"user_id", ident.UserID, "error", err)
		return
	}

	name := strings.TrimSpace(ident.FirstName + " " + ident.LastName)
	if _, err := s.partners.Provision(ctx, ProvisionInput{
		UserID: ident.UserID,
		Name:   name,
		Email:  ident.Email,
		Role:   role,
	}); err != nil {
		// Concurrent first logins race to the same insert; the loser is fine.
		if apperrors.IsConflict(err) {
			return
		}
		s.logger.Warn("group-based provisioning failed",
			"user_id", ident.UserID, "role", string(role), "error", err)
		return
	}
	s.logger.Info("partner provisioned from IdP groups",
		"user_id", ident.UserID, "role", string(role))
}

// GetSession retrieves a session by ID, deleting it when expired.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	// End-exclusive, matching the registry and the session store: a session
	// whose expiry equals now is already expired.
	if !s.timeProvider.Now().Before(session.ExpiresAt) {
		s.registry.Remove(ctx, sessionID)
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(errSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, errSessionExpired
	}

	return &session, nil
}

// Logout removes the session and signs out its context. Missing sessions are
// not an error; logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	s.registry.Remove(ctx, sessionID)
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
