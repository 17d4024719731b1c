package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/taxlink/partner-portal/internal/domain/auth"
)

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// AuthProvider initiates and completes an authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// PasswordAuthenticator is implemented by providers that manage credentials
// directly (the dev provider). The hosted OIDC provider does not.
type PasswordAuthenticator interface {
	// Reauthenticate verifies the current password for the given email.
	Reauthenticate(ctx context.Context, email, currentPassword string) error

	// ChangePassword replaces the credential for the most recently
	// reauthenticated identity.
	ChangePassword(ctx context.Context, newPassword string) error
}

// RoleMapper maps IdP group membership to a portal role.
type RoleMapper interface {
	// Map returns the role granted by the groups, or RoleUnresolved when no
	// group matches.
	Map(groups []string) domainauth.Role
}

// SessionStore persists and retrieves partner sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleCache persists the last-known role per user id. It exists only to avoid
// a loading flash after a reload and is never treated as authoritative.
type RoleCache interface {
	Put(ctx context.Context, userID string, role domainauth.Role, ttl time.Duration) error
	// Get returns the cached role, or ("", nil) when no value is cached.
	Get(ctx context.Context, userID string) (domainauth.Role, error)
	Clear(ctx context.Context, userID string) error
}
