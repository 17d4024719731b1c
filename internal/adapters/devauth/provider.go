package devauth

// Package devauth provides a simple, config-driven AuthProvider for local development.

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	domainauth "github.com/taxlink/partner-portal/internal/domain/auth"
	"github.com/taxlink/partner-portal/internal/ports"
)

// ErrBadCredentials is returned when reauthentication fails.
var ErrBadCredentials = errors.New("dev auth: invalid email or password")

// errNotReauthenticated is returned when ChangePassword is called before a
// successful Reauthenticate.
var errNotReauthenticated = errors.New("dev auth: reauthenticate before changing password")

// Config controls the dev auth provider behavior.
type Config struct {
	UserID          string
	Email           string
	Password        string
	SessionDuration time.Duration // default 8h when zero
}

// Provider implements ports.AuthProvider and ports.PasswordAuthenticator for
// local development. It short-circuits the OAuth flow by redirecting back to
// our own callback with locally generated state and nonce; Exchange ignores
// the code and returns the configured identity.
type Provider struct {
	mu              sync.Mutex
	identity        domainauth.Identity
	password        string
	reauthenticated bool
	sessionDuration time.Duration
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	dur := cfg.SessionDuration
	if dur == 0 {
		dur = 8 * time.Hour
	}
	return &Provider{
		identity: domainauth.Identity{
			UserID:    cfg.UserID,
			Email:     cfg.Email,
			ExpiresAt: time.Now().Add(dur),
		},
		password:        cfg.Password,
		sessionDuration: dur,
	}, nil
}

// Begin returns a local callback URL and cryptographically secure state and nonce.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	// The standard handler expects GET /auth/callback?code=...&state=...
	authURL := "/auth/callback?code=dev&state=" + state
	return authURL, state, nonce, nil
}

// Exchange ignores the provided code/state/nonce (validation handled by handler) and returns the dev identity.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	// Refresh expiry on each exchange for convenience
	if time.Until(p.identity.ExpiresAt) < 5*time.Minute {
		p.identity.ExpiresAt = time.Now().Add(p.sessionDuration)
	}
	return p.identity, nil
}

// Reauthenticate verifies the current credential for the configured identity.
func (p *Provider) Reauthenticate(_ context.Context, email, currentPassword string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	emailOK := strings.EqualFold(strings.TrimSpace(email), p.identity.Email)
	passOK := subtle.ConstantTimeCompare([]byte(currentPassword), []byte(p.password)) == 1
	if !emailOK || !passOK {
		p.reauthenticated = false
		return ErrBadCredentials
	}
	p.reauthenticated = true
	return nil
}

// ChangePassword replaces the credential after a successful Reauthenticate.
func (p *Provider) ChangePassword(_ context.Context, newPassword string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.reauthenticated {
		return errNotReauthenticated
	}
	if newPassword == "" {
		return errors.New("dev auth: new password cannot be empty")
	}
	p.password = newPassword
	p.reauthenticated = false
	return nil
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	bLen := (n*3 + 3) / 4
	b := make([]byte, bLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < n {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:n], nil
}
