package devauth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxlink/partner-portal/internal/ports"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := NewProvider(Config{
		UserID:   "dev-user",
		Email:    "dev@example.com",
		Password: "dev-password",
	})
	require.NoError(t, err)
	return p
}

func TestNewProvider_RequiredFields(t *testing.T) {
	_, err := NewProvider(Config{Email: "dev@example.com"})
	assert.Error(t, err)

	_, err = NewProvider(Config{UserID: "dev-user"})
	assert.Error(t, err)
}

func TestBegin_ReturnsLocalCallback(t *testing.T) {
	p := newTestProvider(t)

	authURL, state, nonce, err := p.Begin(context.Background(), ports.BeginInput{RedirectURL: "/"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(authURL, "/auth/callback?code=dev&state="))
	assert.Len(t, state, 24)
	assert.Len(t, nonce, 24)
	assert.Contains(t, authURL, state)
}

func TestExchange_ReturnsConfiguredIdentity(t *testing.T) {
	p := newTestProvider(t)

	identity, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "dev", State: "s", Nonce: "n"})
	require.NoError(t, err)
	assert.Equal(t, "dev-user", identity.UserID)
	assert.Equal(t, "dev@example.com", identity.Email)
	assert.True(t, identity.ExpiresAt.After(time.Now()))
}

func TestReauthenticate(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	assert.NoError(t, p.Reauthenticate(ctx, "dev@example.com", "dev-password"))
	assert.NoError(t, p.Reauthenticate(ctx, " DEV@example.com ", "dev-password"))

	assert.ErrorIs(t, p.Reauthenticate(ctx, "dev@example.com", "wrong"), ErrBadCredentials)
	assert.ErrorIs(t, p.Reauthenticate(ctx, "other@example.com", "dev-password"), ErrBadCredentials)
}

func TestChangePassword_RequiresReauthentication(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	// Not reauthenticated yet.
	assert.Error(t, p.ChangePassword(ctx, "new-password"))

	require.NoError(t, p.Reauthenticate(ctx, "dev@example.com", "dev-password"))
	require.NoError(t, p.ChangePassword(ctx, "new-password"))

	// Old credential no longer works, new one does.
	assert.ErrorIs(t, p.Reauthenticate(ctx, "dev@example.com", "dev-password"), ErrBadCredentials)
	assert.NoError(t, p.Reauthenticate(ctx, "dev@example.com", "new-password"))

	// A failed reauthentication clears the grant.
	require.ErrorIs(t, p.Reauthenticate(ctx, "dev@example.com", "nope"), ErrBadCredentials)
	assert.Error(t, p.ChangePassword(ctx, "another"))
}

func TestChangePassword_RejectsEmpty(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	require.NoError(t, p.Reauthenticate(ctx, "dev@example.com", "dev-password"))
	assert.Error(t, p.ChangePassword(ctx, ""))
}
