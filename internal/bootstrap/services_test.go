package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxlink/partner-portal/config"
)

func TestBuildAuthProviders_MockModeIncludesPasswordAuth(t *testing.T) {
	providers := buildAuthProviders(config.AuthConfig{
		Mode: config.AuthModeMock,
		DevAuth: config.DevAuthConfig{
			UserID:   "dev-user",
			Email:    "dev@example.com",
			Password: "dev-password",
		},
	}, nil)

	require.NotNil(t, providers.Provider)
	assert.NotNil(t, providers.PasswordAuth, "dev provider manages credentials")
}

func TestBuildAuthProviders_MockModeRequiresIdentity(t *testing.T) {
	providers := buildAuthProviders(config.AuthConfig{Mode: config.AuthModeMock}, nil)

	assert.Nil(t, providers.Provider)
	assert.Nil(t, providers.PasswordAuth)
}

func TestBuildAuthProviders_OAuthRequiresDiscoveryURL(t *testing.T) {
	providers := buildAuthProviders(config.AuthConfig{
		Mode: config.AuthModeOAuth,
		OAuth: config.OAuthConfig{
			ClientID:     "portal",
			ClientSecret: "secret",
			// DiscoveryURL intentionally empty
		},
	}, nil)

	assert.Nil(t, providers.Provider)
}

func TestBuildAuthProviders_UnknownModeDisablesAuth(t *testing.T) {
	providers := buildAuthProviders(config.AuthConfig{Mode: "saml"}, nil)
	assert.Nil(t, providers.Provider)
}

func TestNewServices_MockAuthWiresEverything(t *testing.T) {
	cfg := config.AppConfig{
		Auth: config.AuthConfig{
			Mode: config.AuthModeMock,
			DevAuth: config.DevAuthConfig{
				UserID:   "dev-user",
				Email:    "dev@example.com",
				Password: "dev-password",
			},
		},
	}
	cfg.Sanitize()

	services := NewServices(&ServiceDeps{Config: &cfg})

	assert.NotNil(t, services.Auth)
	assert.NotNil(t, services.Registry)
	assert.NotNil(t, services.Partners)
	assert.NotNil(t, services.BankAccounts)
	assert.NotNil(t, services.Dashboard)
	assert.NotNil(t, services.Passwords)
}

func TestNewServices_NilDeps(t *testing.T) {
	services := NewServices(nil)
	assert.Nil(t, services.Auth)
	assert.Nil(t, services.Registry)
}
