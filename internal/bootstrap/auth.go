package bootstrap

import (
	"log/slog"

	"github.com/taxlink/partner-portal/config"
	"github.com/taxlink/partner-portal/internal/adapters/devauth"
	"github.com/taxlink/partner-portal/internal/adapters/oidc"
	"github.com/taxlink/partner-portal/internal/ports"
)

// authProviders groups the identity provider and, when the provider manages
// credentials itself (dev/mock mode), the password authenticator. Hosted OIDC
// providers own credentials and leave PasswordAuth nil.
type authProviders struct {
	Provider     ports.AuthProvider
	PasswordAuth ports.PasswordAuthenticator
}

// buildAuthProviders selects the identity provider for the configured auth
// mode. Returns zero providers (auth disabled) when configuration is invalid.
func buildAuthProviders(cfg config.AuthConfig, logger *slog.Logger) authProviders {
	switch cfg.Mode {
	case config.AuthModeMock:
		prov, err := devauth.NewProvider(devauth.Config{
			UserID:   cfg.DevAuth.UserID,
			Email:    cfg.DevAuth.Email,
			Password: cfg.DevAuth.Password,
		})
		if err != nil {
			if logger != nil {
				logger.Warn("failed to create dev auth provider, auth disabled", "error", err)
			}
			return authProviders{}
		}
		return authProviders{Provider: prov, PasswordAuth: prov}

	case config.AuthModeOAuth:
		oauth := cfg.OAuth
		if oauth.DiscoveryURL == "" || oauth.ClientID == "" || oauth.ClientSecret == "" {
			if logger != nil {
				logger.Warn("AuthModeOAuth selected but required config missing; auth disabled",
					"discovery_url_empty", oauth.DiscoveryURL == "",
					"client_id_empty", oauth.ClientID == "",
					"client_secret_empty", oauth.ClientSecret == "",
				)
			}
			return authProviders{}
		}

		prov, err := oidc.NewProvider(oidc.ProviderConfig{
			ClientID:        oauth.ClientID,
			ClientSecret:    oauth.ClientSecret,
			RedirectURL:     oauth.RedirectURL,
			Scope:           oauth.Scope,
			DiscoveryURL:    oauth.DiscoveryURL,
			LogoutURL:       oauth.LogoutURL,
			GroupsClaimPath: oauth.GroupsClaimPath,
		})
		if err != nil {
			if logger != nil {
				logger.Warn("failed to create OIDC provider, auth disabled", "error", err)
			}
			return authProviders{}
		}
		return authProviders{Provider: prov}

	default:
		return authProviders{}
	}
}
