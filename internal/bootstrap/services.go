package bootstrap

import (
	"database/sql"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/taxlink/partner-portal/config"
	"github.com/taxlink/partner-portal/internal/adapters/authroles"
	redisadapter "github.com/taxlink/partner-portal/internal/adapters/redis"
	"github.com/taxlink/partner-portal/internal/data"
	"github.com/taxlink/partner-portal/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth         *service.AuthService
	Registry     *service.SessionRegistry
	Partners     *service.PartnerService
	BankAccounts *service.BankAccountService
	Dashboard    *service.DashboardService
	Passwords    *service.PasswordService
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewServices wires repositories, adapters, and services.
func NewServices(deps *ServiceDeps) ServiceContainer {
	if deps == nil {
		return ServiceContainer{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := deps.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	partnerRepo := data.NewPartnerRepo(deps.DB)
	bankAccountRepo := data.NewBankAccountRepo(deps.DB)

	sessionStore := redisadapter.NewSessionStore(deps.RedisClient)
	roleCache := redisadapter.NewRoleCache(deps.RedisClient)

	registry := service.NewSessionRegistry(service.SessionRegistryOptions{
		Sessions: sessionStore,
		NewContext: func() *service.SessionContext {
			return service.NewSessionContext(service.SessionContextOptions{
				Partners:   partnerRepo,
				RoleCache:  roleCache,
				FailPolicy: appCfg.Session.FailPolicy,
				RoleTTL:    appCfg.Cache.RoleTTL,
				Logger:     logger,
			})
		},
		Logger: logger,
	})

	partnerService := service.NewPartnerService(service.PartnerServiceOptions{
		Partners: partnerRepo,
		Logger:   logger,
	})

	providers := buildAuthProviders(appCfg.Auth, logger)
	var authService *service.AuthService
	if providers.Provider != nil {
		authService = service.NewAuthService(service.AuthServiceOptions{
			Provider: providers.Provider,
			Sessions: sessionStore,
			Registry: registry,
			Roles: authroles.StaticRoleMapper{
				AdminGroup: appCfg.Auth.AdminGroup,
				AgentGroup: appCfg.Auth.AgentGroup,
				CPAGroup:   appCfg.Auth.CPAGroup,
			},
			Partners:        partnerService,
			SessionDuration: appCfg.Session.Duration,
			Logger:          logger,
		})
	} else {
		logger.Warn("auth service disabled", "mode", string(appCfg.Auth.Mode))
	}

	return ServiceContainer{
		Auth:     authService,
		Registry: registry,
		Partners: partnerService,
		BankAccounts: service.NewBankAccountService(service.BankAccountServiceOptions{
			Accounts: bankAccountRepo,
			Logger:   logger,
		}),
		Dashboard: service.NewDashboardService(service.DashboardServiceOptions{
			Partners: partnerRepo,
			Accounts: bankAccountRepo,
			Logger:   logger,
		}),
		Passwords: service.NewPasswordService(service.PasswordServiceOptions{
			Authenticator: providers.PasswordAuth,
			Logger:        logger,
		}),
	}
}
