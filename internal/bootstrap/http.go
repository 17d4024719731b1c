package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/taxlink/partner-portal/config"
	httpx "github.com/taxlink/partner-portal/internal/http"
)

// registryPruneInterval is how often expired session contexts are dropped.
const registryPruneInterval = 5 * time.Minute

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// StartHTTPServer creates and starts the HTTP server and the session-registry
// pruner. Returns the server instance for graceful shutdown.
func StartHTTPServer(ctx context.Context, cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	router := httpx.NewRouter(httpx.RouterServices{
		Auth:         cfg.Services.Auth,
		Registry:     cfg.Services.Registry,
		Partners:     cfg.Services.Partners,
		BankAccounts: cfg.Services.BankAccounts,
		Dashboard:    cfg.Services.Dashboard,
		Passwords:    cfg.Services.Passwords,
		CookieDomain: appCfg.HTTP.CookieDomain,
		IsDev:        appCfg.IsDev,
		Logger:       logger,
	})

	handler := httpx.Recover(logger)(httpx.Logging(logger)(router))

	if cfg.Services.Registry != nil {
		go cfg.Services.Registry.Run(ctx, registryPruneInterval)
	}

	addr := appCfg.HTTP.Addr
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	if server == nil {
		return nil
	}

	if logger != nil {
		logger.Info("shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if logger != nil {
		logger.Info("HTTP server stopped")
	}

	return nil
}
