package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/taxlink/partner-portal/internal/domain/auth"
	"github.com/taxlink/partner-portal/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth         *service.AuthService
	Registry     *service.SessionRegistry
	Partners     *service.PartnerService
	BankAccounts *service.BankAccountService
	Dashboard    *service.DashboardService
	Passwords    *service.PasswordService
	CookieDomain string
	IsDev        bool
	Logger       *slog.Logger
}

// Regions used by the portal's browser pages. Every known role lands on
// /dashboard; the agent and admin areas narrow from there, sending denied
// known roles back to their home page instead of sign-in.
var (
	dashboardRegion = RouteRegion{
		Name:         "dashboard",
		AllowedRoles: []domainauth.Role{domainauth.RoleCPA, domainauth.RoleAgent, domainauth.RoleSuperAdmin},
	}
	agentRegion = RouteRegion{
		Name:         "agent",
		AllowedRoles: []domainauth.Role{domainauth.RoleAgent, domainauth.RoleSuperAdmin},
		FallbackPathByRole: map[domainauth.Role]string{
			domainauth.RoleCPA: "/dashboard",
		},
	}
	adminRegion = RouteRegion{
		Name:         "admin",
		AllowedRoles: []domainauth.Role{domainauth.RoleSuperAdmin},
		FallbackPathByRole: map[domainauth.Role]string{
			domainauth.RoleCPA:   "/dashboard",
			domainauth.RoleAgent: "/agent",
		},
	}
)

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	}
	partnerHandlers := &PartnerHandlers{
		Partners:  services.Partners,
		Passwords: services.Passwords,
		Logger:    services.Logger,
	}
	bankAccountHandlers := &BankAccountHandlers{Accounts: services.BankAccounts, Logger: services.Logger}
	dashboardHandlers := &DashboardHandlers{Dashboard: services.Dashboard, Logger: services.Logger}

	registerAuthRoutes(mux, authHandlers)
	registerAPIRoutes(mux, services, partnerHandlers, bankAccountHandlers, dashboardHandlers)
	registerPageRoutes(mux, services.Registry)

	mux.HandleFunc("GET /healthz", Health)
	mux.HandleFunc("HEAD /healthz", Health)

	mux.Handle("GET /static/", staticAssets(services.IsDev))

	return mux
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/signed-out", h.SignedOut)
	mux.HandleFunc("GET /auth/status", h.Status)
}

// registerAPIRoutes wires the JSON API. Every route requires a valid session;
// role narrowing happens on browser pages, not here, so an agent can still
// manage their own profile and payout accounts through the same API.
func registerAPIRoutes(
	mux *http.ServeMux,
	services RouterServices,
	partners *PartnerHandlers,
	accounts *BankAccountHandlers,
	dashboard *DashboardHandlers,
) {
	requireAuth := RequireAuth(services.Auth)
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, requireAuth(h))
	}

	handle("GET /api/profile", partners.GetProfile)
	handle("PUT /api/profile", partners.UpdateProfile)
	handle("POST /api/profile/password", partners.ChangePassword)

	handle("GET /api/bank-accounts", accounts.List)
	handle("POST /api/bank-accounts", accounts.Create)
	handle("GET /api/bank-accounts/{id}", accounts.Get)
	handle("PUT /api/bank-accounts/{id}", accounts.Update)
	handle("DELETE /api/bank-accounts/{id}", accounts.Delete)
	handle("POST /api/bank-accounts/{id}/default", accounts.SetDefault)

	handle("GET /api/dashboard", dashboard.Summary)
}

// registerPageRoutes wires the guarded browser entry points. The SPA serves
// its own assets; these routes only enforce the region policy and hand the
// resolved snapshot to the page shell.
func registerPageRoutes(mux *http.ServeMux, registry *service.SessionRegistry) {
	if registry == nil {
		return
	}

	mux.Handle("GET /{$}", Guard(registry, dashboardRegion)(http.HandlerFunc(portalShell)))
	mux.Handle("GET /dashboard", Guard(registry, dashboardRegion)(http.HandlerFunc(portalShell)))
	mux.Handle("GET /agent", Guard(registry, agentRegion)(http.HandlerFunc(portalShell)))
	mux.Handle("GET /agent/{rest...}", Guard(registry, agentRegion)(http.HandlerFunc(portalShell)))
	mux.Handle("GET /admin", Guard(registry, adminRegion)(http.HandlerFunc(portalShell)))
	mux.Handle("GET /admin/{rest...}", Guard(registry, adminRegion)(http.HandlerFunc(portalShell)))
}

// portalShell renders the minimal page shell for a guarded route. The shell
// carries the resolved role so the client boots straight into the right view.
func portalShell(w http.ResponseWriter, r *http.Request) {
	snap, ok := GetSnapshotFromContext(r.Context())
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<!doctype html>
<html data-role="` + string(snap.Role) + `"><head><meta charset="utf-8"><title>Partner Portal</title><link rel="stylesheet" href="/static/css/styles.css"></head>
<body><div id="app"></div><script src="/static/app.js"></script></body></html>
`))
}
