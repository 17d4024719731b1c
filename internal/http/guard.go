package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	domainauth "github.com/taxlink/partner-portal/internal/domain/auth"
	"github.com/taxlink/partner-portal/internal/service"
)

const (
	sessionCookieName = "session_id"
	loginPath         = "/auth/login"
)

// RouteRegion declares the access policy for a group of routes: which roles
// may enter, and where each role is sent when it may not.
type RouteRegion struct {
	// Name identifies the region in logs.
	Name string

	// AllowedRoles is the allowlist. A role not listed here is denied even
	// if it is a known role.
	AllowedRoles []domainauth.Role

	// FallbackPathByRole maps a denied role to its home page. A denied role
	// with no entry is sent to sign-in.
	FallbackPathByRole map[domainauth.Role]string
}

// Allows reports whether the role is on the region's allowlist.
func (g RouteRegion) Allows(role domainauth.Role) bool {
	for _, allowed := range g.AllowedRoles {
		if role == allowed {
			return true
		}
	}
	return false
}

// FallbackPath returns the redirect target for a denied role, or "" when the
// role has no fallback and must sign in.
func (g RouteRegion) FallbackPath(role domainauth.Role) string {
	return g.FallbackPathByRole[role]
}

// SessionResolver yields the session-context snapshot for a session ID.
// Satisfied by *service.SessionRegistry.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) service.SessionSnapshot
}

// Guard returns a middleware enforcing the region's access policy against the
// current session context:
//
//  1. While the context is initializing or resolving the role, respond with
//     an interim loading page (API requests get 503 + Retry-After) — never a
//     premature redirect.
//  2. Signed out: redirect browsers to sign-in, 401 for API requests.
//  3. Ready and the role is allowlisted: serve, with the snapshot in context.
//  4. Ready, denied, and the role has a fallback page: redirect there.
//  5. Otherwise (unknown or unresolved role, or no fallback): sign-in
//     redirect for browsers, 401/403 for API requests.
func Guard(resolver SessionResolver, region RouteRegion) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap := resolver.Resolve(r.Context(), sessionIDFromRequest(r))

			switch snap.State {
			case domainauth.StateInitializing, domainauth.StateResolvingRole:
				writeResolving(w, r, snap)
				return

			case domainauth.StateSignedOut:
				denyUnauthenticated(w, r)
				return

			case domainauth.StateReady:
				// fall through to the role checks below

			default:
				denyUnauthenticated(w, r)
				return
			}

			if region.Allows(snap.Role) {
				ctx := SetSnapshotInContext(r.Context(), snap)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if fallback := region.FallbackPath(snap.Role); fallback != "" {
				if isBrowserRequest(r) {
					http.Redirect(w, r, fallback, http.StatusSeeOther)
					return
				}
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "insufficient_permissions",
					Err:     fmt.Errorf("role %s may not access %s", snap.Role, region.Name),
				})
				return
			}

			// Unknown, unresolved, or otherwise homeless roles re-authenticate.
			if snap.Role.IsKnown() && !isBrowserRequest(r) {
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "insufficient_permissions",
					Err:     fmt.Errorf("role %s may not access %s", snap.Role, region.Name),
				})
				return
			}
			denyUnauthenticated(w, r)
		})
	}
}

func sessionIDFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// writeResolving answers a request that arrived while role resolution is in
// flight. Browsers get a self-refreshing page; the cached last-known role only
// picks the page title, never grants access.
func writeResolving(w http.ResponseWriter, r *http.Request, snap service.SessionSnapshot) {
	if !isBrowserRequest(r) {
		w.Header().Set("Retry-After", "1")
		WriteError(w, ErrorParams{
			Code:    http.StatusServiceUnavailable,
			ErrCode: "session_resolving",
			Err:     errors.New("session role resolution in progress"),
		})
		return
	}

	title := "Loading your portal"
	if snap.CachedRole.IsKnown() {
		title = "Loading your " + strings.ReplaceAll(string(snap.CachedRole), "_", " ") + " portal"
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `<!doctype html>
<html><head><meta charset="utf-8"><meta http-equiv="refresh" content="1"><title>%s</title></head>
<body><p>%s…</p></body></html>
`, title, title)
}

func denyUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if isBrowserRequest(r) {
		redirectToLogin(w, r)
		return
	}
	WriteError(w, ErrorParams{
		Code:    http.StatusUnauthorized,
		ErrCode: "authentication_required",
		Err:     errors.New("authentication required"),
	})
}

// redirectToLogin redirects browser requests to the login page with the
// current URL as redirect_uri.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	redirectPath := safeRedirectPath(r.URL.RequestURI())
	loginURL := loginPath + "?redirect_uri=" + url.QueryEscape(redirectPath)
	http.Redirect(w, r, loginURL, http.StatusSeeOther)
}
