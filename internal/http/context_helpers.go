package httpx

import (
	"context"

	domainauth "github.com/taxlink/partner-portal/internal/domain/auth"
	"github.com/taxlink/partner-portal/internal/service"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type sessionKey struct{}

// snapshotKey carries the guard's session-context snapshot for the request.
type snapshotKey struct{}

// SetSessionInContext returns a child context that carries the given session.
// If session is nil, the original ctx is returned unchanged.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetUserSessionFromContext returns the user session from context and a boolean indicating presence.
func GetUserSessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	if session, ok := ctx.Value(sessionKey{}).(*domainauth.Session); ok && session != nil {
		return session, true
	}
	return nil, false
}

// GetSessionFromContext retrieves the session from the request context.
// Maintained for convenience; prefer GetUserSessionFromContext when you need presence info.
func GetSessionFromContext(ctx context.Context) *domainauth.Session {
	if s, ok := GetUserSessionFromContext(ctx); ok {
		return s
	}
	return nil
}

// SetSnapshotInContext returns a child context carrying the session snapshot
// the guard resolved for this request.
func SetSnapshotInContext(ctx context.Context, snap service.SessionSnapshot) context.Context {
	return context.WithValue(ctx, snapshotKey{}, snap)
}

// GetSnapshotFromContext returns the guard's snapshot and whether one is present.
func GetSnapshotFromContext(ctx context.Context) (service.SessionSnapshot, bool) {
	snap, ok := ctx.Value(snapshotKey{}).(service.SessionSnapshot)
	return snap, ok
}
