package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taxlink/partner-portal/internal/data"
	domainauth "github.com/taxlink/partner-portal/internal/domain/auth"
	"github.com/taxlink/partner-portal/internal/ports"
)

// SessionRegistry holds one SessionContext per active server-side session.
// Contexts are created at login and rebuilt lazily from the session store
// after a restart, which replays the resolving-role flow exactly as a fresh
// page load would.
type SessionRegistry struct {
	sessions     ports.SessionStore
	newContext   func() *SessionContext
	timeProvider data.TimeProvider
	logger       *slog.Logger

	mu       sync.Mutex
	contexts map[string]*registryEntry
}

type registryEntry struct {
	sc        *SessionContext
	expiresAt time.Time
}

// SessionRegistryOptions holds the dependencies for creating a SessionRegistry.
type SessionRegistryOptions struct {
	Sessions ports.SessionStore
	// NewContext constructs a fresh SessionContext; the registry calls it
	// once per tracked session.
	NewContext   func() *SessionContext
	TimeProvider data.TimeProvider
	Logger       *slog.Logger
}

// NewSessionRegistry constructs an empty registry.
func NewSessionRegistry(opts SessionRegistryOptions) *SessionRegistry {
	if opts.TimeProvider == nil {
		opts.TimeProvider = &data.RealTimeProvider{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &SessionRegistry{
		sessions:     opts.Sessions,
		newContext:   opts.NewContext,
		timeProvider: opts.TimeProvider,
		logger:       opts.Logger.With("component", "session_registry"),
		contexts:     make(map[string]*registryEntry),
	}
}

// Attach creates (or reuses) the context for the session and records the
// authentication event, starting role resolution.
func (r *SessionRegistry) Attach(ctx context.Context, sess domainauth.Session, ident domainauth.Identity) *SessionContext {
	r.mu.Lock()
	entry, ok := r.contexts[sess.ID]
	if !ok {
		entry = &registryEntry{sc: r.newContext()}
		r.contexts[sess.ID] = entry
	}
	entry.expiresAt = sess.ExpiresAt
	r.mu.Unlock()

	entry.sc.OnAuthChanged(ctx, &ident)
	return entry.sc
}

// Resolve returns the session context snapshot for the session ID. An empty
// ID, a missing or expired session, or a store failure all resolve to a
// signed-out snapshot; the caller redirects to sign-in either way.
func (r *SessionRegistry) Resolve(ctx context.Context, sessionID string) SessionSnapshot {
	if sessionID == "" {
		return SessionSnapshot{State: domainauth.StateSignedOut, Role: domainauth.RoleUnresolved}
	}

	now := r.timeProvider.Now()

	r.mu.Lock()
	if entry, ok := r.contexts[sessionID]; ok {
		if now.Before(entry.expiresAt) {
			r.mu.Unlock()
			return entry.sc.Snapshot()
		}
		delete(r.contexts, sessionID)
	}
	r.mu.Unlock()

	// Unknown to this process: rebuild from the session store (restart or
	// another replica handled the login).
	sess, err := r.sessions.Get(ctx, sessionID)
	if err != nil {
		r.logger.Debug("session lookup failed", "error", err)
		return SessionSnapshot{State: domainauth.StateSignedOut, Role: domainauth.RoleUnresolved}
	}
	if !now.Before(sess.ExpiresAt) {
		return SessionSnapshot{State: domainauth.StateSignedOut, Role: domainauth.RoleUnresolved}
	}

	sc := r.Attach(ctx, sess, domainauth.Identity{
		UserID:    sess.UserID,
		FirstName: sess.FirstName,
		LastName:  sess.LastName,
		Email:     sess.Email,
		ExpiresAt: sess.ExpiresAt,
	})
	return sc.Snapshot()
}

// Remove signs out and drops the context for the session ID, if tracked.
func (r *SessionRegistry) Remove(ctx context.Context, sessionID string) {
	r.mu.Lock()
	entry, ok := r.contexts[sessionID]
	delete(r.contexts, sessionID)
	r.mu.Unlock()

	if ok {
		entry.sc.Logout(ctx)
	}
}

// Prune drops contexts whose sessions have expired. Returns the number removed.
func (r *SessionRegistry) Prune(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, entry := range r.contexts {
		if !now.Before(entry.expiresAt) {
			delete(r.contexts, id)
			removed++
		}
	}
	return removed
}

// Run prunes expired contexts at the given interval until ctx is cancelled.
func (r *SessionRegistry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Prune(r.timeProvider.Now()); n > 0 {
				r.logger.Debug("pruned expired session contexts", "count", n)
			}
		}
	}
}

// Len reports how many contexts the registry currently tracks.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.contexts)
}
