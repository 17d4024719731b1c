// Package service provides business logic services for the partner portal.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taxlink/partner-portal/config"
	"github.com/taxlink/partner-portal/internal/data"
	domainauth "github.com/taxlink/partner-portal/internal/domain/auth"
	"github.com/taxlink/partner-portal/internal/domain/model"
	apperrors "github.com/taxlink/partner-portal/internal/errors"
	"github.com/taxlink/partner-portal/internal/ports"
)

// SessionSnapshot is a point-in-time view of the session context. All fields
// are copies; mutating a snapshot has no effect on the context.
type SessionSnapshot struct {
	State    domainauth.State
	Identity *domainauth.Identity
	Profile  *model.Partner
	Role     domainauth.Role

	// CachedRole is the last-known role from the role cache. It is advisory
	// only: guards may use it to pick a less jarring interim page while
	// State is resolving-role, never to grant access.
	CachedRole domainauth.Role

	// Generation increments on every auth change. Observers can compare
	// generations to detect that a snapshot is stale.
	Generation uint64
}

// IsResolved reports whether role resolution produced a usable role.
func (s SessionSnapshot) IsResolved() bool {
	return s.State == domainauth.StateReady && s.Role != domainauth.RoleUnresolved
}

// SessionContext tracks the authenticated identity and its resolved role for
// the lifetime of a session. It is the single source of truth consulted by
// route guards and handlers.
//
// Role resolution runs asynchronously. Each auth change bumps a generation
// counter; a resolution that finishes after a newer auth change has started
// is discarded, so a slow profile fetch for a previous identity can never
// overwrite the current one.
type SessionContext struct {
	partners     ports.PartnerRepository
	roleCache    ports.RoleCache
	failPolicy   config.FailPolicy
	roleTTL      time.Duration
	timeProvider data.TimeProvider
	logger       *slog.Logger

	mu         sync.Mutex
	state      domainauth.State
	identity   *domainauth.Identity
	profile    *model.Partner
	role       domainauth.Role
	cachedRole domainauth.Role
	generation uint64

	subMu       sync.Mutex
	subscribers map[int]chan struct{}
	nextSubID   int

	// wg tracks in-flight resolutions so tests and shutdown can drain them.
	wg sync.WaitGroup
}

// SessionContextOptions holds the dependencies for creating a SessionContext.
type SessionContextOptions struct {
	Partners     ports.PartnerRepository
	RoleCache    ports.RoleCache
	FailPolicy   config.FailPolicy
	RoleTTL      time.Duration
	TimeProvider data.TimeProvider
	Logger       *slog.Logger
}

// NewSessionContext constructs a SessionContext in the initializing state.
func NewSessionContext(opts SessionContextOptions) *SessionContext {
	if opts.FailPolicy == "" {
		opts.FailPolicy = config.FailOpen
	}
	if opts.RoleTTL <= 0 {
		opts.RoleTTL = 24 * time.Hour
	}
	if opts.TimeProvider == nil {
		opts.TimeProvider = &data.RealTimeProvider{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &SessionContext{
		partners:     opts.Partners,
		roleCache:    opts.RoleCache,
		failPolicy:   opts.FailPolicy,
		roleTTL:      opts.RoleTTL,
		timeProvider: opts.TimeProvider,
		logger:       opts.Logger.With("component", "session_context"),
		state:        domainauth.StateInitializing,
		role:         domainauth.RoleUnresolved,
		subscribers:  make(map[int]chan struct{}),
	}
}

// Snapshot returns the current session state.
func (c *SessionContext) Snapshot() SessionSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *SessionContext) snapshotLocked() SessionSnapshot {
	snap := SessionSnapshot{
		State:      c.state,
		Role:       c.role,
		CachedRole: c.cachedRole,
		Generation: c.generation,
	}
	if c.identity != nil {
		ident := *c.identity
		snap.Identity = &ident
	}
	if c.profile != nil {
		profile := *c.profile
		snap.Profile = &profile
	}
	return snap
}

// OnAuthChanged records a new authentication event. A non-nil identity moves
// the context to resolving-role and starts an asynchronous role resolution;
// nil records a sign-out and takes effect synchronously.
func (c *SessionContext) OnAuthChanged(ctx context.Context, ident *domainauth.Identity) {
	c.mu.Lock()

	c.generation++
	gen := c.generation

	if ident == nil {
		c.state = domainauth.StateSignedOut
		c.identity = nil
		c.profile = nil
		c.role = domainauth.RoleUnresolved
		c.cachedRole = ""
		c.mu.Unlock()
		c.notify()
		return
	}

	identCopy := *ident
	c.identity = &identCopy
	c.profile = nil
	c.role = domainauth.RoleUnresolved
	c.state = domainauth.StateResolvingRole
	c.cachedRole = c.lookupCachedRole(ctx, ident.UserID)
	c.mu.Unlock()
	c.notify()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.resolveRole(context.WithoutCancel(ctx), gen, identCopy)
	}()
}

// Wait blocks until all in-flight role resolutions have finished.
func (c *SessionContext) Wait() { c.wg.Wait() }

// Logout clears the cached role for the current identity and resets the
// context to signed-out. Cache errors are logged, never surfaced; sign-out
// must not fail.
func (c *SessionContext) Logout(ctx context.Context) {
	c.mu.Lock()
	var userID string
	if c.identity != nil {
		userID = c.identity.UserID
	}
	c.mu.Unlock()

	if userID != "" && c.roleCache != nil {
		if err := c.roleCache.Clear(ctx, userID); err != nil {
			c.logger.Warn("failed to clear cached role on logout",
				"user_id", userID, "error", err)
		}
	}
	c.OnAuthChanged(ctx, nil)
}

// Subscribe returns a channel that receives a signal after each state change,
// and a cancel function that releases the subscription. Signals are
// best-effort: a slow receiver may coalesce several changes into one signal.
func (c *SessionContext) Subscribe() (<-chan struct{}, func()) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	id := c.nextSubID
	c.nextSubID++
	ch := make(chan struct{}, 1)
	c.subscribers[id] = ch
	return ch, func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		delete(c.subscribers, id)
	}
}

func (c *SessionContext) notify() {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// lookupCachedRole reads the advisory last-known role. Failures degrade to
// "no cached role"; the cache is never load-bearing.
func (c *SessionContext) lookupCachedRole(ctx context.Context, userID string) domainauth.Role {
	if c.roleCache == nil {
		return ""
	}
	role, err := c.roleCache.Get(ctx, userID)
	if err != nil {
		c.logger.Warn("failed to read cached role", "user_id", userID, "error", err)
		return ""
	}
	return role
}

// resolveRole fetches the partner profile and commits the resolved role,
// unless a newer auth change has superseded this resolution.
func (c *SessionContext) resolveRole(ctx context.Context, gen uint64, ident domainauth.Identity) {
	profile, err := c.partners.GetByID(ctx, ident.UserID)

	switch {
	case err == nil:
		role := profile.Role
		if role == "" {
			// Profiles written before roles existed have no role field.
			role = domainauth.RoleCPA
		}
		if c.commit(gen, domainauth.StateReady, profile, role) {
			c.cacheRole(ctx, ident.UserID, role)
		}

	case apperrors.IsNotFound(err):
		// Authenticated but not provisioned as a partner. Ready with an
		// unknown role so guards can route to an onboarding page.
		c.logger.Info("no partner profile for authenticated user",
			"user_id", ident.UserID)
		c.commit(gen, domainauth.StateReady, nil, domainauth.RoleUnknown)

	default:
		c.logger.Error("role resolution failed",
			"user_id", ident.UserID,
			"fail_policy", string(c.failPolicy),
			"error", err)
		if c.failPolicy == config.FailClosed {
			// Stay in resolving-role; guards keep showing the interim page.
			return
		}
		c.commit(gen, domainauth.StateReady, nil, domainauth.RoleUnresolved)
	}
}

// commit applies a resolution result if it still belongs to the current
// generation. Returns false when the result was stale and discarded.
func (c *SessionContext) commit(gen uint64, state domainauth.State, profile *model.Partner, role domainauth.Role) bool {
	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		c.logger.Debug("discarding stale role resolution",
			"resolution_generation", gen, "current_generation", c.generation)
		return false
	}
	c.state = state
	c.profile = profile
	c.role = role
	c.mu.Unlock()
	c.notify()
	return true
}

func (c *SessionContext) cacheRole(ctx context.Context, userID string, role domainauth.Role) {
	if c.roleCache == nil || !role.IsKnown() {
		return
	}
	if err := c.roleCache.Put(ctx, userID, role, c.roleTTL); err != nil {
		c.logger.Warn("failed to cache resolved role",
			"user_id", userID, "error", err)
	}
}
