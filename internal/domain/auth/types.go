package auth

// Package auth contains domain-level types for identity, roles, and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// Role represents a partner's authorization role.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	// RoleUnresolved means role resolution has not completed for this session.
	RoleUnresolved Role = "unresolved"
	// RoleSuperAdmin is the portal administrator role.
	RoleSuperAdmin Role = "super_admin"
	// RoleAgent is a referral agent.
	RoleAgent Role = "agent"
	// RoleCPA is a certified public accountant partner.
	RoleCPA Role = "cpa"
	// RoleUnknown is assigned when an authenticated identity has no partner profile.
	RoleUnknown Role = "unknown"
)

// roleAliases maps legacy role strings from the pre-migration scheme to
// canonical roles. Inputs are canonicalized once at the edge; guards and
// services only ever see canonical values.
var roleAliases = map[string]Role{
	"admin": RoleSuperAdmin,
	"ca":    RoleCPA,
}

// CanonicalRole normalizes a raw role string to a canonical Role.
// Legacy aliases resolve through the alias table. Empty input stays empty so
// callers can apply their own default. Unrecognized values map to RoleUnknown.
func CanonicalRole(raw string) Role {
	if raw == "" {
		return ""
	}
	if alias, ok := roleAliases[raw]; ok {
		return alias
	}
	switch Role(raw) {
	case RoleSuperAdmin, RoleAgent, RoleCPA, RoleUnknown, RoleUnresolved:
		return Role(raw)
	}
	return RoleUnknown
}

// IsKnown reports whether r is one of the canonical partner roles.
func (r Role) IsKnown() bool {
	return r == RoleSuperAdmin || r == RoleAgent || r == RoleCPA
}

// IsSuperAdmin reports whether r is the administrator role.
func (r Role) IsSuperAdmin() bool { return r == RoleSuperAdmin }

// IsAgent reports whether r is the agent role.
func (r Role) IsAgent() bool { return r == RoleAgent }

// IsCPA reports whether r is the CPA role.
func (r Role) IsCPA() bool { return r == RoleCPA }

// State describes the lifecycle of a session context.
type State string

const (
	// StateInitializing is the state at process start, before the first auth event.
	StateInitializing State = "initializing"
	// StateResolvingRole means an identity arrived and its role fetch is in flight.
	StateResolvingRole State = "resolving-role"
	// StateReady means role resolution finished.
	StateReady State = "ready"
	// StateSignedOut means the identity was cleared.
	StateSignedOut State = "signed-out"
)

// Identity represents the authenticated principal returned by an IdP.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	UserID    string // stable user identifier (e.g., sub)
	FirstName string
	LastName  string
	Email     string
	Groups    []string
	ExpiresAt time.Time // absolute expiry from IdP token
}

// Session is the server-side record we persist for an authenticated partner.
// ID is an opaque session identifier (e.g., random URL-safe string).
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsResolved reports whether the session carries a resolved role.
func (s Session) IsResolved() bool { return s.Role != "" && s.Role != RoleUnresolved }
