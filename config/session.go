package config

import (
	"fmt"
	"strings"
	"time"
)

// FailPolicy controls what the session context does when a role fetch fails
// with a transient error. The historical behavior was fail-open (mark the
// session ready with an unresolved role so the UI never spins forever);
// fail-closed keeps the session in the resolving state instead.
type FailPolicy string

const (
	// FailOpen marks the session ready on fetch failure, role unresolved.
	FailOpen FailPolicy = "fail_open"
	// FailClosed leaves the session in resolving-role on fetch failure.
	FailClosed FailPolicy = "fail_closed"
)

// UnmarshalText implements encoding.TextUnmarshaler for FailPolicy.
func (p *FailPolicy) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "fail_open", "fail_closed":
		*p = FailPolicy(v)
		return nil
	default:
		return fmt.Errorf("invalid FailPolicy: %q (valid options: fail_open, fail_closed)", v)
	}
}

// SessionConfig groups session-context configuration.
type SessionConfig struct {
	// FailPolicy controls behavior when a role fetch fails.
	FailPolicy FailPolicy `env:"SESSION_FAIL_POLICY" envDefault:"fail_open"`

	// Duration is the server-side session lifetime used when the IdP does
	// not supply a token expiry.
	Duration time.Duration `env:"SESSION_DURATION" envDefault:"8h"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	if s.FailPolicy == "" {
		s.FailPolicy = FailOpen
	}
	if s.Duration <= 0 {
		s.Duration = 8 * time.Hour
	}
}
