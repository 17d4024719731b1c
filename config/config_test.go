package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAuthMode_UnmarshalText(t *testing.T) {
	tests := []struct {
		input       string
		expected    AuthMode
		expectError bool
	}{
		{input: "oauth", expected: AuthModeOAuth},
		{input: "OAuth", expected: AuthModeOAuth},
		{input: "mock", expected: AuthModeMock},
		{input: "saml", expectError: true},
		{input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var m AuthMode
			err := m.UnmarshalText([]byte(tt.input))
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error for %q, got none", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if m != tt.expected {
				t.Fatalf("expected %q, got %q", tt.expected, m)
			}
		})
	}
}

func TestFailPolicy_UnmarshalText(t *testing.T) {
	var p FailPolicy
	if err := p.UnmarshalText([]byte("FAIL_CLOSED")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != FailClosed {
		t.Fatalf("expected fail_closed, got %q", p)
	}
	if err := p.UnmarshalText([]byte("open")); err == nil {
		t.Fatal("expected error for invalid policy")
	}
}

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Auth.Mode != AuthModeOAuth {
		t.Fatalf("expected default auth mode oauth, got %q", cfg.Auth.Mode)
	}
	if cfg.Session.FailPolicy != FailOpen {
		t.Fatalf("expected default fail policy fail_open, got %q", cfg.Session.FailPolicy)
	}
	if cfg.Session.Duration != 8*time.Hour {
		t.Fatalf("expected default session duration 8h, got %v", cfg.Session.Duration)
	}
	if cfg.Cache.RoleTTL != 24*time.Hour {
		t.Fatalf("expected default role TTL 24h, got %v", cfg.Cache.RoleTTL)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("expected default addr :8080, got %q", cfg.HTTP.Addr)
	}
	if cfg.Auth.OAuth.GroupsClaimPath != "memberof" {
		t.Fatalf("expected default groups claim path, got %q", cfg.Auth.OAuth.GroupsClaimPath)
	}
	if cfg.Auth.AdminGroup != "portal-admins" || cfg.Auth.AgentGroup != "portal-agents" || cfg.Auth.CPAGroup != "portal-cpas" {
		t.Fatalf("unexpected default role groups: %q %q %q", cfg.Auth.AdminGroup, cfg.Auth.AgentGroup, cfg.Auth.CPAGroup)
	}
}

func TestSessionConfig_SanitizeGuardrails(t *testing.T) {
	s := SessionConfig{Duration: -1}
	s.Sanitize()
	if s.FailPolicy != FailOpen || s.Duration != 8*time.Hour {
		t.Fatalf("sanitize did not apply defaults: %+v", s)
	}

	c := CacheConfig{}
	c.Sanitize()
	if c.RoleTTL != 24*time.Hour {
		t.Fatalf("sanitize did not apply role TTL default: %v", c.RoleTTL)
	}
}
