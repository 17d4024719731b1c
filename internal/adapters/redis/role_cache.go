package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/taxlink/partner-portal/internal/domain/auth"
)

// RoleCache stores the last-known role per user id. It exists to avoid a
// loading flash when a partner returns before their profile fetch completes;
// the cached value is advisory and never authoritative.
type RoleCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRoleCache creates a Redis-backed role cache.
func NewRoleCache(client redis.UniversalClient) *RoleCache {
	return &RoleCache{client: client, prefix: "role:"}
}

// Put records the resolved role for a user with the given TTL.
func (c *RoleCache) Put(ctx context.Context, userID string, role domainauth.Role, ttl time.Duration) error {
	if userID == "" {
		return errors.New("user ID cannot be empty")
	}
	return c.client.Set(ctx, c.prefix+userID, string(role), ttl).Err()
}

// Get returns the cached role, or ("", nil) when nothing is cached.
// Stored values pass through CanonicalRole so legacy strings written by the
// previous scheme resolve to canonical roles.
func (c *RoleCache) Get(ctx context.Context, userID string) (domainauth.Role, error) {
	if userID == "" {
		return "", errors.New("user ID cannot be empty")
	}

	val, err := c.client.Get(ctx, c.prefix+userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	return domainauth.CanonicalRole(val), nil
}

// Clear drops the cached role for a user. Clearing a missing key is not an error.
func (c *RoleCache) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	return c.client.Del(ctx, c.prefix+userID).Err()
}
