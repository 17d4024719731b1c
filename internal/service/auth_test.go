package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxlink/partner-portal/config"
	"github.com/taxlink/partner-portal/internal/adapters/authroles"
	"github.com/taxlink/partner-portal/internal/data"
	domainauth "github.com/taxlink/partner-portal/internal/domain/auth"
	"github.com/taxlink/partner-portal/internal/domain/model"
	apperrors "github.com/taxlink/partner-portal/internal/errors"
	mockauth "github.com/taxlink/partner-portal/internal/mocks/auth"
	"github.com/taxlink/partner-portal/internal/ports"
)

type authFixture struct {
	provider *mockauth.MockAuthProvider
	sessions *mockauth.MemorySessionStore
	cache    *mockauth.MemoryRoleCache
	registry *SessionRegistry
	svc      *AuthService
}

func newAuthFixture(t *testing.T, repo ports.PartnerRepository) *authFixture {
	t.Helper()
	provider := mockauth.NewMockAuthProvider()
	sessions := mockauth.NewMemorySessionStore()
	cache := mockauth.NewMemoryRoleCache()
	registry := NewSessionRegistry(SessionRegistryOptions{
		Sessions: sessions,
		NewContext: func() *SessionContext {
			return NewSessionContext(SessionContextOptions{
				Partners:   repo,
				RoleCache:  cache,
				FailPolicy: config.FailOpen,
			})
		},
	})
	svc := NewAuthService(AuthServiceOptions{
		Provider: provider,
		Sessions: sessions,
		Registry: registry,
	})
	return &authFixture{
		provider: provider,
		sessions: sessions,
		cache:    cache,
		registry: registry,
		svc:      svc,
	}
}

func cpaRepo() ports.PartnerRepository {
	return &stubPartnerRepo{getByID: func(_ context.Context, id string) (*model.Partner, error) {
		return &model.Partner{ID: id, Name: "Mock User", Role: domainauth.RoleCPA}, nil
	}}
}

func TestAuthService_BeginLogin(t *testing.T) {
	f := newAuthFixture(t, cpaRepo())

	res, err := f.svc.BeginLogin(context.Background(), "https://portal/auth/callback")
	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/auth", res.AuthURL)
	assert.NotEmpty(t, res.State)
	assert.NotEmpty(t, res.Nonce)
}

func TestAuthService_BeginLoginRequiresRedirectURL(t *testing.T) {
	f := newAuthFixture(t, cpaRepo())

	_, err := f.svc.BeginLogin(context.Background(), "")
	assert.Error(t, err)
}

func TestAuthService_BeginLoginProviderError(t *testing.T) {
	f := newAuthFixture(t, cpaRepo())
	f.provider.BeginFunc = func(context.Context, ports.BeginInput) (string, string, string, error) {
		return "", "", "", errors.New("idp unreachable")
	}

	_, err := f.svc.BeginLogin(context.Background(), "https://portal/auth/callback")
	assert.ErrorContains(t, err, "begin auth flow")
}

func TestAuthService_CompleteLogin(t *testing.T) {
	f := newAuthFixture(t, cpaRepo())
	ctx := context.Background()

	res, err := f.svc.CompleteLogin(ctx, CompleteLoginInput{
		Code: "code", State: "state-1", Nonce: "nonce-1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.Session.ID)
	assert.Equal(t, "mock-user-1", res.Session.UserID)
	assert.Equal(t, domainauth.RoleCPA, res.Session.Role)
	assert.True(t, res.Session.IsResolved())

	// Session persisted under its ID.
	stored, err := f.sessions.Get(ctx, res.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Session.UserID, stored.UserID)

	// Resolved role lands in the advisory cache.
	cached, err := f.cache.Get(ctx, "mock-user-1")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleCPA, cached)
}

func TestAuthService_CompleteLoginValidatesInput(t *testing.T) {
	f := newAuthFixture(t, cpaRepo())
	ctx := context.Background()

	cases := []CompleteLoginInput{
		{State: "s", Nonce: "n"},
		{Code: "c", Nonce: "n"},
		{Code: "c", State: "s"},
	}
	for _, in := range cases {
		_, err := f.svc.CompleteLogin(ctx, in)
		assert.Error(t, err)
	}
}

func TestAuthService_CompleteLoginExchangeError(t *testing.T) {
	f := newAuthFixture(t, cpaRepo())
	f.provider.ExchangeFunc = func(context.Context, ports.ExchangeInput) (domainauth.Identity, error) {
		return domainauth.Identity{}, errors.New("bad code")
	}

	_, err := f.svc.CompleteLogin(context.Background(), CompleteLoginInput{
		Code: "code", State: "s", Nonce: "n",
	})
	assert.ErrorContains(t, err, "exchange authorization code")
}

func TestAuthService_CompleteLoginFillsMissingExpiry(t *testing.T) {
	f := newAuthFixture(t, cpaRepo())
	f.provider.DefaultUser.ExpiresAt = time.Time{}
	f.provider.ExchangeFunc = func(context.Context, ports.ExchangeInput) (domainauth.Identity, error) {
		return domainauth.Identity{UserID: "mock-user-1", Email: "mock.user@example.com"}, nil
	}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.timeProvider = data.NewFixedTimeProvider(now)

	res, err := f.svc.CompleteLogin(context.Background(), CompleteLoginInput{
		Code: "code", State: "s", Nonce: "n",
	})
	require.NoError(t, err)
	assert.Equal(t, now.Add(8*time.Hour), res.Session.ExpiresAt)
}

func TestAuthService_CompleteLoginStoresUnknownRoleWithoutProfile(t *testing.T) {
	repo := &stubPartnerRepo{getByID: func(_ context.Context, id string) (*model.Partner, error) {
		return nil, mockauth.ErrNotFound
	}}
	// The store's not-found error is not an AppError; resolution treats it
	// as transient and fails open.
	f := newAuthFixture(t, repo)

	res, err := f.svc.CompleteLogin(context.Background(), CompleteLoginInput{
		Code: "code", State: "s", Nonce: "n",
	})
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleUnresolved, res.Session.Role)
}

// memoryPartnerRepo backs first-login provisioning tests with a real store
// round-trip: GetByID misses until Create has run.
func memoryPartnerRepo() (*stubPartnerRepo, map[string]*model.Partner) {
	partners := map[string]*model.Partner{}
	repo := &stubPartnerRepo{
		getByID: func(_ context.Context, id string) (*model.Partner, error) {
			if p, ok := partners[id]; ok {
				return p, nil
			}
			return nil, apperrors.NotFoundf("partner %s not found", id)
		},
		create: func(_ context.Context, req *model.CreatePartnerRequest) (*model.Partner, error) {
			p := &model.Partner{
				ID:           req.ID,
				Name:         req.Name,
				Email:        req.Email,
				Role:         req.Role,
				ReferralCode: req.ReferralCode,
			}
			partners[req.ID] = p
			return p, nil
		},
	}
	return repo, partners
}

func TestAuthService_CompleteLoginProvisionsFromGroups(t *testing.T) {
	repo, partners := memoryPartnerRepo()
	f := newAuthFixture(t, repo)
	f.svc.roles = authroles.StaticRoleMapper{AdminGroup: "portal-admins"}
	f.svc.partners = NewPartnerService(PartnerServiceOptions{Partners: repo})
	f.provider.DefaultUser.Groups = []string{"everyone", "portal-admins"}

	res, err := f.svc.CompleteLogin(context.Background(), CompleteLoginInput{
		Code: "code", State: "s", Nonce: "n",
	})
	require.NoError(t, err)

	created := partners["mock-user-1"]
	require.NotNil(t, created, "first login should provision the partner")
	assert.Equal(t, domainauth.RoleSuperAdmin, created.Role)
	assert.Equal(t, "Mock User", created.Name)
	assert.NotEmpty(t, created.ReferralCode)

	// Role resolution sees the freshly provisioned profile.
	assert.Equal(t, domainauth.RoleSuperAdmin, res.Session.Role)
}

func TestAuthService_CompleteLoginSkipsUnmappedGroups(t *testing.T) {
	repo, partners := memoryPartnerRepo()
	f := newAuthFixture(t, repo)
	f.svc.roles = authroles.StaticRoleMapper{AdminGroup: "portal-admins"}
	f.svc.partners = NewPartnerService(PartnerServiceOptions{Partners: repo})
	f.provider.DefaultUser.Groups = []string{"everyone"}

	res, err := f.svc.CompleteLogin(context.Background(), CompleteLoginInput{
		Code: "code", State: "s", Nonce: "n",
	})
	require.NoError(t, err)

	assert.Empty(t, partners, "unmapped groups must not provision anyone")
	assert.Equal(t, domainauth.RoleUnknown, res.Session.Role)
}

func TestAuthService_CompleteLoginKeepsExistingProfileRole(t *testing.T) {
	repo, partners := memoryPartnerRepo()
	partners["mock-user-1"] = &model.Partner{
		ID: "mock-user-1", Name: "Mock User", Role: domainauth.RoleCPA,
	}
	f := newAuthFixture(t, repo)
	f.svc.roles = authroles.StaticRoleMapper{AdminGroup: "portal-admins"}
	f.svc.partners = NewPartnerService(PartnerServiceOptions{Partners: repo})
	f.provider.DefaultUser.Groups = []string{"portal-admins"}

	res, err := f.svc.CompleteLogin(context.Background(), CompleteLoginInput{
		Code: "code", State: "s", Nonce: "n",
	})
	require.NoError(t, err)

	// Groups are a first-login hint only; the stored profile stays in charge.
	assert.Equal(t, domainauth.RoleCPA, partners["mock-user-1"].Role)
	assert.Equal(t, domainauth.RoleCPA, res.Session.Role)
}

func TestAuthService_GetSession(t *testing.T) {
	f := newAuthFixture(t, cpaRepo())
	ctx := context.Background()

	res, err := f.svc.CompleteLogin(ctx, CompleteLoginInput{
		Code: "code", State: "s", Nonce: "n",
	})
	require.NoError(t, err)

	sess, err := f.svc.GetSession(ctx, res.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Session.UserID, sess.UserID)
}

func TestAuthService_GetSessionExpired(t *testing.T) {
	f := newAuthFixture(t, cpaRepo())
	ctx := context.Background()

	expired := domainauth.Session{
		ID:        "sess-old",
		UserID:    "user-1",
		Role:      domainauth.RoleCPA,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, f.sessions.Save(ctx, expired))

	_, err := f.svc.GetSession(ctx, "sess-old")
	require.Error(t, err)
	assert.True(t, IsSessionExpired(err))

	// Expired session removed from the store.
	_, err = f.sessions.Get(ctx, "sess-old")
	assert.ErrorIs(t, err, mockauth.ErrNotFound)
}

func TestAuthService_GetSessionExpiryBoundaryIsExclusive(t *testing.T) {
	f := newAuthFixture(t, cpaRepo())
	ctx := context.Background()

	deadline := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.timeProvider = data.NewFixedTimeProvider(deadline)
	require.NoError(t, f.sessions.Save(ctx, domainauth.Session{
		ID:        "sess-edge",
		UserID:    "user-1",
		Role:      domainauth.RoleCPA,
		ExpiresAt: deadline,
	}))

	// A session expiring exactly now is already expired, matching the
	// registry's convention.
	_, err := f.svc.GetSession(ctx, "sess-edge")
	require.Error(t, err)
	assert.True(t, IsSessionExpired(err))
}

func TestAuthService_GetSessionRequiresID(t *testing.T) {
	f := newAuthFixture(t, cpaRepo())

	_, err := f.svc.GetSession(context.Background(), "")
	assert.Error(t, err)
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture(t, cpaRepo())
	ctx := context.Background()

	res, err := f.svc.CompleteLogin(ctx, CompleteLoginInput{
		Code: "code", State: "s", Nonce: "n",
	})
	require.NoError(t, err)
	require.Equal(t, 1, f.registry.Len())

	require.NoError(t, f.svc.Logout(ctx, res.Session.ID))
	assert.Equal(t, 0, f.registry.Len())
	assert.Equal(t, 0, f.sessions.Len())

	// Logout clears the cached role for the signed-out user.
	cached, err := f.cache.Get(ctx, "mock-user-1")
	require.NoError(t, err)
	assert.Empty(t, cached)

	// Idempotent: logging out again (or with no session) is fine.
	assert.NoError(t, f.svc.Logout(ctx, res.Session.ID))
	assert.NoError(t, f.svc.Logout(ctx, ""))
}
