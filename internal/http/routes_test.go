package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/taxlink/partner-portal/internal/domain/auth"
	"github.com/taxlink/partner-portal/internal/domain/model"
	"github.com/taxlink/partner-portal/internal/mocks"
	mockauth "github.com/taxlink/partner-portal/internal/mocks/auth"
	"github.com/taxlink/partner-portal/internal/service"
)

// newTestRouter wires a full router over in-memory stores and a partner repo
// that resolves every user to the given role.
func newTestRouter(t *testing.T, role domainauth.Role) (http.Handler, *service.AuthService) {
	t.Helper()

	ctrl := gomock.NewController(t)
	partnerRepo := mocks.NewMockPartnerRepository(ctrl)
	partnerRepo.EXPECT().GetByID(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, id string) (*model.Partner, error) {
			return &model.Partner{ID: id, Name: "Test Partner", Role: role}, nil
		}).AnyTimes()

	sessions := mockauth.NewMemorySessionStore()
	cache := mockauth.NewMemoryRoleCache()
	registry := service.NewSessionRegistry(service.SessionRegistryOptions{
		Sessions: sessions,
		NewContext: func() *service.SessionContext {
			return service.NewSessionContext(service.SessionContextOptions{
				Partners:  partnerRepo,
				RoleCache: cache,
			})
		},
	})
	authSvc := service.NewAuthService(service.AuthServiceOptions{
		Provider: mockauth.NewMockAuthProvider(),
		Sessions: sessions,
		Registry: registry,
	})

	router := NewRouter(RouterServices{
		Auth:     authSvc,
		Registry: registry,
		Partners: service.NewPartnerService(service.PartnerServiceOptions{Partners: partnerRepo}),
	})
	return router, authSvc
}

func TestRouter_Healthz(t *testing.T) {
	router, _ := newTestRouter(t, domainauth.RoleCPA)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestRouter_ServesEmbeddedStaticAssets(t *testing.T) {
	router, _ := newTestRouter(t, domainauth.RoleCPA)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "data-role")
	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
}

func TestRouter_APIRequiresSession(t *testing.T) {
	router, _ := newTestRouter(t, domainauth.RoleCPA)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_PagesRedirectSignedOutBrowsers(t *testing.T) {
	router, _ := newTestRouter(t, domainauth.RoleCPA)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Accept", "text/html")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/auth/login"))
}

func TestRouter_LoginSessionReachesGuardedPage(t *testing.T) {
	router, authSvc := newTestRouter(t, domainauth.RoleCPA)

	result, err := authSvc.CompleteLogin(context.Background(), service.CompleteLoginInput{
		Code: "code", State: "state-1", Nonce: "nonce-1",
	})
	require.NoError(t, err)
	require.Equal(t, domainauth.RoleCPA, result.Session.Role)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Accept", "text/html")
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: result.Session.ID})
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-role="cpa"`)
}

func TestRouter_CPAFallsBackFromAgentArea(t *testing.T) {
	router, authSvc := newTestRouter(t, domainauth.RoleCPA)

	result, err := authSvc.CompleteLogin(context.Background(), service.CompleteLoginInput{
		Code: "code", State: "state-1", Nonce: "nonce-1",
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/agent", nil)
	req.Header.Set("Accept", "text/html")
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: result.Session.ID})
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestRouter_SuperAdminReachesAdminArea(t *testing.T) {
	router, authSvc := newTestRouter(t, domainauth.RoleSuperAdmin)

	result, err := authSvc.CompleteLogin(context.Background(), service.CompleteLoginInput{
		Code: "code", State: "state-1", Nonce: "nonce-1",
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Accept", "text/html")
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: result.Session.ID})
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-role="super_admin"`)
}

func TestRouter_ProfileWithSessionCookie(t *testing.T) {
	router, authSvc := newTestRouter(t, domainauth.RoleAgent)

	result, err := authSvc.CompleteLogin(context.Background(), service.CompleteLoginInput{
		Code: "code", State: "state-1", Nonce: "nonce-1",
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: result.Session.ID})
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Test Partner")
}
