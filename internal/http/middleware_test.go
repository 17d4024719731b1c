package httpx

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/taxlink/partner-portal/internal/domain/auth"
)

func TestLoggingCapturesStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	Logging(logger)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"path":"/teapot"`)
}

func TestRecoverTurnsPanicInto500(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	Recover(logger)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "boom")
}

func TestRequireAuthRejectsMissingCookie(t *testing.T) {
	svc := &fakeAuthService{}
	rec := httptest.NewRecorder()

	RequireAuth(svc)(okHandler(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "authentication_required")
}

func TestRequireAuthPassesSessionThroughContext(t *testing.T) {
	svc := &fakeAuthService{session: &domainauth.Session{
		ID:        "sess-1",
		UserID:    "user-1",
		Role:      domainauth.RoleAgent,
		ExpiresAt: time.Now().Add(time.Hour),
	}}
	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := GetUserSessionFromContext(r.Context())
		require.True(t, ok)
		gotUserID = session.UserID
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
	RequireAuth(svc)(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", gotUserID)
}

func TestIsBrowserRequest(t *testing.T) {
	api := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	api.Header.Set("Accept", "text/html")
	assert.False(t, isBrowserRequest(api), "API prefix wins over Accept header")

	page := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	page.Header.Set("Accept", "text/html,application/xhtml+xml")
	assert.True(t, isBrowserRequest(page))

	jsonReq := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	jsonReq.Header.Set("Accept", "application/json")
	assert.False(t, isBrowserRequest(jsonReq))

	bare := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	assert.True(t, isBrowserRequest(bare), "no Accept header defaults to browser")
}
