package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/carecall/care-gateway/internal/domain/auth"
)

// stubCodec is a hand-written CredentialCodec double keyed by token string.
type stubCodec struct {
	identities map[string]string // token -> email
}

func (s *stubCodec) Mint(email string) (string, time.Time, error) {
	return "tok-" + email, time.Now().Add(time.Hour), nil
}

func (s *stubCodec) Verify(token string) (domainauth.Identity, error) {
	if email, ok := s.identities[token]; ok {
		return domainauth.Identity{Email: email}, nil
	}
	return domainauth.Identity{}, &domainauth.InvalidCredentialError{Reason: domainauth.ReasonBadSignature}
}

func gatewayForTest(next http.Handler) http.Handler {
	codec := &stubCodec{identities: map[string]string{"good-token": "user@example.com"}}
	return SessionGateway(GatewayConfig{Codec: codec})(next)
}

func okHandler() (http.Handler, *bool) {
	called := new(bool)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	}), called
}

func TestSessionGateway_PublicPathsPassWithoutCredential(t *testing.T) {
	for _, path := range []string{
		"/login",
		"/login/code",
		"/login/verify",
		"/login/oauth",
		"/login/oauth/callback",
		"/logout",
		"/healthz",
		"/static/css/styles.css",
	} {
		next, called := okHandler()
		rec := httptest.NewRecorder()
		gatewayForTest(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		assert.True(t, *called, "path %s should pass", path)
		assert.Equal(t, http.StatusOK, rec.Code, "path %s", path)
	}
}

func TestSessionGateway_APICallWithoutCredentialGets401EmptyBody(t *testing.T) {
	next, called := okHandler()
	rec := httptest.NewRecorder()
	gatewayForTest(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/recipients", nil))

	assert.False(t, *called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestSessionGateway_BrowserNavigationRedirectsToLogin(t *testing.T) {
	next, called := okHandler()
	req := httptest.NewRequest(http.MethodGet, "/dashboard?tab=recent", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec := httptest.NewRecorder()
	gatewayForTest(next).ServeHTTP(rec, req)

	assert.False(t, *called)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?from=%2Fdashboard%3Ftab%3Drecent", rec.Header().Get("Location"))
}

func TestSessionGateway_PostWithHTMLAcceptIsNotANavigation(t *testing.T) {
	next, _ := okHandler()
	req := httptest.NewRequest(http.MethodPost, "/dashboard", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	gatewayForTest(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestSessionGateway_ValidCookieAdmitsAndAttachesIdentity(t *testing.T) {
	var gotEmail, gotToken string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		require.True(t, ok)
		gotEmail = identity.Email
		gotToken, _ = CredentialFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "good-token"})
	rec := httptest.NewRecorder()
	gatewayForTest(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user@example.com", gotEmail)
	assert.Equal(t, "good-token", gotToken)
}

func TestSessionGateway_BearerHeaderAdmits(t *testing.T) {
	next, called := okHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/recipients", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	gatewayForTest(next).ServeHTTP(rec, req)

	assert.True(t, *called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionGateway_InvalidCookieRejectedAndCleared(t *testing.T) {
	next, called := okHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/recipients", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tampered-token"})
	rec := httptest.NewRecorder()
	gatewayForTest(next).ServeHTTP(rec, req)

	assert.False(t, *called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestSessionGateway_InvalidBearerDoesNotSetCookie(t *testing.T) {
	next, _ := okHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/recipients", nil)
	req.Header.Set("Authorization", "Bearer tampered-token")
	rec := httptest.NewRecorder()
	gatewayForTest(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestClassifyPath_UnknownPathsAreProtected(t *testing.T) {
	for _, path := range []string{"/", "/me", "/dashboard", "/api/recipients", "/loginx", "/login/", "/anything/else"} {
		assert.Equal(t, routeProtected, classifyPath(path), "path %s", path)
	}
}

func TestCanonicalHost_RedirectsSecondaryHostname(t *testing.T) {
	next, called := okHandler()
	handler := CanonicalHost("care.example.com")(next)

	req := httptest.NewRequest(http.MethodGet, "/dashboard?tab=recent", nil)
	req.Host = "www.care.example.com"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.False(t, *called)
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "http://care.example.com/dashboard?tab=recent", rec.Header().Get("Location"))
}

func TestCanonicalHost_PrimaryHostPassesThrough(t *testing.T) {
	next, called := okHandler()
	handler := CanonicalHost("care.example.com")(next)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Host = "care.example.com"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.True(t, *called)
}

func TestCanonicalHost_HonorsForwardedProto(t *testing.T) {
	handler := CanonicalHost("care.example.com")(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "old.example.com"
	req.Header.Set("X-Forwarded-Proto", "https")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "https://care.example.com/", rec.Header().Get("Location"))
}

func TestSafeRedirectPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/dashboard", "/dashboard"},
		{"/dashboard?tab=recent", "/dashboard?tab=recent"},
		{"https://evil.example.com/", "/"},
		{"//evil.example.com", "/"},
		{"dashboard", "/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, safeRedirectPath(tt.in), "input %q", tt.in)
	}
}
