package httpx

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func proxyForTest(t *testing.T, upstream string) *BackendProxy {
	t.Helper()
	p, err := NewBackendProxy(BackendProxyOptions{Upstream: upstream})
	require.NoError(t, err)
	return p
}

func TestNewBackendProxy_RejectsBadUpstream(t *testing.T) {
	for _, upstream := range []string{"", "not a url", "/relative/only"} {
		_, err := NewBackendProxy(BackendProxyOptions{Upstream: upstream})
		assert.Error(t, err, "upstream %q", upstream)
	}
}

func TestBackendProxy_ForwardsRequestWithBearer(t *testing.T) {
	var got *http.Request
	var gotBody string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(r.Context())
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("X-Backend", "yes")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":1}`)
	}))
	defer backend.Close()

	proxy := proxyForTest(t, backend.URL)

	req := httptest.NewRequest(http.MethodPost, "/api/recipients?limit=5", strings.NewReader(`{"name":"Ada"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "signed-token"})
	req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})
	req = req.WithContext(SetCredentialInContext(req.Context(), "signed-token"))

	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, req)

	require.NotNil(t, got)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/api/recipients", got.URL.Path)
	assert.Equal(t, "limit=5", got.URL.RawQuery)
	assert.Equal(t, "Bearer signed-token", got.Header.Get("Authorization"))
	assert.Equal(t, `{"name":"Ada"}`, gotBody)

	// The session cookie stays between client and gateway; other cookies pass.
	_, err := got.Cookie(SessionCookieName)
	assert.Error(t, err)
	theme, err := got.Cookie("theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", theme.Value)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "yes", rec.Header().Get("X-Backend"))
	assert.JSONEq(t, `{"id":1}`, rec.Body.String())
}

func TestBackendProxy_NoCredentialMeansNoAuthorizationHeader(t *testing.T) {
	var gotAuth string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer backend.Close()

	proxy := proxyForTest(t, backend.URL)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.Header.Set("Authorization", "Bearer client-supplied")
	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, req)

	assert.Empty(t, gotAuth)
}

func TestBackendProxy_NormalizesUpstreamError(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"recipient not found"}`)
	}))
	defer backend.Close()

	proxy := proxyForTest(t, backend.URL)

	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/recipients/42", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":404,"detail":"recipient not found"}`, rec.Body.String())
}

func TestBackendProxy_ErrorWithoutDetailFallsBackToStatusText(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer backend.Close()

	proxy := proxyForTest(t, backend.URL)

	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/recipients", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"status":500,"detail":"Internal Server Error"}`, rec.Body.String())
}

func TestBackendProxy_NetworkFailureGets502(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	backend.Close() // nothing is listening anymore

	proxy := proxyForTest(t, backend.URL)

	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/recipients", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"status":502,"detail":"upstream unavailable"}`, rec.Body.String())
}

func TestBackendProxy_AppendsToForwardedForChain(t *testing.T) {
	var gotChain string
	backend := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotChain = r.Header.Get("X-Forwarded-For")
	}))
	defer backend.Close()

	proxy := proxyForTest(t, backend.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/recipients", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	req.RemoteAddr = "10.0.0.7:52114"
	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, req)

	assert.Equal(t, "203.0.113.9, 10.0.0.7", gotChain)
}

func TestBackendProxy_RelaysRedirectWithoutFollowing(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/old" {
			http.Redirect(w, r, "/api/new", http.StatusFound)
			return
		}
		_, _ = io.WriteString(w, "followed")
	}))
	defer backend.Close()

	proxy := proxyForTest(t, backend.URL)

	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/old", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/api/new", rec.Header().Get("Location"))
	assert.NotContains(t, rec.Body.String(), "followed")
}

func TestBackendProxy_JoinsUpstreamBasePath(t *testing.T) {
	var gotPath string
	backend := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	}))
	defer backend.Close()

	proxy := proxyForTest(t, backend.URL+"/v1")

	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/recipients", nil))

	assert.Equal(t, "/v1/api/recipients", gotPath)
}
