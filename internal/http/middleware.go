package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	domainauth "github.com/carecall/care-gateway/internal/domain/auth"
	"github.com/carecall/care-gateway/internal/ports"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// CanonicalHost returns a middleware that redirects requests for any
// non-primary hostname to the primary one, preserving path and query. It
// runs before the session gateway so a login that starts on a secondary
// hostname lands on the one whose cookies the browser will send back.
// With an empty primary host it is a no-op.
func CanonicalHost(primary string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if primary == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.EqualFold(requestHost(r), primary) {
				next.ServeHTTP(w, r)
				return
			}
			target := url.URL{
				Scheme:   requestScheme(r),
				Host:     primary,
				Path:     r.URL.Path,
				RawQuery: r.URL.RawQuery,
			}
			http.Redirect(w, r, target.String(), http.StatusMovedPermanently)
		})
	}
}

func requestHost(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		return fwd
	}
	return r.Host
}

func requestScheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); strings.EqualFold(proto, "https") {
		return "https"
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

// routeClass is the verdict of path classification. Every path gets exactly
// one class and anything unrecognized is protected, so a new route is locked
// down until someone deliberately opens it.
type routeClass int

const (
	routeProtected routeClass = iota
	routePublic
)

// publicPaths are the only exact paths reachable without a credential.
var publicPaths = map[string]struct{}{
	"/login":                {},
	"/login/code":           {},
	"/login/verify":         {},
	"/login/oauth":          {},
	"/login/oauth/callback": {},
	// Logout only clears the client cookie, so it must work for exactly
	// the clients whose credential is missing or expired.
	"/logout":  {},
	"/healthz": {},
}

// publicPrefixes are path prefixes reachable without a credential.
var publicPrefixes = []string{
	"/static/",
}

func classifyPath(path string) routeClass {
	if _, ok := publicPaths[path]; ok {
		return routePublic
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return routePublic
		}
	}
	return routeProtected
}

// SessionCookieName is the cookie carrying the signed session credential.
const SessionCookieName = "session"

// GatewayConfig holds collaborators for the session gateway middleware.
type GatewayConfig struct {
	Codec        ports.CredentialCodec
	CookieDomain string
	Logger       *slog.Logger
}

// SessionGateway returns the middleware that guards every route. Public
// paths pass through untouched. Protected paths require a valid credential
// from the session cookie or a bearer header; on success the identity and
// raw credential are attached to the request context, on failure the
// request is rejected and a stale cookie is cleared. Browser navigations
// are redirected to the login page with the original path preserved; API
// calls get a bare 401.
func SessionGateway(cfg GatewayConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if classifyPath(r.URL.Path) == routePublic {
				next.ServeHTTP(w, r)
				return
			}

			token, fromCookie := credentialFromRequest(r)
			if token == "" {
				rejectUnauthenticated(w, r)
				return
			}

			identity, err := cfg.Codec.Verify(token)
			if err != nil {
				var invalid *domainauth.InvalidCredentialError
				if errors.As(err, &invalid) {
					logger.InfoContext(r.Context(), "rejected credential",
						slog.String("reason", string(invalid.Reason)),
						slog.String("path", r.URL.Path))
				} else {
					logger.ErrorContext(r.Context(), "credential verification failed", "error", err)
				}
				if fromCookie {
					clearSessionCookie(w, r, cfg.CookieDomain)
				}
				rejectUnauthenticated(w, r)
				return
			}

			ctx := SetIdentityInContext(r.Context(), identity)
			ctx = SetCredentialInContext(ctx, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// credentialFromRequest extracts the signed credential from the session
// cookie, falling back to an Authorization bearer header for API clients.
// The second return reports whether it came from the cookie.
func credentialFromRequest(r *http.Request) (string, bool) {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	const bearerPrefix = "Bearer "
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, bearerPrefix) {
		return strings.TrimSpace(auth[len(bearerPrefix):]), false
	}
	return "", false
}

// rejectUnauthenticated writes the appropriate rejection for the request
// kind: a redirect to the login page for browser navigations, an empty 401
// for API calls.
func rejectUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if isBrowserNavigation(r) {
		target := url.URL{Path: "/login"}
		q := url.Values{}
		q.Set("from", safeRedirectPath(r.URL.RequestURI()))
		target.RawQuery = q.Encode()
		http.Redirect(w, r, target.String(), http.StatusFound)
		return
	}
	w.WriteHeader(http.StatusUnauthorized)
}

// isBrowserNavigation reports whether the request looks like a top-level
// browser navigation rather than a programmatic API call. API paths are
// never navigations; otherwise a GET or HEAD whose Accept header prefers
// HTML is treated as one.
func isBrowserNavigation(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return false
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// safeRedirectPath ensures the provided redirect is a same-origin relative
// path starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	// Reject scheme-relative references like //evil.example.com.
	if strings.HasPrefix(candidate, "//") {
		return "/"
	}
	return candidate
}

// clearSessionCookie expires the session cookie on the client. It mirrors
// the attributes used when setting the cookie to maximize compatibility
// across browsers during deletion.
func clearSessionCookie(w http.ResponseWriter, r *http.Request, cookieDomain string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   cookieDomain,
		HttpOnly: true,
		Secure:   requestScheme(r) == "https",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}
